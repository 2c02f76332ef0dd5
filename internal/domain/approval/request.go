package approval

import "time"

// SystemUserID is the voter id recorded on synthetic auto-approval votes.
const SystemUserID = "system"

// Vote is a single approver's recorded decision. Votes are append-only:
// once recorded they are never edited or removed.
type Vote struct {
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	UserRole  string    `json:"user_role"`
	Decision  Decision  `json:"decision"`
	Comment   string    `json:"comment,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Request is an approval request flowing through the four-eyes workflow.
type Request struct {
	ID              string                 `json:"id"`
	TenantID        string                 `json:"tenant_id"`
	CompanyID       string                 `json:"company_id"`
	Domain          string                 `json:"domain"`
	Type            string                 `json:"type"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description,omitempty"`
	Data            map[string]interface{} `json:"data,omitempty"`
	ChangePreview   string                 `json:"change_preview,omitempty"`
	RequestedBy     string                 `json:"requested_by"`
	RequestedByName string                 `json:"requested_by_name,omitempty"`
	RequestedByRole string                 `json:"requested_by_role,omitempty"`
	RequestComment  string                 `json:"request_comment,omitempty"`
	IPAddress       string                 `json:"ip_address,omitempty"`
	Status          Status                 `json:"status"`
	Votes           []Vote                 `json:"votes"`
	Version         int64                  `json:"version"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// HasVoted returns true if the given user already has a vote on the request.
func (r *Request) HasVoted(userID string) bool {
	for _, v := range r.Votes {
		if v.UserID == userID {
			return true
		}
	}
	return false
}

// ApproveCount returns the number of APPROVE votes on the request.
func (r *Request) ApproveCount() int {
	n := 0
	for _, v := range r.Votes {
		if v.Decision == DecisionApprove {
			n++
		}
	}
	return n
}

// HasRejection returns true if any vote on the request is a REJECT.
func (r *Request) HasRejection() bool {
	for _, v := range r.Votes {
		if v.Decision == DecisionReject {
			return true
		}
	}
	return false
}

// ComputeStatus derives the aggregate status from the recorded votes.
// A single rejection vetoes the request regardless of prior approvals;
// otherwise the request is approved once the required approval count is
// reached, and pending until then.
func (r *Request) ComputeStatus(requiredApprovals int) Status {
	if r.HasRejection() {
		return StatusRejected
	}
	if r.ApproveCount() >= requiredApprovals {
		return StatusApproved
	}
	return StatusPending
}

// Filter narrows request queries. TenantID is mandatory; zero-valued
// fields are not applied.
type Filter struct {
	TenantID  string
	CompanyID string
	Domain    string
	Type      string
	Status    Status
}

// AuthContext carries the authenticated caller identity, resolved by the
// boundary layer from upstream-trusted headers. The engine never reads
// identity from anywhere else.
type AuthContext struct {
	UserID   string
	UserName string
	Role     string
}
