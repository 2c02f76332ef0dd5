package approval

import "time"

// Audit actions recorded alongside every request state change.
const (
	AuditActionCreate      = "CREATE"
	AuditActionVote        = "VOTE"
	AuditActionAutoApprove = "AUTO_APPROVE"
)

// AuditEntry is one row of the append-only audit trail. Entries are written
// best-effort after the primary state change commits.
type AuditEntry struct {
	ID        int64     `json:"id"`
	TenantID  string    `json:"tenant_id"`
	RequestID string    `json:"request_id"`
	Action    string    `json:"action"`
	ActorID   string    `json:"actor_id"`
	ActorName string    `json:"actor_name,omitempty"`
	ActorRole string    `json:"actor_role,omitempty"`
	Decision  string    `json:"decision,omitempty"`
	Comment   string    `json:"comment,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
