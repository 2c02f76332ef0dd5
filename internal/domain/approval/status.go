package approval

// Status represents the aggregate state of an approval request
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

var validStatuses = map[Status]bool{
	StatusPending:  true,
	StatusApproved: true,
	StatusRejected: true,
}

// IsTerminal returns true if the status is a terminal state (no further votes accepted)
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// IsValid returns true if the status is a known request status
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// Decision represents a single approver's verdict on a request
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

// IsValid returns true if the decision is a known decision value
func (d Decision) IsValid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// String returns the string representation of the decision
func (d Decision) String() string {
	return string(d)
}
