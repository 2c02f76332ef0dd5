package approval

import (
	"testing"
	"time"
)

func TestStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		expected bool
	}{
		{StatusPending, false},
		{StatusApproved, true},
		{StatusRejected, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.expected {
				t.Errorf("Status.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStatus_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		status   Status
		expected bool
	}{
		{"pending", StatusPending, true},
		{"approved", StatusApproved, true},
		{"rejected", StatusRejected, true},
		{"unknown", Status("CANCELLED"), false},
		{"empty", Status(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.IsValid(); got != tt.expected {
				t.Errorf("Status.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDecision_IsValid(t *testing.T) {
	tests := []struct {
		decision Decision
		expected bool
	}{
		{DecisionApprove, true},
		{DecisionReject, true},
		{Decision("ABSTAIN"), false},
		{Decision(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.decision), func(t *testing.T) {
			if got := tt.decision.IsValid(); got != tt.expected {
				t.Errorf("Decision.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func vote(userID string, decision Decision) Vote {
	return Vote{
		UserID:    userID,
		Decision:  decision,
		Timestamp: time.Now(),
	}
}

func TestRequest_ComputeStatus(t *testing.T) {
	tests := []struct {
		name     string
		votes    []Vote
		required int
		expected Status
	}{
		{
			name:     "no votes stays pending",
			votes:    nil,
			required: 2,
			expected: StatusPending,
		},
		{
			name:     "one of two approvals stays pending",
			votes:    []Vote{vote("a", DecisionApprove)},
			required: 2,
			expected: StatusPending,
		},
		{
			name:     "required approvals reached",
			votes:    []Vote{vote("a", DecisionApprove), vote("b", DecisionApprove)},
			required: 2,
			expected: StatusApproved,
		},
		{
			name:     "single approval policy",
			votes:    []Vote{vote("a", DecisionApprove)},
			required: 1,
			expected: StatusApproved,
		},
		{
			name:     "rejection wins over prior approval",
			votes:    []Vote{vote("a", DecisionApprove), vote("b", DecisionReject)},
			required: 2,
			expected: StatusRejected,
		},
		{
			name:     "rejection wins even past the approval threshold",
			votes:    []Vote{vote("a", DecisionApprove), vote("b", DecisionApprove), vote("c", DecisionReject)},
			required: 2,
			expected: StatusRejected,
		},
		{
			name:     "lone rejection",
			votes:    []Vote{vote("a", DecisionReject)},
			required: 2,
			expected: StatusRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &Request{Votes: tt.votes}
			if got := req.ComputeStatus(tt.required); got != tt.expected {
				t.Errorf("ComputeStatus(%d) = %v, want %v", tt.required, got, tt.expected)
			}
		})
	}
}

func TestRequest_HasVoted(t *testing.T) {
	req := &Request{Votes: []Vote{vote("alice", DecisionApprove)}}

	if !req.HasVoted("alice") {
		t.Error("HasVoted() should return true for recorded voter")
	}
	if req.HasVoted("bob") {
		t.Error("HasVoted() should return false for unknown voter")
	}
}

func TestRequest_ApproveCount(t *testing.T) {
	req := &Request{Votes: []Vote{
		vote("a", DecisionApprove),
		vote("b", DecisionReject),
		vote("c", DecisionApprove),
	}}

	if got := req.ApproveCount(); got != 2 {
		t.Errorf("ApproveCount() = %d, want 2", got)
	}
}
