package approval

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a request does not exist or belongs to
	// another tenant
	ErrNotFound = errors.New("approval request not found")

	// ErrAlreadyTerminal is returned when voting on a decided request
	ErrAlreadyTerminal = errors.New("approval request already decided")

	// ErrDuplicateVote is returned when a user votes twice on the same request
	ErrDuplicateVote = errors.New("user has already voted on this request")

	// ErrNotEligible is returned when the voter's role is not eligible or
	// the voter is the requester and self-approval is disallowed
	ErrNotEligible = errors.New("user is not eligible to vote on this request")

	// ErrConcurrentModification is returned when a conditional write loses a
	// race with another writer; callers may reload and retry
	ErrConcurrentModification = errors.New("approval request was modified concurrently")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
