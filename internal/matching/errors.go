package matching

import "errors"

var (
	ErrCandidateNotFound   = errors.New("candidate not found")
	ErrOpportunityNotFound = errors.New("opportunity not found")
	ErrMatchNotFound       = errors.New("match not found")
	ErrReconcileInProgress = errors.New("reconciliation already in progress")
)

// ValidationError wraps a caller-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }
