package repos

import "errors"

var (
	// ErrNotFound is returned when a scoped lookup or update matches no row.
	ErrNotFound = errors.New("not found")
	// ErrFeedbackAlreadySet is returned when a session row exists for the
	// caller but its feedback was already recorded.
	ErrFeedbackAlreadySet = errors.New("feedback already set")
)
