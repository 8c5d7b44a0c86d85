package workflow

import "errors"

var (
	// ErrNotFound is returned when the target record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrForbidden is returned when the actor may not invoke the action
	ErrForbidden = errors.New("actor not permitted")

	// ErrIllegalTransition is returned when the action is not listed for
	// the record's current state
	ErrIllegalTransition = errors.New("illegal state transition")

	// ErrMissingReason is returned when a reason-required action carries
	// an empty or whitespace-only reason
	ErrMissingReason = errors.New("rejection reason required")

	// ErrConflict is returned when the record's state changed between
	// validation and commit; the caller may re-read and retry
	ErrConflict = errors.New("record changed concurrently")

	// ErrStoreUnavailable is returned on transient persistence failures;
	// the caller may retry after re-reading record state
	ErrStoreUnavailable = errors.New("record store unavailable")
)

// Terminal reports whether the error is final for this attempt. Terminal
// failures must be surfaced to the actor rather than retried automatically.
func Terminal(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrIllegalTransition) ||
		errors.Is(err, ErrMissingReason)
}

// Retryable reports whether the error is safe to retry after a re-read
func Retryable(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrStoreUnavailable)
}
