package api

import (
	"errors"
	"net/http"

	"github.com/taptosell/marketplace-workflow/internal/domain/workflow"
)

// statusForError maps workflow errors onto HTTP status codes. Anything
// outside the workflow taxonomy is treated as an internal error.
func statusForError(err error) int {
	switch {
	case errors.Is(err, workflow.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, workflow.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, workflow.ErrIllegalTransition):
		return http.StatusBadRequest
	case errors.Is(err, workflow.ErrMissingReason):
		return http.StatusBadRequest
	case errors.Is(err, workflow.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, workflow.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorCode returns a stable machine-readable code for a workflow error
func errorCode(err error) string {
	switch {
	case errors.Is(err, workflow.ErrNotFound):
		return "not_found"
	case errors.Is(err, workflow.ErrForbidden):
		return "forbidden"
	case errors.Is(err, workflow.ErrIllegalTransition):
		return "illegal_transition"
	case errors.Is(err, workflow.ErrMissingReason):
		return "missing_reason"
	case errors.Is(err, workflow.ErrConflict):
		return "conflict"
	case errors.Is(err, workflow.ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "internal_error"
	}
}
