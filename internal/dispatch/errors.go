// Package dispatch is the boundary between callers and the domain
// calculators: it validates inputs, normalizes errors, and optionally wraps
// results in a response envelope.
package dispatch

import (
	"fmt"
	"net/http"
)

// FieldViolation describes one invalid field in a request.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the pipeline's structured error. Domain errors that are already
// an *Error pass through the boundary unchanged; everything else is
// normalized to an internal error carrying the original message.
type Error struct {
	Status  int              `json:"-"`
	Message string           `json:"message"`
	Fields  []FieldViolation `json:"errors,omitempty"`
}

func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s (%d field(s))", e.Message, len(e.Fields))
	}
	return e.Message
}

// NewValidationError builds a 422-equivalent error enumerating every
// violated field.
func NewValidationError(fields []FieldViolation) *Error {
	return &Error{
		Status:  http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Fields:  fields,
	}
}

// NewInternalError wraps an unexpected domain failure.
func NewInternalError(err error) *Error {
	return &Error{
		Status:  http.StatusInternalServerError,
		Message: fmt.Sprintf("An unexpected error occurred: %s", err),
	}
}
