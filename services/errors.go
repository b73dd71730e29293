package services

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a progress row or profile the caller asked for
// does not exist.
var ErrNotFound = errors.New("record not found")

// ErrHandleExhausted is returned when every attempt to allocate a unique
// handle collided. Treated as an internal fault, not a user error.
var ErrHandleExhausted = errors.New("could not allocate a unique handle")

// ValidationError rejects a client payload before any write happens. It is
// always recoverable locally: the caller gets the reason, nothing persists.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid progress data: " + e.Reason
	}
	return fmt.Sprintf("invalid progress data: %s: %s", e.Field, e.Reason)
}

func newValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
