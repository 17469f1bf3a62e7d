package papergen

import (
	"errors"
	"fmt"
)

// Common sentinel errors for the paper generation service
var (
	// ErrPaperNotFound indicates that the paper does not exist or is not
	// owned by the requesting user.
	ErrPaperNotFound = errors.New("paper not found")
)

// ValidationError reports a bad batch request, rejected before any unit
// job is submitted and before the event stream opens.
type ValidationError struct {
	// Message is a human-readable description of what was rejected
	Message string
	// Err is the underlying domain error, if any
	Err error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid paper request: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("invalid paper request: %s", e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StreamError reports an event delivery failure. It is fatal to the
// batch; no commit is attempted after one.
type StreamError struct {
	Err error
}

// Error implements the error interface for StreamError.
func (e *StreamError) Error() string {
	return fmt.Sprintf("event stream failure: %v", e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StreamError) Unwrap() error {
	return e.Err
}

// PersistenceError reports a commit-phase storage failure. It is fatal
// to the batch and reported on the stream's error channel.
type PersistenceError struct {
	Err error
}

// Error implements the error interface for PersistenceError.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist paper: %v", e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}
