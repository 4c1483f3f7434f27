package funcz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Error provides rich context about a failed stage.
// It wraps the underlying error with the path of stage names that led
// to the failure, the value being consumed, and whether the failure was
// due to timeout or cancellation.
type Error[T any] struct {
	Timestamp time.Time
	InputData T
	Err       error
	Path      []Name
	Duration  time.Duration
	Timeout   bool
	Canceled  bool
}

// Error implements the error interface, providing a detailed error message.
func (e *Error[T]) Error() string {
	location := strings.Join(e.Path, " -> ")
	if location == "" {
		location = "unknown"
	}

	if e.Timeout {
		return fmt.Sprintf("%s timed out after %v: %v", location, e.Duration, e.Err)
	}
	if e.Canceled {
		return fmt.Sprintf("%s canceled after %v: %v", location, e.Duration, e.Err)
	}
	return fmt.Sprintf("%s failed after %v: %v", location, e.Duration, e.Err)
}

// Unwrap returns the underlying error, supporting error wrapping patterns.
func (e *Error[T]) Unwrap() error {
	return e.Err
}

// IsTimeout returns true if the error was caused by a timeout.
func (e *Error[T]) IsTimeout() bool {
	return e.Timeout || errors.Is(e.Err, context.DeadlineExceeded)
}

// IsCanceled returns true if the error was caused by cancellation.
func (e *Error[T]) IsCanceled() bool {
	return e.Canceled || errors.Is(e.Err, context.Canceled)
}

// wrapError attaches name to err. An existing *Error[T] is copied with
// name prepended to its path; anything else is wrapped in a new *Error[T].
// The inner error is never modified: hook handlers and repeat callers may
// still hold it. When err wraps the *Error[T] rather than being it, the
// copy keeps err so the outer chain stays visible to errors.Is.
func wrapError[T any](err error, name Name, input T, at time.Time, elapsed time.Duration) *Error[T] {
	var ferr *Error[T]
	if errors.As(err, &ferr) {
		cp := *ferr
		cp.Path = make([]Name, 0, len(ferr.Path)+1)
		cp.Path = append(cp.Path, name)
		cp.Path = append(cp.Path, ferr.Path...)
		if err != error(ferr) {
			cp.Err = err
		}
		return &cp
	}
	return &Error[T]{
		Path:      []Name{name},
		InputData: input,
		Err:       err,
		Timestamp: at,
		Duration:  elapsed,
		Timeout:   errors.Is(err, context.DeadlineExceeded),
		Canceled:  errors.Is(err, context.Canceled),
	}
}
