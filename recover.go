package funcz

import (
	"fmt"
	"strings"

	"github.com/zoobzio/clockz"
)

// panicError carries a recovered panic as an error. The message is
// trimmed so large panic payloads do not end up in error strings.
type panicError struct {
	value     any
	sanitized string
}

func (p *panicError) Error() string {
	return p.sanitized
}

const maxPanicMessage = 256

func newPanicError(r any) *panicError {
	msg := fmt.Sprintf("%v", r)
	if len(msg) > maxPanicMessage {
		msg = msg[:maxPanicMessage] + "..."
	}
	msg = strings.ReplaceAll(msg, "\n", " ")
	return &panicError{value: r, sanitized: "panic occurred: " + msg}
}

// recoverStage converts a panic in a stage into an *Error[T] stored in
// err. It must be deferred directly.
func recoverStage[T any](err *error, name Name, input T, clock clockz.Clock) {
	if r := recover(); r != nil {
		*err = &Error[T]{
			Path:      []Name{name},
			InputData: input,
			Err:       newPanicError(r),
			Timestamp: clock.Now(),
		}
	}
}
