package funcz

import (
	"context"

	"github.com/zoobzio/clockz"
)

// Step is a named stage built from a function. Steps are immutable
// values; connectors hold them by value.
//
// The name appears in Error[T].Path, so prefer action-oriented names
// ("save_order", "notify_customer") kept as constants.
type Step[T any] struct {
	fn   func(context.Context, T) error
	name Name
}

// Effect creates a Step from a function that performs a side effect and
// may fail. Any returned error stops the enclosing connector.
//
// Example:
//
//	audit := funcz.Effect("audit", func(ctx context.Context, o Order) error {
//	    return auditLog.Write(ctx, o.ID)
//	})
func Effect[T any](name Name, fn func(context.Context, T) error) Step[T] {
	if fn == nil {
		panic(nilOperation("Effect"))
	}
	return Step[T]{name: name, fn: fn}
}

// Lift creates a Step from a ConsumerEx. The context is not passed on.
func Lift[T any](name Name, c ConsumerEx[T]) Step[T] {
	if c == nil {
		panic(nilOperation("Lift"))
	}
	return Step[T]{
		name: name,
		fn: func(_ context.Context, v T) error {
			return c(v)
		},
	}
}

// Tap creates a Step from a Consumer. It fails only if c panics.
func Tap[T any](name Name, c Consumer[T]) Step[T] {
	if c == nil {
		panic(nilOperation("Tap"))
	}
	return Step[T]{
		name: name,
		fn: func(_ context.Context, v T) error {
			c(v)
			return nil
		},
	}
}

// Accept implements Stage. Failures and panics are returned as *Error[T]
// with the step name as the last path element.
func (s Step[T]) Accept(ctx context.Context, v T) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	defer recoverStage(&err, s.name, v, clockz.RealClock)
	start := clockz.RealClock.Now()
	if ferr := s.fn(ctx, v); ferr != nil {
		return wrapError(ferr, s.name, v, clockz.RealClock.Now(), clockz.RealClock.Since(start))
	}
	return nil
}

// Name returns the step name.
func (s Step[T]) Name() Name {
	return s.name
}

// Consumer binds the step to ctx and returns it as a ConsumerEx.
func (s Step[T]) Consumer(ctx context.Context) ConsumerEx[T] {
	return func(v T) error {
		return s.Accept(ctx, v)
	}
}
