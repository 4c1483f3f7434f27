package funcz

import (
	"context"
	"testing"
	"time"
)

func TestNilContext(t *testing.T) {
	// Held in a variable so the nil argument is explicit at each call.
	var nilCtx context.Context

	seen := make(chan bool, 1)
	observe := func() Stage[int] {
		return Effect("observe", func(ctx context.Context, _ int) error {
			seen <- ctx != nil
			return nil
		})
	}
	onError := Effect("on-error", func(context.Context, *Error[int]) error { return nil })

	tests := []struct {
		name  string
		stage func() Stage[int]
	}{
		{"Step", func() Stage[int] { return observe() }},
		{"Sequence", func() Stage[int] { return NewSequence[int]("seq", observe()) }},
		{"Concurrent", func() Stage[int] { return NewConcurrent[int]("fanout", observe()) }},
		{"WorkerPool", func() Stage[int] { return NewWorkerPool[int]("pool", 1, observe()) }},
		{"Scaffold", func() Stage[int] { return NewScaffold[int]("bg", observe()) }},
		{"Handle", func() Stage[int] { return NewHandle[int]("handle", observe(), onError) }},
		{"Fallback", func() Stage[int] { return NewFallback[int]("fallback", observe()) }},
		{"Filter", func() Stage[int] {
			return NewFilter[int]("filter", func(int) bool { return true }, observe())
		}},
		{"Switch", func() Stage[int] {
			return NewSwitch[int, channel]("router", func(context.Context, int) channel { return "all" }).
				AddRoute("all", observe())
		}},
		{"Retry", func() Stage[int] { return NewRetry[int]("retry", observe(), 2) }},
		{"Timeout", func() Stage[int] { return NewTimeout[int]("timeout", observe(), time.Second) }},
		{"CircuitBreaker", func() Stage[int] {
			return NewCircuitBreaker[int]("breaker", observe(), 3, time.Second)
		}},
		{"RateLimiter", func() Stage[int] { return NewRateLimiter[int]("limiter", 1000, 10, observe()) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage := tt.stage()
			if c, ok := stage.(interface{ Close() error }); ok {
				defer c.Close()
			}

			if err := stage.Accept(nilCtx, 1); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			select {
			case ok := <-seen:
				if !ok {
					t.Error("stage received a nil context")
				}
			case <-time.After(time.Second):
				t.Fatal("stage was not run")
			}
		})
	}
}

func TestTypedNilStage(t *testing.T) {
	var seq *Sequence[int]
	var handler *Sequence[*Error[int]]
	noop := Tap("noop", Consumer[int](func(int) {}))

	expectNilPanic(t, func() { NewSequence[int]("seq", seq) })
	expectNilPanic(t, func() { NewSequence[int]("seq").Register(noop, seq) })
	expectNilPanic(t, func() { NewConcurrent[int]("fanout", seq) })
	expectNilPanic(t, func() { NewWorkerPool[int]("pool", 1, seq) })
	expectNilPanic(t, func() { NewScaffold[int]("bg", seq) })
	expectNilPanic(t, func() { NewFallback[int]("fallback", seq) })
	expectNilPanic(t, func() { NewFallback[int]("fallback", noop, seq) })
	expectNilPanic(t, func() { NewHandle[int]("handle", seq, Effect("h", func(context.Context, *Error[int]) error { return nil })) })
	expectNilPanic(t, func() { NewHandle[int]("handle", noop, handler) })
	expectNilPanic(t, func() { NewFilter[int]("filter", func(int) bool { return true }, seq) })
	expectNilPanic(t, func() { NewRetry[int]("retry", seq, 1) })
	expectNilPanic(t, func() { NewTimeout[int]("timeout", seq, time.Second) })
	expectNilPanic(t, func() { NewCircuitBreaker[int]("breaker", seq, 1, time.Second) })
	expectNilPanic(t, func() { NewRateLimiter[int]("limiter", 1, 1, seq) })
	expectNilPanic(t, func() {
		NewSwitch[int, channel]("router", func(context.Context, int) channel { return "a" }).AddRoute("a", seq)
	})

	if isNilStage[int](noop) {
		t.Error("a Step value is never nil")
	}
}
