package funcz

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Observability constants for the Fallback connector.
const (
	// Metrics.
	FallbackProcessedTotal = metricz.Key("fallback.processed.total")
	FallbackAttemptsTotal  = metricz.Key("fallback.attempts.total")
	FallbackFailedTotal    = metricz.Key("fallback.failed.total")

	// Spans.
	FallbackProcessSpan = tracez.Key("fallback.process")

	// Tags.
	FallbackTagAttempts  = tracez.Tag("fallback.attempts")
	FallbackTagStageName = tracez.Tag("fallback.stage_name")

	// Hook event keys.
	FallbackEventAttempt = hookz.Key("fallback.attempt")
	FallbackEventFailed  = hookz.Key("fallback.failed")
)

// FallbackEvent is emitted via hookz when a stage is attempted and when
// every stage has failed.
type FallbackEvent struct {
	Name       Name          // Connector name
	StageName  Name          // Stage being attempted
	StageIndex int           // Position in the fallback chain (0-based)
	Error      error         // Last error (for failed)
	Duration   time.Duration // Time spent across attempts
	Timestamp  time.Time     // When the event occurred
}

// Fallback is the observable form of ConsumerEx.OnEx. It offers the
// value to each stage in order until one succeeds. When every stage
// fails, the last error is returned with this connector's name prepended
// to its path.
//
// Avoid circular references between Fallback instances: if every stage
// fails the recursion never ends.
type Fallback[T any] struct {
	name    Name
	stages  []Stage[T]
	mu      sync.RWMutex
	clock   clockz.Clock
	metrics *metricz.Registry
	tracer  *tracez.Tracer
	hooks   *hookz.Hooks[FallbackEvent]
}

// NewFallback creates a Fallback over primary and its alternatives.
//
// Example:
//
//	deliver := funcz.NewFallback("deliver",
//	    funcz.Lift("push", sendPush),
//	    funcz.Lift("email", sendEmail),
//	)
func NewFallback[T any](name Name, primary Stage[T], alternatives ...Stage[T]) *Fallback[T] {
	if isNilStage(primary) {
		panic(nilOperation("NewFallback"))
	}
	checkStages("NewFallback", alternatives)

	metrics := metricz.New()
	metrics.Counter(FallbackProcessedTotal)
	metrics.Counter(FallbackAttemptsTotal)
	metrics.Counter(FallbackFailedTotal)

	return &Fallback[T]{
		name:    name,
		stages:  append([]Stage[T]{primary}, alternatives...),
		clock:   clockz.RealClock,
		metrics: metrics,
		tracer:  tracez.New(),
		hooks:   hookz.New[FallbackEvent](),
	}
}

// Accept implements Stage.
func (f *Fallback[T]) Accept(ctx context.Context, input T) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	f.mu.RLock()
	stages := slices.Clone(f.stages)
	clock := f.clock
	f.mu.RUnlock()

	f.metrics.Counter(FallbackProcessedTotal).Inc()
	start := clock.Now()

	ctx, span := f.tracer.StartSpan(ctx, FallbackProcessSpan)
	attempts := 0
	defer func() {
		span.SetTag(FallbackTagAttempts, fmt.Sprintf("%d", attempts))
		span.Finish()
	}()
	defer recoverStage(&err, f.name, input, clock)

	var lastErr error
	for i, stage := range stages {
		attempts++
		f.metrics.Counter(FallbackAttemptsTotal).Inc()
		span.SetTag(FallbackTagStageName, stage.Name())
		_ = f.hooks.Emit(ctx, FallbackEventAttempt, FallbackEvent{ //nolint:errcheck
			Name:       f.name,
			StageName:  stage.Name(),
			StageIndex: i,
			Duration:   clock.Since(start),
			Timestamp:  clock.Now(),
		})

		if lastErr = stage.Accept(ctx, input); lastErr == nil {
			return nil
		}
	}

	f.metrics.Counter(FallbackFailedTotal).Inc()
	_ = f.hooks.Emit(ctx, FallbackEventFailed, FallbackEvent{ //nolint:errcheck
		Name:       f.name,
		StageIndex: len(stages) - 1,
		Error:      lastErr,
		Duration:   clock.Since(start),
		Timestamp:  clock.Now(),
	})
	return wrapError(lastErr, f.name, input, clock.Now(), clock.Since(start))
}

// AddFallback appends a stage to the end of the chain.
func (f *Fallback[T]) AddFallback(stage Stage[T]) *Fallback[T] {
	if isNilStage(stage) {
		panic(nilOperation("Fallback.AddFallback"))
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stages = append(f.stages, stage)
	return f
}

// Len returns the number of stages in the chain.
func (f *Fallback[T]) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.stages)
}

// WithClock sets the clock used for timestamps and durations.
func (f *Fallback[T]) WithClock(clock clockz.Clock) *Fallback[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clock = clock
	return f
}

// Name returns the name of this connector.
func (f *Fallback[T]) Name() Name {
	return f.name
}

// Metrics returns the metrics registry for this connector.
func (f *Fallback[T]) Metrics() *metricz.Registry {
	return f.metrics
}

// Tracer returns the tracer for this connector.
func (f *Fallback[T]) Tracer() *tracez.Tracer {
	return f.tracer
}

// Close shuts down the tracer and hooks.
func (f *Fallback[T]) Close() error {
	if f.tracer != nil {
		f.tracer.Close()
	}
	f.hooks.Close()
	return nil
}

// OnAttempt registers a handler fired asynchronously before each stage
// is attempted.
func (f *Fallback[T]) OnAttempt(handler func(context.Context, FallbackEvent) error) error {
	_, err := f.hooks.Hook(FallbackEventAttempt, handler)
	return err
}

// OnFailed registers a handler fired asynchronously when every stage
// has failed.
func (f *Fallback[T]) OnFailed(handler func(context.Context, FallbackEvent) error) error {
	_, err := f.hooks.Hook(FallbackEventFailed, handler)
	return err
}
