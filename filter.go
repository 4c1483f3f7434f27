package funcz

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Metric keys for Filter connector observability.
const (
	FilterProcessedTotal = metricz.Key("filter.processed.total")
	FilterPassedTotal    = metricz.Key("filter.passed.total")
	FilterSkippedTotal   = metricz.Key("filter.skipped.total")
)

// Span names for Filter connector.
const (
	FilterProcessSpan = tracez.Key("filter.process")
)

// Span tags and hook keys for Filter connector.
const (
	FilterTagConnector    = tracez.Tag("filter.connector")
	FilterTagConditionMet = tracez.Tag("filter.condition_met")
	FilterTagSuccess      = tracez.Tag("filter.success")

	FilterEventPassed  = hookz.Key("filter.passed")
	FilterEventSkipped = hookz.Key("filter.skipped")
)

// FilterEvent is emitted via hookz for every filtering decision.
type FilterEvent struct {
	Name      Name          // Connector name
	Passed    bool          // Whether the stage ran
	StageName Name          // Name of the stage (if it ran)
	Success   bool          // Whether the stage succeeded (if it ran)
	Error     error         // Error if the stage failed
	Duration  time.Duration // Stage duration (if it ran)
	Timestamp time.Time     // When the event occurred
}

// Filter runs its stage only for values that satisfy a Predicate. Other
// values pass through with no error. It is the observable form of
// Predicate.When.
type Filter[T any] struct {
	stage     Stage[T]
	condition Predicate[T]
	name      Name
	mu        sync.RWMutex
	clock     clockz.Clock

	metrics *metricz.Registry
	tracer  *tracez.Tracer
	hooks   *hookz.Hooks[FilterEvent]
}

// NewFilter creates a Filter.
//
// Example:
//
//	premiumOnly := funcz.NewFilter("premium-only",
//	    func(o Order) bool { return o.Tier == "premium" },
//	    funcz.Lift("priority", enqueuePriority),
//	)
func NewFilter[T any](name Name, condition Predicate[T], stage Stage[T]) *Filter[T] {
	if condition == nil || isNilStage(stage) {
		panic(nilOperation("NewFilter"))
	}

	registry := metricz.New()
	registry.Counter(FilterProcessedTotal)
	registry.Counter(FilterPassedTotal)
	registry.Counter(FilterSkippedTotal)

	return &Filter[T]{
		name:      name,
		condition: condition,
		stage:     stage,
		clock:     clockz.RealClock,
		metrics:   registry,
		tracer:    tracez.New(),
		hooks:     hookz.New[FilterEvent](),
	}
}

// Accept implements Stage.
func (f *Filter[T]) Accept(ctx context.Context, input T) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	f.mu.RLock()
	condition := f.condition
	stage := f.stage
	clock := f.clock
	f.mu.RUnlock()

	ctx, span := f.tracer.StartSpan(ctx, FilterProcessSpan)
	defer span.Finish()
	defer recoverStage(&err, f.name, input, clock)
	span.SetTag(FilterTagConnector, f.name)

	f.metrics.Counter(FilterProcessedTotal).Inc()

	met := condition(input)
	span.SetTag(FilterTagConditionMet, fmt.Sprintf("%t", met))

	if !met {
		f.metrics.Counter(FilterSkippedTotal).Inc()
		span.SetTag(FilterTagSuccess, "true")
		_ = f.hooks.Emit(ctx, FilterEventSkipped, FilterEvent{ //nolint:errcheck
			Name:      f.name,
			Timestamp: clock.Now(),
		})
		return nil
	}

	f.metrics.Counter(FilterPassedTotal).Inc()
	start := clock.Now()
	stageErr := stage.Accept(ctx, input)
	elapsed := clock.Since(start)
	span.SetTag(FilterTagSuccess, fmt.Sprintf("%t", stageErr == nil))

	_ = f.hooks.Emit(ctx, FilterEventPassed, FilterEvent{ //nolint:errcheck
		Name:      f.name,
		Passed:    true,
		StageName: stage.Name(),
		Success:   stageErr == nil,
		Error:     stageErr,
		Duration:  elapsed,
		Timestamp: clock.Now(),
	})

	if stageErr != nil {
		return wrapError(stageErr, f.name, input, clock.Now(), elapsed)
	}
	return nil
}

// SetCondition replaces the predicate.
func (f *Filter[T]) SetCondition(condition Predicate[T]) *Filter[T] {
	if condition == nil {
		panic(nilOperation("Filter.SetCondition"))
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.condition = condition
	return f
}

// SetStage replaces the filtered stage.
func (f *Filter[T]) SetStage(stage Stage[T]) *Filter[T] {
	if isNilStage(stage) {
		panic(nilOperation("Filter.SetStage"))
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stage = stage
	return f
}

// WithClock sets the clock used for timestamps and durations.
func (f *Filter[T]) WithClock(clock clockz.Clock) *Filter[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clock = clock
	return f
}

// Name returns the name of this connector.
func (f *Filter[T]) Name() Name {
	return f.name
}

// Metrics returns the metrics registry for this connector.
func (f *Filter[T]) Metrics() *metricz.Registry {
	return f.metrics
}

// Tracer returns the tracer for this connector.
func (f *Filter[T]) Tracer() *tracez.Tracer {
	return f.tracer
}

// Close shuts down the tracer and hooks.
func (f *Filter[T]) Close() error {
	if f.tracer != nil {
		f.tracer.Close()
	}
	f.hooks.Close()
	return nil
}

// OnPassed registers a handler fired asynchronously when the stage ran.
func (f *Filter[T]) OnPassed(handler func(context.Context, FilterEvent) error) error {
	_, err := f.hooks.Hook(FilterEventPassed, handler)
	return err
}

// OnSkipped registers a handler fired asynchronously when a value did not
// satisfy the predicate.
func (f *Filter[T]) OnSkipped(handler func(context.Context, FilterEvent) error) error {
	_, err := f.hooks.Hook(FilterEventSkipped, handler)
	return err
}
