package funcz

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
)

// Observability constants for the Timeout connector.
const (
	TimeoutProcessedTotal = metricz.Key("timeout.processed.total")
	TimeoutTimeoutsTotal  = metricz.Key("timeout.timeouts.total")

	TimeoutEventTriggered = hookz.Key("timeout.triggered")
)

// TimeoutEvent is emitted via hookz when a stage exceeds its limit.
type TimeoutEvent struct {
	Name      Name          // Connector name
	StageName Name          // Name of the stage that timed out
	Limit     time.Duration // Configured limit
	Timestamp time.Time     // When the event occurred
}

// Timeout bounds how long its stage may run. The stage receives a context
// that expires after the limit; if it has not returned by then, Accept
// returns a timeout *Error[T] without waiting for it.
//
// Stages that ignore their context keep running in the background after
// a timeout.
type Timeout[T any] struct {
	stage    Stage[T]
	name     Name
	duration time.Duration
	mu       sync.RWMutex
	clock    clockz.Clock
	metrics  *metricz.Registry
	hooks    *hookz.Hooks[TimeoutEvent]
}

// NewTimeout creates a Timeout.
func NewTimeout[T any](name Name, stage Stage[T], duration time.Duration) *Timeout[T] {
	if isNilStage(stage) {
		panic(nilOperation("NewTimeout"))
	}

	metrics := metricz.New()
	metrics.Counter(TimeoutProcessedTotal)
	metrics.Counter(TimeoutTimeoutsTotal)

	return &Timeout[T]{
		name:     name,
		stage:    stage,
		duration: duration,
		clock:    clockz.RealClock,
		metrics:  metrics,
		hooks:    hookz.New[TimeoutEvent](),
	}
}

// Accept implements Stage.
func (t *Timeout[T]) Accept(ctx context.Context, value T) error {
	if ctx == nil {
		ctx = context.Background()
	}
	t.mu.RLock()
	stage := t.stage
	duration := t.duration
	clock := t.clock
	t.mu.RUnlock()

	t.metrics.Counter(TimeoutProcessedTotal).Inc()
	start := clock.Now()

	ctx, cancel := clock.WithTimeout(ctx, duration)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		var err error
		defer func() { done <- err }()
		defer recoverStage(&err, stage.Name(), value, clock)
		err = stage.Accept(ctx, value)
	}()

	var err error
	select {
	case err = <-done:
		if err == nil {
			return nil
		}
	case <-ctx.Done():
	}

	// A stage that returns because its context expired counts as a
	// timeout, not as its own failure.
	ctxErr := ctx.Err()
	if ctxErr == nil {
		return wrapError(err, t.name, value, clock.Now(), clock.Since(start))
	}
	timedOut := errors.Is(ctxErr, context.DeadlineExceeded)
	if timedOut {
		t.metrics.Counter(TimeoutTimeoutsTotal).Inc()
		_ = t.hooks.Emit(context.WithoutCancel(ctx), TimeoutEventTriggered, TimeoutEvent{ //nolint:errcheck
			Name:      t.name,
			StageName: stage.Name(),
			Limit:     duration,
			Timestamp: clock.Now(),
		})
	}
	return &Error[T]{
		Err:       ctxErr,
		InputData: value,
		Path:      []Name{t.name},
		Timeout:   timedOut,
		Canceled:  errors.Is(ctxErr, context.Canceled),
		Timestamp: clock.Now(),
		Duration:  clock.Since(start),
	}
}

// SetDuration updates the limit.
func (t *Timeout[T]) SetDuration(d time.Duration) *Timeout[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.duration = d
	return t
}

// Duration returns the limit.
func (t *Timeout[T]) Duration() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.duration
}

// WithClock sets the clock that drives the deadline.
func (t *Timeout[T]) WithClock(clock clockz.Clock) *Timeout[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clock = clock
	return t
}

// Name returns the name of this connector.
func (t *Timeout[T]) Name() Name {
	return t.name
}

// Metrics returns the metrics registry for this connector.
func (t *Timeout[T]) Metrics() *metricz.Registry {
	return t.metrics
}

// Close shuts down the hooks.
func (t *Timeout[T]) Close() error {
	t.hooks.Close()
	return nil
}

// OnTriggered registers a handler fired asynchronously when the limit is
// exceeded.
func (t *Timeout[T]) OnTriggered(handler func(context.Context, TimeoutEvent) error) error {
	_, err := t.hooks.Hook(TimeoutEventTriggered, handler)
	return err
}
