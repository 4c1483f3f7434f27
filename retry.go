package funcz

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Observability constants for the Retry connector.
const (
	// Metrics.
	RetryProcessedTotal = metricz.Key("retry.processed.total")
	RetryAttemptsTotal  = metricz.Key("retry.attempts.total")
	RetryExhaustedTotal = metricz.Key("retry.exhausted.total")

	// Spans.
	RetryProcessSpan = tracez.Key("retry.process")

	// Tags.
	RetryTagAttempts = tracez.Tag("retry.attempts")
	RetryTagSuccess  = tracez.Tag("retry.success")

	// Hook event keys.
	RetryEventAttemptFailed = hookz.Key("retry.attempt_failed")
	RetryEventExhausted     = hookz.Key("retry.exhausted")
)

// RetryEvent is emitted via hookz after each failed attempt and when
// every attempt has failed.
type RetryEvent struct {
	Name        Name          // Connector name
	Attempt     int           // Attempt number (1-based)
	MaxAttempts int           // Configured attempt limit
	Error       error         // Error from the attempt
	NextDelay   time.Duration // Wait before the next attempt, zero if none
	Timestamp   time.Time     // When the event occurred
}

// Retry delivers the same value to its stage up to maxAttempts times,
// stopping at the first success. Without a backoff the attempts run back
// to back; WithBackoff spaces them baseDelay, 2*baseDelay, 4*baseDelay...
//
// The context is checked between attempts and while waiting. Retry is
// only appropriate for stages whose side effect is safe to repeat.
type Retry[T any] struct {
	stage       Stage[T]
	name        Name
	maxAttempts int
	baseDelay   time.Duration
	mu          sync.RWMutex
	clock       clockz.Clock

	metrics *metricz.Registry
	tracer  *tracez.Tracer
	hooks   *hookz.Hooks[RetryEvent]
}

// NewRetry creates a Retry. maxAttempts below 1 is treated as 1.
//
// Example:
//
//	publish := funcz.NewRetry("publish", funcz.Effect("kafka", send), 3).
//	    WithBackoff(100 * time.Millisecond)
func NewRetry[T any](name Name, stage Stage[T], maxAttempts int) *Retry[T] {
	if isNilStage(stage) {
		panic(nilOperation("NewRetry"))
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	metrics := metricz.New()
	metrics.Counter(RetryProcessedTotal)
	metrics.Counter(RetryAttemptsTotal)
	metrics.Counter(RetryExhaustedTotal)

	return &Retry[T]{
		name:        name,
		stage:       stage,
		maxAttempts: maxAttempts,
		clock:       clockz.RealClock,
		metrics:     metrics,
		tracer:      tracez.New(),
		hooks:       hookz.New[RetryEvent](),
	}
}

// Accept implements Stage.
func (r *Retry[T]) Accept(ctx context.Context, value T) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	r.mu.RLock()
	stage := r.stage
	maxAttempts := r.maxAttempts
	delay := r.baseDelay
	clock := r.clock
	r.mu.RUnlock()

	r.metrics.Counter(RetryProcessedTotal).Inc()
	start := clock.Now()

	ctx, span := r.tracer.StartSpan(ctx, RetryProcessSpan)
	defer span.Finish()
	defer recoverStage(&err, r.name, value, clock)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		r.metrics.Counter(RetryAttemptsTotal).Inc()
		span.SetTag(RetryTagAttempts, fmt.Sprintf("%d", attempt))

		lastErr = stage.Accept(ctx, value)
		if lastErr == nil {
			span.SetTag(RetryTagSuccess, "true")
			return nil
		}

		next := time.Duration(0)
		if attempt < maxAttempts {
			next = delay
		}
		_ = r.hooks.Emit(ctx, RetryEventAttemptFailed, RetryEvent{ //nolint:errcheck
			Name:        r.name,
			Attempt:     attempt,
			MaxAttempts: maxAttempts,
			Error:       lastErr,
			NextDelay:   next,
			Timestamp:   clock.Now(),
		})

		if attempt == maxAttempts {
			break
		}
		if next > 0 {
			select {
			case <-clock.After(next):
				delay *= 2
			case <-ctx.Done():
				return r.contextError(ctx.Err(), value, clock, start)
			}
		} else if ctxErr := ctx.Err(); ctxErr != nil {
			return r.contextError(ctxErr, value, clock, start)
		}
	}

	span.SetTag(RetryTagSuccess, "false")
	r.metrics.Counter(RetryExhaustedTotal).Inc()
	_ = r.hooks.Emit(ctx, RetryEventExhausted, RetryEvent{ //nolint:errcheck
		Name:        r.name,
		Attempt:     maxAttempts,
		MaxAttempts: maxAttempts,
		Error:       lastErr,
		Timestamp:   clock.Now(),
	})
	return wrapError(lastErr, r.name, value, clock.Now(), clock.Since(start))
}

func (r *Retry[T]) contextError(ctxErr error, value T, clock clockz.Clock, start time.Time) error {
	return &Error[T]{
		Err:       ctxErr,
		InputData: value,
		Path:      []Name{r.name},
		Timeout:   errors.Is(ctxErr, context.DeadlineExceeded),
		Canceled:  errors.Is(ctxErr, context.Canceled),
		Timestamp: clock.Now(),
		Duration:  clock.Since(start),
	}
}

// WithBackoff sets the delay before the second attempt. Each later delay
// doubles. Zero disables waiting.
func (r *Retry[T]) WithBackoff(baseDelay time.Duration) *Retry[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.baseDelay = baseDelay
	return r
}

// SetMaxAttempts updates the attempt limit. Values below 1 are treated as 1.
func (r *Retry[T]) SetMaxAttempts(n int) *Retry[T] {
	if n < 1 {
		n = 1
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.maxAttempts = n
	return r
}

// MaxAttempts returns the attempt limit.
func (r *Retry[T]) MaxAttempts() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.maxAttempts
}

// BaseDelay returns the backoff base delay.
func (r *Retry[T]) BaseDelay() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.baseDelay
}

// WithClock sets the clock used for waits, timestamps and durations.
func (r *Retry[T]) WithClock(clock clockz.Clock) *Retry[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clock = clock
	return r
}

// Name returns the name of this connector.
func (r *Retry[T]) Name() Name {
	return r.name
}

// Metrics returns the metrics registry for this connector.
func (r *Retry[T]) Metrics() *metricz.Registry {
	return r.metrics
}

// Tracer returns the tracer for this connector.
func (r *Retry[T]) Tracer() *tracez.Tracer {
	return r.tracer
}

// Close shuts down the tracer and hooks.
func (r *Retry[T]) Close() error {
	if r.tracer != nil {
		r.tracer.Close()
	}
	r.hooks.Close()
	return nil
}

// OnAttemptFailed registers a handler fired asynchronously after each
// failed attempt.
func (r *Retry[T]) OnAttemptFailed(handler func(context.Context, RetryEvent) error) error {
	_, err := r.hooks.Hook(RetryEventAttemptFailed, handler)
	return err
}

// OnExhausted registers a handler fired asynchronously when every attempt
// failed.
func (r *Retry[T]) OnExhausted(handler func(context.Context, RetryEvent) error) error {
	_, err := r.hooks.Hook(RetryEventExhausted, handler)
	return err
}
