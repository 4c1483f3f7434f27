package funcz

import (
	"context"
	"sync"
	"time"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/hookz"
)

// CircuitState is the state of a CircuitBreaker.
type CircuitState string

// Circuit states.
const (
	CircuitClosed   CircuitState = "closed"
	CircuitOpen     CircuitState = "open"
	CircuitHalfOpen CircuitState = "half-open"
)

// CircuitBreakerEventStateChange is the hook key for state transitions.
const CircuitBreakerEventStateChange = hookz.Key("circuitbreaker.state_change")

// CircuitBreakerEvent is emitted via hookz on every state transition.
type CircuitBreakerEvent struct {
	Name      Name         // Connector name
	From      CircuitState // Previous state
	To        CircuitState // New state
	Failures  int          // Consecutive failures at the time of the change
	Timestamp time.Time    // When the event occurred
}

// CircuitBreaker stops delivering values to a failing stage. After
// failureThreshold consecutive failures the circuit opens and every
// value is rejected with ErrCircuitOpen. Once resetTimeout has passed the
// circuit goes half-open and lets values through; successThreshold
// successes close it again, and any failure reopens it.
//
// Example:
//
//	var smsBreaker = funcz.NewCircuitBreaker("sms",
//	    funcz.Effect("twilio", sendSMS), 5, 30*time.Second)
type CircuitBreaker[T any] struct {
	stage            Stage[T]
	name             Name
	clock            clockz.Clock
	state            CircuitState
	lastFailTime     time.Time
	resetTimeout     time.Duration
	generation       int
	failureThreshold int
	successThreshold int
	failures         int
	successes        int
	mu               sync.Mutex
	hooks            *hookz.Hooks[CircuitBreakerEvent]
}

// NewCircuitBreaker creates a closed CircuitBreaker. failureThreshold
// below 1 is treated as 1.
func NewCircuitBreaker[T any](name Name, stage Stage[T], failureThreshold int, resetTimeout time.Duration) *CircuitBreaker[T] {
	if isNilStage(stage) {
		panic(nilOperation("NewCircuitBreaker"))
	}
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	return &CircuitBreaker[T]{
		name:             name,
		stage:            stage,
		clock:            clockz.RealClock,
		state:            CircuitClosed,
		failureThreshold: failureThreshold,
		successThreshold: 1,
		resetTimeout:     resetTimeout,
		hooks:            hookz.New[CircuitBreakerEvent](),
	}
}

// Accept implements Stage.
func (cb *CircuitBreaker[T]) Accept(ctx context.Context, value T) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cb.mu.Lock()
	clock := cb.clock
	if cb.state == CircuitOpen && clock.Since(cb.lastFailTime) > cb.resetTimeout {
		cb.transition(ctx, CircuitHalfOpen)
		cb.failures = 0
		cb.successes = 0
		cb.generation++
	}
	state := cb.state
	generation := cb.generation
	stage := cb.stage
	cb.mu.Unlock()

	if state == CircuitOpen {
		return &Error[T]{
			Err:       ErrCircuitOpen,
			InputData: value,
			Path:      []Name{cb.name},
			Timestamp: clock.Now(),
		}
	}

	start := clock.Now()
	err = cb.accept(ctx, stage, value, clock)

	cb.mu.Lock()
	defer cb.mu.Unlock()
	// A reset or state change during the call makes this result stale.
	if cb.generation == generation {
		if err != nil {
			cb.onFailure(ctx)
		} else {
			cb.onSuccess(ctx)
		}
	}
	if err != nil {
		return wrapError(err, cb.name, value, clock.Now(), clock.Since(start))
	}
	return nil
}

func (*CircuitBreaker[T]) accept(ctx context.Context, stage Stage[T], value T, clock clockz.Clock) (err error) {
	defer recoverStage(&err, stage.Name(), value, clock)
	return stage.Accept(ctx, value)
}

func (cb *CircuitBreaker[T]) onSuccess(ctx context.Context) {
	switch cb.state {
	case CircuitClosed:
		cb.failures = 0
	case CircuitHalfOpen:
		cb.successes++
		if cb.successes >= cb.successThreshold {
			cb.transition(ctx, CircuitClosed)
			cb.failures = 0
			cb.successes = 0
		}
	}
}

func (cb *CircuitBreaker[T]) onFailure(ctx context.Context) {
	cb.lastFailTime = cb.clock.Now()
	switch cb.state {
	case CircuitClosed:
		cb.failures++
		if cb.failures >= cb.failureThreshold {
			cb.transition(ctx, CircuitOpen)
			cb.generation++
		}
	case CircuitHalfOpen:
		cb.transition(ctx, CircuitOpen)
		cb.failures = 0
		cb.successes = 0
		cb.generation++
	}
}

// transition must be called with mu held.
func (cb *CircuitBreaker[T]) transition(ctx context.Context, to CircuitState) {
	from := cb.state
	cb.state = to
	_ = cb.hooks.Emit(ctx, CircuitBreakerEventStateChange, CircuitBreakerEvent{ //nolint:errcheck
		Name:      cb.name,
		From:      from,
		To:        to,
		Failures:  cb.failures,
		Timestamp: cb.clock.Now(),
	})
}

// State returns the current state, reporting half-open once the reset
// timeout has passed even if no value has arrived since.
func (cb *CircuitBreaker[T]) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == CircuitOpen && cb.clock.Since(cb.lastFailTime) > cb.resetTimeout {
		return CircuitHalfOpen
	}
	return cb.state
}

// SetFailureThreshold updates the consecutive failures that open the
// circuit.
func (cb *CircuitBreaker[T]) SetFailureThreshold(n int) *CircuitBreaker[T] {
	if n < 1 {
		n = 1
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failureThreshold = n
	return cb
}

// SetSuccessThreshold updates the half-open successes that close the
// circuit.
func (cb *CircuitBreaker[T]) SetSuccessThreshold(n int) *CircuitBreaker[T] {
	if n < 1 {
		n = 1
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.successThreshold = n
	return cb
}

// SetResetTimeout updates how long the circuit stays open.
func (cb *CircuitBreaker[T]) SetResetTimeout(d time.Duration) *CircuitBreaker[T] {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.resetTimeout = d
	return cb
}

// Reset closes the circuit and clears its counters.
func (cb *CircuitBreaker[T]) Reset() *CircuitBreaker[T] {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state != CircuitClosed {
		cb.transition(context.Background(), CircuitClosed)
	}
	cb.failures = 0
	cb.successes = 0
	cb.generation++
	return cb
}

// WithClock sets the clock used for the reset timeout.
func (cb *CircuitBreaker[T]) WithClock(clock clockz.Clock) *CircuitBreaker[T] {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.clock = clock
	return cb
}

// Name returns the name of this connector.
func (cb *CircuitBreaker[T]) Name() Name {
	return cb.name
}

// Close shuts down the hooks.
func (cb *CircuitBreaker[T]) Close() error {
	cb.hooks.Close()
	return nil
}

// OnStateChange registers a handler fired asynchronously on every state
// transition.
func (cb *CircuitBreaker[T]) OnStateChange(handler func(context.Context, CircuitBreakerEvent) error) error {
	_, err := cb.hooks.Hook(CircuitBreakerEventStateChange, handler)
	return err
}
