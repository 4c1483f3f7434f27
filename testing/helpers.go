// Package testing provides test utilities for funcz-based code.
//
// It includes a mock stage, a chaos stage for fault injection, and
// assertion helpers for checking what a pipeline delivered.
//
// Example usage:
//
//	func TestNotify(t *testing.T) {
//		email := funcztest.NewMockStage[Order](t, "email")
//		sms := funcztest.NewMockStage[Order](t, "sms").WithError(errDown)
//
//		fanout := funcz.NewConcurrent("notify", email, sms)
//		err := fanout.Accept(context.Background(), order)
//
//		require.ErrorIs(t, err, errDown)
//		funcztest.AssertAccepted(t, email, 1)
//	}
package testing

import (
	"context"
	"errors"
	"fmt"
	mathrand "math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zoobzio/funcz"
)

// MockStage is a configurable funcz.Stage that records every value it
// accepts.
type MockStage[T any] struct { //nolint:govet // fieldalignment: Test helper struct optimized for functionality over memory efficiency
	t           *testing.T
	name        funcz.Name
	callCount   int64
	lastInput   T
	returnErr   error
	delay       time.Duration
	panicMsg    string
	mu          sync.RWMutex
	callHistory []MockCall[T]
	maxHistory  int
}

// MockCall is a single recorded call to a MockStage.
type MockCall[T any] struct {
	Input     T
	Timestamp time.Time
	Context   context.Context
}

// NewMockStage creates a MockStage that accepts every value.
func NewMockStage[T any](t *testing.T, name funcz.Name) *MockStage[T] {
	return &MockStage[T]{
		t:          t,
		name:       name,
		maxHistory: 100,
	}
}

// WithError makes every subsequent call fail with err.
func (m *MockStage[T]) WithError(err error) *MockStage[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.returnErr = err
	return m
}

// WithDelay makes every call wait d, or until its context ends.
func (m *MockStage[T]) WithDelay(d time.Duration) *MockStage[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
	return m
}

// WithPanic makes every call panic with msg.
func (m *MockStage[T]) WithPanic(msg string) *MockStage[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panicMsg = msg
	return m
}

// WithHistorySize sets how many calls are kept. Zero disables history.
func (m *MockStage[T]) WithHistorySize(size int) *MockStage[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxHistory = size
	if size == 0 {
		m.callHistory = nil
	} else if len(m.callHistory) > size {
		m.callHistory = m.callHistory[len(m.callHistory)-size:]
	}
	return m
}

// Name implements funcz.Stage.
func (m *MockStage[T]) Name() funcz.Name {
	return m.name
}

// Accept implements funcz.Stage.
func (m *MockStage[T]) Accept(ctx context.Context, value T) error {
	atomic.AddInt64(&m.callCount, 1)

	m.mu.Lock()
	m.lastInput = value
	if m.maxHistory > 0 {
		m.callHistory = append(m.callHistory, MockCall[T]{
			Input:     value,
			Timestamp: time.Now(),
			Context:   ctx,
		})
		if len(m.callHistory) > m.maxHistory {
			m.callHistory = m.callHistory[1:]
		}
	}
	delay := m.delay
	returnErr := m.returnErr
	panicMsg := m.panicMsg
	m.mu.Unlock()

	if panicMsg != "" {
		panic(panicMsg)
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return returnErr
}

// CallCount returns how many times Accept has been called.
func (m *MockStage[T]) CallCount() int {
	return int(atomic.LoadInt64(&m.callCount))
}

// LastInput returns the most recently accepted value.
func (m *MockStage[T]) LastInput() T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastInput
}

// CallHistory returns a copy of the recorded calls, oldest first.
func (m *MockStage[T]) CallHistory() []MockCall[T] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.maxHistory == 0 {
		return nil
	}
	history := make([]MockCall[T], len(m.callHistory))
	copy(history, m.callHistory)
	return history
}

// Inputs returns the recorded values, oldest first.
func (m *MockStage[T]) Inputs() []T {
	history := m.CallHistory()
	inputs := make([]T, len(history))
	for i, c := range history {
		inputs[i] = c.Input
	}
	return inputs
}

// Reset clears call tracking. Configured behavior is kept.
func (m *MockStage[T]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	atomic.StoreInt64(&m.callCount, 0)
	m.lastInput = *new(T)
	m.callHistory = nil
}

// AssertAccepted fails the test unless mock was called exactly n times.
func AssertAccepted[T any](t *testing.T, mock *MockStage[T], expectedCalls int) {
	t.Helper()
	if actual := mock.CallCount(); actual != expectedCalls {
		t.Errorf("expected mock stage %s to be called %d times, but was called %d times",
			mock.name, expectedCalls, actual)
	}
}

// AssertNotAccepted fails the test if mock was called.
func AssertNotAccepted[T any](t *testing.T, mock *MockStage[T]) {
	t.Helper()
	AssertAccepted(t, mock, 0)
}

// AssertAcceptedWith fails the test unless the last value mock accepted
// equals expectedInput.
func AssertAcceptedWith[T comparable](t *testing.T, mock *MockStage[T], expectedInput T) {
	t.Helper()
	if mock.CallCount() == 0 {
		t.Errorf("expected mock stage %s to be called with %v, but it was never called",
			mock.name, expectedInput)
		return
	}
	if actual := mock.LastInput(); actual != expectedInput {
		t.Errorf("expected mock stage %s to be called with %v, but was called with %v",
			mock.name, expectedInput, actual)
	}
}

// AssertAcceptedBetween fails the test unless mock was called between
// minCalls and maxCalls times inclusive.
func AssertAcceptedBetween[T any](t *testing.T, mock *MockStage[T], minCalls, maxCalls int) {
	t.Helper()
	if actual := mock.CallCount(); actual < minCalls || actual > maxCalls {
		t.Errorf("expected mock stage %s to be called between %d and %d times, but was called %d times",
			mock.name, minCalls, maxCalls, actual)
	}
}

// AssertPath fails the test unless err is a *funcz.Error[T] whose path
// equals want.
func AssertPath[T any](t *testing.T, err error, want ...funcz.Name) {
	t.Helper()
	var ferr *funcz.Error[T]
	if !errors.As(err, &ferr) {
		t.Errorf("expected *funcz.Error, got %T (%v)", err, err)
		return
	}
	if len(ferr.Path) != len(want) {
		t.Errorf("expected path %v, got %v", want, ferr.Path)
		return
	}
	for i := range want {
		if ferr.Path[i] != want[i] {
			t.Errorf("expected path %v, got %v", want, ferr.Path)
			return
		}
	}
}

// Recorder collects values delivered to a funcz.Consumer. It is safe for
// concurrent use.
type Recorder[T any] struct {
	mu     sync.Mutex
	values []T
}

// Consumer returns a consumer that appends to the recorder.
func (r *Recorder[T]) Consumer() funcz.Consumer[T] {
	return func(v T) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.values = append(r.values, v)
	}
}

// Values returns a copy of the recorded values in arrival order.
func (r *Recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.values))
	copy(out, r.values)
	return out
}

// Len returns the number of recorded values.
func (r *Recorder[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}

// ChaosStage wraps a stage and injects failures, latency and panics at
// configured rates.
type ChaosStage[T any] struct { //nolint:govet // fieldalignment: Test helper struct optimized for functionality over memory efficiency
	name         funcz.Name
	wrapped      funcz.Stage[T]
	failureRate  float64
	latencyMin   time.Duration
	latencyMax   time.Duration
	timeoutRate  float64
	panicRate    float64
	rng          *mathrand.Rand
	mu           sync.Mutex
	totalCalls   int64
	failedCalls  int64
	timeoutCalls int64
	panicCalls   int64
}

// ErrChaos is returned by a ChaosStage for an injected failure.
var ErrChaos = errors.New("chaos stage induced failure")

// ChaosConfig configures a ChaosStage.
type ChaosConfig struct {
	FailureRate float64       // Probability of returning ErrChaos (0.0 to 1.0)
	LatencyMin  time.Duration // Minimum injected latency
	LatencyMax  time.Duration // Maximum injected latency
	TimeoutRate float64       // Probability of returning context.DeadlineExceeded
	PanicRate   float64       // Probability of panicking
	Seed        int64         // Random seed; 0 picks one from the clock
}

// NewChaosStage creates a ChaosStage around wrapped.
func NewChaosStage[T any](name funcz.Name, wrapped funcz.Stage[T], config ChaosConfig) *ChaosStage[T] {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &ChaosStage[T]{
		name:        name,
		wrapped:     wrapped,
		failureRate: config.FailureRate,
		latencyMin:  config.LatencyMin,
		latencyMax:  config.LatencyMax,
		timeoutRate: config.TimeoutRate,
		panicRate:   config.PanicRate,
		rng:         mathrand.New(mathrand.NewSource(seed)), //nolint:gosec // G404: deterministic chaos needs a seeded RNG
	}
}

// Name implements funcz.Stage.
func (c *ChaosStage[T]) Name() funcz.Name {
	return c.name
}

// Accept implements funcz.Stage with fault injection.
func (c *ChaosStage[T]) Accept(ctx context.Context, value T) error {
	atomic.AddInt64(&c.totalCalls, 1)

	c.mu.Lock()
	if c.rng.Float64() < c.panicRate {
		c.mu.Unlock()
		atomic.AddInt64(&c.panicCalls, 1)
		panic("chaos stage induced panic")
	}
	var latency time.Duration
	if c.latencyMax > c.latencyMin {
		latency = c.latencyMin + time.Duration(c.rng.Int63n(int64(c.latencyMax-c.latencyMin)))
	} else if c.latencyMin > 0 {
		latency = c.latencyMin
	}
	simulateTimeout := c.rng.Float64() < c.timeoutRate
	injectFailure := c.rng.Float64() < c.failureRate
	c.mu.Unlock()

	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if simulateTimeout {
		atomic.AddInt64(&c.timeoutCalls, 1)
		return context.DeadlineExceeded
	}
	if injectFailure {
		atomic.AddInt64(&c.failedCalls, 1)
		return ErrChaos
	}
	return c.wrapped.Accept(ctx, value)
}

// Stats returns injection counts so far.
func (c *ChaosStage[T]) Stats() ChaosStats {
	return ChaosStats{
		TotalCalls:   atomic.LoadInt64(&c.totalCalls),
		FailedCalls:  atomic.LoadInt64(&c.failedCalls),
		TimeoutCalls: atomic.LoadInt64(&c.timeoutCalls),
		PanicCalls:   atomic.LoadInt64(&c.panicCalls),
	}
}

// ChaosStats holds injection counts for a ChaosStage.
type ChaosStats struct {
	TotalCalls   int64
	FailedCalls  int64
	TimeoutCalls int64
	PanicCalls   int64
}

// FailureRate returns the observed failure rate.
func (s ChaosStats) FailureRate() float64 {
	if s.TotalCalls == 0 {
		return 0
	}
	return float64(s.FailedCalls) / float64(s.TotalCalls)
}

// String returns a human-readable summary.
func (s ChaosStats) String() string {
	return fmt.Sprintf("ChaosStats{Total: %d, Failed: %d (%.1f%%), Timeouts: %d, Panics: %d}",
		s.TotalCalls, s.FailedCalls, s.FailureRate()*100, s.TimeoutCalls, s.PanicCalls)
}

// WaitForCalls polls until mock has been called at least expectedCalls
// times or timeout passes. It reports whether the count was reached.
func WaitForCalls[T any](mock *MockStage[T], expectedCalls int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if mock.CallCount() >= expectedCalls {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return mock.CallCount() >= expectedCalls
}

// ParallelTest runs testFunc on goroutines goroutines and waits for all
// of them.
func ParallelTest(t *testing.T, goroutines int, testFunc func(int)) {
	t.Helper()

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			testFunc(id)
		}(i)
	}
	wg.Wait()
}
