package funcz

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/zoobzio/clockz"
)

// Concurrent delivers the same value to every stage at once, each in its
// own goroutine, and waits for all of them. Every stage runs regardless
// of the others failing.
//
// A single failure is returned as *Error[T] with this connector's name
// prepended. Several failures are joined, in stage order, under one
// *Error[T] whose Err matches each of them with errors.Is.
//
// Stages share the value, so they must not mutate it.
//
// Example:
//
//	fanout := funcz.NewConcurrent("order-placed",
//	    funcz.Effect("email", sendEmail),
//	    funcz.Effect("sms", sendSMS),
//	    funcz.Effect("analytics", track),
//	)
type Concurrent[T any] struct {
	name   Name
	stages []Stage[T]
	mu     sync.RWMutex
	clock  clockz.Clock
}

// NewConcurrent creates a Concurrent.
func NewConcurrent[T any](name Name, stages ...Stage[T]) *Concurrent[T] {
	checkStages("NewConcurrent", stages)
	return &Concurrent[T]{
		name:   name,
		stages: slices.Clone(stages),
		clock:  clockz.RealClock,
	}
}

// Accept implements Stage.
func (c *Concurrent[T]) Accept(ctx context.Context, value T) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	c.mu.RLock()
	stages := c.stages
	clock := c.clock
	c.mu.RUnlock()

	if len(stages) == 0 {
		return nil
	}
	start := clock.Now()

	errs := make([]error, len(stages))
	var wg sync.WaitGroup
	wg.Add(len(stages))
	for i, stage := range stages {
		go func() {
			defer wg.Done()
			defer recoverStage(&errs[i], stage.Name(), value, clock)
			errs[i] = stage.Accept(ctx, value)
		}()
	}
	wg.Wait()

	return joinStageErrors(errs, c.name, value, clock.Now(), clock.Since(start))
}

// Add appends a stage.
func (c *Concurrent[T]) Add(stage Stage[T]) *Concurrent[T] {
	checkStages("Concurrent.Add", []Stage[T]{stage})
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stages = append(slices.Clone(c.stages), stage)
	return c
}

// Remove removes the stage at index.
func (c *Concurrent[T]) Remove(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.stages) {
		return ErrIndexOutOfBounds
	}
	c.stages = slices.Delete(slices.Clone(c.stages), index, index+1)
	return nil
}

// Len returns the number of stages.
func (c *Concurrent[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.stages)
}

// Clear removes every stage.
func (c *Concurrent[T]) Clear() *Concurrent[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stages = nil
	return c
}

// WithClock sets the clock used for timestamps and durations.
func (c *Concurrent[T]) WithClock(clock clockz.Clock) *Concurrent[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clock = clock
	return c
}

// Name returns the name of this connector.
func (c *Concurrent[T]) Name() Name {
	return c.name
}

// joinStageErrors folds per-stage results into one error under name.
// errs is indexed by stage; nil entries succeeded.
func joinStageErrors[T any](errs []error, name Name, value T, at time.Time, elapsed time.Duration) error {
	var failed []error
	for _, err := range errs {
		if err != nil {
			failed = append(failed, err)
		}
	}
	switch len(failed) {
	case 0:
		return nil
	case 1:
		return wrapError(failed[0], name, value, at, elapsed)
	}
	return &Error[T]{
		Path:      []Name{name},
		InputData: value,
		Err:       errors.Join(failed...),
		Timestamp: at,
		Duration:  elapsed,
	}
}
