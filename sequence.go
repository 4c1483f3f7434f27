package funcz

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Observability constants for the Sequence connector.
const (
	// Metrics.
	SequenceProcessedTotal  = metricz.Key("sequence.processed.total")
	SequenceSuccessesTotal  = metricz.Key("sequence.successes.total")
	SequenceFailuresTotal   = metricz.Key("sequence.failures.total")
	SequenceStagesCompleted = metricz.Key("sequence.stages.completed")
	SequenceStagesTotal     = metricz.Key("sequence.stages.total")
	SequenceDurationMs      = metricz.Key("sequence.duration.ms")

	// Spans.
	SequenceProcessSpan = tracez.Key("sequence.process")
	SequenceStageSpan   = tracez.Key("sequence.stage")

	// Tags.
	SequenceTagRunID       = tracez.Tag("sequence.run_id")
	SequenceTagStageCount  = tracez.Tag("sequence.stage_count")
	SequenceTagStageNumber = tracez.Tag("sequence.stage_number")
	SequenceTagStageName   = tracez.Tag("sequence.stage_name")
	SequenceTagSuccess     = tracez.Tag("sequence.success")
	SequenceTagError       = tracez.Tag("sequence.error")

	// Hook event keys.
	SequenceEventStageComplete = hookz.Key("sequence.stage_complete")
	SequenceEventAllComplete   = hookz.Key("sequence.all_complete")
)

// SequenceEvent is emitted via hookz when a stage finishes or when every
// stage of a run has succeeded.
type SequenceEvent struct {
	Name            Name          // Connector name
	RunID           uuid.UUID     // Identifies one Accept call
	StageName       Name          // Name of the stage
	StageNumber     int           // Current stage number (1-based)
	TotalStages     int           // Total number of stages
	Success         bool          // Whether the stage succeeded
	Error           error         // Error if stage failed
	Duration        time.Duration // How long this stage took
	CompletedStages int           // Number of stages completed (for all_complete)
	TotalDuration   time.Duration // Total time for all stages (for all_complete)
	Timestamp       time.Time     // When the event occurred
}

// Sequence runs an ordered list of stages against the same value, in
// registration order, stopping at the first failure. It is the named,
// observable, runtime-editable form of ChainEx.
//
// Sequence is safe for concurrent use. Accept takes a snapshot of the
// stage list, so edits made during a run apply to the next run.
//
// # Observability
//
// Metrics:
//   - sequence.processed.total: Counter of runs
//   - sequence.successes.total: Counter of successful runs
//   - sequence.failures.total: Counter of failed runs
//   - sequence.stages.completed: Gauge of stages completed in the last run
//   - sequence.stages.total: Gauge of stages in the last run
//   - sequence.duration.ms: Gauge of the last run's duration
//
// Traces:
//   - sequence.process: Parent span for a run
//   - sequence.stage: Child span per stage
//
// Events (via hooks):
//   - sequence.stage_complete: Fired as each stage finishes
//   - sequence.all_complete: Fired when every stage succeeded
type Sequence[T any] struct {
	name    Name
	stages  []Stage[T]
	mu      sync.RWMutex
	clock   clockz.Clock
	metrics *metricz.Registry
	tracer  *tracez.Tracer
	hooks   *hookz.Hooks[SequenceEvent]
}

// NewSequence creates a Sequence with optional initial stages.
//
// Example:
//
//	const (
//	    CheckoutName = funcz.Name("checkout")
//	    SaveName     = funcz.Name("save")
//	    NotifyName   = funcz.Name("notify")
//	)
//	seq := funcz.NewSequence(CheckoutName,
//	    funcz.Lift(SaveName, saveOrder),
//	    funcz.Lift(NotifyName, notifyCustomer),
//	)
func NewSequence[T any](name Name, stages ...Stage[T]) *Sequence[T] {
	checkStages("NewSequence", stages)

	metrics := metricz.New()
	metrics.Counter(SequenceProcessedTotal)
	metrics.Counter(SequenceSuccessesTotal)
	metrics.Counter(SequenceFailuresTotal)
	metrics.Gauge(SequenceStagesCompleted)
	metrics.Gauge(SequenceStagesTotal)
	metrics.Gauge(SequenceDurationMs)

	return &Sequence[T]{
		name:    name,
		stages:  slices.Clone(stages),
		clock:   clockz.RealClock,
		metrics: metrics,
		tracer:  tracez.New(),
		hooks:   hookz.New[SequenceEvent](),
	}
}

// Register appends stages. Stages run in the order they are registered.
func (c *Sequence[T]) Register(stages ...Stage[T]) {
	checkStages("Sequence.Register", stages)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stages = append(c.stages, stages...)
}

// Accept runs every stage on value. The context is checked before each
// stage; a canceled or expired context stops the run. The first failure
// stops the run and is returned as *Error[T] with this sequence's name
// prepended to the path.
func (c *Sequence[T]) Accept(ctx context.Context, value T) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	c.mu.RLock()
	stages := slices.Clone(c.stages)
	clock := c.clock
	c.mu.RUnlock()

	runID := uuid.New()
	c.metrics.Counter(SequenceProcessedTotal).Inc()
	c.metrics.Gauge(SequenceStagesTotal).Set(float64(len(stages)))
	start := clock.Now()

	ctx, span := c.tracer.StartSpan(ctx, SequenceProcessSpan)
	span.SetTag(SequenceTagRunID, runID.String())
	span.SetTag(SequenceTagStageCount, fmt.Sprintf("%d", len(stages)))
	defer func() {
		c.metrics.Gauge(SequenceDurationMs).Set(float64(clock.Since(start).Milliseconds()))
		if err == nil {
			span.SetTag(SequenceTagSuccess, "true")
			c.metrics.Counter(SequenceSuccessesTotal).Inc()
		} else {
			span.SetTag(SequenceTagSuccess, "false")
			span.SetTag(SequenceTagError, err.Error())
			c.metrics.Counter(SequenceFailuresTotal).Inc()
		}
		span.Finish()
	}()
	defer recoverStage(&err, c.name, value, clock)

	completed := 0
	c.metrics.Gauge(SequenceStagesCompleted).Set(0)

	for i, stage := range stages {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &Error[T]{
				Err:       ctxErr,
				InputData: value,
				Path:      []Name{c.name},
				Timeout:   errors.Is(ctxErr, context.DeadlineExceeded),
				Canceled:  errors.Is(ctxErr, context.Canceled),
				Timestamp: clock.Now(),
				Duration:  clock.Since(start),
			}
		}

		stageCtx, stageSpan := c.tracer.StartSpan(ctx, SequenceStageSpan)
		stageSpan.SetTag(SequenceTagStageNumber, fmt.Sprintf("%d", i+1))
		stageSpan.SetTag(SequenceTagStageName, stage.Name())

		stageStart := clock.Now()
		stageErr := stage.Accept(stageCtx, value)
		stageDuration := clock.Since(stageStart)
		stageSpan.Finish()

		_ = c.hooks.Emit(ctx, SequenceEventStageComplete, SequenceEvent{ //nolint:errcheck
			Name:        c.name,
			RunID:       runID,
			StageName:   stage.Name(),
			StageNumber: i + 1,
			TotalStages: len(stages),
			Success:     stageErr == nil,
			Error:       stageErr,
			Duration:    stageDuration,
			Timestamp:   clock.Now(),
		})

		if stageErr != nil {
			return wrapError(stageErr, c.name, value, clock.Now(), clock.Since(start))
		}
		completed++
		c.metrics.Gauge(SequenceStagesCompleted).Set(float64(completed))
	}

	_ = c.hooks.Emit(ctx, SequenceEventAllComplete, SequenceEvent{ //nolint:errcheck
		Name:            c.name,
		RunID:           runID,
		TotalStages:     len(stages),
		CompletedStages: completed,
		TotalDuration:   clock.Since(start),
		Success:         true,
		Timestamp:       clock.Now(),
	})

	return nil
}

// Consumer binds the sequence to ctx and returns it as a ConsumerEx.
func (c *Sequence[T]) Consumer(ctx context.Context) ConsumerEx[T] {
	return func(v T) error {
		return c.Accept(ctx, v)
	}
}

// Len returns the number of stages.
func (c *Sequence[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.stages)
}

// Clear removes all stages.
func (c *Sequence[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stages = nil
}

// Unshift adds stages to the front (they run first).
func (c *Sequence[T]) Unshift(stages ...Stage[T]) {
	checkStages("Sequence.Unshift", stages)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stages = slices.Insert(c.stages, 0, stages...)
}

// Push adds stages to the back (they run last).
func (c *Sequence[T]) Push(stages ...Stage[T]) {
	c.Register(stages...)
}

// Shift removes and returns the first stage.
func (c *Sequence[T]) Shift() (Stage[T], error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.stages) == 0 {
		return nil, ErrEmptySequence
	}
	stage := c.stages[0]
	c.stages = slices.Delete(c.stages, 0, 1)
	return stage, nil
}

// Pop removes and returns the last stage.
func (c *Sequence[T]) Pop() (Stage[T], error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.stages) == 0 {
		return nil, ErrEmptySequence
	}
	last := len(c.stages) - 1
	stage := c.stages[last]
	c.stages = c.stages[:last]
	return stage, nil
}

// At returns the stage at index.
func (c *Sequence[T]) At(index int) (Stage[T], error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if index < 0 || index >= len(c.stages) {
		return nil, fmt.Errorf("stage %d of %d: %w", index, len(c.stages), ErrIndexOutOfBounds)
	}
	return c.stages[index], nil
}

// Names returns the names of all stages in order.
func (c *Sequence[T]) Names() []Name {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]Name, len(c.stages))
	for i, s := range c.stages {
		names[i] = s.Name()
	}
	return names
}

// Remove removes the first stage with the given name.
func (c *Sequence[T]) Remove(name Name) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(name)
	if i < 0 {
		return fmt.Errorf("%q: %w", name, ErrStageNotFound)
	}
	c.stages = slices.Delete(c.stages, i, i+1)
	return nil
}

// Replace replaces the first stage with the given name.
func (c *Sequence[T]) Replace(name Name, stage Stage[T]) error {
	if isNilStage(stage) {
		panic(nilOperation("Sequence.Replace"))
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(name)
	if i < 0 {
		return fmt.Errorf("%q: %w", name, ErrStageNotFound)
	}
	c.stages[i] = stage
	return nil
}

// After inserts stages after the first stage with the given name.
func (c *Sequence[T]) After(name Name, stages ...Stage[T]) error {
	checkStages("Sequence.After", stages)
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(name)
	if i < 0 {
		return fmt.Errorf("%q: %w", name, ErrStageNotFound)
	}
	c.stages = slices.Insert(c.stages, i+1, stages...)
	return nil
}

// Before inserts stages before the first stage with the given name.
func (c *Sequence[T]) Before(name Name, stages ...Stage[T]) error {
	checkStages("Sequence.Before", stages)
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(name)
	if i < 0 {
		return fmt.Errorf("%q: %w", name, ErrStageNotFound)
	}
	c.stages = slices.Insert(c.stages, i, stages...)
	return nil
}

func checkStages[T any](method string, stages []Stage[T]) {
	for i, s := range stages {
		if isNilStage(s) {
			panic(nilEntry(method, i))
		}
	}
}

func (c *Sequence[T]) indexOf(name Name) int {
	return slices.IndexFunc(c.stages, func(s Stage[T]) bool {
		return s.Name() == name
	})
}

// Name returns the name of this sequence.
func (c *Sequence[T]) Name() Name {
	return c.name
}

// WithClock sets the clock used for timestamps and durations.
func (c *Sequence[T]) WithClock(clock clockz.Clock) *Sequence[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clock = clock
	return c
}

// Metrics returns the metrics registry for this connector.
func (c *Sequence[T]) Metrics() *metricz.Registry {
	return c.metrics
}

// Tracer returns the tracer for this connector.
func (c *Sequence[T]) Tracer() *tracez.Tracer {
	return c.tracer
}

// Close shuts down the tracer and hooks.
func (c *Sequence[T]) Close() error {
	if c.tracer != nil {
		c.tracer.Close()
	}
	c.hooks.Close()
	return nil
}

// OnStageComplete registers a handler fired asynchronously each time a
// stage finishes, whether it succeeds or fails.
func (c *Sequence[T]) OnStageComplete(handler func(context.Context, SequenceEvent) error) error {
	_, err := c.hooks.Hook(SequenceEventStageComplete, handler)
	return err
}

// OnAllComplete registers a handler fired asynchronously after a run in
// which every stage succeeded.
func (c *Sequence[T]) OnAllComplete(handler func(context.Context, SequenceEvent) error) error {
	_, err := c.hooks.Hook(SequenceEventAllComplete, handler)
	return err
}
