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

// Observability constants for the WorkerPool connector.
const (
	// Metrics.
	WorkerPoolProcessedTotal = metricz.Key("workerpool.processed.total")
	WorkerPoolSuccessesTotal = metricz.Key("workerpool.successes.total")
	WorkerPoolTasksTotal     = metricz.Key("workerpool.tasks.total")
	WorkerPoolWorkersMax     = metricz.Key("workerpool.workers.max")
	WorkerPoolWorkersActive  = metricz.Key("workerpool.workers.active")
	WorkerPoolQueueWaitMs    = metricz.Key("workerpool.queue.wait.ms")
	WorkerPoolDurationMs     = metricz.Key("workerpool.duration.ms")

	// Spans.
	WorkerPoolProcessSpan = tracez.Key("workerpool.process")
	WorkerPoolTaskSpan    = tracez.Key("workerpool.task")

	// Tags.
	WorkerPoolTagStageCount  = tracez.Tag("workerpool.stage_count")
	WorkerPoolTagWorkerCount = tracez.Tag("workerpool.worker_count")
	WorkerPoolTagStageName   = tracez.Tag("workerpool.stage_name")
	WorkerPoolTagSuccess     = tracez.Tag("workerpool.success")
	WorkerPoolTagError       = tracez.Tag("workerpool.error")

	// Hook event keys.
	WorkerPoolEventTaskComplete = hookz.Key("workerpool.task_complete")
	WorkerPoolEventAllComplete  = hookz.Key("workerpool.all_complete")
)

// WorkerPoolEvent is emitted via hookz as each stage finishes and once
// every stage of a run has finished.
type WorkerPoolEvent struct {
	Name            Name          // Connector name
	StageName       Name          // Stage name (task_complete)
	WorkerCount     int           // Worker limit
	QueueWait       time.Duration // Time spent waiting for a worker (task_complete)
	Success         bool          // Whether the stage succeeded (task_complete)
	Error           error         // Stage error (task_complete)
	Duration        time.Duration // Stage or run duration
	TotalTasks      int           // Stages in the run (all_complete)
	SuccessfulTasks int           // Stages that succeeded (all_complete)
	FailedTasks     int           // Stages that failed (all_complete)
	Timestamp       time.Time     // When the event occurred
}

// WorkerPool is Concurrent with a bound on how many stages run at once.
// Stages beyond the limit wait for a free worker; a stage still waiting
// when the context ends fails with the context error. An optional
// per-stage timeout bounds each stage.
//
// Failures are combined the same way Concurrent combines them.
//
// # Observability
//
// Metrics:
//   - workerpool.processed.total: Counter of runs
//   - workerpool.successes.total: Counter of runs where every stage succeeded
//   - workerpool.tasks.total: Counter of stages started
//   - workerpool.workers.max: Gauge of the worker limit
//   - workerpool.workers.active: Gauge of busy workers
//   - workerpool.queue.wait.ms: Gauge of the last queue wait
//   - workerpool.duration.ms: Gauge of the last run's duration
//
// Traces:
//   - workerpool.process: Parent span for a run
//   - workerpool.task: Child span per stage
//
// Events (via hooks):
//   - workerpool.task_complete: Fired as each stage finishes
//   - workerpool.all_complete: Fired when the run finishes
type WorkerPool[T any] struct {
	name    Name
	stages  []Stage[T]
	sem     chan struct{}
	timeout time.Duration
	mu      sync.RWMutex
	clock   clockz.Clock
	metrics *metricz.Registry
	tracer  *tracez.Tracer
	hooks   *hookz.Hooks[WorkerPoolEvent]
}

// NewWorkerPool creates a WorkerPool running at most workers stages at
// once. workers below 1 is treated as 1.
func NewWorkerPool[T any](name Name, workers int, stages ...Stage[T]) *WorkerPool[T] {
	checkStages("NewWorkerPool", stages)
	if workers < 1 {
		workers = 1
	}

	metrics := metricz.New()
	metrics.Counter(WorkerPoolProcessedTotal)
	metrics.Counter(WorkerPoolSuccessesTotal)
	metrics.Counter(WorkerPoolTasksTotal)
	metrics.Gauge(WorkerPoolWorkersMax).Set(float64(workers))
	metrics.Gauge(WorkerPoolWorkersActive)
	metrics.Gauge(WorkerPoolQueueWaitMs)
	metrics.Gauge(WorkerPoolDurationMs)

	return &WorkerPool[T]{
		name:    name,
		stages:  slices.Clone(stages),
		sem:     make(chan struct{}, workers),
		clock:   clockz.RealClock,
		metrics: metrics,
		tracer:  tracez.New(),
		hooks:   hookz.New[WorkerPoolEvent](),
	}
}

// Accept implements Stage.
func (w *WorkerPool[T]) Accept(ctx context.Context, value T) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	w.mu.RLock()
	stages := w.stages
	sem := w.sem
	timeout := w.timeout
	clock := w.clock
	w.mu.RUnlock()

	w.metrics.Counter(WorkerPoolProcessedTotal).Inc()
	start := clock.Now()

	ctx, span := w.tracer.StartSpan(ctx, WorkerPoolProcessSpan)
	span.SetTag(WorkerPoolTagStageCount, fmt.Sprintf("%d", len(stages)))
	span.SetTag(WorkerPoolTagWorkerCount, fmt.Sprintf("%d", cap(sem)))
	defer func() {
		w.metrics.Gauge(WorkerPoolDurationMs).Set(float64(clock.Since(start).Milliseconds()))
		if err == nil {
			span.SetTag(WorkerPoolTagSuccess, "true")
			w.metrics.Counter(WorkerPoolSuccessesTotal).Inc()
		} else {
			span.SetTag(WorkerPoolTagSuccess, "false")
			span.SetTag(WorkerPoolTagError, err.Error())
		}
		span.Finish()
	}()

	errs := make([]error, len(stages))
	var wg sync.WaitGroup
	wg.Add(len(stages))
	for i, stage := range stages {
		w.metrics.Counter(WorkerPoolTasksTotal).Inc()
		go func() {
			defer wg.Done()
			errs[i] = w.runTask(ctx, stage, value, sem, timeout, clock)
		}()
	}
	wg.Wait()

	failed := 0
	for _, e := range errs {
		if e != nil {
			failed++
		}
	}
	_ = w.hooks.Emit(ctx, WorkerPoolEventAllComplete, WorkerPoolEvent{ //nolint:errcheck
		Name:            w.name,
		WorkerCount:     cap(sem),
		TotalTasks:      len(stages),
		SuccessfulTasks: len(stages) - failed,
		FailedTasks:     failed,
		Duration:        clock.Since(start),
		Timestamp:       clock.Now(),
	})

	return joinStageErrors(errs, w.name, value, clock.Now(), clock.Since(start))
}

func (w *WorkerPool[T]) runTask(ctx context.Context, stage Stage[T], value T, sem chan struct{}, timeout time.Duration, clock clockz.Clock) (err error) {
	taskCtx, taskSpan := w.tracer.StartSpan(ctx, WorkerPoolTaskSpan)
	taskSpan.SetTag(WorkerPoolTagStageName, stage.Name())
	defer taskSpan.Finish()

	queued := clock.Now()
	acquired := false
	select {
	case sem <- struct{}{}:
		acquired = true
	case <-ctx.Done():
	}
	// A worker freed after the context ended must not start the stage.
	if ctxErr := ctx.Err(); ctxErr != nil {
		if acquired {
			<-sem
		}
		taskSpan.SetTag(WorkerPoolTagError, ctxErr.Error())
		w.emitTask(ctx, stage, cap(sem), 0, 0, ctxErr, clock)
		return ctxErr
	}
	wait := clock.Since(queued)
	w.metrics.Gauge(WorkerPoolQueueWaitMs).Set(float64(wait.Milliseconds()))
	w.metrics.Gauge(WorkerPoolWorkersActive).Set(float64(len(sem)))
	defer func() {
		<-sem
		w.metrics.Gauge(WorkerPoolWorkersActive).Set(float64(len(sem)))
	}()

	if timeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = clock.WithTimeout(taskCtx, timeout)
		defer cancel()
	}

	taskStart := clock.Now()
	defer func() {
		if err != nil {
			taskSpan.SetTag(WorkerPoolTagError, err.Error())
		}
		w.emitTask(ctx, stage, cap(sem), wait, clock.Since(taskStart), err, clock)
	}()
	defer recoverStage(&err, stage.Name(), value, clock)
	return stage.Accept(taskCtx, value)
}

func (w *WorkerPool[T]) emitTask(ctx context.Context, stage Stage[T], workers int, wait, elapsed time.Duration, err error, clock clockz.Clock) {
	_ = w.hooks.Emit(ctx, WorkerPoolEventTaskComplete, WorkerPoolEvent{ //nolint:errcheck
		Name:        w.name,
		StageName:   stage.Name(),
		WorkerCount: workers,
		QueueWait:   wait,
		Success:     err == nil,
		Error:       err,
		Duration:    elapsed,
		Timestamp:   clock.Now(),
	})
}

// Add appends a stage.
func (w *WorkerPool[T]) Add(stage Stage[T]) *WorkerPool[T] {
	checkStages("WorkerPool.Add", []Stage[T]{stage})
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stages = append(slices.Clone(w.stages), stage)
	return w
}

// Remove removes the stage at index.
func (w *WorkerPool[T]) Remove(index int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if index < 0 || index >= len(w.stages) {
		return ErrIndexOutOfBounds
	}
	w.stages = slices.Delete(slices.Clone(w.stages), index, index+1)
	return nil
}

// Len returns the number of stages.
func (w *WorkerPool[T]) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.stages)
}

// WithTimeout bounds each stage. Zero disables the bound.
func (w *WorkerPool[T]) WithTimeout(timeout time.Duration) *WorkerPool[T] {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.timeout = timeout
	return w
}

// SetWorkerCount changes the worker limit for later runs. Values below 1
// are ignored.
func (w *WorkerPool[T]) SetWorkerCount(workers int) *WorkerPool[T] {
	if workers < 1 {
		return w
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sem = make(chan struct{}, workers)
	w.metrics.Gauge(WorkerPoolWorkersMax).Set(float64(workers))
	return w
}

// WorkerCount returns the worker limit.
func (w *WorkerPool[T]) WorkerCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return cap(w.sem)
}

// WithClock sets the clock used for timeouts, timestamps and durations.
func (w *WorkerPool[T]) WithClock(clock clockz.Clock) *WorkerPool[T] {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clock = clock
	return w
}

// Name returns the name of this connector.
func (w *WorkerPool[T]) Name() Name {
	return w.name
}

// Metrics returns the metrics registry for this connector.
func (w *WorkerPool[T]) Metrics() *metricz.Registry {
	return w.metrics
}

// Tracer returns the tracer for this connector.
func (w *WorkerPool[T]) Tracer() *tracez.Tracer {
	return w.tracer
}

// Close shuts down the tracer and hooks.
func (w *WorkerPool[T]) Close() error {
	if w.tracer != nil {
		w.tracer.Close()
	}
	w.hooks.Close()
	return nil
}

// OnTaskComplete registers a handler fired asynchronously as each stage
// finishes.
func (w *WorkerPool[T]) OnTaskComplete(handler func(context.Context, WorkerPoolEvent) error) error {
	_, err := w.hooks.Hook(WorkerPoolEventTaskComplete, handler)
	return err
}

// OnAllComplete registers a handler fired asynchronously when a run
// finishes.
func (w *WorkerPool[T]) OnAllComplete(handler func(context.Context, WorkerPoolEvent) error) error {
	_, err := w.hooks.Hook(WorkerPoolEventAllComplete, handler)
	return err
}
