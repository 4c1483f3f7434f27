package funcz

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/hookz"
)

// ScaffoldEventFailed is the hook key for background stage failures.
const ScaffoldEventFailed = hookz.Key("scaffold.failed")

// ScaffoldEvent is emitted via hookz when a background stage fails.
type ScaffoldEvent struct {
	Name      Name      // Connector name
	StageName Name      // Failed stage
	Error     error     // Stage error
	Timestamp time.Time // When the failure was observed
}

// Scaffold starts every stage in the background and returns at once.
// Stages run with a context that keeps the caller's values but is never
// canceled, so they outlive the request that started them. Accept never
// fails; stage failures are only visible through OnFailed.
//
// Example:
//
//	audit := funcz.NewScaffold("audit",
//	    funcz.Effect("warehouse", exportRow),
//	    funcz.Effect("siem", forwardEvent),
//	)
type Scaffold[T any] struct {
	name   Name
	stages []Stage[T]
	mu     sync.RWMutex
	clock  clockz.Clock
	hooks  *hookz.Hooks[ScaffoldEvent]
}

// NewScaffold creates a Scaffold.
func NewScaffold[T any](name Name, stages ...Stage[T]) *Scaffold[T] {
	checkStages("NewScaffold", stages)
	return &Scaffold[T]{
		name:   name,
		stages: slices.Clone(stages),
		clock:  clockz.RealClock,
		hooks:  hookz.New[ScaffoldEvent](),
	}
}

// Accept implements Stage.
func (s *Scaffold[T]) Accept(ctx context.Context, value T) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.RLock()
	stages := s.stages
	clock := s.clock
	s.mu.RUnlock()

	bg := context.WithoutCancel(ctx)
	for _, stage := range stages {
		go s.run(bg, stage, value, clock)
	}
	return nil
}

func (s *Scaffold[T]) run(ctx context.Context, stage Stage[T], value T, clock clockz.Clock) {
	var err error
	func() {
		defer recoverStage(&err, stage.Name(), value, clock)
		err = stage.Accept(ctx, value)
	}()
	if err != nil {
		_ = s.hooks.Emit(ctx, ScaffoldEventFailed, ScaffoldEvent{ //nolint:errcheck
			Name:      s.name,
			StageName: stage.Name(),
			Error:     err,
			Timestamp: clock.Now(),
		})
	}
}

// Add appends a stage.
func (s *Scaffold[T]) Add(stage Stage[T]) *Scaffold[T] {
	checkStages("Scaffold.Add", []Stage[T]{stage})
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stages = append(slices.Clone(s.stages), stage)
	return s
}

// Remove removes the stage at index.
func (s *Scaffold[T]) Remove(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.stages) {
		return ErrIndexOutOfBounds
	}
	s.stages = slices.Delete(slices.Clone(s.stages), index, index+1)
	return nil
}

// Len returns the number of stages.
func (s *Scaffold[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.stages)
}

// WithClock sets the clock used for event timestamps.
func (s *Scaffold[T]) WithClock(clock clockz.Clock) *Scaffold[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
	return s
}

// Name returns the name of this connector.
func (s *Scaffold[T]) Name() Name {
	return s.name
}

// Close shuts down the hooks. Stages already started keep running.
func (s *Scaffold[T]) Close() error {
	s.hooks.Close()
	return nil
}

// OnFailed registers a handler fired asynchronously when a background
// stage fails.
func (s *Scaffold[T]) OnFailed(handler func(context.Context, ScaffoldEvent) error) error {
	_, err := s.hooks.Hook(ScaffoldEventFailed, handler)
	return err
}
