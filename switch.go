package funcz

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Observability constants for the Switch connector.
const (
	// Metrics.
	SwitchProcessedTotal = metricz.Key("switch.processed.total")
	SwitchRoutedTotal    = metricz.Key("switch.routed.total")
	SwitchUnroutedTotal  = metricz.Key("switch.unrouted.total")

	// Spans.
	SwitchProcessSpan = tracez.Key("switch.process")

	// Tags.
	SwitchTagRouteKey = tracez.Tag("switch.route_key")
	SwitchTagRouted   = tracez.Tag("switch.routed")
	SwitchTagSuccess  = tracez.Tag("switch.success")

	// Hook event keys.
	SwitchEventRouted   = hookz.Key("switch.routed")
	SwitchEventUnrouted = hookz.Key("switch.unrouted")
)

// SwitchEvent is emitted via hookz for every routing decision.
type SwitchEvent[K comparable] struct {
	Name      Name          // Connector name
	RouteKey  K             // Key returned by the condition
	StageName Name          // Stage routed to, if any
	Routed    bool          // Whether a route existed
	Success   bool          // Whether the stage succeeded (if routed)
	Error     error         // Error from the stage (if failed)
	Duration  time.Duration // Stage duration (if routed)
	Timestamp time.Time     // When the event occurred
}

// Condition picks a route key for a value.
type Condition[T any, K comparable] func(context.Context, T) K

// Switch delivers each value to the stage registered under the key its
// condition returns. A value with no matching route is dropped without
// error.
//
// Example:
//
//	type Channel string
//	router := funcz.NewSwitch("notify", func(_ context.Context, u User) Channel {
//	    return u.PreferredChannel
//	}).
//	    AddRoute("email", sendEmail).
//	    AddRoute("sms", sendSMS)
type Switch[T any, K comparable] struct {
	condition Condition[T, K]
	routes    map[K]Stage[T] // copy-on-write
	name      Name
	mu        sync.RWMutex
	clock     clockz.Clock
	metrics   *metricz.Registry
	tracer    *tracez.Tracer
	hooks     *hookz.Hooks[SwitchEvent[K]]
}

// NewSwitch creates a Switch with no routes.
func NewSwitch[T any, K comparable](name Name, condition Condition[T, K]) *Switch[T, K] {
	if condition == nil {
		panic(nilOperation("NewSwitch"))
	}

	metrics := metricz.New()
	metrics.Counter(SwitchProcessedTotal)
	metrics.Counter(SwitchRoutedTotal)
	metrics.Counter(SwitchUnroutedTotal)

	return &Switch[T, K]{
		name:      name,
		condition: condition,
		routes:    make(map[K]Stage[T]),
		clock:     clockz.RealClock,
		metrics:   metrics,
		tracer:    tracez.New(),
		hooks:     hookz.New[SwitchEvent[K]](),
	}
}

// Accept implements Stage.
func (s *Switch[T, K]) Accept(ctx context.Context, value T) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.RLock()
	condition := s.condition
	routes := s.routes
	clock := s.clock
	s.mu.RUnlock()

	s.metrics.Counter(SwitchProcessedTotal).Inc()

	ctx, span := s.tracer.StartSpan(ctx, SwitchProcessSpan)
	defer func() {
		span.SetTag(SwitchTagSuccess, fmt.Sprintf("%t", err == nil))
		span.Finish()
	}()
	defer recoverStage(&err, s.name, value, clock)

	key := condition(ctx, value)
	span.SetTag(SwitchTagRouteKey, fmt.Sprintf("%v", key))

	stage, ok := routes[key]
	if !ok {
		span.SetTag(SwitchTagRouted, "false")
		s.metrics.Counter(SwitchUnroutedTotal).Inc()
		_ = s.hooks.Emit(ctx, SwitchEventUnrouted, SwitchEvent[K]{ //nolint:errcheck
			Name:      s.name,
			RouteKey:  key,
			Timestamp: clock.Now(),
		})
		return nil
	}

	span.SetTag(SwitchTagRouted, "true")
	s.metrics.Counter(SwitchRoutedTotal).Inc()

	start := clock.Now()
	stageErr := stage.Accept(ctx, value)
	elapsed := clock.Since(start)

	_ = s.hooks.Emit(ctx, SwitchEventRouted, SwitchEvent[K]{ //nolint:errcheck
		Name:      s.name,
		RouteKey:  key,
		StageName: stage.Name(),
		Routed:    true,
		Success:   stageErr == nil,
		Error:     stageErr,
		Duration:  elapsed,
		Timestamp: clock.Now(),
	})

	if stageErr != nil {
		return wrapError(stageErr, s.name, value, clock.Now(), elapsed)
	}
	return nil
}

// AddRoute adds or replaces the stage for key.
func (s *Switch[T, K]) AddRoute(key K, stage Stage[T]) *Switch[T, K] {
	if isNilStage(stage) {
		panic(nilOperation("Switch.AddRoute"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	routes := maps.Clone(s.routes)
	routes[key] = stage
	s.routes = routes
	return s
}

// RemoveRoute removes the stage for key.
func (s *Switch[T, K]) RemoveRoute(key K) *Switch[T, K] {
	s.mu.Lock()
	defer s.mu.Unlock()
	routes := maps.Clone(s.routes)
	delete(routes, key)
	s.routes = routes
	return s
}

// HasRoute reports whether key has a stage.
func (s *Switch[T, K]) HasRoute(key K) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.routes[key]
	return ok
}

// Routes returns a copy of the routing table.
func (s *Switch[T, K]) Routes() map[K]Stage[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.routes)
}

// ClearRoutes removes every route.
func (s *Switch[T, K]) ClearRoutes() *Switch[T, K] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes = make(map[K]Stage[T])
	return s
}

// SetCondition replaces the condition.
func (s *Switch[T, K]) SetCondition(condition Condition[T, K]) *Switch[T, K] {
	if condition == nil {
		panic(nilOperation("Switch.SetCondition"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.condition = condition
	return s
}

// WithClock sets the clock used for timestamps and durations.
func (s *Switch[T, K]) WithClock(clock clockz.Clock) *Switch[T, K] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
	return s
}

// Name returns the name of this connector.
func (s *Switch[T, K]) Name() Name {
	return s.name
}

// Metrics returns the metrics registry for this connector.
func (s *Switch[T, K]) Metrics() *metricz.Registry {
	return s.metrics
}

// Tracer returns the tracer for this connector.
func (s *Switch[T, K]) Tracer() *tracez.Tracer {
	return s.tracer
}

// Close shuts down the tracer and hooks.
func (s *Switch[T, K]) Close() error {
	if s.tracer != nil {
		s.tracer.Close()
	}
	s.hooks.Close()
	return nil
}

// OnRouted registers a handler fired asynchronously after a routed stage
// finishes.
func (s *Switch[T, K]) OnRouted(handler func(context.Context, SwitchEvent[K]) error) error {
	_, err := s.hooks.Hook(SwitchEventRouted, handler)
	return err
}

// OnUnrouted registers a handler fired asynchronously when no route
// matched.
func (s *Switch[T, K]) OnUnrouted(handler func(context.Context, SwitchEvent[K]) error) error {
	_, err := s.hooks.Hook(SwitchEventUnrouted, handler)
	return err
}
