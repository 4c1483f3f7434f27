package funcz

import (
	"context"
	"sync"
	"time"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Observability constants for the Handle connector.
const (
	// Metrics.
	HandleProcessedTotal = metricz.Key("handle.processed.total")
	HandleErrorsTotal    = metricz.Key("handle.errors.total")
	HandleHandlerErrors  = metricz.Key("handle.handler.errors.total")

	// Spans.
	HandleProcessSpan = tracez.Key("handle.process")
	HandleErrorSpan   = tracez.Key("handle.error")

	// Tags.
	HandleTagHasError     = tracez.Tag("handle.has_error")
	HandleTagHandlerError = tracez.Tag("handle.handler_error")

	// Hook event keys.
	HandleEventError        = hookz.Key("handle.error")
	HandleEventHandled      = hookz.Key("handle.handled")
	HandleEventHandlerError = hookz.Key("handle.handler_error")
)

// HandleEvent is emitted via hookz when the wrapped stage fails, when
// the error handler succeeds, and when the error handler itself fails.
type HandleEvent struct {
	Name         Name          // Connector name
	StageName    Name          // Name of the stage that failed
	Error        error         // The original error
	HandlerName  Name          // Name of the error handler
	HandlerError error         // Error from handler (if any)
	InputData    any           // The value that caused the error
	Duration     time.Duration // How long the error handler took
	Timestamp    time.Time     // When the event occurred
}

// Handle is the observable form of ConsumerEx.HandleEx. When the wrapped
// stage fails, Handle passes the *Error[T] to an error handler stage
// (logging, cleanup, alerts) and then returns the original error
// unchanged. Failures of the handler are recorded but never replace the
// original error.
//
// # Observability
//
// Metrics:
//   - handle.processed.total: Counter of handle operations
//   - handle.errors.total: Counter of stage errors
//   - handle.handler.errors.total: Counter of error handler failures
//
// Traces:
//   - handle.process: Parent span
//   - handle.error: Child span for error handler execution
//
// Events (via hooks):
//   - handle.error: Fired when the stage returns an error
//   - handle.handled: Fired when the error handler succeeds
//   - handle.handler_error: Fired when the error handler itself fails
type Handle[T any] struct {
	stage        Stage[T]
	errorHandler Stage[*Error[T]]
	name         Name
	mu           sync.RWMutex
	clock        clockz.Clock
	metrics      *metricz.Registry
	tracer       *tracez.Tracer
	hooks        *hookz.Hooks[HandleEvent]
}

// NewHandle creates a Handle connector.
//
// Example:
//
//	logged := funcz.NewHandle("with-logging",
//	    funcz.Lift("save", saveOrder),
//	    funcz.Tap("log", func(err *funcz.Error[Order]) {
//	        log.Printf("order %s failed: %v", err.InputData.ID, err.Err)
//	    }),
//	)
func NewHandle[T any](name Name, stage Stage[T], errorHandler Stage[*Error[T]]) *Handle[T] {
	if isNilStage(stage) || isNilStage(errorHandler) {
		panic(nilOperation("NewHandle"))
	}

	metrics := metricz.New()
	metrics.Counter(HandleProcessedTotal)
	metrics.Counter(HandleErrorsTotal)
	metrics.Counter(HandleHandlerErrors)

	return &Handle[T]{
		name:         name,
		stage:        stage,
		errorHandler: errorHandler,
		clock:        clockz.RealClock,
		metrics:      metrics,
		tracer:       tracez.New(),
		hooks:        hookz.New[HandleEvent](),
	}
}

// Accept implements Stage.
func (h *Handle[T]) Accept(ctx context.Context, input T) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	h.mu.RLock()
	stage := h.stage
	errorHandler := h.errorHandler
	clock := h.clock
	h.mu.RUnlock()

	h.metrics.Counter(HandleProcessedTotal).Inc()

	ctx, span := h.tracer.StartSpan(ctx, HandleProcessSpan)
	defer func() {
		if err != nil {
			span.SetTag(HandleTagHasError, "true")
		} else {
			span.SetTag(HandleTagHasError, "false")
		}
		span.Finish()
	}()
	defer recoverStage(&err, h.name, input, clock)

	start := clock.Now()
	stageErr := stage.Accept(ctx, input)
	if stageErr == nil {
		return nil
	}
	h.metrics.Counter(HandleErrorsTotal).Inc()

	_ = h.hooks.Emit(ctx, HandleEventError, HandleEvent{ //nolint:errcheck
		Name:        h.name,
		StageName:   stage.Name(),
		Error:       stageErr,
		HandlerName: errorHandler.Name(),
		InputData:   input,
		Timestamp:   clock.Now(),
	})

	ferr := wrapError(stageErr, h.name, input, clock.Now(), clock.Since(start))

	errorCtx, errorSpan := h.tracer.StartSpan(ctx, HandleErrorSpan)
	handlerStart := clock.Now()
	handlerErr := errorHandler.Accept(errorCtx, ferr)
	handlerDuration := clock.Since(handlerStart)

	event := HandleEvent{
		Name:        h.name,
		StageName:   stage.Name(),
		Error:       stageErr,
		HandlerName: errorHandler.Name(),
		InputData:   input,
		Duration:    handlerDuration,
		Timestamp:   clock.Now(),
	}
	if handlerErr != nil {
		h.metrics.Counter(HandleHandlerErrors).Inc()
		errorSpan.SetTag(HandleTagHandlerError, handlerErr.Error())
		event.HandlerError = handlerErr
		_ = h.hooks.Emit(ctx, HandleEventHandlerError, event) //nolint:errcheck
	} else {
		_ = h.hooks.Emit(ctx, HandleEventHandled, event) //nolint:errcheck
	}
	errorSpan.Finish()

	return ferr
}

// SetStage replaces the wrapped stage.
func (h *Handle[T]) SetStage(stage Stage[T]) *Handle[T] {
	if isNilStage(stage) {
		panic(nilOperation("Handle.SetStage"))
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stage = stage
	return h
}

// SetErrorHandler replaces the error handler.
func (h *Handle[T]) SetErrorHandler(handler Stage[*Error[T]]) *Handle[T] {
	if isNilStage(handler) {
		panic(nilOperation("Handle.SetErrorHandler"))
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errorHandler = handler
	return h
}

// WithClock sets the clock used for timestamps and durations.
func (h *Handle[T]) WithClock(clock clockz.Clock) *Handle[T] {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clock = clock
	return h
}

// Name returns the name of this connector.
func (h *Handle[T]) Name() Name {
	return h.name
}

// Metrics returns the metrics registry for this connector.
func (h *Handle[T]) Metrics() *metricz.Registry {
	return h.metrics
}

// Tracer returns the tracer for this connector.
func (h *Handle[T]) Tracer() *tracez.Tracer {
	return h.tracer
}

// Close shuts down the tracer and hooks.
func (h *Handle[T]) Close() error {
	if h.tracer != nil {
		h.tracer.Close()
	}
	h.hooks.Close()
	return nil
}

// OnError registers a handler fired asynchronously when the stage fails.
func (h *Handle[T]) OnError(handler func(context.Context, HandleEvent) error) error {
	_, err := h.hooks.Hook(HandleEventError, handler)
	return err
}

// OnHandled registers a handler fired asynchronously after the error
// handler succeeds.
func (h *Handle[T]) OnHandled(handler func(context.Context, HandleEvent) error) error {
	_, err := h.hooks.Hook(HandleEventHandled, handler)
	return err
}

// OnHandlerError registers a handler fired asynchronously when the error
// handler itself fails.
func (h *Handle[T]) OnHandlerError(handler func(context.Context, HandleEvent) error) error {
	_, err := h.hooks.Hook(HandleEventHandlerError, handler)
	return err
}
