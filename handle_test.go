package funcz

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

func TestHandle(t *testing.T) {
	errBoom := errors.New("boom")

	t.Run("Success Skips Handler", func(t *testing.T) {
		called := false
		h := NewHandle[int]("handle",
			Tap("ok", Consumer[int](func(int) {})),
			Tap("handler", Consumer[*Error[int]](func(*Error[int]) { called = true })),
		)
		defer h.Close()

		if err := h.Accept(context.Background(), 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if called {
			t.Error("handler should not run")
		}
		if got := h.Metrics().Counter(HandleErrorsTotal).Value(); got != 0 {
			t.Errorf("expected 0 errors, got %f", got)
		}
	})

	t.Run("Handler Receives Error And Original Is Returned", func(t *testing.T) {
		var handled *Error[int]
		h := NewHandle[int]("handle",
			failStep("save", errBoom),
			Tap("handler", Consumer[*Error[int]](func(e *Error[int]) { handled = e })),
		)
		defer h.Close()

		err := h.Accept(context.Background(), 42)

		if !errors.Is(err, errBoom) {
			t.Fatalf("expected errBoom, got %v", err)
		}
		if handled == nil {
			t.Fatal("handler did not run")
		}
		if handled.InputData != 42 {
			t.Errorf("expected input 42, got %d", handled.InputData)
		}
		if !reflect.DeepEqual(handled.Path, []Name{"handle", "save"}) {
			t.Errorf("unexpected path %v", handled.Path)
		}
		if got := h.Metrics().Counter(HandleErrorsTotal).Value(); got != 1 {
			t.Errorf("expected 1 error, got %f", got)
		}
	})

	t.Run("Handler Failure Does Not Replace Error", func(t *testing.T) {
		errHandler := errors.New("handler broke")
		h := NewHandle[int]("handle",
			failStep("save", errBoom),
			Effect("handler", func(context.Context, *Error[int]) error { return errHandler }),
		)
		defer h.Close()

		var mu sync.Mutex
		var events []HandleEvent
		if err := h.OnHandlerError(func(_ context.Context, e HandleEvent) error {
			mu.Lock()
			events = append(events, e)
			mu.Unlock()
			return nil
		}); err != nil {
			t.Fatal(err)
		}

		err := h.Accept(context.Background(), 1)
		if !errors.Is(err, errBoom) || errors.Is(err, errHandler) {
			t.Errorf("expected only errBoom, got %v", err)
		}
		if got := h.Metrics().Counter(HandleHandlerErrors).Value(); got != 1 {
			t.Errorf("expected 1 handler error, got %f", got)
		}

		time.Sleep(20 * time.Millisecond)
		mu.Lock()
		defer mu.Unlock()
		if len(events) != 1 || !errors.Is(events[0].HandlerError, errHandler) {
			t.Errorf("unexpected events %+v", events)
		}
	})

	t.Run("Setters Swap Stages", func(t *testing.T) {
		var handled int
		h := NewHandle[int]("handle",
			Tap("ok", Consumer[int](func(int) {})),
			Tap("first", Consumer[*Error[int]](func(*Error[int]) {})),
		)
		defer h.Close()
		h.SetStage(failStep("bad", errBoom)).
			SetErrorHandler(Tap("second", Consumer[*Error[int]](func(*Error[int]) { handled++ })))

		_ = h.Accept(context.Background(), 1) //nolint:errcheck
		if handled != 1 {
			t.Errorf("expected replacement handler to run once, got %d", handled)
		}
	})

	t.Run("Nil Panics", func(t *testing.T) {
		expectNilPanic(t, func() { NewHandle[int]("h", nil, Tap("x", Consumer[*Error[int]](func(*Error[int]) {}))) })
		expectNilPanic(t, func() { NewHandle[int]("h", failStep("x", errBoom), nil) })
	})
}
