package funcz

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

type channel string

func TestSwitch(t *testing.T) {
	byParity := func(_ context.Context, n int) channel {
		if n%2 == 0 {
			return "even"
		}
		return "odd"
	}

	t.Run("Routes By Key", func(t *testing.T) {
		var mu sync.Mutex
		var calls []Name
		sw := NewSwitch[int, channel]("router", byParity).
			AddRoute("even", recordStep("even-stage", &calls, &mu)).
			AddRoute("odd", recordStep("odd-stage", &calls, &mu))
		defer sw.Close()

		for _, n := range []int{1, 2, 3} {
			if err := sw.Accept(context.Background(), n); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if !reflect.DeepEqual(calls, []Name{"odd-stage", "even-stage", "odd-stage"}) {
			t.Errorf("unexpected calls %v", calls)
		}
		if got := sw.Metrics().Counter(SwitchRoutedTotal).Value(); got != 3 {
			t.Errorf("expected 3 routed, got %f", got)
		}
	})

	t.Run("Unrouted Is Dropped", func(t *testing.T) {
		sw := NewSwitch[int, channel]("router", byParity).
			AddRoute("even", failStep("never", errors.New("should not run")))
		defer sw.Close()

		var mu sync.Mutex
		var unrouted []SwitchEvent[channel]
		if err := sw.OnUnrouted(func(_ context.Context, e SwitchEvent[channel]) error {
			mu.Lock()
			unrouted = append(unrouted, e)
			mu.Unlock()
			return nil
		}); err != nil {
			t.Fatal(err)
		}

		if err := sw.Accept(context.Background(), 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := sw.Metrics().Counter(SwitchUnroutedTotal).Value(); got != 1 {
			t.Errorf("expected 1 unrouted, got %f", got)
		}

		time.Sleep(20 * time.Millisecond)
		mu.Lock()
		defer mu.Unlock()
		if len(unrouted) != 1 || unrouted[0].RouteKey != "odd" {
			t.Errorf("unexpected events %+v", unrouted)
		}
	})

	t.Run("Route Failure Wrapped", func(t *testing.T) {
		errBoom := errors.New("boom")
		sw := NewSwitch[int, channel]("router", byParity).AddRoute("odd", failStep("sms", errBoom))
		defer sw.Close()

		err := sw.Accept(context.Background(), 1)
		var ferr *Error[int]
		if !errors.As(err, &ferr) {
			t.Fatalf("expected *Error[int], got %T", err)
		}
		if !reflect.DeepEqual(ferr.Path, []Name{"router", "sms"}) {
			t.Errorf("unexpected path %v", ferr.Path)
		}
	})

	t.Run("Route Table Edits", func(t *testing.T) {
		noop := Tap("noop", Consumer[int](func(int) {}))
		sw := NewSwitch[int, channel]("router", byParity).AddRoute("odd", noop).AddRoute("even", noop)
		defer sw.Close()

		routes := sw.Routes()
		delete(routes, "odd")
		if !sw.HasRoute("odd") {
			t.Error("Routes should return a copy")
		}
		sw.RemoveRoute("odd")
		if sw.HasRoute("odd") || !sw.HasRoute("even") {
			t.Error("unexpected routes after RemoveRoute")
		}
		sw.ClearRoutes()
		if len(sw.Routes()) != 0 {
			t.Error("expected no routes after ClearRoutes")
		}
	})

	t.Run("Condition Panic Recovered", func(t *testing.T) {
		sw := NewSwitch[int, channel]("router", func(context.Context, int) channel { panic("bad key") })
		defer sw.Close()

		var perr *panicError
		if err := sw.Accept(context.Background(), 1); !errors.As(err, &perr) {
			t.Errorf("expected panicError, got %v", err)
		}
	})

	t.Run("Nil Panics", func(t *testing.T) {
		expectNilPanic(t, func() { NewSwitch[int, channel]("router", nil) })
		sw := NewSwitch[int, channel]("router", byParity)
		expectNilPanic(t, func() { sw.AddRoute("odd", nil) })
		expectNilPanic(t, func() { sw.SetCondition(nil) })
	})
}
