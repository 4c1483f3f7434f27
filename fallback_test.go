package funcz

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

func TestFallback(t *testing.T) {
	errPrimary := errors.New("primary down")
	errSecondary := errors.New("secondary down")

	t.Run("Primary Success", func(t *testing.T) {
		var mu sync.Mutex
		var calls []Name
		fb := NewFallback[int]("deliver",
			recordStep("push", &calls, &mu),
			recordStep("email", &calls, &mu),
		)
		defer fb.Close()

		if err := fb.Accept(context.Background(), 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(calls, []Name{"push"}) {
			t.Errorf("unexpected calls %v", calls)
		}
	})

	t.Run("Falls Back With Same Value", func(t *testing.T) {
		var got int
		fb := NewFallback[int]("deliver",
			failStep("push", errPrimary),
			Tap("email", Consumer[int](func(n int) { got = n })),
		)
		defer fb.Close()

		if err := fb.Accept(context.Background(), 7); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 7 {
			t.Errorf("expected 7, got %d", got)
		}
		if v := fb.Metrics().Counter(FallbackAttemptsTotal).Value(); v != 2 {
			t.Errorf("expected 2 attempts, got %f", v)
		}
	})

	t.Run("All Fail Returns Last Error", func(t *testing.T) {
		fb := NewFallback[int]("deliver", failStep("push", errPrimary)).
			AddFallback(failStep("email", errSecondary))
		defer fb.Close()

		var mu sync.Mutex
		var failed []FallbackEvent
		if err := fb.OnFailed(func(_ context.Context, e FallbackEvent) error {
			mu.Lock()
			failed = append(failed, e)
			mu.Unlock()
			return nil
		}); err != nil {
			t.Fatal(err)
		}

		err := fb.Accept(context.Background(), 1)

		var ferr *Error[int]
		if !errors.As(err, &ferr) {
			t.Fatalf("expected *Error[int], got %T", err)
		}
		if !errors.Is(err, errSecondary) || errors.Is(err, errPrimary) {
			t.Errorf("expected last error only, got %v", err)
		}
		if !reflect.DeepEqual(ferr.Path, []Name{"deliver", "email"}) {
			t.Errorf("unexpected path %v", ferr.Path)
		}
		if fb.Len() != 2 {
			t.Errorf("expected 2 stages, got %d", fb.Len())
		}

		time.Sleep(20 * time.Millisecond)
		mu.Lock()
		defer mu.Unlock()
		if len(failed) != 1 || failed[0].StageIndex != 1 {
			t.Errorf("unexpected failed events %+v", failed)
		}
	})

	t.Run("Nil Panics", func(t *testing.T) {
		expectNilPanic(t, func() { NewFallback[int]("f", nil) })
		expectNilPanic(t, func() { NewFallback[int]("f", failStep("x", errPrimary), nil) })
		fb := NewFallback[int]("f", failStep("x", errPrimary))
		expectNilPanic(t, func() { fb.AddFallback(nil) })
	})
}
