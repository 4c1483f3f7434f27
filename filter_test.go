package funcz

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/tracez"
)

func TestFilter(t *testing.T) {
	even := Predicate[int](func(n int) bool { return n%2 == 0 })

	t.Run("Runs Only When Predicate Holds", func(t *testing.T) {
		var seen []int
		f := NewFilter[int]("even-only", even, Tap("record", Consumer[int](func(n int) { seen = append(seen, n) })))
		defer f.Close()

		for i := 1; i <= 4; i++ {
			if err := f.Accept(context.Background(), i); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if !reflect.DeepEqual(seen, []int{2, 4}) {
			t.Errorf("unexpected values %v", seen)
		}
		if got := f.Metrics().Counter(FilterPassedTotal).Value(); got != 2 {
			t.Errorf("expected 2 passed, got %f", got)
		}
		if got := f.Metrics().Counter(FilterSkippedTotal).Value(); got != 2 {
			t.Errorf("expected 2 skipped, got %f", got)
		}
	})

	t.Run("Stage Failure Wrapped", func(t *testing.T) {
		errBoom := errors.New("boom")
		f := NewFilter[int]("even-only", even, failStep("save", errBoom))
		defer f.Close()

		if err := f.Accept(context.Background(), 1); err != nil {
			t.Errorf("skipped value should not fail, got %v", err)
		}

		err := f.Accept(context.Background(), 2)
		var ferr *Error[int]
		if !errors.As(err, &ferr) {
			t.Fatalf("expected *Error[int], got %T", err)
		}
		if !reflect.DeepEqual(ferr.Path, []Name{"even-only", "save"}) {
			t.Errorf("unexpected path %v", ferr.Path)
		}
	})

	t.Run("Events And Spans", func(t *testing.T) {
		f := NewFilter[int]("observed", even, Tap("noop", Consumer[int](func(int) {})))
		defer f.Close()

		var mu sync.Mutex
		var passed, skipped int
		var spans []tracez.Span
		if err := f.OnPassed(func(context.Context, FilterEvent) error {
			mu.Lock()
			passed++
			mu.Unlock()
			return nil
		}); err != nil {
			t.Fatal(err)
		}
		if err := f.OnSkipped(func(context.Context, FilterEvent) error {
			mu.Lock()
			skipped++
			mu.Unlock()
			return nil
		}); err != nil {
			t.Fatal(err)
		}
		f.Tracer().OnSpanComplete(func(span tracez.Span) {
			mu.Lock()
			spans = append(spans, span)
			mu.Unlock()
		})

		_ = f.Accept(context.Background(), 1) //nolint:errcheck
		_ = f.Accept(context.Background(), 2) //nolint:errcheck
		time.Sleep(20 * time.Millisecond)

		mu.Lock()
		defer mu.Unlock()
		if passed != 1 || skipped != 1 {
			t.Errorf("expected 1 passed and 1 skipped, got %d and %d", passed, skipped)
		}
		if len(spans) != 2 {
			t.Fatalf("expected 2 spans, got %d", len(spans))
		}
		for _, span := range spans {
			if span.Name != FilterProcessSpan {
				t.Errorf("unexpected span %v", span.Name)
			}
		}
	})

	t.Run("SetCondition", func(t *testing.T) {
		ran := false
		f := NewFilter[int]("f", even, Tap("noop", Consumer[int](func(int) { ran = true })))
		defer f.Close()
		f.SetCondition(even.Negate())

		_ = f.Accept(context.Background(), 3) //nolint:errcheck
		if !ran {
			t.Error("expected stage to run after condition change")
		}
	})

	t.Run("Nil Panics", func(t *testing.T) {
		stage := Tap("noop", Consumer[int](func(int) {}))
		expectNilPanic(t, func() { NewFilter[int]("f", nil, stage) })
		expectNilPanic(t, func() { NewFilter[int]("f", even, nil) })
	})
}
