package funcz

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"sync"
	"testing"
	"time"
)

func TestConcurrent(t *testing.T) {
	errA := errors.New("a failed")
	errB := errors.New("b failed")

	t.Run("Runs Every Stage", func(t *testing.T) {
		var mu sync.Mutex
		var calls []Name
		c := NewConcurrent[int]("fanout",
			recordStep("a", &calls, &mu),
			recordStep("b", &calls, &mu),
			recordStep("c", &calls, &mu),
		)

		if err := c.Accept(context.Background(), 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		sort.Strings(calls)
		if !reflect.DeepEqual(calls, []Name{"a", "b", "c"}) {
			t.Errorf("unexpected calls %v", calls)
		}
	})

	t.Run("Stages Run In Parallel", func(t *testing.T) {
		release := make(chan struct{})
		var started sync.WaitGroup
		started.Add(2)
		wait := func(name Name) Stage[int] {
			return Effect(name, func(context.Context, int) error {
				started.Done()
				<-release
				return nil
			})
		}
		c := NewConcurrent[int]("fanout", wait("a"), wait("b"))

		done := make(chan error, 1)
		go func() { done <- c.Accept(context.Background(), 1) }()

		started.Wait()
		close(release)
		if err := <-done; err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("Single Failure Wrapped", func(t *testing.T) {
		c := NewConcurrent[int]("fanout",
			Tap("ok", Consumer[int](func(int) {})),
			failStep("bad", errA),
		)

		err := c.Accept(context.Background(), 1)
		var ferr *Error[int]
		if !errors.As(err, &ferr) {
			t.Fatalf("expected *Error[int], got %T", err)
		}
		if !reflect.DeepEqual(ferr.Path, []Name{"fanout", "bad"}) {
			t.Errorf("unexpected path %v", ferr.Path)
		}
	})

	t.Run("Multiple Failures Joined", func(t *testing.T) {
		c := NewConcurrent[int]("fanout", failStep("a", errA), failStep("b", errB))

		err := c.Accept(context.Background(), 1)
		var ferr *Error[int]
		if !errors.As(err, &ferr) {
			t.Fatalf("expected *Error[int], got %T", err)
		}
		if !reflect.DeepEqual(ferr.Path, []Name{"fanout"}) {
			t.Errorf("unexpected path %v", ferr.Path)
		}
		if !errors.Is(err, errA) || !errors.Is(err, errB) {
			t.Errorf("expected both errors, got %v", err)
		}
	})

	t.Run("Panic In One Stage", func(t *testing.T) {
		ran := make(chan struct{}, 1)
		c := NewConcurrent[int]("fanout",
			Tap("explode", Consumer[int](func(int) { panic("bad") })),
			Tap("ok", Consumer[int](func(int) { ran <- struct{}{} })),
		)

		err := c.Accept(context.Background(), 1)
		var perr *panicError
		if !errors.As(err, &perr) {
			t.Errorf("expected panicError, got %v", err)
		}
		select {
		case <-ran:
		case <-time.After(time.Second):
			t.Error("healthy stage did not run")
		}
	})

	t.Run("Editing", func(t *testing.T) {
		c := NewConcurrent[int]("fanout")
		if err := c.Accept(context.Background(), 1); err != nil {
			t.Errorf("empty Concurrent should succeed, got %v", err)
		}
		c.Add(failStep("x", errA)).Add(failStep("y", errB))
		if err := c.Remove(0); err != nil {
			t.Fatal(err)
		}
		if err := c.Remove(5); !errors.Is(err, ErrIndexOutOfBounds) {
			t.Errorf("expected ErrIndexOutOfBounds, got %v", err)
		}
		if c.Len() != 1 {
			t.Errorf("expected 1 stage, got %d", c.Len())
		}
		if err := c.Accept(context.Background(), 1); !errors.Is(err, errB) || errors.Is(err, errA) {
			t.Errorf("expected only errB, got %v", err)
		}
		c.Clear()
		if c.Len() != 0 {
			t.Errorf("expected 0 stages, got %d", c.Len())
		}
	})
}
