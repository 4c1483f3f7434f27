package funcz

import (
	"errors"
	"reflect"
	"testing"
)

func TestSupplier(t *testing.T) {
	errBoom := errors.New("boom")

	t.Run("Constant", func(t *testing.T) {
		if got := Constant(3.5).Get(); got != 3.5 {
			t.Errorf("expected 3.5, got %v", got)
		}
	})

	t.Run("Then Feeds Consumer", func(t *testing.T) {
		var got string
		Constant("hello").Then(func(s string) { got = s }).Run()
		if got != "hello" {
			t.Errorf("expected hello, got %q", got)
		}
	})

	t.Run("Ex Lift", func(t *testing.T) {
		v, err := Constant(1).Ex().Get()
		if err != nil || v != 1 {
			t.Errorf("expected (1, nil), got (%d, %v)", v, err)
		}
	})

	t.Run("SupplierEx Adapters", func(t *testing.T) {
		failing := SupplierEx[int](func() (int, error) { return 7, errBoom })

		if got := failing.IgnoreEx()(); got != 0 {
			t.Errorf("IgnoreEx: expected zero value, got %d", got)
		}
		if got := failing.OnEx(Constant(9))(); got != 9 {
			t.Errorf("OnEx: expected 9, got %d", got)
		}
		var handled error
		got := failing.HandleEx(func(err error) int { handled = err; return -1 })()
		if got != -1 || !errors.Is(handled, errBoom) {
			t.Errorf("HandleEx: expected (-1, errBoom), got (%d, %v)", got, handled)
		}
	})

	t.Run("SupplierEx Then Skips Consumer On Failure", func(t *testing.T) {
		ran := false
		run := SupplierEx[int](func() (int, error) { return 0, errBoom }).
			Then(func(int) error { ran = true; return nil })

		if err := run(); !errors.Is(err, errBoom) {
			t.Errorf("expected errBoom, got %v", err)
		}
		if ran {
			t.Error("consumer should not run")
		}
	})

	t.Run("Nil Panics", func(t *testing.T) {
		expectNilPanic(t, func() { Constant(1).Then(nil) })
		s := SupplierEx[int](func() (int, error) { return 0, nil })
		expectNilPanic(t, func() { s.Then(nil) })
		expectNilPanic(t, func() { s.HandleEx(nil) })
		expectNilPanic(t, func() { s.OnEx(nil) })
	})
}

func TestRunnable(t *testing.T) {
	errBoom := errors.New("boom")

	t.Run("Then And Before", func(t *testing.T) {
		var calls []string
		a := Runnable(func() { calls = append(calls, "a") })
		b := Runnable(func() { calls = append(calls, "b") })

		a.Then(b).Run()
		a.Before(b).Run()

		if !reflect.DeepEqual(calls, []string{"a", "b", "b", "a"}) {
			t.Errorf("unexpected order %v", calls)
		}
	})

	t.Run("ChainRunnables", func(t *testing.T) {
		ChainRunnables()()
		var n int
		inc := Runnable(func() { n++ })
		ChainRunnables(inc, inc, inc)()
		if n != 3 {
			t.Errorf("expected 3, got %d", n)
		}
		expectNilPanic(t, func() { ChainRunnables(inc, nil) })
	})

	t.Run("RunnableEx", func(t *testing.T) {
		var calls []string
		ok := RunnableEx(func() error { calls = append(calls, "ok"); return nil })
		bad := RunnableEx(func() error { calls = append(calls, "bad"); return errBoom })

		if err := ChainRunnablesEx(ok, bad, ok)(); !errors.Is(err, errBoom) {
			t.Errorf("expected errBoom, got %v", err)
		}
		if !reflect.DeepEqual(calls, []string{"ok", "bad"}) {
			t.Errorf("unexpected calls %v", calls)
		}

		fellBack := false
		bad.OnEx(func() { fellBack = true })()
		if !fellBack {
			t.Error("expected fallback to run")
		}

		var handled int
		bad.Before(ok).HandleEx(func(error) { handled++ })()
		bad.IgnoreEx()()
		if handled != 1 {
			t.Errorf("expected one handled error, got %d", handled)
		}
	})
}
