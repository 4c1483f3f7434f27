package funcz

import (
	"errors"
	"strconv"
	"testing"
)

func TestFunction(t *testing.T) {
	double := Function[int, int](func(n int) int { return n * 2 })
	format := Function[int, string](strconv.Itoa)

	t.Run("Compose", func(t *testing.T) {
		if got := Compose(double, format).Apply(21); got != "42" {
			t.Errorf("expected \"42\", got %q", got)
		}
	})

	t.Run("Identity", func(t *testing.T) {
		if got := Compose(Identity[int](), double)(4); got != 8 {
			t.Errorf("expected 8, got %d", got)
		}
	})

	t.Run("ThenAccept", func(t *testing.T) {
		var got string
		Compose(double, format).ThenAccept(func(s string) { got = s })(5)
		if got != "10" {
			t.Errorf("expected \"10\", got %q", got)
		}
	})

	t.Run("Arity 2 Through 4", func(t *testing.T) {
		add := Function2[int, int, int](func(a, b int) int { return a + b })
		add3 := Function3[int, int, int, int](func(a, b, c int) int { return a + b + c })
		add4 := Function4[int, int, int, int, int](func(a, b, c, d int) int { return a + b + c + d })

		if got := Compose2(add, format).Apply(1, 2); got != "3" {
			t.Errorf("Compose2: got %q", got)
		}
		if got := Compose3(add3, double).Apply(1, 2, 3); got != 12 {
			t.Errorf("Compose3: got %d", got)
		}
		if got := Compose4(add4, double).Apply(1, 2, 3, 4); got != 20 {
			t.Errorf("Compose4: got %d", got)
		}

		var sink []int
		record := Consumer[int](func(n int) { sink = append(sink, n) })
		add.ThenAccept(record)(1, 1)
		add3.ThenAccept(record)(1, 1, 1)
		add4.ThenAccept(record)(1, 1, 1, 1)
		if len(sink) != 3 || sink[0] != 2 || sink[1] != 3 || sink[2] != 4 {
			t.Errorf("unexpected sink %v", sink)
		}
	})

	t.Run("Nil Panics", func(t *testing.T) {
		expectNilPanic(t, func() { Compose[int, int, int](double, nil) })
		expectNilPanic(t, func() { Compose[int, int, int](nil, double) })
		expectNilPanic(t, func() { double.ThenAccept(nil) })
	})
}

func TestFunctionEx(t *testing.T) {
	errBoom := errors.New("boom")
	parse := FunctionEx[string, int](strconv.Atoi)
	half := FunctionEx[int, int](func(n int) (int, error) {
		if n%2 != 0 {
			return 0, errBoom
		}
		return n / 2, nil
	})

	t.Run("ComposeEx Success", func(t *testing.T) {
		got, err := ComposeEx(parse, half).Apply("10")
		if err != nil || got != 5 {
			t.Errorf("expected (5, nil), got (%d, %v)", got, err)
		}
	})

	t.Run("ComposeEx Stops At First Failure", func(t *testing.T) {
		called := false
		tail := FunctionEx[int, int](func(n int) (int, error) { called = true; return n, nil })
		if _, err := ComposeEx(parse, tail)("x"); err == nil {
			t.Fatal("expected parse error")
		}
		if called {
			t.Error("second function should not run")
		}
	})

	t.Run("Adapters", func(t *testing.T) {
		if got := half.IgnoreEx()(3); got != 0 {
			t.Errorf("IgnoreEx: got %d", got)
		}
		if got := half.OnEx(func(n int) int { return -n })(3); got != -3 {
			t.Errorf("OnEx: got %d", got)
		}
		got := half.HandleEx(func(n int, err error) int {
			if !errors.Is(err, errBoom) {
				t.Errorf("unexpected error %v", err)
			}
			return n * 100
		})(3)
		if got != 300 {
			t.Errorf("HandleEx: got %d", got)
		}
	})

	t.Run("ThenAccept", func(t *testing.T) {
		var got int
		c := parse.ThenAccept(func(n int) error { got = n; return nil })
		if err := c("12"); err != nil || got != 12 {
			t.Errorf("expected (12, nil), got (%d, %v)", got, err)
		}
		if err := c("nope"); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("FunctionEx2", func(t *testing.T) {
		div := FunctionEx2[int, int, int](func(a, b int) (int, error) {
			if b == 0 {
				return 0, errBoom
			}
			return a / b, nil
		})
		if got, _ := div.Apply(6, 3); got != 2 {
			t.Errorf("Apply: got %d", got)
		}
		if got := div.IgnoreEx()(1, 0); got != 0 {
			t.Errorf("IgnoreEx: got %d", got)
		}
		if got := div.OnEx(func(a, _ int) int { return a })(7, 0); got != 7 {
			t.Errorf("OnEx: got %d", got)
		}
		handled := div.HandleEx(func(a, b int, err error) int {
			if !errors.Is(err, errBoom) {
				t.Errorf("unexpected error %v", err)
			}
			return a + b
		})
		if got := handled(5, 0); got != 5 {
			t.Errorf("HandleEx: got %d", got)
		}

		var got int
		c := div.ThenAccept(func(n int) error { got = n; return nil })
		if err := c(8, 2); err != nil || got != 4 {
			t.Errorf("ThenAccept: expected (4, nil), got (%d, %v)", got, err)
		}
		if err := c(8, 0); !errors.Is(err, errBoom) {
			t.Errorf("ThenAccept: expected errBoom, got %v", err)
		}
	})

	t.Run("FunctionEx3", func(t *testing.T) {
		clamp := FunctionEx3[int, int, int, int](func(n, lo, hi int) (int, error) {
			if lo > hi {
				return 0, errBoom
			}
			return min(max(n, lo), hi), nil
		})
		if got, err := clamp.Apply(15, 0, 10); err != nil || got != 10 {
			t.Errorf("Apply: expected (10, nil), got (%d, %v)", got, err)
		}
		if got := clamp.IgnoreEx()(1, 5, 0); got != 0 {
			t.Errorf("IgnoreEx: got %d", got)
		}
		if got := clamp.OnEx(func(n, _, _ int) int { return n })(3, 5, 0); got != 3 {
			t.Errorf("OnEx: got %d", got)
		}
		if got := clamp.HandleEx(func(_, lo, hi int, _ error) int { return lo - hi })(3, 5, 0); got != 5 {
			t.Errorf("HandleEx: got %d", got)
		}

		var seen []int
		c := clamp.ThenAccept(func(n int) error { seen = append(seen, n); return nil })
		if err := c(-4, 0, 10); err != nil {
			t.Errorf("ThenAccept: unexpected error %v", err)
		}
		if err := c(1, 5, 0); !errors.Is(err, errBoom) {
			t.Errorf("ThenAccept: expected errBoom, got %v", err)
		}
		if len(seen) != 1 || seen[0] != 0 {
			t.Errorf("ThenAccept: unexpected results %v", seen)
		}
	})

	t.Run("FunctionEx4", func(t *testing.T) {
		sum := FunctionEx4[int, int, int, int, int](func(a, b, c, d int) (int, error) {
			if a < 0 {
				return 0, errBoom
			}
			return a + b + c + d, nil
		})
		if got, err := sum.Apply(1, 2, 3, 4); err != nil || got != 10 {
			t.Errorf("Apply: expected (10, nil), got (%d, %v)", got, err)
		}
		if got := sum.IgnoreEx()(-1, 2, 3, 4); got != 0 {
			t.Errorf("IgnoreEx: got %d", got)
		}
		if got := sum.OnEx(func(_, b, _, _ int) int { return b })(-1, 2, 3, 4); got != 2 {
			t.Errorf("OnEx: got %d", got)
		}
		if got := sum.HandleEx(func(_, _, _, d int, _ error) int { return d })(-1, 2, 3, 4); got != 4 {
			t.Errorf("HandleEx: got %d", got)
		}

		var got int
		c := sum.ThenAccept(func(n int) error { got = n; return nil })
		if err := c(1, 1, 1, 1); err != nil || got != 4 {
			t.Errorf("ThenAccept: expected (4, nil), got (%d, %v)", got, err)
		}
		if err := c(-1, 1, 1, 1); !errors.Is(err, errBoom) {
			t.Errorf("ThenAccept: expected errBoom, got %v", err)
		}
	})

	t.Run("Nil Panics", func(t *testing.T) {
		ex2 := FunctionEx2[int, int, int](func(a, _ int) (int, error) { return a, nil })
		ex3 := FunctionEx3[int, int, int, int](func(a, _, _ int) (int, error) { return a, nil })
		ex4 := FunctionEx4[int, int, int, int, int](func(a, _, _, _ int) (int, error) { return a, nil })
		expectNilPanic(t, func() { ex2.ThenAccept(nil) })
		expectNilPanic(t, func() { ex2.HandleEx(nil) })
		expectNilPanic(t, func() { ex3.ThenAccept(nil) })
		expectNilPanic(t, func() { ex3.HandleEx(nil) })
		expectNilPanic(t, func() { ex3.OnEx(nil) })
		expectNilPanic(t, func() { ex4.ThenAccept(nil) })
		expectNilPanic(t, func() { ex4.HandleEx(nil) })
		expectNilPanic(t, func() { ex4.OnEx(nil) })
	})

	t.Run("Lift", func(t *testing.T) {
		got, err := Function[int, int](func(n int) int { return n + 1 }).Ex()(1)
		if err != nil || got != 2 {
			t.Errorf("expected (2, nil), got (%d, %v)", got, err)
		}
	})
}
