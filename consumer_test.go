package funcz

import (
	"errors"
	"reflect"
	"testing"
)

func expectNilPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		err, ok := r.(error)
		if !ok {
			t.Fatalf("expected error panic value, got %T", r)
		}
		if !errors.Is(err, ErrNilOperation) {
			t.Errorf("expected ErrNilOperation, got %v", err)
		}
	}()
	fn()
}

func TestConsumerThen(t *testing.T) {
	t.Run("Order Preserved", func(t *testing.T) {
		var calls []string
		a := Consumer[int](func(n int) { calls = append(calls, "a") })
		b := Consumer[int](func(n int) { calls = append(calls, "b") })
		c := Consumer[int](func(n int) { calls = append(calls, "c") })

		a.Then(b).Then(c)(1)

		want := []string{"a", "b", "c"}
		if !reflect.DeepEqual(calls, want) {
			t.Errorf("expected %v, got %v", want, calls)
		}
	})

	t.Run("Same Input", func(t *testing.T) {
		var seen []int
		record := Consumer[int](func(n int) { seen = append(seen, n) })

		record.Then(record).Accept(7)

		if !reflect.DeepEqual(seen, []int{7, 7}) {
			t.Errorf("expected both stages to receive 7, got %v", seen)
		}
	})

	t.Run("Before", func(t *testing.T) {
		var calls []string
		a := Consumer[string](func(string) { calls = append(calls, "a") })
		b := Consumer[string](func(string) { calls = append(calls, "b") })

		a.Before(b)("x")

		if !reflect.DeepEqual(calls, []string{"b", "a"}) {
			t.Errorf("expected before to run first, got %v", calls)
		}
	})

	t.Run("Nil Panics", func(t *testing.T) {
		c := Consumer[int](func(int) {})
		expectNilPanic(t, func() { c.Then(nil) })
		expectNilPanic(t, func() { c.Before(nil) })
	})
}

func TestChain(t *testing.T) {
	t.Run("Empty Is No-op", func(t *testing.T) {
		Chain[int]()(1)
		Chain2[int, string]()(1, "a")
		Chain3[int, int, int]()(1, 2, 3)
		Chain4[int, int, int, int]()(1, 2, 3, 4)
	})

	t.Run("Single Returned As Is", func(t *testing.T) {
		var count int
		op := Consumer[int](func(int) { count++ })

		chained := Chain(op)
		if reflect.ValueOf(chained).Pointer() != reflect.ValueOf(op).Pointer() {
			t.Error("expected single op to be returned unwrapped")
		}
		chained(0)
		if count != 1 {
			t.Errorf("expected 1 call, got %d", count)
		}
	})

	t.Run("Array Order", func(t *testing.T) {
		var calls []int
		ops := make([]Consumer[int], 5)
		for i := range ops {
			ops[i] = func(int) { calls = append(calls, i) }
		}

		Chain(ops...)(0)

		if !reflect.DeepEqual(calls, []int{0, 1, 2, 3, 4}) {
			t.Errorf("unexpected order %v", calls)
		}
	})

	t.Run("Caller Slice Mutation Ignored", func(t *testing.T) {
		var calls []string
		ops := []Consumer[int]{
			func(int) { calls = append(calls, "first") },
			func(int) { calls = append(calls, "second") },
		}
		chained := Chain(ops...)
		ops[1] = func(int) { calls = append(calls, "replaced") }

		chained(0)

		if !reflect.DeepEqual(calls, []string{"first", "second"}) {
			t.Errorf("expected original ops, got %v", calls)
		}
	})

	t.Run("Nil Entry Panics", func(t *testing.T) {
		ok := Consumer[int](func(int) {})
		expectNilPanic(t, func() { Chain(ok, nil) })
		expectNilPanic(t, func() { Chain2[int, int](nil) })
		expectNilPanic(t, func() { Chain3[int, int, int](nil) })
		expectNilPanic(t, func() { Chain4[int, int, int, int](nil) })
	})
}

func TestConsumerArities(t *testing.T) {
	t.Run("Consumer2", func(t *testing.T) {
		var sum int16
		add := Consumer2[int16, int16](func(a, b int16) { sum += a + b })
		add.Then(add).Before(func(a, b int16) { sum = 0 })(1, 2)
		if sum != 6 {
			t.Errorf("expected 6, got %d", sum)
		}
	})

	t.Run("Consumer3", func(t *testing.T) {
		var calls []string
		a := Consumer3[byte, byte, byte](func(x, y, z byte) { calls = append(calls, "a") })
		b := Consumer3[byte, byte, byte](func(x, y, z byte) { calls = append(calls, "b") })
		Chain3(a, b, a)(1, 2, 3)
		if !reflect.DeepEqual(calls, []string{"a", "b", "a"}) {
			t.Errorf("unexpected order %v", calls)
		}
	})

	t.Run("Consumer4", func(t *testing.T) {
		var got [4]float64
		store := Consumer4[float64, float64, float64, float64](func(a, b, c, d float64) {
			got = [4]float64{a, b, c, d}
		})
		store.Then(func(a, b, c, d float64) { got[0] += a }).Accept(1, 2, 3, 4)
		if got != [4]float64{2, 2, 3, 4} {
			t.Errorf("unexpected values %v", got)
		}
	})

	t.Run("Ex Lift Never Fails", func(t *testing.T) {
		var n int
		c := Consumer[int](func(v int) { n = v })
		if err := c.Ex()(9); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 9 {
			t.Errorf("expected 9, got %d", n)
		}
		if err := Consumer2[int, int](func(int, int) {}).Ex()(1, 2); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
