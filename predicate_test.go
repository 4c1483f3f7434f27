package funcz

import "testing"

func TestPredicate(t *testing.T) {
	even := Predicate[int](func(n int) bool { return n%2 == 0 })
	positive := Predicate[int](func(n int) bool { return n > 0 })

	tests := []struct {
		name string
		p    Predicate[int]
		in   int
		want bool
	}{
		{"even", even, 4, true},
		{"odd", even, 3, false},
		{"and both", even.And(positive), 2, true},
		{"and one", even.And(positive), -2, false},
		{"or one", even.Or(positive), 3, true},
		{"or none", even.Or(positive), -3, false},
		{"negate", even.Negate(), 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Test(tt.in); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}

	t.Run("Short Circuit", func(t *testing.T) {
		evaluated := false
		spy := Predicate[int](func(int) bool { evaluated = true; return true })
		even.And(spy)(1)
		even.Or(spy)(2)
		if evaluated {
			t.Error("second predicate should not be evaluated")
		}
	})

	t.Run("When", func(t *testing.T) {
		var seen []int
		Each(even.When(func(n int) { seen = append(seen, n) }))([]int{1, 2, 3, 4})
		if len(seen) != 2 || seen[0] != 2 || seen[1] != 4 {
			t.Errorf("unexpected values %v", seen)
		}
	})

	t.Run("Nil Panics", func(t *testing.T) {
		expectNilPanic(t, func() { even.And(nil) })
		expectNilPanic(t, func() { even.Or(nil) })
		expectNilPanic(t, func() { even.When(nil) })
	})
}
