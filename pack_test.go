package funcz

import (
	"errors"
	"testing"
)

func TestPack(t *testing.T) {
	t.Run("Pack And Unpack", func(t *testing.T) {
		var got []int32
		record := func(vs ...int32) { got = append(got, vs...) }

		Pack1(Consumer[int32](func(a int32) { record(a) }))([1]int32{1})
		Pack2(Consumer2[int32, int32](func(a, b int32) { record(a, b) }))([2]int32{2, 3})
		Pack3(Consumer3[int32, int32, int32](func(a, b, c int32) { record(a, b, c) }))([3]int32{4, 5, 6})
		Pack4(Consumer4[int32, int32, int32, int32](func(a, b, c, d int32) { record(a, b, c, d) }))([4]int32{7, 8, 9, 10})

		for i, v := range got {
			if v != int32(i+1) {
				t.Fatalf("unexpected packed order %v", got)
			}
		}

		var last [4]int32
		Unpack4(func(v [4]int32) { last = v })(1, 2, 3, 4)
		if last != [4]int32{1, 2, 3, 4} {
			t.Errorf("Unpack4: got %v", last)
		}
		var pair [2]int32
		Unpack2(func(v [2]int32) { pair = v })(5, 6)
		if pair != [2]int32{5, 6} {
			t.Errorf("Unpack2: got %v", pair)
		}
		var one [1]int32
		Unpack1(func(v [1]int32) { one = v })(7)
		var three [3]int32
		Unpack3(func(v [3]int32) { three = v })(8, 9, 10)
		if one[0] != 7 || three != [3]int32{8, 9, 10} {
			t.Errorf("Unpack1/3: got %v %v", one, three)
		}
	})

	t.Run("EachEx Stops At First Failure", func(t *testing.T) {
		errNegative := errors.New("negative")
		var visited int
		check := EachEx(ConsumerEx[int](func(n int) error {
			visited++
			if n < 0 {
				return errNegative
			}
			return nil
		}))

		if err := check([]int{1, -1, 2}); !errors.Is(err, errNegative) {
			t.Fatalf("expected errNegative, got %v", err)
		}
		if visited != 2 {
			t.Errorf("expected 2 visits, got %d", visited)
		}
	})

	t.Run("Nil Panics", func(t *testing.T) {
		expectNilPanic(t, func() { Pack2[int](nil) })
		expectNilPanic(t, func() { Unpack3[int](nil) })
		expectNilPanic(t, func() { Each[int](nil) })
		expectNilPanic(t, func() { EachEx[int](nil) })
	})
}
