package funcz

// Pack1 adapts a consumer of T into a consumer of [1]T.
func Pack1[T any](c Consumer[T]) Consumer[[1]T] {
	if c == nil {
		panic(nilOperation("Pack1"))
	}
	return func(v [1]T) { c(v[0]) }
}

// Pack2 adapts a two-argument consumer into a consumer of [2]T.
func Pack2[T any](c Consumer2[T, T]) Consumer[[2]T] {
	if c == nil {
		panic(nilOperation("Pack2"))
	}
	return func(v [2]T) { c(v[0], v[1]) }
}

// Pack3 adapts a three-argument consumer into a consumer of [3]T.
func Pack3[T any](c Consumer3[T, T, T]) Consumer[[3]T] {
	if c == nil {
		panic(nilOperation("Pack3"))
	}
	return func(v [3]T) { c(v[0], v[1], v[2]) }
}

// Pack4 adapts a four-argument consumer into a consumer of [4]T.
func Pack4[T any](c Consumer4[T, T, T, T]) Consumer[[4]T] {
	if c == nil {
		panic(nilOperation("Pack4"))
	}
	return func(v [4]T) { c(v[0], v[1], v[2], v[3]) }
}

// Unpack1 adapts a consumer of [1]T into a consumer of T.
func Unpack1[T any](c Consumer[[1]T]) Consumer[T] {
	if c == nil {
		panic(nilOperation("Unpack1"))
	}
	return func(a T) { c([1]T{a}) }
}

// Unpack2 adapts a consumer of [2]T into a two-argument consumer.
func Unpack2[T any](c Consumer[[2]T]) Consumer2[T, T] {
	if c == nil {
		panic(nilOperation("Unpack2"))
	}
	return func(a, b T) { c([2]T{a, b}) }
}

// Unpack3 adapts a consumer of [3]T into a three-argument consumer.
func Unpack3[T any](c Consumer[[3]T]) Consumer3[T, T, T] {
	if c == nil {
		panic(nilOperation("Unpack3"))
	}
	return func(a, b, x T) { c([3]T{a, b, x}) }
}

// Unpack4 adapts a consumer of [4]T into a four-argument consumer.
func Unpack4[T any](c Consumer[[4]T]) Consumer4[T, T, T, T] {
	if c == nil {
		panic(nilOperation("Unpack4"))
	}
	return func(a, b, x, d T) { c([4]T{a, b, x, d}) }
}

// Each returns a consumer that visits every element of a slice in order.
func Each[T any](c Consumer[T]) Consumer[[]T] {
	if c == nil {
		panic(nilOperation("Each"))
	}
	return func(vs []T) {
		for _, v := range vs {
			c(v)
		}
	}
}

// EachEx is Each for a failing consumer; it stops at the first failure.
func EachEx[T any](c ConsumerEx[T]) ConsumerEx[[]T] {
	if c == nil {
		panic(nilOperation("EachEx"))
	}
	return func(vs []T) error {
		for _, v := range vs {
			if err := c(v); err != nil {
				return err
			}
		}
		return nil
	}
}
