package funcz

// Predicate reports whether a value satisfies a condition.
type Predicate[T any] func(T) bool

// Test invokes the predicate.
func (p Predicate[T]) Test(v T) bool {
	return p(v)
}

// And returns a predicate that holds when p and other both hold.
// other is not evaluated when p is false.
func (p Predicate[T]) And(other Predicate[T]) Predicate[T] {
	if other == nil {
		panic(nilOperation("Predicate.And"))
	}
	return func(v T) bool {
		return p(v) && other(v)
	}
}

// Or returns a predicate that holds when p or other holds.
// other is not evaluated when p is true.
func (p Predicate[T]) Or(other Predicate[T]) Predicate[T] {
	if other == nil {
		panic(nilOperation("Predicate.Or"))
	}
	return func(v T) bool {
		return p(v) || other(v)
	}
}

// Negate returns the inverse of p.
func (p Predicate[T]) Negate() Predicate[T] {
	return func(v T) bool {
		return !p(v)
	}
}

// When returns a consumer that runs c only for values satisfying p.
func (p Predicate[T]) When(c Consumer[T]) Consumer[T] {
	if c == nil {
		panic(nilOperation("Predicate.When"))
	}
	return func(v T) {
		if p(v) {
			c(v)
		}
	}
}
