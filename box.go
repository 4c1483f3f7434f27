package funcz

import "fmt"

// Boxed is an Acceptor[any] view of a specialized Consumer[T].
// Code that only knows about Acceptor[any] can hold it, and composition
// helpers in this package recognize it and call the specialized
// consumer without a per-call type assertion.
type Boxed[T any] struct {
	fn Consumer[T]
}

// Box wraps c as an Acceptor[any].
func Box[T any](c Consumer[T]) Boxed[T] {
	if c == nil {
		panic(nilOperation("Box"))
	}
	return Boxed[T]{fn: c}
}

// Accept implements Acceptor[any]. It panics with ErrTypeMismatch when v
// is not a T.
func (b Boxed[T]) Accept(v any) {
	t, ok := v.(T)
	if !ok {
		var zero T
		panic(fmt.Errorf("funcz: Boxed.Accept: got %T, want %T: %w", v, zero, ErrTypeMismatch))
	}
	b.fn(t)
}

// Specialized returns the wrapped consumer.
func (b Boxed[T]) Specialized() Consumer[T] {
	return b.fn
}

// Unbox returns a Consumer[T] for a. When a is a Boxed[T] the original
// consumer is returned directly; anything else is called through the
// interface.
func Unbox[T any](a Acceptor[any]) Consumer[T] {
	switch v := a.(type) {
	case nil:
		panic(nilOperation("Unbox"))
	case Boxed[T]:
		return v.fn
	case *Boxed[T]:
		if v == nil {
			panic(nilOperation("Unbox"))
		}
		return v.fn
	default:
		return func(t T) { a.Accept(t) }
	}
}

// AsConsumer returns a Consumer[T] for a, unwrapping a Consumer[T] held
// in the interface instead of wrapping it again.
func AsConsumer[T any](a Acceptor[T]) Consumer[T] {
	switch v := a.(type) {
	case nil:
		panic(nilOperation("AsConsumer"))
	case Consumer[T]:
		if v == nil {
			panic(nilOperation("AsConsumer"))
		}
		return v
	default:
		return a.Accept
	}
}

// ThenAcceptor is Then for any Acceptor[T].
func (c Consumer[T]) ThenAcceptor(next Acceptor[T]) Consumer[T] {
	return c.Then(AsConsumer(next))
}

// ThenBoxed is Then for a generically typed consumer. A Boxed[T] is
// unwrapped so the specialized consumer runs directly.
func (c Consumer[T]) ThenBoxed(next Acceptor[any]) Consumer[T] {
	return c.Then(Unbox[T](next))
}

// BeforeBoxed is Before for a generically typed consumer.
func (c Consumer[T]) BeforeBoxed(prev Acceptor[any]) Consumer[T] {
	return c.Before(Unbox[T](prev))
}

// unboxArg asserts v to T for the boxed consumer named by method.
func unboxArg[T any](method string, v any) T {
	t, ok := v.(T)
	if !ok {
		panic(fmt.Errorf("funcz: %s: got %T, want %T: %w", method, v, t, ErrTypeMismatch))
	}
	return t
}

// Boxed2 is an Acceptor2[any, any] view of a specialized Consumer2.
type Boxed2[A, B any] struct {
	fn Consumer2[A, B]
}

// Box2 wraps c as an Acceptor2[any, any].
func Box2[A, B any](c Consumer2[A, B]) Boxed2[A, B] {
	if c == nil {
		panic(nilOperation("Box2"))
	}
	return Boxed2[A, B]{fn: c}
}

// Accept implements Acceptor2[any, any]. It panics with ErrTypeMismatch
// when an argument has the wrong type.
func (b Boxed2[A, B]) Accept(a, x any) {
	b.fn(unboxArg[A]("Boxed2.Accept", a), unboxArg[B]("Boxed2.Accept", x))
}

// Specialized returns the wrapped consumer.
func (b Boxed2[A, B]) Specialized() Consumer2[A, B] {
	return b.fn
}

// Unbox2 is Unbox for two arguments.
func Unbox2[A, B any](a Acceptor2[any, any]) Consumer2[A, B] {
	switch v := a.(type) {
	case nil:
		panic(nilOperation("Unbox2"))
	case Boxed2[A, B]:
		return v.fn
	case *Boxed2[A, B]:
		if v == nil {
			panic(nilOperation("Unbox2"))
		}
		return v.fn
	default:
		return func(x A, y B) { a.Accept(x, y) }
	}
}

// ThenBoxed is Then for a generically typed consumer.
func (c Consumer2[A, B]) ThenBoxed(next Acceptor2[any, any]) Consumer2[A, B] {
	return c.Then(Unbox2[A, B](next))
}

// Boxed3 is an Acceptor3[any, any, any] view of a specialized Consumer3.
type Boxed3[A, B, C any] struct {
	fn Consumer3[A, B, C]
}

// Box3 wraps c as an Acceptor3[any, any, any].
func Box3[A, B, C any](c Consumer3[A, B, C]) Boxed3[A, B, C] {
	if c == nil {
		panic(nilOperation("Box3"))
	}
	return Boxed3[A, B, C]{fn: c}
}

// Accept implements Acceptor3[any, any, any].
func (b Boxed3[A, B, C]) Accept(a, x, y any) {
	b.fn(unboxArg[A]("Boxed3.Accept", a), unboxArg[B]("Boxed3.Accept", x), unboxArg[C]("Boxed3.Accept", y))
}

// Specialized returns the wrapped consumer.
func (b Boxed3[A, B, C]) Specialized() Consumer3[A, B, C] {
	return b.fn
}

// Unbox3 is Unbox for three arguments.
func Unbox3[A, B, C any](a Acceptor3[any, any, any]) Consumer3[A, B, C] {
	switch v := a.(type) {
	case nil:
		panic(nilOperation("Unbox3"))
	case Boxed3[A, B, C]:
		return v.fn
	case *Boxed3[A, B, C]:
		if v == nil {
			panic(nilOperation("Unbox3"))
		}
		return v.fn
	default:
		return func(x A, y B, z C) { a.Accept(x, y, z) }
	}
}

// ThenBoxed is Then for a generically typed consumer.
func (c Consumer3[A, B, C]) ThenBoxed(next Acceptor3[any, any, any]) Consumer3[A, B, C] {
	return c.Then(Unbox3[A, B, C](next))
}

// Boxed4 is an Acceptor4[any, any, any, any] view of a specialized
// Consumer4.
type Boxed4[A, B, C, D any] struct {
	fn Consumer4[A, B, C, D]
}

// Box4 wraps c as an Acceptor4[any, any, any, any].
func Box4[A, B, C, D any](c Consumer4[A, B, C, D]) Boxed4[A, B, C, D] {
	if c == nil {
		panic(nilOperation("Box4"))
	}
	return Boxed4[A, B, C, D]{fn: c}
}

// Accept implements Acceptor4[any, any, any, any].
func (b Boxed4[A, B, C, D]) Accept(a, x, y, z any) {
	b.fn(unboxArg[A]("Boxed4.Accept", a), unboxArg[B]("Boxed4.Accept", x),
		unboxArg[C]("Boxed4.Accept", y), unboxArg[D]("Boxed4.Accept", z))
}

// Specialized returns the wrapped consumer.
func (b Boxed4[A, B, C, D]) Specialized() Consumer4[A, B, C, D] {
	return b.fn
}

// Unbox4 is Unbox for four arguments.
func Unbox4[A, B, C, D any](a Acceptor4[any, any, any, any]) Consumer4[A, B, C, D] {
	switch v := a.(type) {
	case nil:
		panic(nilOperation("Unbox4"))
	case Boxed4[A, B, C, D]:
		return v.fn
	case *Boxed4[A, B, C, D]:
		if v == nil {
			panic(nilOperation("Unbox4"))
		}
		return v.fn
	default:
		return func(w A, x B, y C, z D) { a.Accept(w, x, y, z) }
	}
}

// ThenBoxed is Then for a generically typed consumer.
func (c Consumer4[A, B, C, D]) ThenBoxed(next Acceptor4[any, any, any, any]) Consumer4[A, B, C, D] {
	return c.Then(Unbox4[A, B, C, D](next))
}
