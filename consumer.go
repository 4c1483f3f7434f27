package funcz

// Consumer performs a side effect on one value.
//
// Example:
//
//	var total int
//	add := funcz.Consumer[int](func(n int) { total += n })
//	twice := add.Then(add)
//	twice(5) // total == 10
type Consumer[T any] func(T)

// Accept invokes the consumer. It implements Acceptor[T].
func (c Consumer[T]) Accept(v T) {
	c(v)
}

// Then returns a consumer that runs c and then next with the same value.
func (c Consumer[T]) Then(next Consumer[T]) Consumer[T] {
	if next == nil {
		panic(nilOperation("Consumer.Then"))
	}
	return func(v T) {
		c(v)
		next(v)
	}
}

// Before returns a consumer that runs prev and then c with the same value.
func (c Consumer[T]) Before(prev Consumer[T]) Consumer[T] {
	if prev == nil {
		panic(nilOperation("Consumer.Before"))
	}
	return func(v T) {
		prev(v)
		c(v)
	}
}

// Ex lifts c into a ConsumerEx that never fails.
func (c Consumer[T]) Ex() ConsumerEx[T] {
	return func(v T) error {
		c(v)
		return nil
	}
}

// Chain returns a consumer running every op in order.
// No ops yields a no-op and a single op is returned as is.
func Chain[T any](ops ...Consumer[T]) Consumer[T] {
	for i, op := range ops {
		if op == nil {
			panic(nilEntry("Chain", i))
		}
	}
	switch len(ops) {
	case 0:
		return func(T) {}
	case 1:
		return ops[0]
	}
	ops = cloneOps(ops)
	return func(v T) {
		for _, op := range ops {
			op(v)
		}
	}
}

// Consumer2 performs a side effect on two values.
type Consumer2[A, B any] func(A, B)

// Accept invokes the consumer.
func (c Consumer2[A, B]) Accept(a A, b B) {
	c(a, b)
}

// Then returns a consumer that runs c and then next with the same values.
func (c Consumer2[A, B]) Then(next Consumer2[A, B]) Consumer2[A, B] {
	if next == nil {
		panic(nilOperation("Consumer2.Then"))
	}
	return func(a A, b B) {
		c(a, b)
		next(a, b)
	}
}

// Before returns a consumer that runs prev and then c with the same values.
func (c Consumer2[A, B]) Before(prev Consumer2[A, B]) Consumer2[A, B] {
	if prev == nil {
		panic(nilOperation("Consumer2.Before"))
	}
	return func(a A, b B) {
		prev(a, b)
		c(a, b)
	}
}

// Ex lifts c into a ConsumerEx2 that never fails.
func (c Consumer2[A, B]) Ex() ConsumerEx2[A, B] {
	return func(a A, b B) error {
		c(a, b)
		return nil
	}
}

// Chain2 is Chain for two-argument consumers.
func Chain2[A, B any](ops ...Consumer2[A, B]) Consumer2[A, B] {
	for i, op := range ops {
		if op == nil {
			panic(nilEntry("Chain2", i))
		}
	}
	switch len(ops) {
	case 0:
		return func(A, B) {}
	case 1:
		return ops[0]
	}
	ops = cloneOps(ops)
	return func(a A, b B) {
		for _, op := range ops {
			op(a, b)
		}
	}
}

// Consumer3 performs a side effect on three values.
type Consumer3[A, B, C any] func(A, B, C)

// Accept invokes the consumer.
func (c Consumer3[A, B, C]) Accept(a A, b B, x C) {
	c(a, b, x)
}

// Then returns a consumer that runs c and then next with the same values.
func (c Consumer3[A, B, C]) Then(next Consumer3[A, B, C]) Consumer3[A, B, C] {
	if next == nil {
		panic(nilOperation("Consumer3.Then"))
	}
	return func(a A, b B, x C) {
		c(a, b, x)
		next(a, b, x)
	}
}

// Before returns a consumer that runs prev and then c with the same values.
func (c Consumer3[A, B, C]) Before(prev Consumer3[A, B, C]) Consumer3[A, B, C] {
	if prev == nil {
		panic(nilOperation("Consumer3.Before"))
	}
	return func(a A, b B, x C) {
		prev(a, b, x)
		c(a, b, x)
	}
}

// Ex lifts c into a ConsumerEx3 that never fails.
func (c Consumer3[A, B, C]) Ex() ConsumerEx3[A, B, C] {
	return func(a A, b B, x C) error {
		c(a, b, x)
		return nil
	}
}

// Chain3 is Chain for three-argument consumers.
func Chain3[A, B, C any](ops ...Consumer3[A, B, C]) Consumer3[A, B, C] {
	for i, op := range ops {
		if op == nil {
			panic(nilEntry("Chain3", i))
		}
	}
	switch len(ops) {
	case 0:
		return func(A, B, C) {}
	case 1:
		return ops[0]
	}
	ops = cloneOps(ops)
	return func(a A, b B, x C) {
		for _, op := range ops {
			op(a, b, x)
		}
	}
}

// Consumer4 performs a side effect on four values.
type Consumer4[A, B, C, D any] func(A, B, C, D)

// Accept invokes the consumer.
func (c Consumer4[A, B, C, D]) Accept(a A, b B, x C, d D) {
	c(a, b, x, d)
}

// Then returns a consumer that runs c and then next with the same values.
func (c Consumer4[A, B, C, D]) Then(next Consumer4[A, B, C, D]) Consumer4[A, B, C, D] {
	if next == nil {
		panic(nilOperation("Consumer4.Then"))
	}
	return func(a A, b B, x C, d D) {
		c(a, b, x, d)
		next(a, b, x, d)
	}
}

// Before returns a consumer that runs prev and then c with the same values.
func (c Consumer4[A, B, C, D]) Before(prev Consumer4[A, B, C, D]) Consumer4[A, B, C, D] {
	if prev == nil {
		panic(nilOperation("Consumer4.Before"))
	}
	return func(a A, b B, x C, d D) {
		prev(a, b, x, d)
		c(a, b, x, d)
	}
}

// Ex lifts c into a ConsumerEx4 that never fails.
func (c Consumer4[A, B, C, D]) Ex() ConsumerEx4[A, B, C, D] {
	return func(a A, b B, x C, d D) error {
		c(a, b, x, d)
		return nil
	}
}

// Chain4 is Chain for four-argument consumers.
func Chain4[A, B, C, D any](ops ...Consumer4[A, B, C, D]) Consumer4[A, B, C, D] {
	for i, op := range ops {
		if op == nil {
			panic(nilEntry("Chain4", i))
		}
	}
	switch len(ops) {
	case 0:
		return func(A, B, C, D) {}
	case 1:
		return ops[0]
	}
	ops = cloneOps(ops)
	return func(a A, b B, x C, d D) {
		for _, op := range ops {
			op(a, b, x, d)
		}
	}
}

// cloneOps copies a variadic slice so later writes by the caller do not
// change a composed chain.
func cloneOps[F any](ops []F) []F {
	out := make([]F, len(ops))
	copy(out, ops)
	return out
}
