package funcz

// ConsumerEx performs a side effect on one value and may fail.
// Composed chains stop at the first error and return it unchanged.
type ConsumerEx[T any] func(T) error

// Accept invokes the consumer.
func (c ConsumerEx[T]) Accept(v T) error {
	return c(v)
}

// Then returns a consumer that runs c and, if it succeeds, next.
func (c ConsumerEx[T]) Then(next ConsumerEx[T]) ConsumerEx[T] {
	if next == nil {
		panic(nilOperation("ConsumerEx.Then"))
	}
	return func(v T) error {
		if err := c(v); err != nil {
			return err
		}
		return next(v)
	}
}

// Before returns a consumer that runs prev and, if it succeeds, c.
func (c ConsumerEx[T]) Before(prev ConsumerEx[T]) ConsumerEx[T] {
	if prev == nil {
		panic(nilOperation("ConsumerEx.Before"))
	}
	return prev.Then(c)
}

// HandleEx returns a consumer that hands any error from c to handler.
func (c ConsumerEx[T]) HandleEx(handler func(error)) Consumer[T] {
	if handler == nil {
		panic(nilOperation("ConsumerEx.HandleEx"))
	}
	return func(v T) {
		if err := c(v); err != nil {
			handler(err)
		}
	}
}

// IgnoreEx returns a consumer that discards any error from c.
func (c ConsumerEx[T]) IgnoreEx() Consumer[T] {
	return func(v T) {
		_ = c(v) //nolint:errcheck
	}
}

// OnEx returns a consumer that runs fallback with the same value when c
// fails.
func (c ConsumerEx[T]) OnEx(fallback Consumer[T]) Consumer[T] {
	if fallback == nil {
		panic(nilOperation("ConsumerEx.OnEx"))
	}
	return func(v T) {
		if err := c(v); err != nil {
			fallback(v)
		}
	}
}

// ChainEx returns a consumer running every op in order until one fails.
// No ops yields a no-op and a single op is returned as is.
func ChainEx[T any](ops ...ConsumerEx[T]) ConsumerEx[T] {
	for i, op := range ops {
		if op == nil {
			panic(nilEntry("ChainEx", i))
		}
	}
	switch len(ops) {
	case 0:
		return func(T) error { return nil }
	case 1:
		return ops[0]
	}
	ops = cloneOps(ops)
	return func(v T) error {
		for _, op := range ops {
			if err := op(v); err != nil {
				return err
			}
		}
		return nil
	}
}

// ConsumerEx2 performs a side effect on two values and may fail.
type ConsumerEx2[A, B any] func(A, B) error

// Accept invokes the consumer.
func (c ConsumerEx2[A, B]) Accept(a A, b B) error {
	return c(a, b)
}

// Then returns a consumer that runs c and, if it succeeds, next.
func (c ConsumerEx2[A, B]) Then(next ConsumerEx2[A, B]) ConsumerEx2[A, B] {
	if next == nil {
		panic(nilOperation("ConsumerEx2.Then"))
	}
	return func(a A, b B) error {
		if err := c(a, b); err != nil {
			return err
		}
		return next(a, b)
	}
}

// Before returns a consumer that runs prev and, if it succeeds, c.
func (c ConsumerEx2[A, B]) Before(prev ConsumerEx2[A, B]) ConsumerEx2[A, B] {
	if prev == nil {
		panic(nilOperation("ConsumerEx2.Before"))
	}
	return prev.Then(c)
}

// HandleEx returns a consumer that hands any error from c to handler.
func (c ConsumerEx2[A, B]) HandleEx(handler func(error)) Consumer2[A, B] {
	if handler == nil {
		panic(nilOperation("ConsumerEx2.HandleEx"))
	}
	return func(a A, b B) {
		if err := c(a, b); err != nil {
			handler(err)
		}
	}
}

// IgnoreEx returns a consumer that discards any error from c.
func (c ConsumerEx2[A, B]) IgnoreEx() Consumer2[A, B] {
	return func(a A, b B) {
		_ = c(a, b) //nolint:errcheck
	}
}

// OnEx returns a consumer that runs fallback with the same values when c
// fails.
func (c ConsumerEx2[A, B]) OnEx(fallback Consumer2[A, B]) Consumer2[A, B] {
	if fallback == nil {
		panic(nilOperation("ConsumerEx2.OnEx"))
	}
	return func(a A, b B) {
		if err := c(a, b); err != nil {
			fallback(a, b)
		}
	}
}

// ChainEx2 is ChainEx for two-argument consumers.
func ChainEx2[A, B any](ops ...ConsumerEx2[A, B]) ConsumerEx2[A, B] {
	for i, op := range ops {
		if op == nil {
			panic(nilEntry("ChainEx2", i))
		}
	}
	switch len(ops) {
	case 0:
		return func(A, B) error { return nil }
	case 1:
		return ops[0]
	}
	ops = cloneOps(ops)
	return func(a A, b B) error {
		for _, op := range ops {
			if err := op(a, b); err != nil {
				return err
			}
		}
		return nil
	}
}

// ConsumerEx3 performs a side effect on three values and may fail.
type ConsumerEx3[A, B, C any] func(A, B, C) error

// Accept invokes the consumer.
func (c ConsumerEx3[A, B, C]) Accept(a A, b B, x C) error {
	return c(a, b, x)
}

// Then returns a consumer that runs c and, if it succeeds, next.
func (c ConsumerEx3[A, B, C]) Then(next ConsumerEx3[A, B, C]) ConsumerEx3[A, B, C] {
	if next == nil {
		panic(nilOperation("ConsumerEx3.Then"))
	}
	return func(a A, b B, x C) error {
		if err := c(a, b, x); err != nil {
			return err
		}
		return next(a, b, x)
	}
}

// Before returns a consumer that runs prev and, if it succeeds, c.
func (c ConsumerEx3[A, B, C]) Before(prev ConsumerEx3[A, B, C]) ConsumerEx3[A, B, C] {
	if prev == nil {
		panic(nilOperation("ConsumerEx3.Before"))
	}
	return prev.Then(c)
}

// HandleEx returns a consumer that hands any error from c to handler.
func (c ConsumerEx3[A, B, C]) HandleEx(handler func(error)) Consumer3[A, B, C] {
	if handler == nil {
		panic(nilOperation("ConsumerEx3.HandleEx"))
	}
	return func(a A, b B, x C) {
		if err := c(a, b, x); err != nil {
			handler(err)
		}
	}
}

// IgnoreEx returns a consumer that discards any error from c.
func (c ConsumerEx3[A, B, C]) IgnoreEx() Consumer3[A, B, C] {
	return func(a A, b B, x C) {
		_ = c(a, b, x) //nolint:errcheck
	}
}

// OnEx returns a consumer that runs fallback with the same values when c
// fails.
func (c ConsumerEx3[A, B, C]) OnEx(fallback Consumer3[A, B, C]) Consumer3[A, B, C] {
	if fallback == nil {
		panic(nilOperation("ConsumerEx3.OnEx"))
	}
	return func(a A, b B, x C) {
		if err := c(a, b, x); err != nil {
			fallback(a, b, x)
		}
	}
}

// ChainEx3 is ChainEx for three-argument consumers.
func ChainEx3[A, B, C any](ops ...ConsumerEx3[A, B, C]) ConsumerEx3[A, B, C] {
	for i, op := range ops {
		if op == nil {
			panic(nilEntry("ChainEx3", i))
		}
	}
	switch len(ops) {
	case 0:
		return func(A, B, C) error { return nil }
	case 1:
		return ops[0]
	}
	ops = cloneOps(ops)
	return func(a A, b B, x C) error {
		for _, op := range ops {
			if err := op(a, b, x); err != nil {
				return err
			}
		}
		return nil
	}
}

// ConsumerEx4 performs a side effect on four values and may fail.
type ConsumerEx4[A, B, C, D any] func(A, B, C, D) error

// Accept invokes the consumer.
func (c ConsumerEx4[A, B, C, D]) Accept(a A, b B, x C, d D) error {
	return c(a, b, x, d)
}

// Then returns a consumer that runs c and, if it succeeds, next.
func (c ConsumerEx4[A, B, C, D]) Then(next ConsumerEx4[A, B, C, D]) ConsumerEx4[A, B, C, D] {
	if next == nil {
		panic(nilOperation("ConsumerEx4.Then"))
	}
	return func(a A, b B, x C, d D) error {
		if err := c(a, b, x, d); err != nil {
			return err
		}
		return next(a, b, x, d)
	}
}

// Before returns a consumer that runs prev and, if it succeeds, c.
func (c ConsumerEx4[A, B, C, D]) Before(prev ConsumerEx4[A, B, C, D]) ConsumerEx4[A, B, C, D] {
	if prev == nil {
		panic(nilOperation("ConsumerEx4.Before"))
	}
	return prev.Then(c)
}

// HandleEx returns a consumer that hands any error from c to handler.
func (c ConsumerEx4[A, B, C, D]) HandleEx(handler func(error)) Consumer4[A, B, C, D] {
	if handler == nil {
		panic(nilOperation("ConsumerEx4.HandleEx"))
	}
	return func(a A, b B, x C, d D) {
		if err := c(a, b, x, d); err != nil {
			handler(err)
		}
	}
}

// IgnoreEx returns a consumer that discards any error from c.
func (c ConsumerEx4[A, B, C, D]) IgnoreEx() Consumer4[A, B, C, D] {
	return func(a A, b B, x C, d D) {
		_ = c(a, b, x, d) //nolint:errcheck
	}
}

// OnEx returns a consumer that runs fallback with the same values when c
// fails.
func (c ConsumerEx4[A, B, C, D]) OnEx(fallback Consumer4[A, B, C, D]) Consumer4[A, B, C, D] {
	if fallback == nil {
		panic(nilOperation("ConsumerEx4.OnEx"))
	}
	return func(a A, b B, x C, d D) {
		if err := c(a, b, x, d); err != nil {
			fallback(a, b, x, d)
		}
	}
}

// ChainEx4 is ChainEx for four-argument consumers.
func ChainEx4[A, B, C, D any](ops ...ConsumerEx4[A, B, C, D]) ConsumerEx4[A, B, C, D] {
	for i, op := range ops {
		if op == nil {
			panic(nilEntry("ChainEx4", i))
		}
	}
	switch len(ops) {
	case 0:
		return func(A, B, C, D) error { return nil }
	case 1:
		return ops[0]
	}
	ops = cloneOps(ops)
	return func(a A, b B, x C, d D) error {
		for _, op := range ops {
			if err := op(a, b, x, d); err != nil {
				return err
			}
		}
		return nil
	}
}
