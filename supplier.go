package funcz

// Supplier produces a value.
type Supplier[T any] func() T

// Get invokes the supplier.
func (s Supplier[T]) Get() T {
	return s()
}

// Then returns a Runnable that feeds the supplied value to c.
func (s Supplier[T]) Then(c Consumer[T]) Runnable {
	if c == nil {
		panic(nilOperation("Supplier.Then"))
	}
	return func() {
		c(s())
	}
}

// Ex lifts s into a SupplierEx that never fails.
func (s Supplier[T]) Ex() SupplierEx[T] {
	return func() (T, error) {
		return s(), nil
	}
}

// Constant returns a supplier that always yields v.
func Constant[T any](v T) Supplier[T] {
	return func() T { return v }
}

// SupplierEx produces a value and may fail.
type SupplierEx[T any] func() (T, error)

// Get invokes the supplier.
func (s SupplierEx[T]) Get() (T, error) {
	return s()
}

// Then returns a RunnableEx that feeds the supplied value to c unless
// the supplier fails.
func (s SupplierEx[T]) Then(c ConsumerEx[T]) RunnableEx {
	if c == nil {
		panic(nilOperation("SupplierEx.Then"))
	}
	return func() error {
		v, err := s()
		if err != nil {
			return err
		}
		return c(v)
	}
}

// HandleEx returns a supplier that converts a failure into a value via
// handler.
func (s SupplierEx[T]) HandleEx(handler func(error) T) Supplier[T] {
	if handler == nil {
		panic(nilOperation("SupplierEx.HandleEx"))
	}
	return func() T {
		v, err := s()
		if err != nil {
			return handler(err)
		}
		return v
	}
}

// IgnoreEx returns a supplier that yields the zero value on failure.
func (s SupplierEx[T]) IgnoreEx() Supplier[T] {
	return func() T {
		v, err := s()
		if err != nil {
			var zero T
			return zero
		}
		return v
	}
}

// OnEx returns a supplier that asks fallback for a value on failure.
func (s SupplierEx[T]) OnEx(fallback Supplier[T]) Supplier[T] {
	if fallback == nil {
		panic(nilOperation("SupplierEx.OnEx"))
	}
	return func() T {
		v, err := s()
		if err != nil {
			return fallback()
		}
		return v
	}
}

// Runnable performs a side effect with no inputs.
type Runnable func()

// Run invokes the runnable.
func (r Runnable) Run() {
	r()
}

// Then returns a runnable that runs r and then next.
func (r Runnable) Then(next Runnable) Runnable {
	if next == nil {
		panic(nilOperation("Runnable.Then"))
	}
	return func() {
		r()
		next()
	}
}

// Before returns a runnable that runs prev and then r.
func (r Runnable) Before(prev Runnable) Runnable {
	if prev == nil {
		panic(nilOperation("Runnable.Before"))
	}
	return func() {
		prev()
		r()
	}
}

// ChainRunnables runs every runnable in order. No runnables yields a
// no-op and a single runnable is returned as is.
func ChainRunnables(ops ...Runnable) Runnable {
	for i, op := range ops {
		if op == nil {
			panic(nilEntry("ChainRunnables", i))
		}
	}
	switch len(ops) {
	case 0:
		return func() {}
	case 1:
		return ops[0]
	}
	ops = cloneOps(ops)
	return func() {
		for _, op := range ops {
			op()
		}
	}
}

// RunnableEx performs a side effect with no inputs and may fail.
type RunnableEx func() error

// Run invokes the runnable.
func (r RunnableEx) Run() error {
	return r()
}

// Then returns a runnable that runs r and, if it succeeds, next.
func (r RunnableEx) Then(next RunnableEx) RunnableEx {
	if next == nil {
		panic(nilOperation("RunnableEx.Then"))
	}
	return func() error {
		if err := r(); err != nil {
			return err
		}
		return next()
	}
}

// Before returns a runnable that runs prev and, if it succeeds, r.
func (r RunnableEx) Before(prev RunnableEx) RunnableEx {
	if prev == nil {
		panic(nilOperation("RunnableEx.Before"))
	}
	return prev.Then(r)
}

// HandleEx returns a runnable that hands any error from r to handler.
func (r RunnableEx) HandleEx(handler func(error)) Runnable {
	if handler == nil {
		panic(nilOperation("RunnableEx.HandleEx"))
	}
	return func() {
		if err := r(); err != nil {
			handler(err)
		}
	}
}

// IgnoreEx returns a runnable that discards any error from r.
func (r RunnableEx) IgnoreEx() Runnable {
	return func() {
		_ = r() //nolint:errcheck
	}
}

// OnEx returns a runnable that runs fallback when r fails.
func (r RunnableEx) OnEx(fallback Runnable) Runnable {
	if fallback == nil {
		panic(nilOperation("RunnableEx.OnEx"))
	}
	return func() {
		if err := r(); err != nil {
			fallback()
		}
	}
}

// ChainRunnablesEx runs every runnable in order until one fails.
func ChainRunnablesEx(ops ...RunnableEx) RunnableEx {
	for i, op := range ops {
		if op == nil {
			panic(nilEntry("ChainRunnablesEx", i))
		}
	}
	switch len(ops) {
	case 0:
		return func() error { return nil }
	case 1:
		return ops[0]
	}
	ops = cloneOps(ops)
	return func() error {
		for _, op := range ops {
			if err := op(); err != nil {
				return err
			}
		}
		return nil
	}
}
