package funcz

// Function maps one value to a result.
type Function[A, R any] func(A) R

// Apply invokes the function.
func (f Function[A, R]) Apply(a A) R {
	return f(a)
}

// ThenAccept returns a consumer that feeds the result of f to c.
func (f Function[A, R]) ThenAccept(c Consumer[R]) Consumer[A] {
	if c == nil {
		panic(nilOperation("Function.ThenAccept"))
	}
	return func(a A) {
		c(f(a))
	}
}

// Ex lifts f into a FunctionEx that never fails.
func (f Function[A, R]) Ex() FunctionEx[A, R] {
	return func(a A) (R, error) {
		return f(a), nil
	}
}

// Identity returns a function that yields its argument.
func Identity[T any]() Function[T, T] {
	return func(v T) T { return v }
}

// Compose returns a function applying f and then g to its result.
func Compose[A, B, R any](f Function[A, B], g Function[B, R]) Function[A, R] {
	if f == nil {
		panic(nilOperation("Compose"))
	}
	if g == nil {
		panic(nilOperation("Compose"))
	}
	return func(a A) R {
		return g(f(a))
	}
}

// Function2 maps two values to a result.
type Function2[A, B, R any] func(A, B) R

// Apply invokes the function.
func (f Function2[A, B, R]) Apply(a A, b B) R {
	return f(a, b)
}

// ThenAccept returns a consumer that feeds the result of f to c.
func (f Function2[A, B, R]) ThenAccept(c Consumer[R]) Consumer2[A, B] {
	if c == nil {
		panic(nilOperation("Function2.ThenAccept"))
	}
	return func(a A, b B) {
		c(f(a, b))
	}
}

// Compose2 returns a function applying f and then g to its result.
func Compose2[A, B, X, R any](f Function2[A, B, X], g Function[X, R]) Function2[A, B, R] {
	if f == nil || g == nil {
		panic(nilOperation("Compose2"))
	}
	return func(a A, b B) R {
		return g(f(a, b))
	}
}

// Function3 maps three values to a result.
type Function3[A, B, C, R any] func(A, B, C) R

// Apply invokes the function.
func (f Function3[A, B, C, R]) Apply(a A, b B, c C) R {
	return f(a, b, c)
}

// ThenAccept returns a consumer that feeds the result of f to c.
func (f Function3[A, B, C, R]) ThenAccept(c Consumer[R]) Consumer3[A, B, C] {
	if c == nil {
		panic(nilOperation("Function3.ThenAccept"))
	}
	return func(a A, b B, x C) {
		c(f(a, b, x))
	}
}

// Compose3 returns a function applying f and then g to its result.
func Compose3[A, B, C, X, R any](f Function3[A, B, C, X], g Function[X, R]) Function3[A, B, C, R] {
	if f == nil || g == nil {
		panic(nilOperation("Compose3"))
	}
	return func(a A, b B, c C) R {
		return g(f(a, b, c))
	}
}

// Function4 maps four values to a result.
type Function4[A, B, C, D, R any] func(A, B, C, D) R

// Apply invokes the function.
func (f Function4[A, B, C, D, R]) Apply(a A, b B, c C, d D) R {
	return f(a, b, c, d)
}

// ThenAccept returns a consumer that feeds the result of f to c.
func (f Function4[A, B, C, D, R]) ThenAccept(c Consumer[R]) Consumer4[A, B, C, D] {
	if c == nil {
		panic(nilOperation("Function4.ThenAccept"))
	}
	return func(a A, b B, x C, d D) {
		c(f(a, b, x, d))
	}
}

// Compose4 returns a function applying f and then g to its result.
func Compose4[A, B, C, D, X, R any](f Function4[A, B, C, D, X], g Function[X, R]) Function4[A, B, C, D, R] {
	if f == nil || g == nil {
		panic(nilOperation("Compose4"))
	}
	return func(a A, b B, c C, d D) R {
		return g(f(a, b, c, d))
	}
}

// FunctionEx maps one value to a result and may fail.
type FunctionEx[A, R any] func(A) (R, error)

// Apply invokes the function.
func (f FunctionEx[A, R]) Apply(a A) (R, error) {
	return f(a)
}

// ThenAccept returns a consumer that feeds the result of f to c unless f
// fails.
func (f FunctionEx[A, R]) ThenAccept(c ConsumerEx[R]) ConsumerEx[A] {
	if c == nil {
		panic(nilOperation("FunctionEx.ThenAccept"))
	}
	return func(a A) error {
		r, err := f(a)
		if err != nil {
			return err
		}
		return c(r)
	}
}

// HandleEx returns a function that converts a failure into a result via
// handler, which also receives the input.
func (f FunctionEx[A, R]) HandleEx(handler func(A, error) R) Function[A, R] {
	if handler == nil {
		panic(nilOperation("FunctionEx.HandleEx"))
	}
	return func(a A) R {
		r, err := f(a)
		if err != nil {
			return handler(a, err)
		}
		return r
	}
}

// IgnoreEx returns a function yielding the zero value on failure.
func (f FunctionEx[A, R]) IgnoreEx() Function[A, R] {
	return func(a A) R {
		r, err := f(a)
		if err != nil {
			var zero R
			return zero
		}
		return r
	}
}

// OnEx returns a function that applies fallback to the input on failure.
func (f FunctionEx[A, R]) OnEx(fallback Function[A, R]) Function[A, R] {
	if fallback == nil {
		panic(nilOperation("FunctionEx.OnEx"))
	}
	return func(a A) R {
		r, err := f(a)
		if err != nil {
			return fallback(a)
		}
		return r
	}
}

// ComposeEx returns a function applying f and then g, stopping at the
// first failure.
func ComposeEx[A, B, R any](f FunctionEx[A, B], g FunctionEx[B, R]) FunctionEx[A, R] {
	if f == nil || g == nil {
		panic(nilOperation("ComposeEx"))
	}
	return func(a A) (R, error) {
		b, err := f(a)
		if err != nil {
			var zero R
			return zero, err
		}
		return g(b)
	}
}

// FunctionEx2 maps two values to a result and may fail.
type FunctionEx2[A, B, R any] func(A, B) (R, error)

// Apply invokes the function.
func (f FunctionEx2[A, B, R]) Apply(a A, b B) (R, error) {
	return f(a, b)
}

// ThenAccept returns a consumer that feeds the result of f to c unless f
// fails.
func (f FunctionEx2[A, B, R]) ThenAccept(c ConsumerEx[R]) ConsumerEx2[A, B] {
	if c == nil {
		panic(nilOperation("FunctionEx2.ThenAccept"))
	}
	return func(a A, b B) error {
		r, err := f(a, b)
		if err != nil {
			return err
		}
		return c(r)
	}
}

// HandleEx returns a function that converts a failure into a result via
// handler, which also receives the inputs.
func (f FunctionEx2[A, B, R]) HandleEx(handler func(A, B, error) R) Function2[A, B, R] {
	if handler == nil {
		panic(nilOperation("FunctionEx2.HandleEx"))
	}
	return func(a A, b B) R {
		r, err := f(a, b)
		if err != nil {
			return handler(a, b, err)
		}
		return r
	}
}

// IgnoreEx returns a function yielding the zero value on failure.
func (f FunctionEx2[A, B, R]) IgnoreEx() Function2[A, B, R] {
	return func(a A, b B) R {
		r, err := f(a, b)
		if err != nil {
			var zero R
			return zero
		}
		return r
	}
}

// OnEx returns a function that applies fallback to the inputs on failure.
func (f FunctionEx2[A, B, R]) OnEx(fallback Function2[A, B, R]) Function2[A, B, R] {
	if fallback == nil {
		panic(nilOperation("FunctionEx2.OnEx"))
	}
	return func(a A, b B) R {
		r, err := f(a, b)
		if err != nil {
			return fallback(a, b)
		}
		return r
	}
}

// FunctionEx3 maps three values to a result and may fail.
type FunctionEx3[A, B, C, R any] func(A, B, C) (R, error)

// Apply invokes the function.
func (f FunctionEx3[A, B, C, R]) Apply(a A, b B, c C) (R, error) {
	return f(a, b, c)
}

// ThenAccept returns a consumer that feeds the result of f to next unless
// f fails.
func (f FunctionEx3[A, B, C, R]) ThenAccept(next ConsumerEx[R]) ConsumerEx3[A, B, C] {
	if next == nil {
		panic(nilOperation("FunctionEx3.ThenAccept"))
	}
	return func(a A, b B, c C) error {
		r, err := f(a, b, c)
		if err != nil {
			return err
		}
		return next(r)
	}
}

// HandleEx returns a function that converts a failure into a result via
// handler.
func (f FunctionEx3[A, B, C, R]) HandleEx(handler func(A, B, C, error) R) Function3[A, B, C, R] {
	if handler == nil {
		panic(nilOperation("FunctionEx3.HandleEx"))
	}
	return func(a A, b B, c C) R {
		r, err := f(a, b, c)
		if err != nil {
			return handler(a, b, c, err)
		}
		return r
	}
}

// IgnoreEx returns a function yielding the zero value on failure.
func (f FunctionEx3[A, B, C, R]) IgnoreEx() Function3[A, B, C, R] {
	return func(a A, b B, c C) R {
		r, err := f(a, b, c)
		if err != nil {
			var zero R
			return zero
		}
		return r
	}
}

// OnEx returns a function that applies fallback to the inputs on failure.
func (f FunctionEx3[A, B, C, R]) OnEx(fallback Function3[A, B, C, R]) Function3[A, B, C, R] {
	if fallback == nil {
		panic(nilOperation("FunctionEx3.OnEx"))
	}
	return func(a A, b B, c C) R {
		r, err := f(a, b, c)
		if err != nil {
			return fallback(a, b, c)
		}
		return r
	}
}

// FunctionEx4 maps four values to a result and may fail.
type FunctionEx4[A, B, C, D, R any] func(A, B, C, D) (R, error)

// Apply invokes the function.
func (f FunctionEx4[A, B, C, D, R]) Apply(a A, b B, c C, d D) (R, error) {
	return f(a, b, c, d)
}

// ThenAccept returns a consumer that feeds the result of f to next unless
// f fails.
func (f FunctionEx4[A, B, C, D, R]) ThenAccept(next ConsumerEx[R]) ConsumerEx4[A, B, C, D] {
	if next == nil {
		panic(nilOperation("FunctionEx4.ThenAccept"))
	}
	return func(a A, b B, c C, d D) error {
		r, err := f(a, b, c, d)
		if err != nil {
			return err
		}
		return next(r)
	}
}

// HandleEx returns a function that converts a failure into a result via
// handler.
func (f FunctionEx4[A, B, C, D, R]) HandleEx(handler func(A, B, C, D, error) R) Function4[A, B, C, D, R] {
	if handler == nil {
		panic(nilOperation("FunctionEx4.HandleEx"))
	}
	return func(a A, b B, c C, d D) R {
		r, err := f(a, b, c, d)
		if err != nil {
			return handler(a, b, c, d, err)
		}
		return r
	}
}

// IgnoreEx returns a function yielding the zero value on failure.
func (f FunctionEx4[A, B, C, D, R]) IgnoreEx() Function4[A, B, C, D, R] {
	return func(a A, b B, c C, d D) R {
		r, err := f(a, b, c, d)
		if err != nil {
			var zero R
			return zero
		}
		return r
	}
}

// OnEx returns a function that applies fallback to the inputs on failure.
func (f FunctionEx4[A, B, C, D, R]) OnEx(fallback Function4[A, B, C, D, R]) Function4[A, B, C, D, R] {
	if fallback == nil {
		panic(nilOperation("FunctionEx4.OnEx"))
	}
	return func(a A, b B, c C, d D) R {
		r, err := f(a, b, c, d)
		if err != nil {
			return fallback(a, b, c, d)
		}
		return r
	}
}
