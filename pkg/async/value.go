package async

// Value is either a result available now or a pending Future.
// The zero Value is a settled zero result.
type Value[T any] struct {
	result T
	err    error
	future *Future[T]
}

// Now returns a settled value.
func Now[T any](v T) Value[T] {
	return Value[T]{result: v}
}

// Fail returns a settled failure.
func Fail[T any](err error) Value[T] {
	return Value[T]{err: err}
}

// Later wraps a future. A nil future yields a settled zero value.
func Later[T any](f *Future[T]) Value[T] {
	return Value[T]{future: f}
}

// IsAsync reports whether consuming the value is a suspension point.
// A value wrapping a future is asynchronous even if the future has
// already settled.
func (v Value[T]) IsAsync() bool {
	return v.future != nil
}

// Future returns the wrapped future, or nil for settled values.
func (v Value[T]) Future() *Future[T] {
	return v.future
}

// Get returns the result, blocking on the wrapped future if there is one.
func (v Value[T]) Get() (T, error) {
	if v.future != nil {
		return v.future.Await()
	}
	return v.result, v.err
}
