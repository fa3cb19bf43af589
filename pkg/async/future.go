package async

import (
	"context"
	"sync"
	"time"
)

// Future is a result that becomes available once.
type Future[T any] struct {
	once   sync.Once
	done   chan struct{}
	result T
	err    error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// NewPromise returns an unsettled future together with the functions that
// settle it. Only the first call to either function has an effect.
func NewPromise[T any]() (f *Future[T], resolve func(T), reject func(error)) {
	f = newFuture[T]()
	resolve = func(v T) { f.settle(v, nil) }
	reject = func(err error) {
		var zero T
		f.settle(zero, err)
	}
	return f, resolve, reject
}

// Resolved returns a future already settled with v.
func Resolved[T any](v T) *Future[T] {
	f := newFuture[T]()
	f.settle(v, nil)
	return f
}

// Rejected returns a future already settled with err.
func Rejected[T any](err error) *Future[T] {
	f := newFuture[T]()
	var zero T
	f.settle(zero, err)
	return f
}

// Go runs fn in a new goroutine and returns a future for its result.
// If ctx is already done, fn is not called and the future settles with ctx.Err().
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := newFuture[T]()

	go func() {
		select {
		case <-ctx.Done():
			var zero T
			f.settle(zero, ctx.Err())
			return
		default:
		}

		res, err := fn(ctx)
		f.settle(res, err)
	}()

	return f
}

func (f *Future[T]) settle(v T, err error) {
	f.once.Do(func() {
		f.result = v
		f.err = err
		close(f.done)
	})
}

// Await blocks until the future settles.
func (f *Future[T]) Await() (T, error) {
	if f == nil {
		var zero T
		return zero, ErrNilFuture
	}
	<-f.done
	return f.result, f.err
}

// AwaitContext blocks until the future settles or ctx is done.
func (f *Future[T]) AwaitContext(ctx context.Context) (T, error) {
	if f == nil {
		var zero T
		return zero, ErrNilFuture
	}
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// AwaitTimeout blocks until the future settles or the timeout elapses.
func (f *Future[T]) AwaitTimeout(timeout time.Duration) (T, error) {
	if f == nil {
		var zero T
		return zero, ErrNilFuture
	}
	select {
	case <-f.done:
		return f.result, f.err
	case <-time.After(timeout):
		var zero T
		return zero, ErrTimeout
	}
}

// Done returns a channel closed when the future settles.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// IsComplete reports whether the future has settled.
func (f *Future[T]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Then returns a future settled with fn applied to f's result.
// fn runs on its own goroutine once f settles; an error from f skips fn.
func Then[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	out := newFuture[U]()
	go func() {
		v, err := f.Await()
		if err != nil {
			var zero U
			out.settle(zero, err)
			return
		}
		u, err := fn(v)
		out.settle(u, err)
	}()
	return out
}

// WaitAll waits for every future and returns their results in order.
// All futures are awaited even when one fails; the first error by position
// is returned.
func WaitAll[T any](futures ...*Future[T]) ([]T, error) {
	results := make([]T, len(futures))
	var first error

	for i, future := range futures {
		res, err := future.Await()
		results[i] = res
		if err != nil && first == nil {
			first = err
		}
	}

	return results, first
}
