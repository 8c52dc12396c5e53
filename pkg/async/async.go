package async

import (
	"context"
	"errors"
)

// Future holds the eventual outcome of a function started by Go.
type Future[T any] struct {
	value T
	err   error
	done  chan struct{}
}

// Go runs fn in a new goroutine. If ctx is already done fn is not called and
// the future resolves with ctx.Err().
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	go func() {
		defer close(f.done)
		if err := ctx.Err(); err != nil {
			f.err = err
			return
		}
		f.value, f.err = fn(ctx)
	}()

	return f
}

// Done is closed once the future resolves.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Ready reports whether the future has resolved.
func (f *Future[T]) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Await blocks until the future resolves or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result is a resolved future's value and error.
type Result[T any] struct {
	Value T
	Err   error
}

// Settle waits for every future and returns their results in order. The
// returned error joins all individual failures; one failure never stops the
// wait for the others.
func Settle[T any](futures ...*Future[T]) ([]Result[T], error) {
	results := make([]Result[T], len(futures))
	errs := make([]error, 0, len(futures))

	for i, f := range futures {
		<-f.done
		results[i] = Result[T]{Value: f.value, Err: f.err}
		if f.err != nil {
			errs = append(errs, f.err)
		}
	}

	return results, errors.Join(errs...)
}

// First returns the index and outcome of the first future to resolve.
func First[T any](ctx context.Context, futures ...*Future[T]) (int, T, error) {
	var zero T
	if len(futures) == 0 {
		return -1, zero, ErrNoFutures
	}

	won := make(chan int, len(futures))
	for i, f := range futures {
		go func() {
			select {
			case <-f.done:
				won <- i
			case <-ctx.Done():
			}
		}()
	}

	select {
	case i := <-won:
		return i, futures[i].value, futures[i].err
	case <-ctx.Done():
		return -1, zero, ctx.Err()
	}
}
