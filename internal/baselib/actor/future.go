package actor

import (
	"context"
	"sync"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// Future represents the result of an asynchronous computation. It allows
// consumers to wait for the result (Await), apply transformations upon
// completion (ThenApply), or register a callback to be executed when the
// result is available (OnComplete).
//
// This runtime uses Future for the awaitable returned by Stop(ctx) and for
// the completion signal a FutureReactor returns to the drain loop; it is not
// a general request/response mechanism between agents (agents only ever
// Emit fire-and-forget, replying via ReturnAddress).
type Future[T any] interface {
	// Await blocks until the result is available or ctx is cancelled,
	// then returns it.
	Await(ctx context.Context) fn.Result[T]

	// ThenApply registers a function to transform the result of a
	// future. The original future is not modified; a new instance is
	// returned. If ctx is cancelled while waiting for the original
	// future to complete, the new future completes with ctx's error.
	ThenApply(ctx context.Context, f func(T) T) Future[T]

	// OnComplete registers a function to be called when the result of
	// the future is ready. If ctx is cancelled before the future
	// completes, the callback is invoked with ctx's error instead.
	OnComplete(ctx context.Context, f func(fn.Result[T]))
}

// Promise allows the completion of an associated Future. The producer of an
// asynchronous result uses a Promise to set the outcome; consumers use the
// associated Future to retrieve it.
type Promise[T any] interface {
	// Future returns the Future associated with this Promise.
	Future() Future[T]

	// Complete attempts to set the result of the future. It returns true
	// if this call was the first to complete it, false if the future had
	// already been completed.
	Complete(result fn.Result[T]) bool
}

// promise is the default channel-backed Promise/Future implementation.
type promise[T any] struct {
	done   chan struct{}
	once   sync.Once
	mu     sync.RWMutex
	result fn.Result[T]
}

// NewPromise creates an uncompleted Promise.
func NewPromise[T any]() Promise[T] {
	return &promise[T]{done: make(chan struct{})}
}

// Complete implements Promise.
func (p *promise[T]) Complete(result fn.Result[T]) bool {
	completed := false

	p.once.Do(func() {
		p.mu.Lock()
		p.result = result
		p.mu.Unlock()

		close(p.done)
		completed = true
	})

	return completed
}

// Future implements Promise.
func (p *promise[T]) Future() Future[T] {
	return (*future[T])(p)
}

// future adapts a promise into the consumer-facing Future interface.
type future[T any] promise[T]

// Await implements Future.
func (f *future[T]) Await(ctx context.Context) fn.Result[T] {
	select {
	case <-f.done:
		f.mu.RLock()
		defer f.mu.RUnlock()

		return f.result

	case <-ctx.Done():
		return fn.Err[T](ctx.Err())
	}
}

// ThenApply implements Future.
func (f *future[T]) ThenApply(ctx context.Context, apply func(T) T) Future[T] {
	next := NewPromise[T]()

	go func() {
		result := f.Await(ctx)

		result.WhenOk(func(val T) {
			result = fn.Ok(apply(val))
		})

		next.Complete(result)
	}()

	return next.Future()
}

// OnComplete implements Future.
func (f *future[T]) OnComplete(ctx context.Context, cb func(fn.Result[T])) {
	go func() {
		cb(f.Await(ctx))
	}()
}
