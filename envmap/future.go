package envmap

import (
	"context"
	"sync"
)

// Future is a single fire completion handle.
// It resolves exactly once, with a nil error on success.
type Future struct {
	once      sync.Once
	done      chan struct{}
	mu        sync.Mutex
	err       error
	callbacks []func(error)
}

func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolved returns a future that already completed with err.
func Resolved(err error) *Future {
	f := NewFuture()
	f.resolve(err)
	return f
}

// resolve completes the future and runs the registered callbacks on the calling goroutine.
// Only the first call has an effect.
func (f *Future) resolve(err error) (ok bool) {
	f.once.Do(func() {
		f.mu.Lock()
		f.err = err
		callbacks := f.callbacks
		f.callbacks = nil
		close(f.done)
		f.mu.Unlock()

		for _, cb := range callbacks {
			cb(err)
		}
		ok = true
	})
	return ok
}

// Done is closed once the future resolved.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

func (f *Future) IsDone() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the future resolved or ctx is done.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err is the result of a resolved future and nil while it is pending.
func (f *Future) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Then registers cb to run when the future resolves.
// If it already did, cb runs immediately on the calling goroutine.
func (f *Future) Then(cb func(err error)) {
	f.mu.Lock()
	select {
	case <-f.done:
		err := f.err
		f.mu.Unlock()
		cb(err)
		return
	default:
	}
	f.callbacks = append(f.callbacks, cb)
	f.mu.Unlock()
}
