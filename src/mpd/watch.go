package mpd

import (
	"context"
	"sync"
)

// watch holds the latest value of type T and lets any number of readers
// block until it next changes, the way tokio's watch channel does. Each
// change closes the current notification channel and installs a fresh one,
// a standard Go broadcast idiom (the same one context.Context uses for
// Done()) that needs no extra library.
type watch[T any] struct {
	mu    sync.Mutex
	value T
	ch    chan struct{}
}

func newWatch[T any](initial T) *watch[T] {
	return &watch[T]{value: initial, ch: make(chan struct{})}
}

// Send installs v as the latest value and wakes every blocked receiver.
func (w *watch[T]) Send(v T) {
	w.mu.Lock()
	w.value = v
	old := w.ch
	w.ch = make(chan struct{})
	w.mu.Unlock()
	close(old)
}

func (w *watch[T]) snapshot() (T, chan struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.value, w.ch
}

// Receiver returns a new cursor into w, starting from whatever value is
// currently installed.
func (w *watch[T]) Receiver() *watchReceiver[T] {
	v, ch := w.snapshot()
	return &watchReceiver[T]{w: w, last: v, ch: ch}
}

type watchReceiver[T any] struct {
	w    *watch[T]
	last T
	ch   chan struct{}
}

// Changed blocks until w's value has changed since the last call (or since
// the receiver was created), then returns it.
func (r *watchReceiver[T]) Changed(ctx context.Context) (T, error) {
	select {
	case <-r.ch:
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
	v, ch := r.w.snapshot()
	r.last, r.ch = v, ch
	return v, nil
}
