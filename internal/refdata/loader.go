package refdata

import (
	"context"
	"sync"
)

type loadState int

const (
	stateUninitialized loadState = iota
	stateLoading
	stateLoaded
	stateFailed
)

// loader runs an expensive one-time load at most once per process and
// coalesces concurrent callers onto the single in-flight attempt. A failed
// load publishes an explicit empty fallback value so the dataset is never
// nil; callers keep serving with degraded defaults.
type loader[T any] struct {
	mu    sync.Mutex
	state loadState
	done  chan struct{}
	value T

	load  func(ctx context.Context) (T, error)
	empty func() T
}

func newLoader[T any](load func(ctx context.Context) (T, error), empty func() T) *loader[T] {
	return &loader[T]{load: load, empty: empty}
}

// ensure blocks until the dataset is available (loaded or fallback). Only
// the first caller performs the load; everyone else waits on the shared
// completion channel. The only error it can return is the caller's own
// context expiring while waiting.
func (l *loader[T]) ensure(ctx context.Context) error {
	l.mu.Lock()
	switch l.state {
	case stateLoaded, stateFailed:
		l.mu.Unlock()
		return nil
	case stateLoading:
		done := l.done
		l.mu.Unlock()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	l.state = stateLoading
	l.done = make(chan struct{})
	done := l.done
	l.mu.Unlock()

	value, err := l.load(ctx)

	l.mu.Lock()
	if err != nil {
		l.state = stateFailed
		l.value = l.empty()
	} else {
		l.state = stateLoaded
		l.value = value
	}
	close(done)
	l.mu.Unlock()
	return nil
}

// get returns the published dataset. Call ensure first.
func (l *loader[T]) get() T {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == stateUninitialized || l.state == stateLoading {
		return l.empty()
	}
	return l.value
}

// isLoaded reports whether the last load succeeded.
func (l *loader[T]) isLoaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == stateLoaded
}

// reset returns the loader to uninitialized so the next ensure reloads.
func (l *loader[T]) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == stateLoading {
		return
	}
	l.state = stateUninitialized
	var zero T
	l.value = zero
}
