package events

import (
	"context"
	"fmt"
	"sync"
)

// Subscriber is implemented by Bus and Client.
type Subscriber interface {
	Subscribe(ctx context.Context, name string, fn Handler) (func(), error)
}

// Scope ties subscriptions to a component's lifetime. Release undoes every
// Acquire exactly once and may be deferred on all exit paths.
type Scope struct {
	src Subscriber

	mu       sync.Mutex
	releases []func()
	released bool
}

// NewScope returns a scope over src.
func NewScope(src Subscriber) *Scope {
	return &Scope{src: src}
}

// Acquire subscribes fn to name for the life of the scope.
func (s *Scope) Acquire(ctx context.Context, name string, fn Handler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return fmt.Errorf("subscribe %s: scope already released", name)
	}
	release, err := s.src.Subscribe(ctx, name, fn)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", name, err)
	}
	s.releases = append(s.releases, release)
	return nil
}

// Release unsubscribes everything acquired, newest first.
func (s *Scope) Release() {
	s.mu.Lock()
	releases := s.releases
	s.releases = nil
	s.released = true
	s.mu.Unlock()

	for i := len(releases) - 1; i >= 0; i-- {
		releases[i]()
	}
}

// Waiter holds a one-shot subscription opened before the event that
// triggers it is sent, so the reply cannot be missed.
type Waiter struct {
	scope *Scope
	got   chan string
}

// Expect subscribes to name and returns a waiter for its first message.
func Expect(ctx context.Context, src Subscriber, name string) (*Waiter, error) {
	w := &Waiter{scope: NewScope(src), got: make(chan string, 1)}
	if err := w.scope.Acquire(ctx, name, func(payload string) {
		select {
		case w.got <- payload:
		default:
		}
	}); err != nil {
		return nil, err
	}
	return w, nil
}

// Wait blocks until the message arrives or ctx ends.
func (w *Waiter) Wait(ctx context.Context) (string, error) {
	select {
	case p := <-w.got:
		return p, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Release drops the subscription.
func (w *Waiter) Release() { w.scope.Release() }
