// Package events carries named string messages between the fix pipeline and
// the overlay. Bus is the in-process channel; Hub and Client extend it to
// other processes over a websocket.
package events

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/oukeidos/typoduck/internal/logger"
)

// ErrClosed is returned by Subscribe and Emit after the bus is closed.
var ErrClosed = errors.New("event bus closed")

// Handler receives the payload of one message.
type Handler = func(payload string)

type subscription struct {
	id string
	fn Handler
}

// Bus is a synchronous named pub/sub. Handlers for a name run on the
// emitting goroutine in subscription order.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]subscription
	taps   map[string]func(Message)
	closed bool
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[string][]subscription),
		taps: make(map[string]func(Message)),
	}
}

// Subscribe registers fn for name. The returned release func is idempotent.
func (b *Bus) Subscribe(ctx context.Context, name string, fn Handler) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" || fn == nil {
		return nil, errors.New("subscribe: name and handler are required")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	id := uuid.NewString()
	b.subs[name] = append(b.subs[name], subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(name, id) })
	}, nil
}

func (b *Bus) remove(name, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[name]
	for i, s := range list {
		if s.id != id {
			continue
		}
		next := make([]subscription, 0, len(list)-1)
		next = append(next, list[:i]...)
		next = append(next, list[i+1:]...)
		if len(next) == 0 {
			delete(b.subs, name)
		} else {
			b.subs[name] = next
		}
		return
	}
}

// Emit publishes a message originating in this process.
func (b *Bus) Emit(ctx context.Context, name, payload string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.Publish(Message{Name: name, Payload: payload})
}

// Publish delivers msg to local handlers and taps. The Origin field is kept
// so relays can avoid echoing a message back to its sender.
func (b *Bus) Publish(msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrClosed
	}
	handlers := append([]subscription(nil), b.subs[msg.Name]...)
	taps := make([]func(Message), 0, len(b.taps))
	for _, fn := range b.taps {
		taps = append(taps, fn)
	}
	b.mu.RUnlock()

	logger.Debug("Event published", "name", msg.Name, "handlers", len(handlers), "origin", msg.Origin)
	for _, s := range handlers {
		s.fn(msg.Payload)
	}
	for _, fn := range taps {
		fn(msg)
	}
	return nil
}

// Tap observes every published message regardless of name.
func (b *Bus) Tap(fn func(Message)) func() {
	id := uuid.NewString()
	b.mu.Lock()
	b.taps[id] = fn
	b.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.taps, id)
			b.mu.Unlock()
		})
	}
}

// Subscribers reports how many handlers are registered for name.
func (b *Bus) Subscribers(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[name])
}

// Close drops every subscription. Later calls fail with ErrClosed.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = make(map[string][]subscription)
	b.taps = make(map[string]func(Message))
}
