package events

import (
	"context"
	"errors"
	"testing"
	"time"
)

type failingSubscriber struct{}

func (failingSubscriber) Subscribe(context.Context, string, Handler) (func(), error) {
	return nil, errors.New("unavailable")
}

func TestScope_ReleaseUnsubscribesOnce(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()
	scope := NewScope(bus)
	if err := scope.Acquire(ctx, "a", func(string) {}); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := scope.Acquire(ctx, "b", func(string) {}); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	scope.Release()
	scope.Release()
	if bus.Subscribers("a") != 0 || bus.Subscribers("b") != 0 {
		t.Fatalf("subscriptions left after release")
	}
	if err := scope.Acquire(ctx, "c", func(string) {}); err == nil {
		t.Fatalf("Acquire after release succeeded")
	}
	if bus.Subscribers("c") != 0 {
		t.Fatalf("released scope subscribed")
	}
}

func TestScope_AcquireFailure(t *testing.T) {
	scope := NewScope(failingSubscriber{})
	err := scope.Acquire(context.Background(), "animation-phase", func(string) {})
	if err == nil {
		t.Fatalf("expected error")
	}
	scope.Release()
}

func TestExpect_ReceivesAndReleases(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()
	w, err := Expect(ctx, bus, "animation-complete")
	if err != nil {
		t.Fatalf("Expect: %v", err)
	}
	defer w.Release()

	_ = bus.Emit(ctx, "animation-complete", "")
	_ = bus.Emit(ctx, "animation-complete", "again")

	wctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	p, err := w.Wait(wctx)
	if err != nil || p != "" {
		t.Fatalf("Wait = (%q, %v)", p, err)
	}
	w.Release()
	if bus.Subscribers("animation-complete") != 0 {
		t.Fatalf("waiter still subscribed")
	}
}

func TestExpect_Timeout(t *testing.T) {
	bus := NewBus()
	w, err := Expect(context.Background(), bus, "animation-complete")
	if err != nil {
		t.Fatalf("Expect: %v", err)
	}
	defer w.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := w.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait = %v, want deadline exceeded", err)
	}
}
