package anim

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped int
}

func newFakeTicker() *fakeTicker {
	return &fakeTicker{ch: make(chan time.Time)}
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }

func (f *fakeTicker) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
}

func (f *fakeTicker) stopCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

type fakeBridge struct {
	mu           sync.Mutex
	subscribeErr error
	emitErr      error
	handler      func(string)
	subscribed   []string
	released     int
	emitted      []string
}

func (b *fakeBridge) Subscribe(_ context.Context, name string, fn func(string)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subscribeErr != nil {
		return nil, b.subscribeErr
	}
	b.subscribed = append(b.subscribed, name)
	b.handler = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.released++
			b.handler = nil
		})
	}, nil
}

func (b *fakeBridge) Emit(_ context.Context, name, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.emitted = append(b.emitted, name)
	return b.emitErr
}

func (b *fakeBridge) publish(payload string) {
	b.mu.Lock()
	fn := b.handler
	b.mu.Unlock()
	if fn != nil {
		fn(payload)
	}
}

type render struct {
	frame   int
	visible bool
}

type renderLog struct {
	mu      sync.Mutex
	renders []render
}

func (l *renderLog) record(frame int, visible bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.renders = append(l.renders, render{frame, visible})
}

func (l *renderLog) snapshot() []render {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]render(nil), l.renders...)
}

type harness struct {
	ticker *fakeTicker
	bridge *fakeBridge
	log    *renderLog
	runner *Runner
	errCh  chan error
	cancel context.CancelFunc
}

func startRunner(t *testing.T, bridge *fakeBridge) *harness {
	t.Helper()
	h := &harness{
		ticker: newFakeTicker(),
		bridge: bridge,
		log:    &renderLog{},
		errCh:  make(chan error, 1),
	}
	opts := []RunnerOption{
		WithRenderer(h.log.record),
		WithTicker(func(time.Duration) Ticker { return h.ticker }),
	}
	if bridge != nil {
		opts = append(opts, WithBridge(bridge))
	}
	h.runner = NewRunner(opts...)
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	t.Cleanup(cancel)
	go func() { h.errCh <- h.runner.Run(ctx) }()
	return h
}

func (h *harness) tick(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case h.ticker.ch <- time.Now():
		case <-h.runner.Done():
			t.Fatalf("runner exited after %d of %d ticks", i, n)
		case <-time.After(2 * time.Second):
			t.Fatalf("tick %d not consumed", i)
		}
	}
}

// settle waits until the loop has drawn n frames, so a tick that was
// handed over has also been applied.
func (h *harness) settle(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for len(h.log.snapshot()) < n {
		if time.Now().After(deadline) {
			t.Fatalf("renders = %d, want %d", len(h.log.snapshot()), n)
		}
		time.Sleep(time.Millisecond)
	}
}

func (h *harness) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-h.errCh:
		return err
	case <-time.After(2 * time.Second):
		t.Fatalf("runner did not exit")
		return nil
	}
}

func TestRunner_FullCycleThroughBridge(t *testing.T) {
	bridge := &fakeBridge{}
	h := startRunner(t, bridge)

	h.tick(t, 6)
	h.settle(t, 7)
	bridge.publish("finish")
	h.tick(t, 5)
	if err := h.wait(t); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(bridge.subscribed) != 1 || bridge.subscribed[0] != PhaseChannel {
		t.Fatalf("subscribed = %v, want [%s]", bridge.subscribed, PhaseChannel)
	}
	if bridge.released != 1 {
		t.Fatalf("released = %d, want 1", bridge.released)
	}
	if len(bridge.emitted) != 1 || bridge.emitted[0] != CompleteChannel {
		t.Fatalf("emitted = %v, want [%s]", bridge.emitted, CompleteChannel)
	}
	if h.ticker.stopCount() != 1 {
		t.Fatalf("ticker stopped %d times, want 1", h.ticker.stopCount())
	}

	renders := h.log.snapshot()
	last := renders[len(renders)-1]
	if last.visible {
		t.Fatalf("last render visible: %+v", last)
	}
	var outro []int
	for _, r := range renders {
		if r.visible && r.frame >= OutroFirst {
			if len(outro) == 0 || outro[len(outro)-1] != r.frame {
				outro = append(outro, r.frame)
			}
		}
	}
	want := []int{7, 8, 9, 10}
	if len(outro) != len(want) {
		t.Fatalf("outro frames = %v, want %v", outro, want)
	}
	for i := range want {
		if outro[i] != want[i] {
			t.Fatalf("outro frames = %v, want %v", outro, want)
		}
	}
}

func TestRunner_SignalAppliedBeforeTick(t *testing.T) {
	bridge := &fakeBridge{}
	h := startRunner(t, bridge)

	h.runner.Deliver("finish")
	h.tick(t, 5)
	if err := h.wait(t); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	for _, r := range h.log.snapshot() {
		if r.visible && r.frame > IntroFirst && r.frame < OutroFirst {
			t.Fatalf("tick observed state before the queued finish: %+v", r)
		}
	}
}

func TestRunner_SubscribeFailureDegrades(t *testing.T) {
	bridge := &fakeBridge{subscribeErr: errors.New("bridge down")}
	h := startRunner(t, bridge)

	h.tick(t, 7)
	h.settle(t, 8)
	h.runner.Deliver("finish")
	h.tick(t, 5)
	if err := h.wait(t); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if !h.runner.Controller().Completed() {
		t.Fatalf("animation did not complete without a subscription")
	}
	if bridge.released != 0 {
		t.Fatalf("released = %d for a failed subscription", bridge.released)
	}
}

func TestRunner_EmitFailureStillFinishes(t *testing.T) {
	bridge := &fakeBridge{emitErr: errors.New("no listener")}
	h := startRunner(t, bridge)

	h.tick(t, 1)
	h.settle(t, 2)
	bridge.publish("finish")
	h.tick(t, 5)
	if err := h.wait(t); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(bridge.emitted) != 1 {
		t.Fatalf("emitted = %v, want one attempt", bridge.emitted)
	}
	if !h.runner.Controller().Done() {
		t.Fatalf("controller not done")
	}
}

func TestRunner_CancelReleasesEverything(t *testing.T) {
	bridge := &fakeBridge{}
	h := startRunner(t, bridge)

	h.tick(t, 3)
	h.cancel()
	if err := h.wait(t); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
	if bridge.released != 1 {
		t.Fatalf("released = %d, want 1", bridge.released)
	}
	if h.ticker.stopCount() != 1 {
		t.Fatalf("ticker stopped %d times, want 1", h.ticker.stopCount())
	}
	if len(bridge.emitted) != 0 {
		t.Fatalf("completion emitted on cancel: %v", bridge.emitted)
	}
	if !h.runner.Controller().Closed() {
		t.Fatalf("controller not closed")
	}

	renders := h.log.snapshot()
	if renders[len(renders)-1].visible {
		t.Fatalf("surface not cleared on cancel")
	}

	done := make(chan struct{})
	go func() {
		h.runner.Deliver("start")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Deliver blocked after Run returned")
	}
}

func TestRunner_UnknownPayloadIgnored(t *testing.T) {
	h := startRunner(t, nil)

	h.runner.Deliver("wiggle")
	h.tick(t, 6)
	h.cancel()
	_ = h.wait(t)
	if got := h.runner.Controller().State(); got.Phase != PhaseRunning {
		t.Fatalf("state = %+v, want running", got)
	}
}
