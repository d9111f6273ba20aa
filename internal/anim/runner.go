package anim

import (
	"context"
	"sync"
	"time"

	"github.com/oukeidos/typoduck/internal/logger"
)

// Bridge is the part of the event channel the runner needs. Subscribe
// returns a release function that must be safe to call more than once.
type Bridge interface {
	Subscribe(ctx context.Context, name string, fn func(payload string)) (func(), error)
	Emit(ctx context.Context, name, payload string) error
}

// Ticker is the fixed-period frame clock.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTicker wraps time.NewTicker.
func NewTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// RenderFunc draws the given frame, or clears the surface when visible is
// false.
type RenderFunc func(frame int, visible bool)

const (
	signalQueueSize = 16
	emitTimeout     = 2 * time.Second
)

// Runner owns a Controller for one overlay lifetime: it subscribes to the
// phase channel, ticks on a fixed period, and emits completion once.
type Runner struct {
	ctrl      *Controller
	bridge    Bridge
	render    RenderFunc
	newTicker func(time.Duration) Ticker
	period    time.Duration

	signals  chan Signal
	done     chan struct{}
	doneOnce sync.Once
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithBridge connects the runner to the backend's event channel.
func WithBridge(b Bridge) RunnerOption {
	return func(r *Runner) { r.bridge = b }
}

// WithRenderer sets the frame sink.
func WithRenderer(fn RenderFunc) RunnerOption {
	return func(r *Runner) { r.render = fn }
}

// WithTicker replaces the frame clock; used by tests.
func WithTicker(fn func(time.Duration) Ticker) RunnerOption {
	return func(r *Runner) { r.newTicker = fn }
}

// WithPeriod overrides FrameDuration.
func WithPeriod(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.period = d
		}
	}
}

// NewRunner builds a runner around a fresh controller.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		newTicker: NewTicker,
		period:    FrameDuration,
		signals:   make(chan Signal, signalQueueSize),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.ctrl = New(OnComplete(r.emitComplete))
	return r
}

// Controller exposes the owned controller for inspection after Run returns.
func (r *Runner) Controller() *Controller { return r.ctrl }

// Done is closed when Run has returned.
func (r *Runner) Done() <-chan struct{} { return r.done }

// Deliver queues a raw phase-channel payload. Unknown payloads are ignored.
// Safe to call from any goroutine, including after Run has returned.
func (r *Runner) Deliver(payload string) {
	sig, ok := ParseSignal(payload)
	if !ok {
		logger.Debug("Ignoring unknown animation payload", "payload", payload)
		return
	}
	select {
	case r.signals <- sig:
	case <-r.done:
	}
}

// Run plays the animation until it reaches Done or ctx ends. The ticker is
// stopped and the subscription released on every return path.
func (r *Runner) Run(ctx context.Context) error {
	defer r.doneOnce.Do(func() { close(r.done) })
	defer r.ctrl.Close()

	if r.bridge != nil {
		release, err := r.bridge.Subscribe(ctx, PhaseChannel, r.Deliver)
		if err != nil {
			logger.Warn("Animation running without backend control", "channel", PhaseChannel, "error", err)
		} else {
			defer release()
		}
	}

	r.ctrl.Activate()
	r.draw()

	ticker := r.newTicker(r.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.clear()
			return ctx.Err()
		case sig := <-r.signals:
			r.ctrl.Signal(sig)
			r.draw()
		case <-ticker.C():
			// Signals already queued win over the tick.
			r.drainSignals()
			r.ctrl.Tick()
			r.draw()
			if r.ctrl.Done() {
				return nil
			}
		}
	}
}

func (r *Runner) drainSignals() {
	for {
		select {
		case sig := <-r.signals:
			r.ctrl.Signal(sig)
		default:
			return
		}
	}
}

func (r *Runner) draw() {
	if r.render == nil {
		return
	}
	r.render(r.ctrl.Frame(), r.ctrl.Visible())
}

func (r *Runner) clear() {
	if r.render == nil {
		return
	}
	r.render(r.ctrl.Frame(), false)
}

func (r *Runner) emitComplete() {
	if r.bridge == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
	defer cancel()
	if err := r.bridge.Emit(ctx, CompleteChannel, ""); err != nil {
		logger.Warn("Completion notification not delivered", "channel", CompleteChannel, "error", err)
	}
}
