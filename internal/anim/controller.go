package anim

import (
	"github.com/oukeidos/typoduck/internal/logger"
)

// Controller owns the animation state. It is not safe for concurrent use;
// a Runner (or a test) is its single owner and serialises every input.
type Controller struct {
	state      State
	completed  bool
	closed     bool
	onComplete func()
	onChange   func(State)
}

// Option configures a Controller.
type Option func(*Controller)

// OnComplete registers the completion notification. It runs at most once per
// controller, on the Outro to Done transition.
func OnComplete(fn func()) Option {
	return func(c *Controller) { c.onComplete = fn }
}

// OnChange is called after every input that changed the state.
func OnChange(fn func(State)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// New returns a controller in the initial (Intro, 0) state.
func New(opts ...Option) *Controller {
	c := &Controller{state: Initial()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Activate resets to (Intro, 0) regardless of any signal that raced the
// overlay's creation.
func (c *Controller) Activate() {
	if c.closed {
		logger.Error("Animation activated after teardown")
		return
	}
	prev := c.state
	c.state = Initial()
	if prev != c.state && c.onChange != nil {
		c.onChange(c.state)
	}
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Frame returns the FrameSet index to draw.
func (c *Controller) Frame() int { return c.state.Frame }

// Visible reports whether a frame should be drawn.
func (c *Controller) Visible() bool { return c.state.Phase != PhaseDone }

// Done reports whether the terminal phase was reached.
func (c *Controller) Done() bool { return c.state.Phase == PhaseDone }

// Completed reports whether the completion notification has fired.
func (c *Controller) Completed() bool { return c.completed }

// Closed reports whether Close was called.
func (c *Controller) Closed() bool { return c.closed }

// Tick advances one frame per the transition table.
func (c *Controller) Tick() { c.apply(InputTick) }

// Signal applies an inbound start or finish.
func (c *Controller) Signal(sig Signal) { c.apply(sig.Input()) }

// Close tears the controller down. Inputs after Close are dropped.
func (c *Controller) Close() { c.closed = true }

func (c *Controller) apply(in Input) {
	if c.closed {
		// A live timer or listener outlived the overlay.
		logger.Error("Animation input after teardown", "event", in.String(), "phase", c.state.Phase.String())
		return
	}
	next, effect := Step(c.state, in)
	changed := next != c.state
	c.state = next
	if changed {
		logger.Debug("Animation transition", "event", in.String(), "phase", next.Phase.String(), "frame", next.Frame)
		if c.onChange != nil {
			c.onChange(next)
		}
	}
	if effect == EffectComplete && !c.completed {
		c.completed = true
		if c.onComplete != nil {
			c.onComplete()
		}
	}
}
