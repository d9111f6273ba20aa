// Package overlay hosts the duck window. A Host shows a small borderless
// window and drives it with an anim.Runner listening on the event bridge.
package overlay

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"

	"github.com/oukeidos/typoduck/internal/anim"
	"github.com/oukeidos/typoduck/internal/events"
	"github.com/oukeidos/typoduck/internal/guard"
	"github.com/oukeidos/typoduck/internal/logger"
	"github.com/oukeidos/typoduck/internal/sprite"
	"github.com/oukeidos/typoduck/internal/version"
)

// Size is the window edge in device-independent pixels.
const Size = 100

// stopWait bounds how long Hide waits for the runner to clear the frame.
const stopWait = time.Second

// surface is the drawable the runner renders into. Every method runs on the
// UI goroutine.
type surface interface {
	Render(frame image.Image, visible bool)
	Close()
}

var (
	newSurface = func(app fyne.App) surface { return &windowSurface{app: app} }
	do         = guard.Do
)

// Host shows and hides the overlay. Show and Hide are reference counted so
// overlapping fixes share one window.
type Host struct {
	app    fyne.App
	bridge anim.Bridge
	frames []image.Image
	opts   []anim.RunnerOption

	mu     sync.Mutex
	refs   int
	surf   surface
	runner *anim.Runner
	cancel context.CancelFunc
}

// NewHost prepares a host; no window exists until the first Show.
func NewHost(app fyne.App, bridge anim.Bridge, opts ...anim.RunnerOption) (*Host, error) {
	frames := sprite.Frames()
	if err := sprite.Validate(frames); err != nil {
		return nil, fmt.Errorf("overlay frames: %w", err)
	}
	return &Host{app: app, bridge: bridge, frames: frames, opts: opts}, nil
}

// Show mounts the overlay. If it is already up the running animation is
// kept; a finished one is replaced by a fresh runner.
func (h *Host) Show() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.refs++
	if h.surf == nil {
		h.surf = newSurface(h.app)
	}
	if h.runner != nil {
		select {
		case <-h.runner.Done():
		default:
			return
		}
	}
	h.startRunner()
}

func (h *Host) startRunner() {
	if h.cancel != nil {
		h.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	surf := h.surf
	opts := append([]anim.RunnerOption{
		anim.WithBridge(h.bridge),
		anim.WithRenderer(func(frame int, visible bool) {
			img := h.frames[frame]
			do("overlay.render", func() { surf.Render(img, visible) })
		}),
	}, h.opts...)
	runner := anim.NewRunner(opts...)
	h.runner, h.cancel = runner, cancel

	guard.Go("overlay.runner", func() {
		if err := runner.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("Overlay animation stopped", "error", err)
		}
	})
	logger.Debug("Overlay shown")
}

// Hide releases one Show. The last release stops the runner, which drops its
// bridge subscription, and closes the window.
func (h *Host) Hide() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.refs == 0 {
		return
	}
	h.refs--
	if h.refs > 0 {
		return
	}

	if h.cancel != nil {
		h.cancel()
		select {
		case <-h.runner.Done():
		case <-time.After(stopWait):
			logger.Warn("Overlay animation did not stop in time")
		}
	}
	surf := h.surf
	do("overlay.close", surf.Close)
	h.surf, h.runner, h.cancel = nil, nil, nil
	logger.Debug("Overlay hidden")
}

// Shown reports whether a Show is outstanding.
func (h *Host) Shown() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.refs > 0
}

// FollowRemote shows the overlay when a hub peer sends start and releases
// it once the animation completes. Local emits are left to the fixer, which
// manages its own Show and Hide. The returned func stops following.
func (h *Host) FollowRemote(bus *events.Bus) func() {
	var (
		mu   sync.Mutex
		held bool
	)
	return bus.Tap(func(msg events.Message) {
		switch msg.Name {
		case anim.PhaseChannel:
			if msg.Origin == "" {
				return
			}
			if sig, ok := anim.ParseSignal(msg.Payload); !ok || sig != anim.SignalStart {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if held {
				return
			}
			held = true
			logger.Info("Overlay started by peer", "peer", msg.Origin)
			h.Show()
		case anim.CompleteChannel:
			mu.Lock()
			release := held
			held = false
			mu.Unlock()
			if release {
				// Completion is emitted from the runner goroutine, which Hide waits on.
				guard.Go("overlay.release", h.Hide)
			}
		}
	})
}

// windowSurface is a splash window holding one pixel-scaled image. The
// window is created on the first visible frame.
type windowSurface struct {
	app    fyne.App
	win    fyne.Window
	img    *canvas.Image
	closed bool
}

func (s *windowSurface) open() {
	if drv, ok := s.app.Driver().(desktop.Driver); ok {
		s.win = drv.CreateSplashWindow()
	} else {
		s.win = s.app.NewWindow(version.Name)
	}
	s.img = canvas.NewImageFromImage(nil)
	s.img.ScaleMode = canvas.ImageScalePixels
	s.img.FillMode = canvas.ImageFillContain
	s.win.SetContent(s.img)
	s.win.Resize(fyne.NewSize(Size, Size))
	s.win.SetFixedSize(true)
	s.win.CenterOnScreen()
}

func (s *windowSurface) Render(frame image.Image, visible bool) {
	if s.closed {
		return
	}
	if !visible {
		if s.win != nil {
			s.win.Hide()
		}
		return
	}
	if s.win == nil {
		s.open()
	}
	s.img.Image = frame
	s.img.Refresh()
	s.win.Show()
}

func (s *windowSurface) Close() {
	s.closed = true
	if s.win != nil {
		s.win.Close()
		s.win = nil
	}
}
