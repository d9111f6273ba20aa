// Package fixer runs one hotkey press end to end: copy the selection, ask the
// model for a corrected version, put it back and drive the duck overlay
// around the request.
package fixer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rivo/uniseg"

	"github.com/oukeidos/typoduck/internal/anim"
	"github.com/oukeidos/typoduck/internal/apperrors"
	"github.com/oukeidos/typoduck/internal/desktop"
	"github.com/oukeidos/typoduck/internal/events"
	"github.com/oukeidos/typoduck/internal/gemini"
	"github.com/oukeidos/typoduck/internal/logger"
	"github.com/oukeidos/typoduck/internal/settings"
)

const (
	// modifierSettle lets the OS register the released shortcut keys.
	modifierSettle = 50 * time.Millisecond
	// copySettle is how long the clipboard gets to receive the selection.
	copySettle = 200 * time.Millisecond
	// signalTimeout bounds a single start/finish emit.
	signalTimeout = 2 * time.Second
)

// Notification text.
const (
	NotifyTitle      = "Typo Fixed"
	NotifyBody       = "Text corrected and copied to clipboard."
	NotifyErrorTitle = "Typo fix failed"
)

// Overlay is the window that plays the animation.
type Overlay interface {
	Show()
	Hide()
}

// BackendFactory opens an AI client for one request.
type BackendFactory func(ctx context.Context, apiKey, model string) (gemini.Backend, error)

// NewGeminiBackend is the production BackendFactory.
func NewGeminiBackend(ctx context.Context, apiKey, model string) (gemini.Backend, error) {
	return gemini.NewClient(ctx, apiKey, model)
}

// Config wires a Fixer to its collaborators. Keyboard, Notifier, Overlay and
// Bridge may be nil; the matching steps are then skipped.
type Config struct {
	Settings   func() settings.Settings
	APIKey     func() (string, error)
	NewBackend BackendFactory

	Clipboard desktop.Clipboard
	Keyboard  desktop.Keyboard
	Notifier  desktop.Notifier

	Overlay Overlay
	Bridge  anim.Bridge
}

// Result describes a completed fix.
type Result struct {
	Original string
	Fixed    string
	Model    string
	Usage    gemini.UsageMetadata
}

// Fixer runs the pipeline. Concurrent calls to Run are allowed; each one
// re-sends start and the overlay restarts its intro.
type Fixer struct {
	cfg Config
}

var (
	sleep = func(ctx context.Context, d time.Duration) error {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	now = time.Now
)

// New returns a Fixer. Settings and NewBackend default to the stock
// settings and the Gemini client.
func New(cfg Config) *Fixer {
	if cfg.Settings == nil {
		cfg.Settings = settings.Defaults
	}
	if cfg.NewBackend == nil {
		cfg.NewBackend = NewGeminiBackend
	}
	return &Fixer{cfg: cfg}
}

// Run performs one fix. When the duck is enabled the overlay is shown for at
// least anim.MinDisplay and always hidden before Run returns.
func (f *Fixer) Run(ctx context.Context) (*Result, error) {
	s := f.cfg.Settings()
	showDuck := s.ShowDuck && f.cfg.Overlay != nil

	var started time.Time
	if showDuck {
		f.cfg.Overlay.Show()
		f.signal(ctx, "start")
		started = now()
	}

	res, err := f.fix(ctx, s)

	if showDuck {
		f.finish(ctx, started)
	}

	if err != nil {
		logger.Error("Typo fix failed", "model", s.Model, "error", err)
		if s.ShowNotification && f.cfg.Notifier != nil {
			_ = f.cfg.Notifier.Notify(NotifyErrorTitle, apperrors.PublicMessage(err))
		}
		return nil, err
	}
	return res, nil
}

func (f *Fixer) fix(ctx context.Context, s settings.Settings) (*Result, error) {
	if f.cfg.Clipboard == nil {
		return nil, errors.New("fixer: no clipboard configured")
	}

	apiKey := ""
	if f.cfg.APIKey != nil {
		key, err := f.cfg.APIKey()
		if err != nil {
			return nil, apperrors.Config("Could not read the Gemini API key.", err)
		}
		apiKey = key
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, apperrors.Config("No Gemini API key configured. Open Settings to add one.", nil)
	}

	if s.TurboMode && f.cfg.Keyboard != nil {
		if err := f.copySelection(ctx); err != nil {
			return nil, err
		}
	}

	original, err := f.cfg.Clipboard.ReadText()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(original) == "" {
		return nil, apperrors.Input("Nothing to fix: the clipboard is empty.")
	}
	logger.Info("Fixing selection", "model", s.Model, "chars", uniseg.GraphemeClusterCount(original), "turbo", s.TurboMode)

	backend, err := f.cfg.NewBackend(ctx, apiKey, s.Model)
	if err != nil {
		return nil, err
	}
	defer backend.Close()

	out, err := backend.FixText(ctx, BuildPrompt(s.Preprompt, original))
	if err != nil {
		return nil, err
	}
	fixed := Normalize(out.Text)
	if !out.Structured {
		logger.Warn("Model ignored the response schema; using raw text", "model", s.Model)
	}

	if err := f.cfg.Clipboard.WriteText(fixed); err != nil {
		return nil, err
	}

	if s.TurboMode && f.cfg.Keyboard != nil {
		if err := f.cfg.Keyboard.Paste(); err != nil {
			return nil, fmt.Errorf("paste fixed text: %w", err)
		}
	}

	// After the paste so the notification does not take focus first.
	if s.ShowNotification && f.cfg.Notifier != nil {
		if err := f.cfg.Notifier.Notify(NotifyTitle, NotifyBody); err != nil {
			logger.Warn("Notification not shown", "error", err)
		}
	}

	model := out.Model
	if model == "" {
		model = s.Model
	}
	logger.Info("Typo fix complete", "model", model, "chars", uniseg.GraphemeClusterCount(fixed),
		"usage_in", out.Usage.PromptTokenCount, "usage_out", out.Usage.CandidatesTokenCount)
	return &Result{Original: original, Fixed: fixed, Model: model, Usage: out.Usage}, nil
}

func (f *Fixer) copySelection(ctx context.Context) error {
	if err := f.cfg.Keyboard.ReleaseModifiers(); err != nil {
		return fmt.Errorf("release modifiers: %w", err)
	}
	if err := sleep(ctx, modifierSettle); err != nil {
		return err
	}
	if err := f.cfg.Keyboard.Copy(); err != nil {
		return fmt.Errorf("copy selection: %w", err)
	}
	return sleep(ctx, copySettle)
}

// finish keeps the overlay up for the minimum display time, then asks it to
// play the outro and hides it once the outro has completed or timed out.
func (f *Fixer) finish(ctx context.Context, started time.Time) {
	defer f.cfg.Overlay.Hide()

	// The wait is not cut short by ctx: the overlay must still wind down
	// after a cancelled request.
	bg := context.WithoutCancel(ctx)
	if rest := anim.MinDisplay() - now().Sub(started); rest > 0 {
		_ = sleep(bg, rest)
	}

	if f.cfg.Bridge == nil {
		return
	}
	w, err := events.Expect(bg, f.cfg.Bridge, anim.CompleteChannel)
	if err != nil {
		logger.Warn("Could not watch for animation completion", "error", err)
		f.signal(bg, "finish")
		return
	}
	defer w.Release()

	f.signal(bg, "finish")

	wctx, cancel := context.WithTimeout(bg, anim.OutroBudget())
	defer cancel()
	if _, err := w.Wait(wctx); err != nil {
		logger.Debug("Outro did not report completion in time", "budget", anim.OutroBudget())
	}
}

func (f *Fixer) signal(ctx context.Context, payload string) {
	if f.cfg.Bridge == nil {
		return
	}
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), signalTimeout)
	defer cancel()
	if err := f.cfg.Bridge.Emit(sctx, anim.PhaseChannel, payload); err != nil {
		logger.Warn("Animation signal not delivered", "signal", payload, "error", err)
	}
}

// BuildPrompt wraps the user's text with the fixing instructions.
func BuildPrompt(preprompt, text string) string {
	var b strings.Builder
	b.WriteString(preprompt)
	b.WriteString(" \n\n INSTRUCTIONS:\n")
	b.WriteString("1. Fix typos and grammar.\n")
	b.WriteString("2. STRICTLY PRESERVE all original newlines, paragraph breaks, and indentation.\n")
	b.WriteString("3. Do NOT merge lines.\n\n")
	b.WriteString("INPUT TEXT:\n```\n")
	b.WriteString(text)
	b.WriteString("\n```")
	return b.String()
}

// Normalize undoes the escaping some models leave in the JSON field:
// literal \n becomes a newline and literal \r is dropped.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, `\n`, "\n")
	return strings.ReplaceAll(text, `\r`, "")
}
