package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"github.com/oukeidos/typoduck/internal/auth"
	"github.com/oukeidos/typoduck/internal/cleanup"
	localdesktop "github.com/oukeidos/typoduck/internal/desktop"
	"github.com/oukeidos/typoduck/internal/events"
	"github.com/oukeidos/typoduck/internal/files"
	"github.com/oukeidos/typoduck/internal/fixer"
	"github.com/oukeidos/typoduck/internal/globalkey"
	"github.com/oukeidos/typoduck/internal/guard"
	"github.com/oukeidos/typoduck/internal/httpclient"
	"github.com/oukeidos/typoduck/internal/logger"
	"github.com/oukeidos/typoduck/internal/overlay"
	"github.com/oukeidos/typoduck/internal/settings"
	"github.com/oukeidos/typoduck/internal/shortcut"
	"github.com/oukeidos/typoduck/internal/version"
)

// fixTimeout bounds one hotkey press, model call included.
const fixTimeout = httpclient.DefaultTimeout

type typoduckApp struct {
	fyneApp fyne.App
	opts    guiOptions
	store   *settings.Store
	bus     *events.Bus
	overlay *overlay.Host
	fixer   *fixer.Fixer
	guard   *guard.Guard

	notifier localdesktop.Notifier

	ctx  context.Context
	stop context.CancelFunc

	keyMu      sync.Mutex
	sessionKey string

	hotkeyMu     sync.Mutex
	hotkeyCancel context.CancelFunc
	hotkeySpec   string

	running atomic.Int32

	settings        *settingsView
	panicNoticeOnce sync.Once
}

func newTypoduckApp(fa fyne.App, opts guiOptions, store *settings.Store, bus *events.Bus) (*typoduckApp, error) {
	ctx, stop := context.WithCancel(context.Background())
	a := &typoduckApp{
		fyneApp: fa,
		opts:    opts,
		store:   store,
		bus:     bus,
		ctx:     ctx,
		stop:    stop,
	}
	a.guard = &guard.Guard{OnPanic: a.handleRecoveredPanic}

	host, err := overlay.NewHost(fa, bus)
	if err != nil {
		stop()
		return nil, err
	}
	a.overlay = host
	a.notifier = localdesktop.BeeepNotifier{Icon: writeNotificationIcon()}

	a.fixer = fixer.New(fixer.Config{
		Settings:  store.Snapshot,
		APIKey:    a.apiKey,
		Clipboard: localdesktop.SystemClipboard{},
		Keyboard:  &localdesktop.SystemKeyboard{},
		Notifier:  a.notifier,
		Overlay:   host,
		Bridge:    bus,
	})
	return a, nil
}

// writeNotificationIcon puts the duck next to the settings so notifications
// can reference it by path. Failure only costs the icon.
func writeNotificationIcon() string {
	dir, err := settings.Dir()
	if err != nil {
		return ""
	}
	path := filepath.Join(dir, "icon.png")
	if err := files.AtomicWrite(path, iconPNG(), 0644); err != nil {
		logger.Debug("Notification icon not written", "path", path, "error", err)
		return ""
	}
	return path
}

// apiKey prefers a key entered this session over the keychain. The
// environment is never consulted by the GUI.
func (a *typoduckApp) apiKey() (string, error) {
	a.keyMu.Lock()
	session := a.sessionKey
	a.keyMu.Unlock()
	if session != "" {
		return session, nil
	}
	key, _ := auth.GetKey(false)
	return key, nil
}

func (a *typoduckApp) setSessionKey(key string) {
	a.keyMu.Lock()
	a.sessionKey = strings.TrimSpace(key)
	a.keyMu.Unlock()
}

func (a *typoduckApp) hasKey() bool {
	key, _ := a.apiKey()
	return key != ""
}

func (a *typoduckApp) onShortcut() {
	a.guard.Go("fix", a.runFix)
}

func (a *typoduckApp) runFix() {
	if n := a.running.Add(1); n > 1 {
		logger.Info("Fix already in progress; starting another", "running", n)
	}
	defer a.running.Add(-1)

	ctx, cancel := context.WithTimeout(a.ctx, fixTimeout)
	defer cancel()
	// The fixer logs and notifies on failure itself.
	_, _ = a.fixer.Run(ctx)
}

// applyShortcut (re)registers the global shortcut. Re-applying the active
// spec is a no-op.
func (a *typoduckApp) applyShortcut(raw string) error {
	spec, err := shortcut.Parse(raw)
	if err != nil {
		return err
	}

	a.hotkeyMu.Lock()
	defer a.hotkeyMu.Unlock()
	if a.hotkeyCancel != nil && a.hotkeySpec == spec.String() {
		return nil
	}
	if a.hotkeyCancel != nil {
		a.hotkeyCancel()
	}
	ctx, cancel := context.WithCancel(a.ctx)
	a.hotkeyCancel, a.hotkeySpec = cancel, spec.String()

	a.guard.Go("shortcut", func() {
		if err := globalkey.Listen(ctx, spec, a.onShortcut); err != nil {
			logger.Error("Global shortcut unavailable", "shortcut", spec.String(), "error", err)
			_ = a.notifier.Notify(version.Name, fmt.Sprintf("Could not register %s. Pick another shortcut in Settings.", spec))
			a.hotkeyMu.Lock()
			if a.hotkeySpec == spec.String() {
				a.hotkeyCancel, a.hotkeySpec = nil, ""
			}
			a.hotkeyMu.Unlock()
		}
	})
	return nil
}

// serveBridge exposes the event bus to other processes. A peer's start
// signal brings up the duck even when no fix is running.
func (a *typoduckApp) serveBridge(addr string) {
	hub := events.NewHub(a.bus)
	unfollow := a.overlay.FollowRemote(a.bus)
	cleanup.Register("event hub", func() error {
		unfollow()
		hub.Close()
		return nil
	})
	a.guard.Go("bridge", func() {
		if err := hub.Serve(a.ctx, addr, nil); err != nil {
			logger.Error("Event hub stopped", "addr", addr, "error", err)
		}
	})
}

func (a *typoduckApp) setupTray() {
	drv, ok := a.fyneApp.(desktop.App)
	if !ok {
		logger.Warn("System tray not supported; opening settings instead")
		a.showSettings()
		return
	}
	open := fyne.NewMenuItem("Open", a.showSettings)
	quit := fyne.NewMenuItem("Quit", a.quit)
	quit.IsQuit = true
	drv.SetSystemTrayMenu(fyne.NewMenu(version.Name, open, fyne.NewMenuItemSeparator(), quit))
	drv.SetSystemTrayIcon(appIcon())
}

func (a *typoduckApp) showSettings() {
	if a.settings == nil {
		return
	}
	a.settings.refresh()
	a.settings.win.Show()
	a.settings.win.RequestFocus()
}

func (a *typoduckApp) quit() {
	logger.Info("Quit requested")
	a.fyneApp.Quit()
}

// shutdown runs once the fyne loop has stopped.
func (a *typoduckApp) shutdown() {
	a.stop()
	if err := cleanup.RunAll(); err != nil {
		logger.Warn("Cleanup finished with errors", "error", err)
	}
}

func (a *typoduckApp) handleRecoveredPanic(scope string, _ any) {
	if a == nil {
		return
	}
	a.panicNoticeOnce.Do(func() {
		_ = a.notifier.Notify("Unexpected Error",
			"An internal error occurred and the current fix was stopped. Please retry. If this repeats, restart the app.")
	})
	logger.Warn("Recovered from panic", "scope", scope)
}
