// Package globalkey registers a parsed shortcut system-wide. On Linux the
// hotkey library needs an X11 display as soon as it is loaded, so only the
// GUI imports this package.
package globalkey

import (
	"context"
	"fmt"

	"golang.design/x/hotkey"

	"github.com/oukeidos/typoduck/internal/logger"
	"github.com/oukeidos/typoduck/internal/shortcut"
)

var letters = [26]hotkey.Key{
	hotkey.KeyA, hotkey.KeyB, hotkey.KeyC, hotkey.KeyD, hotkey.KeyE, hotkey.KeyF,
	hotkey.KeyG, hotkey.KeyH, hotkey.KeyI, hotkey.KeyJ, hotkey.KeyK, hotkey.KeyL,
	hotkey.KeyM, hotkey.KeyN, hotkey.KeyO, hotkey.KeyP, hotkey.KeyQ, hotkey.KeyR,
	hotkey.KeyS, hotkey.KeyT, hotkey.KeyU, hotkey.KeyV, hotkey.KeyW, hotkey.KeyX,
	hotkey.KeyY, hotkey.KeyZ,
}

// keyFor maps a spec to the library's modifier list and key.
func keyFor(spec shortcut.Spec) ([]hotkey.Modifier, hotkey.Key, error) {
	if spec.Key < 'a' || spec.Key > 'z' {
		return nil, 0, fmt.Errorf("shortcut %q has no key", spec.String())
	}
	var mods []hotkey.Modifier
	if spec.Ctrl {
		mods = append(mods, hotkey.ModCtrl)
	}
	if spec.Shift {
		mods = append(mods, hotkey.ModShift)
	}
	return mods, letters[spec.Key-'a'], nil
}

type binding interface {
	Register() error
	Unregister() error
	Keydown() <-chan hotkey.Event
}

var newBinding = func(mods []hotkey.Modifier, key hotkey.Key) binding {
	return hotkey.New(mods, key)
}

// Listen registers spec and calls fn on every key-down until ctx ends. fn
// runs on the listener goroutine; callers hand off long work themselves.
func Listen(ctx context.Context, spec shortcut.Spec, fn func()) error {
	mods, key, err := keyFor(spec)
	if err != nil {
		return err
	}
	hk := newBinding(mods, key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("register shortcut %s: %w", spec, err)
	}
	logger.Info("Global shortcut registered", "shortcut", spec.String())
	defer func() {
		if err := hk.Unregister(); err != nil {
			logger.Warn("Failed to unregister shortcut", "shortcut", spec.String(), "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-hk.Keydown():
			if !ok {
				return nil
			}
			logger.Debug("Shortcut pressed", "shortcut", spec.String())
			fn()
		}
	}
}
