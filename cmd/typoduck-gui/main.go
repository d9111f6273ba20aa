package main

import (
	"errors"
	"fmt"
	"os"

	"fyne.io/fyne/v2/app"
	"github.com/spf13/pflag"

	"github.com/oukeidos/typoduck/internal/cleanup"
	"github.com/oukeidos/typoduck/internal/events"
	"github.com/oukeidos/typoduck/internal/files"
	"github.com/oukeidos/typoduck/internal/logger"
	"github.com/oukeidos/typoduck/internal/settings"
	"github.com/oukeidos/typoduck/internal/version"
)

const appID = "com.oukeidos.typoduck"

func main() {
	opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger.Init(opts.logLevel, nil)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Unrecovered GUI panic", "scope", "main", "panic", fmt.Sprint(r))
			os.Exit(1)
		}
	}()

	if opts.configDir != "" {
		os.Setenv(settings.ConfigDirEnv, opts.configDir)
	}
	if opts.logFile != "" {
		openLogFile(opts)
	}
	logger.Info("Starting", "version", version.Short())

	path, err := settings.DefaultPath()
	if err != nil {
		logger.Fatal("Cannot locate settings", "error", err)
	}
	store := settings.Open(path)

	fyneApp := app.NewWithID(appID)
	fyneApp.SetIcon(appIcon())

	bus := events.NewBus()
	cleanup.Register("event bus", func() error {
		bus.Close()
		return nil
	})

	ta, err := newTypoduckApp(fyneApp, opts, store, bus)
	if err != nil {
		logger.Fatal("Cannot start", "error", err)
	}
	ta.buildSettingsWindow()
	ta.setupTray()
	if opts.bridgeAddr != "" {
		ta.serveBridge(opts.bridgeAddr)
	}
	if opts.showWindow || !ta.hasKey() {
		ta.showSettings()
	}

	// Save stays disabled and the shortcut unregistered until the document
	// has loaded, so an early save cannot overwrite it.
	ta.guard.Go("settings.load", func() {
		if err := store.Wait(ta.ctx); err != nil {
			logger.Error("Settings could not be loaded; using defaults", "path", path, "error", err)
		}
		ta.guard.Do("settings.ready", ta.settings.refresh)
		if err := ta.applyShortcut(store.Snapshot().Shortcut); err != nil {
			logger.Error("Saved shortcut is invalid; using the default", "error", err)
			_ = ta.applyShortcut(settings.DefaultShortcut)
		}
	})

	fyneApp.Lifecycle().SetOnStopped(ta.shutdown)
	fyneApp.Run()
}

// openLogFile adds a JSON log sink. An existing file is kept and a fresh
// name is picked next to it.
func openLogFile(opts guiOptions) {
	path, renamed, err := files.SafePath(opts.logFile)
	if err != nil {
		logger.Warn("Log file unavailable", "path", opts.logFile, "error", err)
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		logger.Warn("Log file unavailable", "path", path, "error", err)
		return
	}
	logger.Init(opts.logLevel, f)
	cleanup.Register("log file", f.Close)
	if renamed {
		logger.Info("Log file exists; writing to a new one", "requested", opts.logFile, "path", path)
	}
}
