package main

import (
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/oukeidos/typoduck/internal/logger"
)

type guiOptions struct {
	logLevel   slog.Level
	logFile    string
	bridgeAddr string
	configDir  string
	showWindow bool
}

func parseFlags(args []string) (guiOptions, error) {
	var opts guiOptions
	var level string

	fs := pflag.NewFlagSet("typoduck-gui", pflag.ContinueOnError)
	fs.StringVar(&level, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.logFile, "log-file", "", "Also write JSON logs to this file (an existing file is never overwritten)")
	fs.StringVar(&opts.bridgeAddr, "bridge-addr", "", "Serve animation events for other processes on this address, e.g. 127.0.0.1:7777")
	fs.StringVar(&opts.configDir, "config-dir", "", "Override the settings directory")
	fs.BoolVar(&opts.showWindow, "show-settings", false, "Open the settings window at startup")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	lvl, err := logger.ParseLevel(level)
	if err != nil {
		return opts, err
	}
	opts.logLevel = lvl
	return opts, nil
}
