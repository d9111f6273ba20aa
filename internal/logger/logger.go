// Package logger is the process-wide slog setup shared by both binaries: a
// compact console format on stderr, an optional JSONL file, and redaction of
// keys and user text on every record.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var (
	current    *slog.Logger
	isTerminal = term.IsTerminal
)

func init() {
	Init(LevelInfo, nil)
}

// ParseLevel maps a --log-level value to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", name)
	}
}

// Init replaces the global logger. With a file, every record is also written
// there as JSON and the console drops colour so both stay grep-friendly.
func Init(level slog.Level, file io.Writer) {
	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: RedactAttr}
	color := file == nil && isTerminal(int(os.Stderr.Fd()))

	var h slog.Handler = NewConsoleHandler(os.Stderr, opts, color)
	if file != nil {
		h = fanout{h, slog.NewJSONHandler(file, opts)}
	}
	current = slog.New(h)
	slog.SetDefault(current)
}

func Debug(msg string, args ...any) { current.Debug(msg, args...) }
func Info(msg string, args ...any)  { current.Info(msg, args...) }
func Warn(msg string, args ...any)  { current.Warn(msg, args...) }
func Error(msg string, args ...any) { current.Error(msg, args...) }

// Fatal logs at error level and exits 1. Deferred calls do not run.
func Fatal(msg string, args ...any) {
	current.Error(msg, args...)
	os.Exit(1)
}
