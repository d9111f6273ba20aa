package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rivo/uniseg"
	"golang.org/x/term"

	"github.com/oukeidos/typoduck/internal/auth"
	"github.com/oukeidos/typoduck/internal/fixer"
	"github.com/oukeidos/typoduck/internal/logger"
	"github.com/oukeidos/typoduck/internal/metadata"
	"github.com/oukeidos/typoduck/internal/settings"
)

var (
	isTerminal   = term.IsTerminal
	getKey       = auth.GetKey
	getEnvKey    = auth.GetEnvKey
	getStatus    = auth.GetStatus
	saveKey      = auth.SaveKey
	deleteKey    = auth.DeleteKey
	promptForKey = auth.PromptForAPIKey
	newBackend   = fixer.NewGeminiBackend
	loadDotenv   = func(path string) error { return godotenv.Load(path) }
)

const sourcePrompt = "Terminal Prompt"

// resolveAPIKey finds the Gemini key: keychain first, then the environment
// when allowed, then an interactive prompt.
func resolveAPIKey(allowEnv bool) (string, string, error) {
	if key, _ := getKey(false); key != "" {
		return key, auth.SourceKeychain, nil
	}

	if allowEnv {
		if key, ok := getEnvKey(); ok {
			return key, auth.SourceEnv, nil
		}
	}

	if isTerminal(int(os.Stdin.Fd())) {
		key, err := promptForKey("Gemini API Key (press Enter to skip): ")
		if err != nil {
			return "", "", fmt.Errorf("error reading API key: %w", err)
		}
		if strings.TrimSpace(key) != "" {
			return strings.TrimSpace(key), sourcePrompt, nil
		}
	}

	if !isTerminal(int(os.Stdin.Fd())) {
		return "", "", fmt.Errorf("no API key available (non-interactive shell); run `typoduck env setup` or use --allow-env")
	}
	if allowEnv {
		return "", "", fmt.Errorf("API key is required; not found in keychain or environment")
	}
	return "", "", fmt.Errorf("API key is required; not found in keychain (environment disabled by default; use --allow-env)")
}

// loadSettings reads the saved settings, falling back to defaults when the
// document cannot be read.
func loadSettings(ctx context.Context) settings.Settings {
	path, err := settings.DefaultPath()
	if err != nil {
		logger.Warn("Settings unavailable; using defaults", "error", err)
		return settings.Defaults()
	}
	store, err := settings.Load(ctx, path)
	if err != nil {
		logger.Warn("Settings unavailable; using defaults", "path", path, "error", err)
		return settings.Defaults()
	}
	return store.Snapshot()
}

func openStore(ctx context.Context) (*settings.Store, error) {
	path, err := settings.DefaultPath()
	if err != nil {
		return nil, err
	}
	return settings.Load(ctx, path)
}

func printUsageStats(w io.Writer, res *fixer.Result, duration time.Duration) {
	fmt.Fprintln(w, "\n--- Execution Stats ---")
	fmt.Fprintf(w, "Time: %s\n", duration.Round(time.Millisecond))
	fmt.Fprintf(w, "Model: %s\n", res.Model)
	fmt.Fprintf(w, "Characters: In=%d, Out=%d\n",
		uniseg.GraphemeClusterCount(res.Original), uniseg.GraphemeClusterCount(res.Fixed))
	usage := res.Usage
	if usage.TotalTokenCount > 0 {
		fmt.Fprintf(w, "Tokens: In=%d, Out=%d, Total=%d\n",
			usage.PromptTokenCount, usage.CandidatesTokenCount, usage.TotalTokenCount)
		// Reasoning tokens are billed as output.
		reasoning := usage.TotalTokenCount - (usage.PromptTokenCount + usage.CandidatesTokenCount)
		if reasoning < 0 {
			reasoning = 0
		}
		cost := metadata.EstimateCost(res.Model, usage.PromptTokenCount, usage.CandidatesTokenCount+reasoning)
		fmt.Fprintf(w, "Estimated Cost: $%.5f (Reasoning Tokens: %d)\n", cost, reasoning)
	}
}

func signalContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("Cancellation requested")
			cancel()
		case <-ctx.Done():
		}
	}()
	stop := func() {
		signal.Stop(sigCh)
		cancel()
	}
	return ctx, stop
}
