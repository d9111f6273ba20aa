package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/oukeidos/typoduck/internal/apperrors"
	"github.com/oukeidos/typoduck/internal/desktop"
	"github.com/oukeidos/typoduck/internal/fixer"
	"github.com/oukeidos/typoduck/internal/httpclient"
	"github.com/oukeidos/typoduck/internal/logger"
	"github.com/oukeidos/typoduck/internal/settings"
)

// systemClipboard is swapped in tests.
var systemClipboard = func() desktop.Clipboard { return desktop.SystemClipboard{} }

type fixOptions struct {
	model     string
	preprompt string
	clipboard bool
	stats     bool
	timeout   time.Duration
}

func newFixCmd(root *rootOptions) *cobra.Command {
	opts := fixOptions{}
	cmd := &cobra.Command{
		Use:   "fix [text...]",
		Short: "Fix typos in text from arguments, stdin or the clipboard",
		Long: `Fix typos in the given text and print the result.

Text is taken from the arguments, or from stdin when it is not a terminal.
With --clipboard the clipboard is read and the fixed text written back.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFix(cmd, args, root, &opts)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().StringVar(&opts.model, "model", "", "Gemini model (default: the saved setting)")
	cmd.Flags().StringVar(&opts.preprompt, "preprompt", "", "Instruction placed before the text (default: the saved setting)")
	cmd.Flags().BoolVar(&opts.clipboard, "clipboard", false, "Read from and write back to the system clipboard")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "Print token usage and estimated cost to stderr")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", httpclient.DefaultTimeout, "Give up after this long")
	return cmd
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if isTerminal(int(os.Stdin.Fd())) {
		_ = cmd.Usage()
		return "", apperrors.Input("No text given. Pass it as arguments, pipe it on stdin, or use --clipboard.")
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func runFix(cmd *cobra.Command, args []string, root *rootOptions, opts *fixOptions) error {
	var clip desktop.Clipboard
	if opts.clipboard {
		if len(args) > 0 {
			return fmt.Errorf("--clipboard cannot be combined with text arguments")
		}
		clip = systemClipboard()
	} else {
		text, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		mem := &desktop.MemoryClipboard{}
		_ = mem.WriteText(text)
		clip = mem
	}

	key, source, err := resolveAPIKey(root.allowEnv)
	if err != nil {
		return err
	}
	logger.Info("Using API Key", "source", source)

	ctx, stop := signalContext()
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	s := loadSettings(ctx)
	if opts.model != "" {
		s.Model = opts.model
	}
	if opts.preprompt != "" {
		s.Preprompt = opts.preprompt
	}
	// No overlay, key chords or notifications from a terminal.
	s.ShowDuck, s.TurboMode, s.ShowNotification = false, false, false

	f := fixer.New(fixer.Config{
		Settings:   func() settings.Settings { return s },
		APIKey:     func() (string, error) { return key, nil },
		NewBackend: newBackend,
		Clipboard:  clip,
	})

	start := time.Now()
	res, err := f.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("Fix canceled")
			return nil
		}
		return errors.New(apperrors.PublicMessage(err))
	}

	fmt.Fprintln(cmd.OutOrStdout(), res.Fixed)
	if opts.stats {
		printUsageStats(cmd.ErrOrStderr(), res, time.Since(start))
	}
	return nil
}
