package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oukeidos/typoduck/internal/cleanup"
	"github.com/oukeidos/typoduck/internal/files"
	"github.com/oukeidos/typoduck/internal/logger"
	"github.com/oukeidos/typoduck/internal/settings"
	"github.com/oukeidos/typoduck/internal/version"
)

type rootOptions struct {
	logLevel  string
	logFile   string
	allowEnv  bool
	envFile   string
	configDir string
}

func execute() {
	cmd := newRootCmd()
	err := cmd.Execute()
	if cleanupErr := cleanup.RunAll(); cleanupErr != nil {
		fmt.Fprintln(os.Stderr, cleanupErr)
		if err == nil {
			err = cleanupErr
		}
	}
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "typoduck",
		Short: "Fix typos with Gemini from the command line",
		Example: `  typoduck fix "teh quick brwon fox"
  xclip -o | typoduck fix --stats
  typoduck config set shortcut ctrl+shift+k
  typoduck signal finish --wait`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupRoot(opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				_ = cmd.Usage()
				return fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath())
			}
			if hasAnyFlagSet(cmd) {
				_ = cmd.Usage()
				return fmt.Errorf("a command is required")
			}
			return cmd.Help()
		},
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
	}

	cmd.Version = version.Info()
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.SetUsageTemplate(rootUsageTemplate)

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	pf.StringVar(&opts.logFile, "log-file", "", "Append machine-readable JSONL logs to this file")
	pf.BoolVar(&opts.allowEnv, "allow-env", false, "Allow reading GEMINI_API_KEY from the environment (and a .env file)")
	pf.StringVar(&opts.envFile, "env-file", ".env", "File loaded into the environment when --allow-env is set")
	pf.StringVar(&opts.configDir, "config-dir", "", "Override the settings directory")

	cmd.AddCommand(
		newAboutCmd(),
		newFixCmd(opts),
		newModelsCmd(opts),
		newEnvCmd(opts),
		newConfigCmd(),
		newSignalCmd(),
		newLicensesCmd(),
	)

	cmd.InitDefaultCompletionCmd()
	for _, sub := range cmd.Commands() {
		if sub.Name() == "completion" {
			sub.Short = "Generate shell completion scripts"
			sub.SetUsageTemplate(subcommandUsageTemplate)
			break
		}
	}

	return cmd
}

func setupRoot(opts *rootOptions) error {
	level, err := logger.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}
	var logFile *os.File
	if opts.logFile != "" {
		if err := files.RejectSymlinkPath(opts.logFile); err != nil {
			return err
		}
		f, err := os.OpenFile(opts.logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		cleanup.Register("log file", f.Close)
		logFile = f
	}
	if logFile != nil {
		logger.Init(level, logFile)
	} else {
		logger.Init(level, nil)
	}

	if opts.configDir != "" {
		if err := os.Setenv(settings.ConfigDirEnv, opts.configDir); err != nil {
			return err
		}
	}

	if opts.allowEnv && opts.envFile != "" {
		if err := loadDotenv(opts.envFile); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load %s: %w", opts.envFile, err)
			}
			logger.Debug("No env file", "path", opts.envFile)
		}
	}
	return nil
}

func hasAnyFlagSet(cmd *cobra.Command) bool {
	changed := false
	cmd.Flags().Visit(func(_ *pflag.Flag) {
		changed = true
	})
	return changed
}
