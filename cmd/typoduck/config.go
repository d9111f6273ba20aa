package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oukeidos/typoduck/internal/settings"
	"github.com/oukeidos/typoduck/internal/shortcut"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change saved settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	}
	cmd.SetUsageTemplate(groupUsageTemplate)

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	}
	show.SetUsageTemplate(subcommandUsageTemplate)

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting (" + strings.Join(settings.KnownKeys(), ", ") + ")",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd, args[0], args[1])
		},
	}
	set.SetUsageTemplate(subcommandUsageTemplate)

	path := &cobra.Command{
		Use:   "path",
		Short: "Print where settings are stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := settings.DefaultPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	}
	path.SetUsageTemplate(subcommandUsageTemplate)

	cmd.AddCommand(show, set, path)
	return cmd
}

func runConfigShow(cmd *cobra.Command) error {
	s := loadSettings(cmd.Context())
	out, err := s.YAML()
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func runConfigSet(cmd *cobra.Command, key, raw string) error {
	value, err := settings.ParseValue(key, raw)
	if err != nil {
		return err
	}
	switch key {
	case settings.KeyShortcut:
		spec, err := shortcut.Parse(raw)
		if err != nil {
			return err
		}
		value = spec.String()
	case settings.KeyPreprompt:
		if strings.TrimSpace(raw) == "" {
			value = settings.DefaultPreprompt
		}
	}

	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	if err := store.Set(key, value); err != nil {
		return err
	}
	if err := store.Save(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, value)
	return nil
}
