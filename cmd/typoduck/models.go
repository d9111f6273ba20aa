package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/oukeidos/typoduck/internal/apperrors"
	"github.com/oukeidos/typoduck/internal/metadata"
)

const listModelsTimeout = 30 * time.Second

func newModelsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the Gemini models your key can use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModels(cmd, root)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func runModels(cmd *cobra.Command, root *rootOptions) error {
	key, _, err := resolveAPIKey(root.allowEnv)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, listModelsTimeout)
	defer cancel()

	backend, err := newBackend(ctx, key, metadata.DefaultModel)
	if err != nil {
		return errors.New(apperrors.PublicMessage(err))
	}
	defer backend.Close()

	ids, err := backend.ListModels(ctx)
	if err != nil {
		return errors.New(apperrors.PublicMessage(err))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Available Models:")
	for _, id := range ids {
		if m, ok := metadata.GeminiPricing(id); ok {
			fmt.Fprintf(out, "  %-35s $%.2f / $%.2f per 1M tokens\n", id, m.InputPerMillion, m.OutputPerMillion)
			continue
		}
		fmt.Fprintf(out, "  %s\n", id)
	}
	return nil
}
