package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oukeidos/typoduck/internal/version"
)

const projectURL = "https://github.com/oukeidos/typoduck"

func newAboutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "about",
		Short: "Show a short description and link",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: fix typos in the clipboard with Gemini\n", version.Short())
			fmt.Fprintln(out, projectURL)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}
