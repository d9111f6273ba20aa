package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/oukeidos/typoduck/internal/licenses"
)

func newLicensesCmd() *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "licenses",
		Short: "List bundled third-party modules and their licenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if full {
				_, err := io.WriteString(out, licenses.NoticesText())
				return err
			}
			mods := licenses.Modules()
			if len(mods) == 0 {
				return fmt.Errorf("no third-party notices are embedded in this build")
			}
			for _, m := range mods {
				fmt.Fprintln(out, m)
			}
			fmt.Fprintf(out, "\n%d modules. Use --full for the notices text.\n", len(mods))
			return nil
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().BoolVar(&full, "full", false, "Print the complete THIRD_PARTY_NOTICES text")
	return cmd
}
