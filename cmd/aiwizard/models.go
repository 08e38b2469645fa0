package main

import (
	"fmt"

	"github.com/germanamz/aiwizard/pkg/providers/groq"
	"github.com/spf13/cobra"
)

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List available AI models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			printBanner(out)
			_, _ = fmt.Fprintln(out, "\nAvailable Models:")
			_, _ = fmt.Fprintln(out)

			for _, m := range groq.Models().Models {
				_, _ = fmt.Fprintf(out, "• %s\n", boldStyle.Render(m.Name))
				_, _ = fmt.Fprintf(out, "  %s\n\n", m.Description)
			}

			return nil
		},
	}
}
