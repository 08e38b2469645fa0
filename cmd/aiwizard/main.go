// ai-wizard
//
// Generates content from a single prompt using Groq's chat completions API.
//
//	ai-wizard generate "Tell me a fun fact about space"
//	ai-wizard models
//	ai-wizard config --set TEMPERATURE=0.5
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/germanamz/aiwizard/pkg/settings"
	"github.com/spf13/cobra"
)

var version = "1.0.0"

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	envFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "ai-wizard",
		Short: "🧙 AI Content Wizard - Groq-Powered Content Generation",
		Long: `AI Content Wizard generates content from a prompt using Groq's API.

Defaults are read from the environment and from a key=value settings file
(.env in the working directory). Environment variables win over the file.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return settings.Load(opts.envFile)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWelcome(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env", settings.DefaultFile, "path to the settings file (ignored if missing)")

	cmd.AddCommand(newGenerateCmd(opts))
	cmd.AddCommand(newModelsCmd())
	cmd.AddCommand(newConfigCmd(opts))

	return cmd
}

func runWelcome(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	printBanner(out)
	_, _ = fmt.Fprintln(out, welcomeStyle.Render("Welcome to AI Content Wizard!"))
	_, _ = fmt.Fprintln(out)

	if err := cmd.Help(); err != nil {
		return err
	}

	_, _ = fmt.Fprint(out, `
Examples:
  $ ai-wizard generate "Tell me a fun fact about space"
  $ ai-wizard generate "Write a short story about a robot" --model llama3-70b-8192
  $ ai-wizard models
  $ ai-wizard config setup
`)

	return nil
}

func printBanner(w io.Writer) {
	_, _ = fmt.Fprintln(w, banner())
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), err)
		os.Exit(1)
	}
}
