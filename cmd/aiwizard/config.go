package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/germanamz/aiwizard/pkg/providers/groq"
	"github.com/germanamz/aiwizard/pkg/providers/model"
	"github.com/germanamz/aiwizard/pkg/settings"
	"github.com/spf13/cobra"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	var set string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or update configuration",
		Long: `View or update the settings file (default .env in the working directory).

  ai-wizard config                        Show current configuration
  ai-wizard config --set KEY=VALUE        Set a single value
  ai-wizard config setup                  Interactive setup
  ai-wizard config path                   Print the settings file path`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if set != "" {
				return runConfigSet(cmd.OutOrStdout(), root.envFile, set)
			}
			return runConfigShow(cmd.OutOrStdout(), root.envFile)
		},
	}

	cmd.Flags().StringVar(&set, "set", "", "set a configuration value (KEY=VALUE)")

	cmd.AddCommand(&cobra.Command{
		Use:   "setup",
		Short: "Interactive setup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigSetup(cmd.OutOrStdout(), root.envFile)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the settings file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := filepath.Abs(root.envFile)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	return cmd
}

func runConfigSet(out io.Writer, path, assignment string) error {
	key, value, err := settings.ParseAssignment(assignment)
	if err != nil {
		return err
	}

	if err := settings.Set(path, key, value); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Updated %s in config", key)))

	return nil
}

func runConfigShow(out io.Writer, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		_, _ = fmt.Fprintln(out, warnStyle.Render("No configuration file found. Run with --help to see available options."))
		return nil
	}

	values, err := settings.Read(path)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, boldStyle.Render("\nCurrent Configuration:"))
	_, _ = fmt.Fprintln(out)

	for _, key := range orderedKeys(values) {
		v := values[key]
		if settings.IsSecret(key) {
			v = settings.Mask(v)
		}
		_, _ = fmt.Fprintf(out, "%s=%s\n", key, v)
	}

	return nil
}

// orderedKeys lists known keys first, in display order, then the rest sorted.
func orderedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	known := make(map[string]bool, len(settings.KnownKeys))

	for _, k := range settings.KnownKeys {
		known[k.Name] = true
		if _, ok := values[k.Name]; ok {
			keys = append(keys, k.Name)
		}
	}

	var extras []string
	for k := range values {
		if !known[k] {
			extras = append(extras, k)
		}
	}
	slices.Sort(extras)

	return append(keys, extras...)
}

// setupAnswers holds the form values; numbers stay strings for huh inputs.
type setupAnswers struct {
	APIKey      string //nolint:gosec // user input written to the settings file
	Model       string
	Temperature string
	MaxTokens   string
}

func runConfigSetup(out io.Writer, path string) error {
	current, err := settings.Read(path)
	if err != nil {
		return err
	}

	answers := setupAnswers{
		Model:       valueOr(current[settings.EnvModel], model.DefaultName),
		Temperature: valueOr(current[settings.EnvTemperature], strconv.FormatFloat(model.DefaultTemperature, 'f', -1, 64)),
		MaxTokens:   valueOr(current[settings.EnvMaxTokens], strconv.Itoa(model.DefaultMaxTokens)),
	}

	keyTitle := "Groq API key"
	if current[groq.APIKeyEnv] != "" {
		keyTitle += " (leave empty to keep " + settings.Mask(current[groq.APIKeyEnv]) + ")"
	}

	catalog := groq.Models()
	opts := make([]huh.Option[string], len(catalog.Models))
	for i, m := range catalog.Models {
		opts[i] = huh.NewOption(m.Name+" - "+m.Description, m.Name)
	}

	err = huh.NewForm(huh.NewGroup(
		huh.NewInput().Title(keyTitle).EchoMode(huh.EchoModePassword).Value(&answers.APIKey),
		huh.NewSelect[string]().Title("Default model").Options(opts...).Value(&answers.Model),
		huh.NewInput().Title("Temperature (0.0 to 1.0)").Value(&answers.Temperature).Validate(validateTemperature),
		huh.NewInput().Title("Max tokens (1 to 8192)").Value(&answers.MaxTokens).Validate(validateMaxTokens),
	)).Run()
	if err != nil {
		return err
	}

	if err := settings.Update(path, answers.changes()); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, successStyle.Render("✅ Saved configuration to "+path))

	return nil
}

// changes maps the answers to settings entries. An empty API key keeps the
// stored one.
func (a setupAnswers) changes() map[string]string {
	c := map[string]string{
		settings.EnvModel:       a.Model,
		settings.EnvTemperature: strings.TrimSpace(a.Temperature),
		settings.EnvMaxTokens:   strings.TrimSpace(a.MaxTokens),
	}

	if key := strings.TrimSpace(a.APIKey); key != "" {
		c[groq.APIKeyEnv] = key
	}

	return c
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func validateTemperature(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return errors.New("must be a number")
	}
	if v < model.MinTemperature || v > model.MaxTemperature {
		return errors.New("must be between 0 and 1")
	}
	return nil
}

func validateMaxTokens(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errors.New("must be a whole number")
	}
	if v < model.MinMaxTokens || v > model.MaxMaxTokens {
		return fmt.Errorf("must be between %d and %d", model.MinMaxTokens, model.MaxMaxTokens)
	}
	return nil
}
