package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/germanamz/aiwizard/pkg/providers/groq"
	"github.com/germanamz/aiwizard/pkg/providers/model"
	"github.com/germanamz/aiwizard/pkg/settings"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type generateOptions struct {
	model     string
	temp      float64
	maxTokens int
	timeoutMS int
	debug     bool
	raw       bool
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Generate content using AI",
		Long: `Send a prompt to the model and print the reply.

Flags override the defaults from the environment and the settings file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, root, opts, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.model, "model", "m", model.DefaultName, "AI model to use")
	f.Float64VarP(&opts.temp, "temp", "t", model.DefaultTemperature, "temperature (0.0 to 1.0)")
	f.IntVar(&opts.maxTokens, "max-tokens", model.DefaultMaxTokens, "maximum tokens to generate")
	f.IntVar(&opts.timeoutMS, "timeout", 0, "request timeout in milliseconds (default from "+settings.EnvTimeoutMS+" or 30000)")
	f.BoolVar(&opts.debug, "debug", false, "enable debug diagnostics on stderr")
	f.BoolVar(&opts.raw, "raw", false, "print the reply without markdown rendering")

	return cmd
}

// overrides returns only the settings the user set explicitly, so defaults
// from the environment and the settings file still apply.
func (o *generateOptions) overrides(cmd *cobra.Command) model.Overrides {
	var ov model.Overrides

	f := cmd.Flags()
	if f.Changed("model") {
		ov.Name = &o.model
	}
	if f.Changed("temp") {
		ov.Temperature = &o.temp
	}
	if f.Changed("max-tokens") {
		ov.MaxTokens = &o.maxTokens
	}

	return ov
}

func runGenerate(cmd *cobra.Command, root *rootOptions, opts *generateOptions, prompt string) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	printBanner(out)

	if strings.TrimSpace(prompt) == "" {
		return errors.New("please provide a prompt for content generation")
	}

	s := settings.FromEnv(os.Getenv)
	debug := opts.debug || s.Debug

	logger := newLogger(debug, s.DebugVerbose, errOut)
	defer func() { _ = logger.Sync() }()

	key, err := groq.APIKeyFromEnv(os.Getenv)
	if err != nil {
		return err
	}

	timeout := s.Timeout
	if opts.timeoutMS > 0 {
		timeout = time.Duration(opts.timeoutMS) * time.Millisecond
	}

	effective := s.Model.Merge(opts.overrides(cmd))
	logger.Debug("starting generation",
		zap.String("settings_file", root.envFile),
		zap.String("model", effective.Name),
		zap.Float64("temperature", effective.Temperature),
		zap.Int("max_tokens", effective.MaxTokens),
		zap.Duration("timeout", timeout),
		zap.Bool("api_key_set", true),
	)

	adapter, err := groq.New(groq.Options{
		APIKey:        key,
		BaseURL:       s.BaseURL,
		Defaults:      s.Model,
		Timeout:       timeout,
		Logger:        logger,
		VerboseBodies: s.DebugVerbose,
	})
	if err != nil {
		return err
	}

	reply, err := withSpinner(cmd.Context(), out, "Generating content...", func(ctx context.Context) (string, error) {
		return adapter.Generate(ctx, prompt, opts.overrides(cmd))
	})
	if err != nil {
		_, _ = fmt.Fprintln(out, errorStyle.Render("✖ Generation failed"))
		logger.Debug("generation failed", zap.Error(err))
		return err
	}

	_, _ = fmt.Fprintln(out, successStyle.Render("✔ Generation complete!"))

	width := terminalWidth(out)
	if !opts.raw && terminalFile(out) != nil {
		reply = renderMarkdown(reply, width)
	}

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, resultBlock(prompt, reply, width))

	if tc, ok := adapter.UsageTracker().Last(); ok {
		_, _ = fmt.Fprintln(out, dimStyle.Render("tokens: "+tc.String()))
	}

	if info := adapter.LastRateLimitInfo(); info != nil {
		logger.Debug("rate limits",
			zap.Int("remaining_requests", info.RemainingRequests),
			zap.Int("remaining_tokens", info.RemainingTokens),
			zap.Time("requests_reset", info.RequestsReset),
			zap.Time("tokens_reset", info.TokensReset),
		)
	}

	return nil
}
