// Package settings resolves the CLI's defaults from the environment and
// manages the key=value settings file they can be stored in.
package settings

import (
	"strconv"
	"strings"
	"time"

	"github.com/germanamz/aiwizard/pkg/providers/model"
)

// Environment variables read by FromEnv.
const (
	EnvModel        = "GROQ_MODEL"
	EnvTemperature  = "TEMPERATURE"
	EnvMaxTokens    = "MAX_TOKENS"
	EnvTimeoutMS    = "GROQ_TIMEOUT_MS"
	EnvBaseURL      = "GROQ_BASE_URL"
	EnvDebug        = "DEBUG_GROQ"
	EnvDebugVerbose = "DEBUG_GROQ_VERBOSE"
)

// DefaultTimeout applies when GROQ_TIMEOUT_MS is unset or invalid.
const DefaultTimeout = 30 * time.Second

// Settings are the process-wide defaults, read once at startup.
type Settings struct {
	Model        model.Config
	Timeout      time.Duration
	BaseURL      string // Empty selects the provider default.
	Debug        bool
	DebugVerbose bool
}

// FromEnv reads Settings through getenv. Unparseable numbers fall back to
// the defaults; temperature and max tokens are clamped here as well.
func FromEnv(getenv func(string) string) Settings {
	cfg := model.Default()

	if v := strings.TrimSpace(getenv(EnvModel)); v != "" {
		cfg.Name = v
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(getenv(EnvTemperature)), 64); err == nil {
		cfg.Temperature = model.ClampTemperature(v)
	}
	// Zero counts as unset; negative values clamp to the minimum.
	if v, err := strconv.Atoi(strings.TrimSpace(getenv(EnvMaxTokens))); err == nil && v != 0 {
		cfg.MaxTokens = model.ClampMaxTokens(v)
	}

	timeout := DefaultTimeout
	if v, err := strconv.Atoi(strings.TrimSpace(getenv(EnvTimeoutMS))); err == nil && v > 0 {
		timeout = time.Duration(v) * time.Millisecond
	}

	verbose := truthy(getenv(EnvDebugVerbose))

	return Settings{
		Model:        cfg,
		Timeout:      timeout,
		BaseURL:      strings.TrimSpace(getenv(EnvBaseURL)),
		Debug:        truthy(getenv(EnvDebug)) || verbose,
		DebugVerbose: verbose,
	}
}

// truthy treats any non-empty value other than 0/false/no/off as set.
func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "no", "off":
		return false
	default:
		return true
	}
}
