package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultFile is the settings file looked up in the working directory.
const DefaultFile = ".env"

// Key describes a settings file entry the CLI knows about.
type Key struct {
	Name   string
	Desc   string
	Secret bool
}

// KnownKeys lists the recognized entries in display order.
var KnownKeys = []Key{
	{"GROQ_API_KEY", "Groq API key", true},
	{EnvModel, "Default model", false},
	{EnvTemperature, "Default temperature (0.0 to 1.0)", false},
	{EnvMaxTokens, "Default maximum tokens (1 to 8192)", false},
	{EnvTimeoutMS, "Request timeout in milliseconds", false},
	{EnvBaseURL, "API base URL override", false},
	{EnvDebug, "Enable debug diagnostics", false},
	{EnvDebugVerbose, "Log full bodies and stack traces", false},
}

// IsSecret reports whether key holds a credential and should be masked.
func IsSecret(key string) bool {
	for _, k := range KnownKeys {
		if k.Name == key {
			return k.Secret
		}
	}
	return strings.HasSuffix(key, "_KEY") || strings.HasSuffix(key, "_TOKEN")
}

// Mask hides all but the first and last four characters of long secrets.
func Mask(s string) string {
	if len(s) <= 12 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-8) + s[len(s)-4:]
}

// Load exports the file's entries into the process environment without
// overriding variables that are already set. A missing file is not an error.
func Load(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Read returns the file's entries. A missing file yields an empty map.
func Read(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}
	return values, nil
}

// Write replaces the file with values. The file is only readable by its owner.
func Write(path string, values map[string]string) error {
	content, err := godotenv.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create settings directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(content+"\n"), 0o600); err != nil {
		return fmt.Errorf("write settings %s: %w", path, err)
	}

	return nil
}

// Set updates one entry, keeping the others.
func Set(path, key, value string) error {
	return Update(path, map[string]string{key: value})
}

// Update merges changes into the file. Empty values remove their key.
func Update(path string, changes map[string]string) error {
	values, err := Read(path)
	if err != nil {
		return err
	}

	for k, v := range changes {
		if v == "" {
			delete(values, k)
			continue
		}
		values[k] = v
	}

	return Write(path, values)
}

// ParseAssignment splits "KEY=VALUE". Both sides are trimmed and must be
// non-empty; the value may itself contain '='.
func ParseAssignment(s string) (string, string, error) {
	key, value, ok := strings.Cut(s, "=")
	key, value = strings.TrimSpace(key), strings.TrimSpace(value)

	if !ok || key == "" || value == "" {
		return "", "", fmt.Errorf("invalid format %q: use KEY=VALUE", s)
	}

	return key, value, nil
}
