package groq

import (
	"fmt"
	"strings"
)

// Credential settings.
const (
	APIKeyEnv         = "GROQ_API_KEY"
	PlaceholderAPIKey = "your_groq_api_key_here" //nolint:gosec // template value, not a secret
)

// CredentialMissingError is returned at startup when no usable API key is set.
type CredentialMissingError struct {
	Env         string
	Placeholder bool // The variable holds the template placeholder.
}

func (e *CredentialMissingError) Error() string {
	return fmt.Sprintf("%s is not properly configured in .env file", e.Env)
}

// APIKeyFromEnv reads the API key through getenv. Empty values and the
// placeholder from the sample settings file are rejected.
func APIKeyFromEnv(getenv func(string) string) (string, error) {
	return checkAPIKey(getenv(APIKeyEnv))
}

func checkAPIKey(key string) (string, error) {
	key = strings.TrimSpace(key)

	switch key {
	case "":
		return "", &CredentialMissingError{Env: APIKeyEnv}
	case PlaceholderAPIKey:
		return "", &CredentialMissingError{Env: APIKeyEnv, Placeholder: true}
	}

	return key, nil
}
