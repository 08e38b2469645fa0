// Package groq sends single-prompt chat completions to Groq's
// OpenAI-compatible API.
package groq

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/germanamz/aiwizard/pkg/modeladapter"
	"github.com/germanamz/aiwizard/pkg/providers/model"
	"go.uber.org/zap"
)

// DefaultBaseURL is the base URL for the Groq API.
const DefaultBaseURL = "https://api.groq.com"

//go:embed models.yaml
var catalogYAML []byte

var catalog = sync.OnceValue(func() model.Catalog {
	c, err := model.ParseCatalog(catalogYAML)
	if err != nil {
		panic(fmt.Sprintf("groq: embedded models.yaml: %v", err))
	}
	return c
})

// Models returns the models Groq requests may name.
func Models() model.Catalog { return catalog() }

// EmptyPromptError is returned when the prompt is blank after trimming.
type EmptyPromptError struct{}

func (*EmptyPromptError) Error() string {
	return "please provide a prompt for content generation"
}

// Options configures New. Zero values select the defaults.
type Options struct {
	APIKey        string
	BaseURL       string        // Defaults to DefaultBaseURL.
	Defaults      model.Config  // Defaults to model.Default().
	Timeout       time.Duration // Defaults to modeladapter.DefaultTimeout.
	Client        *http.Client
	Logger        *zap.Logger
	VerboseBodies bool
}

// Adapter builds and sends completion requests. It holds no per-call state,
// so one Adapter may serve concurrent Generate calls.
type Adapter struct {
	modeladapter.ModelAdapter
	Defaults model.Config
	Catalog  model.Catalog
}

// New creates an Adapter. It fails with *CredentialMissingError when the key
// is empty or still the placeholder.
func New(opts Options) (*Adapter, error) {
	key, err := checkAPIKey(opts.APIKey)
	if err != nil {
		return nil, err
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	defaults := opts.Defaults
	if defaults == (model.Config{}) {
		defaults = model.Default()
	}

	a := &Adapter{
		ModelAdapter: modeladapter.New(baseURL, modeladapter.Auth{Key: key}, opts.Client),
		Defaults:     defaults,
		Catalog:      Models(),
	}
	a.Path = modeladapter.DefaultPath
	a.Timeout = opts.Timeout
	a.Logger = opts.Logger
	a.VerboseBodies = opts.VerboseBodies
	a.HeaderParser = modeladapter.ParseOpenAIRateLimitHeaders

	if opts.Logger != nil {
		opts.Logger.Debug("groq adapter initialized",
			zap.String("model", defaults.Name),
			zap.Float64("temperature", defaults.Temperature),
			zap.Int("max_tokens", defaults.MaxTokens),
			zap.Strings("valid_models", a.Catalog.Names()),
			zap.Bool("has_api_key", true),
		)
	}

	return a, nil
}

// Generate validates prompt and overrides, sends one completion request and
// returns the reply text.
func (a *Adapter) Generate(ctx context.Context, prompt string, o model.Overrides) (string, error) {
	p, err := a.Build(prompt, o)
	if err != nil {
		return "", err
	}

	text, err := a.Execute(ctx, p)
	if err != nil {
		return "", fmt.Errorf("groq: %w", err)
	}

	return text, nil
}

// Build merges o onto the adapter defaults, checks the model against the
// catalog, clamps temperature and max tokens and serializes the request. It
// performs no I/O.
func (a *Adapter) Build(prompt string, o model.Overrides) (modeladapter.Payload, error) {
	if strings.TrimSpace(prompt) == "" {
		return modeladapter.Payload{}, &EmptyPromptError{}
	}

	cfg := a.Defaults.Merge(o)
	if err := a.Catalog.Validate(cfg.Name); err != nil {
		return modeladapter.Payload{}, err
	}
	cfg = cfg.Clamped()

	body, err := marshalRequest(chatRequest{
		Model:       cfg.Name,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	if err != nil {
		return modeladapter.Payload{}, fmt.Errorf("marshal payload: %w", err)
	}

	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	h.Set("Content-Length", strconv.Itoa(len(body)))

	return modeladapter.Payload{Body: body, Header: h}, nil
}

// --- request types ---

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// marshalRequest encodes req without HTML escaping so the prompt reaches the
// API as typed.
func marshalRequest(req chatRequest) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(req); err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
