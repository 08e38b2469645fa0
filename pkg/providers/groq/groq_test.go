package groq_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/germanamz/aiwizard/pkg/modeladapter"
	"github.com/germanamz/aiwizard/pkg/providers/groq"
	"github.com/germanamz/aiwizard/pkg/providers/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *groq.Adapter) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	a, err := groq.New(groq.Options{APIKey: "gsk-test", BaseURL: srv.URL, Client: srv.Client()})
	require.NoError(t, err)

	return srv, a
}

func newOffline(t *testing.T) *groq.Adapter {
	t.Helper()

	a, err := groq.New(groq.Options{APIKey: "gsk-test", BaseURL: "http://127.0.0.1:0"})
	require.NoError(t, err)

	return a
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}

type wireRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

func decodeBody(t *testing.T, body []byte) wireRequest {
	t.Helper()

	var req wireRequest
	require.NoError(t, json.Unmarshal(body, &req))

	return req
}

// --- catalog ---

func TestModels(t *testing.T) {
	c := groq.Models()

	assert.Equal(t, []string{"llama3-8b-8192", "llama3-70b-8192"}, c.Names())
	for _, m := range c.Models {
		assert.NotEmpty(t, m.Description, m.Name)
	}
}

// --- construction ---

func TestNew_Defaults(t *testing.T) {
	a, err := groq.New(groq.Options{APIKey: "gsk-test"})
	require.NoError(t, err)

	assert.Equal(t, groq.DefaultBaseURL, a.BaseURL)
	assert.Equal(t, modeladapter.DefaultPath, a.Path)
	assert.Equal(t, model.Default(), a.Defaults)
	assert.Equal(t, "gsk-test", a.Auth.Key)
	assert.NotNil(t, a.HeaderParser)
}

func TestNew_TrimsBaseURL(t *testing.T) {
	a, err := groq.New(groq.Options{APIKey: "k", BaseURL: "https://proxy.example.com/"})
	require.NoError(t, err)

	assert.Equal(t, "https://proxy.example.com", a.BaseURL)
}

func TestNew_MissingCredential(t *testing.T) {
	for _, key := range []string{"", "   ", groq.PlaceholderAPIKey} {
		_, err := groq.New(groq.Options{APIKey: key})

		var missing *groq.CredentialMissingError
		require.True(t, errors.As(err, &missing), "key %q", key)
		assert.Equal(t, groq.APIKeyEnv, missing.Env)
	}
}

func TestAPIKeyFromEnv(t *testing.T) {
	env := map[string]string{groq.APIKeyEnv: " gsk-real "}

	key, err := groq.APIKeyFromEnv(func(k string) string { return env[k] })
	require.NoError(t, err)
	assert.Equal(t, "gsk-real", key)
}

func TestAPIKeyFromEnv_Placeholder(t *testing.T) {
	_, err := groq.APIKeyFromEnv(func(string) string { return groq.PlaceholderAPIKey })

	var missing *groq.CredentialMissingError
	require.True(t, errors.As(err, &missing))
	assert.True(t, missing.Placeholder)
	assert.EqualError(t, err, "GROQ_API_KEY is not properly configured in .env file")
}

// --- Build ---

func TestBuild_DefaultPayload(t *testing.T) {
	a := newOffline(t)

	p, err := a.Build("Tell me a fun fact about space", model.Overrides{})
	require.NoError(t, err)

	req := decodeBody(t, p.Body)
	assert.Equal(t, "llama3-8b-8192", req.Model)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
	assert.Equal(t, "Tell me a fun fact about space", req.Messages[0].Content)
	assert.InDelta(t, 0.7, req.Temperature, 1e-9)
	assert.Equal(t, 2048, req.MaxTokens)

	assert.Equal(t, "application/json", p.Header.Get("Content-Type"))
	assert.Equal(t, strconv.Itoa(len(p.Body)), p.Header.Get("Content-Length"))
}

func TestBuild_ExactWireShape(t *testing.T) {
	a := newOffline(t)

	p, err := a.Build("hi", model.Overrides{Temperature: ptr(0.0), MaxTokens: ptr(10)})
	require.NoError(t, err)

	assert.JSONEq(t,
		`{"model":"llama3-8b-8192","messages":[{"role":"user","content":"hi"}],"temperature":0,"max_tokens":10}`,
		string(p.Body))
}

func TestBuild_ClampsTemperature(t *testing.T) {
	a := newOffline(t)

	tests := []struct {
		in   float64
		want float64
	}{
		{-1, 0},
		{5, 1},
		{0.25, 0.25},
	}

	for _, tt := range tests {
		p, err := a.Build("x", model.Overrides{Temperature: ptr(tt.in)})
		require.NoError(t, err)
		assert.InDelta(t, tt.want, decodeBody(t, p.Body).Temperature, 1e-9, "input %v", tt.in)
	}
}

func TestBuild_ClampsMaxTokens(t *testing.T) {
	a := newOffline(t)

	tests := []struct {
		in   int
		want int
	}{
		{0, 1},
		{-3, 1},
		{100000, 8192},
		{4096, 4096},
	}

	for _, tt := range tests {
		p, err := a.Build("x", model.Overrides{MaxTokens: ptr(tt.in)})
		require.NoError(t, err)
		assert.Equal(t, tt.want, decodeBody(t, p.Body).MaxTokens, "input %d", tt.in)
	}
}

func TestBuild_ClampsStaleDefaults(t *testing.T) {
	a, err := groq.New(groq.Options{
		APIKey:   "k",
		Defaults: model.Config{Name: "llama3-8b-8192", Temperature: 3, MaxTokens: 50000},
	})
	require.NoError(t, err)

	p, err := a.Build("x", model.Overrides{Name: ptr("llama3-70b-8192")})
	require.NoError(t, err)

	req := decodeBody(t, p.Body)
	assert.Equal(t, "llama3-70b-8192", req.Model)
	assert.InDelta(t, 1.0, req.Temperature, 1e-9)
	assert.Equal(t, 8192, req.MaxTokens)
}

func TestBuild_UnsupportedModel(t *testing.T) {
	a := newOffline(t)

	_, err := a.Build("x", model.Overrides{Name: ptr("mixtral-8x7b-32768")})

	var unsupported *model.UnsupportedModelError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "mixtral-8x7b-32768", unsupported.Name)
	assert.Equal(t, []string{"llama3-8b-8192", "llama3-70b-8192"}, unsupported.Allowed)
}

func TestBuild_EmptyPrompt(t *testing.T) {
	a := newOffline(t)

	for _, prompt := range []string{"", "   ", "\n\t"} {
		_, err := a.Build(prompt, model.Overrides{})

		var empty *groq.EmptyPromptError
		assert.True(t, errors.As(err, &empty), "prompt %q", prompt)
	}
}

func TestBuild_PromptVerbatim(t *testing.T) {
	a := newOffline(t)
	prompt := "  <b>Tom & Jerry</b> \"quoted\"\nnew line 🚀  "

	p, err := a.Build(prompt, model.Overrides{})
	require.NoError(t, err)

	assert.Contains(t, string(p.Body), "<b>Tom & Jerry</b>")
	assert.Equal(t, prompt, decodeBody(t, p.Body).Messages[0].Content)
}

func TestBuild_MultiByteContentLength(t *testing.T) {
	a := newOffline(t)

	p, err := a.Build("Écris un poème sur la mer 🌊 — 海についての詩", model.Overrides{})
	require.NoError(t, err)

	assert.Equal(t, strconv.Itoa(len(p.Body)), p.Header.Get("Content-Length"))
	assert.NotEqual(t, strconv.Itoa(utf8.RuneCount(p.Body)), p.Header.Get("Content-Length"))
}

// --- Generate ---

func TestGenerate_Success(t *testing.T) {
	var body []byte

	_, a := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk-test", r.Header.Get("Authorization"))

		body, _ = io.ReadAll(r.Body)
		assert.Equal(t, int64(len(body)), r.ContentLength)

		writeJSON(t, w, map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "hello"}},
			},
			"usage": map[string]any{"prompt_tokens": 9, "completion_tokens": 1},
		})
	})

	text, err := a.Generate(context.Background(), "Say hello 👋", model.Overrides{
		Name:        ptr("llama3-70b-8192"),
		Temperature: ptr(0.2),
		MaxTokens:   ptr(64),
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	req := decodeBody(t, body)
	assert.Equal(t, "llama3-70b-8192", req.Model)
	assert.Equal(t, "Say hello 👋", req.Messages[0].Content)
	assert.InDelta(t, 0.2, req.Temperature, 1e-9)
	assert.Equal(t, 64, req.MaxTokens)

	last, ok := a.UsageTracker().Last()
	require.True(t, ok)
	assert.Equal(t, 10, last.Total())
}

func TestGenerate_UnsupportedModelMakesNoRequest(t *testing.T) {
	var hits atomic.Int32

	_, a := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := a.Generate(context.Background(), "x", model.Overrides{Name: ptr("gpt-4")})

	var unsupported *model.UnsupportedModelError
	require.True(t, errors.As(err, &unsupported))
	assert.Zero(t, hits.Load())
}

func TestGenerate_EmptyPromptMakesNoRequest(t *testing.T) {
	var hits atomic.Int32

	_, a := newTestServer(t, func(_ http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	})

	_, err := a.Generate(context.Background(), " ", model.Overrides{})

	var empty *groq.EmptyPromptError
	require.True(t, errors.As(err, &empty))
	assert.Zero(t, hits.Load())
}

func TestGenerate_APIError(t *testing.T) {
	_, a := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		writeJSON(t, w, map[string]any{"error": map[string]any{"message": "rate limited"}})
	})

	_, err := a.Generate(context.Background(), "x", model.Overrides{})

	var apiErr *modeladapter.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "rate limited", apiErr.Message)
	assert.EqualError(t, err, "groq: rate limited")
}

func TestGenerate_Malformed(t *testing.T) {
	_, a := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "not json")
	})

	_, err := a.Generate(context.Background(), "x", model.Overrides{})

	var malformed *modeladapter.MalformedResponseError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, []byte("not json"), malformed.Raw)
}

func TestGenerate_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.ReadAll(r.Body)

		select {
		case <-time.After(time.Second):
			writeJSON(t, w, map[string]any{
				"choices": []map[string]any{{"message": map[string]any{"content": "late"}}},
			})
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)

	a, err := groq.New(groq.Options{
		APIKey:  "k",
		BaseURL: srv.URL,
		Client:  srv.Client(),
		Timeout: 30 * time.Millisecond,
	})
	require.NoError(t, err)

	text, err := a.Generate(context.Background(), "x", model.Overrides{})
	assert.Empty(t, text)

	var timeoutErr *modeladapter.TimeoutError
	require.True(t, errors.As(err, &timeoutErr))
	assert.Equal(t, 30*time.Millisecond, timeoutErr.Limit)
}

func TestGenerate_ConcurrentCallsAreIndependent(t *testing.T) {
	_, a := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		req := decodeBody(t, body)
		writeJSON(t, w, map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": "echo:" + req.Messages[0].Content}}},
		})
	})

	const n = 8
	results := make(chan string, n)
	errs := make(chan error, n)

	for i := range n {
		go func() {
			text, err := a.Generate(context.Background(), strconv.Itoa(i), model.Overrides{})
			if err != nil {
				errs <- err
				return
			}
			results <- text
		}()
	}

	seen := make(map[string]bool)
	for range n {
		select {
		case err := <-errs:
			t.Fatalf("generate: %v", err)
		case text := <-results:
			seen[text] = true
		}
	}

	for i := range n {
		assert.True(t, seen["echo:"+strconv.Itoa(i)], i)
	}
}
