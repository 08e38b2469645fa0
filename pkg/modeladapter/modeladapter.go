package modeladapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/germanamz/aiwizard/pkg/modeladapter/usage"
	"go.uber.org/zap"
)

// Default endpoint settings.
const (
	DefaultPath    = "/openai/v1/chat/completions"
	DefaultTimeout = 30 * time.Second
)

// maxLoggedBody caps response bodies in debug records unless VerboseBodies is set.
const maxLoggedBody = 2048

// ParseRetryAfter parses the Retry-After header value as either seconds (integer)
// or an HTTP-date (RFC 7231). Returns zero if unparseable or if the date is in the past.
func ParseRetryAfter(val string) time.Duration {
	if val == "" {
		return 0
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(val); err == nil {
		d := time.Until(t)
		if d > 0 {
			return d
		}
		return 0
	}
	return 0
}

// Auth holds authentication settings for an LLM provider API.
type Auth struct {
	Key    string // API key value.
	Header string // Header name (default: "Authorization").
	Scheme string // Scheme prefix (default: "Bearer" when Header is "Authorization").
}

// Payload is a serialized request body plus the headers built alongside it.
type Payload struct {
	Body   []byte
	Header http.Header
}

// ModelAdapter performs single chat-completion exchanges against an
// OpenAI-compatible endpoint. Embed it in provider structs to get auth,
// custom headers, timeout handling, response classification and usage
// tracking. All fields are read-only once the first request is sent.
type ModelAdapter struct {
	Auth          Auth                  // Authentication settings.
	BaseURL       string                // API base URL (no trailing slash).
	Path          string                // Completion path; defaults to DefaultPath.
	Client        *http.Client          // HTTP client; falls back to a shared default.
	Headers       map[string]string     // Extra headers applied to every request.
	Timeout       time.Duration         // Per-exchange deadline; defaults to DefaultTimeout.
	Logger        *zap.Logger           // Diagnostics; nil disables them.
	VerboseBodies bool                  // Log full bodies instead of a truncated prefix.
	Usage         usage.Tracker         // Token usage tracker.
	HeaderParser  RateLimitHeaderParser // Optional parser for rate limit response headers.

	rateLimitInfo atomic.Pointer[RateLimitInfo]
	clientOnce    sync.Once
	defaultClient *http.Client
}

// New creates a ModelAdapter with the given settings.
// A nil client falls back to a shared default client at call time.
func New(baseURL string, auth Auth, client *http.Client) ModelAdapter {
	return ModelAdapter{
		Auth:    auth,
		BaseURL: baseURL,
		Client:  client,
	}
}

// UsageTracker returns the adapter's token usage tracker.
func (a *ModelAdapter) UsageTracker() *usage.Tracker { return &a.Usage }

// LastRateLimitInfo returns the most recently observed rate limit info, or nil.
func (a *ModelAdapter) LastRateLimitInfo() *RateLimitInfo { return a.rateLimitInfo.Load() }

// httpClient returns the configured client or a cached default client. The
// default has no client-level timeout; Execute enforces the deadline.
func (a *ModelAdapter) httpClient() *http.Client {
	if a.Client != nil {
		return a.Client
	}

	a.clientOnce.Do(func() {
		a.defaultClient = &http.Client{}
	})

	return a.defaultClient
}

func (a *ModelAdapter) log() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

func (a *ModelAdapter) timeout() time.Duration {
	if a.Timeout <= 0 {
		return DefaultTimeout
	}
	return a.Timeout
}

func (a *ModelAdapter) path() string {
	if a.Path == "" {
		return DefaultPath
	}
	return a.Path
}

// NewRequest builds an *http.Request with the base URL, auth, and custom
// headers already applied.
func (a *ModelAdapter) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	url := a.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	// Apply auth.
	if a.Auth.Key != "" {
		header := a.Auth.Header
		if header == "" {
			header = "Authorization"
		}

		value := a.Auth.Key
		if header == "Authorization" {
			scheme := a.Auth.Scheme
			if scheme == "" {
				scheme = "Bearer"
			}

			value = scheme + " " + value
		} else if a.Auth.Scheme != "" {
			value = a.Auth.Scheme + " " + value
		}

		req.Header.Set(header, value)
	}

	// Apply custom headers.
	for k, v := range a.Headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

// Do sends the request using the configured HTTP client.
func (a *ModelAdapter) Do(req *http.Request) (*http.Response, error) {
	return a.httpClient().Do(req) //nolint:gosec // URL is built from trusted BaseURL config, not user input.
}

// exchangeResult is what the exchange goroutine hands back to Execute. It
// carries the observed usage and rate limits so only a result that beats the
// deadline is recorded.
type exchangeResult struct {
	text      string
	usage     *usage.TokenCount
	rateLimit *RateLimitInfo
	err       error
}

// Execute POSTs p to the completion endpoint and returns the reply text.
//
// The exchange races the adapter's timeout: whichever finishes first decides
// the outcome and the other is discarded. Failures are one of
// *NetworkError, *TimeoutError, *CancelledError, *MalformedResponseError,
// *APIError or *UnexpectedFormatError. Nothing is retried.
func (a *ModelAdapter) Execute(ctx context.Context, p Payload) (string, error) {
	timeout := a.timeout()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := a.NewRequest(ctx, http.MethodPost, a.path(), bytes.NewReader(p.Body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	for k, vs := range p.Header {
		if http.CanonicalHeaderKey(k) == "Content-Length" {
			continue
		}
		req.Header[http.CanonicalHeaderKey(k)] = vs
	}
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = int64(len(p.Body))

	logger := a.log()
	logger.Debug("sending request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Any("headers", redactHeaders(req.Header)),
		zap.Int64("content_length", req.ContentLength),
		zap.ByteString("body", a.clip(p.Body)),
	)

	start := time.Now()
	done := make(chan exchangeResult, 1)

	go func() {
		done <- a.exchange(req)
	}()

	select {
	case res := <-done:
		// A result racing the deadline loses.
		if ctx.Err() != nil {
			return "", a.deadlineError(ctx, timeout, start)
		}
		a.record(res)
		return res.text, res.err
	case <-ctx.Done():
		return "", a.deadlineError(ctx, timeout, start)
	}
}

// record applies the side effects of a winning exchange.
func (a *ModelAdapter) record(res exchangeResult) {
	if res.rateLimit != nil {
		a.rateLimitInfo.Store(res.rateLimit)
	}
	if res.usage != nil {
		a.Usage.Add(*res.usage)
	}
}

// deadlineError maps a finished context to a timeout or a cancellation.
func (a *ModelAdapter) deadlineError(ctx context.Context, timeout time.Duration, start time.Time) error {
	elapsed := time.Since(start)

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		a.log().Debug("request timed out", zap.Duration("timeout", timeout), zap.Duration("elapsed", elapsed))
		return &TimeoutError{Limit: timeout, Elapsed: elapsed}
	}

	a.log().Debug("request cancelled", zap.Duration("elapsed", elapsed))
	return &CancelledError{Elapsed: elapsed, Err: context.Cause(ctx)}
}

// exchange sends req, accumulates the body and classifies it. It does not
// touch adapter state.
func (a *ModelAdapter) exchange(req *http.Request) exchangeResult {
	logger := a.log()

	resp, err := a.Do(req)
	if err != nil {
		netErr := newNetworkError(err)
		logger.Debug("request error", zap.String("code", netErr.Code), zap.Error(err))
		return exchangeResult{err: netErr}
	}
	defer func() { _ = resp.Body.Close() }()

	logger.Debug("response received",
		zap.String("status", resp.Status),
		zap.Any("headers", resp.Header),
	)

	var res exchangeResult
	if a.HeaderParser != nil {
		res.rateLimit = a.HeaderParser(resp.Header, time.Now())
	}

	raw, err := readChunks(resp.Body, logger)
	if err != nil {
		netErr := newNetworkError(err)
		logger.Debug("response body error", zap.String("code", netErr.Code), zap.Error(err))
		res.err = netErr
		return res
	}

	logger.Debug("response body", zap.ByteString("body", a.clip(raw)))

	r, err := decodeResponse(raw)
	if err != nil {
		res.err = &MalformedResponseError{Raw: raw, StatusCode: resp.StatusCode, Err: err}
		return res
	}

	switch r := r.(type) {
	case completion:
		logger.Debug("completion decoded", zap.Int("length", len(r.text)))
		res.text = r.text
		res.usage = r.usage
	case apiFailure:
		apiErr := &APIError{
			Message:    r.message,
			Type:       r.errType,
			Code:       r.code,
			StatusCode: resp.StatusCode,
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			apiErr.RetryAfter = ParseRetryAfter(resp.Header.Get("Retry-After"))
		}
		logger.Debug("api error", zap.String("message", r.message), zap.Int("status", resp.StatusCode))
		res.err = apiErr
	case unexpected:
		logger.Debug("unexpected response format", zap.Any("value", r.value))
		res.err = &UnexpectedFormatError{Value: r.value, StatusCode: resp.StatusCode}
	default:
		res.err = &UnexpectedFormatError{StatusCode: resp.StatusCode}
	}

	return res
}

// readChunks concatenates body reads in arrival order.
func readChunks(r io.Reader, logger *zap.Logger) ([]byte, error) {
	var buf bytes.Buffer

	chunk := make([]byte, 32*1024)
	chunks := 0

	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			chunks++
		}

		if errors.Is(err, io.EOF) {
			logger.Debug("response body complete", zap.Int("chunks", chunks), zap.Int("bytes", buf.Len()))
			return buf.Bytes(), nil
		}

		if err != nil {
			return buf.Bytes(), err
		}
	}
}

func (a *ModelAdapter) clip(b []byte) []byte {
	if a.VerboseBodies || len(b) <= maxLoggedBody {
		return b
	}
	return b[:maxLoggedBody]
}

// redactHeaders flattens h for logging with credentials masked.
func redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		v := ""
		if len(vs) > 0 {
			v = vs[0]
		}
		if k == "Authorization" || k == "X-Api-Key" {
			v = maskSecret(v)
		}
		out[k] = v
	}
	return out
}

// maskSecret keeps the first four and last four characters of long values.
func maskSecret(s string) string {
	if len(s) <= 12 {
		return "***"
	}
	return s[:4] + "***" + s[len(s)-4:]
}
