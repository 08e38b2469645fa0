// Package modeladapter performs chat-completion exchanges against
// OpenAI-compatible HTTP endpoints.
//
// It contains:
//   - [ModelAdapter], an embeddable base struct with auth, custom headers, a per-exchange timeout and zap diagnostics
//   - [ModelAdapter.Execute], which sends one serialized [Payload] and classifies the reply
//   - the typed failures Execute returns ([NetworkError], [TimeoutError], [CancelledError], [MalformedResponseError], [APIError], [UnexpectedFormatError])
//   - [github.com/germanamz/aiwizard/pkg/modeladapter/usage], a thread-safe token usage tracker
//
// Request building and model validation live in the provider packages that
// embed ModelAdapter.
package modeladapter
