// Package providers groups the chat completion providers.
//
// It is organized into sub-packages:
//   - [github.com/germanamz/aiwizard/pkg/providers/model]: generation settings (name, temperature, max tokens), clamping and the model catalog
//   - [github.com/germanamz/aiwizard/pkg/providers/groq]: the Groq adapter that builds and sends chat completion requests
//
// The HTTP transport shared by adapters lives in
// [github.com/germanamz/aiwizard/pkg/modeladapter].
package providers
