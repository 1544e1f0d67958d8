// Package llm holds the language-model clients used for extraction. Each
// client turns a Request into the model's raw text reply.
package llm

import "errors"

var (
	// ErrEmptyCompletion is returned when the provider answers without text.
	ErrEmptyCompletion = errors.New("model returned an empty completion")
	// ErrMissingAPIKey is returned before any call when no key is configured.
	ErrMissingAPIKey = errors.New("model API key not configured")
)

// Provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Request is one single-turn completion.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}
