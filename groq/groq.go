// Package groq implements [steward.Provider] for the Groq cloud API, which
// speaks the OpenAI chat-completions wire format against its own endpoint.
package groq

import (
	"net/http"

	"github.com/stewardhq/steward/openai"
)

const (
	baseURL      = "https://api.groq.com/openai/v1"
	defaultModel = "llama-3.3-70b-versatile"
)

// Option configures the underlying OpenAI-wire client.
type Option func(*[]openai.Option)

// WithBaseURL overrides the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(opts *[]openai.Option) {
		*opts = append(*opts, openai.WithBaseURL(url))
	}
}

// WithDefaultModel sets the model used when the request does not specify one.
func WithDefaultModel(model string) Option {
	return func(opts *[]openai.Option) {
		*opts = append(*opts, openai.WithDefaultModel(model))
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(opts *[]openai.Option) {
		*opts = append(*opts, openai.WithHTTPClient(hc))
	}
}

// New creates a Groq client with the given API key and options.
func New(apiKey string, opts ...Option) *openai.Client {
	base := []openai.Option{
		openai.WithProviderName("groq"),
		openai.WithBaseURL(baseURL),
		openai.WithDefaultModel(defaultModel),
	}
	for _, o := range opts {
		o(&base)
	}
	return openai.New(apiKey, base...)
}
