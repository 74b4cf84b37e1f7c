// Package openrouter implements [steward.Provider] for OpenRouter, which
// speaks the OpenAI chat-completions wire format and additionally expects
// attribution headers on every request.
package openrouter

import (
	"net/http"

	"github.com/stewardhq/steward/openai"
)

const (
	baseURL      = "https://openrouter.ai/api/v1"
	defaultModel = "anthropic/claude-3.5-sonnet"
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

// New creates an OpenRouter client with the given API key and options.
func New(apiKey string, opts ...Option) *openai.Client {
	base := []openai.Option{
		openai.WithProviderName("openrouter"),
		openai.WithBaseURL(baseURL),
		openai.WithDefaultModel(defaultModel),
		openai.WithHeader("HTTP-Referer", "https://github.com/stewardhq/steward"),
		openai.WithHeader("X-Title", "Steward"),
	}
	for _, o := range opts {
		o(&base)
	}
	return openai.New(apiKey, base...)
}
