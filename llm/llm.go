// Package llm constructs [steward.Provider] implementations from
// per-request configuration. All validation happens here, before any
// network call: a missing provider id, a missing credential for a provider
// that needs one, or a missing endpoint for a provider that needs one fails
// fast with a descriptive error and no partial construction.
package llm

import (
	"context"
	"fmt"

	"github.com/stewardhq/steward"
	"github.com/stewardhq/steward/anthropic"
	"github.com/stewardhq/steward/gemini"
	"github.com/stewardhq/steward/groq"
	"github.com/stewardhq/steward/ollama"
	"github.com/stewardhq/steward/openai"
	"github.com/stewardhq/steward/openrouter"
)

// Supported provider identifiers.
const (
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderGemini     = "gemini"
	ProviderGroq       = "groq"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
)

// New constructs the provider selected by cfg. The returned provider uses
// cfg.Model as its default model when set; cfg.Endpoint overrides the
// provider's base URL where the provider supports one.
func New(ctx context.Context, cfg steward.LLMConfig) (steward.Provider, error) {
	if cfg.Provider == "" {
		return nil, fmt.Errorf("llm: provider is required: %w", steward.ErrValidation)
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, missingKey(cfg.Provider)
		}
		opts := []openai.Option{}
		if cfg.Endpoint != "" {
			opts = append(opts, openai.WithBaseURL(cfg.Endpoint))
		}
		if cfg.Model != "" {
			opts = append(opts, openai.WithDefaultModel(cfg.Model))
		}
		return openai.New(cfg.APIKey, opts...), nil

	case ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, missingKey(cfg.Provider)
		}
		opts := []anthropic.Option{}
		if cfg.Endpoint != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.Endpoint))
		}
		if cfg.Model != "" {
			opts = append(opts, anthropic.WithDefaultModel(cfg.Model))
		}
		return anthropic.New(cfg.APIKey, opts...), nil

	case ProviderGemini:
		if cfg.APIKey == "" {
			return nil, missingKey(cfg.Provider)
		}
		opts := []gemini.Option{}
		if cfg.Model != "" {
			opts = append(opts, gemini.WithDefaultModel(cfg.Model))
		}
		return gemini.New(ctx, cfg.APIKey, opts...)

	case ProviderGroq:
		if cfg.APIKey == "" {
			return nil, missingKey(cfg.Provider)
		}
		opts := []groq.Option{}
		if cfg.Endpoint != "" {
			opts = append(opts, groq.WithBaseURL(cfg.Endpoint))
		}
		if cfg.Model != "" {
			opts = append(opts, groq.WithDefaultModel(cfg.Model))
		}
		return groq.New(cfg.APIKey, opts...), nil

	case ProviderOpenRouter:
		if cfg.APIKey == "" {
			return nil, missingKey(cfg.Provider)
		}
		opts := []openrouter.Option{}
		if cfg.Endpoint != "" {
			opts = append(opts, openrouter.WithBaseURL(cfg.Endpoint))
		}
		if cfg.Model != "" {
			opts = append(opts, openrouter.WithDefaultModel(cfg.Model))
		}
		return openrouter.New(cfg.APIKey, opts...), nil

	case ProviderOllama:
		// Local provider: no credential, but an explicit endpoint is required.
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("llm: ollama requires an apiEndpoint: %w", steward.ErrValidation)
		}
		opts := []ollama.Option{}
		if cfg.Model != "" {
			opts = append(opts, ollama.WithDefaultModel(cfg.Model))
		}
		return ollama.New(cfg.Endpoint, opts...), nil

	default:
		return nil, fmt.Errorf("llm: unknown provider %q: %w", cfg.Provider, steward.ErrValidation)
	}
}

func missingKey(provider string) error {
	return fmt.Errorf("llm: %s requires an apiKey: %w", provider, steward.ErrValidation)
}
