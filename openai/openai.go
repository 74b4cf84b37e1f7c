// Package openai implements [steward.Provider] for the OpenAI Chat
// Completions API. The wire format is shared by several hosted providers;
// the compat options (WithProviderName, WithBaseURL, WithDefaultModel,
// WithHeader) let thin wrappers such as the groq and openrouter packages
// reuse this client against their own endpoints.
package openai

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
	chatPath       = "/chat/completions"
	providerName   = "openai"
)

// apiRequest is the JSON body sent to the chat completions endpoint.
type apiRequest struct {
	Model       string       `json:"model"`
	Messages    []apiMessage `json:"messages"`
	Stream      bool         `json:"stream"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
	Temperature *float64     `json:"temperature,omitempty"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// apiResponse is the non-streaming response envelope.
type apiResponse struct {
	Choices []apiChoice `json:"choices"`
}

type apiChoice struct {
	Message      apiMessage `json:"message"`
	FinishReason string     `json:"finish_reason"`
}

// apiChunk is one streaming SSE frame payload.
type apiChunk struct {
	Choices []apiChunkChoice `json:"choices"`
}

type apiChunkChoice struct {
	Delta        apiDelta `json:"delta"`
	FinishReason *string  `json:"finish_reason"`
}

type apiDelta struct {
	Content string `json:"content"`
}
