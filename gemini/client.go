package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/stewardhq/steward"
)

// Interface compliance check.
var _ steward.Provider = (*Client)(nil)

// Client implements [steward.Provider] for the Google Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// Option configures a [Client].
type Option func(*Client)

// WithDefaultModel sets the model used when the request does not specify one.
func WithDefaultModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c := &Client{
		client: gc,
		model:  defaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Chat sends a non-streaming request and returns the generated text.
func (c *Client) Chat(ctx context.Context, req steward.Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}

	model, contents, config := Convert(req, c.model)
	resp, err := c.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini: %w", steward.ErrEmptyResponse)
	}
	return text, nil
}

// Stream sends a streaming request and returns a [steward.Stream] wrapping
// the SDK's iterator.
func (c *Client) Stream(ctx context.Context, req steward.Request) (steward.Stream, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}

	model, contents, config := Convert(req, c.model)
	iterFn := c.client.Models.GenerateContentStream(ctx, model, contents, config)
	return NewStreamFromIter(iterFn), nil
}

// Convert translates a request into the SDK's model name, contents, and
// generation config. System messages (and the SystemPrompt field, which wins
// when both are present) become the SystemInstruction; assistant turns map to
// the "model" role.
func Convert(req steward.Request, defaultModel string) (string, []*genai.Content, *genai.GenerateContentConfig) {
	model := req.Model
	if model == "" {
		model = defaultModel
	}

	system, rest := steward.SplitSystem(steward.TruncateHistory(req.Messages))
	if req.SystemPrompt != "" {
		system = req.SystemPrompt
	}

	var contents []*genai.Content
	for _, m := range rest {
		role := "user"
		if m.Role == steward.RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}

	config := &genai.GenerateContentConfig{}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}
	if req.Temperature != nil {
		temp := float32(*req.Temperature)
		config.Temperature = &temp
	}

	return model, contents, config
}
