package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/stewardhq/steward"
)

// Interface compliance check.
var _ steward.Provider = (*Client)(nil)

// Client implements [steward.Provider] for the Anthropic Messages API.
// Authentication uses the X-Api-Key header rather than a bearer token.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithDefaultModel sets the model used when the request does not specify one.
func WithDefaultModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a new Anthropic [Client] with the given API key and options.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Chat sends a non-streaming request and returns the generated text, joined
// from the response's text content blocks.
func (c *Client) Chat(ctx context.Context, req steward.Request) (string, error) {
	resp, err := c.do(ctx, req, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%s: decode response: %w", providerName, err)
	}

	var sb strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%s: %w", providerName, steward.ErrEmptyResponse)
	}
	return sb.String(), nil
}

// Stream sends a streaming request and returns a [steward.Stream] that
// yields text deltas from the SSE event stream.
func (c *Client) Stream(ctx context.Context, req steward.Request) (steward.Stream, error) {
	resp, err := c.do(ctx, req, true)
	if err != nil {
		return nil, err
	}
	return newStream(resp.Body), nil
}

func (c *Client) do(ctx context.Context, req steward.Request, streaming bool) (*http.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", providerName, err)
	}

	body, err := json.Marshal(c.buildRequestBody(req, streaming))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", providerName, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", providerName, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Anthropic-Version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", providerName, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)
		return nil, &steward.HTTPError{Provider: providerName, StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, nil
}

func (c *Client) buildRequestBody(req steward.Request, streaming bool) apiRequest {
	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	// Anthropic takes the system prompt as a dedicated request field, never
	// as a conversation turn.
	system, rest := steward.SplitSystem(steward.TruncateHistory(req.Messages))
	if req.SystemPrompt != "" {
		system = req.SystemPrompt
	}

	msgs := make([]apiMessage, 0, len(rest))
	for _, m := range rest {
		msgs = append(msgs, apiMessage{Role: string(m.Role), Content: m.Content})
	}

	return apiRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Stream:      streaming,
		System:      system,
		Messages:    msgs,
		Temperature: req.Temperature,
	}
}
