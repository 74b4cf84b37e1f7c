package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/stewardhq/steward"
)

// Interface compliance check.
var _ steward.Provider = (*Client)(nil)

// Client implements [steward.Provider] for the OpenAI Chat Completions API
// and any API speaking the same wire format.
type Client struct {
	name       string
	apiKey     string
	baseURL    string
	model      string
	headers    map[string]string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest and
// for OpenAI-compatible providers.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithDefaultModel sets the model used when the request does not specify one.
func WithDefaultModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithProviderName sets the name used in error messages. Defaults to "openai".
func WithProviderName(name string) Option {
	return func(c *Client) { c.name = name }
}

// WithHeader adds an extra header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a new [Client] with the given API key and options.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		name:       providerName,
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		headers:    make(map[string]string),
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Chat sends a non-streaming request and returns the generated text.
func (c *Client) Chat(ctx context.Context, req steward.Request) (string, error) {
	resp, err := c.do(ctx, req, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%s: decode response: %w", c.name, err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%s: %w", c.name, steward.ErrEmptyResponse)
	}
	return parsed.Choices[0].Message.Content, nil
}

// Stream sends a streaming request and returns a [steward.Stream] of text
// chunks parsed from "data:" SSE frames terminated by a [DONE] sentinel.
func (c *Client) Stream(ctx context.Context, req steward.Request) (steward.Stream, error) {
	resp, err := c.do(ctx, req, true)
	if err != nil {
		return nil, err
	}
	return newStream(c.name, resp.Body), nil
}

// do validates, builds and sends the HTTP request, surfacing non-2xx
// statuses as [steward.HTTPError]. On success the caller owns resp.Body.
func (c *Client) do(ctx context.Context, req steward.Request, streaming bool) (*http.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", c.name, err)
	}

	body, err := json.Marshal(c.buildRequestBody(req, streaming))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.name, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.name, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)
		return nil, &steward.HTTPError{Provider: c.name, StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, nil
}

func (c *Client) buildRequestBody(req steward.Request, streaming bool) apiRequest {
	model := req.Model
	if model == "" {
		model = c.model
	}

	system, rest := steward.SplitSystem(steward.TruncateHistory(req.Messages))
	if req.SystemPrompt != "" {
		system = req.SystemPrompt
	}

	msgs := make([]apiMessage, 0, len(rest)+1)
	if system != "" {
		msgs = append(msgs, apiMessage{Role: "system", Content: system})
	}
	for _, m := range rest {
		msgs = append(msgs, apiMessage{Role: string(m.Role), Content: m.Content})
	}

	return apiRequest{
		Model:       model,
		Messages:    msgs,
		Stream:      streaming,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
}
