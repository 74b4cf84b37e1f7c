package ollama

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

// Client implements [steward.Provider] for an Ollama server.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithDefaultModel sets the model used when the request does not specify one.
func WithDefaultModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a new Ollama [Client] for the given endpoint.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(endpoint, "/"),
		model:      defaultModel,
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
		return "", fmt.Errorf("%s: decode response: %w", providerName, err)
	}
	if parsed.Message.Content == "" {
		return "", fmt.Errorf("%s: %w", providerName, steward.ErrEmptyResponse)
	}
	return parsed.Message.Content, nil
}

// Stream sends a streaming request and returns a [steward.Stream] parsing
// newline-delimited JSON objects until one carries done=true.
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

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", providerName, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

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

	// Ollama accepts a system role turn; prepend the system prompt as one.
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

	var opts *apiOptions
	if req.Temperature != nil || req.MaxTokens > 0 {
		opts = &apiOptions{Temperature: req.Temperature, NumPredict: req.MaxTokens}
	}

	return apiRequest{Model: model, Messages: msgs, Stream: streaming, Options: opts}
}
