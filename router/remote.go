package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/stewardhq/steward"
)

// DefaultAgentURL is used when neither the constructor argument nor the
// STEWARD_AGENT_URL environment variable names the remote agent service.
const DefaultAgentURL = "http://localhost:8001"

// remoteTimeout bounds the remote attempt. On expiry the router falls back
// exactly as it would on any other remote failure.
const remoteTimeout = 30 * time.Second

// RemoteResponse is the payload returned by the remote agent service. It
// shares the chat response envelope, so a healthy remote result passes
// through verbatim.
type RemoteResponse = steward.ChatResponse

// RemoteClient forwards chat requests to the remote agent service.
type RemoteClient struct {
	url        string
	httpClient *http.Client
}

// NewRemoteClient creates a client for the agent service at url. An empty
// url falls back to STEWARD_AGENT_URL, then to DefaultAgentURL.
func NewRemoteClient(url string) *RemoteClient {
	if url == "" {
		url = os.Getenv("STEWARD_AGENT_URL")
	}
	if url == "" {
		url = DefaultAgentURL
	}
	return &RemoteClient{
		url:        url,
		httpClient: &http.Client{Timeout: remoteTimeout},
	}
}

// URL returns the configured agent service URL.
func (c *RemoteClient) URL() string {
	return c.url
}

// Send posts the request to the agent service. Any transport failure,
// non-2xx status, or undecodable body is an error; the caller treats all of
// them as a reason to fall back, never as a hard failure.
func (c *RemoteClient) Send(ctx context.Context, req steward.ChatRequest) (*RemoteResponse, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/api/chat", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("agent service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, &steward.HTTPError{
			Provider:   "agent",
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var out RemoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode agent response: %w", err)
	}
	return &out, nil
}
