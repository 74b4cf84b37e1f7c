package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stewardhq/steward"
	"github.com/stewardhq/steward/mock"
	"github.com/stewardhq/steward/router"
	"github.com/stewardhq/steward/server"
)

func newTestServer(t *testing.T, answer string) *httptest.Server {
	t.Helper()

	factory := func(ctx context.Context, cfg steward.LLMConfig) (steward.Provider, error) {
		return &mock.Provider{
			ChatFn: func(ctx context.Context, req steward.Request) (string, error) {
				return answer, nil
			},
		}, nil
	}

	s := server.New(server.Config{Addr: ":0"}, server.WithRouterOptions(
		router.WithRemote(nil),
		router.WithProviderFactory(factory),
	))
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postChat(t *testing.T, url string, req steward.ChatRequest) *http.Response {
	t.Helper()
	data, err := json.Marshal(req)
	require.NoError(t, err)
	resp, err := http.Post(url+"/api/chat", "application/json", strings.NewReader(string(data)))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestChat(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, "the local answer")

	resp := postChat(t, srv.URL, steward.ChatRequest{
		Message:  "hello",
		Settings: steward.Settings{LLM: steward.LLMConfig{Provider: "openai", APIKey: "sk-test"}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out steward.ChatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "the local answer", out.Response)
	assert.NotNil(t, out.PendingActions)
}

func TestChat_ValidationErrorIs400(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, "unused")

	resp := postChat(t, srv.URL, steward.ChatRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Contains(t, out["error"], "message is required")
}

func TestChat_BadJSONIs400(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, "unused")

	resp, err := http.Post(srv.URL+"/api/chat", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChat_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, "unused")

	resp, err := http.Get(srv.URL + "/api/chat")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestChat_ProviderOutageIs502(t *testing.T) {
	t.Parallel()

	factory := func(ctx context.Context, cfg steward.LLMConfig) (steward.Provider, error) {
		return &mock.Provider{
			ChatFn: func(ctx context.Context, req steward.Request) (string, error) {
				return "", &steward.HTTPError{Provider: "openai", StatusCode: 503, Body: "down"}
			},
		}, nil
	}
	s := server.New(server.Config{Addr: ":0"}, server.WithRouterOptions(
		router.WithRemote(nil),
		router.WithProviderFactory(factory),
	))
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp := postChat(t, srv.URL, steward.ChatRequest{
		Message:  "hello",
		Settings: steward.Settings{LLM: steward.LLMConfig{Provider: "openai", APIKey: "sk-test"}},
	})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, "unused")

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsExposed(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, "answer")

	postChat(t, srv.URL, steward.ChatRequest{
		Message:  "hello",
		Settings: steward.Settings{LLM: steward.LLMConfig{Provider: "openai", APIKey: "sk-test"}},
	})

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "steward_chat_requests_total 1")
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steward.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":9999\"\nagentUrl: \"http://agent:8001\"\n"), 0o644))

	cfg, err := server.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "http://agent:8001", cfg.AgentURL)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := server.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, server.DefaultAddr, cfg.Addr)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("STEWARD_ADDR", ":7777")

	cfg, err := server.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.Addr)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := server.LoadConfig("/does/not/exist.yaml")
	assert.Error(t, err)
}
