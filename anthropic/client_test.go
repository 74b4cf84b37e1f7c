package anthropic_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stewardhq/steward"
	"github.com/stewardhq/steward/anthropic"
)

func TestClient_RequestFormat(t *testing.T) {
	t.Parallel()

	var captured []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = io.ReadAll(r.Body)

		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("Anthropic-Version"))
		assert.Empty(t, r.Header.Get("Authorization"))

		fmt.Fprint(w, `{"content":[{"type":"text","text":"hello"}],"stop_reason":"end_turn"}`)
	}))
	defer srv.Close()

	temp := 0.5
	client := anthropic.New("test-key", anthropic.WithBaseURL(srv.URL))
	text, err := client.Chat(context.Background(), steward.Request{
		Model:        "claude-3-opus-20240229",
		SystemPrompt: "Be terse.",
		Messages: []steward.Message{
			{Role: steward.RoleUser, Content: "Hello"},
		},
		MaxTokens:   512,
		Temperature: &temp,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(captured, &body))

	assert.Equal(t, "claude-3-opus-20240229", body["model"])
	assert.Equal(t, float64(512), body["max_tokens"])
	assert.Equal(t, 0.5, body["temperature"])
	// System prompt travels in its own field, never as a turn.
	assert.Equal(t, "Be terse.", body["system"])
	msgs := body["messages"].([]interface{})
	require.Len(t, msgs, 1)
}

func TestClient_SystemTurnLiftedToField(t *testing.T) {
	t.Parallel()

	var captured []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = io.ReadAll(r.Body)
		fmt.Fprint(w, `{"content":[{"type":"text","text":"ok"}]}`)
	}))
	defer srv.Close()

	client := anthropic.New("k", anthropic.WithBaseURL(srv.URL))
	_, err := client.Chat(context.Background(), steward.Request{
		Messages: []steward.Message{
			{Role: steward.RoleSystem, Content: "You advise PMs."},
			{Role: steward.RoleUser, Content: "Hi"},
		},
	})
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(captured, &body))
	assert.Equal(t, "You advise PMs.", body["system"])
	msgs := body["messages"].([]interface{})
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].(map[string]interface{})["role"])
}

func TestClient_DefaultModelAndMaxTokens(t *testing.T) {
	t.Parallel()

	var captured []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = io.ReadAll(r.Body)
		fmt.Fprint(w, `{"content":[{"type":"text","text":"ok"}]}`)
	}))
	defer srv.Close()

	client := anthropic.New("k", anthropic.WithBaseURL(srv.URL))
	_, err := client.Chat(context.Background(), steward.Request{
		Messages: []steward.Message{{Role: steward.RoleUser, Content: "Hi"}},
	})
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(captured, &body))
	assert.Equal(t, "claude-3-5-sonnet-20241022", body["model"])
	assert.Equal(t, float64(4096), body["max_tokens"])
}

func TestClient_MultipleTextBlocksJoined(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content":[{"type":"text","text":"one "},{"type":"text","text":"two"}]}`)
	}))
	defer srv.Close()

	client := anthropic.New("k", anthropic.WithBaseURL(srv.URL))
	text, err := client.Chat(context.Background(), steward.Request{
		Messages: []steward.Message{{Role: steward.RoleUser, Content: "Hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "one two", text)
}

func TestClient_EmptyContentIsProviderFault(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content":[],"stop_reason":"end_turn"}`)
	}))
	defer srv.Close()

	client := anthropic.New("k", anthropic.WithBaseURL(srv.URL))
	_, err := client.Chat(context.Background(), steward.Request{
		Messages: []steward.Message{{Role: steward.RoleUser, Content: "Hi"}},
	})
	assert.ErrorIs(t, err, steward.ErrEmptyResponse)
}

func TestClient_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`)
	}))
	defer srv.Close()

	client := anthropic.New("k", anthropic.WithBaseURL(srv.URL))
	_, err := client.Chat(context.Background(), steward.Request{
		Messages: []steward.Message{{Role: steward.RoleUser, Content: "Hi"}},
	})

	var httpErr *steward.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "anthropic", httpErr.Provider)
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Contains(t, httpErr.Body, "invalid_request_error")
}
