package executor_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stewardhq/steward"
	"github.com/stewardhq/steward/executor"
	"github.com/stewardhq/steward/tools"
)

func settingsFor(url string) steward.JiraSettings {
	return steward.JiraSettings{
		BaseURL:    url,
		Email:      "pm@example.com",
		APIToken:   "token-1",
		ProjectKey: "MDATA",
	}
}

// Every catalog tool must have a handler and every handler a catalog entry,
// so the advertised tools and the executable tools cannot drift apart.
func TestHandlersMatchCatalog(t *testing.T) {
	t.Parallel()

	assert.ElementsMatch(t, tools.Default().Names(), executor.New().Names())
}

func TestExecute_UnknownTool(t *testing.T) {
	t.Parallel()

	res := executor.New().Execute(context.Background(), "delete_everything", nil, steward.JiraSettings{})
	assert.False(t, res.Success)
	assert.Equal(t, "Unknown tool: delete_everything", res.Err)
}

func TestExecute_LocalToolsReturnMutations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tool string
		args map[string]any
		kind string
	}{
		{"create_initiative", map[string]any{"title": "Churn dashboard", "stage": "idea"}, "create_initiative"},
		{"update_initiative", map[string]any{"id": "i-1", "stage": "discovery"}, "update_initiative"},
		{"create_risk", map[string]any{"title": "Data quality", "severity": "high"}, "create_risk"},
		{"add_roadmap_item", map[string]any{"title": "Q3 launch", "quarter": "Q3 2026"}, "add_roadmap_item"},
	}

	e := executor.New()
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			t.Parallel()
			res := e.Execute(context.Background(), tt.tool, tt.args, steward.JiraSettings{})
			assert.True(t, res.Success)
			assert.NotEmpty(t, res.Result)
			require.NotNil(t, res.Mutation)
			assert.Equal(t, tt.kind, res.Mutation.Kind)
			assert.Equal(t, tt.args, res.Mutation.Payload)
		})
	}
}

func TestExecute_SearchJiraIssues(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "project = MDATA", r.URL.Query().Get("jql"))
		w.Write([]byte(`{"issues":[{"key":"MDATA-1","fields":{"summary":"First","status":{"name":"To Do"}}}]}`))
	}))
	defer srv.Close()

	res := executor.New().Execute(context.Background(), "search_jira_issues",
		map[string]any{"jql": "project = MDATA"}, settingsFor(srv.URL))

	assert.True(t, res.Success)
	assert.Contains(t, res.Result, "MDATA-1")
	assert.Contains(t, res.Result, "First")
	assert.Contains(t, res.Result, "To Do")
	assert.Nil(t, res.Mutation)
}

func TestExecute_CreateJiraIssueUsesProjectKey(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Fields map[string]any `json:"fields"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"key": "MDATA"}, body.Fields["project"])
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"key":"MDATA-9"}`))
	}))
	defer srv.Close()

	res := executor.New().Execute(context.Background(), "create_jira_issue",
		map[string]any{"summary": "New work", "issueType": "Story"}, settingsFor(srv.URL))

	assert.True(t, res.Success)
	assert.Contains(t, res.Result, "MDATA-9")
}

func TestExecute_JiraFailureIsData(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream broken"))
	}))
	defer srv.Close()

	res := executor.New().Execute(context.Background(), "get_jira_issue",
		map[string]any{"key": "MDATA-1"}, settingsFor(srv.URL))

	assert.False(t, res.Success)
	assert.Contains(t, res.Err, "502")
}

func TestExecute_JiraToolWithoutConnection(t *testing.T) {
	t.Parallel()

	res := executor.New().Execute(context.Background(), "search_jira_issues",
		map[string]any{"jql": "project = X"}, steward.JiraSettings{})

	assert.False(t, res.Success)
	assert.Contains(t, res.Err, "not configured")
}

func TestExecute_MissingRequiredArgs(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should reach Jira")
	}))
	defer srv.Close()

	e := executor.New()
	tests := []struct {
		tool string
		args map[string]any
	}{
		{"search_jira_issues", map[string]any{}},
		{"get_jira_issue", map[string]any{}},
		{"create_jira_issue", map[string]any{"summary": "only summary"}},
		{"update_jira_issue", map[string]any{"key": "MDATA-1"}},
		{"transition_jira_issue", map[string]any{"key": "MDATA-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			res := e.Execute(context.Background(), tt.tool, tt.args, settingsFor(srv.URL))
			assert.False(t, res.Success)
			assert.NotEmpty(t, res.Err)
		})
	}
}
