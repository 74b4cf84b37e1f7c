// Package jira is a thin typed client for the Jira Cloud REST API. It covers
// only the operations the tool executor needs; callers construct one client
// per request from the settings that arrived with it.
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/stewardhq/steward"
)

const apiPrefix = "/rest/api/3"

// Issue is the subset of a Jira issue the assistant reports on.
type Issue struct {
	Key         string `json:"key"`
	Summary     string `json:"summary"`
	Status      string `json:"status,omitempty"`
	Assignee    string `json:"assignee,omitempty"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// CreateIssueInput carries the fields for a new issue. ParentKey is required
// for subtask types and ignored otherwise.
type CreateIssueInput struct {
	ProjectKey  string
	Summary     string
	IssueType   string
	Description string
	ParentKey   string
}

// Client talks to one Jira site with basic auth credentials.
type Client struct {
	baseURL    string
	email      string
	apiToken   string
	httpClient *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(j *Client) {
		j.httpClient = c
	}
}

// New creates a client from connection settings. An unconfigured connection
// is a validation error; credential correctness is only discovered on use.
func New(settings steward.JiraSettings, opts ...Option) (*Client, error) {
	if !settings.Configured() {
		return nil, fmt.Errorf("jira connection is not configured: %w", steward.ErrValidation)
	}
	c := &Client{
		baseURL:    strings.TrimRight(settings.BaseURL, "/"),
		email:      settings.Email,
		apiToken:   settings.APIToken,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type searchResponse struct {
	Issues []wireIssue `json:"issues"`
}

type wireIssue struct {
	Key    string `json:"key"`
	Fields struct {
		Summary string `json:"summary"`
		Status  struct {
			Name string `json:"name"`
		} `json:"status"`
		Assignee struct {
			DisplayName string `json:"displayName"`
		} `json:"assignee"`
		IssueType struct {
			Name string `json:"name"`
		} `json:"issuetype"`
		Description any `json:"description"`
	} `json:"fields"`
}

func (w wireIssue) toIssue() Issue {
	return Issue{
		Key:         w.Key,
		Summary:     w.Fields.Summary,
		Status:      w.Fields.Status.Name,
		Assignee:    w.Fields.Assignee.DisplayName,
		Type:        w.Fields.IssueType.Name,
		Description: flattenDoc(w.Fields.Description),
	}
}

// Search runs a JQL query and returns up to limit matching issues.
func (c *Client) Search(ctx context.Context, jql string, limit int) ([]Issue, error) {
	if limit <= 0 {
		limit = 10
	}
	q := url.Values{}
	q.Set("jql", jql)
	q.Set("maxResults", fmt.Sprintf("%d", limit))

	var out searchResponse
	if err := c.do(ctx, http.MethodGet, "/search?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	issues := make([]Issue, len(out.Issues))
	for i, w := range out.Issues {
		issues[i] = w.toIssue()
	}
	return issues, nil
}

// GetIssue fetches one issue by key.
func (c *Client) GetIssue(ctx context.Context, key string) (*Issue, error) {
	var out wireIssue
	if err := c.do(ctx, http.MethodGet, "/issue/"+url.PathEscape(key), nil, &out); err != nil {
		return nil, err
	}
	issue := out.toIssue()
	return &issue, nil
}

// CreateIssue creates an issue and returns it with the assigned key.
func (c *Client) CreateIssue(ctx context.Context, input CreateIssueInput) (*Issue, error) {
	fields := map[string]any{
		"project":   map[string]any{"key": input.ProjectKey},
		"summary":   input.Summary,
		"issuetype": map[string]any{"name": input.IssueType},
	}
	if input.Description != "" {
		fields["description"] = adfDoc(input.Description)
	}
	if input.ParentKey != "" {
		fields["parent"] = map[string]any{"key": input.ParentKey}
	}

	var out struct {
		Key string `json:"key"`
	}
	if err := c.do(ctx, http.MethodPost, "/issue", map[string]any{"fields": fields}, &out); err != nil {
		return nil, err
	}
	return &Issue{Key: out.Key, Summary: input.Summary, Type: input.IssueType}, nil
}

// UpdateIssue sets the given fields on an existing issue. String values for
// "description" are wrapped in the document format Jira expects.
func (c *Client) UpdateIssue(ctx context.Context, key string, fields map[string]any) error {
	body := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == "description" {
			if s, ok := v.(string); ok {
				body[k] = adfDoc(s)
				continue
			}
		}
		body[k] = v
	}
	return c.do(ctx, http.MethodPut, "/issue/"+url.PathEscape(key), map[string]any{"fields": body}, nil)
}

// TransitionIssue moves an issue to the named workflow status. The transition
// id is looked up by status name, case-insensitively; an unknown name is an
// error listing the legal targets.
func (c *Client) TransitionIssue(ctx context.Context, key, statusName string) error {
	var transitions struct {
		Transitions []struct {
			ID string `json:"id"`
			To struct {
				Name string `json:"name"`
			} `json:"to"`
			Name string `json:"name"`
		} `json:"transitions"`
	}
	path := "/issue/" + url.PathEscape(key) + "/transitions"
	if err := c.do(ctx, http.MethodGet, path, nil, &transitions); err != nil {
		return err
	}

	var id string
	var names []string
	for _, t := range transitions.Transitions {
		names = append(names, t.To.Name)
		if strings.EqualFold(t.To.Name, statusName) || strings.EqualFold(t.Name, statusName) {
			id = t.ID
			break
		}
	}
	if id == "" {
		return fmt.Errorf("no transition to %q from the current status of %s (available: %s)",
			statusName, key, strings.Join(names, ", "))
	}

	body := map[string]any{"transition": map[string]any{"id": id}}
	return c.do(ctx, http.MethodPost, path, body, nil)
}

// CreateMeta discovers the project's issue-type hierarchy.
func (c *Client) CreateMeta(ctx context.Context, projectKey string) (*steward.JiraSchema, error) {
	q := url.Values{}
	q.Set("projectKeys", projectKey)
	q.Set("expand", "projects.issuetypes")

	var out struct {
		Projects []struct {
			IssueTypes []struct {
				ID      string `json:"id"`
				Name    string `json:"name"`
				Subtask bool   `json:"subtask"`
			} `json:"issuetypes"`
		} `json:"projects"`
	}
	if err := c.do(ctx, http.MethodGet, "/issue/createmeta?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}

	schema := &steward.JiraSchema{ProjectKey: projectKey}
	if len(out.Projects) == 0 {
		return schema, nil
	}

	var parents []string
	for _, t := range out.Projects[0].IssueTypes {
		if !t.Subtask {
			parents = append(parents, t.Name)
		}
	}
	for _, t := range out.Projects[0].IssueTypes {
		it := steward.IssueType{ID: t.ID, Name: t.Name, Subtask: t.Subtask}
		if t.Subtask {
			it.ValidParents = parents
		}
		schema.Types = append(schema.Types, it)
	}
	return schema, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.email, c.apiToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return &steward.HTTPError{
			Provider:   "jira",
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// adfDoc wraps plain text in the Atlassian Document Format shell the v3 API
// requires for rich-text fields.
func adfDoc(text string) map[string]any {
	return map[string]any{
		"type":    "doc",
		"version": 1,
		"content": []any{
			map[string]any{
				"type": "paragraph",
				"content": []any{
					map[string]any{"type": "text", "text": text},
				},
			},
		},
	}
}

// flattenDoc extracts plain text from a description field, which may be a
// string (API v2) or an ADF document (API v3).
func flattenDoc(v any) string {
	switch d := v.(type) {
	case string:
		return d
	case map[string]any:
		var b strings.Builder
		collectText(d, &b)
		return strings.TrimSpace(b.String())
	}
	return ""
}

func collectText(node map[string]any, b *strings.Builder) {
	if t, ok := node["text"].(string); ok {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(t)
	}
	children, ok := node["content"].([]any)
	if !ok {
		return
	}
	for _, c := range children {
		if m, ok := c.(map[string]any); ok {
			collectText(m, b)
		}
	}
}
