package router

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/stewardhq/steward"
	"github.com/stewardhq/steward/jira"
	"github.com/stewardhq/steward/prompt"
	"github.com/stewardhq/steward/stage"
)

// Snapshot caps keep the assembled prompt bounded no matter how large the
// caller's store grows.
const (
	maxInitiatives  = 8
	maxRisks        = 5
	maxRoadmapItems = 5
	maxMeetings     = 3
)

var issueKeyPattern = regexp.MustCompile(`\b[A-Z][A-Z0-9]+-\d+\b`)

const basePersona = "You are Steward, a product management assistant. " +
	"You help the user shape initiatives, manage risk, and keep their issue tracker accurate. " +
	"Be concise and concrete."

// buildContext assembles the system prompt for the local fallback path and
// returns the stage suggestions for the focused initiative, if any.
func (r *Router) buildContext(ctx context.Context, req steward.ChatRequest) (string, []steward.Suggestion) {
	connected := req.Settings.Jira.Configured()

	sections := []string{basePersona, integrationStatus(req.Settings.Jira)}

	var snapshot steward.Snapshot
	if req.Snapshot != nil {
		snapshot = *req.Snapshot
	}
	if s := renderSnapshot(snapshot); s != "" {
		sections = append(sections, s)
	}

	var schema *steward.JiraSchema
	if connected {
		schema = r.fetchSchema(ctx, req.Settings.Jira)
		if live := r.fetchLiveIssues(ctx, req); live != "" {
			sections = append(sections, live)
		}
	}

	if toolSection := prompt.Build(schema, r.registry.All(), connected); toolSection != "" {
		sections = append(sections, toolSection)
	}

	var suggestions []steward.Suggestion
	if focus := stage.DetectFocus(req.Message, snapshot.Initiatives); focus != nil {
		g := stage.Guidance(focus.Stage, focus.Title, focus.ID)
		if g.SystemPrompt != "" {
			sections = append(sections, g.SystemPrompt)
		}
		suggestions = g.Suggestions
	}

	return strings.Join(sections, "\n\n"), suggestions
}

func integrationStatus(js steward.JiraSettings) string {
	if !js.Configured() {
		return "Jira: not connected. Jira tools are unavailable; suggest connecting Jira when the user asks for tracker actions."
	}
	if js.ProjectKey != "" {
		return fmt.Sprintf("Jira: connected (project %s).", js.ProjectKey)
	}
	return "Jira: connected."
}

func renderSnapshot(s steward.Snapshot) string {
	var b strings.Builder

	if len(s.Initiatives) > 0 {
		b.WriteString("Current initiatives:\n")
		for _, in := range capped(s.Initiatives, maxInitiatives) {
			fmt.Fprintf(&b, "- %s (%s", in.Title, in.Stage)
			if in.JiraKey != "" {
				fmt.Fprintf(&b, ", %s", in.JiraKey)
			}
			fmt.Fprintf(&b, ") [id %s]\n", in.ID)
		}
	}
	if len(s.Risks) > 0 {
		b.WriteString("Open risks:\n")
		for _, risk := range capped(s.Risks, maxRisks) {
			fmt.Fprintf(&b, "- %s (%s)\n", risk.Title, risk.Severity)
		}
	}
	if len(s.Roadmap) > 0 {
		b.WriteString("Roadmap:\n")
		for _, item := range capped(s.Roadmap, maxRoadmapItems) {
			fmt.Fprintf(&b, "- %s (%s)\n", item.Title, item.Quarter)
		}
	}
	if len(s.Meetings) > 0 {
		b.WriteString("Recent meetings:\n")
		for _, m := range capped(s.Meetings, maxMeetings) {
			fmt.Fprintf(&b, "- %s (%s)\n", m.Title, m.Date)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func capped[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// mentionsJira reports whether the message uses tracker vocabulary worth a
// live fetch.
func mentionsJira(message, projectKey string) bool {
	lower := strings.ToLower(message)
	if strings.Contains(lower, "jira") || strings.Contains(lower, "issue") ||
		strings.Contains(lower, "ticket") || strings.Contains(lower, "sprint") {
		return true
	}
	if projectKey != "" && strings.Contains(lower, strings.ToLower(projectKey)) {
		return true
	}
	return issueKeyPattern.MatchString(message)
}

// fetchLiveIssues pulls recently updated issues when the message mentions
// tracker vocabulary. A fetch failure degrades to an inline note so the
// request still completes.
func (r *Router) fetchLiveIssues(ctx context.Context, req steward.ChatRequest) string {
	js := req.Settings.Jira
	if !mentionsJira(req.Message, js.ProjectKey) {
		return ""
	}

	client, err := r.newJira(js)
	if err != nil {
		return ""
	}
	jql := "ORDER BY updated DESC"
	if js.ProjectKey != "" {
		jql = fmt.Sprintf("project = %s ORDER BY updated DESC", js.ProjectKey)
	}
	issues, err := client.Search(ctx, jql, 5)
	if err != nil {
		r.log.Debug().Err(err).Msg("live jira fetch failed")
		return "(Live Jira data is currently unavailable.)"
	}
	if len(issues) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Recently updated Jira issues:\n")
	for _, issue := range issues {
		fmt.Fprintf(&b, "- %s: %s [%s]\n", issue.Key, issue.Summary, issue.Status)
	}
	return strings.TrimRight(b.String(), "\n")
}

// fetchSchema discovers the project's issue types for prompt constraints.
// Failure means no constraint section, nothing more.
func (r *Router) fetchSchema(ctx context.Context, js steward.JiraSettings) *steward.JiraSchema {
	if js.ProjectKey == "" {
		return nil
	}
	client, err := r.newJira(js)
	if err != nil {
		return nil
	}
	schema, err := client.CreateMeta(ctx, js.ProjectKey)
	if err != nil {
		r.log.Debug().Err(err).Msg("jira schema discovery failed")
		return nil
	}
	return schema
}

func (r *Router) newJira(js steward.JiraSettings) (*jira.Client, error) {
	return jira.New(js)
}
