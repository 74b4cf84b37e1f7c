// Package executor runs approved or auto-executable tool calls. Every
// outcome, including failure, is data: handlers never return Go errors to the
// caller, so one bad tool call cannot abort the conversational turn.
package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/stewardhq/steward"
	"github.com/stewardhq/steward/jira"
)

// HandlerFunc executes one tool call. Jira settings arrive per call because
// credentials are per-request, never process state.
type HandlerFunc func(ctx context.Context, args map[string]any, settings steward.JiraSettings) steward.ExecResult

// Executor dispatches tool calls to registered handlers by exact name.
type Executor struct {
	handlers map[string]HandlerFunc
}

// New returns an executor with handlers for the default tool catalog.
func New() *Executor {
	e := &Executor{handlers: make(map[string]HandlerFunc)}
	e.handlers["search_jira_issues"] = searchJiraIssues
	e.handlers["get_jira_issue"] = getJiraIssue
	e.handlers["create_jira_issue"] = createJiraIssue
	e.handlers["update_jira_issue"] = updateJiraIssue
	e.handlers["transition_jira_issue"] = transitionJiraIssue
	e.handlers["create_initiative"] = localMutation("create_initiative", "Created initiative")
	e.handlers["update_initiative"] = localMutation("update_initiative", "Updated initiative")
	e.handlers["create_risk"] = localMutation("create_risk", "Recorded risk")
	e.handlers["add_roadmap_item"] = localMutation("add_roadmap_item", "Added roadmap item")
	return e
}

// Names returns the registered tool names, for drift checks against the
// catalog.
func (e *Executor) Names() []string {
	names := make([]string, 0, len(e.handlers))
	for name := range e.handlers {
		names = append(names, name)
	}
	return names
}

// Execute runs the named tool. An unregistered name is a failed result, not
// an error.
func (e *Executor) Execute(ctx context.Context, name string, args map[string]any, settings steward.JiraSettings) steward.ExecResult {
	handler, ok := e.handlers[name]
	if !ok {
		return steward.ExecResult{Err: "Unknown tool: " + name}
	}
	return handler(ctx, args, settings)
}

// localMutation builds a handler for a tool whose only effect is a store
// change applied by the caller.
func localMutation(kind, verb string) HandlerFunc {
	return func(ctx context.Context, args map[string]any, _ steward.JiraSettings) steward.ExecResult {
		title := argString(args, "title")
		if title == "" {
			title = argString(args, "id")
		}
		result := verb
		if title != "" {
			result = fmt.Sprintf("%s %q", verb, title)
		}
		return steward.ExecResult{
			Success: true,
			Result:  result,
			Mutation: &steward.StoreMutation{
				Kind:    kind,
				Payload: args,
			},
		}
	}
}

func searchJiraIssues(ctx context.Context, args map[string]any, settings steward.JiraSettings) steward.ExecResult {
	client, err := jira.New(settings)
	if err != nil {
		return failure(err)
	}
	jql := argString(args, "jql")
	if jql == "" {
		return steward.ExecResult{Err: "search_jira_issues requires a jql argument"}
	}
	issues, err := client.Search(ctx, jql, argInt(args, "limit"))
	if err != nil {
		return failure(err)
	}
	if len(issues) == 0 {
		return steward.ExecResult{Success: true, Result: "No issues matched."}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d issue(s):\n", len(issues))
	for _, issue := range issues {
		fmt.Fprintf(&b, "- %s: %s", issue.Key, issue.Summary)
		if issue.Status != "" {
			fmt.Fprintf(&b, " [%s]", issue.Status)
		}
		b.WriteString("\n")
	}
	return steward.ExecResult{Success: true, Result: strings.TrimRight(b.String(), "\n")}
}

func getJiraIssue(ctx context.Context, args map[string]any, settings steward.JiraSettings) steward.ExecResult {
	client, err := jira.New(settings)
	if err != nil {
		return failure(err)
	}
	key := argString(args, "key")
	if key == "" {
		return steward.ExecResult{Err: "get_jira_issue requires a key argument"}
	}
	issue, err := client.GetIssue(ctx, key)
	if err != nil {
		return failure(err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", issue.Key, issue.Summary)
	if issue.Status != "" {
		fmt.Fprintf(&b, "\nStatus: %s", issue.Status)
	}
	if issue.Assignee != "" {
		fmt.Fprintf(&b, "\nAssignee: %s", issue.Assignee)
	}
	if issue.Description != "" {
		fmt.Fprintf(&b, "\n%s", issue.Description)
	}
	return steward.ExecResult{Success: true, Result: b.String()}
}

func createJiraIssue(ctx context.Context, args map[string]any, settings steward.JiraSettings) steward.ExecResult {
	client, err := jira.New(settings)
	if err != nil {
		return failure(err)
	}
	input := jira.CreateIssueInput{
		ProjectKey:  settings.ProjectKey,
		Summary:     argString(args, "summary"),
		IssueType:   argString(args, "issueType"),
		Description: argString(args, "description"),
		ParentKey:   argString(args, "parentKey"),
	}
	if input.Summary == "" || input.IssueType == "" {
		return steward.ExecResult{Err: "create_jira_issue requires summary and issueType arguments"}
	}
	issue, err := client.CreateIssue(ctx, input)
	if err != nil {
		return failure(err)
	}
	return steward.ExecResult{Success: true, Result: fmt.Sprintf("Created %s: %s", issue.Key, issue.Summary)}
}

func updateJiraIssue(ctx context.Context, args map[string]any, settings steward.JiraSettings) steward.ExecResult {
	client, err := jira.New(settings)
	if err != nil {
		return failure(err)
	}
	key := argString(args, "key")
	if key == "" {
		return steward.ExecResult{Err: "update_jira_issue requires a key argument"}
	}
	fields := make(map[string]any)
	for _, f := range []string{"summary", "description"} {
		if v := argString(args, f); v != "" {
			fields[f] = v
		}
	}
	if len(fields) == 0 {
		return steward.ExecResult{Err: "update_jira_issue requires at least one field to change"}
	}
	if err := client.UpdateIssue(ctx, key, fields); err != nil {
		return failure(err)
	}
	return steward.ExecResult{Success: true, Result: "Updated " + key}
}

func transitionJiraIssue(ctx context.Context, args map[string]any, settings steward.JiraSettings) steward.ExecResult {
	client, err := jira.New(settings)
	if err != nil {
		return failure(err)
	}
	key := argString(args, "key")
	status := argString(args, "status")
	if key == "" || status == "" {
		return steward.ExecResult{Err: "transition_jira_issue requires key and status arguments"}
	}
	if err := client.TransitionIssue(ctx, key, status); err != nil {
		return failure(err)
	}
	return steward.ExecResult{Success: true, Result: fmt.Sprintf("Moved %s to %s", key, status)}
}

func failure(err error) steward.ExecResult {
	return steward.ExecResult{Err: err.Error()}
}

func argString(args map[string]any, key string) string {
	if s, ok := args[key].(string); ok {
		return s
	}
	return ""
}

func argInt(args map[string]any, key string) int {
	// JSON numbers decode to float64.
	if f, ok := args[key].(float64); ok {
		return int(f)
	}
	return 0
}
