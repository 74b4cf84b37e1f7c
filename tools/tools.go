// Package tools holds the static catalog of actions the assistant may
// propose. The registry only declares that a tool exists and whether it
// needs approval; how a tool runs is the executor's concern.
package tools

import "github.com/stewardhq/steward"

// Registry is an ordered, immutable list of tool definitions looked up by
// exact name. It performs no filtering by connection state.
type Registry struct {
	defs  []steward.ToolDefinition
	index map[string]int
}

// NewRegistry builds a registry from the given definitions. Order is
// preserved. Duplicate names panic: the catalog is assembled once at process
// start from literals, so a duplicate is a programming error.
func NewRegistry(defs []steward.ToolDefinition) *Registry {
	r := &Registry{
		defs:  defs,
		index: make(map[string]int, len(defs)),
	}
	for i, d := range defs {
		if _, dup := r.index[d.Name]; dup {
			panic("tools: duplicate tool name " + d.Name)
		}
		r.index[d.Name] = i
	}
	return r
}

// All returns the definitions in catalog order. Callers must not modify the
// returned slice.
func (r *Registry) All() []steward.ToolDefinition {
	return r.defs
}

// Lookup returns the definition for name, if present.
func (r *Registry) Lookup(name string) (steward.ToolDefinition, bool) {
	i, ok := r.index[name]
	if !ok {
		return steward.ToolDefinition{}, false
	}
	return r.defs[i], true
}

// Names returns the tool names in catalog order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.defs))
	for i, d := range r.defs {
		names[i] = d.Name
	}
	return names
}

// JiraBacked reports whether the named tool needs a Jira connection before
// it can be advertised or executed.
func JiraBacked(name string) bool {
	switch name {
	case "search_jira_issues", "get_jira_issue", "create_jira_issue",
		"update_jira_issue", "transition_jira_issue":
		return true
	}
	return false
}

// Default returns the standard Steward catalog. Read-only Jira lookups are
// the only tools that skip the approval gate; everything that writes to Jira
// or the local store requires explicit user approval.
func Default() *Registry {
	return NewRegistry([]steward.ToolDefinition{
		{
			Name:        "search_jira_issues",
			Description: "Search Jira issues with a JQL query and return matching summaries.",
			Params: []steward.ToolParam{
				{Name: "jql", Type: "string", Description: "JQL query, e.g. 'project = MDATA AND status = \"In Progress\"'", Required: true},
				{Name: "limit", Type: "number", Description: "Maximum results to return (default 10)"},
			},
		},
		{
			Name:        "get_jira_issue",
			Description: "Fetch one Jira issue by key, including status, assignee and description.",
			Params: []steward.ToolParam{
				{Name: "key", Type: "string", Description: "Issue key, e.g. MDATA-42", Required: true},
			},
		},
		{
			Name:             "create_jira_issue",
			Description:      "Create a new Jira issue in the connected project.",
			RequiresApproval: true,
			Params: []steward.ToolParam{
				{Name: "summary", Type: "string", Description: "Issue summary line", Required: true},
				{Name: "issueType", Type: "string", Description: "Issue type name; must be one of the project's valid types", Required: true},
				{Name: "description", Type: "string", Description: "Issue description body"},
				{Name: "parentKey", Type: "string", Description: "Parent issue key, required for subtask types"},
			},
		},
		{
			Name:             "update_jira_issue",
			Description:      "Update fields on an existing Jira issue.",
			RequiresApproval: true,
			Params: []steward.ToolParam{
				{Name: "key", Type: "string", Description: "Issue key to update", Required: true},
				{Name: "summary", Type: "string", Description: "New summary line"},
				{Name: "description", Type: "string", Description: "New description body"},
			},
		},
		{
			Name:             "transition_jira_issue",
			Description:      "Move a Jira issue to a new workflow status.",
			RequiresApproval: true,
			Params: []steward.ToolParam{
				{Name: "key", Type: "string", Description: "Issue key to transition", Required: true},
				{Name: "status", Type: "string", Description: "Target status name, e.g. 'In Progress'", Required: true},
			},
		},
		{
			Name:             "create_initiative",
			Description:      "Create a new product initiative in the local workspace.",
			RequiresApproval: true,
			Params: []steward.ToolParam{
				{Name: "title", Type: "string", Description: "Initiative title", Required: true},
				{Name: "description", Type: "string", Description: "What the initiative covers"},
				{Name: "stage", Type: "string", Description: "Lifecycle stage", Enum: []string{"idea", "discovery", "validation", "definition", "approved"}},
			},
		},
		{
			Name:             "update_initiative",
			Description:      "Update an existing initiative's title, description or stage.",
			RequiresApproval: true,
			Params: []steward.ToolParam{
				{Name: "id", Type: "string", Description: "Initiative id", Required: true},
				{Name: "title", Type: "string", Description: "New title"},
				{Name: "description", Type: "string", Description: "New description"},
				{Name: "stage", Type: "string", Description: "New lifecycle stage", Enum: []string{"idea", "discovery", "validation", "definition", "approved"}},
			},
		},
		{
			Name:             "create_risk",
			Description:      "Record a new product risk in the local workspace.",
			RequiresApproval: true,
			Params: []steward.ToolParam{
				{Name: "title", Type: "string", Description: "Risk title", Required: true},
				{Name: "severity", Type: "string", Description: "Risk severity", Enum: []string{"low", "medium", "high", "critical"}},
			},
		},
		{
			Name:             "add_roadmap_item",
			Description:      "Add an item to the product roadmap.",
			RequiresApproval: true,
			Params: []steward.ToolParam{
				{Name: "title", Type: "string", Description: "Roadmap item title", Required: true},
				{Name: "quarter", Type: "string", Description: "Target quarter, e.g. Q3 2026"},
			},
		},
	})
}
