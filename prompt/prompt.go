// Package prompt renders the tool-calling section of a system prompt from a
// tool catalog and the discovered Jira schema.
package prompt

import (
	"fmt"
	"strings"

	"github.com/stewardhq/steward"
	"github.com/stewardhq/steward/tools"
)

// Build renders the tool instructions injected into the system prompt.
// Jira-backed tools are omitted when no connection is configured; when no
// tools remain the result is "" and the caller skips the section entirely.
func Build(schema *steward.JiraSchema, defs []steward.ToolDefinition, jiraConnected bool) string {
	var available []steward.ToolDefinition
	for _, d := range defs {
		if tools.JiraBacked(d.Name) && !jiraConnected {
			continue
		}
		available = append(available, d)
	}
	if len(available) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("You can perform actions on behalf of the user by emitting tool calls.\n")
	b.WriteString("Available tools:\n\n")

	for _, d := range available {
		fmt.Fprintf(&b, "- %s: %s\n", d.Name, d.Description)
		if d.RequiresApproval {
			b.WriteString("  Requires user approval before execution.\n")
		}
		for _, p := range d.Params {
			writeParam(&b, p)
		}
	}

	b.WriteString("\nTo call a tool, emit a fenced block exactly like this:\n\n")
	b.WriteString("```tool_call\n")
	b.WriteString(`{"tool": "<tool name>", "args": {<arguments>}, "reason": "<one line explaining why>"}` + "\n")
	b.WriteString("```\n\n")
	b.WriteString("Emit one block per call. Only call tools listed above, and only when the user's request needs one.\n")

	if jiraConnected && schema != nil && len(schema.Types) > 0 {
		writeSchema(&b, schema)
	}

	return b.String()
}

func writeParam(b *strings.Builder, p steward.ToolParam) {
	fmt.Fprintf(b, "  - %s (%s", p.Name, p.Type)
	if p.Required {
		b.WriteString(", required")
	}
	b.WriteString(")")
	if p.Description != "" {
		b.WriteString(": " + p.Description)
	}
	if len(p.Enum) > 0 {
		fmt.Fprintf(b, " [one of: %s]", strings.Join(p.Enum, ", "))
	}
	b.WriteString("\n")
}

// writeSchema renders the project's issue-type hierarchy so generated
// create_jira_issue calls use valid type names and legal parents.
func writeSchema(b *strings.Builder, schema *steward.JiraSchema) {
	b.WriteString("\nJira issue types for this project:\n")
	for _, t := range schema.Types {
		fmt.Fprintf(b, "- %s", t.Name)
		if t.Subtask {
			b.WriteString(" (subtask; requires a parentKey")
			if len(t.ValidParents) > 0 {
				fmt.Fprintf(b, " of type %s", strings.Join(t.ValidParents, " or "))
			}
			b.WriteString(")")
		}
		b.WriteString("\n")
	}
	b.WriteString("Only use these issue type names when creating issues.\n")
}
