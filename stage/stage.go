// Package stage tailors the assistant's advisory behavior to an
// initiative's lifecycle stage and matches incoming messages to a focused
// initiative.
package stage

import (
	"fmt"

	"github.com/stewardhq/steward"
)

// Lifecycle stages. Unrecognized stages get empty guidance rather than an
// error; Guidance is total over all strings.
const (
	Idea       = "idea"
	Discovery  = "discovery"
	Validation = "validation"
	Definition = "definition"
	Approved   = "approved"
)

// Guidance returns stage-specific system prompt text and suggested follow-up
// actions for the given initiative. Pure function of its inputs.
func Guidance(stage, title, id string) steward.StageGuidance {
	switch stage {
	case Idea:
		return steward.StageGuidance{
			SystemPrompt: fmt.Sprintf(
				"The user is focused on %q (id %s), which is at the idea stage. "+
					"Your role is to pressure-test the idea before anything is built: help the user "+
					"validate the problem, and search for duplicate or overlapping work first. "+
					"Prefer search_jira_issues and get_jira_issue to check for existing issues; "+
					"discourage creating Jira issues this early.", title, id),
			Suggestions: []steward.Suggestion{
				{Text: "Search Jira for similar work", Prompt: fmt.Sprintf("Search Jira for existing issues similar to %q", title), Icon: "search"},
				{Text: "Sharpen the problem statement", Prompt: fmt.Sprintf("Help me write a crisp problem statement for %q", title), Icon: "edit"},
			},
		}
	case Discovery:
		return steward.StageGuidance{
			SystemPrompt: fmt.Sprintf(
				"The user is focused on %q (id %s), which is in discovery. "+
					"Help them map the problem space: identify affected users, open questions, and risks. "+
					"Reading tools are appropriate; suggest create_risk for risks the discussion surfaces.", title, id),
			Suggestions: []steward.Suggestion{
				{Text: "List open questions", Prompt: fmt.Sprintf("What open questions should discovery answer for %q?", title), Icon: "help"},
				{Text: "Record a risk", Prompt: fmt.Sprintf("Record the biggest risk we discussed for %q", title), Icon: "warning"},
			},
		}
	case Validation:
		return steward.StageGuidance{
			SystemPrompt: fmt.Sprintf(
				"The user is focused on %q (id %s), which is in validation. "+
					"Help them design experiments and success criteria that prove or kill the idea cheaply. "+
					"Do not propose issue creation yet; the initiative has not been approved.", title, id),
			Suggestions: []steward.Suggestion{
				{Text: "Draft success criteria", Prompt: fmt.Sprintf("Draft measurable success criteria for validating %q", title), Icon: "target"},
			},
		}
	case Definition:
		return steward.StageGuidance{
			SystemPrompt: fmt.Sprintf(
				"The user is focused on %q (id %s), which is in definition. "+
					"Help them decompose the initiative into concrete, estimable work. "+
					"Proposing create_jira_issue calls for well-scoped pieces is appropriate here.", title, id),
			Suggestions: []steward.Suggestion{
				{Text: "Break into Jira issues", Prompt: fmt.Sprintf("Break %q down into Jira issues", title), Icon: "list"},
				{Text: "Add to roadmap", Prompt: fmt.Sprintf("Add %q to the roadmap", title), Icon: "map"},
			},
		}
	case Approved:
		return steward.StageGuidance{
			SystemPrompt: fmt.Sprintf(
				"The user is focused on %q (id %s), which is approved for delivery. "+
					"Help them track execution: use search_jira_issues and get_jira_issue for status, "+
					"create_jira_issue for newly discovered work, and transition_jira_issue to keep the board accurate.", title, id),
			Suggestions: []steward.Suggestion{
				{Text: "Check delivery status", Prompt: fmt.Sprintf("What's the current Jira status of work under %q?", title), Icon: "chart"},
				{Text: "Create follow-up issue", Prompt: fmt.Sprintf("Create a Jira issue for the next piece of %q", title), Icon: "plus"},
			},
		}
	default:
		return steward.StageGuidance{}
	}
}
