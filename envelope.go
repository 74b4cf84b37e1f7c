package steward

import (
	"fmt"
	"strings"
)

// LLMConfig selects and configures a provider for one request. Credentials
// arrive per-request in settings, never from the environment.
type LLMConfig struct {
	Provider string `json:"provider"`
	APIKey   string `json:"apiKey,omitempty"`
	Endpoint string `json:"apiEndpoint,omitempty"`
	Model    string `json:"model,omitempty"`
}

// JiraSettings holds per-request credentials for the Jira boundary client.
type JiraSettings struct {
	BaseURL    string `json:"baseUrl,omitempty"`
	Email      string `json:"email,omitempty"`
	APIToken   string `json:"apiToken,omitempty"`
	ProjectKey string `json:"projectKey,omitempty"`
}

// Configured reports whether a usable Jira connection is present.
func (j JiraSettings) Configured() bool {
	return j.BaseURL != "" && j.Email != "" && j.APIToken != ""
}

// Settings carries the per-request provider and integration configuration.
type Settings struct {
	LLM  LLMConfig    `json:"llm"`
	Jira JiraSettings `json:"jira"`
}

// Initiative is a product initiative in the local store.
type Initiative struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Stage       string `json:"stage,omitempty"`
	JiraKey     string `json:"jiraKey,omitempty"`
	Description string `json:"description,omitempty"`
}

// Risk is a tracked product risk.
type Risk struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Severity string `json:"severity,omitempty"`
	Status   string `json:"status,omitempty"`
}

// RoadmapItem is one entry on the product roadmap.
type RoadmapItem struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Quarter string `json:"quarter,omitempty"`
	Status  string `json:"status,omitempty"`
}

// Meeting is a recorded meeting summary.
type Meeting struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Date    string `json:"date,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// Snapshot is the caller-supplied view of current domain entities used for
// prompt context assembly. Nil slices are fine.
type Snapshot struct {
	Initiatives []Initiative  `json:"initiatives,omitempty"`
	Risks       []Risk        `json:"risks,omitempty"`
	Roadmap     []RoadmapItem `json:"roadmap,omitempty"`
	Meetings    []Meeting     `json:"meetings,omitempty"`
}

// IssueType is one node of the discovered Jira issue-type hierarchy.
type IssueType struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Subtask      bool     `json:"subtask"`
	ValidParents []string `json:"validParents,omitempty"`
}

// JiraSchema is the structural constraint set discovered from a connected
// Jira project, used to keep generated tool calls valid.
type JiraSchema struct {
	ProjectKey string      `json:"projectKey,omitempty"`
	Types      []IssueType `json:"types"`
}

// Decision values for resolving a previously proposed action.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// ChatRequest is the inbound envelope for one conversational turn.
type ChatRequest struct {
	Message  string    `json:"message"`
	History  []Message `json:"history,omitempty"`
	Settings Settings  `json:"settings"`
	Snapshot *Snapshot `json:"storeData,omitempty"`
	AgentID  string    `json:"agentId,omitempty"`

	// Set only when resolving a previously proposed action.
	PendingActionID       string `json:"pendingActionId,omitempty"`
	PendingActionDecision string `json:"pendingActionDecision,omitempty"`
}

// Validate checks the envelope before any processing. A missing message is an
// invalid request, distinct from any downstream connectivity failure.
func (r ChatRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" && r.PendingActionID == "" {
		return fmt.Errorf("message is required: %w", ErrValidation)
	}
	if r.PendingActionID != "" {
		switch r.PendingActionDecision {
		case DecisionApprove, DecisionReject:
		default:
			return fmt.Errorf("pendingActionDecision must be %q or %q: %w",
				DecisionApprove, DecisionReject, ErrValidation)
		}
	}
	return nil
}

// ChatResponse is the outbound envelope for one conversational turn.
// SuggestedNextSteps, RAGContext and Sources are always non-nil; the latter
// two stay empty on non-knowledge-base paths.
type ChatResponse struct {
	Response           string            `json:"response"`
	AgentID            string            `json:"agentId"`
	AgentName          string            `json:"agentName"`
	ToolsExecuted      []ExecutionRecord `json:"toolsExecuted"`
	PendingActions     []PendingAction   `json:"pendingActions"`
	SuggestedNextSteps []Suggestion      `json:"suggestedNextSteps"`
	RAGContext         []string          `json:"ragContext"`
	Sources            []string          `json:"sources"`
}
