package steward

import "time"

// ActionStatus is the lifecycle state of a PendingAction.
type ActionStatus string

const (
	ActionPending  ActionStatus = "pending"
	ActionApproved ActionStatus = "approved"
	ActionRejected ActionStatus = "rejected"
	ActionExecuted ActionStatus = "executed"

	// ActionExecutionFailed is the terminal state for an action that was
	// approved but whose execution failed. Kept distinct from rejected so
	// a user decline and an external-system failure are never conflated.
	ActionExecutionFailed ActionStatus = "execution_failed"
)

// PendingAction is a write-capable tool call awaiting explicit user approval.
// The router only ever creates these; the client-side ledger is the sole
// writer of subsequent status transitions.
type PendingAction struct {
	ID          string         `json:"id"`
	AgentID     string         `json:"sourceAgentId"`
	Tool        string         `json:"toolName"`
	Args        map[string]any `json:"toolArguments,omitempty"`
	Description string         `json:"description"`
	Status      ActionStatus   `json:"status"`
	Result      string         `json:"result,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}
