package steward

import "time"

// ToolParam describes one parameter in a tool's ordered schema.
type ToolParam struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Required    bool     `json:"required"`
	Enum        []string `json:"enum,omitempty"`
}

// ToolDefinition is a declarative catalog entry for a callable action.
// Definitions are immutable: defined once at process start, never mutated.
// RequiresApproval=false is reserved for actions that only read state; every
// action with side effects on the external system or local store is true.
type ToolDefinition struct {
	Name             string      `json:"name"`
	Description      string      `json:"description"`
	Params           []ToolParam `json:"params"`
	RequiresApproval bool        `json:"requiresApproval"`
}

// ToolCall is a structured call request extracted from raw model output.
// It is not guaranteed to reference a valid ToolDefinition or to satisfy its
// schema; validation is the executor's responsibility.
type ToolCall struct {
	Tool   string         `json:"tool"`
	Args   map[string]any `json:"args,omitempty"`
	Reason string         `json:"reason,omitempty"`
}

// ExecutionStatus is the outcome class of a tool execution attempt.
type ExecutionStatus string

const (
	ExecutionExecuted ExecutionStatus = "executed"
	ExecutionPending  ExecutionStatus = "pending"
	ExecutionBlocked  ExecutionStatus = "blocked"
	ExecutionFailed   ExecutionStatus = "failed"
)

// ExecutionRecord is an append-only record of one tool execution attempt
// within a conversation turn. Never mutated after creation.
type ExecutionRecord struct {
	Tool      string          `json:"tool"`
	Args      map[string]any  `json:"args,omitempty"`
	Result    string          `json:"result,omitempty"`
	Status    ExecutionStatus `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
}

// StoreMutation describes a local store change a tool wants applied. The
// executor never mutates state itself; the caller outside this core applies
// the descriptor, keeping the executor free of any store dependency.
type StoreMutation struct {
	Kind    string         `json:"kind"`
	Payload map[string]any `json:"payload"`
}

// ExecResult is the uniform outcome shape for every tool execution.
type ExecResult struct {
	Success  bool           `json:"success"`
	Result   string         `json:"result,omitempty"`
	Err      string         `json:"error,omitempty"`
	Mutation *StoreMutation `json:"storeMutation,omitempty"`
}
