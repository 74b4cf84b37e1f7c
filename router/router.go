// Package router orchestrates one conversational turn: it tries the remote
// agent service, evaluates the result against a fallback policy, and when
// falling back assembles context, calls the model directly, extracts tool
// calls, and gates side effects behind pending actions.
package router

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stewardhq/steward"
	"github.com/stewardhq/steward/executor"
	"github.com/stewardhq/steward/llm"
	"github.com/stewardhq/steward/toolcall"
	"github.com/stewardhq/steward/tools"
)

// Fixed sampling parameters for the local fallback generation.
const (
	genTemperature = 0.7
	genMaxTokens   = 2000
)

// Identity attributed to locally generated responses.
const (
	localAgentID   = "steward-local"
	localAgentName = "Steward"
)

// ProviderFactory constructs a provider from per-request configuration.
type ProviderFactory func(ctx context.Context, cfg steward.LLMConfig) (steward.Provider, error)

// Metrics receives counter hooks from the router. Nil fields are skipped, so
// callers only wire what they observe.
type Metrics struct {
	Fallback      func(reason string)
	ProviderError func(provider string)
	ToolExecution func(tool, status string)
}

func (m Metrics) fallback(reason string) {
	if m.Fallback != nil {
		m.Fallback(reason)
	}
}

func (m Metrics) providerError(provider string) {
	if m.ProviderError != nil {
		m.ProviderError(provider)
	}
}

func (m Metrics) toolExecution(tool, status string) {
	if m.ToolExecution != nil {
		m.ToolExecution(tool, status)
	}
}

// Router is the top-level request handler. It proposes pending actions and
// keeps them until resolved, but the client-owned ledger remains the sole
// authority on displayed status.
type Router struct {
	remote    *RemoteClient
	policy    FallbackPolicy
	registry  *tools.Registry
	exec      *executor.Executor
	providers ProviderFactory
	log       zerolog.Logger
	metrics   Metrics

	// Proposed actions awaiting resolution, keyed by id. The server handles
	// requests concurrently, so this map needs its own lock.
	mu      sync.Mutex
	pending map[string]steward.PendingAction
}

// Option configures the router.
type Option func(*Router)

// WithRemote sets the remote agent client. A nil client disables the remote
// attempt entirely.
func WithRemote(c *RemoteClient) Option {
	return func(r *Router) { r.remote = c }
}

// WithPolicy sets the fallback policy for nominally successful remote
// responses.
func WithPolicy(p FallbackPolicy) Option {
	return func(r *Router) { r.policy = p }
}

// WithProviderFactory replaces the provider factory.
func WithProviderFactory(f ProviderFactory) Option {
	return func(r *Router) { r.providers = f }
}

// WithLogger sets the structured logger.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Router) { r.log = log }
}

// WithMetrics sets the metrics hooks.
func WithMetrics(m Metrics) Option {
	return func(r *Router) { r.metrics = m }
}

// New creates a router with the default tool catalog, executor, fallback
// policy, and remote client.
func New(opts ...Option) *Router {
	r := &Router{
		remote:    NewRemoteClient(""),
		policy:    AllToolsFailed,
		registry:  tools.Default(),
		exec:      executor.New(),
		providers: llm.New,
		log:       zerolog.Nop(),
		pending:   make(map[string]steward.PendingAction),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle processes one chat request to completion.
func (r *Router) Handle(ctx context.Context, req steward.ChatRequest) (*steward.ChatResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.PendingActionID != "" {
		return r.resolveAction(ctx, req), nil
	}

	if r.remote != nil {
		remote, err := r.remote.Send(ctx, req)
		switch {
		case err != nil:
			r.log.Debug().Err(err).Msg("remote agent unavailable, falling back")
			r.metrics.fallback("remote_error")
		case r.policy(remote, req):
			r.log.Debug().Msg("remote response rejected by fallback policy")
			r.metrics.fallback("policy")
		default:
			return remote, nil
		}
	}

	return r.fallback(ctx, req)
}

// fallback is the local path: assemble context, generate, parse, gate.
func (r *Router) fallback(ctx context.Context, req steward.ChatRequest) (*steward.ChatResponse, error) {
	systemPrompt, suggestions := r.buildContext(ctx, req)

	provider, err := r.providers(ctx, req.Settings.LLM)
	if err != nil {
		return nil, err
	}

	temp := genTemperature
	messages := append(steward.TruncateHistory(req.History),
		steward.Message{Role: steward.RoleUser, Content: req.Message})
	raw, err := provider.Chat(ctx, steward.Request{
		SystemPrompt: systemPrompt,
		Messages:     messages,
		MaxTokens:    genMaxTokens,
		Temperature:  &temp,
	})
	if err != nil {
		r.metrics.providerError(req.Settings.LLM.Provider)
		r.log.Error().Err(err).Str("provider", req.Settings.LLM.Provider).Msg("provider call failed")
		return nil, fmt.Errorf("llm provider %s: %w", req.Settings.LLM.Provider, err)
	}

	parsed := toolcall.Parse(raw)
	records, pendings := r.gateCalls(ctx, parsed.Calls, req)

	resp := r.newResponse(req)
	resp.Response = parsed.Clean
	resp.ToolsExecuted = records
	resp.PendingActions = pendings
	if suggestions != nil {
		resp.SuggestedNextSteps = suggestions
	}
	return resp, nil
}

// gateCalls executes read-only calls immediately when the tracker connection
// allows it and converts approval-required calls into pending actions. Write
// calls are never executed in this pass.
func (r *Router) gateCalls(ctx context.Context, calls []steward.ToolCall, req steward.ChatRequest) ([]steward.ExecutionRecord, []steward.PendingAction) {
	records := []steward.ExecutionRecord{}
	pendings := []steward.PendingAction{}
	connected := req.Settings.Jira.Configured()

	for _, call := range calls {
		def, ok := r.registry.Lookup(call.Tool)
		if !ok {
			records = append(records, steward.ExecutionRecord{
				Tool:      call.Tool,
				Args:      call.Args,
				Result:    "Unknown tool: " + call.Tool,
				Status:    steward.ExecutionFailed,
				Timestamp: time.Now(),
			})
			r.metrics.toolExecution(call.Tool, string(steward.ExecutionFailed))
			continue
		}

		if def.RequiresApproval {
			action := steward.PendingAction{
				ID:          uuid.NewString(),
				AgentID:     r.agentID(req),
				Tool:        call.Tool,
				Args:        call.Args,
				Description: describeAction(def, call),
				Status:      steward.ActionPending,
				CreatedAt:   time.Now(),
			}
			r.remember(action)
			pendings = append(pendings, action)
			continue
		}

		if tools.JiraBacked(call.Tool) && !connected {
			records = append(records, steward.ExecutionRecord{
				Tool:      call.Tool,
				Args:      call.Args,
				Result:    "Jira is not connected",
				Status:    steward.ExecutionBlocked,
				Timestamp: time.Now(),
			})
			r.metrics.toolExecution(call.Tool, string(steward.ExecutionBlocked))
			continue
		}

		res := r.exec.Execute(ctx, call.Tool, call.Args, req.Settings.Jira)
		record := steward.ExecutionRecord{
			Tool:      call.Tool,
			Args:      call.Args,
			Status:    steward.ExecutionExecuted,
			Result:    res.Result,
			Timestamp: time.Now(),
		}
		if !res.Success {
			record.Status = steward.ExecutionFailed
			record.Result = res.Err
		}
		records = append(records, record)
		r.metrics.toolExecution(call.Tool, string(record.Status))
	}

	return records, pendings
}

// resolveAction handles an approve/reject decision for a previously proposed
// action. The outcome is returned as data for the client ledger to apply.
func (r *Router) resolveAction(ctx context.Context, req steward.ChatRequest) *steward.ChatResponse {
	resp := r.newResponse(req)

	action, ok := r.take(req.PendingActionID)
	if !ok {
		resp.Response = "I couldn't find that pending action. It may have already been resolved."
		return resp
	}

	if req.PendingActionDecision == steward.DecisionReject {
		action.Status = steward.ActionRejected
		resp.Response = fmt.Sprintf("Okay, I won't run %s.", action.Tool)
		resp.PendingActions = append(resp.PendingActions, action)
		return resp
	}

	res := r.exec.Execute(ctx, action.Tool, action.Args, req.Settings.Jira)
	record := steward.ExecutionRecord{
		Tool:      action.Tool,
		Args:      action.Args,
		Timestamp: time.Now(),
	}
	if res.Success {
		action.Status = steward.ActionExecuted
		action.Result = res.Result
		record.Status = steward.ExecutionExecuted
		record.Result = res.Result
		resp.Response = res.Result
	} else {
		action.Status = steward.ActionExecutionFailed
		action.Result = res.Err
		record.Status = steward.ExecutionFailed
		record.Result = res.Err
		resp.Response = fmt.Sprintf("Running %s failed: %s", action.Tool, res.Err)
	}
	r.metrics.toolExecution(action.Tool, string(record.Status))

	resp.ToolsExecuted = append(resp.ToolsExecuted, record)
	resp.PendingActions = append(resp.PendingActions, action)
	return resp
}

func (r *Router) newResponse(req steward.ChatRequest) *steward.ChatResponse {
	return &steward.ChatResponse{
		AgentID:            r.agentID(req),
		AgentName:          localAgentName,
		ToolsExecuted:      []steward.ExecutionRecord{},
		PendingActions:     []steward.PendingAction{},
		SuggestedNextSteps: []steward.Suggestion{},
		RAGContext:         []string{},
		Sources:            []string{},
	}
}

func (r *Router) agentID(req steward.ChatRequest) string {
	if req.AgentID != "" {
		return req.AgentID
	}
	return localAgentID
}

func (r *Router) remember(action steward.PendingAction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[action.ID] = action
}

func (r *Router) take(id string) (steward.PendingAction, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	action, ok := r.pending[id]
	if ok {
		delete(r.pending, id)
	}
	return action, ok
}

// describeAction renders a one-line human description of what approving the
// action will do.
func describeAction(def steward.ToolDefinition, call steward.ToolCall) string {
	subject := ""
	for _, key := range []string{"summary", "title", "key", "id"} {
		if s, ok := call.Args[key].(string); ok && s != "" {
			subject = s
			break
		}
	}
	if subject == "" {
		return def.Description
	}

	switch call.Tool {
	case "create_jira_issue":
		return fmt.Sprintf("Create Jira issue %q", subject)
	case "update_jira_issue":
		return fmt.Sprintf("Update Jira issue %s", subject)
	case "transition_jira_issue":
		status, _ := call.Args["status"].(string)
		return fmt.Sprintf("Move Jira issue %s to %s", subject, status)
	case "create_initiative":
		return fmt.Sprintf("Create initiative %q", subject)
	case "update_initiative":
		return fmt.Sprintf("Update initiative %s", subject)
	case "create_risk":
		return fmt.Sprintf("Record risk %q", subject)
	case "add_roadmap_item":
		return fmt.Sprintf("Add %q to the roadmap", subject)
	}
	return fmt.Sprintf("%s: %s", def.Description, subject)
}

// IsValidationError reports whether err is an invalid request rather than a
// downstream failure, so HTTP callers can pick the right status code.
func IsValidationError(err error) bool {
	return errors.Is(err, steward.ErrValidation)
}
