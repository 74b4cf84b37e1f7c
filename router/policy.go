package router

import "github.com/stewardhq/steward"

// FallbackPolicy decides whether a nominally successful remote response is
// discarded in favor of the local fallback. The observed systems disagree on
// the exact condition, so it is a named parameter rather than a fixed rule.
type FallbackPolicy func(remote *RemoteResponse, req steward.ChatRequest) bool

// AllToolsFailed falls back when the remote executed at least one tool and
// every one of them failed. This is the default policy.
func AllToolsFailed(remote *RemoteResponse, _ steward.ChatRequest) bool {
	if len(remote.ToolsExecuted) == 0 {
		return false
	}
	for _, rec := range remote.ToolsExecuted {
		if rec.Status != steward.ExecutionFailed {
			return false
		}
	}
	return true
}

// AnyFailedNoneSucceeded falls back when at least one tool failed and none
// completed successfully.
func AnyFailedNoneSucceeded(remote *RemoteResponse, _ steward.ChatRequest) bool {
	var failed, succeeded bool
	for _, rec := range remote.ToolsExecuted {
		switch rec.Status {
		case steward.ExecutionFailed:
			failed = true
		case steward.ExecutionExecuted:
			succeeded = true
		}
	}
	return failed && !succeeded
}

// NoJiraConnection falls back whenever the request carries no configured
// Jira connection, on the theory that the remote agent is only worth its
// latency when it can reach the tracker.
func NoJiraConnection(_ *RemoteResponse, req steward.ChatRequest) bool {
	return !req.Settings.Jira.Configured()
}
