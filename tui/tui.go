// Package tui provides a Bubble Tea chat client for the steward server. It
// owns the pending-action ledger: every status transition a user sees happens
// here, in the single-threaded Update loop, which also serializes approvals.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/stewardhq/steward"
)

// ChatFunc sends one chat request and blocks until the response arrives. It
// is typically a thin wrapper over the server's POST /api/chat, but tests
// supply their own.
type ChatFunc func(ctx context.Context, req steward.ChatRequest) (*steward.ChatResponse, error)

// Run creates and runs the Bubble Tea program. It blocks until the program
// exits; cancelling ctx quits it.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// ChatResponseMsg delivers a completed chat response to the model.
type ChatResponseMsg struct {
	Resp *steward.ChatResponse
	Err  error
}
