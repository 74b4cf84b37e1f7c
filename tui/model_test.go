package tui_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stewardhq/steward"
	"github.com/stewardhq/steward/history"
	"github.com/stewardhq/steward/tui"
)

func emptyResponse() *steward.ChatResponse {
	return &steward.ChatResponse{
		ToolsExecuted:      []steward.ExecutionRecord{},
		PendingActions:     []steward.PendingAction{},
		SuggestedNextSteps: []steward.Suggestion{},
		RAGContext:         []string{},
		Sources:            []string{},
	}
}

func echoChat(ctx context.Context, req steward.ChatRequest) (*steward.ChatResponse, error) {
	resp := emptyResponse()
	resp.Response = "echo: " + req.Message
	return resp, nil
}

func initModel(t *testing.T, send tui.ChatFunc, session *history.Session) tui.Model {
	t.Helper()
	m := tui.New(send, session, steward.Settings{}, steward.DefaultTheme())
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model, ok := updated.(tui.Model)
	require.True(t, ok)
	return model
}

// runCmds executes a command tree and returns the produced messages,
// flattening batches.
func runCmds(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmds(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// chatResponseFrom executes cmd and returns the ChatResponseMsg it produced.
func chatResponseFrom(t *testing.T, cmd tea.Cmd) tui.ChatResponseMsg {
	t.Helper()
	for _, msg := range runCmds(cmd) {
		if resp, ok := msg.(tui.ChatResponseMsg); ok {
			return resp
		}
	}
	t.Fatal("no ChatResponseMsg produced")
	return tui.ChatResponseMsg{}
}

func typeAndEnter(t *testing.T, m tui.Model, text string) (tui.Model, tea.Cmd) {
	t.Helper()
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	model := updated.(tui.Model)
	updated, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return updated.(tui.Model), cmd
}

func deliver(t *testing.T, m tui.Model, msg tui.ChatResponseMsg) tui.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	return updated.(tui.Model)
}

func TestNew(t *testing.T) {
	t.Parallel()

	m := tui.New(echoChat, &history.Session{}, steward.Settings{}, steward.DefaultTheme())
	assert.False(t, m.Waiting())
	assert.NoError(t, m.Err())
}

func TestSubmitSetsWaiting(t *testing.T) {
	t.Parallel()

	session := &history.Session{}
	m := initModel(t, echoChat, session)
	m, _ = typeAndEnter(t, m, "hello")

	assert.True(t, m.Waiting())
	require.Len(t, session.Messages, 1)
	assert.Equal(t, steward.RoleUser, session.Messages[0].Role)
	assert.Equal(t, "hello", session.Messages[0].Content)
}

func TestResponseAppendsAssistantMessage(t *testing.T) {
	t.Parallel()

	session := &history.Session{}
	m := initModel(t, echoChat, session)
	m, cmd := typeAndEnter(t, m, "hello")

	m = deliver(t, m, chatResponseFrom(t, cmd))

	assert.False(t, m.Waiting())
	require.Len(t, session.Messages, 2)
	assert.Equal(t, steward.RoleAssistant, session.Messages[1].Role)
	assert.Equal(t, "echo: hello", session.Messages[1].Content)
}

func TestResponseAddsPendingActionToLedger(t *testing.T) {
	t.Parallel()

	send := func(ctx context.Context, req steward.ChatRequest) (*steward.ChatResponse, error) {
		resp := emptyResponse()
		resp.Response = "Needs approval."
		resp.PendingActions = []steward.PendingAction{{
			ID:          "pa-1",
			Tool:        "create_initiative",
			Description: `Create initiative "X"`,
			Status:      steward.ActionPending,
		}}
		return resp, nil
	}

	session := &history.Session{}
	m := initModel(t, send, session)
	m, cmd := typeAndEnter(t, m, "create it")
	m = deliver(t, m, chatResponseFrom(t, cmd))

	require.Len(t, m.Ledger(), 1)
	assert.Equal(t, steward.ActionPending, m.Ledger()[0].Status)
	assert.Contains(t, m.View(), "approve")
}

func TestApproveFlow(t *testing.T) {
	t.Parallel()

	var got steward.ChatRequest
	send := func(ctx context.Context, req steward.ChatRequest) (*steward.ChatResponse, error) {
		got = req
		resp := emptyResponse()
		resp.Response = "Done."
		resp.PendingActions = []steward.PendingAction{{
			ID:     "pa-1",
			Tool:   "create_initiative",
			Status: steward.ActionExecuted,
			Result: "Created initiative",
		}}
		return resp, nil
	}

	session := &history.Session{
		Ledger: []steward.PendingAction{{
			ID:          "pa-1",
			Tool:        "create_initiative",
			Description: `Create initiative "X"`,
			Status:      steward.ActionPending,
		}},
	}
	m := initModel(t, send, session)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	m = updated.(tui.Model)
	assert.True(t, m.Waiting())

	m = deliver(t, m, chatResponseFrom(t, cmd))
	assert.Equal(t, "pa-1", got.PendingActionID)
	assert.Equal(t, steward.DecisionApprove, got.PendingActionDecision)

	require.Len(t, m.Ledger(), 1)
	assert.Equal(t, steward.ActionExecuted, m.Ledger()[0].Status)
	assert.Equal(t, "Created initiative", m.Ledger()[0].Result)
	assert.False(t, m.Waiting())
}

func TestRejectFlow(t *testing.T) {
	t.Parallel()

	var got steward.ChatRequest
	send := func(ctx context.Context, req steward.ChatRequest) (*steward.ChatResponse, error) {
		got = req
		resp := emptyResponse()
		resp.PendingActions = []steward.PendingAction{{
			ID: "pa-1", Tool: "create_risk", Status: steward.ActionRejected,
		}}
		return resp, nil
	}

	session := &history.Session{
		Ledger: []steward.PendingAction{{
			ID: "pa-1", Tool: "create_risk", Description: "Record risk", Status: steward.ActionPending,
		}},
	}
	m := initModel(t, send, session)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m = updated.(tui.Model)
	m = deliver(t, m, chatResponseFrom(t, cmd))

	assert.Equal(t, steward.DecisionReject, got.PendingActionDecision)
	assert.Equal(t, steward.ActionRejected, m.Ledger()[0].Status)
}

func TestApprovalKeysOnlyActOnEmptyInput(t *testing.T) {
	t.Parallel()

	session := &history.Session{
		Ledger: []steward.PendingAction{{
			ID: "pa-1", Description: "X", Status: steward.ActionPending,
		}},
	}
	m := initModel(t, echoChat, session)

	// Typed text first, so 'a' is just another character.
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("wh")})
	m = updated.(tui.Model)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	m = updated.(tui.Model)

	assert.False(t, m.Waiting())
	assert.Equal(t, "wha", m.Input.Value())
	assert.Equal(t, steward.ActionPending, m.Ledger()[0].Status)
}

func TestErrorSurfacesInStatus(t *testing.T) {
	t.Parallel()

	session := &history.Session{}
	m := initModel(t, echoChat, session)
	m, _ = typeAndEnter(t, m, "hello")

	m = deliver(t, m, tui.ChatResponseMsg{Err: assert.AnError})

	assert.False(t, m.Waiting())
	assert.Error(t, m.Err())
	assert.Contains(t, m.View(), "Error:")
}

func TestSessionSavedAfterTurn(t *testing.T) {
	t.Parallel()

	session := &history.Session{ID: "sess-1"}
	m := initModel(t, echoChat, session)
	m.SessionPath = t.TempDir() + "/sess-1.json"
	m, cmd := typeAndEnter(t, m, "hello")
	m = deliver(t, m, chatResponseFrom(t, cmd))
	require.NoError(t, m.Err())

	loaded, err := history.Load(m.SessionPath)
	require.NoError(t, err)
	assert.Len(t, loaded.Messages, 2)
}

func TestFullConversationThroughProgram(t *testing.T) {
	t.Parallel()

	session := &history.Session{}
	m := tui.New(echoChat, session, steward.Settings{}, steward.DefaultTheme())

	tm := teatest.NewTestModel(t, m,
		teatest.WithInitialTermSize(80, 24),
	)

	tm.Type("hello steward")
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("echo: hello steward"))
	}, teatest.WithDuration(5*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))

	final, ok := fm.(tui.Model)
	require.True(t, ok)
	assert.Len(t, final.Ledger(), 0)
	require.Len(t, session.Messages, 2)
}
