package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/stewardhq/steward"
	"github.com/stewardhq/steward/history"
	"github.com/stewardhq/steward/markdown"
)

var _ tea.Model = Model{}

// Model is the Bubble Tea model for the steward chat client.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model

	// SessionPath, when set, is where the session is saved after each turn.
	SessionPath string

	send     ChatFunc
	session  *history.Session
	settings steward.Settings
	theme    steward.Theme
	styles   Styles
	spin     spinner.Model

	// selected indexes the ledger entry the approval keys act on, -1 when no
	// entry is awaiting a decision.
	selected    int
	suggestions []steward.Suggestion
	waiting     bool
	err         error
	ready       bool
}

// New creates a chat model over an existing session. The session's ledger is
// the authoritative record of proposed actions; the model is its only writer.
func New(send ChatFunc, session *history.Session, settings steward.Settings, theme steward.Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		Input:    ti,
		send:     send,
		session:  session,
		settings: settings,
		theme:    theme,
		styles:   NewStyles(theme),
		spin:     sp,
		selected: -1,
	}
}

// Waiting reports whether a request is in flight.
func (m Model) Waiting() bool { return m.waiting }

// Err returns the last error, if any.
func (m Model) Err() error { return m.err }

// Ledger returns the session's pending-action ledger.
func (m Model) Ledger() []steward.PendingAction { return m.session.Ledger }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case ChatResponseMsg:
		return m.handleResponse(msg)
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)
	if !m.waiting {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	vpHeight := msg.Height - 3 // status line, input, separators
	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.selected = m.nextPending(-1)
		m.refresh()
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
		m.refresh()
	}

	m.Input.Width = msg.Width
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEnter:
		if m.waiting {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		return m.submit(text)

	case tea.KeyTab:
		if !m.waiting {
			m.selected = m.nextPending(m.selected)
			m.refresh()
		}
		return m, nil
	}

	// The approval keys only fire while the input is empty, so typing a
	// message containing 'a' or 'r' still works.
	if !m.waiting && m.Input.Value() == "" && m.selected >= 0 {
		switch msg.String() {
		case "a":
			return m.resolve(steward.DecisionApprove)
		case "r":
			return m.resolve(steward.DecisionReject)
		}
	}

	if m.waiting {
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	if msg.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.err = nil
	m.suggestions = nil

	req := steward.ChatRequest{
		Message:  text,
		History:  append([]steward.Message(nil), m.session.Messages...),
		Settings: m.settings,
	}

	m.session.Messages = append(m.session.Messages, steward.Message{
		Role:    steward.RoleUser,
		Content: text,
	})
	m.refresh()

	m.waiting = true
	m.Input.Blur()
	return m, tea.Batch(m.spin.Tick, m.sendCmd(req))
}

// resolve sends an approve/reject decision for the selected ledger entry.
// The entry's status only changes when the response comes back.
func (m Model) resolve(decision string) (tea.Model, tea.Cmd) {
	action := m.session.Ledger[m.selected]
	req := steward.ChatRequest{
		Settings:              m.settings,
		PendingActionID:       action.ID,
		PendingActionDecision: decision,
	}

	m.err = nil
	m.waiting = true
	m.Input.Blur()
	return m, tea.Batch(m.spin.Tick, m.sendCmd(req))
}

func (m Model) handleResponse(msg ChatResponseMsg) (tea.Model, tea.Cmd) {
	m.waiting = false
	cmd := m.Input.Focus()

	if msg.Err != nil {
		m.err = msg.Err
		m.refresh()
		return m, cmd
	}

	resp := msg.Resp
	if resp.Response != "" {
		m.session.Messages = append(m.session.Messages, steward.Message{
			Role:    steward.RoleAssistant,
			Content: resp.Response,
		})
	}
	m.applyActions(resp.PendingActions)
	m.suggestions = resp.SuggestedNextSteps
	m.selected = m.nextPending(-1)
	m.session.UpdatedAt = time.Now()

	if m.SessionPath != "" {
		if err := history.Save(m.SessionPath, *m.session); err != nil {
			m.err = err
		}
	}

	m.refresh()
	m.Viewport.GotoBottom()
	return m, cmd
}

// applyActions merges returned actions into the ledger: new proposals are
// appended, resolved ones update the matching entry in place.
func (m *Model) applyActions(actions []steward.PendingAction) {
	for _, action := range actions {
		updated := false
		for i := range m.session.Ledger {
			if m.session.Ledger[i].ID == action.ID {
				m.session.Ledger[i].Status = action.Status
				m.session.Ledger[i].Result = action.Result
				updated = true
				break
			}
		}
		if !updated {
			m.session.Ledger = append(m.session.Ledger, action)
		}
	}
}

// nextPending returns the index of the next ledger entry still awaiting a
// decision, scanning forward from after, wrapping once. -1 when none remain.
func (m Model) nextPending(after int) int {
	n := len(m.session.Ledger)
	for i := 1; i <= n; i++ {
		idx := (after + i) % n
		if idx < 0 {
			idx += n
		}
		if m.session.Ledger[idx].Status == steward.ActionPending {
			return idx
		}
	}
	return -1
}

func (m *Model) refresh() {
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
}

func (m Model) renderContent() string {
	var b strings.Builder

	for _, msg := range m.session.Messages {
		switch msg.Role {
		case steward.RoleUser:
			b.WriteString(m.styles.UserMsg.Render("You: ") + msg.Content)
		case steward.RoleAssistant:
			b.WriteString(markdown.Render(msg.Content, m.Viewport.Width, m.theme))
		}
		b.WriteString("\n\n")
	}

	if len(m.session.Ledger) > 0 {
		b.WriteString(m.styles.Accent.Render("Actions"))
		b.WriteString("\n")
		for i, action := range m.session.Ledger {
			b.WriteString(m.renderAction(i, action))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	for _, s := range m.suggestions {
		b.WriteString(m.styles.Muted.Render("→ " + s.Text))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderAction(i int, action steward.PendingAction) string {
	cursor := "  "
	if i == m.selected {
		cursor = m.styles.Accent.Render("> ")
	}

	var marker string
	switch action.Status {
	case steward.ActionPending:
		marker = m.styles.Pending.Render("? " + action.Description + " (a approve / r reject)")
	case steward.ActionExecuted:
		marker = m.styles.Success.Render("✓ " + action.Description)
	case steward.ActionExecutionFailed:
		marker = m.styles.Error.Render("✗ " + action.Description + ": " + action.Result)
	case steward.ActionRejected:
		marker = m.styles.Muted.Render("- " + action.Description + " (rejected)")
	default:
		marker = m.styles.Muted.Render("  " + action.Description)
	}
	return cursor + marker
}

func (m Model) statusLine() string {
	if m.err != nil {
		return m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err))
	}
	if m.waiting {
		return m.spin.View() + m.styles.Muted.Render(" Thinking...")
	}
	if m.selected >= 0 {
		return m.styles.Muted.Render("a approve · r reject · tab next action · enter send")
	}
	return m.styles.Muted.Render("Enter to send, Ctrl+C to quit")
}

func (m Model) sendCmd(req steward.ChatRequest) tea.Cmd {
	send := m.send
	return func() tea.Msg {
		resp, err := send(context.Background(), req)
		return ChatResponseMsg{Resp: resp, Err: err}
	}
}
