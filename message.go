package steward

// Role represents the role of a message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// HistoryWindow is the hard cap on conversation history forwarded to any
// provider. Enforced identically by the router and every provider call site.
const HistoryWindow = 10

// TruncateHistory returns the most recent HistoryWindow messages in their
// original order. The input slice is never modified.
func TruncateHistory(msgs []Message) []Message {
	if len(msgs) <= HistoryWindow {
		return msgs
	}
	return msgs[len(msgs)-HistoryWindow:]
}

// SplitSystem separates the system prompt from the conversational turns.
// At most one system message is meaningful per request; when several are
// present the last one wins. Providers lacking a native system role receive
// the returned prompt through their own equivalent field.
func SplitSystem(msgs []Message) (system string, rest []Message) {
	rest = make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == RoleSystem {
			system = m.Content
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}
