package steward

// Suggestion is one follow-up action offered to the user.
type Suggestion struct {
	Text   string `json:"displayText"`
	Prompt string `json:"followupPrompt"`
	Icon   string `json:"iconKey"`
}

// StageGuidance tailors the assistant to an entity's lifecycle stage.
// It is a pure function of (stage, title, id); stateless, recomputed per
// request. The zero value means no guidance.
type StageGuidance struct {
	SystemPrompt string       `json:"systemPromptAddition"`
	Suggestions  []Suggestion `json:"suggestions"`
}
