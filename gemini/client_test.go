package gemini_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stewardhq/steward"
	"github.com/stewardhq/steward/gemini"
)

func TestConvert_RoleMapping(t *testing.T) {
	t.Parallel()

	req := steward.Request{Messages: []steward.Message{
		{Role: steward.RoleUser, Content: "Hello"},
		{Role: steward.RoleAssistant, Content: "Hi there"},
		{Role: steward.RoleUser, Content: "Plan the sprint"},
	}}

	_, contents, _ := gemini.Convert(req, "gemini-2.0-flash")

	require.Len(t, contents, 3)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
	assert.Equal(t, "user", contents[2].Role)
	require.Len(t, contents[1].Parts, 1)
	assert.Equal(t, "Hi there", contents[1].Parts[0].Text)
}

func TestConvert_SystemMessageBecomesInstruction(t *testing.T) {
	t.Parallel()

	req := steward.Request{Messages: []steward.Message{
		{Role: steward.RoleSystem, Content: "You are a product-management assistant."},
		{Role: steward.RoleUser, Content: "hi"},
	}}

	_, contents, config := gemini.Convert(req, "gemini-2.0-flash")

	// System turn is lifted out of the contents.
	require.Len(t, contents, 1)
	assert.Equal(t, "user", contents[0].Role)
	require.NotNil(t, config.SystemInstruction)
	require.Len(t, config.SystemInstruction.Parts, 1)
	assert.Equal(t, "You are a product-management assistant.", config.SystemInstruction.Parts[0].Text)
}

func TestConvert_SystemPromptWinsOverSystemMessage(t *testing.T) {
	t.Parallel()

	req := steward.Request{
		SystemPrompt: "Use the workspace snapshot.",
		Messages: []steward.Message{
			{Role: steward.RoleSystem, Content: "older instruction"},
			{Role: steward.RoleUser, Content: "hi"},
		},
	}

	_, _, config := gemini.Convert(req, "gemini-2.0-flash")

	require.NotNil(t, config.SystemInstruction)
	assert.Equal(t, "Use the workspace snapshot.", config.SystemInstruction.Parts[0].Text)
}

func TestConvert_NoSystemLeavesInstructionNil(t *testing.T) {
	t.Parallel()

	req := steward.Request{Messages: []steward.Message{
		{Role: steward.RoleUser, Content: "hi"},
	}}

	_, _, config := gemini.Convert(req, "gemini-2.0-flash")
	assert.Nil(t, config.SystemInstruction)
}

func TestConvert_GenerationParams(t *testing.T) {
	t.Parallel()

	temp := 0.7
	req := steward.Request{
		Messages:    []steward.Message{{Role: steward.RoleUser, Content: "hi"}},
		MaxTokens:   2000,
		Temperature: &temp,
	}

	_, _, config := gemini.Convert(req, "gemini-2.0-flash")

	assert.Equal(t, int32(2000), config.MaxOutputTokens)
	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 0.7, float64(*config.Temperature), 0.001)
}

func TestConvert_ZeroParamsLeftToProviderDefaults(t *testing.T) {
	t.Parallel()

	req := steward.Request{Messages: []steward.Message{{Role: steward.RoleUser, Content: "hi"}}}

	_, _, config := gemini.Convert(req, "gemini-2.0-flash")

	assert.Equal(t, int32(0), config.MaxOutputTokens)
	assert.Nil(t, config.Temperature)
}

func TestConvert_ModelSelection(t *testing.T) {
	t.Parallel()

	req := steward.Request{Messages: []steward.Message{{Role: steward.RoleUser, Content: "hi"}}}

	model, _, _ := gemini.Convert(req, "gemini-2.0-flash")
	assert.Equal(t, "gemini-2.0-flash", model)

	req.Model = "gemini-2.5-pro"
	model, _, _ = gemini.Convert(req, "gemini-2.0-flash")
	assert.Equal(t, "gemini-2.5-pro", model)
}

func TestConvert_TruncatesHistory(t *testing.T) {
	t.Parallel()

	var msgs []steward.Message
	for i := 0; i < steward.HistoryWindow+2; i++ {
		msgs = append(msgs, steward.Message{Role: steward.RoleUser, Content: string(rune('a' + i))})
	}
	req := steward.Request{Messages: msgs}

	_, contents, _ := gemini.Convert(req, "gemini-2.0-flash")

	require.Len(t, contents, steward.HistoryWindow)
	// The two oldest turns are dropped.
	assert.Equal(t, "c", contents[0].Parts[0].Text)
	assert.Equal(t, string(rune('a'+steward.HistoryWindow+1)), contents[len(contents)-1].Parts[0].Text)
}
