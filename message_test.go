package steward_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stewardhq/steward"
)

func TestTruncateHistory(t *testing.T) {
	t.Parallel()

	t.Run("short history passes through unchanged", func(t *testing.T) {
		t.Parallel()
		msgs := []steward.Message{
			{Role: steward.RoleUser, Content: "a"},
			{Role: steward.RoleAssistant, Content: "b"},
		}
		assert.Equal(t, msgs, steward.TruncateHistory(msgs))
	})

	t.Run("long history keeps exactly the last 10 in order", func(t *testing.T) {
		t.Parallel()
		var msgs []steward.Message
		for i := 0; i < 25; i++ {
			msgs = append(msgs, steward.Message{Role: steward.RoleUser, Content: fmt.Sprintf("m%d", i)})
		}
		got := steward.TruncateHistory(msgs)
		require.Len(t, got, steward.HistoryWindow)
		assert.Equal(t, "m15", got[0].Content)
		assert.Equal(t, "m24", got[len(got)-1].Content)
	})

	t.Run("exactly 10 is untouched", func(t *testing.T) {
		t.Parallel()
		msgs := make([]steward.Message, steward.HistoryWindow)
		assert.Equal(t, msgs, steward.TruncateHistory(msgs))
	})
}

func TestSplitSystem(t *testing.T) {
	t.Parallel()

	system, rest := steward.SplitSystem([]steward.Message{
		{Role: steward.RoleSystem, Content: "be helpful"},
		{Role: steward.RoleUser, Content: "hi"},
		{Role: steward.RoleAssistant, Content: "hello"},
	})
	assert.Equal(t, "be helpful", system)
	require.Len(t, rest, 2)
	assert.Equal(t, steward.RoleUser, rest[0].Role)

	t.Run("last system message wins", func(t *testing.T) {
		t.Parallel()
		system, rest := steward.SplitSystem([]steward.Message{
			{Role: steward.RoleSystem, Content: "first"},
			{Role: steward.RoleSystem, Content: "second"},
		})
		assert.Equal(t, "second", system)
		assert.Empty(t, rest)
	})
}
