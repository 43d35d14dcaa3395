package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendPromptPrepends(t *testing.T) {
	history, changed := AppendPrompt([]string{"old"}, "sunset beach")

	assert.True(t, changed)
	assert.Equal(t, []string{"sunset beach", "old"}, history)
}

func TestAppendPromptSkipsVerbatimDuplicate(t *testing.T) {
	history, changed := AppendPrompt([]string{"sunset beach"}, "sunset beach")

	assert.False(t, changed)
	assert.Equal(t, []string{"sunset beach"}, history)
}

func TestAppendPromptEvictsOldestPastLimit(t *testing.T) {
	var history []string
	for i := 0; i < HistoryLimit; i++ {
		history, _ = AppendPrompt(history, fmt.Sprintf("prompt %d", i))
	}
	assert.Len(t, history, HistoryLimit)

	history, changed := AppendPrompt(history, "newest")

	assert.True(t, changed)
	assert.Len(t, history, HistoryLimit)
	assert.Equal(t, "newest", history[0])
	assert.NotContains(t, history, "prompt 0")
}
