package workflows

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	sm := NewStateMachine(map[string][]string{
		"draft":  {"active", "draft"},
		"active": {"inactive"},
	})

	assert.True(t, sm.CanTransition("draft", "active"))
	assert.True(t, sm.CanTransition("draft", "draft"))
	assert.False(t, sm.CanTransition("active", "draft"))
	assert.False(t, sm.CanTransition("unknown", "active"))
}

func TestScopedKey(t *testing.T) {
	sm := NewStateMachine(map[string][]string{
		ScopedKey("inventory", "mapped"): {"damage"},
	})

	assert.True(t, sm.CanTransition(ScopedKey("inventory", "mapped"), "damage"))
	// Same state under a different scope is a different table row.
	assert.False(t, sm.CanTransition(ScopedKey("repository", "mapped"), "damage"))
}

func TestGetAllowedTransitions(t *testing.T) {
	sm := NewStateMachine(map[string][]string{
		"open": {"closed"},
	})

	assert.Equal(t, []string{"closed"}, sm.GetAllowedTransitions("open"))
	assert.Empty(t, sm.GetAllowedTransitions("closed"))
}
