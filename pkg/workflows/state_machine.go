package workflows

import "fmt"

// StateMachine enforces legal state transitions for one lifecycle axis.
// States whose legal destinations depend on a second field (e.g. an asset
// stage keyed by the asset's status) are stored under a composite key built
// with ScopedKey.
type StateMachine struct {
	allowedTransitions map[string][]string
}

// NewStateMachine creates a state machine from an allowed-transition table.
func NewStateMachine(transitions map[string][]string) *StateMachine {
	return &StateMachine{allowedTransitions: transitions}
}

// ScopedKey builds the lookup key for a state whose transition table is
// keyed by an enclosing scope value.
func ScopedKey(scope, state string) string {
	return fmt.Sprintf("%s/%s", scope, state)
}

// CanTransition checks if a state transition is allowed.
func (sm *StateMachine) CanTransition(from, to string) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// GetAllowedTransitions returns the allowed next states for a given state.
func (sm *StateMachine) GetAllowedTransitions(from string) []string {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []string{}
	}
	return allowed
}
