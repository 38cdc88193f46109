package workflow

import "context"

// StateMachine tracks the current status of a request and validates actions
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire returns true if the action has at least one configured
	// transition from the current state (guards are evaluated on Fire)
	CanFire(action Action) bool

	// Fire attempts the action, transitioning to the new state if a
	// configured transition's guard passes
	Fire(ctx context.Context, action Action) error

	// PermittedActions returns all actions configured for the current state
	PermittedActions() []Action
}
