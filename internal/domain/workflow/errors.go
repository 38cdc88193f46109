package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when an action is not legal from the
	// current state
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidState is returned when a state is not a declared workflow state
	ErrInvalidState = errors.New("invalid state")

	// ErrGuardFailed is returned when every candidate transition for an action
	// is blocked by its guard condition
	ErrGuardFailed = errors.New("guard condition failed")
)
