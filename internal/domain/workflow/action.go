package workflow

// Action represents an operation that can cause a state transition
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionCancel  Action = "cancel"
	ActionAdvance Action = "advance"
)

var validActions = map[Action]bool{
	ActionApprove: true,
	ActionReject:  true,
	ActionCancel:  true,
	ActionAdvance: true,
}

// IsValid returns true if the action is one of the declared actions
func (a Action) IsValid() bool {
	return validActions[a]
}

// String returns the string representation of the action
func (a Action) String() string {
	return string(a)
}
