package workflow

// Action represents a named operation that can cause a state transition
type Action string

const (
	ActionSubmit    Action = "submit"
	ActionResubmit  Action = "resubmit"
	ActionApprove   Action = "approve"
	ActionReject    Action = "reject"
	ActionMarkReady Action = "mark_ready"
	ActionPromote   Action = "promote"
)

// String returns the string representation of the action
func (a Action) String() string {
	return string(a)
}
