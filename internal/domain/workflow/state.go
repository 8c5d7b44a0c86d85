package workflow

// State represents a lifecycle state of a workflow-governed record
type State string

// Product states
const (
	StateDraft            State = "draft"
	StatePending          State = "pending"
	StatePublished        State = "published"
	StateRejected         State = "rejected"
	StatePrivateInventory State = "private_inventory"
)

// InventoryItem states (draft is shared with Product)
const (
	StateReady    State = "ready"
	StatePromoted State = "promoted"
)

// WithdrawalRequest states
const (
	StateWithdrawalPending   State = "wd-pending"
	StateWithdrawalProcessed State = "wd-processed"
	StateWithdrawalRejected  State = "wd-rejected"
)

// PriceAppeal states (pending/rejected are shared with Product)
const (
	StateApproved State = "approved"
)

var statesByKind = map[Kind]map[State]bool{
	KindProduct: {
		StateDraft:            true,
		StatePending:          true,
		StatePublished:        true,
		StateRejected:         true,
		StatePrivateInventory: true,
	},
	KindInventoryItem: {
		StateDraft:    true,
		StateReady:    true,
		StatePromoted: true,
	},
	KindWithdrawalRequest: {
		StateWithdrawalPending:   true,
		StateWithdrawalProcessed: true,
		StateWithdrawalRejected:  true,
	},
	KindPriceAppeal: {
		StatePending:  true,
		StateApproved: true,
		StateRejected: true,
	},
}

// awaitingStates are the states in which a record sits in a moderation
// queue waiting for a manager or administrator decision.
var awaitingStates = map[Kind][]State{
	KindProduct:           {StatePending},
	KindWithdrawalRequest: {StateWithdrawalPending},
	KindPriceAppeal:       {StatePending},
}

// IsValidFor returns true if the state belongs to the given entity kind
func (s State) IsValidFor(kind Kind) bool {
	return statesByKind[kind][s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// AwaitingStates returns the states of a kind that await moderator action.
// Kinds with no moderation queue return nil.
func AwaitingStates(kind Kind) []State {
	states, ok := awaitingStates[kind]
	if !ok {
		return nil
	}
	out := make([]State, len(states))
	copy(out, states)
	return out
}

// InitialState returns the state a freshly created record of the kind starts in
func InitialState(kind Kind) State {
	switch kind {
	case KindProduct, KindInventoryItem:
		return StateDraft
	case KindWithdrawalRequest:
		return StateWithdrawalPending
	case KindPriceAppeal:
		return StatePending
	default:
		return ""
	}
}
