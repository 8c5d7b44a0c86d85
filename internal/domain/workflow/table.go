package workflow

import (
	"fmt"

	"github.com/taptosell/marketplace-workflow/internal/domain/actor"
)

// Edge describes one legal transition: firing Action from From moves the
// record to To, provided the actor satisfies the role constraint.
type Edge struct {
	Kind          Kind
	From          State
	Action        Action
	To            State
	Roles         []actor.Role
	OwnerOnly     bool
	RequireReason bool
}

// AllowsRole returns true if the edge may be invoked by the given role
func (e Edge) AllowsRole(role actor.Role) bool {
	for _, r := range e.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Table is the immutable set of legal transitions for all entity kinds.
// It is pure data: safe for concurrent reads, no I/O.
type Table struct {
	edges map[Kind]map[State]map[Action]Edge
}

// TableBuilder assembles a Table with a fluent configuration API
type TableBuilder struct {
	edges map[Kind]map[State]map[Action]Edge
}

// EdgeConfig configures transitions out of one (kind, state) pair
type EdgeConfig struct {
	builder *TableBuilder
	kind    Kind
	from    State
}

// EdgeOption customizes a single edge
type EdgeOption func(*Edge)

// WithReason marks the edge as requiring a non-empty reason
func WithReason() EdgeOption {
	return func(e *Edge) { e.RequireReason = true }
}

// OwnerOnly restricts the edge to the supplier owning the record
func OwnerOnly() EdgeOption {
	return func(e *Edge) {
		e.OwnerOnly = true
		e.Roles = []actor.Role{actor.RoleSupplier}
	}
}

// Moderated allows the edge for managers and administrators
func Moderated() EdgeOption {
	return func(e *Edge) {
		e.Roles = []actor.Role{actor.RoleManager, actor.RoleAdministrator}
	}
}

// NewTableBuilder creates an empty table builder
func NewTableBuilder() *TableBuilder {
	return &TableBuilder{
		edges: make(map[Kind]map[State]map[Action]Edge),
	}
}

// Configure returns an edge configuration for the given kind and state
func (b *TableBuilder) Configure(kind Kind, from State) EdgeConfig {
	if !kind.IsValid() {
		panic(fmt.Sprintf("invalid kind: %s", kind))
	}
	if !from.IsValidFor(kind) {
		panic(fmt.Sprintf("state %s is not valid for kind %s", from, kind))
	}
	if b.edges[kind] == nil {
		b.edges[kind] = make(map[State]map[Action]Edge)
	}
	if b.edges[kind][from] == nil {
		b.edges[kind][from] = make(map[Action]Edge)
	}
	return EdgeConfig{builder: b, kind: kind, from: from}
}

// Permit registers a legal transition out of the configured state
func (c EdgeConfig) Permit(action Action, to State, opts ...EdgeOption) EdgeConfig {
	if !to.IsValidFor(c.kind) {
		panic(fmt.Sprintf("target state %s is not valid for kind %s", to, c.kind))
	}
	edge := Edge{
		Kind:   c.kind,
		From:   c.from,
		Action: action,
		To:     to,
	}
	for _, opt := range opts {
		opt(&edge)
	}
	if len(edge.Roles) == 0 {
		panic(fmt.Sprintf("edge %s/%s/%s has no role constraint", c.kind, c.from, action))
	}
	c.builder.edges[c.kind][c.from][action] = edge
	return c
}

// Build finalizes the table
func (b *TableBuilder) Build() *Table {
	return &Table{edges: b.edges}
}

// Lookup finds the edge for (kind, from, action). Missing edges are
// reported as ErrIllegalTransition.
func (t *Table) Lookup(kind Kind, from State, action Action) (Edge, error) {
	edge, ok := t.edges[kind][from][action]
	if !ok {
		return Edge{}, fmt.Errorf("%w: %s cannot %s from state %s", ErrIllegalTransition, kind, action, from)
	}
	return edge, nil
}

// LegalActions returns all edges available from (kind, from)
func (t *Table) LegalActions(kind Kind, from State) []Edge {
	actions := t.edges[kind][from]
	edges := make([]Edge, 0, len(actions))
	for _, e := range actions {
		edges = append(edges, e)
	}
	return edges
}

// DefaultTable builds the marketplace transition table.
//
// Moderation edges (approve/reject) belong to managers and administrators;
// submit, resubmit, mark_ready and promote belong to the owning supplier.
// Every reject edge requires a reason.
func DefaultTable() *Table {
	b := NewTableBuilder()

	b.Configure(KindProduct, StateDraft).
		Permit(ActionSubmit, StatePending, OwnerOnly())
	b.Configure(KindProduct, StatePending).
		Permit(ActionApprove, StatePublished, Moderated()).
		Permit(ActionReject, StateRejected, Moderated(), WithReason())
	b.Configure(KindProduct, StateRejected).
		Permit(ActionResubmit, StatePending, OwnerOnly())

	b.Configure(KindInventoryItem, StateDraft).
		Permit(ActionMarkReady, StateReady, OwnerOnly())
	b.Configure(KindInventoryItem, StateReady).
		Permit(ActionPromote, StatePromoted, OwnerOnly())

	b.Configure(KindWithdrawalRequest, StateWithdrawalPending).
		Permit(ActionApprove, StateWithdrawalProcessed, Moderated()).
		Permit(ActionReject, StateWithdrawalRejected, Moderated(), WithReason())

	b.Configure(KindPriceAppeal, StatePending).
		Permit(ActionApprove, StateApproved, Moderated()).
		Permit(ActionReject, StateRejected, Moderated(), WithReason())

	return b.Build()
}
