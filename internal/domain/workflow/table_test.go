package workflow

import (
	"errors"
	"testing"

	"github.com/taptosell/marketplace-workflow/internal/domain/actor"
)

func TestDefaultTableLookup(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		name          string
		kind          Kind
		from          State
		action        Action
		wantTo        State
		wantReason    bool
		wantOwnerOnly bool
	}{
		{
			name:   "product approve",
			kind:   KindProduct,
			from:   StatePending,
			action: ActionApprove,
			wantTo: StatePublished,
		},
		{
			name:       "product reject requires reason",
			kind:       KindProduct,
			from:       StatePending,
			action:     ActionReject,
			wantTo:     StateRejected,
			wantReason: true,
		},
		{
			name:          "inventory promote is owner only",
			kind:          KindInventoryItem,
			from:          StateReady,
			action:        ActionPromote,
			wantTo:        StatePromoted,
			wantOwnerOnly: true,
		},
		{
			name:   "withdrawal approve",
			kind:   KindWithdrawalRequest,
			from:   StateWithdrawalPending,
			action: ActionApprove,
			wantTo: StateWithdrawalProcessed,
		},
		{
			name:       "withdrawal reject requires reason",
			kind:       KindWithdrawalRequest,
			from:       StateWithdrawalPending,
			action:     ActionReject,
			wantTo:     StateWithdrawalRejected,
			wantReason: true,
		},
		{
			name:   "appeal approve",
			kind:   KindPriceAppeal,
			from:   StatePending,
			action: ActionApprove,
			wantTo: StateApproved,
		},
		{
			name:       "appeal reject requires reason",
			kind:       KindPriceAppeal,
			from:       StatePending,
			action:     ActionReject,
			wantTo:     StateRejected,
			wantReason: true,
		},
		{
			name:          "product submit is owner only",
			kind:          KindProduct,
			from:          StateDraft,
			action:        ActionSubmit,
			wantTo:        StatePending,
			wantOwnerOnly: true,
		},
		{
			name:          "product resubmit after rejection",
			kind:          KindProduct,
			from:          StateRejected,
			action:        ActionResubmit,
			wantTo:        StatePending,
			wantOwnerOnly: true,
		},
		{
			name:          "inventory mark ready",
			kind:          KindInventoryItem,
			from:          StateDraft,
			action:        ActionMarkReady,
			wantTo:        StateReady,
			wantOwnerOnly: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edge, err := table.Lookup(tt.kind, tt.from, tt.action)
			if err != nil {
				t.Fatalf("Lookup() error = %v", err)
			}
			if edge.To != tt.wantTo {
				t.Errorf("edge.To = %v, want %v", edge.To, tt.wantTo)
			}
			if edge.RequireReason != tt.wantReason {
				t.Errorf("edge.RequireReason = %v, want %v", edge.RequireReason, tt.wantReason)
			}
			if edge.OwnerOnly != tt.wantOwnerOnly {
				t.Errorf("edge.OwnerOnly = %v, want %v", edge.OwnerOnly, tt.wantOwnerOnly)
			}
		})
	}
}

func TestDefaultTableIllegalLookups(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		name   string
		kind   Kind
		from   State
		action Action
	}{
		{"approve published product", KindProduct, StatePublished, ActionApprove},
		{"promote draft item", KindInventoryItem, StateDraft, ActionPromote},
		{"promote promoted item again", KindInventoryItem, StatePromoted, ActionPromote},
		{"approve processed withdrawal", KindWithdrawalRequest, StateWithdrawalProcessed, ActionApprove},
		{"reject approved appeal", KindPriceAppeal, StateApproved, ActionReject},
		{"unknown action", KindProduct, StatePending, Action("archive")},
		{"action from another kind", KindWithdrawalRequest, StateWithdrawalPending, ActionPromote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := table.Lookup(tt.kind, tt.from, tt.action)
			if !errors.Is(err, ErrIllegalTransition) {
				t.Errorf("Lookup() error = %v, want ErrIllegalTransition", err)
			}
		})
	}
}

func TestModerationEdgesAllowManagerAndAdministrator(t *testing.T) {
	table := DefaultTable()

	edge, err := table.Lookup(KindProduct, StatePending, ActionApprove)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}

	for _, role := range []actor.Role{actor.RoleManager, actor.RoleAdministrator} {
		if !edge.AllowsRole(role) {
			t.Errorf("AllowsRole(%v) = false, want true", role)
		}
	}
	if edge.AllowsRole(actor.RoleSupplier) {
		t.Error("AllowsRole(supplier) = true, want false")
	}
}

func TestLegalActions(t *testing.T) {
	table := DefaultTable()

	edges := table.LegalActions(KindProduct, StatePending)
	if len(edges) != 2 {
		t.Fatalf("LegalActions() returned %d edges, want 2", len(edges))
	}

	actions := map[Action]bool{}
	for _, e := range edges {
		actions[e.Action] = true
	}
	if !actions[ActionApprove] || !actions[ActionReject] {
		t.Errorf("LegalActions() = %v, want approve and reject", actions)
	}

	if got := table.LegalActions(KindInventoryItem, StatePromoted); len(got) != 0 {
		t.Errorf("LegalActions(promoted item) returned %d edges, want 0", len(got))
	}
}
