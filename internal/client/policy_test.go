package client

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taptosell/marketplace-workflow/internal/domain/workflow"
)

// fakeAPI implements RemoteAPI with overridable behavior per test
type fakeAPI struct {
	transitionFn func(kind workflow.Kind, id int64, action workflow.Action, reason string) (*workflow.Record, error)
	promoteFn    func(itemID int64) (int64, error)
	getFn        func(kind workflow.Kind, id int64) (*workflow.Record, error)
	queueFn      func(kind workflow.Kind) ([]workflow.Record, error)

	queueCalls map[workflow.Kind]int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{queueCalls: make(map[workflow.Kind]int)}
}

func (f *fakeAPI) GetRecord(ctx context.Context, kind workflow.Kind, id int64) (*workflow.Record, error) {
	if f.getFn != nil {
		return f.getFn(kind, id)
	}
	return nil, fmt.Errorf("%w: %s/%d", workflow.ErrNotFound, kind, id)
}

func (f *fakeAPI) ListQueue(ctx context.Context, kind workflow.Kind) ([]workflow.Record, error) {
	f.queueCalls[kind]++
	if f.queueFn != nil {
		return f.queueFn(kind)
	}
	return []workflow.Record{}, nil
}

func (f *fakeAPI) Transition(ctx context.Context, kind workflow.Kind, id int64, action workflow.Action, reason string) (*workflow.Record, error) {
	return f.transitionFn(kind, id, action, reason)
}

func (f *fakeAPI) Promote(ctx context.Context, itemID int64) (int64, error) {
	return f.promoteFn(itemID)
}

func pendingRecord(id int64) workflow.Record {
	return workflow.Record{Kind: workflow.KindProduct, ID: id, OwnerID: 11, Status: workflow.StatePending}
}

func TestPessimisticLeavesViewUntouchedUntilConfirmed(t *testing.T) {
	api := newFakeAPI()
	view := NewView()
	view.Put(pendingRecord(1))

	var sawLocalStatus workflow.State
	api.transitionFn = func(kind workflow.Kind, id int64, action workflow.Action, reason string) (*workflow.Record, error) {
		// local view must still show the prior state mid-flight
		rec, _ := view.Get(kind, id)
		sawLocalStatus = rec.Status
		updated := pendingRecord(id)
		updated.Status = workflow.StatePublished
		return &updated, nil
	}

	syncer := NewSyncer(api, view, Pessimistic)
	rec, err := syncer.Transition(context.Background(), workflow.KindProduct, 1, workflow.ActionApprove, "")
	require.NoError(t, err)

	assert.Equal(t, workflow.StatePending, sawLocalStatus)
	assert.Equal(t, workflow.StatePublished, rec.Status)
	cached, _ := view.Get(workflow.KindProduct, 1)
	assert.Equal(t, workflow.StatePublished, cached.Status)
}

func TestPessimisticFailureLeavesViewUnchanged(t *testing.T) {
	api := newFakeAPI()
	view := NewView()
	view.Put(pendingRecord(1))

	api.transitionFn = func(kind workflow.Kind, id int64, action workflow.Action, reason string) (*workflow.Record, error) {
		return nil, fmt.Errorf("%w: reason required", workflow.ErrMissingReason)
	}

	syncer := NewSyncer(api, view, Pessimistic)
	_, err := syncer.Transition(context.Background(), workflow.KindProduct, 1, workflow.ActionReject, "")
	assert.ErrorIs(t, err, workflow.ErrMissingReason)

	cached, _ := view.Get(workflow.KindProduct, 1)
	assert.Equal(t, workflow.StatePending, cached.Status)
}

func TestOptimisticAppliesPredictionThenReconciles(t *testing.T) {
	api := newFakeAPI()
	view := NewView()
	view.Put(pendingRecord(1))

	var sawLocalStatus workflow.State
	server := pendingRecord(1)
	server.Status = workflow.StatePublished
	api.transitionFn = func(kind workflow.Kind, id int64, action workflow.Action, reason string) (*workflow.Record, error) {
		rec, _ := view.Get(kind, id)
		sawLocalStatus = rec.Status
		return &server, nil
	}

	syncer := NewSyncer(api, view, Optimistic)
	_, err := syncer.Transition(context.Background(), workflow.KindProduct, 1, workflow.ActionApprove, "")
	require.NoError(t, err)

	// prediction was visible before the server answered
	assert.Equal(t, workflow.StatePublished, sawLocalStatus)
	// and the server record replaced it afterwards
	cached, _ := view.Get(workflow.KindProduct, 1)
	assert.Equal(t, server, cached)
}

func TestOptimisticRevertsOnFailure(t *testing.T) {
	api := newFakeAPI()
	view := NewView()
	view.Put(pendingRecord(1))

	api.transitionFn = func(kind workflow.Kind, id int64, action workflow.Action, reason string) (*workflow.Record, error) {
		return nil, fmt.Errorf("%w: moved to published", workflow.ErrConflict)
	}

	syncer := NewSyncer(api, view, Optimistic)
	_, err := syncer.Transition(context.Background(), workflow.KindProduct, 1, workflow.ActionApprove, "")
	assert.ErrorIs(t, err, workflow.ErrConflict)

	cached, _ := view.Get(workflow.KindProduct, 1)
	assert.Equal(t, workflow.StatePending, cached.Status)
}

func TestQueueRefreshedAfterEveryAttempt(t *testing.T) {
	api := newFakeAPI()
	view := NewView()
	view.Put(pendingRecord(1))

	calls := 0
	api.transitionFn = func(kind workflow.Kind, id int64, action workflow.Action, reason string) (*workflow.Record, error) {
		calls++
		if calls == 1 {
			updated := pendingRecord(id)
			updated.Status = workflow.StatePublished
			return &updated, nil
		}
		return nil, fmt.Errorf("%w: already published", workflow.ErrIllegalTransition)
	}

	syncer := NewSyncer(api, view, Pessimistic)

	_, err := syncer.Transition(context.Background(), workflow.KindProduct, 1, workflow.ActionApprove, "")
	require.NoError(t, err)
	assert.Equal(t, 1, api.queueCalls[workflow.KindProduct], "success must refresh the queue")

	_, err = syncer.Transition(context.Background(), workflow.KindProduct, 1, workflow.ActionApprove, "")
	assert.Error(t, err)
	assert.Equal(t, 2, api.queueCalls[workflow.KindProduct], "failure must refresh the queue too")
}

func TestUnknownOutcomeBlocksRetryUntilRefresh(t *testing.T) {
	api := newFakeAPI()
	view := NewView()
	view.Put(pendingRecord(1))

	api.transitionFn = func(kind workflow.Kind, id int64, action workflow.Action, reason string) (*workflow.Record, error) {
		return nil, fmt.Errorf("%w: connection reset", ErrOutcomeUnknown)
	}

	syncer := NewSyncer(api, view, Pessimistic)
	_, err := syncer.Transition(context.Background(), workflow.KindProduct, 1, workflow.ActionApprove, "")
	require.ErrorIs(t, err, ErrOutcomeUnknown)

	// a blind retry is refused without touching the server
	api.transitionFn = func(kind workflow.Kind, id int64, action workflow.Action, reason string) (*workflow.Record, error) {
		t.Fatal("retry must not reach the server before a refresh")
		return nil, nil
	}
	_, err = syncer.Transition(context.Background(), workflow.KindProduct, 1, workflow.ActionApprove, "")
	require.ErrorIs(t, err, ErrOutcomeUnknown)

	// refresh observes the server state and unblocks the caller
	published := pendingRecord(1)
	published.Status = workflow.StatePublished
	api.getFn = func(kind workflow.Kind, id int64) (*workflow.Record, error) {
		return &published, nil
	}
	rec, err := syncer.Refresh(context.Background(), workflow.KindProduct, 1)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatePublished, rec.Status)

	// the earlier attempt actually landed, so the retry is now illegal
	api.transitionFn = func(kind workflow.Kind, id int64, action workflow.Action, reason string) (*workflow.Record, error) {
		return nil, fmt.Errorf("%w: already published", workflow.ErrIllegalTransition)
	}
	_, err = syncer.Transition(context.Background(), workflow.KindProduct, 1, workflow.ActionApprove, "")
	assert.ErrorIs(t, err, workflow.ErrIllegalTransition)
}

func TestPromoteRefreshesBothQueues(t *testing.T) {
	api := newFakeAPI()
	view := NewView()

	api.promoteFn = func(itemID int64) (int64, error) {
		return 42, nil
	}
	api.getFn = func(kind workflow.Kind, id int64) (*workflow.Record, error) {
		return &workflow.Record{Kind: kind, ID: id, OwnerID: 11, Status: workflow.StatePromoted}, nil
	}

	syncer := NewSyncer(api, view, Pessimistic)
	productID, err := syncer.Promote(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(42), productID)
	assert.Equal(t, 1, api.queueCalls[workflow.KindInventoryItem])
	assert.Equal(t, 1, api.queueCalls[workflow.KindProduct])

	cached, ok := view.Get(workflow.KindInventoryItem, 5)
	require.True(t, ok)
	assert.Equal(t, workflow.StatePromoted, cached.Status)
}

func TestRefreshDropsVanishedRecord(t *testing.T) {
	api := newFakeAPI()
	view := NewView()
	view.Put(pendingRecord(1))

	api.getFn = func(kind workflow.Kind, id int64) (*workflow.Record, error) {
		return nil, fmt.Errorf("%w: %s/%d", workflow.ErrNotFound, kind, id)
	}

	syncer := NewSyncer(api, view, Pessimistic)
	_, err := syncer.Refresh(context.Background(), workflow.KindProduct, 1)
	require.ErrorIs(t, err, workflow.ErrNotFound)

	_, ok := view.Get(workflow.KindProduct, 1)
	assert.False(t, ok)
}

func TestViewQueueIsCopied(t *testing.T) {
	view := NewView()
	view.ReplaceQueue(workflow.KindProduct, []workflow.Record{pendingRecord(1)})

	q := view.Queue(workflow.KindProduct)
	require.Len(t, q, 1)
	q[0].Status = workflow.StateRejected

	fresh := view.Queue(workflow.KindProduct)
	assert.Equal(t, workflow.StatePending, fresh[0].Status)
}

func TestErrorFromCodeRoundTrip(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{"not_found", workflow.ErrNotFound},
		{"forbidden", workflow.ErrForbidden},
		{"illegal_transition", workflow.ErrIllegalTransition},
		{"missing_reason", workflow.ErrMissingReason},
		{"conflict", workflow.ErrConflict},
		{"store_unavailable", workflow.ErrStoreUnavailable},
	}
	for _, tt := range tests {
		err := errorFromCode(tt.code, "detail")
		if !errors.Is(err, tt.want) {
			t.Errorf("errorFromCode(%q) = %v, want %v", tt.code, err, tt.want)
		}
	}
}
