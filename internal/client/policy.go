package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/taptosell/marketplace-workflow/internal/domain/workflow"
)

// ErrOutcomeUnknown marks a request whose result was never observed, a
// transport failure after the request may have reached the server. The
// record must be re-read before the caller retries, otherwise a retry
// could apply the side effect twice.
var ErrOutcomeUnknown = errors.New("transition outcome unknown")

// SyncMode selects how the local view reflects in-flight transitions
type SyncMode int

const (
	// Pessimistic applies nothing locally until the server confirms
	Pessimistic SyncMode = iota

	// Optimistic applies the predicted end state immediately and reverts
	// on failure. The server record always wins at reconciliation.
	Optimistic
)

// Syncer drives transitions against the server and keeps a local View
// consistent under either sync mode. A Syncer belongs to one caller and
// is not safe for concurrent use; the View it maintains is.
type Syncer struct {
	api  RemoteAPI
	view *View
	mode SyncMode

	// table predicts optimistic end states; never authoritative
	table *workflow.Table

	// unconfirmed records whose last request had an unknown outcome and
	// must be refreshed before another transition is attempted
	unconfirmed map[recordKey]bool
}

// NewSyncer creates a syncer over the given API in the given mode
func NewSyncer(api RemoteAPI, view *View, mode SyncMode) *Syncer {
	return &Syncer{
		api:         api,
		view:        view,
		mode:        mode,
		table:       workflow.DefaultTable(),
		unconfirmed: make(map[recordKey]bool),
	}
}

// View returns the local view the syncer maintains
func (s *Syncer) View() *View {
	return s.view
}

// Transition requests a transition and updates the local view per the
// sync mode. After any attempt that may have mutated the queue, the full
// queue listing is re-fetched rather than patched.
func (s *Syncer) Transition(ctx context.Context, kind workflow.Kind, id int64, action workflow.Action, reason string) (*workflow.Record, error) {
	key := recordKey{kind, id}
	if s.unconfirmed[key] {
		return nil, fmt.Errorf("%w: refresh record %s/%d before retrying", ErrOutcomeUnknown, kind, id)
	}

	snapshot, hadSnapshot := s.view.Get(kind, id)

	if s.mode == Optimistic && hadSnapshot {
		if edge, err := s.table.Lookup(kind, snapshot.Status, action); err == nil {
			predicted := snapshot
			predicted.Status = edge.To
			predicted.StatusReason = reason
			s.view.Put(predicted)
		}
	}

	rec, err := s.api.Transition(ctx, kind, id, action, reason)
	if err != nil {
		if s.mode == Optimistic && hadSnapshot {
			s.view.Put(snapshot)
		}
		if errors.Is(err, ErrOutcomeUnknown) {
			s.unconfirmed[key] = true
		}
		// a Conflict means someone else moved the record, the cached
		// queue is stale either way
		s.refreshQueue(ctx, kind)
		return nil, err
	}

	s.view.Put(*rec)
	s.refreshQueue(ctx, kind)
	return rec, nil
}

// Promote requests promotion of an inventory item. On success both the
// item queue and the product queue are stale, so both are refreshed.
func (s *Syncer) Promote(ctx context.Context, itemID int64) (int64, error) {
	key := recordKey{workflow.KindInventoryItem, itemID}
	if s.unconfirmed[key] {
		return 0, fmt.Errorf("%w: refresh inventory item %d before retrying", ErrOutcomeUnknown, itemID)
	}

	productID, err := s.api.Promote(ctx, itemID)
	if err != nil {
		if errors.Is(err, ErrOutcomeUnknown) {
			s.unconfirmed[key] = true
		}
		s.refreshQueue(ctx, workflow.KindInventoryItem)
		return 0, err
	}

	if rec, getErr := s.api.GetRecord(ctx, workflow.KindInventoryItem, itemID); getErr == nil {
		s.view.Put(*rec)
	}
	s.refreshQueue(ctx, workflow.KindInventoryItem)
	s.refreshQueue(ctx, workflow.KindProduct)
	return productID, nil
}

// Refresh re-reads a record from the server, replacing the local copy and
// clearing any unknown-outcome mark. A NotFound clears the local copy too
// since the record is gone server-side.
func (s *Syncer) Refresh(ctx context.Context, kind workflow.Kind, id int64) (*workflow.Record, error) {
	rec, err := s.api.GetRecord(ctx, kind, id)
	if err != nil {
		if errors.Is(err, workflow.ErrNotFound) {
			s.view.Remove(kind, id)
			delete(s.unconfirmed, recordKey{kind, id})
		}
		return nil, err
	}
	s.view.Put(*rec)
	delete(s.unconfirmed, recordKey{kind, id})
	return rec, nil
}

// RefreshQueue re-reads the queue listing for a kind into the view
func (s *Syncer) RefreshQueue(ctx context.Context, kind workflow.Kind) ([]workflow.Record, error) {
	records, err := s.api.ListQueue(ctx, kind)
	if err != nil {
		return nil, err
	}
	s.view.ReplaceQueue(kind, records)
	return records, nil
}

func (s *Syncer) refreshQueue(ctx context.Context, kind workflow.Kind) {
	// best effort, the next explicit listing corrects a failed refresh
	_, _ = s.RefreshQueue(ctx, kind)
}
