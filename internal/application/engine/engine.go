// Package engine implements the approval workflow engine: it is the only
// code path through which governed records change status.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/taptosell/marketplace-workflow/internal/application/port"
	"github.com/taptosell/marketplace-workflow/internal/domain/actor"
	"github.com/taptosell/marketplace-workflow/internal/domain/entity"
	"github.com/taptosell/marketplace-workflow/internal/domain/workflow"
)

// CommitHook runs inside the commit transaction after the compare-and-set
// succeeded but before the history row is appended. rec is the record as
// it was loaded before the transition. Returning an error rolls the whole
// transition back.
type CommitHook func(ctx context.Context, rec workflow.Record, edge workflow.Edge) error

// ApplyRequest describes one requested transition
type ApplyRequest struct {
	Kind   workflow.Kind
	ID     int64
	Action workflow.Action
	Actor  actor.Actor
	Reason string
}

type hookKey struct {
	kind   workflow.Kind
	action workflow.Action
}

// Engine validates and applies transitions against single records
type Engine struct {
	table       *workflow.Table
	stores      map[workflow.Kind]port.RecordStore
	historyRepo port.HistoryRepository
	txManager   port.TransactionManager
	hooks       map[hookKey]CommitHook
	logger      *zap.Logger
}

// New creates a workflow engine over the given transition table
func New(
	table *workflow.Table,
	txManager port.TransactionManager,
	historyRepo port.HistoryRepository,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		table:       table,
		stores:      make(map[workflow.Kind]port.RecordStore),
		historyRepo: historyRepo,
		txManager:   txManager,
		hooks:       make(map[hookKey]CommitHook),
		logger:      logger,
	}
}

// RegisterStore makes a record store available for its entity kind
func (e *Engine) RegisterStore(store port.RecordStore) {
	e.stores[store.Kind()] = store
}

// RegisterHook attaches a commit hook to every transition matching
// (kind, action), no matter which caller applies it. At most one hook
// per pair. Transitions with mandatory side effects must register here
// so no Apply path can commit the status flip alone.
func (e *Engine) RegisterHook(kind workflow.Kind, action workflow.Action, hook CommitHook) {
	e.hooks[hookKey{kind: kind, action: action}] = hook
}

// Apply validates and applies a single transition.
//
// Failure taxonomy: ErrNotFound when the record is absent,
// ErrIllegalTransition when the action is not listed for the record's
// current state, ErrForbidden when the actor's role (or ownership, for
// owner-scoped actions) does not match, ErrMissingReason when a required
// reason is empty, ErrConflict when the record's status changed between
// load and commit, ErrStoreUnavailable on transient persistence failure.
func (e *Engine) Apply(ctx context.Context, req ApplyRequest) (*workflow.Record, error) {
	store, ok := e.stores[req.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown entity kind %q", workflow.ErrIllegalTransition, req.Kind)
	}

	rec, err := store.GetRecord(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: load %s/%d: %v", workflow.ErrStoreUnavailable, req.Kind, req.ID, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s/%d", workflow.ErrNotFound, req.Kind, req.ID)
	}

	edge, err := e.table.Lookup(req.Kind, rec.Status, req.Action)
	if err != nil {
		return nil, err
	}

	if !edge.AllowsRole(req.Actor.Role) {
		return nil, fmt.Errorf("%w: role %s cannot %s %s", workflow.ErrForbidden, req.Actor.Role, req.Action, req.Kind)
	}
	if edge.OwnerOnly && req.Actor.ID != rec.OwnerID {
		return nil, fmt.Errorf("%w: actor %d does not own %s/%d", workflow.ErrForbidden, req.Actor.ID, req.Kind, req.ID)
	}

	reason := strings.TrimSpace(req.Reason)
	if edge.RequireReason && reason == "" {
		return nil, fmt.Errorf("%w: action %s on %s", workflow.ErrMissingReason, req.Action, req.Kind)
	}
	if !edge.RequireReason {
		// Approval paths clear any prior rejection reason.
		reason = ""
	}

	var updated *workflow.Record
	err = e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		applied, casErr := store.CompareAndSetStatus(txCtx, req.ID, rec.Status, edge.To, reason)
		if casErr != nil {
			return fmt.Errorf("%w: commit %s/%d: %v", workflow.ErrStoreUnavailable, req.Kind, req.ID, casErr)
		}
		if !applied {
			// Disambiguate: gone vs. changed under us.
			current, readErr := store.GetRecord(txCtx, req.ID)
			if readErr != nil {
				return fmt.Errorf("%w: re-read %s/%d: %v", workflow.ErrStoreUnavailable, req.Kind, req.ID, readErr)
			}
			if current == nil {
				return fmt.Errorf("%w: %s/%d", workflow.ErrNotFound, req.Kind, req.ID)
			}
			return fmt.Errorf("%w: %s/%d moved from %s to %s", workflow.ErrConflict, req.Kind, req.ID, rec.Status, current.Status)
		}

		if hook, ok := e.hooks[hookKey{kind: req.Kind, action: req.Action}]; ok {
			if hookErr := hook(txCtx, *rec, edge); hookErr != nil {
				return hookErr
			}
		}

		history := &entity.StatusHistory{
			Kind:           req.Kind.String(),
			RecordID:       req.ID,
			ActorID:        req.Actor.ID,
			ActorRole:      req.Actor.Role.String(),
			PreviousStatus: rec.Status.String(),
			NewStatus:      edge.To.String(),
			Action:         req.Action.String(),
			Reason:         reason,
			CreatedAt:      time.Now(),
		}
		if histErr := e.historyRepo.Append(txCtx, history); histErr != nil {
			return fmt.Errorf("append history: %w", histErr)
		}

		var readErr error
		updated, readErr = store.GetRecord(txCtx, req.ID)
		if readErr != nil {
			return fmt.Errorf("%w: read back %s/%d: %v", workflow.ErrStoreUnavailable, req.Kind, req.ID, readErr)
		}
		return nil
	})
	if err != nil {
		e.logger.Warn("Transition failed",
			zap.String("kind", req.Kind.String()),
			zap.Int64("id", req.ID),
			zap.String("action", req.Action.String()),
			zap.Error(err))
		return nil, err
	}

	e.logger.Info("Transition applied",
		zap.String("kind", req.Kind.String()),
		zap.Int64("id", req.ID),
		zap.String("action", req.Action.String()),
		zap.String("from", rec.Status.String()),
		zap.String("to", edge.To.String()),
		zap.Int64("actor_id", req.Actor.ID),
		zap.String("actor_role", req.Actor.Role.String()))
	return updated, nil
}

// Store returns the registered record store for a kind, if any
func (e *Engine) Store(kind workflow.Kind) (port.RecordStore, bool) {
	store, ok := e.stores[kind]
	return store, ok
}

// Table returns the engine's transition table
func (e *Engine) Table() *workflow.Table {
	return e.table
}
