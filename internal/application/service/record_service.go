package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/taptosell/marketplace-workflow/internal/application/port"
	"github.com/taptosell/marketplace-workflow/internal/domain/actor"
	"github.com/taptosell/marketplace-workflow/internal/domain/entity"
	"github.com/taptosell/marketplace-workflow/internal/domain/workflow"
)

// RecordService exposes read and owner-maintenance operations that sit
// outside approval semantics: record lookup, the audit trail, and
// draft-only deletion.
type RecordService interface {
	Get(ctx context.Context, kind workflow.Kind, id int64) (*workflow.Record, error)
	History(ctx context.Context, kind workflow.Kind, id int64) ([]*entity.StatusHistory, error)

	// DeleteDraft removes a draft-state record. Owner only; records past
	// draft are governed by the workflow engine and cannot be deleted.
	DeleteDraft(ctx context.Context, kind workflow.Kind, id int64, act actor.Actor) error
}

// draftDeleter deletes a row only while it is still in draft state
type draftDeleter interface {
	DeleteDraft(ctx context.Context, id, supplierID int64) (bool, error)
}

type recordServiceImpl struct {
	stores      map[workflow.Kind]port.RecordStore
	deleters    map[workflow.Kind]draftDeleter
	historyRepo port.HistoryRepository
	logger      *zap.Logger
}

// NewRecordService creates a record service. Only products and inventory
// items have a draft state, so only their repositories act as deleters.
func NewRecordService(
	stores []port.RecordStore,
	productRepo port.ProductRepository,
	itemRepo port.InventoryItemRepository,
	historyRepo port.HistoryRepository,
	logger *zap.Logger,
) RecordService {
	byKind := make(map[workflow.Kind]port.RecordStore, len(stores))
	for _, s := range stores {
		byKind[s.Kind()] = s
	}
	return &recordServiceImpl{
		stores: byKind,
		deleters: map[workflow.Kind]draftDeleter{
			workflow.KindProduct:       productRepo,
			workflow.KindInventoryItem: itemRepo,
		},
		historyRepo: historyRepo,
		logger:      logger,
	}
}

func (s *recordServiceImpl) Get(ctx context.Context, kind workflow.Kind, id int64) (*workflow.Record, error) {
	store, ok := s.stores[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown entity kind %q", workflow.ErrNotFound, kind)
	}
	rec, err := store.GetRecord(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: load %s/%d: %v", workflow.ErrStoreUnavailable, kind, id, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s/%d", workflow.ErrNotFound, kind, id)
	}
	return rec, nil
}

func (s *recordServiceImpl) History(ctx context.Context, kind workflow.Kind, id int64) ([]*entity.StatusHistory, error) {
	if _, err := s.Get(ctx, kind, id); err != nil {
		return nil, err
	}
	history, err := s.historyRepo.ListByRecord(ctx, kind, id)
	if err != nil {
		return nil, fmt.Errorf("%w: load history for %s/%d: %v", workflow.ErrStoreUnavailable, kind, id, err)
	}
	return history, nil
}

func (s *recordServiceImpl) DeleteDraft(ctx context.Context, kind workflow.Kind, id int64, act actor.Actor) error {
	deleter, ok := s.deleters[kind]
	if !ok {
		return fmt.Errorf("%w: %s records cannot be deleted", workflow.ErrIllegalTransition, kind)
	}

	rec, err := s.Get(ctx, kind, id)
	if err != nil {
		return err
	}
	if act.ID != rec.OwnerID {
		return fmt.Errorf("%w: actor %d does not own %s/%d", workflow.ErrForbidden, act.ID, kind, id)
	}
	if rec.Status != workflow.StateDraft {
		return fmt.Errorf("%w: only draft records can be deleted, %s/%d is %s", workflow.ErrIllegalTransition, kind, id, rec.Status)
	}

	deleted, err := deleter.DeleteDraft(ctx, id, act.ID)
	if err != nil {
		return fmt.Errorf("%w: delete %s/%d: %v", workflow.ErrStoreUnavailable, kind, id, err)
	}
	if !deleted {
		// Lost a race: the record moved past draft (or vanished) after the
		// check above.
		return fmt.Errorf("%w: %s/%d changed before deletion", workflow.ErrConflict, kind, id)
	}

	s.logger.Info("Draft deleted",
		zap.String("kind", kind.String()),
		zap.Int64("id", id),
		zap.Int64("actor_id", act.ID))
	return nil
}
