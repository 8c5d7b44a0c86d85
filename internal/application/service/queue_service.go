package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/taptosell/marketplace-workflow/internal/application/port"
	"github.com/taptosell/marketplace-workflow/internal/domain/actor"
	"github.com/taptosell/marketplace-workflow/internal/domain/workflow"
)

// ApprovalQueueService lists records awaiting moderator action
type ApprovalQueueService interface {
	// ListAwaiting returns all records of the kind currently awaiting a
	// decision, ordered oldest first. It always re-queries the store: a
	// cached queue could present an already-processed record as actionable.
	ListAwaiting(ctx context.Context, kind workflow.Kind, act actor.Actor) ([]workflow.Record, error)

	// ExportAwaiting renders the awaiting queue as an xlsx workbook for
	// the moderator dashboard download
	ExportAwaiting(ctx context.Context, kind workflow.Kind, act actor.Actor) ([]byte, error)
}

type queueServiceImpl struct {
	stores map[workflow.Kind]port.RecordStore
	logger *zap.Logger
}

// NewApprovalQueueService creates a queue service over the given stores
func NewApprovalQueueService(stores []port.RecordStore, logger *zap.Logger) ApprovalQueueService {
	byKind := make(map[workflow.Kind]port.RecordStore, len(stores))
	for _, s := range stores {
		byKind[s.Kind()] = s
	}
	return &queueServiceImpl{stores: byKind, logger: logger}
}

func (s *queueServiceImpl) ListAwaiting(ctx context.Context, kind workflow.Kind, act actor.Actor) ([]workflow.Record, error) {
	if !act.Role.CanModerate() {
		return nil, fmt.Errorf("%w: role %s cannot list approval queues", workflow.ErrForbidden, act.Role)
	}
	store, ok := s.stores[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown entity kind %q", workflow.ErrNotFound, kind)
	}

	states := workflow.AwaitingStates(kind)
	if len(states) == 0 {
		// Kinds without a moderation queue (inventory items) have nothing
		// awaiting anyone.
		return []workflow.Record{}, nil
	}

	records, err := store.ListByStatus(ctx, states...)
	if err != nil {
		s.logger.Error("Failed to list awaiting records",
			zap.String("kind", kind.String()), zap.Error(err))
		return nil, fmt.Errorf("%w: list %s queue: %v", workflow.ErrStoreUnavailable, kind, err)
	}
	if records == nil {
		records = []workflow.Record{}
	}
	return records, nil
}
