package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/taptosell/marketplace-workflow/internal/application/engine"
	"github.com/taptosell/marketplace-workflow/internal/application/port"
	"github.com/taptosell/marketplace-workflow/internal/domain/actor"
	"github.com/taptosell/marketplace-workflow/internal/domain/workflow"
)

// PromotionService turns a ready inventory item into a pending marketplace
// product. The item's status flip, the product creation and the back-link
// commit as one atomic unit; a promoted item without a product (or the
// reverse) must never be observable.
type PromotionService interface {
	Promote(ctx context.Context, itemID int64, act actor.Actor) (int64, error)
}

type promotionServiceImpl struct {
	engine   *engine.Engine
	itemRepo port.InventoryItemRepository
	logger   *zap.Logger
}

// NewPromotionService creates a promotion service and registers the
// product-creation commit hook on the engine, so every promote
// transition creates the product regardless of which caller fires it.
func NewPromotionService(
	eng *engine.Engine,
	itemRepo port.InventoryItemRepository,
	productRepo port.ProductRepository,
	settings SettingsService,
	logger *zap.Logger,
) PromotionService {
	eng.RegisterHook(workflow.KindInventoryItem, workflow.ActionPromote,
		NewItemPromotionHook(itemRepo, productRepo, settings))
	return &promotionServiceImpl{
		engine:   eng,
		itemRepo: itemRepo,
		logger:   logger,
	}
}

// Promote validates ownership and readiness through the workflow engine;
// the registered commit hook creates the product inside the same
// transaction as the item's ready -> promoted flip.
func (s *promotionServiceImpl) Promote(ctx context.Context, itemID int64, act actor.Actor) (int64, error) {
	_, err := s.engine.Apply(ctx, engine.ApplyRequest{
		Kind:   workflow.KindInventoryItem,
		ID:     itemID,
		Action: workflow.ActionPromote,
		Actor:  act,
	})
	if err != nil {
		return 0, err
	}

	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return 0, fmt.Errorf("%w: load item %d: %v", workflow.ErrStoreUnavailable, itemID, err)
	}
	if item == nil || item.PromotedProductID == nil {
		return 0, fmt.Errorf("%w: read back promoted item %d", workflow.ErrStoreUnavailable, itemID)
	}
	productID := *item.PromotedProductID

	s.logger.Info("Inventory item promoted",
		zap.Int64("item_id", itemID),
		zap.Int64("product_id", productID),
		zap.Int64("supplier_id", act.ID))
	return productID, nil
}
