package service

import (
	"context"
	"fmt"
	"time"

	"github.com/taptosell/marketplace-workflow/internal/application/engine"
	"github.com/taptosell/marketplace-workflow/internal/application/port"
	"github.com/taptosell/marketplace-workflow/internal/domain/entity"
	"github.com/taptosell/marketplace-workflow/internal/domain/workflow"
)

// NewItemPromotionHook returns the commit hook that creates the pending
// marketplace product when an inventory item is promoted, and links the
// item to it. Registered on the engine for every promote transition, so
// the status flip can never commit without the product: a promoted item
// with no product would be silent data corruption.
func NewItemPromotionHook(
	itemRepo port.InventoryItemRepository,
	productRepo port.ProductRepository,
	settings SettingsService,
) engine.CommitHook {
	return func(ctx context.Context, rec workflow.Record, edge workflow.Edge) error {
		item, err := itemRepo.GetByID(ctx, rec.ID)
		if err != nil {
			return fmt.Errorf("%w: load item %d: %v", workflow.ErrStoreUnavailable, rec.ID, err)
		}
		if item == nil {
			return fmt.Errorf("%w: inventory item %d", workflow.ErrNotFound, rec.ID)
		}

		commissionRate, err := settings.CommissionRate(ctx)
		if err != nil {
			return err
		}

		product := &entity.Product{
			SupplierID:     item.SupplierID,
			Name:           item.Name,
			Description:    item.Description,
			SKU:            item.SKU,
			Price:          item.Price,
			Stock:          item.Stock,
			CommissionRate: commissionRate,
			Status:         workflow.StatePending.String(),
			SourceItemID:   &item.ID,
			CreatedAt:      time.Now(),
			UpdatedAt:      time.Now(),
		}
		if err := productRepo.Create(ctx, product); err != nil {
			return fmt.Errorf("%w: create product from item %d: %v", workflow.ErrStoreUnavailable, rec.ID, err)
		}
		if err := itemRepo.LinkPromotedProduct(ctx, rec.ID, product.ID); err != nil {
			return fmt.Errorf("%w: link item %d to product %d: %v", workflow.ErrStoreUnavailable, rec.ID, product.ID, err)
		}
		return nil
	}
}

// NewPriceAppealApprovalHook returns the commit hook that applies the
// appealed price to the target product. It runs inside the appeal's
// approval transaction: the price write and the status flip commit
// together or not at all.
func NewPriceAppealApprovalHook(appealRepo port.PriceAppealRepository, productRepo port.ProductRepository) engine.CommitHook {
	return func(ctx context.Context, rec workflow.Record, edge workflow.Edge) error {
		appeal, err := appealRepo.GetByID(ctx, rec.ID)
		if err != nil {
			return fmt.Errorf("%w: load appeal %d: %v", workflow.ErrStoreUnavailable, rec.ID, err)
		}
		if appeal == nil {
			return fmt.Errorf("%w: price appeal %d", workflow.ErrNotFound, rec.ID)
		}

		product, err := productRepo.GetByID(ctx, appeal.ProductID)
		if err != nil {
			return fmt.Errorf("%w: load product %d: %v", workflow.ErrStoreUnavailable, appeal.ProductID, err)
		}
		if product == nil {
			return fmt.Errorf("%w: product %d referenced by appeal %d", workflow.ErrNotFound, appeal.ProductID, rec.ID)
		}

		if err := productRepo.UpdatePrice(ctx, appeal.ProductID, appeal.NewPrice); err != nil {
			return fmt.Errorf("%w: apply price %.2f to product %d: %v", workflow.ErrStoreUnavailable, appeal.NewPrice, appeal.ProductID, err)
		}
		return nil
	}
}

// NewProductApprovalHook returns the commit hook that stamps the current
// default commission rate onto a product when it is approved for the
// marketplace.
func NewProductApprovalHook(productRepo port.ProductRepository, settings SettingsService) engine.CommitHook {
	return func(ctx context.Context, rec workflow.Record, edge workflow.Edge) error {
		rate, err := settings.CommissionRate(ctx)
		if err != nil {
			return err
		}
		if err := productRepo.SetCommissionRate(ctx, rec.ID, rate); err != nil {
			return fmt.Errorf("%w: stamp commission on product %d: %v", workflow.ErrStoreUnavailable, rec.ID, err)
		}
		return nil
	}
}
