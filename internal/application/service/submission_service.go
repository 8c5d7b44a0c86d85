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

// ProductDraft carries the supplier-provided fields of a new product
type ProductDraft struct {
	Name        string
	Description string
	SKU         string
	Price       float64
	Stock       int
}

// SubmissionService creates workflow-governed records in their initial
// state on behalf of suppliers. Creation is the only write that does not
// flow through the engine; everything after it does.
type SubmissionService interface {
	CreateProduct(ctx context.Context, draft ProductDraft, act actor.Actor) (*entity.Product, error)
	CreateInventoryItem(ctx context.Context, draft ProductDraft, act actor.Actor) (*entity.InventoryItem, error)
	CreateWithdrawal(ctx context.Context, amount float64, bankDetails string, act actor.Actor) (*entity.WithdrawalRequest, error)
	CreatePriceAppeal(ctx context.Context, productID int64, newPrice float64, act actor.Actor) (*entity.PriceAppeal, error)
}

type submissionServiceImpl struct {
	productRepo    port.ProductRepository
	itemRepo       port.InventoryItemRepository
	withdrawalRepo port.WithdrawalRepository
	appealRepo     port.PriceAppealRepository
	logger         *zap.Logger
}

// NewSubmissionService creates a submission service
func NewSubmissionService(
	productRepo port.ProductRepository,
	itemRepo port.InventoryItemRepository,
	withdrawalRepo port.WithdrawalRepository,
	appealRepo port.PriceAppealRepository,
	logger *zap.Logger,
) SubmissionService {
	return &submissionServiceImpl{
		productRepo:    productRepo,
		itemRepo:       itemRepo,
		withdrawalRepo: withdrawalRepo,
		appealRepo:     appealRepo,
		logger:         logger,
	}
}

func requireSupplier(act actor.Actor) error {
	if act.Role != actor.RoleSupplier {
		return fmt.Errorf("%w: role %s cannot create supplier records", workflow.ErrForbidden, act.Role)
	}
	return nil
}

func validateDraft(draft ProductDraft) error {
	if draft.Name == "" {
		return fmt.Errorf("name is required")
	}
	if draft.Price <= 0 {
		return fmt.Errorf("price must be positive: %.2f", draft.Price)
	}
	if draft.Stock < 0 {
		return fmt.Errorf("stock cannot be negative: %d", draft.Stock)
	}
	return nil
}

func (s *submissionServiceImpl) CreateProduct(ctx context.Context, draft ProductDraft, act actor.Actor) (*entity.Product, error) {
	if err := requireSupplier(act); err != nil {
		return nil, err
	}
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	product := &entity.Product{
		SupplierID:  act.ID,
		Name:        draft.Name,
		Description: draft.Description,
		SKU:         draft.SKU,
		Price:       draft.Price,
		Stock:       draft.Stock,
		Status:      workflow.InitialState(workflow.KindProduct).String(),
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("%w: create product: %v", workflow.ErrStoreUnavailable, err)
	}

	s.logger.Info("Product draft created",
		zap.Int64("id", product.ID), zap.Int64("supplier_id", act.ID))
	return product, nil
}

func (s *submissionServiceImpl) CreateInventoryItem(ctx context.Context, draft ProductDraft, act actor.Actor) (*entity.InventoryItem, error) {
	if err := requireSupplier(act); err != nil {
		return nil, err
	}
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	item := &entity.InventoryItem{
		SupplierID:  act.ID,
		Name:        draft.Name,
		Description: draft.Description,
		SKU:         draft.SKU,
		Price:       draft.Price,
		Stock:       draft.Stock,
		Status:      workflow.InitialState(workflow.KindInventoryItem).String(),
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("%w: create inventory item: %v", workflow.ErrStoreUnavailable, err)
	}

	s.logger.Info("Inventory item created",
		zap.Int64("id", item.ID), zap.Int64("supplier_id", act.ID))
	return item, nil
}

func (s *submissionServiceImpl) CreateWithdrawal(ctx context.Context, amount float64, bankDetails string, act actor.Actor) (*entity.WithdrawalRequest, error) {
	if err := requireSupplier(act); err != nil {
		return nil, err
	}

	withdrawal, err := entity.NewWithdrawalRequest(act.ID, amount, bankDetails)
	if err != nil {
		return nil, err
	}
	if err := s.withdrawalRepo.Create(ctx, withdrawal); err != nil {
		return nil, fmt.Errorf("%w: create withdrawal request: %v", workflow.ErrStoreUnavailable, err)
	}

	s.logger.Info("Withdrawal request created",
		zap.Int64("id", withdrawal.ID), zap.Int64("supplier_id", act.ID),
		zap.Float64("amount", amount))
	return withdrawal, nil
}

// CreatePriceAppeal files an appeal against one of the supplier's own
// published products. The old price is captured from the product itself
// so the appeal records what the supplier was actually contesting.
func (s *submissionServiceImpl) CreatePriceAppeal(ctx context.Context, productID int64, newPrice float64, act actor.Actor) (*entity.PriceAppeal, error) {
	if err := requireSupplier(act); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("%w: load product %d: %v", workflow.ErrStoreUnavailable, productID, err)
	}
	if product == nil {
		return nil, fmt.Errorf("%w: product %d", workflow.ErrNotFound, productID)
	}
	if product.SupplierID != act.ID {
		return nil, fmt.Errorf("%w: actor %d does not own product %d", workflow.ErrForbidden, act.ID, productID)
	}

	appeal, err := entity.NewPriceAppeal(act.ID, productID, product.Price, newPrice)
	if err != nil {
		return nil, err
	}
	if err := s.appealRepo.Create(ctx, appeal); err != nil {
		return nil, fmt.Errorf("%w: create price appeal: %v", workflow.ErrStoreUnavailable, err)
	}

	s.logger.Info("Price appeal created",
		zap.Int64("id", appeal.ID), zap.Int64("product_id", productID),
		zap.Float64("old_price", appeal.OldPrice), zap.Float64("new_price", newPrice))
	return appeal, nil
}
