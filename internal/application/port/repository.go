package port

import (
	"context"

	"github.com/taptosell/marketplace-workflow/internal/domain/entity"
	"github.com/taptosell/marketplace-workflow/internal/domain/workflow"
)

// RecordStore is the engine-facing persistence contract for one entity
// kind. Implementations must honor compare-and-set semantics: a status
// write applies only if the record's stored status still equals the
// expected prior status at commit time.
type RecordStore interface {
	// Kind returns the entity kind this store persists
	Kind() workflow.Kind

	// GetRecord returns the workflow view of a record, or (nil, nil) when
	// the record does not exist
	GetRecord(ctx context.Context, id int64) (*workflow.Record, error)

	// CompareAndSetStatus writes (status, reason) only if the stored
	// status still equals from. It returns false when no row matched,
	// which the caller disambiguates by re-reading.
	CompareAndSetStatus(ctx context.Context, id int64, from, to workflow.State, reason string) (bool, error)

	// ListByStatus returns all records in any of the given states ordered
	// by creation time ascending, oldest first
	ListByStatus(ctx context.Context, states ...workflow.State) ([]workflow.Record, error)
}

// ProductRepository defines persistence operations for Product
type ProductRepository interface {
	RecordStore
	Create(ctx context.Context, p *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	ListBySupplier(ctx context.Context, supplierID int64) ([]*entity.Product, error)
	UpdatePrice(ctx context.Context, id int64, price float64) error
	SetCommissionRate(ctx context.Context, id int64, rate float64) error
	DeleteDraft(ctx context.Context, id, supplierID int64) (bool, error)
}

// InventoryItemRepository defines persistence operations for InventoryItem
type InventoryItemRepository interface {
	RecordStore
	Create(ctx context.Context, item *entity.InventoryItem) error
	GetByID(ctx context.Context, id int64) (*entity.InventoryItem, error)
	ListBySupplier(ctx context.Context, supplierID int64) ([]*entity.InventoryItem, error)
	LinkPromotedProduct(ctx context.Context, id, productID int64) error
	DeleteDraft(ctx context.Context, id, supplierID int64) (bool, error)
}

// WithdrawalRepository defines persistence operations for WithdrawalRequest
type WithdrawalRepository interface {
	RecordStore
	Create(ctx context.Context, w *entity.WithdrawalRequest) error
	GetByID(ctx context.Context, id int64) (*entity.WithdrawalRequest, error)
	ListBySupplier(ctx context.Context, supplierID int64) ([]*entity.WithdrawalRequest, error)
}

// PriceAppealRepository defines persistence operations for PriceAppeal
type PriceAppealRepository interface {
	RecordStore
	Create(ctx context.Context, a *entity.PriceAppeal) error
	GetByID(ctx context.Context, id int64) (*entity.PriceAppeal, error)
	ListBySupplier(ctx context.Context, supplierID int64) ([]*entity.PriceAppeal, error)
}

// HistoryRepository defines persistence operations for the status audit trail
type HistoryRepository interface {
	Append(ctx context.Context, h *entity.StatusHistory) error
	ListByRecord(ctx context.Context, kind workflow.Kind, recordID int64) ([]*entity.StatusHistory, error)
}

// SettingsRepository defines persistence operations for platform settings
type SettingsRepository interface {
	Get(ctx context.Context, key string) (*entity.PlatformSetting, error)
	GetAll(ctx context.Context) ([]*entity.PlatformSetting, error)
	Set(ctx context.Context, key, value string) error
}

// TransactionManager runs a function within a storage transaction. Nested
// calls reuse the transaction already carried by the context, so a service
// can compose several repository writes into one atomic unit.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
