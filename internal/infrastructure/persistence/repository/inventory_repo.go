package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/taptosell/marketplace-workflow/internal/application/port"
	"github.com/taptosell/marketplace-workflow/internal/domain/entity"
	"github.com/taptosell/marketplace-workflow/internal/domain/workflow"
	"github.com/taptosell/marketplace-workflow/internal/infrastructure/persistence/sqlite"
)

// InventoryItemRepository implements port.InventoryItemRepository
type InventoryItemRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInventoryItemRepository creates a new inventory item repository
func NewInventoryItemRepository(db *sql.DB, logger *zap.Logger) port.InventoryItemRepository {
	return &InventoryItemRepository{db: db, logger: logger}
}

const itemColumns = `id, supplier_id, name, description, sku, price, stock,
	status, status_reason, promoted_product_id, created_at, updated_at`

// Kind returns the entity kind this store persists
func (r *InventoryItemRepository) Kind() workflow.Kind {
	return workflow.KindInventoryItem
}

// Create inserts a new inventory item and backfills its ID
func (r *InventoryItemRepository) Create(ctx context.Context, item *entity.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (
			supplier_id, name, description, sku, price, stock, status, status_reason
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query,
		item.SupplierID,
		item.Name,
		item.Description,
		item.SKU,
		item.Price,
		item.Stock,
		item.Status,
		item.StatusReason,
	)
	if err != nil {
		r.logger.Error("Failed to create inventory item", zap.Error(err))
		return fmt.Errorf("failed to create inventory item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	return nil
}

// GetByID retrieves an inventory item by ID, (nil, nil) when absent
func (r *InventoryItemRepository) GetByID(ctx context.Context, id int64) (*entity.InventoryItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM inventory_items WHERE id = ?`, itemColumns)

	item, err := r.scanItem(sqlite.Executor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get inventory item", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get inventory item: %w", err)
	}
	return item, nil
}

// ListBySupplier retrieves all items owned by a supplier. Inventory is
// private: callers must scope every listing to the owning supplier.
func (r *InventoryItemRepository) ListBySupplier(ctx context.Context, supplierID int64) ([]*entity.InventoryItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM inventory_items WHERE supplier_id = ? ORDER BY created_at ASC, id ASC`, itemColumns)

	rows, err := sqlite.Executor(ctx, r.db).QueryContext(ctx, query, supplierID)
	if err != nil {
		r.logger.Error("Failed to list inventory items", zap.Int64("supplier_id", supplierID), zap.Error(err))
		return nil, fmt.Errorf("failed to list inventory items: %w", err)
	}
	defer rows.Close()

	var items []*entity.InventoryItem
	for rows.Next() {
		item, scanErr := r.scanItem(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", scanErr)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// LinkPromotedProduct records the one-way item -> product reference
func (r *InventoryItemRepository) LinkPromotedProduct(ctx context.Context, id, productID int64) error {
	query := `UPDATE inventory_items SET promoted_product_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query, productID, id)
	if err != nil {
		r.logger.Error("Failed to link promoted product",
			zap.Int64("id", id), zap.Int64("product_id", productID), zap.Error(err))
		return fmt.Errorf("failed to link promoted product: %w", err)
	}
	return nil
}

// DeleteDraft deletes an item only while it is still a draft owned by the
// supplier. Returns false when no row matched.
func (r *InventoryItemRepository) DeleteDraft(ctx context.Context, id, supplierID int64) (bool, error) {
	query := `DELETE FROM inventory_items WHERE id = ? AND supplier_id = ? AND status = ?`

	result, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query, id, supplierID, workflow.StateDraft.String())
	if err != nil {
		r.logger.Error("Failed to delete draft item", zap.Int64("id", id), zap.Error(err))
		return false, fmt.Errorf("failed to delete draft item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// GetRecord returns the workflow view of an inventory item
func (r *InventoryItemRepository) GetRecord(ctx context.Context, id int64) (*workflow.Record, error) {
	item, err := r.GetByID(ctx, id)
	if err != nil || item == nil {
		return nil, err
	}
	rec := item.WorkflowRecord()
	return &rec, nil
}

// CompareAndSetStatus applies the status write only if the stored status
// still equals from
func (r *InventoryItemRepository) CompareAndSetStatus(ctx context.Context, id int64, from, to workflow.State, reason string) (bool, error) {
	return compareAndSetStatus(ctx, r.db, r.logger, "inventory_items", id, from, to, reason)
}

// ListByStatus returns the workflow views of all items in the given states
func (r *InventoryItemRepository) ListByStatus(ctx context.Context, states ...workflow.State) ([]workflow.Record, error) {
	return listRecordsByStatus(ctx, r.db, r.logger, "inventory_items", workflow.KindInventoryItem, "supplier_id", states)
}

func (r *InventoryItemRepository) scanItem(row rowScanner) (*entity.InventoryItem, error) {
	var item entity.InventoryItem
	var description, skuVal, reason sql.NullString
	var promotedID sql.NullInt64

	err := row.Scan(
		&item.ID,
		&item.SupplierID,
		&item.Name,
		&description,
		&skuVal,
		&item.Price,
		&item.Stock,
		&item.Status,
		&reason,
		&promotedID,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Description = description.String
	item.SKU = skuVal.String
	item.StatusReason = reason.String
	if promotedID.Valid {
		item.PromotedProductID = &promotedID.Int64
	}
	return &item, nil
}

// Verify interface compliance
var _ port.InventoryItemRepository = (*InventoryItemRepository)(nil)
