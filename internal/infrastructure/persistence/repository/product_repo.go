package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/taptosell/marketplace-workflow/internal/application/port"
	"github.com/taptosell/marketplace-workflow/internal/domain/entity"
	"github.com/taptosell/marketplace-workflow/internal/domain/workflow"
	"github.com/taptosell/marketplace-workflow/internal/infrastructure/persistence/sqlite"
)

// ProductRepository implements port.ProductRepository
type ProductRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *sql.DB, logger *zap.Logger) port.ProductRepository {
	return &ProductRepository{db: db, logger: logger}
}

const productColumns = `id, supplier_id, name, description, sku, price, stock,
	commission_rate, status, status_reason, source_item_id, created_at, updated_at`

// Kind returns the entity kind this store persists
func (r *ProductRepository) Kind() workflow.Kind {
	return workflow.KindProduct
}

// Create inserts a new product and backfills its ID
func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (
			supplier_id, name, description, sku, price, stock,
			commission_rate, status, status_reason, source_item_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query,
		p.SupplierID,
		p.Name,
		p.Description,
		p.SKU,
		p.Price,
		p.Stock,
		p.CommissionRate,
		p.Status,
		p.StatusReason,
		p.SourceItemID,
	)
	if err != nil {
		r.logger.Error("Failed to create product", zap.Error(err))
		return fmt.Errorf("failed to create product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	p.ID = id
	return nil
}

// GetByID retrieves a product by ID, (nil, nil) when absent
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = ?`, productColumns)

	p, err := r.scanProduct(sqlite.Executor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get product", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// ListBySupplier retrieves all products owned by a supplier
func (r *ProductRepository) ListBySupplier(ctx context.Context, supplierID int64) ([]*entity.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE supplier_id = ? ORDER BY created_at ASC, id ASC`, productColumns)

	rows, err := sqlite.Executor(ctx, r.db).QueryContext(ctx, query, supplierID)
	if err != nil {
		r.logger.Error("Failed to list products", zap.Int64("supplier_id", supplierID), zap.Error(err))
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*entity.Product
	for rows.Next() {
		p, scanErr := r.scanProduct(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan product: %w", scanErr)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// UpdatePrice sets a product's price
func (r *ProductRepository) UpdatePrice(ctx context.Context, id int64, price float64) error {
	query := `UPDATE products SET price = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query, price, id)
	if err != nil {
		r.logger.Error("Failed to update product price", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update product price: %w", err)
	}
	return nil
}

// SetCommissionRate stamps the platform commission onto a product
func (r *ProductRepository) SetCommissionRate(ctx context.Context, id int64, rate float64) error {
	query := `UPDATE products SET commission_rate = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query, rate, id)
	if err != nil {
		r.logger.Error("Failed to set commission rate", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to set commission rate: %w", err)
	}
	return nil
}

// DeleteDraft deletes a product only while it is still a draft owned by
// the supplier. Returns false when no row matched.
func (r *ProductRepository) DeleteDraft(ctx context.Context, id, supplierID int64) (bool, error) {
	query := `DELETE FROM products WHERE id = ? AND supplier_id = ? AND status = ?`

	result, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query, id, supplierID, workflow.StateDraft.String())
	if err != nil {
		r.logger.Error("Failed to delete draft product", zap.Int64("id", id), zap.Error(err))
		return false, fmt.Errorf("failed to delete draft product: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// GetRecord returns the workflow view of a product
func (r *ProductRepository) GetRecord(ctx context.Context, id int64) (*workflow.Record, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil || p == nil {
		return nil, err
	}
	rec := p.WorkflowRecord()
	return &rec, nil
}

// CompareAndSetStatus applies the status write only if the stored status
// still equals from
func (r *ProductRepository) CompareAndSetStatus(ctx context.Context, id int64, from, to workflow.State, reason string) (bool, error) {
	return compareAndSetStatus(ctx, r.db, r.logger, "products", id, from, to, reason)
}

// ListByStatus returns the workflow views of all products in the given
// states, oldest first
func (r *ProductRepository) ListByStatus(ctx context.Context, states ...workflow.State) ([]workflow.Record, error) {
	return listRecordsByStatus(ctx, r.db, r.logger, "products", workflow.KindProduct, "supplier_id", states)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *ProductRepository) scanProduct(row rowScanner) (*entity.Product, error) {
	var p entity.Product
	var description, skuVal, reason sql.NullString
	var sourceItemID sql.NullInt64

	err := row.Scan(
		&p.ID,
		&p.SupplierID,
		&p.Name,
		&description,
		&skuVal,
		&p.Price,
		&p.Stock,
		&p.CommissionRate,
		&p.Status,
		&reason,
		&sourceItemID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Description = description.String
	p.SKU = skuVal.String
	p.StatusReason = reason.String
	if sourceItemID.Valid {
		p.SourceItemID = &sourceItemID.Int64
	}
	return &p, nil
}

// assembleStatusPlaceholders builds the "?, ?, ..." fragment for an IN clause
func assembleStatusPlaceholders(states []workflow.State) (string, []interface{}) {
	placeholders := make([]string, len(states))
	args := make([]interface{}, len(states))
	for i, s := range states {
		placeholders[i] = "?"
		args[i] = s.String()
	}
	return strings.Join(placeholders, ", "), args
}

// Verify interface compliance
var _ port.ProductRepository = (*ProductRepository)(nil)
