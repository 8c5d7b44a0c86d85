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

// PriceAppealRepository implements port.PriceAppealRepository
type PriceAppealRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPriceAppealRepository creates a new price appeal repository
func NewPriceAppealRepository(db *sql.DB, logger *zap.Logger) port.PriceAppealRepository {
	return &PriceAppealRepository{db: db, logger: logger}
}

const appealColumns = `id, supplier_id, product_id, old_price, new_price, status, status_reason, created_at, updated_at`

// Kind returns the entity kind this store persists
func (r *PriceAppealRepository) Kind() workflow.Kind {
	return workflow.KindPriceAppeal
}

// Create inserts a new price appeal and backfills its ID
func (r *PriceAppealRepository) Create(ctx context.Context, a *entity.PriceAppeal) error {
	query := `
		INSERT INTO price_appeals (supplier_id, product_id, old_price, new_price, status, status_reason)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query,
		a.SupplierID,
		a.ProductID,
		a.OldPrice,
		a.NewPrice,
		a.Status,
		a.StatusReason,
	)
	if err != nil {
		r.logger.Error("Failed to create price appeal", zap.Error(err))
		return fmt.Errorf("failed to create price appeal: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	a.ID = id
	return nil
}

// GetByID retrieves a price appeal by ID, (nil, nil) when absent
func (r *PriceAppealRepository) GetByID(ctx context.Context, id int64) (*entity.PriceAppeal, error) {
	query := fmt.Sprintf(`SELECT %s FROM price_appeals WHERE id = ?`, appealColumns)

	a, err := r.scanAppeal(sqlite.Executor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get price appeal", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get price appeal: %w", err)
	}
	return a, nil
}

// ListBySupplier retrieves all appeals filed by a supplier
func (r *PriceAppealRepository) ListBySupplier(ctx context.Context, supplierID int64) ([]*entity.PriceAppeal, error) {
	query := fmt.Sprintf(`SELECT %s FROM price_appeals WHERE supplier_id = ? ORDER BY created_at ASC, id ASC`, appealColumns)

	rows, err := sqlite.Executor(ctx, r.db).QueryContext(ctx, query, supplierID)
	if err != nil {
		r.logger.Error("Failed to list price appeals", zap.Int64("supplier_id", supplierID), zap.Error(err))
		return nil, fmt.Errorf("failed to list price appeals: %w", err)
	}
	defer rows.Close()

	var appeals []*entity.PriceAppeal
	for rows.Next() {
		a, scanErr := r.scanAppeal(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan price appeal: %w", scanErr)
		}
		appeals = append(appeals, a)
	}
	return appeals, rows.Err()
}

// GetRecord returns the workflow view of a price appeal
func (r *PriceAppealRepository) GetRecord(ctx context.Context, id int64) (*workflow.Record, error) {
	a, err := r.GetByID(ctx, id)
	if err != nil || a == nil {
		return nil, err
	}
	rec := a.WorkflowRecord()
	return &rec, nil
}

// CompareAndSetStatus applies the status write only if the stored status
// still equals from
func (r *PriceAppealRepository) CompareAndSetStatus(ctx context.Context, id int64, from, to workflow.State, reason string) (bool, error) {
	return compareAndSetStatus(ctx, r.db, r.logger, "price_appeals", id, from, to, reason)
}

// ListByStatus returns the workflow views of all appeals in the given states
func (r *PriceAppealRepository) ListByStatus(ctx context.Context, states ...workflow.State) ([]workflow.Record, error) {
	return listRecordsByStatus(ctx, r.db, r.logger, "price_appeals", workflow.KindPriceAppeal, "supplier_id", states)
}

func (r *PriceAppealRepository) scanAppeal(row rowScanner) (*entity.PriceAppeal, error) {
	var a entity.PriceAppeal
	var reason sql.NullString

	err := row.Scan(
		&a.ID,
		&a.SupplierID,
		&a.ProductID,
		&a.OldPrice,
		&a.NewPrice,
		&a.Status,
		&reason,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.StatusReason = reason.String
	return &a, nil
}

// Verify interface compliance
var _ port.PriceAppealRepository = (*PriceAppealRepository)(nil)
