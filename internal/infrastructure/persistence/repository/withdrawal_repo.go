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

// WithdrawalRepository implements port.WithdrawalRepository
type WithdrawalRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewWithdrawalRepository creates a new withdrawal repository
func NewWithdrawalRepository(db *sql.DB, logger *zap.Logger) port.WithdrawalRepository {
	return &WithdrawalRepository{db: db, logger: logger}
}

const withdrawalColumns = `id, supplier_id, amount, bank_details, status, status_reason, created_at, updated_at`

// Kind returns the entity kind this store persists
func (r *WithdrawalRepository) Kind() workflow.Kind {
	return workflow.KindWithdrawalRequest
}

// Create inserts a new withdrawal request and backfills its ID. Amount and
// bank details are immutable afterwards: no update path exists for them.
func (r *WithdrawalRepository) Create(ctx context.Context, w *entity.WithdrawalRequest) error {
	query := `
		INSERT INTO withdrawal_requests (supplier_id, amount, bank_details, status, status_reason)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query,
		w.SupplierID,
		w.Amount,
		w.BankDetails,
		w.Status,
		w.StatusReason,
	)
	if err != nil {
		r.logger.Error("Failed to create withdrawal request", zap.Error(err))
		return fmt.Errorf("failed to create withdrawal request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	w.ID = id
	return nil
}

// GetByID retrieves a withdrawal request by ID, (nil, nil) when absent
func (r *WithdrawalRepository) GetByID(ctx context.Context, id int64) (*entity.WithdrawalRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM withdrawal_requests WHERE id = ?`, withdrawalColumns)

	w, err := r.scanWithdrawal(sqlite.Executor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get withdrawal request", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get withdrawal request: %w", err)
	}
	return w, nil
}

// ListBySupplier retrieves all withdrawal requests made by a supplier
func (r *WithdrawalRepository) ListBySupplier(ctx context.Context, supplierID int64) ([]*entity.WithdrawalRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM withdrawal_requests WHERE supplier_id = ? ORDER BY created_at ASC, id ASC`, withdrawalColumns)

	rows, err := sqlite.Executor(ctx, r.db).QueryContext(ctx, query, supplierID)
	if err != nil {
		r.logger.Error("Failed to list withdrawal requests", zap.Int64("supplier_id", supplierID), zap.Error(err))
		return nil, fmt.Errorf("failed to list withdrawal requests: %w", err)
	}
	defer rows.Close()

	var withdrawals []*entity.WithdrawalRequest
	for rows.Next() {
		w, scanErr := r.scanWithdrawal(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan withdrawal request: %w", scanErr)
		}
		withdrawals = append(withdrawals, w)
	}
	return withdrawals, rows.Err()
}

// GetRecord returns the workflow view of a withdrawal request
func (r *WithdrawalRepository) GetRecord(ctx context.Context, id int64) (*workflow.Record, error) {
	w, err := r.GetByID(ctx, id)
	if err != nil || w == nil {
		return nil, err
	}
	rec := w.WorkflowRecord()
	return &rec, nil
}

// CompareAndSetStatus applies the status write only if the stored status
// still equals from
func (r *WithdrawalRepository) CompareAndSetStatus(ctx context.Context, id int64, from, to workflow.State, reason string) (bool, error) {
	return compareAndSetStatus(ctx, r.db, r.logger, "withdrawal_requests", id, from, to, reason)
}

// ListByStatus returns the workflow views of all requests in the given states
func (r *WithdrawalRepository) ListByStatus(ctx context.Context, states ...workflow.State) ([]workflow.Record, error) {
	return listRecordsByStatus(ctx, r.db, r.logger, "withdrawal_requests", workflow.KindWithdrawalRequest, "supplier_id", states)
}

func (r *WithdrawalRepository) scanWithdrawal(row rowScanner) (*entity.WithdrawalRequest, error) {
	var w entity.WithdrawalRequest
	var reason sql.NullString

	err := row.Scan(
		&w.ID,
		&w.SupplierID,
		&w.Amount,
		&w.BankDetails,
		&w.Status,
		&reason,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	w.StatusReason = reason.String
	return &w, nil
}

// Verify interface compliance
var _ port.WithdrawalRepository = (*WithdrawalRepository)(nil)
