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

// HistoryRepository implements port.HistoryRepository
type HistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sql.DB, logger *zap.Logger) port.HistoryRepository {
	return &HistoryRepository{db: db, logger: logger}
}

// Append inserts one audit trail row
func (r *HistoryRepository) Append(ctx context.Context, h *entity.StatusHistory) error {
	query := `
		INSERT INTO status_history (
			kind, record_id, actor_id, actor_role,
			previous_status, new_status, action, reason
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query,
		h.Kind,
		h.RecordID,
		h.ActorID,
		h.ActorRole,
		h.PreviousStatus,
		h.NewStatus,
		h.Action,
		h.Reason,
	)
	if err != nil {
		r.logger.Error("Failed to append status history", zap.Error(err))
		return fmt.Errorf("failed to append status history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	h.ID = id
	return nil
}

// ListByRecord returns a record's full audit trail in commit order
func (r *HistoryRepository) ListByRecord(ctx context.Context, kind workflow.Kind, recordID int64) ([]*entity.StatusHistory, error) {
	query := `
		SELECT id, kind, record_id, actor_id, actor_role,
			previous_status, new_status, action, reason, created_at
		FROM status_history
		WHERE kind = ? AND record_id = ?
		ORDER BY id ASC
	`
	rows, err := sqlite.Executor(ctx, r.db).QueryContext(ctx, query, kind.String(), recordID)
	if err != nil {
		r.logger.Error("Failed to list status history",
			zap.String("kind", kind.String()), zap.Int64("record_id", recordID), zap.Error(err))
		return nil, fmt.Errorf("failed to list status history: %w", err)
	}
	defer rows.Close()

	var history []*entity.StatusHistory
	for rows.Next() {
		var h entity.StatusHistory
		var reason sql.NullString
		err := rows.Scan(
			&h.ID,
			&h.Kind,
			&h.RecordID,
			&h.ActorID,
			&h.ActorRole,
			&h.PreviousStatus,
			&h.NewStatus,
			&h.Action,
			&reason,
			&h.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan status history: %w", err)
		}
		h.Reason = reason.String
		history = append(history, &h)
	}
	return history, rows.Err()
}

// Verify interface compliance
var _ port.HistoryRepository = (*HistoryRepository)(nil)
