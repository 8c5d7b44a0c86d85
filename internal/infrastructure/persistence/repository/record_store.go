package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/taptosell/marketplace-workflow/internal/domain/workflow"
	"github.com/taptosell/marketplace-workflow/internal/infrastructure/persistence/sqlite"
)

// compareAndSetStatus is the shared optimistic-concurrency status write.
// The WHERE clause pins the expected prior status, so of two racing
// transitions exactly one observes an affected row; the loser reports
// false and the caller decides between not-found and conflict.
func compareAndSetStatus(
	ctx context.Context,
	db *sql.DB,
	logger *zap.Logger,
	table string,
	id int64,
	from, to workflow.State,
	reason string,
) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = ?, status_reason = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`, table)

	result, err := sqlite.Executor(ctx, db).ExecContext(ctx, query, to.String(), reason, id, from.String())
	if err != nil {
		logger.Error("Failed compare-and-set status",
			zap.String("table", table),
			zap.Int64("id", id),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
			zap.Error(err))
		return false, fmt.Errorf("failed to update status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// listRecordsByStatus returns workflow record views for all rows of the
// table in any of the given states, oldest first with a stable ID
// tie-break for queue fairness.
func listRecordsByStatus(
	ctx context.Context,
	db *sql.DB,
	logger *zap.Logger,
	table string,
	kind workflow.Kind,
	ownerColumn string,
	states []workflow.State,
) ([]workflow.Record, error) {
	if len(states) == 0 {
		return []workflow.Record{}, nil
	}

	placeholders, args := assembleStatusPlaceholders(states)
	query := fmt.Sprintf(`
		SELECT id, %s, status, status_reason, created_at, updated_at
		FROM %s
		WHERE status IN (%s)
		ORDER BY created_at ASC, id ASC
	`, ownerColumn, table, placeholders)

	rows, err := sqlite.Executor(ctx, db).QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error("Failed to list records by status",
			zap.String("table", table), zap.Error(err))
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []workflow.Record
	for rows.Next() {
		var rec workflow.Record
		var status string
		var reason sql.NullString
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &status, &reason, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec.Kind = kind
		rec.Status = workflow.State(status)
		rec.StatusReason = reason.String
		records = append(records, rec)
	}
	return records, rows.Err()
}
