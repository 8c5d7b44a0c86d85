package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/taptosell/marketplace-workflow/internal/application/port"
	"github.com/taptosell/marketplace-workflow/internal/domain/entity"
	"github.com/taptosell/marketplace-workflow/internal/infrastructure/persistence/sqlite"
)

// SettingsRepository implements port.SettingsRepository
type SettingsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *sql.DB, logger *zap.Logger) port.SettingsRepository {
	return &SettingsRepository{db: db, logger: logger}
}

// Get retrieves one setting by key, (nil, nil) when absent
func (r *SettingsRepository) Get(ctx context.Context, key string) (*entity.PlatformSetting, error) {
	query := `SELECT key, value, description, updated_at FROM platform_settings WHERE key = ?`

	var s entity.PlatformSetting
	var description sql.NullString
	err := sqlite.Executor(ctx, r.db).QueryRowContext(ctx, query, key).Scan(
		&s.Key, &s.Value, &description, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get setting", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}
	s.Description = description.String
	return &s, nil
}

// GetAll retrieves every setting
func (r *SettingsRepository) GetAll(ctx context.Context) ([]*entity.PlatformSetting, error) {
	query := `SELECT key, value, description, updated_at FROM platform_settings ORDER BY key ASC`

	rows, err := sqlite.Executor(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list settings", zap.Error(err))
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	var settings []*entity.PlatformSetting
	for rows.Next() {
		var s entity.PlatformSetting
		var description sql.NullString
		if err := rows.Scan(&s.Key, &s.Value, &description, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		s.Description = description.String
		settings = append(settings, &s)
	}
	return settings, rows.Err()
}

// Set upserts one setting
func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO platform_settings (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`
	_, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query, key, value)
	if err != nil {
		r.logger.Error("Failed to set setting", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to set setting: %w", err)
	}
	return nil
}

// Verify interface compliance
var _ port.SettingsRepository = (*SettingsRepository)(nil)
