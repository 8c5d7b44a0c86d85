package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taptosell/marketplace-workflow/internal/application/port"
	"github.com/taptosell/marketplace-workflow/internal/domain/actor"
	"github.com/taptosell/marketplace-workflow/internal/domain/entity"
	"github.com/taptosell/marketplace-workflow/internal/domain/workflow"
)

// DefaultCommissionRate is the platform commission percentage applied to
// newly approved products when no override has been configured.
const DefaultCommissionRate = 5.0

// SettingsService exposes the global platform configuration map
type SettingsService interface {
	// Get returns the full settings map
	Get(ctx context.Context) (map[string]string, error)

	// Update applies a partial settings map. Administrator only.
	Update(ctx context.Context, partial map[string]string, act actor.Actor) (map[string]string, error)

	// CommissionRate returns the current default commission rate
	CommissionRate(ctx context.Context) (float64, error)

	// MaintenanceMode reports whether the process-wide maintenance gate is on
	MaintenanceMode(ctx context.Context) (bool, error)

	// EnsureDefaults seeds missing settings with their documented initial
	// values. Called once at startup.
	EnsureDefaults(ctx context.Context) error
}

type settingsServiceImpl struct {
	repo      port.SettingsRepository
	txManager port.TransactionManager
	logger    *zap.Logger
}

// NewSettingsService creates a settings service
func NewSettingsService(repo port.SettingsRepository, txManager port.TransactionManager, logger *zap.Logger) SettingsService {
	return &settingsServiceImpl{repo: repo, txManager: txManager, logger: logger}
}

func (s *settingsServiceImpl) Get(ctx context.Context) (map[string]string, error) {
	settings, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load settings: %v", workflow.ErrStoreUnavailable, err)
	}
	out := make(map[string]string, len(settings))
	for _, setting := range settings {
		out[setting.Key] = setting.Value
	}
	return out, nil
}

func (s *settingsServiceImpl) Update(ctx context.Context, partial map[string]string, act actor.Actor) (map[string]string, error) {
	if act.Role != actor.RoleAdministrator {
		return nil, fmt.Errorf("%w: role %s cannot update settings", workflow.ErrForbidden, act.Role)
	}
	for key, value := range partial {
		if err := validateSetting(key, value); err != nil {
			return nil, err
		}
	}
	// All keys commit together: a store failure mid-map must not leave a
	// partial update applied.
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		for key, value := range partial {
			if err := s.repo.Set(txCtx, key, value); err != nil {
				return fmt.Errorf("%w: write setting %s: %v", workflow.ErrStoreUnavailable, key, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for key := range partial {
		s.logger.Info("Setting updated", zap.String("key", key), zap.Int64("actor_id", act.ID))
	}
	return s.Get(ctx)
}

func (s *settingsServiceImpl) CommissionRate(ctx context.Context) (float64, error) {
	setting, err := s.repo.Get(ctx, entity.SettingDefaultCommissionRate)
	if err != nil {
		return 0, fmt.Errorf("%w: load commission rate: %v", workflow.ErrStoreUnavailable, err)
	}
	if setting == nil {
		return DefaultCommissionRate, nil
	}
	rate, err := strconv.ParseFloat(setting.Value, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed commission rate %q: %w", setting.Value, err)
	}
	return rate, nil
}

func (s *settingsServiceImpl) MaintenanceMode(ctx context.Context) (bool, error) {
	setting, err := s.repo.Get(ctx, entity.SettingMaintenanceMode)
	if err != nil {
		return false, fmt.Errorf("%w: load maintenance flag: %v", workflow.ErrStoreUnavailable, err)
	}
	if setting == nil {
		return false, nil
	}
	return setting.Value == "true", nil
}

func (s *settingsServiceImpl) EnsureDefaults(ctx context.Context) error {
	defaults := map[string]string{
		entity.SettingDefaultCommissionRate:   strconv.FormatFloat(DefaultCommissionRate, 'f', 1, 64),
		entity.SettingMaintenanceMode:         "false",
		entity.SettingSupplierRegistrationKey: uuid.NewString(),
	}
	for key, value := range defaults {
		existing, err := s.repo.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("read setting %s: %w", key, err)
		}
		if existing != nil {
			continue
		}
		if err := s.repo.Set(ctx, key, value); err != nil {
			return fmt.Errorf("seed setting %s: %w", key, err)
		}
		s.logger.Info("Seeded default setting", zap.String("key", key))
	}
	return nil
}

func validateSetting(key, value string) error {
	switch key {
	case entity.SettingDefaultCommissionRate:
		rate, err := strconv.ParseFloat(value, 64)
		if err != nil || rate < 0 || rate > 100 {
			return fmt.Errorf("%w: commission rate must be a percentage between 0 and 100", workflow.ErrIllegalTransition)
		}
	case entity.SettingMaintenanceMode:
		if value != "true" && value != "false" {
			return fmt.Errorf("%w: maintenance_mode must be true or false", workflow.ErrIllegalTransition)
		}
	case entity.SettingSupplierRegistrationKey:
		if value == "" {
			return fmt.Errorf("%w: supplier registration key cannot be empty", workflow.ErrIllegalTransition)
		}
	default:
		return fmt.Errorf("%w: unknown setting %q", workflow.ErrNotFound, key)
	}
	return nil
}
