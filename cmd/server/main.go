package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	marketplaceworkflow "github.com/taptosell/marketplace-workflow"
	"github.com/taptosell/marketplace-workflow/internal/api"
	"github.com/taptosell/marketplace-workflow/internal/application/engine"
	"github.com/taptosell/marketplace-workflow/internal/application/port"
	"github.com/taptosell/marketplace-workflow/internal/application/service"
	"github.com/taptosell/marketplace-workflow/internal/config"
	"github.com/taptosell/marketplace-workflow/internal/domain/workflow"
	"github.com/taptosell/marketplace-workflow/internal/infrastructure/persistence/repository"
	"github.com/taptosell/marketplace-workflow/internal/infrastructure/persistence/sqlite"
	"github.com/taptosell/marketplace-workflow/pkg/database"
	"github.com/taptosell/marketplace-workflow/pkg/logging"
)

func main() {
	// Load .env if present, real environment wins
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting marketplace workflow service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(marketplaceworkflow.MigrationsFS); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Repositories
	productRepo := repository.NewProductRepository(db.DB, logger)
	itemRepo := repository.NewInventoryItemRepository(db.DB, logger)
	withdrawalRepo := repository.NewWithdrawalRepository(db.DB, logger)
	appealRepo := repository.NewPriceAppealRepository(db.DB, logger)
	historyRepo := repository.NewHistoryRepository(db.DB, logger)
	settingsRepo := repository.NewSettingsRepository(db.DB, logger)

	txManager := sqlite.NewDB(db.DB, logger)

	// Services
	settingsService := service.NewSettingsService(settingsRepo, txManager, logger)

	ctx := context.Background()
	if err := settingsService.EnsureDefaults(ctx); err != nil {
		logger.Fatal("Failed to seed platform settings", zap.Error(err))
	}

	// Workflow engine
	eng := engine.New(workflow.DefaultTable(), txManager, historyRepo, logger)
	eng.RegisterStore(productRepo)
	eng.RegisterStore(itemRepo)
	eng.RegisterStore(withdrawalRepo)
	eng.RegisterStore(appealRepo)
	eng.RegisterHook(workflow.KindProduct, workflow.ActionApprove,
		service.NewProductApprovalHook(productRepo, settingsService))
	eng.RegisterHook(workflow.KindPriceAppeal, workflow.ActionApprove,
		service.NewPriceAppealApprovalHook(appealRepo, productRepo))

	stores := []port.RecordStore{productRepo, itemRepo, withdrawalRepo, appealRepo}
	queueService := service.NewApprovalQueueService(stores, logger)
	promotionService := service.NewPromotionService(eng, itemRepo, productRepo, settingsService, logger)
	recordService := service.NewRecordService(stores, productRepo, itemRepo, historyRepo, logger)
	submissionService := service.NewSubmissionService(productRepo, itemRepo, withdrawalRepo, appealRepo, logger)

	server := api.NewServer(api.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, eng, queueService, promotionService, settingsService, recordService, submissionService, logger)

	// Run until interrupted
	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(runCtx); err != nil {
		logger.Fatal("Server exited with error", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}
