package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"kontax/portal-backend/internal/config"
	"kontax/portal-backend/internal/ledger"
	"kontax/portal-backend/internal/reports/scheduler"
	"kontax/portal-backend/pkg/storage"
)

func newStorage(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (storage.S3Client, error) {
	if cfg.Bucket == "" {
		logger.Warn("S3_BUCKET not set, archives are kept in memory")
		return storage.NewMemoryClient(), nil
	}
	return storage.NewS3Client(ctx, storage.S3Config{
		Region:          cfg.Region,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		Endpoint:        cfg.Endpoint,
	})
}

func main() {
	period := flag.String("period", "", "archive this period (YYYY-MM) once and exit")
	flag.Parse()

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := config.OpenGorm(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Create context that cancels on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := newStorage(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}

	execConfig := scheduler.DefaultExecutorConfig()
	execConfig.Bucket = cfg.Storage.Bucket
	executor := scheduler.NewExecutor(ledger.NewRepository(db), store, logger, execConfig)

	if *period != "" {
		result, err := executor.Execute(ctx, *period)
		if err != nil {
			logger.Fatal("Ledger archive failed", zap.Error(err))
		}
		logger.Info("Ledger archive finished",
			zap.String("status", result.Status),
			zap.Int("archived", len(result.Archived)))
		return
	}

	if !cfg.Scheduler.Enabled {
		logger.Info("Ledger archive disabled, exiting")
		return
	}

	manager := scheduler.NewScheduleManager(logger)
	if err := scheduler.RegisterArchiveJob(manager, executor, cfg.Scheduler.ArchiveCron, cfg.Scheduler.Timezone); err != nil {
		logger.Fatal("Failed to schedule ledger archive", zap.Error(err))
	}
	if next, err := scheduler.NextExecution(cfg.Scheduler.ArchiveCron, cfg.Scheduler.Timezone, time.Now()); err == nil {
		logger.Info("Ledger archive scheduled",
			zap.String("schedule", scheduler.DescribeCronExpression(cfg.Scheduler.ArchiveCron)),
			zap.Time("next_run", next))
	}

	if err := manager.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}

	<-ctx.Done()
	logger.Info("Shutdown signal received")
	manager.Stop()
	logger.Info("Archive worker stopped")
}
