package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/ryu-qqq/FileFlow-sub007/internal/adapters/eventbroker/nats"
	"github.com/ryu-qqq/FileFlow-sub007/internal/adapters/fetch"
	"github.com/ryu-qqq/FileFlow-sub007/internal/adapters/repository/postgres"
	"github.com/ryu-qqq/FileFlow-sub007/internal/adapters/storage/minio"
	"github.com/ryu-qqq/FileFlow-sub007/internal/config"
	"github.com/ryu-qqq/FileFlow-sub007/internal/core/service/download"
)

func main() {

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := initDB(cfg.Database)
	if err != nil {
		logger.Error("failed to init database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()
	logger.Info("db connection established")

	minioAdapter, err := minio.NewAdapter(ctx, cfg.Minio, logger)
	if err != nil {
		logger.Error("failed to init minio", "error", err)
		os.Exit(1)
	}
	logger.Info("minio adapter initialized")

	unitOfWork := postgres.NewUnitOfWork(db)

	downloadService := download.NewDownloadService(unitOfWork, minioAdapter, fetch.NewHTTPFetcher(cfg.Download.MaxFetchSize), cfg.Download, cfg.Minio.BucketName, logger)

	// dispatch message consumer
	natsConsumer, err := nats.NewNATSConsumer(cfg.NATS, logger)
	if err != nil {
		logger.Error("failed to create NATS consumer", "error", err)
		os.Exit(1)
	}
	logger.Info("NATS consumer initialized")

	if err := natsConsumer.Subscribe(ctx, downloadService); err != nil {
		logger.Error("failed to subscribe to NATS", "error", err)
		os.Exit(1)
	}
	logger.Info("NATS subscription active")

	// max-deliveries advisories flag tasks the worker will never see again
	deadLetterConsumer, err := nats.NewDeadLetterConsumer(cfg.NATS, downloadService, logger)
	if err != nil {
		logger.Error("failed to create dead letter consumer", "error", err)
		os.Exit(1)
	}
	if err := deadLetterConsumer.Subscribe(ctx); err != nil {
		logger.Error("failed to subscribe to dead letter advisories", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("gracefully shutting down download worker")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := natsConsumer.Close(); err != nil {
		logger.Error("failed to close NATS consumer during shutdown", "error", err)
	}
	if err := deadLetterConsumer.Close(); err != nil {
		logger.Error("failed to close dead letter consumer during shutdown", "error", err)
	}

	<-shutdownCtx.Done()
	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		logger.Info("shutdown timeout exceeded")
	}

	logger.Info("download worker shutdown complete")
}

func initDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenCons)
	db.SetMaxIdleConns(cfg.MaxIdleCons)
	db.SetConnMaxLifetime(cfg.ConMaxLifeTime)

	return db, nil
}
