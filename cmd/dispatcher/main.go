package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/ryu-qqq/FileFlow-sub007/internal/adapters/eventbroker/nats"
	"github.com/ryu-qqq/FileFlow-sub007/internal/adapters/repository/postgres"
	"github.com/ryu-qqq/FileFlow-sub007/internal/adapters/webhook"
	"github.com/ryu-qqq/FileFlow-sub007/internal/config"
	"github.com/ryu-qqq/FileFlow-sub007/internal/core/port"
	"github.com/ryu-qqq/FileFlow-sub007/internal/core/service/dispatch"
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

	publisher, err := nats.NewNATSPublisher(ctx, cfg.NATS, logger)
	if err != nil {
		logger.Error("failed to create NATS publisher", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("failed to close NATS publisher", "error", err)
		}
	}()
	logger.Info("NATS publisher initialized")

	webhookClient := webhook.NewClient(cfg.Dispatch.WebhookTimeout, logger)

	outboxRepo := postgres.NewSQLOutboxRepository(db)
	dispatchService := dispatch.NewDispatchService(outboxRepo, publisher, webhookClient, cfg.Dispatch, logger)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		runDispatchLoop(ctx, dispatchService, cfg.Dispatch.PollEvery, logger)
	}()

	<-ctx.Done()
	logger.Info("gracefully shutting down dispatcher")

	wg.Wait()
	logger.Info("dispatcher shutdown complete")
}

// runDispatchLoop drains both outbox channels once per tick
func runDispatchLoop(ctx context.Context, service port.DispatchService, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	logger.Info("dispatch loop initialized", "interval", every)

	for {
		select {
		case <-ticker.C:
			if n, err := service.DispatchQueue(ctx); err != nil {
				logger.Error("queue dispatch failed", "error", err)
			} else if n > 0 {
				logger.Info("queue outbox batch dispatched", "count", n)
			}

			if n, err := service.DispatchWebhooks(ctx); err != nil {
				logger.Error("webhook dispatch failed", "error", err)
			} else if n > 0 {
				logger.Info("webhook outbox batch dispatched", "count", n)
			}
		case <-ctx.Done():
			logger.Info("dispatch loop stopped")
			return
		}
	}
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
