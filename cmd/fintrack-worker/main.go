package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/config"
	"fintrack/internal/export"
	applog "fintrack/internal/log"
	"fintrack/internal/store/sqlite"
	"fintrack/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: applog.ComponentWorker})
	applog.SetDefault(logger)

	logger.Info("Starting fintrack-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err.Error())
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}

	// The worker reads records by id, so it needs the shared SQLite store.
	st, err := sqlite.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open SQLite store", applog.FieldError, err.Error(), "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer st.Close()

	mirror, err := export.NewFromEnv(context.Background())
	if err != nil {
		logger.Error("Failed to initialize spreadsheet mirror", applog.FieldError, err.Error())
		os.Exit(1)
	}

	exportWorker := worker.NewExportWorker(st, mirror)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := amqp.ConsumeWithReconnect(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, func(msg *amqp.RecordChangeMessage) error {
			return exportWorker.HandleChange(ctx, msg)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	logger.Info("Consuming record changes",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)

	if err := g.Wait(); err != nil {
		logger.Error("Worker error", applog.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
