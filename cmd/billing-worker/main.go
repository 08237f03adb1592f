package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"cobranca/internal/amqp"
	"cobranca/internal/backend"
	"cobranca/internal/config"
	"cobranca/internal/core"
	"cobranca/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting billing-worker")

	// Load configuration
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Create the backing store
	factory := backend.NewFactory(logger)
	result, err := factory.CreateBackend(context.Background(), backend.Config{
		Type:         backend.Type(cfg.DataBackend),
		SQLiteDBPath: cfg.SQLiteDBPath,
	})
	if err != nil {
		logger.Error("Failed to create backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}()
	}

	// Initialize AMQP client so overdue transitions notify the export worker
	// (optional; the billing pass itself works without it)
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without change notifications", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			logger.Info("AMQP client initialized - status changes will be published")
		}
	} else {
		logger.Info("AMQP disabled - status changes will not be published")
	}

	mutations := services.NewMutationService(result.Store, amqpClient)
	processor := services.NewBillingProcessor(result.Store, mutations)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Billing processor configured",
		"interval", cfg.BillingInterval,
		"backend", cfg.DataBackend)

	runPass := func(now time.Time) {
		today := core.DateOf(now.UTC())

		updated, err := processor.MarkOverdue(ctx, today)
		if err != nil {
			logger.Error("Overdue pass failed", "error", err)
		} else if updated > 0 {
			logger.Info("Overdue pass complete", "installments_updated", updated)
		}

		created, err := processor.EnsureFixedBillInstallments(ctx)
		if err != nil {
			logger.Error("Fixed bill backfill failed", "error", err)
		} else if created > 0 {
			logger.Info("Fixed bill backfill complete", "installments_created", created)
		}
	}

	// Run initial pass on startup
	logger.Info("Running initial billing pass...")
	runPass(time.Now())

	// Setup periodic processing ticker
	ticker := time.NewTicker(cfg.BillingInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				runPass(now)
			}
		}
	}()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	logger.Info("Shutting down billing-worker...")
	cancel()

	select {
	case <-shutdownCtx.Done():
		logger.Warn("Shutdown timeout reached")
	case <-time.After(2 * time.Second):
		logger.Info("Billing-worker shutdown complete")
	}
}
