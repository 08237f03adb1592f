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
	"cobranca/internal/sheets"
	gsheet "cobranca/internal/sheets/google"
	sheetsmem "cobranca/internal/sheets/memory"
	"cobranca/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting cobranca-worker")

	// Load configuration
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Create the backing store (shared with the server via sqlite)
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

	// Initialize the report writer. Without a spreadsheet the worker still
	// runs, capturing reports in memory so the pipeline stays exercised.
	var writer sheets.ReportWriter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		writer = client
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		writer = sheetsmem.New()
		logger.Info("Google Sheets disabled - reports captured in memory only")
	}

	// Initialize AMQP client for consuming entity change messages
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	exportWorker := worker.NewExportWorker(services.NewSnapshotLoader(result.Store), writer, cfg.ExportBatchSize)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Consume change messages; they only mark the snapshot dirty.
	go func() {
		handler := func(msg *amqp.EntityChangedMessage) error {
			return exportWorker.HandleChangeMessage(ctx, msg)
		}
		if err := amqpClient.ConsumeEntityChanges(ctx, handler); err != nil {
			if err != context.Canceled {
				logger.Error("Message consumption failed", "error", err)
			}
			cancel()
		}
	}()

	// Periodic export tick; the first tick exports unconditionally.
	ticker := time.NewTicker(cfg.ExportInterval)
	defer ticker.Stop()

	logger.Info("Export worker configured", "interval", cfg.ExportInterval)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				ran, err := exportWorker.ExportIfDirty(ctx, core.DateOf(now.UTC()))
				if err != nil {
					logger.Error("Export failed", "error", err)
				} else if ran {
					logger.Info("Export complete", "next_check", now.Add(cfg.ExportInterval).Format("15:04:05"))
				}
			}
		}
	}()

	// Run the initial export immediately instead of waiting a full interval.
	if _, err := exportWorker.ExportIfDirty(ctx, core.DateOf(time.Now().UTC())); err != nil {
		logger.Error("Initial export failed", "error", err)
	}

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

	logger.Info("Shutting down worker...")
	cancel()

	select {
	case <-shutdownCtx.Done():
		logger.Warn("Shutdown timeout reached")
	case <-time.After(5 * time.Second):
		logger.Info("Worker shutdown complete")
	}
}
