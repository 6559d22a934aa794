package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"factoring/internal/amqp"
	"factoring/internal/cli"
	"factoring/internal/export"
	"factoring/internal/export/gsheet"
	applog "factoring/internal/log"
	"factoring/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger().WithComponent(applog.ComponentWorker)

	logger.Info("Starting factoring-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	// Google Sheets audit trail is optional
	var appender export.AuditAppender
	if cfg.AuditSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		appender = client
		logger.Info("Google Sheets audit trail enabled",
			"spreadsheet_id", cfg.AuditSpreadsheetID, "sheet", cfg.AuditSheetName)
	} else {
		logger.Info("Google Sheets audit trail disabled - no AUDIT_SPREADSHEET_ID provided")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	auditWorker := worker.NewAuditWorker(appender)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = amqpClient.ConsumeAudit(ctx, func(event *amqp.AuditEvent) error {
		return auditWorker.HandleEvent(ctx, event)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Audit consumption failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
