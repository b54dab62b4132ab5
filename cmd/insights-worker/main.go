package main

import (
	"context"
	"errors"
	"time"

	"fintrack/internal/cli"
	"fintrack/internal/insights"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting insights-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	backend := cli.InitBackend(context.Background(), logger, cfg, true)

	engine := insights.NewEngine(backend.Store, cfg.Insights)
	digests := services.NewDigestService(engine, backend.Store, cfg.DigestConcurrency)

	digestWorker, err := worker.NewDigestWorker(digests, backend.Events, cfg.DigestSchedule)
	if err != nil {
		logger.Error("Failed to create digest worker", log.FieldError, err)
		backend.Close()
		return
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := digestWorker.Stop(ctx); err != nil {
			logger.ErrorContext(ctx, "Digest worker stop error", log.FieldError, err)
		}
		if err := backend.Close(); err != nil {
			logger.ErrorContext(ctx, "Backend cleanup error", log.FieldError, err)
		}
	})

	if err := digestWorker.Start(ctx); err != nil {
		logger.ErrorContext(ctx, "Failed to start digest schedule", log.FieldError, err)
	}

	go func() {
		err := backend.Events.ConsumeLedgerEvents(ctx, digestWorker.HandleLedgerEvent)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.ErrorContext(ctx, "Ledger event consumption failed", log.FieldError, err)
		}
	}()

	logger.InfoContext(ctx, "Insights worker running",
		"schedule", cfg.DigestSchedule,
		"concurrency", cfg.DigestConcurrency,
		"queue", cfg.AMQPQueue)

	cli.WaitForShutdown(done)
}
