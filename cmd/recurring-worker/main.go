package main

import (
	"context"
	"time"

	"fintrack/internal/cli"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting recurring-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	backend := cli.InitBackend(context.Background(), logger, cfg, false)

	// Occurrences go through the transaction service so each one is
	// validated and announced as a ledger event.
	transactions := services.NewTransactionService(backend.Store, backend.Events, ledger.LoadCategories(cfg.CategoriesFile))
	processor := services.NewRecurringProcessor(backend.Store, transactions)
	runner := services.NewRecurringRunner(processor, services.RecurringRunnerConfig{
		Interval: cfg.RecurringProcessorInterval,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := runner.Stop(ctx); err != nil {
			logger.ErrorContext(ctx, "Recurring runner stop error", log.FieldError, err)
		}
		if err := backend.Close(); err != nil {
			logger.ErrorContext(ctx, "Backend cleanup error", log.FieldError, err)
		}
	})

	logger.InfoContext(ctx, "Recurring processor configured",
		"interval", cfg.RecurringProcessorInterval,
		"backend", cfg.DataBackend,
		"amqp_enabled", backend.Events.Enabled())
	if err := runner.Start(ctx); err != nil {
		logger.ErrorContext(ctx, "Failed to start recurring runner", log.FieldError, err)
	}

	cli.WaitForShutdown(done)
}
