package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/insights"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	backend := cli.InitBackend(ctx, logger, cfg, false)

	categories := ledger.LoadCategories(cfg.CategoriesFile)
	transactions := services.NewTransactionService(backend.Store, backend.Events, categories)
	budgets := services.NewBudgetService(backend.Store)
	recurring := services.NewRecurringProcessor(backend.Store, transactions)
	engine := insights.NewEngine(backend.Store, cfg.Insights)
	digests := services.NewDigestService(engine, backend.Store, cfg.DigestConcurrency)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Dependencies{
		Transactions: transactions,
		Budgets:      budgets,
		Recurring:    recurring,
		Insights:     digests,
		Ready: func(ctx context.Context) error {
			return errors.Join(backend.Ready(ctx), backend.Events.Ready(ctx))
		},
		Logger:    logger,
		RateLimit: ratelimit.DefaultConfig(),
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	_, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.ErrorContext(ctx, "Server shutdown error", log.FieldError, err)
		}
		if err := backend.Close(); err != nil {
			logger.ErrorContext(ctx, "Backend cleanup error", log.FieldError, err)
		}
	})

	logger.InfoContext(ctx, "Starting fintrack server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"amqp_enabled", backend.Events.Enabled(),
		"categories", len(categories))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.ErrorContext(ctx, "Server error", log.FieldError, err, "port", cfg.Port)
		backend.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(done)
	logger.InfoContext(ctx, "Server stopped gracefully")
}
