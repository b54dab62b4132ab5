package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// RecurringRunnerConfig holds configuration for the recurring runner
type RecurringRunnerConfig struct {
	// Interval is how often due templates are checked (default: 1h)
	Interval time.Duration
}

func DefaultRecurringRunnerConfig() RecurringRunnerConfig {
	return RecurringRunnerConfig{Interval: time.Hour}
}

// DueProcessor is implemented by RecurringProcessor.
type DueProcessor interface {
	ProcessDue(ctx context.Context, now time.Time) (int, error)
}

// RecurringRunner drives a DueProcessor on a fixed interval.
type RecurringRunner struct {
	processor DueProcessor
	config    RecurringRunnerConfig
	now       func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewRecurringRunner(processor DueProcessor, config RecurringRunnerConfig) *RecurringRunner {
	if config.Interval <= 0 {
		config.Interval = DefaultRecurringRunnerConfig().Interval
	}
	return &RecurringRunner{
		processor: processor,
		config:    config,
		now:       time.Now,
	}
}

// Start runs one pass immediately and then one per interval. Returns an
// error if already running.
func (r *RecurringRunner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("recurring runner is already running")
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	r.mu.Unlock()

	go r.runLoop(ctx)

	slog.InfoContext(ctx, "Recurring runner started", "interval", r.config.Interval)
	return nil
}

// Stop signals the loop and waits for the current pass to finish.
func (r *RecurringRunner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	stopCh, doneCh := r.stopCh, r.doneCh
	r.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Recurring runner stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Recurring runner stop timed out")
		return ctx.Err()
	}

	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
	return nil
}

func (r *RecurringRunner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *RecurringRunner) runLoop(ctx context.Context) {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	r.runOnce(ctx)

	for {
		select {
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *RecurringRunner) runOnce(ctx context.Context) {
	now := r.now()
	count, err := r.processor.ProcessDue(ctx, now)
	if err != nil {
		slog.ErrorContext(ctx, "Recurring processing failed", "error", err)
		return
	}
	slog.InfoContext(ctx, "Recurring processing pass complete",
		"transactions_created", count,
		"next_check", now.Add(r.config.Interval).Format(time.TimeOnly))
}
