package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
)

// DefaultSchedule publishes last month's digests at 08:00 on the 1st.
const DefaultSchedule = "0 8 1 * *"

// DigestBuilder is implemented by services.DigestService.
type DigestBuilder interface {
	Build(ctx context.Context, userID int64, month core.Month) (core.InsightDigest, error)
	BuildAll(ctx context.Context, month core.Month) ([]core.InsightDigest, error)
}

// DigestPublisher is implemented by amqp.Client.
type DigestPublisher interface {
	PublishDigest(ctx context.Context, msg *amqp.InsightDigestMessage) error
}

type digestKey struct {
	userID int64
	month  core.Month
}

// DigestWorker turns ledger events into insight digests and publishes a
// monthly digest for every user on a cron schedule.
type DigestWorker struct {
	builder   DigestBuilder
	publisher DigestPublisher
	schedule  string
	now       func() time.Time

	mu    sync.Mutex
	built map[digestKey]time.Time
	cron  *cron.Cron
}

func NewDigestWorker(builder DigestBuilder, publisher DigestPublisher, schedule string) (*DigestWorker, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("parse digest schedule %q: %w", schedule, err)
	}
	return &DigestWorker{
		builder:   builder,
		publisher: publisher,
		schedule:  schedule,
		now:       time.Now,
		built:     make(map[digestKey]time.Time),
	}, nil
}

// HandleLedgerEvent rebuilds and publishes the digest of the event's user
// and month. Events already covered by a newer digest are skipped, which
// coalesces bursts of writes into one digest.
func (w *DigestWorker) HandleLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	month, err := ev.ParsedMonth()
	if err != nil {
		return fmt.Errorf("parse event month: %w", err)
	}
	key := digestKey{userID: ev.UserID, month: month}

	w.mu.Lock()
	last, seen := w.built[key]
	w.mu.Unlock()
	if seen && !ev.Timestamp.After(last) {
		slog.DebugContext(ctx, "Ledger event already covered by a digest",
			"user_id", ev.UserID,
			"month", ev.Month,
			"built_at", last.Format(time.RFC3339))
		return nil
	}

	startedAt := w.now()
	digest, err := w.builder.Build(ctx, ev.UserID, month)
	if err != nil {
		return fmt.Errorf("build digest: %w", err)
	}
	if err := w.publish(ctx, digest); err != nil {
		return err
	}

	w.mu.Lock()
	if startedAt.After(w.built[key]) {
		w.built[key] = startedAt
	}
	w.pruneLocked(startedAt)
	w.mu.Unlock()
	return nil
}

// pruneLocked forgets builds for months before last month. Late events for
// those months rebuild instead of coalescing. Callers hold w.mu.
func (w *DigestWorker) pruneLocked(now time.Time) {
	cutoff := core.MonthOf(now).Prev().Start()
	for key := range w.built {
		if key.month.Start().Before(cutoff) {
			delete(w.built, key)
		}
	}
}

// PublishMonth builds and publishes the digest of every user for month.
// Users whose digest could not be built or published are reported in the
// returned error; the rest are still published.
func (w *DigestWorker) PublishMonth(ctx context.Context, month core.Month) (int, error) {
	digests, buildErr := w.builder.BuildAll(ctx, month)

	var errs []error
	if buildErr != nil {
		errs = append(errs, buildErr)
	}
	published := 0
	for _, d := range digests {
		if err := w.publish(ctx, d); err != nil {
			errs = append(errs, err)
			continue
		}
		published++
	}

	slog.InfoContext(ctx, "Monthly digests published",
		"month", month.String(),
		"published", published,
		"failed", len(digests)-published)
	return published, errors.Join(errs...)
}

func (w *DigestWorker) publish(ctx context.Context, d core.InsightDigest) error {
	if err := w.publisher.PublishDigest(ctx, amqp.NewInsightDigestMessage(d)); err != nil {
		return fmt.Errorf("publish digest for user %d: %w", d.UserID, err)
	}
	return nil
}

// Start schedules the monthly run. Each run publishes the month before the
// one it fires in.
func (w *DigestWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cron != nil {
		return fmt.Errorf("digest worker is already running")
	}

	c := cron.New()
	_, err := c.AddFunc(w.schedule, func() {
		month := core.MonthOf(w.now()).Prev()
		if _, err := w.PublishMonth(ctx, month); err != nil {
			slog.ErrorContext(ctx, "Scheduled digest run failed", "month", month.String(), "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule digests: %w", err)
	}
	c.Start()
	w.cron = c

	slog.InfoContext(ctx, "Digest schedule started", "schedule", w.schedule)
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (w *DigestWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	c := w.cron
	w.cron = nil
	w.mu.Unlock()
	if c == nil {
		return nil
	}

	select {
	case <-c.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
