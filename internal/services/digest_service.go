package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

// InsightGenerator is implemented by insights.Engine.
type InsightGenerator interface {
	Generate(ctx context.Context, userID int64, current core.Month) ([]string, error)
}

// DigestService packages engine output per user and month.
type DigestService struct {
	engine      InsightGenerator
	users       ledger.UserLister
	concurrency int
	now         func() time.Time
}

func NewDigestService(engine InsightGenerator, users ledger.UserLister, concurrency int) *DigestService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &DigestService{
		engine:      engine,
		users:       users,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Build runs the engine for one user and month.
func (s *DigestService) Build(ctx context.Context, userID int64, month core.Month) (core.InsightDigest, error) {
	if userID <= 0 {
		return core.InsightDigest{}, core.ErrInvalidUser
	}
	msgs, err := s.engine.Generate(ctx, userID, month)
	if err != nil {
		return core.InsightDigest{}, fmt.Errorf("generate insights for user %d: %w", userID, err)
	}
	return core.InsightDigest{
		UserID:      userID,
		Month:       month,
		Insights:    msgs,
		GeneratedAt: s.now().UTC(),
	}, nil
}

// BuildAll builds the digest of every ledger user for month with bounded
// concurrency. Digests that succeeded are returned ordered by user id, along
// with the joined errors of those that failed.
func (s *DigestService) BuildAll(ctx context.Context, month core.Month) ([]core.InsightDigest, error) {
	ids, err := s.users.ListUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	var (
		mu      sync.Mutex
		digests = make([]core.InsightDigest, 0, len(ids))
		errs    []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, id := range ids {
		g.Go(func() error {
			d, err := s.Build(gctx, id, month)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			digests = append(digests, d)
			return nil
		})
	}
	// Build failures are collected, not returned, so one user cannot cancel the rest.
	_ = g.Wait()

	sort.Slice(digests, func(i, j int) bool { return digests[i].UserID < digests[j].UserID })

	if len(errs) > 0 {
		slog.WarnContext(ctx, "Some digests failed",
			"month", month.String(),
			"failed", len(errs),
			"built", len(digests))
	}
	return digests, errors.Join(errs...)
}
