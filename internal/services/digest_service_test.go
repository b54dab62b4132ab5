package services

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/insights"
	"fintrack/internal/ledger/memory"
)

type stubGenerator struct {
	failFor map[int64]error
}

func (g stubGenerator) Generate(_ context.Context, userID int64, month core.Month) ([]string, error) {
	if err := g.failFor[userID]; err != nil {
		return nil, err
	}
	return []string{month.String()}, nil
}

type staticUsers []int64

func (u staticUsers) ListUserIDs(context.Context) ([]int64, error) { return u, nil }

func TestDigestServiceBuild(t *testing.T) {
	fixed := time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC)
	svc := NewDigestService(stubGenerator{}, staticUsers{}, 2)
	svc.now = func() time.Time { return fixed }

	d, err := svc.Build(context.Background(), 3, core.NewMonth(2024, time.March))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if d.UserID != 3 || d.Month != core.NewMonth(2024, time.March) || !d.GeneratedAt.Equal(fixed) {
		t.Fatalf("unexpected digest: %+v", d)
	}
	if !reflect.DeepEqual(d.Insights, []string{"2024-03"}) {
		t.Fatalf("unexpected insights: %v", d.Insights)
	}

	if _, err := svc.Build(context.Background(), 0, core.NewMonth(2024, time.March)); !errors.Is(err, core.ErrInvalidUser) {
		t.Fatalf("expected ErrInvalidUser, got %v", err)
	}
}

func TestDigestServiceBuildAll(t *testing.T) {
	boom := errors.New("boom")
	svc := NewDigestService(stubGenerator{failFor: map[int64]error{4: boom}}, staticUsers{5, 1, 4, 2, 3}, 2)

	digests, err := svc.BuildAll(context.Background(), core.NewMonth(2024, time.March))
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined boom error, got %v", err)
	}
	var ids []int64
	for _, d := range digests {
		ids = append(ids, d.UserID)
	}
	if want := []int64{1, 2, 3, 5}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("expected digests for %v, got %v", want, ids)
	}
}

func TestDigestServiceWithEngine(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	txs := NewTransactionService(store, nil, nil)
	for _, tx := range []core.Transaction{
		expense(1, core.NewDate(2024, 2, 10), "Food", 10000),
		expense(1, core.NewDate(2024, 3, 10), "Food", 20000),
		expense(2, core.NewDate(2024, 3, 10), "Food", 1000),
	} {
		if _, err := txs.Create(ctx, tx); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	engine := insights.NewEngine(store, insights.DefaultThresholds())
	digests, err := NewDigestService(engine, store, 4).BuildAll(ctx, core.NewMonth(2024, time.March))
	if err != nil {
		t.Fatalf("build all: %v", err)
	}
	if len(digests) != 2 || digests[0].UserID != 1 || len(digests[0].Insights) == 0 {
		t.Fatalf("unexpected digests: %+v", digests)
	}
	want := "You spent 100% more on Food than last month ($200.00 vs $100.00). Consider reducing this category by around 10% next month."
	if digests[0].Insights[0] != want {
		t.Fatalf("unexpected first insight %q", digests[0].Insights[0])
	}
}
