package insights

import (
	"context"
	"errors"
	"math"
	"testing"

	"fintrack/internal/core"
)

func TestDefaultThresholds(t *testing.T) {
	th := DefaultThresholds()
	if err := th.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if th.CategoryChange != 0.20 || th.SavingsChange != 0.20 || th.OverallSpend != 0.10 || th.TopCategoryShare != 0.15 {
		t.Fatalf("unexpected ratio defaults: %+v", th)
	}
	if th.MinCategoryAmount.Cents != 1000 || th.TopCategoryCount != 3 {
		t.Fatalf("unexpected floor or count: %+v", th)
	}
}

func TestThresholdsValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Thresholds)
	}{
		{"zero category change", func(th *Thresholds) { th.CategoryChange = 0 }},
		{"negative savings change", func(th *Thresholds) { th.SavingsChange = -0.1 }},
		{"share above one", func(th *Thresholds) { th.TopCategoryShare = 1.5 }},
		{"negative floor", func(th *Thresholds) { th.MinCategoryAmount = core.Money{Cents: -1} }},
		{"no top categories", func(th *Thresholds) { th.TopCategoryCount = 0 }},
		{"zero savings target", func(th *Thresholds) { th.TargetSavingsRate = 0 }},
		{"NaN category change", func(th *Thresholds) { th.CategoryChange = math.NaN() }},
		{"infinite overall spend", func(th *Thresholds) { th.OverallSpend = math.Inf(1) }},
		{"NaN savings target", func(th *Thresholds) { th.TargetSavingsRate = math.NaN() }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			th := DefaultThresholds()
			tc.mutate(&th)
			if err := th.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestAggregate(t *testing.T) {
	l := &fakeLedger{entries: []entry{
		{march, "Salary", units(1000)},
		{march, "Food", units(-120)},
		{march, "Food", units(-30)},
		{march, "Bills", units(-200)},
		{february, "Food", units(-999)},
	}}
	agg, err := Aggregate(context.Background(), l, 1, march)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if agg.TotalIncome.Cents != units(1000) || agg.TotalExpense.Cents != units(-350) {
		t.Fatalf("unexpected totals: %+v", agg)
	}
	if agg.Net().Cents != units(650) {
		t.Fatalf("unexpected net: %d", agg.Net().Cents)
	}
	if len(agg.CategoryTotals) != 2 || agg.CategoryTotals["Food"].Cents != units(-150) {
		t.Fatalf("unexpected category totals: %v", agg.CategoryTotals)
	}

	boom := errors.New("down")
	if _, err := Aggregate(context.Background(), &fakeLedger{err: boom}, 1, march); !errors.Is(err, boom) {
		t.Fatalf("expected provider error, got %v", err)
	}
}
