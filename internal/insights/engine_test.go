package insights

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"fintrack/internal/core"
)

type entry struct {
	month    core.Month
	category string
	cents    int64
}

// fakeLedger sums entries the way a real provider would, grouping by the
// exact category spelling so the engine's own folding is exercised.
type fakeLedger struct {
	entries         []entry
	expenseOverride map[core.Month]core.Money
	err             error
	failOn          string
	calls           int
}

func (f *fakeLedger) fail(op string) error {
	f.calls++
	if f.err != nil && (f.failOn == "" || f.failOn == op) {
		return f.err
	}
	return nil
}

func (f *fakeLedger) TotalIncome(_ context.Context, _ int64, m core.Month) (core.Money, error) {
	if err := f.fail("income"); err != nil {
		return core.Money{}, err
	}
	var sum int64
	for _, e := range f.entries {
		if e.month == m && e.cents > 0 {
			sum += e.cents
		}
	}
	return core.Money{Cents: sum}, nil
}

func (f *fakeLedger) TotalExpense(_ context.Context, _ int64, m core.Month) (core.Money, error) {
	if err := f.fail("expense"); err != nil {
		return core.Money{}, err
	}
	if v, ok := f.expenseOverride[m]; ok {
		return v, nil
	}
	var sum int64
	for _, e := range f.entries {
		if e.month == m && e.cents < 0 {
			sum += e.cents
		}
	}
	return core.Money{Cents: sum}, nil
}

func (f *fakeLedger) CategoryTotals(_ context.Context, _ int64, m core.Month, kind core.Kind) (map[string]core.Money, error) {
	if err := f.fail("categories"); err != nil {
		return nil, err
	}
	out := make(map[string]core.Money)
	for _, e := range f.entries {
		if e.month != m || core.KindOf(core.Money{Cents: e.cents}) != kind {
			continue
		}
		out[e.category] = out[e.category].Add(core.Money{Cents: e.cents})
	}
	return out, nil
}

var (
	march    = core.NewMonth(2024, time.March)
	february = core.NewMonth(2024, time.February)
)

func units(v float64) int64 {
	return int64(v * 100)
}

func generate(t *testing.T, l *fakeLedger, month core.Month) []string {
	t.Helper()
	got, err := NewEngine(l, DefaultThresholds()).Generate(context.Background(), 1, month)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return got
}

func containing(msgs []string, substr string) []string {
	var out []string
	for _, m := range msgs {
		if strings.Contains(m, substr) {
			out = append(out, m)
		}
	}
	return out
}

func TestGenerateNotEnoughData(t *testing.T) {
	cases := []struct {
		name    string
		entries []entry
	}{
		{"empty ledger", nil},
		{"income only", []entry{{march, "Salary", units(1000)}, {february, "Salary", units(900)}}},
		{"older months only", []entry{{core.NewMonth(2023, time.June), "Food", units(-40)}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := generate(t, &fakeLedger{entries: tc.entries}, march)
			if len(got) != 1 {
				t.Fatalf("expected exactly one message, got %d: %v", len(got), got)
			}
			if !strings.Contains(strings.ToLower(got[0]), "not enough data") {
				t.Fatalf("unexpected message %q", got[0])
			}
		})
	}
}

func TestGenerateNotEnoughDataSkipsIncomeLookups(t *testing.T) {
	l := &fakeLedger{}
	generate(t, l, march)
	if l.calls != 2 {
		t.Fatalf("expected only the two category lookups, got %d calls", l.calls)
	}
}

func TestGenerateCategoryDoubling(t *testing.T) {
	l := &fakeLedger{entries: []entry{
		{february, "Food", units(-100)},
		{march, "Food", units(-200)},
	}}
	want := []string{
		"You spent 100% more on Food than last month ($200.00 vs $100.00). Consider reducing this category by around 10% next month.",
		"Overall, you spent 100% more than last month ($200.00 vs $100.00).",
		"Your savings dropped by about 100% compared to last month ($-200.00 vs $-100.00). Review your biggest expense categories to find where to cut back.",
		"Food accounts for about 100% of your total expenses this month ($200.00). If this isn't essential, consider setting a clear limit next month.",
	}
	got := generate(t, l, march)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected insights:\n got: %q\nwant: %q", got, want)
	}
	if len(containing(got, "of your income")) != 0 {
		t.Fatalf("no savings rate message expected without income: %v", got)
	}
}

func TestGenerateCategoryChanges(t *testing.T) {
	cases := []struct {
		name     string
		entries  []entry
		want     string
		excluded string
	}{
		{
			name:    "decrease",
			entries: []entry{{february, "Transport", units(-100)}, {march, "Transport", units(-60)}},
			want:    "Nice! You spent 40% less on Transport compared to last month ($60.00 vs $100.00).",
		},
		{
			name:    "started",
			entries: []entry{{february, "Food", units(-100)}, {march, "Food", units(-100)}, {march, "Gym", units(-35.5)}},
			want:    "You started spending on Gym this month (total $35.50). Make sure this aligns with your priorities.",
		},
		{
			name:    "stopped",
			entries: []entry{{february, "Bills", units(-80)}, {march, "Food", units(-10)}},
			want:    "You had no spending on Bills this month (was $80.00 last month). Great job reducing this category!",
		},
		{
			name:     "below threshold",
			entries:  []entry{{february, "Food", units(-100)}, {march, "Food", units(-119)}},
			excluded: "on Food",
		},
		{
			name:     "exactly on threshold",
			entries:  []entry{{february, "Food", units(-100)}, {march, "Food", units(-120)}},
			want:     "You spent 20% more on Food than last month ($120.00 vs $100.00). Consider reducing this category by around 10% next month.",
			excluded: "less on Food",
		},
		{
			name:     "under floor in both months",
			entries:  []entry{{february, "Coffee", units(-5)}, {march, "Coffee", units(-9)}, {march, "Food", units(-50)}},
			excluded: "on Coffee",
		},
		{
			name:    "floor met in one month only",
			entries: []entry{{february, "Coffee", units(-5)}, {march, "Coffee", units(-12)}},
			want:    "You spent 140% more on Coffee than last month ($12.00 vs $5.00). Consider reducing this category by around 10% next month.",
		},
		{
			name:     "case-insensitive match",
			entries:  []entry{{february, "food", units(-100)}, {march, "Food", units(-150)}},
			want:     "You spent 50% more on Food than last month ($150.00 vs $100.00). Consider reducing this category by around 10% next month.",
			excluded: "started spending",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := generate(t, &fakeLedger{entries: tc.entries}, march)
			if tc.want != "" && len(containing(got, tc.want)) != 1 {
				t.Fatalf("expected %q in %q", tc.want, got)
			}
			if tc.excluded != "" {
				for _, m := range containing(got, tc.excluded) {
					if m != tc.want {
						t.Fatalf("unexpected message %q", m)
					}
				}
			}
		})
	}
}

func TestGenerateReportsEveryLargeIncrease(t *testing.T) {
	pairs := []struct{ prev, curr int64 }{
		{1000, 1200},
		{1000, 1201},
		{750, 1000},
		{1, 1000},
		{5000, 99999},
		{3333, 4000},
	}
	for _, p := range pairs {
		l := &fakeLedger{entries: []entry{{february, "Fun", -p.prev}, {march, "Fun", -p.curr}}}
		got := generate(t, l, march)
		if len(containing(got, "more on Fun than last month")) != 1 {
			t.Errorf("prev=%d curr=%d: expected an increase message, got %q", p.prev, p.curr, got)
		}
	}
}

func TestGenerateOverallTrend(t *testing.T) {
	cases := []struct {
		name    string
		entries []entry
		want    string
	}{
		{
			name: "decrease",
			entries: []entry{
				{february, "Food", units(-100)}, {february, "Bills", units(-100)},
				{march, "Food", units(-90)}, {march, "Bills", units(-85)},
			},
			want: "Overall, you spent 13% less than last month ($175.00 vs $200.00). Nice progress!",
		},
		{
			name: "increase",
			entries: []entry{
				{february, "Food", units(-100)}, {february, "Bills", units(-100)},
				{march, "Food", units(-110)}, {march, "Bills", units(-112)},
			},
			want: "Overall, you spent 11% more than last month ($222.00 vs $200.00).",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := generate(t, &fakeLedger{entries: tc.entries}, march)
			if len(containing(got, tc.want)) != 1 {
				t.Fatalf("expected %q in %q", tc.want, got)
			}
		})
	}

	t.Run("no previous spending", func(t *testing.T) {
		got := generate(t, &fakeLedger{entries: []entry{{march, "Food", units(-100)}}}, march)
		if len(containing(got, "Overall")) != 0 {
			t.Fatalf("unexpected overall message: %q", got)
		}
	})

	t.Run("small change", func(t *testing.T) {
		got := generate(t, &fakeLedger{entries: []entry{
			{february, "Food", units(-100)}, {march, "Food", units(-109)},
		}}, march)
		if len(containing(got, "Overall")) != 0 {
			t.Fatalf("unexpected overall message: %q", got)
		}
	})
}

func TestGenerateSavings(t *testing.T) {
	cases := []struct {
		name     string
		ledger   *fakeLedger
		want     []string
		excluded string
	}{
		{
			name: "fifteen percent saved",
			ledger: &fakeLedger{entries: []entry{
				{march, "Salary", units(1000)}, {march, "Bills", units(-850)},
			}},
			want: []string{
				"Great job! You saved about 15% of your income this month.",
				"You moved from not saving to saving about $150.00 this month. Great progress!",
			},
			excluded: "Consider aiming",
		},
		{
			name: "below target",
			ledger: &fakeLedger{entries: []entry{
				{march, "Salary", units(1000)}, {march, "Bills", units(-950)},
				{february, "Salary", units(1000)}, {february, "Bills", units(-950)},
			}},
			want: []string{
				"You saved about 5% of your income this month. Consider aiming for at least 10% savings if possible.",
			},
			excluded: "Your savings",
		},
		{
			name: "overspent",
			ledger: &fakeLedger{entries: []entry{
				{march, "Salary", units(100)}, {march, "Bills", units(-150)},
				{february, "Salary", units(100)}, {february, "Bills", units(-100)},
			}},
			want: []string{
				"You spent more than you earned this month (net -$50.00). Try cutting non-essential expenses or increasing income.",
				"You went from saving or breaking even to overspending about $50.00 this month. Try to identify 1 or 2 categories to reduce next month.",
			},
		},
		{
			name: "improved",
			ledger: &fakeLedger{entries: []entry{
				{march, "Salary", units(1000)}, {march, "Bills", units(-700)},
				{february, "Salary", units(1000)}, {february, "Bills", units(-800)},
			}},
			want: []string{
				"Great job! You saved about 30% of your income this month.",
				"Your savings improved by about 50% compared to last month ($300.00 vs $200.00). Keep it up!",
			},
		},
		{
			name: "dropped",
			ledger: &fakeLedger{entries: []entry{
				{march, "Salary", units(1000)}, {march, "Bills", units(-900)},
				{february, "Salary", units(1000)}, {february, "Bills", units(-800)},
			}},
			want: []string{
				"Your savings dropped by about 50% compared to last month ($100.00 vs $200.00). Review your biggest expense categories to find where to cut back.",
			},
		},
		{
			name: "positive net without income",
			ledger: &fakeLedger{
				entries:         []entry{{march, "Refunds", units(-20)}},
				expenseOverride: map[core.Month]core.Money{march: {Cents: units(40)}},
			},
			want: []string{
				"You recorded a positive net balance of $40.00 this month. Make sure your income is also tracked for a full picture.",
			},
			excluded: "of your income",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := generate(t, tc.ledger, march)
			for _, w := range tc.want {
				if len(containing(got, w)) != 1 {
					t.Errorf("expected %q in %q", w, got)
				}
			}
			if tc.excluded != "" && len(containing(got, tc.excluded)) != 0 {
				t.Errorf("did not expect %q in %q", tc.excluded, got)
			}
		})
	}
}

func TestGenerateTopCategoryShare(t *testing.T) {
	const marker = "of your total expenses this month"
	cases := []struct {
		name    string
		amounts map[string]float64
		want    []string
	}{
		{
			name:    "three large shares",
			amounts: map[string]float64{"Rent": 50, "Food": 30, "Fun": 20},
			want:    []string{"Rent", "Food", "Fun"},
		},
		{
			name:    "single dominant category",
			amounts: map[string]float64{"Rent": 80, "Food": 9, "Fun": 6, "Coffee": 5},
			want:    []string{"Rent"},
		},
		{
			name:    "only top three considered",
			amounts: map[string]float64{"A": 30, "B": 25, "C": 25, "D": 20},
			want:    []string{"A", "B", "C"},
		},
		{
			name:    "large amount with small share",
			amounts: map[string]float64{"Rent": 900, "Food": 100, "Fun": 50},
			want:    []string{"Rent"},
		},
		{
			name:    "under floor",
			amounts: map[string]float64{"Coffee": 6, "Snacks": 3},
			want:    nil,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := &fakeLedger{}
			for cat, amt := range tc.amounts {
				l.entries = append(l.entries, entry{march, cat, -units(amt)})
			}
			got := containing(generate(t, l, march), marker)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d share messages, got %q", len(tc.want), got)
			}
			for i, cat := range tc.want {
				if !strings.HasPrefix(got[i], cat+" accounts for about") {
					t.Errorf("message %d: expected category %s, got %q", i, cat, got[i])
				}
			}
		})
	}

	t.Run("format", func(t *testing.T) {
		l := &fakeLedger{entries: []entry{{march, "Rent", units(-80)}, {march, "Food", units(-9)}, {march, "Fun", units(-6)}, {march, "Coffee", units(-5)}}}
		got := containing(generate(t, l, march), marker)
		want := "Rent accounts for about 80% of your total expenses this month ($80.00). If this isn't essential, consider setting a clear limit next month."
		if len(got) != 1 || got[0] != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	})
}

func TestGenerateSimilarSpending(t *testing.T) {
	l := &fakeLedger{entries: []entry{{february, "Coffee", units(-5)}, {march, "Coffee", units(-5)}}}
	got := generate(t, l, march)
	if len(got) != 1 || got[0] != msgSimilarSpend {
		t.Fatalf("expected the similar spending fallback, got %q", got)
	}
}

func TestGenerateOrder(t *testing.T) {
	l := &fakeLedger{entries: []entry{
		{february, "Food", units(-100)}, {march, "Food", units(-200)},
		{february, "Bills", units(-100)}, {march, "Bills", units(-50)},
		{march, "Salary", units(1000)},
	}}
	got := generate(t, l, march)
	prefixes := []string{
		"Nice! You spent 50% less on Bills",
		"You spent 100% more on Food",
		"Overall, you spent 25% more",
		"Great job! You saved about 75%",
		"Your savings improved by about 475%",
		"Food accounts for about 80%",
		"Bills accounts for about 20%",
	}
	if len(got) != len(prefixes) {
		t.Fatalf("expected %d messages, got %q", len(prefixes), got)
	}
	for i, p := range prefixes {
		if !strings.HasPrefix(got[i], p) {
			t.Errorf("message %d: expected prefix %q, got %q", i, p, got[i])
		}
	}
}

func TestGenerateWrapsYear(t *testing.T) {
	january := core.NewMonth(2025, time.January)
	december := core.NewMonth(2024, time.December)
	l := &fakeLedger{entries: []entry{{december, "Gifts", units(-300)}, {january, "Food", units(-50)}}}
	got := generate(t, l, january)
	if len(containing(got, "no spending on Gifts this month (was $300.00 last month)")) != 1 {
		t.Fatalf("expected previous month to be December of the prior year, got %q", got)
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	l := &fakeLedger{entries: []entry{
		{february, "Food", units(-120)}, {march, "Food", units(-80)},
		{february, "Fun", units(-40)}, {march, "Travel", units(-300)},
		{march, "Salary", units(2000)}, {february, "Salary", units(1800)},
	}}
	e := NewEngine(l, DefaultThresholds())
	first, err := e.Generate(context.Background(), 1, march)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := e.Generate(context.Background(), 1, march)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("outputs differ:\n%q\n%q", first, second)
	}
}

func TestGeneratePropagatesProviderErrors(t *testing.T) {
	boom := errors.New("storage unavailable")
	data := []entry{{february, "Food", units(-100)}, {march, "Food", units(-200)}}
	for _, op := range []string{"categories", "income", "expense"} {
		t.Run(op, func(t *testing.T) {
			l := &fakeLedger{entries: data, err: boom, failOn: op}
			got, err := NewEngine(l, DefaultThresholds()).Generate(context.Background(), 1, march)
			if err != boom {
				t.Fatalf("expected the provider error unchanged, got %v", err)
			}
			if got != nil {
				t.Fatalf("expected no partial result, got %q", got)
			}
		})
	}
}

func TestGenerateCustomThresholds(t *testing.T) {
	th := DefaultThresholds()
	th.CategoryChange = 0.5
	th.MinCategoryAmount = core.Money{Cents: units(200)}
	l := &fakeLedger{entries: []entry{
		{february, "Food", units(-100)}, {march, "Food", units(-140)},
		{february, "Rent", units(-900)}, {march, "Rent", units(-900)},
	}}
	got, err := NewEngine(l, th).Generate(context.Background(), 1, march)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(containing(got, "on Food")) != 0 {
		t.Fatalf("Food change is under the raised threshold: %q", got)
	}
	if len(containing(got, "Food accounts")) != 0 {
		t.Fatalf("Food is under the raised floor: %q", got)
	}
}
