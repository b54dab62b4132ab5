package insights

import (
	"sort"

	"fintrack/internal/core"
)

// spendComparison holds absolute expense amounts in cents for two months,
// keyed by case-insensitive category name.
type spendComparison struct {
	keys     []string // union of both months, sorted
	labels   map[string]string
	current  map[string]int64
	previous map[string]int64
}

func newSpendComparison(current, previous map[string]core.Money) spendComparison {
	s := spendComparison{labels: make(map[string]string)}
	// Previous labels first so the current month's spelling wins.
	s.previous = foldCategories(previous, s.labels)
	s.current = foldCategories(current, s.labels)

	for key := range s.labels {
		s.keys = append(s.keys, key)
	}
	sort.Strings(s.keys)
	return s
}

// foldCategories merges names that differ only by case, then converts each
// signed sum to its absolute value.
func foldCategories(totals map[string]core.Money, labels map[string]string) map[string]int64 {
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)

	signed := make(map[string]int64, len(totals))
	seen := make(map[string]bool, len(totals))
	for _, name := range names {
		key := core.CategoryKey(name)
		signed[key] += totals[name].Cents
		if !seen[key] {
			labels[key] = name
			seen[key] = true
		}
	}

	out := make(map[string]int64, len(signed))
	for key, cents := range signed {
		out[key] = abs(cents)
	}
	return out
}

func (s spendComparison) currentTotal() int64 {
	return sumValues(s.current)
}

func (s spendComparison) previousTotal() int64 {
	return sumValues(s.previous)
}

func sumValues(m map[string]int64) int64 {
	var sum int64
	for _, v := range m {
		sum += v
	}
	return sum
}
