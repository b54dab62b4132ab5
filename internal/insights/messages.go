package insights

import (
	"fmt"
	"math"

	"fintrack/internal/core"
)

const (
	msgNotEnoughData = "Not enough data yet to generate insights. Start adding some transactions!"
	msgSimilarSpend  = "Your spending is quite similar to last month. Try setting specific budgets to optimize your savings further."
)

// percent renders a ratio as a whole percentage, rounding half away from zero.
func percent(ratio float64) int64 {
	return int64(math.Round(ratio * 100))
}

func dollars(cents int64) string {
	return "$" + core.Money{Cents: cents}.String()
}

func categoryIncreased(category string, ratio float64, curr, prev int64) string {
	return fmt.Sprintf("You spent %d%% more on %s than last month (%s vs %s). Consider reducing this category by around 10%% next month.",
		percent(ratio), category, dollars(curr), dollars(prev))
}

func categoryDecreased(category string, ratio float64, curr, prev int64) string {
	return fmt.Sprintf("Nice! You spent %d%% less on %s compared to last month (%s vs %s).",
		percent(math.Abs(ratio)), category, dollars(curr), dollars(prev))
}

func categoryStarted(category string, curr int64) string {
	return fmt.Sprintf("You started spending on %s this month (total %s). Make sure this aligns with your priorities.",
		category, dollars(curr))
}

func categoryStopped(category string, prev int64) string {
	return fmt.Sprintf("You had no spending on %s this month (was %s last month). Great job reducing this category!",
		category, dollars(prev))
}

func overallIncreased(ratio float64, curr, prev int64) string {
	return fmt.Sprintf("Overall, you spent %d%% more than last month (%s vs %s).",
		percent(ratio), dollars(curr), dollars(prev))
}

func overallDecreased(ratio float64, curr, prev int64) string {
	return fmt.Sprintf("Overall, you spent %d%% less than last month (%s vs %s). Nice progress!",
		percent(math.Abs(ratio)), dollars(curr), dollars(prev))
}

func overspent(net int64) string {
	return fmt.Sprintf("You spent more than you earned this month (net -%s). Try cutting non-essential expenses or increasing income.",
		dollars(abs(net)))
}

func savedBelowTarget(rate, target float64) string {
	return fmt.Sprintf("You saved about %d%% of your income this month. Consider aiming for at least %d%% savings if possible.",
		percent(rate), percent(target))
}

func savedOnTarget(rate float64) string {
	return fmt.Sprintf("Great job! You saved about %d%% of your income this month.", percent(rate))
}

func untrackedIncome(net int64) string {
	return fmt.Sprintf("You recorded a positive net balance of %s this month. Make sure your income is also tracked for a full picture.",
		dollars(net))
}

func savingsImproved(ratio float64, curr, prev int64) string {
	return fmt.Sprintf("Your savings improved by about %d%% compared to last month (%s vs %s). Keep it up!",
		percent(ratio), dollars(curr), dollars(prev))
}

func savingsDropped(ratio float64, curr, prev int64) string {
	return fmt.Sprintf("Your savings dropped by about %d%% compared to last month (%s vs %s). Review your biggest expense categories to find where to cut back.",
		percent(math.Abs(ratio)), dollars(curr), dollars(prev))
}

func startedSaving(net int64) string {
	return fmt.Sprintf("You moved from not saving to saving about %s this month. Great progress!", dollars(net))
}

func startedOverspending(net int64) string {
	return fmt.Sprintf("You went from saving or breaking even to overspending about %s this month. Try to identify 1 or 2 categories to reduce next month.",
		dollars(abs(net)))
}

func topCategoryShare(category string, share float64, amount int64) string {
	return fmt.Sprintf("%s accounts for about %d%% of your total expenses this month (%s). If this isn't essential, consider setting a clear limit next month.",
		category, percent(share), dollars(amount))
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
