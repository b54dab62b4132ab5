package insights

import (
	"fmt"
	"math"
	"strings"

	"fintrack/internal/core"
)

// Thresholds tunes when a rule emits a message.
type Thresholds struct {
	// CategoryChange is the month-over-month ratio a category must move by.
	CategoryChange float64
	// SavingsChange is the ratio net savings must move by.
	SavingsChange float64
	// OverallSpend is the ratio total spending must move by.
	OverallSpend float64
	// TopCategoryShare is the minimum share of total spending for a top category.
	TopCategoryShare float64
	// MinCategoryAmount is the noise floor below which categories are ignored.
	MinCategoryAmount core.Money
	// TopCategoryCount is how many of the largest categories are considered.
	TopCategoryCount int
	// TargetSavingsRate is the savings rate below which users are nudged.
	TargetSavingsRate float64
}

// DefaultThresholds returns the stock rule configuration.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CategoryChange:    0.20,
		SavingsChange:     0.20,
		OverallSpend:      0.10,
		TopCategoryShare:  0.15,
		MinCategoryAmount: core.Money{Cents: 1000},
		TopCategoryCount:  3,
		TargetSavingsRate: 0.10,
	}
}

func (t Thresholds) Validate() error {
	var errs []string
	ratios := []struct {
		name  string
		value float64
	}{
		{"category change", t.CategoryChange},
		{"savings change", t.SavingsChange},
		{"overall spend", t.OverallSpend},
		{"top category share", t.TopCategoryShare},
		{"target savings rate", t.TargetSavingsRate},
	}
	for _, r := range ratios {
		if math.IsNaN(r.value) || math.IsInf(r.value, 0) {
			errs = append(errs, fmt.Sprintf("%s threshold must be a finite number, got %v", r.name, r.value))
		} else if r.value <= 0 {
			errs = append(errs, fmt.Sprintf("%s threshold must be positive, got %v", r.name, r.value))
		}
	}
	if t.TopCategoryShare > 1 {
		errs = append(errs, "top category share threshold cannot exceed 1")
	}
	if t.MinCategoryAmount.Cents < 0 {
		errs = append(errs, "minimum category amount cannot be negative")
	}
	if t.TopCategoryCount <= 0 {
		errs = append(errs, "top category count must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid thresholds: %s", strings.Join(errs, "; "))
	}
	return nil
}
