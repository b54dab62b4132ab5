// Package services holds the ledger use cases layered over a ledger backend:
// transaction writes with change events, budgets, recurring transactions and
// insight digests.
//
// This file maps each repetition type to the strategy that decides whether a
// recurring transaction is due.
package services

import (
	"fmt"
	"time"

	"fintrack/internal/core"
)

// DuenessChecker decides whether a recurring transaction should be
// materialized given its last execution and the current time.
type DuenessChecker interface {
	IsDue(lastExecution, now time.Time, startDate core.Date) bool
}

// DailyChecker is due once per calendar day.
type DailyChecker struct{}

func (DailyChecker) IsDue(lastExecution, now time.Time, _ core.Date) bool {
	if lastExecution.IsZero() {
		return true
	}
	return lastExecution.Format(time.DateOnly) != now.Format(time.DateOnly)
}

// WeeklyChecker is due once 7 days have passed since the last execution.
type WeeklyChecker struct{}

func (WeeklyChecker) IsDue(lastExecution, now time.Time, _ core.Date) bool {
	if lastExecution.IsZero() {
		return true
	}
	return now.Sub(lastExecution) >= 7*24*time.Hour
}

// MonthlyChecker is due once per month, on or after the start date's day.
type MonthlyChecker struct{}

func (MonthlyChecker) IsDue(lastExecution, now time.Time, startDate core.Date) bool {
	if lastExecution.IsZero() {
		return true
	}
	if lastExecution.Year() == now.Year() && lastExecution.Month() == now.Month() {
		return false
	}
	return now.Day() >= clampDay(now, startDate.Day())
}

// YearlyChecker is due once per year, on or after the start date's month and day.
type YearlyChecker struct{}

func (YearlyChecker) IsDue(lastExecution, now time.Time, startDate core.Date) bool {
	if lastExecution.IsZero() {
		return true
	}
	if lastExecution.Year() == now.Year() {
		return false
	}

	targetMonth := startDate.Time.Month()
	switch {
	case now.Month() < targetMonth:
		return false
	case now.Month() == targetMonth:
		return now.Day() >= clampDay(now, startDate.Day())
	default:
		return true
	}
}

// clampDay caps day at the last day of now's month, so a template started on
// the 31st still fires in shorter months.
func clampDay(now time.Time, day int) int {
	last := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}

var duenessStrategies = map[core.RepetitionTypes]DuenessChecker{
	core.Daily:   DailyChecker{},
	core.Weekly:  WeeklyChecker{},
	core.Monthly: MonthlyChecker{},
	core.Yearly:  YearlyChecker{},
}

// GetDuenessChecker returns the checker for frequency.
func GetDuenessChecker(frequency core.RepetitionTypes) (DuenessChecker, error) {
	checker, ok := duenessStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrInvalidRepetition, frequency)
	}
	return checker, nil
}
