// Package calendar provides day-of-month-safe date arithmetic for billing
// cycles: closing/due date computation, month clamping for short months, and
// whole-month distance used by the recurring generator and installment
// splitter. All functions are pure.
package calendar

import (
	"fmt"
	"time"
)

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampedDate returns a date in the given month with the day clamped to the
// last valid day of that month (day 31 against February yields Feb 28/29).
func ClampedDate(year int, month time.Month, day int) time.Time {
	if last := DaysIn(year, month); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ClosingDate returns the concrete closing date for a configured
// day-of-month within the reference month.
func ClosingDate(closingDay, year int, month time.Month) time.Time {
	return ClampedDate(year, month, closingDay)
}

// DueDate returns the concrete due date for a configured day-of-month.
// By billing convention the invoice referencing month M is due in M+1,
// clamped to that month's last day.
func DueDate(dueDay, year int, month time.Month) time.Time {
	next := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return ClampedDate(next.Year(), next.Month(), dueDay)
}

// MonthsBetween returns the count of whole calendar months from the start
// date to the target year/month. The result is negative when the target
// precedes the start's month.
func MonthsBetween(start time.Time, year int, month time.Month) int {
	return (year-start.Year())*12 + int(month) - int(start.Month())
}

// AddMonths returns the date n months after t, anchored to t's day of month
// and clamped to the target month's last day (Jan 31 + 1 month = Feb 28/29).
// This differs from time.AddDate, which lets short months overflow.
func AddMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, n, 0)
	day := t.Day()
	if last := DaysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}

// MonthRange returns the half-open window [first day of month, first day of
// the next month) used to bucket transactions into a billing month.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// RefMonth formats a year/month pair as the canonical "YYYY-MM" reference.
func RefMonth(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// ParseRefMonth parses a "YYYY-MM" reference month string.
func ParseRefMonth(ref string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", ref)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid reference month %q: %w", ref, err)
	}
	return t.Year(), t.Month(), nil
}
