package calendar

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClampedDate(t *testing.T) {
	cases := []struct {
		name  string
		year  int
		month time.Month
		day   int
		want  time.Time
	}{
		{"regular_day", 2024, time.March, 15, date(2024, time.March, 15)},
		{"day_31_in_february", 2024, time.February, 31, date(2024, time.February, 29)},
		{"day_31_in_february_non_leap", 2023, time.February, 31, date(2023, time.February, 28)},
		{"day_31_in_april", 2024, time.April, 31, date(2024, time.April, 30)},
		{"day_31_in_december", 2024, time.December, 31, date(2024, time.December, 31)},
		{"day_zero_clamps_to_first", 2024, time.June, 0, date(2024, time.June, 1)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClampedDate(tc.year, tc.month, tc.day)
			if !got.Equal(tc.want) {
				t.Errorf("ClampedDate(%d, %s, %d) = %v, want %v", tc.year, tc.month, tc.day, got, tc.want)
			}
		})
	}
}

func TestClosingDate(t *testing.T) {
	t.Run("clamped_to_short_month", func(t *testing.T) {
		got := ClosingDate(31, 2024, time.February)
		if !got.Equal(date(2024, time.February, 29)) {
			t.Errorf("expected 2024-02-29, got %v", got)
		}
	})

	t.Run("regular", func(t *testing.T) {
		got := ClosingDate(5, 2024, time.July)
		if !got.Equal(date(2024, time.July, 5)) {
			t.Errorf("expected 2024-07-05, got %v", got)
		}
	})
}

func TestDueDate(t *testing.T) {
	t.Run("rolls_to_next_month", func(t *testing.T) {
		got := DueDate(10, 2024, time.February)
		if !got.Equal(date(2024, time.March, 10)) {
			t.Errorf("expected 2024-03-10, got %v", got)
		}
	})

	t.Run("rolls_across_year_boundary", func(t *testing.T) {
		got := DueDate(10, 2024, time.December)
		if !got.Equal(date(2025, time.January, 10)) {
			t.Errorf("expected 2025-01-10, got %v", got)
		}
	})

	t.Run("clamped_in_target_month", func(t *testing.T) {
		got := DueDate(31, 2024, time.January)
		if !got.Equal(date(2024, time.February, 29)) {
			t.Errorf("expected 2024-02-29, got %v", got)
		}
	})
}

func TestMonthsBetween(t *testing.T) {
	cases := []struct {
		name  string
		start time.Time
		year  int
		month time.Month
		want  int
	}{
		{"same_month", date(2024, time.January, 5), 2024, time.January, 0},
		{"two_months_later", date(2024, time.January, 5), 2024, time.March, 2},
		{"across_year_boundary", date(2023, time.November, 20), 2024, time.February, 3},
		{"several_years", date(2022, time.June, 1), 2024, time.June, 24},
		{"target_before_start", date(2024, time.May, 1), 2024, time.March, -2},
		{"day_of_month_ignored", date(2024, time.January, 31), 2024, time.February, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MonthsBetween(tc.start, tc.year, tc.month)
			if got != tc.want {
				t.Errorf("MonthsBetween(%v, %d, %s) = %d, want %d", tc.start, tc.year, tc.month, got, tc.want)
			}
		})
	}
}

func TestAddMonths(t *testing.T) {
	cases := []struct {
		name string
		from time.Time
		n    int
		want time.Time
	}{
		{"regular", date(2024, time.January, 15), 1, date(2024, time.February, 15)},
		{"jan_31_plus_one", date(2024, time.January, 31), 1, date(2024, time.February, 29)},
		{"jan_31_plus_three_keeps_anchor", date(2024, time.January, 31), 3, date(2024, time.April, 30)},
		{"across_year", date(2024, time.November, 10), 3, date(2025, time.February, 10)},
		{"zero", date(2024, time.May, 7), 0, date(2024, time.May, 7)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AddMonths(tc.from, tc.n)
			if !got.Equal(tc.want) {
				t.Errorf("AddMonths(%v, %d) = %v, want %v", tc.from, tc.n, got, tc.want)
			}
		})
	}
}

func TestMonthRange(t *testing.T) {
	start, end := MonthRange(2024, time.February)
	if !start.Equal(date(2024, time.February, 1)) {
		t.Errorf("expected start 2024-02-01, got %v", start)
	}
	if !end.Equal(date(2024, time.March, 1)) {
		t.Errorf("expected end 2024-03-01, got %v", end)
	}
}

func TestRefMonth(t *testing.T) {
	if got := RefMonth(2024, time.March); got != "2024-03" {
		t.Errorf("expected 2024-03, got %s", got)
	}

	year, month, err := ParseRefMonth("2024-11")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if year != 2024 || month != time.November {
		t.Errorf("expected 2024/November, got %d/%s", year, month)
	}

	if _, _, err := ParseRefMonth("garbage"); err == nil {
		t.Error("expected error for malformed reference month")
	}
}
