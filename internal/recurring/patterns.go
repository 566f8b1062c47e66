package recurring

import (
	"time"
)

// DailyCalculator advances by one calendar day.
type DailyCalculator struct{}

func (DailyCalculator) Next(current time.Time, anchor Anchor) time.Time {
	year, month, day := anchor.date(current)
	return anchor.at(current, year, month, day+1)
}

// WeeklyCalculator advances by seven calendar days.
type WeeklyCalculator struct{}

func (WeeklyCalculator) Next(current time.Time, anchor Anchor) time.Time {
	year, month, day := anchor.date(current)
	return anchor.at(current, year, month, day+7)
}

// MonthlyCalculator advances to the same day of the following month, clamped
// to that month's last day.
//
// The clamp is recomputed from the anchor on every call: a template anchored on
// the 31st lands on Apr 30, then returns to May 31.
type MonthlyCalculator struct{}

func (MonthlyCalculator) Next(current time.Time, anchor Anchor) time.Time {
	year, month, day := anchor.date(current)
	targetDay := anchor.Day
	if targetDay == 0 {
		targetDay = day
	}

	year, month = addMonths(year, month, 1)
	return anchor.at(current, year, month, min(targetDay, daysIn(year, month, current.Location())))
}

// YearlyCalculator advances to the same month and day of the following year.
// Feb 29 becomes Feb 28 in non-leap years, never Mar 1, and returns to Feb 29
// once a leap year comes around again.
type YearlyCalculator struct{}

func (YearlyCalculator) Next(current time.Time, anchor Anchor) time.Time {
	year, month, day := anchor.date(current)
	targetDay := anchor.Day
	if targetDay == 0 {
		targetDay = day
	}

	year++
	return anchor.at(current, year, month, min(targetDay, daysIn(year, month, current.Location())))
}

// addMonths moves year/month forward by n months without touching the day.
func addMonths(year int, month time.Month, n int) (int, time.Month) {
	m := int(month) - 1 + n
	return year + m/12, time.Month(m%12 + 1)
}

// daysIn returns the number of days in the given month.
// Day 0 of the next month is the last day of this one.
func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// withDate replaces the calendar date of t, keeping its wall clock and location.
func withDate(t time.Time, year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
