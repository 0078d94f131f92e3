// Package calmath provides the calendar arithmetic used by recurring series:
// interval stepping in days, weeks, months and years, with calendar-aware
// month handling (Jan 31 + 1 month lands on the last day of February).
package calmath

import (
	"fmt"
	"strings"
	"time"
)

// Period is the unit of a recurring interval.
type Period string

const (
	PeriodDays   Period = "days"
	PeriodWeeks  Period = "weeks"
	PeriodMonths Period = "months"
	PeriodYears  Period = "years"
)

// ParsePeriod matches s case-insensitively against the known periods.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(s))
	if !p.Valid() {
		return "", fmt.Errorf("unknown recurring period %q", s)
	}

	return p, nil
}

func (p Period) Valid() bool {
	switch p {
	case PeriodDays, PeriodWeeks, PeriodMonths, PeriodYears:
		return true
	}

	return false
}

// AddInterval advances date by interval units of period. An unrecognized
// period returns the date unchanged; callers that store periods are expected
// to validate them with ParsePeriod first.
func AddInterval(date time.Time, interval int, period Period) time.Time {
	switch Period(strings.ToLower(string(period))) {
	case PeriodDays:
		return date.AddDate(0, 0, interval)
	case PeriodWeeks:
		return date.AddDate(0, 0, interval*7)
	case PeriodMonths:
		return addMonths(date, interval)
	case PeriodYears:
		return addMonths(date, interval*12)
	}

	return date
}

// SubtractInterval is the inverse of AddInterval, with the same silent
// fallback for unrecognized periods.
func SubtractInterval(date time.Time, interval int, period Period) time.Time {
	return AddInterval(date, -interval, period)
}

// addMonths shifts by whole months, clamping the day to the length of the
// target month instead of letting the date normalize forward (time.AddDate
// would turn Jan 31 + 1 month into Mar 2/3).
func addMonths(date time.Time, months int) time.Time {
	first := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	first = first.AddDate(0, months, 0)

	day := date.Day()
	if last := DaysInMonth(first.Year(), first.Month()); day > last {
		day = last
	}

	return time.Date(first.Year(), first.Month(), day,
		date.Hour(), date.Minute(), date.Second(), date.Nanosecond(), date.Location())
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthRange returns the first and last day of the month, at UTC midnight.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}

// Day truncates t to a calendar day at UTC midnight. All engine comparisons
// work on day granularity.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}
