package calmath_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetcal/internal/calmath"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddInterval(t *testing.T) {
	type testCase struct {
		name     string
		date     time.Time
		interval int
		period   calmath.Period
		want     time.Time
	}

	tests := []testCase{
		{
			name:     "Days",
			date:     date(2026, time.January, 1),
			interval: 3,
			period:   calmath.PeriodDays,
			want:     date(2026, time.January, 4),
		},
		{
			name:     "Weeks",
			date:     date(2026, time.January, 1),
			interval: 2,
			period:   calmath.PeriodWeeks,
			want:     date(2026, time.January, 15),
		},
		{
			name:     "Months",
			date:     date(2026, time.January, 15),
			interval: 1,
			period:   calmath.PeriodMonths,
			want:     date(2026, time.February, 15),
		},
		{
			name:     "MonthsClampToFebruary",
			date:     date(2026, time.January, 31),
			interval: 1,
			period:   calmath.PeriodMonths,
			want:     date(2026, time.February, 28),
		},
		{
			name:     "MonthsClampLeapYear",
			date:     date(2024, time.January, 31),
			interval: 1,
			period:   calmath.PeriodMonths,
			want:     date(2024, time.February, 29),
		},
		{
			name:     "MonthsAcrossYear",
			date:     date(2026, time.November, 30),
			interval: 3,
			period:   calmath.PeriodMonths,
			want:     date(2027, time.February, 28),
		},
		{
			name:     "Years",
			date:     date(2026, time.March, 10),
			interval: 2,
			period:   calmath.PeriodYears,
			want:     date(2028, time.March, 10),
		},
		{
			name:     "YearsLeapDayClamp",
			date:     date(2024, time.February, 29),
			interval: 1,
			period:   calmath.PeriodYears,
			want:     date(2025, time.February, 28),
		},
		{
			name:     "CaseInsensitivePeriod",
			date:     date(2026, time.January, 1),
			interval: 1,
			period:   calmath.Period("Weeks"),
			want:     date(2026, time.January, 8),
		},
		{
			name:     "UnknownPeriodIsNoOp",
			date:     date(2026, time.January, 1),
			interval: 5,
			period:   calmath.Period("fortnights"),
			want:     date(2026, time.January, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calmath.AddInterval(tt.date, tt.interval, tt.period)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubtractInterval(t *testing.T) {
	got := calmath.SubtractInterval(date(2026, time.January, 15), 1, calmath.PeriodWeeks)
	assert.Equal(t, date(2026, time.January, 8), got)

	got = calmath.SubtractInterval(date(2026, time.March, 31), 1, calmath.PeriodMonths)
	assert.Equal(t, date(2026, time.February, 28), got)

	// Unknown period falls back to the input date.
	got = calmath.SubtractInterval(date(2026, time.March, 31), 1, calmath.Period("eons"))
	assert.Equal(t, date(2026, time.March, 31), got)
}

func TestParsePeriod(t *testing.T) {
	p, err := calmath.ParsePeriod("WEEKS")
	require.NoError(t, err)
	assert.Equal(t, calmath.PeriodWeeks, p)

	p, err = calmath.ParsePeriod("years")
	require.NoError(t, err)
	assert.Equal(t, calmath.PeriodYears, p)

	_, err = calmath.ParsePeriod("decades")
	assert.Error(t, err)
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 31, calmath.DaysInMonth(2026, time.January))
	assert.Equal(t, 28, calmath.DaysInMonth(2026, time.February))
	assert.Equal(t, 29, calmath.DaysInMonth(2024, time.February))
	assert.Equal(t, 30, calmath.DaysInMonth(2026, time.April))
}

func TestMonthRange(t *testing.T) {
	start, end := calmath.MonthRange(2026, time.February)
	assert.Equal(t, date(2026, time.February, 1), start)
	assert.Equal(t, date(2026, time.February, 28), end)
}

func TestDay(t *testing.T) {
	ts := time.Date(2026, time.January, 5, 17, 42, 9, 0, time.FixedZone("X", 3600))
	assert.Equal(t, date(2026, time.January, 5), calmath.Day(ts))
	assert.True(t, calmath.SameDay(ts, date(2026, time.January, 5)))
	assert.False(t, calmath.SameDay(ts, date(2026, time.January, 6)))
}
