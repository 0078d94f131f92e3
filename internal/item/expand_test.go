package item_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetcal/internal/item"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}

func weeklySeries(id int64) *item.Item {
	return &item.Item{
		ID:                id,
		AccountID:         1,
		Date:              day(2026, time.January, 1),
		Amount:            decimal.NewFromInt(50),
		Description:       "Groceries",
		Type:              item.TypeDebit,
		IsRecurring:       true,
		RecurringInterval: 1,
		RecurringPeriod:   "weeks",
	}
}

func allVisible() item.Visibility {
	return item.Visibility{DefaultActive: true}
}

func dates(instances []item.Instance) []time.Time {
	out := make([]time.Time, 0, len(instances))
	for _, inst := range instances {
		out = append(out, inst.Date)
	}

	return out
}

func TestExpandRecurring_Weekly(t *testing.T) {
	items := []*item.Item{weeklySeries(1)}

	got := item.ExpandRecurring(items, 1, day(2026, time.January, 1), day(2026, time.January, 31), allVisible())

	assert.Equal(t, []time.Time{
		day(2026, time.January, 1),
		day(2026, time.January, 8),
		day(2026, time.January, 15),
		day(2026, time.January, 22),
		day(2026, time.January, 29),
	}, dates(got))

	// The anchor occurrence is the stored row; the rest are generated.
	assert.False(t, got[0].Generated)
	for _, inst := range got[1:] {
		assert.True(t, inst.Generated)
		require.NotNil(t, inst.ParentID)
		assert.Equal(t, int64(1), *inst.ParentID)
	}
}

func TestExpandRecurring_EndDate(t *testing.T) {
	series := weeklySeries(1)
	series.RecurringEndDate = ptr(day(2026, time.January, 15))

	got := item.ExpandRecurring([]*item.Item{series}, 1, day(2026, time.January, 1), day(2026, time.January, 31), allVisible())

	assert.Equal(t, []time.Time{
		day(2026, time.January, 1),
		day(2026, time.January, 8),
		day(2026, time.January, 15),
	}, dates(got))
}

func TestExpandRecurring_AnchorAfterStartDate(t *testing.T) {
	series := weeklySeries(1)
	series.RecurringStartDate = ptr(day(2026, time.January, 1))
	series.Date = day(2026, time.January, 1)

	// Window starts mid-series; only the in-window occurrences appear.
	got := item.ExpandRecurring([]*item.Item{series}, 1, day(2026, time.January, 10), day(2026, time.January, 31), allVisible())

	assert.Equal(t, []time.Time{
		day(2026, time.January, 15),
		day(2026, time.January, 22),
		day(2026, time.January, 29),
	}, dates(got))
}

func TestExpandRecurring_EditException(t *testing.T) {
	series := weeklySeries(1)
	exception := &item.Item{
		ID:           2,
		AccountID:    1,
		Date:         day(2026, time.January, 9),
		Amount:       decimal.NewFromInt(75),
		Description:  "Groceries (big shop)",
		Type:         item.TypeDebit,
		IsException:  true,
		ParentID:     ptr(int64(1)),
		OriginalDate: ptr(day(2026, time.January, 8)),
	}

	got := item.ExpandRecurring([]*item.Item{series, exception}, 1, day(2026, time.January, 1), day(2026, time.January, 31), allVisible())

	// Jan 8 is suppressed; the exception shows on Jan 9 instead.
	assert.Equal(t, []time.Time{
		day(2026, time.January, 1),
		day(2026, time.January, 9),
		day(2026, time.January, 15),
		day(2026, time.January, 22),
		day(2026, time.January, 29),
	}, dates(got))

	assert.Equal(t, "Groceries (big shop)", got[1].Description)
	assert.False(t, got[1].Generated)
}

func TestExpandRecurring_DeletionMarker(t *testing.T) {
	series := weeklySeries(1)
	marker := &item.Item{
		ID:           2,
		AccountID:    1,
		Date:         day(2026, time.January, 15),
		Description:  item.DeletedMarker,
		Type:         item.TypeDebit,
		IsException:  true,
		ParentID:     ptr(int64(1)),
		OriginalDate: ptr(day(2026, time.January, 15)),
	}

	got := item.ExpandRecurring([]*item.Item{series, marker}, 1, day(2026, time.January, 1), day(2026, time.January, 31), allVisible())

	// Jan 15 disappears with no replacement.
	assert.Equal(t, []time.Time{
		day(2026, time.January, 1),
		day(2026, time.January, 8),
		day(2026, time.January, 22),
		day(2026, time.January, 29),
	}, dates(got))
}

func TestExpandRecurring_ExceptionOnAnchor(t *testing.T) {
	series := weeklySeries(1)
	exception := &item.Item{
		ID:           2,
		AccountID:    1,
		Date:         day(2026, time.January, 1),
		Amount:       decimal.NewFromInt(10),
		Description:  "Groceries (edited)",
		Type:         item.TypeDebit,
		IsException:  true,
		ParentID:     ptr(int64(1)),
		OriginalDate: ptr(day(2026, time.January, 1)),
	}

	got := item.ExpandRecurring([]*item.Item{series, exception}, 1, day(2026, time.January, 1), day(2026, time.January, 31), allVisible())

	require.Len(t, got, 5)
	assert.Equal(t, day(2026, time.January, 1), got[0].Date)
	assert.Equal(t, "Groceries (edited)", got[0].Description)
}

func TestExpandRecurring_ExpiredBeforeAnchor(t *testing.T) {
	// A this-one edit can advance the anchor past the end date; the series
	// then produces nothing at all.
	series := weeklySeries(1)
	series.Date = day(2026, time.January, 22)
	series.RecurringStartDate = ptr(day(2026, time.January, 22))
	series.RecurringEndDate = ptr(day(2026, time.January, 15))

	got := item.ExpandRecurring([]*item.Item{series}, 1, day(2026, time.January, 1), day(2026, time.January, 31), allVisible())

	assert.Empty(t, got)
}

func TestExpandRecurring_LayerFilter(t *testing.T) {
	onLayer := weeklySeries(1)
	onLayer.LayerID = ptr(int64(7))

	defaultLayer := weeklySeries(2)
	defaultLayer.Description = "Rent"

	items := []*item.Item{onLayer, defaultLayer}
	start, end := day(2026, time.January, 1), day(2026, time.January, 31)

	hidden := item.ExpandRecurring(items, 1, start, end, item.Visibility{
		DefaultActive: true,
		ActiveLayers:  map[int64]bool{7: false},
	})
	for _, inst := range hidden {
		assert.Equal(t, "Rent", inst.Description)
	}

	shown := item.ExpandRecurring(items, 1, start, end, item.Visibility{
		DefaultActive: false,
		ActiveLayers:  map[int64]bool{7: true},
	})
	for _, inst := range shown {
		assert.Equal(t, "Groceries", inst.Description)
	}
}

func TestExpandRecurring_OtherAccountExcluded(t *testing.T) {
	other := weeklySeries(1)
	other.AccountID = 2

	got := item.ExpandRecurring([]*item.Item{other}, 1, day(2026, time.January, 1), day(2026, time.January, 31), allVisible())

	assert.Empty(t, got)
}

func TestExpandRecurring_NonAdvancingStep(t *testing.T) {
	series := weeklySeries(1)
	series.RecurringPeriod = "fortnights"

	// An unrecognized period must not loop forever; only the anchor row
	// survives.
	got := item.ExpandRecurring([]*item.Item{series}, 1, day(2026, time.January, 1), day(2026, time.January, 31), allVisible())

	require.Len(t, got, 1)
	assert.Equal(t, day(2026, time.January, 1), got[0].Date)
}

func TestExpandRecurring_Idempotent(t *testing.T) {
	items := []*item.Item{weeklySeries(1)}

	first := item.ExpandRecurring(items, 1, day(2026, time.January, 1), day(2026, time.January, 31), allVisible())
	second := item.ExpandRecurring(items, 1, day(2026, time.January, 1), day(2026, time.January, 31), allVisible())

	assert.Equal(t, first, second)
}

func TestMaterialize_MixedAndSorted(t *testing.T) {
	oneTime := &item.Item{
		ID:          3,
		AccountID:   1,
		Date:        day(2026, time.January, 8),
		Amount:      decimal.NewFromInt(200),
		Description: "Paycheck",
		Type:        item.TypeCredit,
	}

	got := item.Materialize([]*item.Item{weeklySeries(1), oneTime}, 1, day(2026, time.January, 1), day(2026, time.January, 31), allVisible())

	assert.Equal(t, []time.Time{
		day(2026, time.January, 1),
		day(2026, time.January, 8),
		day(2026, time.January, 8),
		day(2026, time.January, 15),
		day(2026, time.January, 22),
		day(2026, time.January, 29),
	}, dates(got))

	// Same-day entries come out ordered by id.
	assert.Equal(t, int64(1), got[1].ID)
	assert.Equal(t, int64(3), got[2].ID)
}

func TestMaterialize_OutOfRangeOneTime(t *testing.T) {
	oneTime := &item.Item{
		ID:        1,
		AccountID: 1,
		Date:      day(2026, time.February, 2),
		Amount:    decimal.NewFromInt(5),
		Type:      item.TypeDebit,
	}

	got := item.Materialize([]*item.Item{oneTime}, 1, day(2026, time.January, 1), day(2026, time.January, 31), allVisible())

	assert.Empty(t, got)
}

func TestExpandRecurring_MonthlyClamping(t *testing.T) {
	series := weeklySeries(1)
	series.Date = day(2026, time.January, 31)
	series.RecurringPeriod = "months"

	got := item.ExpandRecurring([]*item.Item{series}, 1, day(2026, time.January, 1), day(2026, time.April, 30), allVisible())

	// Stepping walks from the previous occurrence, so the clamp to
	// February 28 carries forward.
	assert.Equal(t, []time.Time{
		day(2026, time.January, 31),
		day(2026, time.February, 28),
		day(2026, time.March, 28),
		day(2026, time.April, 28),
	}, dates(got))
}
