package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetcal/internal/account"
	"github.com/MrJamesThe3rd/budgetcal/internal/item"
	"github.com/MrJamesThe3rd/budgetcal/internal/layer"
	"github.com/MrJamesThe3rd/budgetcal/internal/snapshot"
	"github.com/MrJamesThe3rd/budgetcal/internal/store"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}

type fixture struct {
	store    *store.Store
	accounts *account.Service
	layers   *layer.Service
	items    *item.Service
}

func newFixture(t *testing.T) (*fixture, *account.Account) {
	t.Helper()

	db := store.New()
	layerSvc := layer.NewService(db)

	f := &fixture{
		store:    db,
		accounts: account.NewService(db),
		layers:   layerSvc,
		items:    item.NewService(db, layerSvc),
	}

	acc, err := f.accounts.Create(context.Background(), &account.Account{
		Name:            "Checking",
		StartDate:       day(2026, time.January, 1),
		StartingBalance: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	return f, acc
}

func monthlySeries(t *testing.T, f *fixture, accountID int64) *item.Item {
	t.Helper()

	created, err := f.items.Create(context.Background(), &item.Item{
		AccountID:         accountID,
		Date:              day(2026, time.January, 15),
		Amount:            decimal.NewFromInt(100),
		Description:       "Rent",
		Type:              item.TypeDebit,
		IsRecurring:       true,
		RecurringInterval: 1,
		RecurringPeriod:   "months",
	})
	require.NoError(t, err)

	return created
}

func TestStore_EditThisOne(t *testing.T) {
	f, acc := newFixture(t)
	ctx := context.Background()

	series := monthlySeries(t, f, acc.ID)

	_, err := f.items.UpdateRecurring(ctx, series.ID, item.EditThisOne, item.EditParams{
		Date:        day(2026, time.March, 15),
		Amount:      decimal.NewFromInt(150),
		Description: "Rent (increase month)",
		Type:        item.TypeDebit,
	})
	require.NoError(t, err)

	march, err := f.items.ExpandRange(ctx, acc.ID, day(2026, time.March, 1), day(2026, time.March, 31), true)
	require.NoError(t, err)
	require.Len(t, march, 1)
	assert.True(t, march[0].Amount.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, "Rent (increase month)", march[0].Description)

	// Other months are untouched.
	april, err := f.items.ExpandRange(ctx, acc.ID, day(2026, time.April, 1), day(2026, time.April, 30), true)
	require.NoError(t, err)
	require.Len(t, april, 1)
	assert.True(t, april[0].Amount.Equal(decimal.NewFromInt(100)))
}

func TestStore_EditFromThisOneSplit(t *testing.T) {
	f, acc := newFixture(t)
	ctx := context.Background()

	series := monthlySeries(t, f, acc.ID)

	newSeries, err := f.items.UpdateRecurring(ctx, series.ID, item.EditFromThisOne, item.EditParams{
		Date:        day(2026, time.April, 15),
		Amount:      decimal.NewFromInt(200),
		Description: "Rent",
		Type:        item.TypeDebit,
		Interval:    1,
		Period:      "months",
	})
	require.NoError(t, err)
	assert.NotEqual(t, series.ID, newSeries.ID)

	// The old series ends in March; the new one takes over from April.
	old, err := f.items.Get(ctx, series.ID)
	require.NoError(t, err)
	require.NotNil(t, old.RecurringEndDate)
	assert.Equal(t, day(2026, time.March, 15), *old.RecurringEndDate)

	march, err := f.items.ExpandRange(ctx, acc.ID, day(2026, time.March, 1), day(2026, time.March, 31), true)
	require.NoError(t, err)
	require.Len(t, march, 1)
	assert.True(t, march[0].Amount.Equal(decimal.NewFromInt(100)))

	may, err := f.items.ExpandRange(ctx, acc.ID, day(2026, time.May, 1), day(2026, time.May, 31), true)
	require.NoError(t, err)
	require.Len(t, may, 1)
	assert.True(t, may[0].Amount.Equal(decimal.NewFromInt(200)))
}

func TestStore_DeleteThisOne(t *testing.T) {
	f, acc := newFixture(t)
	ctx := context.Background()

	series := monthlySeries(t, f, acc.ID)

	err := f.items.DeleteRecurring(ctx, series.ID, acc.ID, item.EditThisOne, day(2026, time.February, 15))
	require.NoError(t, err)

	february, err := f.items.ExpandRange(ctx, acc.ID, day(2026, time.February, 1), day(2026, time.February, 28), true)
	require.NoError(t, err)
	assert.Empty(t, february)

	march, err := f.items.ExpandRange(ctx, acc.ID, day(2026, time.March, 1), day(2026, time.March, 31), true)
	require.NoError(t, err)
	assert.Len(t, march, 1)
}

func TestStore_DeleteAllInSeriesRemovesExceptions(t *testing.T) {
	f, acc := newFixture(t)
	ctx := context.Background()

	series := monthlySeries(t, f, acc.ID)

	_, err := f.items.UpdateRecurring(ctx, series.ID, item.EditThisOne, item.EditParams{
		Date:   day(2026, time.March, 15),
		Amount: decimal.NewFromInt(150),
		Type:   item.TypeDebit,
	})
	require.NoError(t, err)

	err = f.items.DeleteRecurring(ctx, series.ID, acc.ID, item.EditAllInSeries, day(2026, time.March, 15))
	require.NoError(t, err)

	all, err := f.items.List(ctx, acc.ID)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStore_SeriesEditRollback(t *testing.T) {
	f, acc := newFixture(t)
	ctx := context.Background()

	series := monthlySeries(t, f, acc.ID)

	tx, err := f.store.BeginSeriesEdit(ctx)
	require.NoError(t, err)

	require.NoError(t, tx.Create(&item.Item{
		AccountID:    acc.ID,
		Date:         day(2026, time.February, 15),
		Type:         item.TypeDebit,
		IsException:  true,
		ParentID:     &series.ID,
		OriginalDate: ptr(day(2026, time.February, 15)),
	}))
	require.NoError(t, tx.DeleteSeries(series.ID))
	require.NoError(t, tx.Rollback())

	// The staged changes are gone and the series is intact.
	all, err := f.items.List(ctx, acc.ID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, series.ID, all[0].ID)

	// IDs burned inside the rolled-back edit are reissued.
	next, err := f.items.Create(ctx, &item.Item{
		AccountID: acc.ID,
		Date:      day(2026, time.June, 1),
		Amount:    decimal.NewFromInt(1),
		Type:      item.TypeDebit,
	})
	require.NoError(t, err)
	assert.Equal(t, series.ID+1, next.ID)
}

func TestStore_LayerToggleFiltersExpansion(t *testing.T) {
	f, acc := newFixture(t)
	ctx := context.Background()

	l, err := f.layers.Create(ctx, &layer.Layer{AccountID: acc.ID, Name: "What-if"})
	require.NoError(t, err)
	assert.True(t, l.IsActive)

	_, err = f.items.Create(ctx, &item.Item{
		AccountID: acc.ID,
		Date:      day(2026, time.January, 10),
		Amount:    decimal.NewFromInt(500),
		Type:      item.TypeDebit,
		LayerID:   &l.ID,
	})
	require.NoError(t, err)

	visible, err := f.items.ExpandRange(ctx, acc.ID, day(2026, time.January, 1), day(2026, time.January, 31), true)
	require.NoError(t, err)
	assert.Len(t, visible, 1)

	_, err = f.layers.Toggle(ctx, l.ID)
	require.NoError(t, err)

	hidden, err := f.items.ExpandRange(ctx, acc.ID, day(2026, time.January, 1), day(2026, time.January, 31), true)
	require.NoError(t, err)
	assert.Empty(t, hidden)
}

func TestStore_DeleteLayerDeletesItsItems(t *testing.T) {
	f, acc := newFixture(t)
	ctx := context.Background()

	l, err := f.layers.Create(ctx, &layer.Layer{AccountID: acc.ID, Name: "What-if"})
	require.NoError(t, err)

	onLayer, err := f.items.Create(ctx, &item.Item{
		AccountID: acc.ID,
		Date:      day(2026, time.January, 10),
		Amount:    decimal.NewFromInt(500),
		Type:      item.TypeDebit,
		LayerID:   &l.ID,
	})
	require.NoError(t, err)

	offLayer, err := f.items.Create(ctx, &item.Item{
		AccountID: acc.ID,
		Date:      day(2026, time.January, 11),
		Amount:    decimal.NewFromInt(5),
		Type:      item.TypeDebit,
	})
	require.NoError(t, err)

	require.NoError(t, f.layers.Delete(ctx, l.ID))

	_, err = f.items.Get(ctx, onLayer.ID)
	assert.ErrorIs(t, err, item.ErrNotFound)

	_, err = f.items.Get(ctx, offLayer.ID)
	assert.NoError(t, err)
}

func TestStore_DeleteAccountCascades(t *testing.T) {
	f, acc := newFixture(t)
	ctx := context.Background()

	l, err := f.layers.Create(ctx, &layer.Layer{AccountID: acc.ID, Name: "What-if"})
	require.NoError(t, err)

	it, err := f.items.Create(ctx, &item.Item{
		AccountID: acc.ID,
		Date:      day(2026, time.January, 10),
		Amount:    decimal.NewFromInt(500),
		Type:      item.TypeDebit,
	})
	require.NoError(t, err)

	require.NoError(t, f.accounts.Delete(ctx, acc.ID))

	_, err = f.accounts.Get(ctx, acc.ID)
	assert.ErrorIs(t, err, account.ErrNotFound)

	_, err = f.items.Get(ctx, it.ID)
	assert.ErrorIs(t, err, item.ErrNotFound)

	_, err = f.layers.Get(ctx, l.ID)
	assert.ErrorIs(t, err, layer.ErrNotFound)
}

func TestStore_ReplaceStateRecomputesCounters(t *testing.T) {
	f, _ := newFixture(t)
	ctx := context.Background()

	err := f.store.ReplaceState(ctx, &snapshot.State{
		Accounts: []*account.Account{
			{ID: 7, Name: "Imported", StartDate: day(2026, time.January, 1)},
		},
		Items: []*item.Item{
			{ID: 41, AccountID: 7, Date: day(2026, time.January, 5), Amount: decimal.NewFromInt(10), Type: item.TypeCredit},
		},
		Layers: []*layer.Layer{
			{ID: 3, AccountID: 7, Name: "Imported layer", IsActive: true},
		},
	})
	require.NoError(t, err)

	// Pre-replace state is gone, including the fixture account.
	accounts, err := f.accounts.List(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, int64(7), accounts[0].ID)

	newAcc, err := f.accounts.Create(ctx, &account.Account{Name: "Next"})
	require.NoError(t, err)
	assert.Equal(t, int64(8), newAcc.ID)

	newItem, err := f.items.Create(ctx, &item.Item{
		AccountID: 7,
		Date:      day(2026, time.January, 6),
		Amount:    decimal.NewFromInt(1),
		Type:      item.TypeDebit,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), newItem.ID)
}

func TestStore_CreateLayerRequiresAccount(t *testing.T) {
	f, _ := newFixture(t)

	_, err := f.layers.Create(context.Background(), &layer.Layer{AccountID: 99, Name: "Orphan"})
	assert.ErrorIs(t, err, account.ErrNotFound)
}
