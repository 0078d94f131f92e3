package balance

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetcal/internal/account"
	"github.com/MrJamesThe3rd/budgetcal/internal/calmath"
	"github.com/MrJamesThe3rd/budgetcal/internal/item"
)

type Repository interface {
	SetOverride(ctx context.Context, o Override) error
	ListOverrides(ctx context.Context, accountID int64) ([]Override, error)
}

type AccountSource interface {
	GetAccount(ctx context.Context, id int64) (*account.Account, error)
}

type ItemSource interface {
	ListItems(ctx context.Context, accountID int64) ([]*item.Item, error)
}

type LayerSource interface {
	LayerStates(ctx context.Context, accountID int64) (map[int64]bool, error)
}

type Service struct {
	overrides Repository
	accounts  AccountSource
	items     ItemSource
	layers    LayerSource
}

func NewService(overrides Repository, accounts AccountSource, items ItemSource, layers LayerSource) *Service {
	return &Service{overrides: overrides, accounts: accounts, items: items, layers: layers}
}

// SetOverride upserts a manual balance override for one day.
func (s *Service) SetOverride(ctx context.Context, accountID int64, date time.Time, bal decimal.Decimal) error {
	return s.overrides.SetOverride(ctx, Override{
		AccountID: accountID,
		Date:      calmath.Day(date),
		Balance:   bal,
	})
}

// DailyBalances computes the balance for every day of the month, keyed by
// "2006-01-02". Days carrying an override report it verbatim and reset the
// baseline; days after a baseline accumulate from it; all other days
// accumulate from the account's starting balance. Days before the account's
// start date are zero.
//
// The recurring expansion is re-run per day over the accumulated window.
// That is O(days x series) per month, which is fine at the data sizes a
// single user produces.
func (s *Service) DailyBalances(ctx context.Context, accountID int64, year int, month time.Month, defaultLayerActive bool) (map[string]DayBalance, error) {
	acct, err := s.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	items, err := s.items.ListItems(ctx, accountID)
	if err != nil {
		return nil, err
	}

	states, err := s.layers.LayerStates(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("layer states: %w", err)
	}

	vis := item.Visibility{DefaultActive: defaultLayerActive, ActiveLayers: states}

	overrides, err := s.overrides.ListOverrides(ctx, accountID)
	if err != nil {
		return nil, err
	}

	sort.Slice(overrides, func(i, j int) bool {
		return overrides[i].Date.Before(overrides[j].Date)
	})

	monthStart, monthEnd := calmath.MonthRange(year, month)

	// The baseline is the chronologically latest override up to month end.
	// Early days of the month that precede it fall through to the
	// starting-balance computation until the override day itself is reached.
	var (
		baselineDate time.Time
		baselineBal  decimal.Decimal
		haveBaseline bool
	)

	byDay := make(map[string]decimal.Decimal, len(overrides))

	for _, o := range overrides {
		d := calmath.Day(o.Date)
		byDay[d.Format(time.DateOnly)] = o.Balance

		if !d.After(monthEnd) {
			baselineDate, baselineBal, haveBaseline = d, o.Balance, true
		}
	}

	startDay := calmath.Day(acct.StartDate)
	days := calmath.DaysInMonth(year, month)
	out := make(map[string]DayBalance, days)

	for dayNum := 1; dayNum <= days; dayNum++ {
		d := monthStart.AddDate(0, 0, dayNum-1)
		key := d.Format(time.DateOnly)

		switch {
		case hasOverride(byDay, key):
			baselineDate, baselineBal, haveBaseline = d, byDay[key], true
			out[key] = DayBalance{Balance: byDay[key], IsOverride: true}

		case haveBaseline && d.After(baselineDate):
			net := netEffect(items, accountID, baselineDate.AddDate(0, 0, 1), d, vis)
			out[key] = DayBalance{Balance: baselineBal.Add(net)}

		case d.Before(startDay):
			out[key] = DayBalance{Balance: decimal.Zero}

		default:
			net := netEffect(items, accountID, startDay, d, vis)
			out[key] = DayBalance{Balance: acct.StartingBalance.Add(net)}
		}
	}

	return out, nil
}

func hasOverride(byDay map[string]decimal.Decimal, key string) bool {
	_, ok := byDay[key]
	return ok
}

// netEffect sums the signed amounts of every concrete transaction in
// [from, to]: literal one-time items plus the recurring expansion, debits
// negative and credits positive.
func netEffect(items []*item.Item, accountID int64, from, to time.Time, vis item.Visibility) decimal.Decimal {
	if to.Before(from) {
		return decimal.Zero
	}

	net := decimal.Zero
	for _, inst := range item.Materialize(items, accountID, from, to, vis) {
		net = net.Add(inst.Signed())
	}

	return net
}
