// Package snapshot implements the client persistence round-trip: the full
// in-memory state can be exported as one JSON document and restored wholesale
// from one. Dates travel as "2006-01-02" strings and amounts as fixed-point
// decimals.
package snapshot

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetcal/internal/account"
	"github.com/MrJamesThe3rd/budgetcal/internal/balance"
	"github.com/MrJamesThe3rd/budgetcal/internal/calmath"
	"github.com/MrJamesThe3rd/budgetcal/internal/item"
	"github.com/MrJamesThe3rd/budgetcal/internal/layer"
)

// State is the complete set of domain collections held by the store.
type State struct {
	Accounts  []*account.Account
	Items     []*item.Item
	Layers    []*layer.Layer
	Overrides []balance.Override
}

// Snapshot is the wire form of State, wrapped in an envelope the client can
// stash and hand back verbatim.
type Snapshot struct {
	ID        uuid.UUID  `json:"id"`
	CreatedAt time.Time  `json:"createdAt"`
	Accounts  []Account  `json:"accounts"`
	Items     []Item     `json:"items"`
	Layers    []Layer    `json:"layers"`
	Overrides []Override `json:"balanceOverrides"`
}

type Account struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	StartDate       string          `json:"startDate"`
	StartingBalance decimal.Decimal `json:"startingBalance"`
}

type Item struct {
	ID          int64           `json:"id"`
	AccountID   int64           `json:"accountId"`
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Color       string          `json:"color,omitempty"`
	Type        string          `json:"type"`
	LayerID     *int64          `json:"layerId"`

	IsRecurring        bool    `json:"isRecurring,omitempty"`
	RecurringInterval  int     `json:"recurringInterval,omitempty"`
	RecurringPeriod    string  `json:"recurringPeriod,omitempty"`
	RecurringStartDate *string `json:"recurringStartDate,omitempty"`
	RecurringEndDate   *string `json:"recurringEndDate,omitempty"`

	IsException  bool    `json:"isException,omitempty"`
	ParentID     *int64  `json:"parentRecurringItemId,omitempty"`
	OriginalDate *string `json:"originalDate,omitempty"`
}

type Layer struct {
	ID        int64  `json:"id"`
	AccountID int64  `json:"accountId"`
	Name      string `json:"name"`
	IsActive  bool   `json:"isActive"`
}

type Override struct {
	AccountID int64           `json:"accountId"`
	Date      string          `json:"date"`
	Balance   decimal.Decimal `json:"balance"`
}

// ParseDate accepts the snapshot's plain date form and, for tolerance toward
// client-side serializers, a full RFC 3339 timestamp. Either way the result
// is truncated to a day.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}

	return calmath.Day(t), nil
}

func formatDate(t time.Time) string {
	return calmath.Day(t).Format(time.DateOnly)
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}

	s := formatDate(*t)
	return &s
}

func parseDatePtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}

	t, err := ParseDate(*s)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func toWire(st *State) *Snapshot {
	snap := &Snapshot{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		Accounts:  make([]Account, 0, len(st.Accounts)),
		Items:     make([]Item, 0, len(st.Items)),
		Layers:    make([]Layer, 0, len(st.Layers)),
		Overrides: make([]Override, 0, len(st.Overrides)),
	}

	for _, a := range st.Accounts {
		snap.Accounts = append(snap.Accounts, Account{
			ID:              a.ID,
			Name:            a.Name,
			Description:     a.Description,
			StartDate:       formatDate(a.StartDate),
			StartingBalance: a.StartingBalance,
		})
	}

	for _, it := range st.Items {
		snap.Items = append(snap.Items, Item{
			ID:                 it.ID,
			AccountID:          it.AccountID,
			Date:               formatDate(it.Date),
			Amount:             it.Amount,
			Description:        it.Description,
			Color:              it.Color,
			Type:               string(it.Type),
			LayerID:            it.LayerID,
			IsRecurring:        it.IsRecurring,
			RecurringInterval:  it.RecurringInterval,
			RecurringPeriod:    string(it.RecurringPeriod),
			RecurringStartDate: formatDatePtr(it.RecurringStartDate),
			RecurringEndDate:   formatDatePtr(it.RecurringEndDate),
			IsException:        it.IsException,
			ParentID:           it.ParentID,
			OriginalDate:       formatDatePtr(it.OriginalDate),
		})
	}

	for _, l := range st.Layers {
		snap.Layers = append(snap.Layers, Layer{
			ID:        l.ID,
			AccountID: l.AccountID,
			Name:      l.Name,
			IsActive:  l.IsActive,
		})
	}

	for _, o := range st.Overrides {
		snap.Overrides = append(snap.Overrides, Override{
			AccountID: o.AccountID,
			Date:      formatDate(o.Date),
			Balance:   o.Balance,
		})
	}

	return snap
}

func fromWire(snap *Snapshot) (*State, error) {
	st := &State{
		Accounts:  make([]*account.Account, 0, len(snap.Accounts)),
		Items:     make([]*item.Item, 0, len(snap.Items)),
		Layers:    make([]*layer.Layer, 0, len(snap.Layers)),
		Overrides: make([]balance.Override, 0, len(snap.Overrides)),
	}

	for _, a := range snap.Accounts {
		start, err := ParseDate(a.StartDate)
		if err != nil {
			return nil, fmt.Errorf("account %d: %w", a.ID, err)
		}

		st.Accounts = append(st.Accounts, &account.Account{
			ID:              a.ID,
			Name:            a.Name,
			Description:     a.Description,
			StartDate:       start,
			StartingBalance: a.StartingBalance,
		})
	}

	for _, w := range snap.Items {
		date, err := ParseDate(w.Date)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", w.ID, err)
		}

		recStart, err := parseDatePtr(w.RecurringStartDate)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", w.ID, err)
		}

		recEnd, err := parseDatePtr(w.RecurringEndDate)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", w.ID, err)
		}

		origDate, err := parseDatePtr(w.OriginalDate)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", w.ID, err)
		}

		it := &item.Item{
			ID:                 w.ID,
			AccountID:          w.AccountID,
			Date:               date,
			Amount:             w.Amount,
			Description:        w.Description,
			Color:              w.Color,
			Type:               item.Type(w.Type),
			LayerID:            w.LayerID,
			IsRecurring:        w.IsRecurring,
			RecurringInterval:  w.RecurringInterval,
			RecurringPeriod:    calmath.Period(w.RecurringPeriod),
			RecurringStartDate: recStart,
			RecurringEndDate:   recEnd,
			IsException:        w.IsException,
			ParentID:           w.ParentID,
			OriginalDate:       origDate,
		}
		if err := item.Validate(it); err != nil {
			return nil, fmt.Errorf("item %d: %w", w.ID, err)
		}

		st.Items = append(st.Items, it)
	}

	for _, l := range snap.Layers {
		st.Layers = append(st.Layers, &layer.Layer{
			ID:        l.ID,
			AccountID: l.AccountID,
			Name:      l.Name,
			IsActive:  l.IsActive,
		})
	}

	for _, o := range snap.Overrides {
		date, err := ParseDate(o.Date)
		if err != nil {
			return nil, fmt.Errorf("override for account %d: %w", o.AccountID, err)
		}

		st.Overrides = append(st.Overrides, balance.Override{
			AccountID: o.AccountID,
			Date:      date,
			Balance:   o.Balance,
		})
	}

	return st, nil
}
