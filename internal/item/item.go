package item

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetcal/internal/calmath"
)

// Type represents the direction of an item: debits decrease the account
// balance, credits increase it. The amount itself is always non-negative.
type Type string

const (
	TypeDebit  Type = "Debit"
	TypeCredit Type = "Credit"
)

func (t Type) Valid() bool {
	return t == TypeDebit || t == TypeCredit
}

// DeletedMarker is the description carried by a deletion exception. An
// exception with this description and a zero amount suppresses one occurrence
// of its parent series without producing a visible replacement.
const DeletedMarker = "[DELETED]"

// Item is a dated entry on the budget calendar. It is one of three shapes:
// a one-time item, a recurring series template, or an exception that edits or
// deletes a single occurrence of a series. An item is never both recurring
// and an exception.
type Item struct {
	ID          int64
	AccountID   int64
	Date        time.Time
	Amount      decimal.Decimal
	Description string
	Color       string
	Type        Type
	LayerID     *int64 // nil means the account's default layer

	IsRecurring        bool
	RecurringInterval  int
	RecurringPeriod    calmath.Period
	RecurringStartDate *time.Time // defaults to Date when nil
	RecurringEndDate   *time.Time // inclusive; nil means open-ended

	IsException  bool
	ParentID     *int64     // the recurring series this exception belongs to
	OriginalDate *time.Time // the generated occurrence this exception replaces
}

// Anchor returns the first occurrence date of a recurring item.
func (it *Item) Anchor() time.Time {
	if it.RecurringStartDate != nil {
		return calmath.Day(*it.RecurringStartDate)
	}

	return calmath.Day(it.Date)
}

// IsDeletionMarker reports whether the item is a deletion exception.
func (it *Item) IsDeletionMarker() bool {
	return it.IsException && it.Description == DeletedMarker && it.Amount.IsZero()
}

// Signed returns the amount with the sign implied by the item type.
func (it *Item) Signed() decimal.Decimal {
	if it.Type == TypeCredit {
		return it.Amount
	}

	return it.Amount.Neg()
}

// Clone returns a deep copy of the item.
func (it *Item) Clone() *Item {
	c := *it
	c.LayerID = clonePtr(it.LayerID)
	c.RecurringStartDate = clonePtr(it.RecurringStartDate)
	c.RecurringEndDate = clonePtr(it.RecurringEndDate)
	c.ParentID = clonePtr(it.ParentID)
	c.OriginalDate = clonePtr(it.OriginalDate)

	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}

	v := *p
	return &v
}

// Visibility captures which layers of an account are currently shown.
// Items without a layer follow the caller-supplied default-layer flag; items
// on a layer follow that layer's active state.
type Visibility struct {
	DefaultActive bool
	ActiveLayers  map[int64]bool
}

// Visible reports whether the item passes the layer filter.
func (v Visibility) Visible(it *Item) bool {
	if it.LayerID == nil {
		return v.DefaultActive
	}

	return v.ActiveLayers[*it.LayerID]
}
