package account

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("account not found")

// Account is an independent balance domain. Every item, layer and balance
// override belongs to exactly one account.
type Account struct {
	ID              int64
	Name            string
	Description     string
	StartDate       time.Time // baseline date for balance computation
	StartingBalance decimal.Decimal
}

// Clone returns a copy of the account.
func (a *Account) Clone() *Account {
	c := *a
	return &c
}
