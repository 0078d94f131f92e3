// Package balance computes the running daily balance of an account. Each day
// of a month gets a balance derived from the account's starting balance and
// the signed sum of every concrete transaction up to that day, with manual
// overrides superseding the computed value and becoming the baseline for the
// days that follow.
package balance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Override asserts the exact balance of an account on one date.
type Override struct {
	AccountID int64
	Date      time.Time
	Balance   decimal.Decimal
}

// DayBalance is one day's entry in the month view.
type DayBalance struct {
	Balance    decimal.Decimal
	IsOverride bool
}
