package item

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetcal/internal/calmath"
	"github.com/MrJamesThe3rd/budgetcal/internal/item"
)

type itemResponse struct {
	ID          int64           `json:"id"`
	AccountID   int64           `json:"accountId"`
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Color       string          `json:"color,omitempty"`
	Type        item.Type       `json:"type"`
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

type instanceResponse struct {
	itemResponse

	OccurrenceKey string `json:"occurrenceKey"`
	Generated     bool   `json:"generated,omitempty"`
}

func formatDay(t time.Time) string {
	return calmath.Day(t).Format(time.DateOnly)
}

func formatDayPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}

	s := formatDay(*t)
	return &s
}

func toResponse(it *item.Item) itemResponse {
	return itemResponse{
		ID:                 it.ID,
		AccountID:          it.AccountID,
		Date:               formatDay(it.Date),
		Amount:             it.Amount,
		Description:        it.Description,
		Color:              it.Color,
		Type:               it.Type,
		LayerID:            it.LayerID,
		IsRecurring:        it.IsRecurring,
		RecurringInterval:  it.RecurringInterval,
		RecurringPeriod:    string(it.RecurringPeriod),
		RecurringStartDate: formatDayPtr(it.RecurringStartDate),
		RecurringEndDate:   formatDayPtr(it.RecurringEndDate),
		IsException:        it.IsException,
		ParentID:           it.ParentID,
		OriginalDate:       formatDayPtr(it.OriginalDate),
	}
}

func toResponseList(items []*item.Item) []itemResponse {
	resp := make([]itemResponse, len(items))
	for i, it := range items {
		resp[i] = toResponse(it)
	}

	return resp
}

func toInstanceResponse(inst item.Instance) instanceResponse {
	return instanceResponse{
		itemResponse:  toResponse(&inst.Item),
		OccurrenceKey: inst.OccurrenceKey,
		Generated:     inst.Generated,
	}
}

func toInstanceResponseList(instances []item.Instance) []instanceResponse {
	resp := make([]instanceResponse, len(instances))
	for i, inst := range instances {
		resp[i] = toInstanceResponse(inst)
	}

	return resp
}
