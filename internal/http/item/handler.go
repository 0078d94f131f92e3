package item

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetcal/internal/calmath"
	"github.com/MrJamesThe3rd/budgetcal/internal/item"
)

type Handler struct {
	svc *item.Service
}

func NewHandler(svc *item.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/range", h.expandRange)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Put("/{id}/series", h.updateRecurring)
	r.Delete("/{id}/series", h.deleteRecurring)
}

type createItemRequest struct {
	AccountID   int64           `json:"accountId"`
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Color       string          `json:"color"`
	Type        item.Type       `json:"type"`
	LayerID     *int64          `json:"layerId"`

	IsRecurring        bool    `json:"isRecurring"`
	RecurringInterval  int     `json:"recurringInterval"`
	RecurringPeriod    string  `json:"recurringPeriod"`
	RecurringStartDate *string `json:"recurringStartDate"`
	RecurringEndDate   *string `json:"recurringEndDate"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	date, err := parseDay(req.Date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	recStart, err := parseDayPtr(req.RecurringStartDate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	recEnd, err := parseDayPtr(req.RecurringEndDate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	it, err := h.svc.Create(r.Context(), &item.Item{
		AccountID:          req.AccountID,
		Date:               date,
		Amount:             req.Amount,
		Description:        req.Description,
		Color:              req.Color,
		Type:               req.Type,
		LayerID:            req.LayerID,
		IsRecurring:        req.IsRecurring,
		RecurringInterval:  req.RecurringInterval,
		RecurringPeriod:    calmath.Period(req.RecurringPeriod),
		RecurringStartDate: recStart,
		RecurringEndDate:   recEnd,
	})
	if err != nil {
		if errors.Is(err, item.ErrInvalidItem) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(it)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var (
		items []*item.Item
		err   error
	)

	if s := r.URL.Query().Get("account_id"); s != "" {
		accountID, parseErr := strconv.ParseInt(s, 10, 64)
		if parseErr != nil {
			http.Error(w, "invalid account_id", http.StatusBadRequest)
			return
		}

		items, err = h.svc.List(r.Context(), accountID)
	} else {
		items, err = h.svc.ListAll(r.Context())
	}

	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(items)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// expandRange materializes all concrete transactions for an account over a
// window given either as start_date/end_date or as year/month.
func (h *Handler) expandRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	accountID, err := strconv.ParseInt(q.Get("account_id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid account_id", http.StatusBadRequest)
		return
	}

	var start, end time.Time

	switch {
	case q.Get("start_date") != "":
		start, err = parseDay(q.Get("start_date"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		end, err = parseDay(q.Get("end_date"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

	default:
		year, yearErr := strconv.Atoi(q.Get("year"))
		month, monthErr := strconv.Atoi(q.Get("month"))

		if yearErr != nil || monthErr != nil || month < 1 || month > 12 {
			http.Error(w, "invalid year/month", http.StatusBadRequest)
			return
		}

		start, end = calmath.MonthRange(year, time.Month(month))
	}

	instances, err := h.svc.ExpandRange(r.Context(), accountID, start, end, defaultActive(q.Get("default_active")))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toInstanceResponseList(instances)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	it, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, item.ErrNotFound) {
			http.Error(w, "item not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(it)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type updateItemRequest struct {
	Date        *string          `json:"date,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Description *string          `json:"description,omitempty"`
	Color       *string          `json:"color,omitempty"`
	Type        *item.Type       `json:"type,omitempty"`
	LayerID     *int64           `json:"layerId,omitempty"`

	IsRecurring        *bool   `json:"isRecurring,omitempty"`
	RecurringInterval  *int    `json:"recurringInterval,omitempty"`
	RecurringPeriod    *string `json:"recurringPeriod,omitempty"`
	RecurringStartDate *string `json:"recurringStartDate,omitempty"`
	RecurringEndDate   *string `json:"recurringEndDate,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	it, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, item.ErrNotFound) {
			http.Error(w, "item not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	if err := applyUpdate(it, req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.Update(r.Context(), it); err != nil {
		if errors.Is(err, item.ErrInvalidItem) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(it)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func applyUpdate(it *item.Item, req updateItemRequest) error {
	if req.Date != nil {
		date, err := parseDay(*req.Date)
		if err != nil {
			return err
		}

		it.Date = date
	}

	if req.Amount != nil {
		it.Amount = *req.Amount
	}

	if req.Description != nil {
		it.Description = *req.Description
	}

	if req.Color != nil {
		it.Color = *req.Color
	}

	if req.Type != nil {
		it.Type = *req.Type
	}

	if req.LayerID != nil {
		it.LayerID = req.LayerID
	}

	if req.IsRecurring != nil {
		it.IsRecurring = *req.IsRecurring
	}

	if req.RecurringInterval != nil {
		it.RecurringInterval = *req.RecurringInterval
	}

	if req.RecurringPeriod != nil {
		it.RecurringPeriod = calmath.Period(*req.RecurringPeriod)
	}

	if req.RecurringStartDate != nil {
		start, err := parseDay(*req.RecurringStartDate)
		if err != nil {
			return err
		}

		it.RecurringStartDate = &start
	}

	if req.RecurringEndDate != nil {
		end, err := parseDay(*req.RecurringEndDate)
		if err != nil {
			return err
		}

		it.RecurringEndDate = &end
	}

	return nil
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, item.ErrNotFound) {
			http.Error(w, "item not found", http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type recurringEditRequest struct {
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Color       string          `json:"color"`
	Type        item.Type       `json:"type"`
	LayerID     *int64          `json:"layerId"`

	RecurringInterval int    `json:"recurringInterval"`
	RecurringPeriod   string `json:"recurringPeriod"`
}

func (h *Handler) updateRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	mode, err := item.ParseEditMode(r.URL.Query().Get("mode"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req recurringEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	date, err := parseDay(req.Date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.svc.UpdateRecurring(r.Context(), id, mode, item.EditParams{
		Date:        date,
		Amount:      req.Amount,
		Description: req.Description,
		Color:       req.Color,
		Type:        req.Type,
		LayerID:     req.LayerID,
		Interval:    req.RecurringInterval,
		Period:      calmath.Period(req.RecurringPeriod),
	})
	if err != nil {
		writeSeriesError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(result)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) deleteRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	q := r.URL.Query()

	mode, err := item.ParseEditMode(q.Get("mode"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	accountID, err := strconv.ParseInt(q.Get("account_id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid account_id", http.StatusBadRequest)
		return
	}

	date, err := parseDay(q.Get("date"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteRecurring(r.Context(), id, accountID, mode, date); err != nil {
		writeSeriesError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeSeriesError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, item.ErrNotFound):
		http.Error(w, "item not found", http.StatusNotFound)
	case errors.Is(err, item.ErrInvalidEditMode), errors.Is(err, item.ErrInvalidItem):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func defaultActive(s string) bool {
	if s == "" {
		return true
	}

	active, err := strconv.ParseBool(s)
	if err != nil {
		return true
	}

	return active
}

func parseDay(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, err
	}

	return t, nil
}

func parseDayPtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}

	t, err := parseDay(*s)
	if err != nil {
		return nil, err
	}

	return &t, nil
}
