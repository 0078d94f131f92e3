package balance

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetcal/internal/account"
	"github.com/MrJamesThe3rd/budgetcal/internal/balance"
)

type Handler struct {
	svc *balance.Service
}

func NewHandler(svc *balance.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/daily", h.daily)
	r.Put("/override", h.setOverride)
}

type dayBalanceResponse struct {
	Balance    decimal.Decimal `json:"balance"`
	IsOverride bool            `json:"isOverride"`
}

func (h *Handler) daily(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	accountID, err := strconv.ParseInt(q.Get("account_id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid account_id", http.StatusBadRequest)
		return
	}

	year, yearErr := strconv.Atoi(q.Get("year"))
	month, monthErr := strconv.Atoi(q.Get("month"))

	if yearErr != nil || monthErr != nil || month < 1 || month > 12 {
		http.Error(w, "invalid year/month", http.StatusBadRequest)
		return
	}

	active := true
	if s := q.Get("default_active"); s != "" {
		if parsed, parseErr := strconv.ParseBool(s); parseErr == nil {
			active = parsed
		}
	}

	balances, err := h.svc.DailyBalances(r.Context(), accountID, year, time.Month(month), active)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			http.Error(w, "account not found", http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	resp := make(map[string]dayBalanceResponse, len(balances))
	for date, day := range balances {
		resp[date] = dayBalanceResponse{Balance: day.Balance, IsOverride: day.IsOverride}
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type setOverrideRequest struct {
	AccountID int64           `json:"accountId"`
	Date      string          `json:"date"`
	Balance   decimal.Decimal `json:"balance"`
}

func (h *Handler) setOverride(w http.ResponseWriter, r *http.Request) {
	var req setOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	date, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	if err := h.svc.SetOverride(r.Context(), req.AccountID, date, req.Balance); err != nil {
		if errors.Is(err, account.ErrNotFound) {
			http.Error(w, "account not found", http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
