// Package store holds the entire application state in process memory behind
// one lock: accounts, layers, items and balance overrides. Mutations take the
// write lock for their full duration, so readers never observe a half-applied
// series edit or a partially replaced snapshot. The client owns persistence;
// the store only lives as long as the process.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetcal/internal/account"
	"github.com/MrJamesThe3rd/budgetcal/internal/balance"
	"github.com/MrJamesThe3rd/budgetcal/internal/calmath"
	"github.com/MrJamesThe3rd/budgetcal/internal/item"
	"github.com/MrJamesThe3rd/budgetcal/internal/layer"
	"github.com/MrJamesThe3rd/budgetcal/internal/snapshot"
)

type Store struct {
	mu sync.RWMutex

	accounts  map[int64]*account.Account
	layers    map[int64]*layer.Layer
	items     map[int64]*item.Item
	overrides map[int64]map[string]decimal.Decimal // accountID -> "2006-01-02" -> balance

	nextAccountID int64
	nextLayerID   int64
	nextItemID    int64
}

func New() *Store {
	s := &Store{}
	s.reset()

	return s
}

// reset reinitializes all collections; callers hold the write lock (or own
// the store exclusively, as in New).
func (s *Store) reset() {
	s.accounts = make(map[int64]*account.Account)
	s.layers = make(map[int64]*layer.Layer)
	s.items = make(map[int64]*item.Item)
	s.overrides = make(map[int64]map[string]decimal.Decimal)
	s.nextAccountID = 1
	s.nextLayerID = 1
	s.nextItemID = 1
}

// --- item.Repository ---

func (s *Store) CreateItem(_ context.Context, it *item.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it.ID = s.nextItemID
	s.nextItemID++
	s.items[it.ID] = it.Clone()

	return nil
}

func (s *Store) GetItem(_ context.Context, id int64) (*item.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[id]
	if !ok {
		return nil, item.ErrNotFound
	}

	return it.Clone(), nil
}

func (s *Store) UpdateItem(_ context.Context, it *item.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[it.ID]; !ok {
		return item.ErrNotFound
	}

	s.items[it.ID] = it.Clone()

	return nil
}

func (s *Store) DeleteItem(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return item.ErrNotFound
	}

	delete(s.items, id)

	return nil
}

func (s *Store) ListItems(_ context.Context, accountID int64) ([]*item.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*item.Item

	for _, it := range s.items {
		if it.AccountID == accountID {
			out = append(out, it.Clone())
		}
	}

	sortItemsByID(out)

	return out, nil
}

func (s *Store) ListAllItems(_ context.Context) ([]*item.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*item.Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it.Clone())
	}

	sortItemsByID(out)

	return out, nil
}

// BeginSeriesEdit takes the write lock until Commit or Rollback, staging a
// copy of the item collection so a failed edit restores the prior state.
func (s *Store) BeginSeriesEdit(_ context.Context) (item.SeriesTx, error) {
	s.mu.Lock()

	staged := make(map[int64]*item.Item, len(s.items))
	for id, it := range s.items {
		staged[id] = it.Clone()
	}

	return &seriesTx{s: s, staged: staged, stagedNextID: s.nextItemID}, nil
}

type seriesTx struct {
	s            *Store
	staged       map[int64]*item.Item
	stagedNextID int64
	done         bool
}

func (tx *seriesTx) Get(id int64) (*item.Item, error) {
	it, ok := tx.s.items[id]
	if !ok {
		return nil, item.ErrNotFound
	}

	return it.Clone(), nil
}

func (tx *seriesTx) Create(it *item.Item) error {
	it.ID = tx.s.nextItemID
	tx.s.nextItemID++
	tx.s.items[it.ID] = it.Clone()

	return nil
}

func (tx *seriesTx) Update(it *item.Item) error {
	if _, ok := tx.s.items[it.ID]; !ok {
		return item.ErrNotFound
	}

	tx.s.items[it.ID] = it.Clone()

	return nil
}

func (tx *seriesTx) DeleteSeries(parentID int64) error {
	if _, ok := tx.s.items[parentID]; !ok {
		return item.ErrNotFound
	}

	delete(tx.s.items, parentID)

	for id, it := range tx.s.items {
		if it.ParentID != nil && *it.ParentID == parentID {
			delete(tx.s.items, id)
		}
	}

	return nil
}

func (tx *seriesTx) Commit() error {
	if tx.done {
		return nil
	}

	tx.done = true
	tx.staged = nil
	tx.s.mu.Unlock()

	return nil
}

func (tx *seriesTx) Rollback() error {
	if tx.done {
		return nil
	}

	tx.done = true
	tx.s.items = tx.staged
	tx.s.nextItemID = tx.stagedNextID
	tx.s.mu.Unlock()

	return nil
}

// --- account.Repository ---

func (s *Store) CreateAccount(_ context.Context, a *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = s.nextAccountID
	s.nextAccountID++
	s.accounts[a.ID] = a.Clone()

	return nil
}

func (s *Store) GetAccount(_ context.Context, id int64) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, account.ErrNotFound
	}

	return a.Clone(), nil
}

func (s *Store) UpdateAccount(_ context.Context, a *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[a.ID]; !ok {
		return account.ErrNotFound
	}

	s.accounts[a.ID] = a.Clone()

	return nil
}

// DeleteAccount removes the account and everything keyed to it: items,
// layers and balance overrides.
func (s *Store) DeleteAccount(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return account.ErrNotFound
	}

	delete(s.accounts, id)
	delete(s.overrides, id)

	for itemID, it := range s.items {
		if it.AccountID == id {
			delete(s.items, itemID)
		}
	}

	for layerID, l := range s.layers {
		if l.AccountID == id {
			delete(s.layers, layerID)
		}
	}

	return nil
}

func (s *Store) ListAccounts(_ context.Context) ([]*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*account.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a.Clone())
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

// --- layer.Repository ---

func (s *Store) CreateLayer(_ context.Context, l *layer.Layer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[l.AccountID]; !ok {
		return account.ErrNotFound
	}

	l.ID = s.nextLayerID
	s.nextLayerID++
	s.layers[l.ID] = l.Clone()

	return nil
}

func (s *Store) GetLayer(_ context.Context, id int64) (*layer.Layer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.layers[id]
	if !ok {
		return nil, layer.ErrNotFound
	}

	return l.Clone(), nil
}

func (s *Store) UpdateLayer(_ context.Context, l *layer.Layer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.layers[l.ID]; !ok {
		return layer.ErrNotFound
	}

	s.layers[l.ID] = l.Clone()

	return nil
}

// DeleteLayer removes the layer and deletes the items assigned to it.
func (s *Store) DeleteLayer(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.layers[id]; !ok {
		return layer.ErrNotFound
	}

	delete(s.layers, id)

	for itemID, it := range s.items {
		if it.LayerID != nil && *it.LayerID == id {
			delete(s.items, itemID)
		}
	}

	return nil
}

func (s *Store) ToggleLayer(_ context.Context, id int64) (*layer.Layer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.layers[id]
	if !ok {
		return nil, layer.ErrNotFound
	}

	l.IsActive = !l.IsActive

	return l.Clone(), nil
}

func (s *Store) ListLayers(_ context.Context, accountID int64) ([]*layer.Layer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*layer.Layer

	for _, l := range s.layers {
		if l.AccountID == accountID {
			out = append(out, l.Clone())
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (s *Store) ListAllLayers(_ context.Context) ([]*layer.Layer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*layer.Layer, 0, len(s.layers))
	for _, l := range s.layers {
		out = append(out, l.Clone())
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

// --- balance.Repository ---

func (s *Store) SetOverride(_ context.Context, o balance.Override) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[o.AccountID]; !ok {
		return account.ErrNotFound
	}

	byDay := s.overrides[o.AccountID]
	if byDay == nil {
		byDay = make(map[string]decimal.Decimal)
		s.overrides[o.AccountID] = byDay
	}

	byDay[calmath.Day(o.Date).Format(time.DateOnly)] = o.Balance

	return nil
}

func (s *Store) ListOverrides(_ context.Context, accountID int64) ([]balance.Override, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listOverridesLocked(accountID)
}

func (s *Store) listOverridesLocked(accountID int64) ([]balance.Override, error) {
	var out []balance.Override

	for dateStr, bal := range s.overrides[accountID] {
		date, err := time.Parse(time.DateOnly, dateStr)
		if err != nil {
			continue
		}

		out = append(out, balance.Override{AccountID: accountID, Date: date, Balance: bal})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	return out, nil
}

// --- snapshot.Repository ---

func (s *Store) ExportState(_ context.Context) (*snapshot.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := &snapshot.State{}

	for _, a := range s.accounts {
		st.Accounts = append(st.Accounts, a.Clone())
	}

	sort.Slice(st.Accounts, func(i, j int) bool { return st.Accounts[i].ID < st.Accounts[j].ID })

	for _, it := range s.items {
		st.Items = append(st.Items, it.Clone())
	}

	sortItemsByID(st.Items)

	for _, l := range s.layers {
		st.Layers = append(st.Layers, l.Clone())
	}

	sort.Slice(st.Layers, func(i, j int) bool { return st.Layers[i].ID < st.Layers[j].ID })

	for accountID := range s.overrides {
		ovs, _ := s.listOverridesLocked(accountID)
		st.Overrides = append(st.Overrides, ovs...)
	}

	sort.Slice(st.Overrides, func(i, j int) bool {
		if st.Overrides[i].AccountID != st.Overrides[j].AccountID {
			return st.Overrides[i].AccountID < st.Overrides[j].AccountID
		}

		return st.Overrides[i].Date.Before(st.Overrides[j].Date)
	})

	return st, nil
}

// ReplaceState swaps every collection in one step and recomputes the id
// counters as max(existing)+1 per collection.
func (s *Store) ReplaceState(_ context.Context, st *snapshot.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()

	for _, a := range st.Accounts {
		s.accounts[a.ID] = a.Clone()
		if a.ID >= s.nextAccountID {
			s.nextAccountID = a.ID + 1
		}
	}

	for _, it := range st.Items {
		s.items[it.ID] = it.Clone()
		if it.ID >= s.nextItemID {
			s.nextItemID = it.ID + 1
		}
	}

	for _, l := range st.Layers {
		s.layers[l.ID] = l.Clone()
		if l.ID >= s.nextLayerID {
			s.nextLayerID = l.ID + 1
		}
	}

	for _, o := range st.Overrides {
		byDay := s.overrides[o.AccountID]
		if byDay == nil {
			byDay = make(map[string]decimal.Decimal)
			s.overrides[o.AccountID] = byDay
		}

		byDay[calmath.Day(o.Date).Format(time.DateOnly)] = o.Balance
	}

	return nil
}

func (s *Store) ResetState(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()

	return nil
}

func sortItemsByID(items []*item.Item) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}
