package item

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetcal/internal/calmath"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=item
type Repository interface {
	CreateItem(ctx context.Context, it *Item) error
	GetItem(ctx context.Context, id int64) (*Item, error)
	UpdateItem(ctx context.Context, it *Item) error
	DeleteItem(ctx context.Context, id int64) error
	ListItems(ctx context.Context, accountID int64) ([]*Item, error)
	ListAllItems(ctx context.Context) ([]*Item, error)

	BeginSeriesEdit(ctx context.Context) (SeriesTx, error)
}

// SeriesTx groups the steps of a series edit into one atomic transition, so
// no reader observes a split series halfway through. Commit publishes the
// changes; Rollback discards them and is a no-op after Commit.
type SeriesTx interface {
	Get(id int64) (*Item, error)
	Create(it *Item) error
	Update(it *Item) error
	DeleteSeries(parentID int64) error
	Commit() error
	Rollback() error
}

// LayerSource reports the active state of every layer on an account, keyed by
// layer id.
type LayerSource interface {
	LayerStates(ctx context.Context, accountID int64) (map[int64]bool, error)
}

type Service struct {
	repo   Repository
	layers LayerSource
}

func NewService(repo Repository, layers LayerSource) *Service {
	return &Service{repo: repo, layers: layers}
}

// Validate checks the invariants every stored item must satisfy. Recurring
// parameters are validated here so the interval math never sees an
// unrecognized period.
func Validate(it *Item) error {
	if it.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidItem)
	}

	if !it.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidItem, it.Type)
	}

	if it.IsRecurring && it.IsException {
		return fmt.Errorf("%w: item cannot be both recurring and an exception", ErrInvalidItem)
	}

	if it.IsRecurring {
		if it.RecurringInterval < 1 {
			return fmt.Errorf("%w: recurring interval must be positive", ErrInvalidItem)
		}

		period, err := calmath.ParsePeriod(string(it.RecurringPeriod))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidItem, err)
		}

		it.RecurringPeriod = period
	}

	if it.IsException && (it.ParentID == nil || it.OriginalDate == nil) {
		return fmt.Errorf("%w: exception requires a parent series and original date", ErrInvalidItem)
	}

	return nil
}

func (s *Service) Create(ctx context.Context, it *Item) (*Item, error) {
	if err := Validate(it); err != nil {
		return nil, err
	}

	if err := s.repo.CreateItem(ctx, it); err != nil {
		return nil, err
	}

	return it, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Item, error) {
	return s.repo.GetItem(ctx, id)
}

func (s *Service) Update(ctx context.Context, it *Item) error {
	if err := Validate(it); err != nil {
		return err
	}

	return s.repo.UpdateItem(ctx, it)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteItem(ctx, id)
}

func (s *Service) List(ctx context.Context, accountID int64) ([]*Item, error) {
	return s.repo.ListItems(ctx, accountID)
}

func (s *Service) ListAll(ctx context.Context) ([]*Item, error) {
	return s.repo.ListAllItems(ctx)
}

// visibility assembles the layer filter for one account.
func (s *Service) visibility(ctx context.Context, accountID int64, defaultActive bool) (Visibility, error) {
	states, err := s.layers.LayerStates(ctx, accountID)
	if err != nil {
		return Visibility{}, fmt.Errorf("layer states: %w", err)
	}

	return Visibility{DefaultActive: defaultActive, ActiveLayers: states}, nil
}

// ExpandRange materializes all concrete transactions for the account between
// start and end, sorted by date then id.
func (s *Service) ExpandRange(ctx context.Context, accountID int64, start, end time.Time, defaultLayerActive bool) ([]Instance, error) {
	vis, err := s.visibility(ctx, accountID, defaultLayerActive)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListItems(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return Materialize(items, accountID, start, end, vis), nil
}

// EditParams carries the edited values applied to a recurring series.
type EditParams struct {
	Date        time.Time
	Amount      decimal.Decimal
	Description string
	Color       string
	Type        Type
	LayerID     *int64
	Interval    int
	Period      calmath.Period
}

// UpdateRecurring applies an edit to the series identified by parentID, with
// mode deciding the scope:
//
//   - ThisOne records an exception for the edited occurrence. Editing the
//     anchor occurrence first advances the parent's anchor one interval so the
//     old slot is consumed by the exception.
//   - FromThisOne at the anchor edits the whole series in place; anywhere
//     else it ends the old series one interval earlier and starts a new,
//     independent series at the edited date.
//   - AllInSeries rewrites the series parameters, keeping its start date.
//
// The returned item is the row that now represents the edited occurrence.
func (s *Service) UpdateRecurring(ctx context.Context, parentID int64, mode EditMode, params EditParams) (*Item, error) {
	tx, err := s.repo.BeginSeriesEdit(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin series edit: %w", err)
	}
	defer tx.Rollback()

	parent, err := tx.Get(parentID)
	if err != nil {
		return nil, err
	}

	date := calmath.Day(params.Date)

	var result *Item

	switch mode {
	case EditThisOne:
		if calmath.SameDay(date, parent.Date) {
			if err := advanceAnchor(tx, parent); err != nil {
				return nil, err
			}
		}

		exception := &Item{
			AccountID:    parent.AccountID,
			Date:         date,
			Amount:       params.Amount,
			Description:  params.Description,
			Color:        params.Color,
			Type:         params.Type,
			LayerID:      params.LayerID,
			IsException:  true,
			ParentID:     &parent.ID,
			OriginalDate: &date,
		}
		if err := Validate(exception); err != nil {
			return nil, err
		}

		if err := tx.Create(exception); err != nil {
			return nil, err
		}

		result = exception

	case EditFromThisOne:
		if calmath.SameDay(date, parent.Date) {
			// Editing from the very first occurrence is an edit of the
			// whole series; no split is needed.
			applyEdit(parent, params, false)

			if err := tx.Update(parent); err != nil {
				return nil, err
			}

			result = parent

			break
		}

		end := calmath.SubtractInterval(date, parent.RecurringInterval, parent.RecurringPeriod)
		parent.RecurringEndDate = &end

		if err := tx.Update(parent); err != nil {
			return nil, err
		}

		startDate := date
		newSeries := &Item{
			AccountID:          parent.AccountID,
			Date:               date,
			Amount:             params.Amount,
			Description:        params.Description,
			Color:              params.Color,
			Type:               params.Type,
			LayerID:            params.LayerID,
			IsRecurring:        true,
			RecurringInterval:  params.Interval,
			RecurringPeriod:    params.Period,
			RecurringStartDate: &startDate,
		}
		if err := Validate(newSeries); err != nil {
			return nil, err
		}

		if err := tx.Create(newSeries); err != nil {
			return nil, err
		}

		result = newSeries

	case EditAllInSeries:
		applyEdit(parent, params, true)

		if err := Validate(parent); err != nil {
			return nil, err
		}

		if err := tx.Update(parent); err != nil {
			return nil, err
		}

		result = parent

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidEditMode, mode)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit series edit: %w", err)
	}

	return result, nil
}

// DeleteRecurring removes occurrences from the series identified by id:
//
//   - ThisOne suppresses a single occurrence. At the anchor the parent's
//     anchor simply advances; elsewhere a deletion exception is recorded.
//   - FromThisOne at the anchor removes the whole series and its exceptions;
//     anywhere else it ends the series one interval before the date.
//   - AllInSeries removes the series and its exceptions regardless of date.
func (s *Service) DeleteRecurring(ctx context.Context, id, accountID int64, mode EditMode, date time.Time) error {
	tx, err := s.repo.BeginSeriesEdit(ctx)
	if err != nil {
		return fmt.Errorf("begin series edit: %w", err)
	}
	defer tx.Rollback()

	parent, err := tx.Get(id)
	if err != nil {
		return err
	}

	if parent.AccountID != accountID {
		return ErrNotFound
	}

	date = calmath.Day(date)

	switch mode {
	case EditThisOne:
		if calmath.SameDay(date, parent.Date) {
			// The anchor occurrence is removed by moving the anchor itself;
			// no exception row is needed.
			if err := advanceAnchor(tx, parent); err != nil {
				return err
			}

			break
		}

		marker := &Item{
			AccountID:    parent.AccountID,
			Date:         date,
			Description:  DeletedMarker,
			Type:         TypeDebit,
			IsException:  true,
			ParentID:     &parent.ID,
			OriginalDate: &date,
		}
		if err := tx.Create(marker); err != nil {
			return err
		}

	case EditFromThisOne:
		if calmath.SameDay(date, parent.Date) {
			if err := tx.DeleteSeries(parent.ID); err != nil {
				return err
			}

			break
		}

		end := calmath.SubtractInterval(date, parent.RecurringInterval, parent.RecurringPeriod)
		parent.RecurringEndDate = &end

		if err := tx.Update(parent); err != nil {
			return err
		}

	case EditAllInSeries:
		if err := tx.DeleteSeries(parent.ID); err != nil {
			return err
		}

	default:
		return fmt.Errorf("%w: %q", ErrInvalidEditMode, mode)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit series edit: %w", err)
	}

	return nil
}

// advanceAnchor moves a series' anchor one interval forward, consuming the
// current anchor occurrence.
func advanceAnchor(tx SeriesTx, parent *Item) error {
	next := calmath.AddInterval(calmath.Day(parent.Date), parent.RecurringInterval, parent.RecurringPeriod)
	parent.Date = next
	parent.RecurringStartDate = &next

	return tx.Update(parent)
}

func applyEdit(parent *Item, params EditParams, includeSchedule bool) {
	parent.Amount = params.Amount
	parent.Description = params.Description
	parent.Color = params.Color
	parent.Type = params.Type
	parent.LayerID = params.LayerID

	if includeSchedule {
		if params.Interval > 0 {
			parent.RecurringInterval = params.Interval
		}

		if params.Period != "" {
			parent.RecurringPeriod = params.Period
		}
	}
}
