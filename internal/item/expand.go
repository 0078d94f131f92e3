package item

import (
	"fmt"
	"sort"
	"time"

	"github.com/MrJamesThe3rd/budgetcal/internal/calmath"
)

// Instance is a concrete transaction materialized for a date window: a stored
// one-time item, a recurring parent at its anchor date, a generated occurrence
// of a series, or an edit exception. Generated occurrences are not stored
// rows, so each instance carries an OccurrenceKey that is unique within the
// window, alongside the stable ParentID of its series.
type Instance struct {
	Item

	// OccurrenceKey identifies the instance as "<series or item id>:<date>".
	OccurrenceKey string
	// Generated is true for occurrences synthesized from a series template,
	// false for rows that exist in the store.
	Generated bool
}

func occurrenceKey(id int64, date time.Time) string {
	return fmt.Sprintf("%d:%s", id, date.Format(time.DateOnly))
}

// exceptionIndex answers "is occurrence X of series P overridden?". Both edit
// and deletion exceptions suppress generation for their original date.
type exceptionIndex map[int64]map[string]bool

func indexExceptions(exceptions []*Item) exceptionIndex {
	idx := make(exceptionIndex)

	for _, ex := range exceptions {
		if ex.ParentID == nil || ex.OriginalDate == nil {
			continue
		}

		dates := idx[*ex.ParentID]
		if dates == nil {
			dates = make(map[string]bool)
			idx[*ex.ParentID] = dates
		}

		dates[calmath.Day(*ex.OriginalDate).Format(time.DateOnly)] = true
	}

	return idx
}

func (idx exceptionIndex) has(parentID int64, date time.Time) bool {
	return idx[parentID][date.Format(time.DateOnly)]
}

// ExpandRecurring materializes every occurrence the account's recurring
// series produce inside [start, end]: the parent rows at their own anchor
// dates, the stepped occurrences, and the edit exceptions that replace
// suppressed ones. Deletion exceptions suppress without replacement. The
// layer filter is applied to the input set before any generation happens.
func ExpandRecurring(items []*Item, accountID int64, start, end time.Time, vis Visibility) []Instance {
	start, end = calmath.Day(start), calmath.Day(end)

	var templates, exceptions []*Item

	for _, it := range items {
		if it.AccountID != accountID || !vis.Visible(it) {
			continue
		}

		switch {
		case it.IsRecurring:
			templates = append(templates, it)
		case it.IsException:
			exceptions = append(exceptions, it)
		}
	}

	idx := indexExceptions(exceptions)

	var out []Instance

	for _, tpl := range templates {
		out = append(out, expandSeries(tpl, start, end, idx)...)
	}

	for _, ex := range exceptions {
		if ex.IsDeletionMarker() {
			continue
		}

		day := calmath.Day(ex.Date)
		if day.Before(start) || day.After(end) {
			continue
		}

		inst := Instance{Item: *ex.Clone(), OccurrenceKey: occurrenceKey(ex.ID, day)}
		inst.Date = day
		out = append(out, inst)
	}

	sortInstances(out)

	return out
}

func expandSeries(tpl *Item, start, end time.Time, idx exceptionIndex) []Instance {
	anchor := tpl.Anchor()
	if anchor.After(end) {
		return nil
	}

	var seriesEnd *time.Time

	if tpl.RecurringEndDate != nil {
		e := calmath.Day(*tpl.RecurringEndDate)
		if e.Before(start) {
			return nil
		}

		seriesEnd = &e
	}

	var out []Instance

	anchorDate := calmath.Day(tpl.Date)

	// The parent row is itself one occurrence of the series, unless the
	// series expired before its own anchor (reachable when a this-one edit
	// advanced the anchor past the end date) or an exception claimed it.
	if !anchorDate.Before(start) && !anchorDate.After(end) {
		expired := seriesEnd != nil && seriesEnd.Before(anchorDate)
		if !expired && !idx.has(tpl.ID, anchorDate) {
			inst := Instance{Item: *tpl.Clone(), OccurrenceKey: occurrenceKey(tpl.ID, anchorDate)}
			inst.Date = anchorDate
			out = append(out, inst)
		}
	}

	step := func(d time.Time) (time.Time, bool) {
		next := calmath.AddInterval(d, tpl.RecurringInterval, tpl.RecurringPeriod)
		// A non-advancing step (bad period or zero interval) would loop
		// forever; treat the series as exhausted.
		return next, next.After(d)
	}

	cur := anchor

	for cur.Before(start) {
		next, ok := step(cur)
		if !ok {
			return out
		}

		cur = next
	}

	for !cur.After(end) {
		if seriesEnd != nil && cur.After(*seriesEnd) {
			break
		}

		if !cur.Equal(anchorDate) && !idx.has(tpl.ID, cur) {
			gen := Instance{Item: *tpl.Clone(), OccurrenceKey: occurrenceKey(tpl.ID, cur), Generated: true}
			gen.Date = cur
			parentID := tpl.ID
			gen.ParentID = &parentID
			out = append(out, gen)
		}

		next, ok := step(cur)
		if !ok {
			break
		}

		cur = next
	}

	return out
}

// Materialize returns every concrete transaction visible in [start, end]:
// stored one-time items plus the full recurring expansion. This is the set
// the month view renders and the balance calculator sums.
func Materialize(items []*Item, accountID int64, start, end time.Time, vis Visibility) []Instance {
	start, end = calmath.Day(start), calmath.Day(end)

	var out []Instance

	for _, it := range items {
		if it.AccountID != accountID || it.IsRecurring || it.IsException || !vis.Visible(it) {
			continue
		}

		day := calmath.Day(it.Date)
		if day.Before(start) || day.After(end) {
			continue
		}

		inst := Instance{Item: *it.Clone(), OccurrenceKey: occurrenceKey(it.ID, day)}
		inst.Date = day
		out = append(out, inst)
	}

	out = append(out, ExpandRecurring(items, accountID, start, end, vis)...)

	sortInstances(out)

	return out
}

// sortInstances orders by date, then by id so same-day entries come out in a
// deterministic order regardless of input ordering.
func sortInstances(out []Instance) {
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}

		return out[i].ID < out[j].ID
	})
}
