/*
aggregate.go - Multi-resource timeline aggregation

PURPOSE:
  Rolls per-day timeline entries into per-resource and cross-resource
  summaries for a query spanning up to MaxBatchResources resources.
  Resolutions are independent, so they fan out concurrently; results are
  recombined keyed by resource id, so completion order is irrelevant and
  the response preserves the caller's id order.

FILTERING:
  Post-filters (resource type, working/exception status, hour bounds) are
  pure view transformations applied to the per-day entries AFTER
  resolution. They never influence the resolution algorithm itself.

SEE ALSO:
  - resolver.go: The per-resource resolution this fans out over
*/
package schedule

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// MaxBatchResources caps a batch query. Same rationale as MaxRangeDays:
// bound worst-case work instead of enforcing timeouts inside the core.
const MaxBatchResources = 500

// =============================================================================
// FILTERS - View transformations over resolved days
// =============================================================================

// DayStatus selects days by how they resolved.
type DayStatus string

const (
	StatusAny        DayStatus = ""
	StatusWorking    DayStatus = "working"
	StatusNonWorking DayStatus = "non_working"
	StatusException  DayStatus = "exception"
)

// TimelineFilter narrows a batch response. The zero value filters nothing.
type TimelineFilter struct {
	ResourceTypes []string
	Status        DayStatus
	MinHours      *decimal.Decimal
	MaxHours      *decimal.Decimal
}

// Validate rejects a window that can never match. An inverted hours
// window is a caller mistake and is reported, not silently satisfied by
// empty results.
func (f *TimelineFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.MinHours != nil && f.MaxHours != nil && f.MinHours.GreaterThan(*f.MaxHours) {
		return &FieldError{
			Field: "filters.minHours",
			Value: f.MinHours.String() + " > " + f.MaxHours.String(),
			Err:   ErrInvalidFilter,
		}
	}
	return nil
}

func (f *TimelineFilter) matchesResource(res Resource) bool {
	if f == nil || len(f.ResourceTypes) == 0 {
		return true
	}
	for _, t := range f.ResourceTypes {
		if t == res.Type {
			return true
		}
	}
	return false
}

func (f *TimelineFilter) matchesDay(d TimelineDay) bool {
	if f == nil {
		return true
	}
	switch f.Status {
	case StatusWorking:
		if !d.Working {
			return false
		}
	case StatusNonWorking:
		if d.Working {
			return false
		}
	case StatusException:
		if d.Source != SourceException {
			return false
		}
	}
	if f.MinHours != nil && d.Hours.LessThan(*f.MinHours) {
		return false
	}
	if f.MaxHours != nil && d.Hours.GreaterThan(*f.MaxHours) {
		return false
	}
	return true
}

// applyDays returns the day entries passing the filter, preserving order.
func (f *TimelineFilter) applyDays(days []TimelineDay) []TimelineDay {
	if f == nil || (f.Status == StatusAny && f.MinHours == nil && f.MaxHours == nil) {
		return days
	}
	out := make([]TimelineDay, 0, len(days))
	for _, d := range days {
		if f.matchesDay(d) {
			out = append(out, d)
		}
	}
	return out
}

// =============================================================================
// AGGREGATED RESULT
// =============================================================================

// ResourceTimeline is one resource's resolved (and possibly filtered)
// slice of the batch, with totals summed from the per-day rounded costs.
type ResourceTimeline struct {
	ResourceID   ResourceID
	ResourceName string
	ResourceType string
	Currency     string
	Days         []TimelineDay
	TotalHours   decimal.Decimal
	TotalCost    decimal.Decimal
}

// CurrencyTotal sums across resources sharing one currency. Totals are
// always sums of per-day costs; they are never re-rounded.
type CurrencyTotal struct {
	Currency string
	Hours    decimal.Decimal
	Cost     decimal.Decimal
}

// AggregatedTimeline is the composed batch response.
type AggregatedTimeline struct {
	StartDate     Date
	EndDate       Date
	TotalDays     int
	GeneratedAt   time.Time
	Org           OrgID
	Timezone      string
	ResourceCount int
	Resources     []ResourceTimeline
	Totals        []CurrencyTotal
}

// =============================================================================
// BATCH RESOLUTION
// =============================================================================

type batchResult struct {
	timeline ResourceTimeline
	skip     bool
	err      error
}

// ResolveBatch resolves each id once, concurrently, and composes the
// aggregate. The first resolution error fails the whole batch (resolution
// is deterministic, so partial results would just re-fail the same way).
func (rv *Resolver) ResolveBatch(ctx context.Context, ids []ResourceID, r DateRange, filter *TimelineFilter) (*AggregatedTimeline, error) {
	if len(ids) > MaxBatchResources {
		return nil, &TooManyResourcesError{Count: len(ids), Max: MaxBatchResources}
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if r.End.Before(r.Start) {
		return nil, &FieldError{Field: "endDate", Value: r.End.String(), Err: ErrInvalidDate}
	}
	if span := DaysBetween(r.Start, r.End); span > MaxRangeDays {
		return nil, &RangeTooLargeError{Days: span, Max: MaxRangeDays}
	}

	results := make([]batchResult, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id ResourceID) {
			defer wg.Done()
			results[i] = rv.resolveOne(ctx, id, r, filter)
		}(i, id)
	}
	wg.Wait()

	agg := &AggregatedTimeline{
		StartDate:   r.Start,
		EndDate:     r.End,
		TotalDays:   r.TotalDays(),
		GeneratedAt: time.Now().UTC(),
		Org:         rv.Org,
		Timezone:    rv.Timezone,
		Resources:   make([]ResourceTimeline, 0, len(ids)),
	}

	totals := make(map[string]*CurrencyTotal)
	for _, res := range results {
		if res.err != nil {
			return nil, res.err
		}
		if res.skip {
			continue
		}
		agg.Resources = append(agg.Resources, res.timeline)
		t, ok := totals[res.timeline.Currency]
		if !ok {
			t = &CurrencyTotal{Currency: res.timeline.Currency}
			totals[res.timeline.Currency] = t
		}
		t.Hours = t.Hours.Add(res.timeline.TotalHours)
		t.Cost = t.Cost.Add(res.timeline.TotalCost)
	}
	agg.ResourceCount = len(agg.Resources)

	for _, t := range totals {
		agg.Totals = append(agg.Totals, *t)
	}
	sort.Slice(agg.Totals, func(i, j int) bool {
		return agg.Totals[i].Currency < agg.Totals[j].Currency
	})

	return agg, nil
}

func (rv *Resolver) resolveOne(ctx context.Context, id ResourceID, r DateRange, filter *TimelineFilter) batchResult {
	res, err := rv.Resources.GetResource(ctx, id)
	if err != nil {
		return batchResult{err: err}
	}
	if !filter.matchesResource(res) {
		return batchResult{skip: true}
	}

	week, err := rv.Patterns.GetWeeklyPattern(ctx, id)
	if err != nil {
		return batchResult{err: err}
	}
	exceptions, err := rv.Exceptions.ListExceptions(ctx, id, r)
	if err != nil {
		return batchResult{err: err}
	}
	days, err := ResolveTimeline(res, week, exceptions, r)
	if err != nil {
		return batchResult{err: err}
	}
	days = filter.applyDays(days)

	tl := ResourceTimeline{
		ResourceID:   res.ID,
		ResourceName: res.Name,
		ResourceType: res.Type,
		Currency:     res.Currency,
		Days:         days,
	}
	if tl.Currency == "" {
		tl.Currency = DefaultCurrency
	}
	for _, d := range days {
		tl.TotalHours = tl.TotalHours.Add(d.Hours)
		tl.TotalCost = tl.TotalCost.Add(d.Cost)
	}
	return batchResult{timeline: tl}
}
