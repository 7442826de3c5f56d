/*
resolver.go - Day-by-day timeline resolution

PURPOSE:
  The centerpiece of the engine. Merges a resource's recurring weekly
  pattern with its date-specific exceptions into one timeline entry per
  calendar day, with source attribution, hours, rate, currency, and a
  per-day rounded cost.

PRECEDENCE:
  An active exception fully determines its day - hours, rate, currency,
  working flag - regardless of what the weekly pattern says. Days without
  an exception fall through to the pattern entry for their weekday.

FALLBACKS:
  exception.HourlyRate -> resource base rate
  exception.Currency   -> resource currency -> DefaultCurrency
  pattern day rate     -> resource base rate

GUARANTEE:
  The output has exactly end-start+1 entries, strictly ascending by
  date, no gaps, no duplicates. Resolution is pure and deterministic:
  failures are never retried, because retrying cannot change them.

SEE ALSO:
  - aggregate.go: Multi-resource fan-out over this resolver
  - pattern.go: Week validation performed before patterns are stored
*/
package schedule

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxRangeDays caps the span of a single timeline query. A performance and
// cost guard, not a domain limit: exactly 90 days succeeds.
const MaxRangeDays = 90

// ResolveTimeline is the pure core: given everything already loaded, it
// emits one TimelineDay per date in [r.Start, r.End] ascending.
func ResolveTimeline(res Resource, week WeeklyPattern, exceptions []Exception, r DateRange) ([]TimelineDay, error) {
	if r.End.Before(r.Start) {
		return nil, &FieldError{Field: "endDate", Value: r.End.String(), Err: ErrInvalidDate}
	}
	if span := DaysBetween(r.Start, r.End); span > MaxRangeDays {
		return nil, &RangeTooLargeError{Days: span, Max: MaxRangeDays}
	}

	// Defensive re-filter: active only, in range, keyed by date. The store
	// contract already promises range overlap, but not activity.
	overrides := make(map[string]Exception, len(exceptions))
	for _, e := range exceptions {
		if !e.Active || !r.Contains(e.Date) {
			continue
		}
		overrides[e.Date.String()] = e
	}

	baseCurrency := res.Currency
	if baseCurrency == "" {
		baseCurrency = DefaultCurrency
	}

	days := make([]TimelineDay, 0, r.TotalDays())
	for d := r.Start; d.BeforeOrEqual(r.End); d = d.AddDays(1) {
		if e, ok := overrides[d.String()]; ok {
			days = append(days, resolveExceptionDay(d, e, res, baseCurrency))
			continue
		}
		day, err := resolvePatternDay(d, week, res, baseCurrency)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, nil
}

// resolveExceptionDay applies absolute exception precedence.
func resolveExceptionDay(d Date, e Exception, res Resource, baseCurrency string) TimelineDay {
	rate := baseRateOr(e.HourlyRate, res.HourlyRate)
	currency := e.Currency
	if currency == "" {
		currency = baseCurrency
	}
	return TimelineDay{
		Date:       d,
		Hours:      e.Hours,
		HourlyRate: rate,
		Currency:   currency,
		Working:    e.Hours.IsPositive(),
		Source:     SourceException,
		Day:        d.Weekday(),
		Cost:       roundedCost(e.Hours, rate),
		Note:       e.Note,
	}
}

// resolvePatternDay falls through to the weekly pattern entry.
func resolvePatternDay(d Date, week WeeklyPattern, res Resource, baseCurrency string) (TimelineDay, error) {
	dp := week.DayFor(d.Weekday())
	day := TimelineDay{
		Date:       d,
		HourlyRate: baseRateOr(dp.HourlyRate, res.HourlyRate),
		Currency:   baseCurrency,
		Source:     SourceWeeklyPattern,
		Day:        d.Weekday(),
	}
	if !dp.Active {
		// Zero hours, zero cost; the zero decimal values are already correct.
		return day, nil
	}
	hours, err := DurationHours(dp.Start, dp.End)
	if err != nil {
		// A stored pattern only gets here unvalidated; report, don't guess.
		// The underlying validation error is flattened with %v so the
		// integrity sentinel, not a client classification, is what unwraps.
		return TimelineDay{}, fmt.Errorf("%w: %s: %v", ErrCorruptPattern, dp.Day, err)
	}
	day.Hours = hours
	day.Working = true
	day.Cost = roundedCost(hours, day.HourlyRate)
	return day, nil
}

// roundedCost applies currency minor-unit rounding (half-up at 2 places)
// per day. Rounding never happens on an aggregate: summed daily costs are
// the authoritative total even when they differ from rounding the sum.
func roundedCost(hours, rate decimal.Decimal) decimal.Decimal {
	return hours.Mul(rate).Round(2)
}

// =============================================================================
// STORE-BACKED RESOLVER
// =============================================================================

// Resolver wires the pure resolution core to the persistence collaborators.
// It owns no mutable state; the only suspension points are the collaborator
// reads.
type Resolver struct {
	Resources  ResourceStore
	Patterns   PatternStore
	Exceptions ExceptionStore

	// Org and Timezone label aggregate responses; resolution itself never
	// consults them.
	Org      OrgID
	Timezone string
}

func NewResolver(resources ResourceStore, patterns PatternStore, exceptions ExceptionStore, org OrgID, timezone string) *Resolver {
	return &Resolver{
		Resources:  resources,
		Patterns:   patterns,
		Exceptions: exceptions,
		Org:        org,
		Timezone:   timezone,
	}
}

// ResolveTimeline loads the resource, its pattern, and the overlapping
// exceptions, then runs the pure core.
func (rv *Resolver) ResolveTimeline(ctx context.Context, id ResourceID, r DateRange) ([]TimelineDay, error) {
	res, err := rv.Resources.GetResource(ctx, id)
	if err != nil {
		return nil, err
	}
	week, err := rv.Patterns.GetWeeklyPattern(ctx, id)
	if err != nil {
		return nil, err
	}
	exceptions, err := rv.Exceptions.ListExceptions(ctx, id, r)
	if err != nil {
		return nil, err
	}
	return ResolveTimeline(res, week, exceptions, r)
}
