/*
Package schedule provides the core resource availability engine.

PURPOSE:
  This package contains the domain types and algorithms for computing
  per-day resource availability: merging a recurring weekly working
  pattern with date-specific exceptions (vacations, holidays, custom
  overrides) into a day-by-day timeline with hours, rates, and costs.

KEY CONCEPTS IN THIS FILE (types.go):
  - DayOfWeek: Closed enum of the 7 weekdays (Sunday=0, matching time.Weekday)
  - DailyPattern / WeeklyPattern: The recurring weekly availability shape
  - Exception: A date-specific override that fully determines its day
  - Resource: The base rate, currency, and active flag for a resource
  - TimelineDay: One computed day of the resolved timeline

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal for hours, rates, and costs. Never float64.
  2. Closed enums: Day-of-week and exception-type tags are rejected at the
     boundary, not deep inside resolution.
  3. Purity: The resolver is a pure function of its inputs; timelines are
     recomputed per query and never cached here.

SEE ALSO:
  - pattern.go: Weekly pattern validation and the canonical default week
  - resolver.go: The timeline resolution algorithm
  - aggregate.go: Multi-resource aggregation
  - store.go: Persistence collaborator contracts
*/
package schedule

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ResourceID string
type OrgID string
type ExceptionID string

// =============================================================================
// DAY OF WEEK - Closed enum, pinned to Go's time.Weekday convention
// =============================================================================

// DayOfWeek indexes days Sunday=0 through Saturday=6. This matches both
// time.Weekday and the wire contract's dayOfWeek field. Weekly pattern
// submissions may list days in any order (defaults list Monday first);
// indexing is always by this convention.
type DayOfWeek int

const (
	Sunday DayOfWeek = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var dayNames = [7]string{
	"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
}

func (d DayOfWeek) String() string {
	if d < Sunday || d > Saturday {
		return "invalid"
	}
	return dayNames[d]
}

// ParseDayOfWeek converts a canonical lowercase label ("monday".."sunday")
// to a DayOfWeek. Unrecognized labels are rejected here, at the boundary.
func ParseDayOfWeek(s string) (DayOfWeek, error) {
	for i, name := range dayNames {
		if s == name {
			return DayOfWeek(i), nil
		}
	}
	return 0, &FieldError{Field: "dayOfWeek", Value: s, Err: ErrUnknownDay}
}

// =============================================================================
// WEEKLY PATTERN
// =============================================================================

// DailyPattern is one day of a resource's recurring weekly availability.
// Start and End are wall-clock "HH:MM" strings (24h, zero-padded), local to
// the resource's organization timezone. They must parse even when the day
// is inactive; they only contribute hours when Active is true.
type DailyPattern struct {
	Day        DayOfWeek
	Active     bool
	Start      string
	End        string
	HourlyRate *decimal.Decimal // nil = fall back to the resource base rate
}

// WeeklyPattern is a validated full week: exactly one entry per day,
// indexed by DayOfWeek (Sunday=0). Mutation is whole-week replace; there
// is deliberately no partial-day update operation.
type WeeklyPattern struct {
	ResourceID ResourceID
	Days       [7]DailyPattern
}

// DayFor returns the pattern entry for the given day.
func (w WeeklyPattern) DayFor(d DayOfWeek) DailyPattern {
	return w.Days[d]
}

// =============================================================================
// EXCEPTIONS - Date-specific overrides
// =============================================================================

type ExceptionType string

const (
	ExceptionVacation    ExceptionType = "vacation"
	ExceptionSickLeave   ExceptionType = "sick_leave"
	ExceptionHoliday     ExceptionType = "holiday"
	ExceptionTraining    ExceptionType = "training"
	ExceptionUnavailable ExceptionType = "unavailable"
	ExceptionCustom      ExceptionType = "custom"
)

var exceptionTypes = map[ExceptionType]bool{
	ExceptionVacation:    true,
	ExceptionSickLeave:   true,
	ExceptionHoliday:     true,
	ExceptionTraining:    true,
	ExceptionUnavailable: true,
	ExceptionCustom:      true,
}

// ParseExceptionType rejects unrecognized tags at the boundary.
func ParseExceptionType(s string) (ExceptionType, error) {
	t := ExceptionType(s)
	if !exceptionTypes[t] {
		return "", &FieldError{Field: "exceptionType", Value: s, Err: ErrUnknownExceptionType}
	}
	return t, nil
}

// Exception overrides a resource's availability for a single calendar date.
// An active exception takes absolute precedence over the weekly pattern.
// Inactive exceptions are soft-deleted and must not affect resolution.
type Exception struct {
	ID         ExceptionID
	ResourceID ResourceID
	OrgID      OrgID
	Date       Date
	Hours      decimal.Decimal  // 0 = fully unavailable
	HourlyRate *decimal.Decimal // nil = fall back to the resource base rate
	Currency   string           // empty = fall back to the resource currency
	Type       ExceptionType
	Active     bool
	Note       string
}

// Validate checks the field contracts an exception must satisfy before it
// may be persisted: non-negative hours at <=2 decimal places, a well-formed
// currency code (when present), a known exception type, and a real date.
func (e Exception) Validate() error {
	if e.ResourceID == "" {
		return &FieldError{Field: "resourceId", Err: ErrResourceNotFound}
	}
	if e.Date.IsZero() {
		return &FieldError{Field: "exceptionDate", Err: ErrInvalidDate}
	}
	if e.Hours.IsNegative() {
		return &FieldError{Field: "hoursAvailable", Value: e.Hours.String(), Err: ErrInvalidTimeRange}
	}
	if err := ValidateDecimalPrecision(e.Hours, 2); err != nil {
		return &FieldError{Field: "hoursAvailable", Value: e.Hours.String(), Err: err}
	}
	if e.HourlyRate != nil {
		if e.HourlyRate.IsNegative() {
			return &FieldError{Field: "hourlyRate", Value: e.HourlyRate.String(), Err: ErrInvalidTimeRange}
		}
		if err := ValidateDecimalPrecision(*e.HourlyRate, 2); err != nil {
			return &FieldError{Field: "hourlyRate", Value: e.HourlyRate.String(), Err: err}
		}
	}
	if e.Currency != "" {
		if err := ValidateCurrencyCode(e.Currency); err != nil {
			return &FieldError{Field: "currency", Value: e.Currency, Err: err}
		}
	}
	if _, err := ParseExceptionType(string(e.Type)); err != nil {
		return err
	}
	return nil
}

// =============================================================================
// RESOURCE - Base cost attributes read from the collaborator
// =============================================================================

// Resource carries the base attributes the resolver falls back to when a
// pattern day or exception omits its own rate or currency.
type Resource struct {
	ID         ResourceID
	OrgID      OrgID
	Name       string
	Type       string // e.g. "person", "material", "equipment"
	HourlyRate decimal.Decimal
	Currency   string
	Active     bool
}

// =============================================================================
// TIMELINE DAY - Computed, never persisted
// =============================================================================

// Source attributes a resolved day to the input that determined it.
type Source string

const (
	SourceWeeklyPattern Source = "weekly_pattern"
	SourceException     Source = "exception"
)

// TimelineDay is one resolved calendar day for one resource. Cost is
// rounded to currency precision per day, never on an aggregate, so summed
// daily costs are authoritative.
type TimelineDay struct {
	Date       Date
	Hours      decimal.Decimal
	HourlyRate decimal.Decimal
	Currency   string
	Working    bool
	Source     Source
	Day        DayOfWeek
	Cost       decimal.Decimal
	Note       string
}
