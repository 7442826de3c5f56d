/*
errors.go - Centralized error types for the availability engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers classify with errors.Is/errors.As; the HTTP layer maps
  categories to status codes via the helpers at the bottom.

ERROR CATEGORIES:
  1. Input validation - malformed time/date/currency/precision, bad weeks
  2. Domain limits    - range > 90 days, batch > 500 resources
  3. Lookups          - resource or pattern not found
  4. Uniqueness       - duplicate exception date, resource id taken
  5. Data integrity   - stored rows that no longer resolve; never the
                        caller's fault, so never classified as client

  Every category is deterministic: no error here is ever retried. The
  caller fixes the input, not the timing.

SEE ALSO:
  - pattern.go, resolver.go: Producers of these errors
  - store/sqlite: Surfaces ErrDuplicateException from the UNIQUE index
*/
package schedule

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidTimeFormat is returned when a time is not zero-padded "HH:MM".
	ErrInvalidTimeFormat = errors.New("invalid time format")

	// ErrInvalidTimeRange is returned when an end time is not strictly after
	// its start, or a numeric field that must be non-negative is negative.
	ErrInvalidTimeRange = errors.New("invalid time range")

	// ErrPrecision is returned when a decimal value is not exactly
	// representable at the allowed precision (e.g. 8.005 at 2 places).
	ErrPrecision = errors.New("decimal precision exceeded")

	// ErrInvalidCurrency is returned when a currency code is not exactly
	// 3 uppercase ASCII letters. Format-only; no ISO-4217 membership check.
	ErrInvalidCurrency = errors.New("invalid currency code")

	// ErrInvalidDate is returned on malformed "YYYY-MM-DD" input or an
	// end-before-start range boundary.
	ErrInvalidDate = errors.New("invalid date")

	// ErrUnknownDay is returned for a day-of-week label outside the 7
	// canonical lowercase names.
	ErrUnknownDay = errors.New("unknown day of week")

	// ErrUnknownExceptionType is returned for an exception type outside the
	// closed set of recognized tags.
	ErrUnknownExceptionType = errors.New("unknown exception type")

	// ErrIncompleteWeek is returned when a weekly pattern submission is not
	// exactly the 7 canonical days with no repeats.
	ErrIncompleteWeek = errors.New("incomplete week")

	// ErrNoActiveDays is returned for an all-inactive week. A resource that
	// should never work must be deactivated instead.
	ErrNoActiveDays = errors.New("no active days in week")

	// ErrRangeTooLarge is returned when a timeline query spans more than
	// MaxRangeDays. A cost guard, not a domain limit.
	ErrRangeTooLarge = errors.New("date range too large")

	// ErrTooManyResources is returned when a batch query names more than
	// MaxBatchResources ids.
	ErrTooManyResources = errors.New("too many resources in batch")

	// ErrInvalidFilter is returned for a batch filter with an unrecognized
	// status value or an inverted hours window.
	ErrInvalidFilter = errors.New("invalid timeline filter")

	// ErrResourceNotFound is returned when a resource id does not resolve.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrPatternNotFound is returned when a resource has no weekly pattern.
	ErrPatternNotFound = errors.New("weekly pattern not found")

	// ErrExceptionNotFound is returned when an exception id does not resolve.
	ErrExceptionNotFound = errors.New("exception not found")

	// ErrDuplicateException is returned when a second exception is inserted
	// for the same (resource, date). The insert fails; it never overwrites.
	ErrDuplicateException = errors.New("duplicate exception for resource and date")

	// ErrResourceIDTaken is returned when a resource id already belongs to
	// another organization. The write is refused, never silently dropped.
	ErrResourceIDTaken = errors.New("resource id already taken")

	// ErrCorruptPattern is returned when a stored weekly pattern fails to
	// resolve. A data-integrity problem, not a caller mistake.
	ErrCorruptPattern = errors.New("stored pattern invalid")
)

// =============================================================================
// STRUCTURED ERRORS - Carry field references for the caller
// =============================================================================

// FieldError attaches a field reference (and optionally the offending value)
// to a validation failure. Validation errors are always reported with the
// field they concern, never silently corrected.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s: %v (got %q)", e.Field, e.Err, e.Value)
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// DayError cites the day of week on which a weekly pattern check failed.
type DayError struct {
	Day DayOfWeek
	Err error
}

func (e *DayError) Error() string {
	return fmt.Sprintf("%s: %v", e.Day, e.Err)
}

func (e *DayError) Unwrap() error { return e.Err }

// RangeTooLargeError reports the requested and maximum span in days.
type RangeTooLargeError struct {
	Days int
	Max  int
}

func (e *RangeTooLargeError) Error() string {
	return fmt.Sprintf("date range spans %d days, maximum is %d", e.Days, e.Max)
}

func (e *RangeTooLargeError) Unwrap() error { return ErrRangeTooLarge }

// TooManyResourcesError reports the requested and maximum batch size.
type TooManyResourcesError struct {
	Count int
	Max   int
}

func (e *TooManyResourcesError) Error() string {
	return fmt.Sprintf("batch names %d resources, maximum is %d", e.Count, e.Max)
}

func (e *TooManyResourcesError) Unwrap() error { return ErrTooManyResources }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input
// or an exceeded domain limit. The caller must correct the request.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidTimeFormat) ||
		errors.Is(err, ErrInvalidTimeRange) ||
		errors.Is(err, ErrPrecision) ||
		errors.Is(err, ErrInvalidCurrency) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrUnknownDay) ||
		errors.Is(err, ErrUnknownExceptionType) ||
		errors.Is(err, ErrIncompleteWeek) ||
		errors.Is(err, ErrNoActiveDays) ||
		errors.Is(err, ErrRangeTooLarge) ||
		errors.Is(err, ErrTooManyResources) ||
		errors.Is(err, ErrInvalidFilter)
}

// IsNotFound returns true if the error indicates a missing row, distinct
// from "exists but misconfigured".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrResourceNotFound) ||
		errors.Is(err, ErrPatternNotFound) ||
		errors.Is(err, ErrExceptionNotFound)
}

// IsConflict returns true for uniqueness violations surfaced from the
// persistence collaborator.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateException) ||
		errors.Is(err, ErrResourceIDTaken)
}
