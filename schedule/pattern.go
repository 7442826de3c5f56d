/*
pattern.go - Weekly pattern validation and the canonical default week

PURPOSE:
  Validates a full 7-day availability pattern before it may replace a
  resource's stored week. Validation is all-or-nothing over the whole
  week: the caller always resubmits all 7 days together.

CONTRACT (in check order):
  1. Exactly the 7 canonical days, no repeats, no gaps -> ErrIncompleteWeek
  2. Per day: times parse; active days need end strictly after start,
     and the failure cites the day -> ErrInvalidTimeFormat / ErrInvalidTimeRange
  3. Per-day rate overrides pass precision validation -> ErrPrecision
  4. At least one active day across the week -> ErrNoActiveDays

  On success the week is returned unchanged, keyed into a fixed array
  indexed by DayOfWeek. No normalization or reformatting is performed.

SEE ALSO:
  - types.go: DailyPattern / WeeklyPattern
  - resolver.go: Consumer of validated weeks
*/
package schedule

import "github.com/shopspring/decimal"

// ValidateWeek validates a candidate week of exactly 7 daily patterns,
// supplied in any order. It returns the validated week indexed by
// canonical day order (Sunday=0).
func ValidateWeek(resourceID ResourceID, days []DailyPattern) (WeeklyPattern, error) {
	if len(days) != 7 {
		return WeeklyPattern{}, ErrIncompleteWeek
	}

	var week WeeklyPattern
	week.ResourceID = resourceID

	var seen [7]bool
	for _, dp := range days {
		if dp.Day < Sunday || dp.Day > Saturday || seen[dp.Day] {
			return WeeklyPattern{}, ErrIncompleteWeek
		}
		seen[dp.Day] = true
		week.Days[dp.Day] = dp
	}

	anyActive := false
	for _, dp := range week.Days {
		if err := validateDay(dp); err != nil {
			return WeeklyPattern{}, err
		}
		if dp.Active {
			anyActive = true
		}
	}

	if !anyActive {
		return WeeklyPattern{}, ErrNoActiveDays
	}
	return week, nil
}

// validateDay checks one entry. Inactive days still need parseable times;
// they just never require a positive duration.
func validateDay(dp DailyPattern) error {
	if _, err := ParseTimeOfDay(dp.Start); err != nil {
		return &DayError{Day: dp.Day, Err: err}
	}
	if _, err := ParseTimeOfDay(dp.End); err != nil {
		return &DayError{Day: dp.Day, Err: err}
	}
	if dp.Active {
		if _, err := DurationHours(dp.Start, dp.End); err != nil {
			return &DayError{Day: dp.Day, Err: err}
		}
	}
	if dp.HourlyRate != nil {
		if dp.HourlyRate.IsNegative() {
			return &DayError{Day: dp.Day, Err: &FieldError{Field: "hourlyRate", Value: dp.HourlyRate.String(), Err: ErrInvalidTimeRange}}
		}
		if err := ValidateDecimalPrecision(*dp.HourlyRate, 2); err != nil {
			return &DayError{Day: dp.Day, Err: &FieldError{Field: "hourlyRate", Value: dp.HourlyRate.String(), Err: err}}
		}
	}
	return nil
}

// DefaultWeeklyPattern returns the canonical reset week: Monday-Friday
// active 09:00-17:00, weekend inactive 00:00-00:00, no per-day rate
// override (the resource base rate applies).
func DefaultWeeklyPattern(resourceID ResourceID) WeeklyPattern {
	var week WeeklyPattern
	week.ResourceID = resourceID
	for d := Sunday; d <= Saturday; d++ {
		dp := DailyPattern{Day: d, Active: false, Start: "00:00", End: "00:00"}
		if d >= Monday && d <= Friday {
			dp.Active = true
			dp.Start = "09:00"
			dp.End = "17:00"
		}
		week.Days[d] = dp
	}
	return week
}

// DefaultCurrency is used when neither an exception nor the resource
// specifies one.
const DefaultCurrency = "USD"

// baseRateOr picks the override when present, the base otherwise.
func baseRateOr(override *decimal.Decimal, base decimal.Decimal) decimal.Decimal {
	if override != nil {
		return *override
	}
	return base
}
