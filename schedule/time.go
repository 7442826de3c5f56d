package schedule

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DATE - Calendar date, no time component
// =============================================================================

// Date is a wall-clock calendar date. The underlying time.Time is pinned to
// UTC midnight; timezone interpretation is the organization's concern and is
// carried only as a label in aggregate metadata.
type Date struct {
	Time time.Time
}

const dateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts strict "YYYY-MM-DD" input.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, &FieldError{Field: "date", Value: s, Err: ErrInvalidDate}
	}
	return Date{Time: t.UTC()}, nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.normalize().Before(other.normalize()) }
func (d Date) Equal(other Date) bool         { return d.normalize().Equal(other.normalize()) }
func (d Date) After(other Date) bool         { return d.normalize().After(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic and properties
func (d Date) AddDays(n int) Date    { return Date{Time: d.normalize().AddDate(0, 0, n)} }
func (d Date) Weekday() DayOfWeek    { return DayOfWeek(d.normalize().Weekday()) }
func (d Date) IsZero() bool          { return d.Time.IsZero() }
func (d Date) String() string        { return d.normalize().Format(dateLayout) }

// DaysBetween returns the whole days from one date to another (to - from).
func DaysBetween(from, to Date) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

// =============================================================================
// DATE RANGE - Inclusive [Start, End]
// =============================================================================

type DateRange struct {
	Start Date
	End   Date
}

// NewDateRange builds an inclusive range, rejecting end-before-start.
func NewDateRange(start, end Date) (DateRange, error) {
	if end.Before(start) {
		return DateRange{}, &FieldError{
			Field: "endDate",
			Value: end.String(),
			Err:   ErrInvalidDate,
		}
	}
	return DateRange{Start: start, End: end}, nil
}

func (r DateRange) Contains(d Date) bool {
	return d.AfterOrEqual(r.Start) && d.BeforeOrEqual(r.End)
}

// TotalDays counts calendar days inclusive: a one-day range returns 1.
func (r DateRange) TotalDays() int {
	return DaysBetween(r.Start, r.End) + 1
}

// Days returns every date in the range in ascending order.
func (r DateRange) Days() []Date {
	days := make([]Date, 0, r.TotalDays())
	for d := r.Start; d.BeforeOrEqual(r.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

func (r DateRange) String() string {
	return "[" + r.Start.String() + ", " + r.End.String() + "]"
}

// =============================================================================
// TIME OF DAY - Wall-clock "HH:MM"
// =============================================================================

// TimeOfDay is minutes since midnight. It carries no timezone; all pattern
// times are wall-clock local to the resource's organization.
type TimeOfDay int

// ParseTimeOfDay accepts strict zero-padded "HH:MM" with H in 00-23 and
// M in 00-59. Anything else fails with ErrInvalidTimeFormat.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, &FieldError{Field: "time", Value: s, Err: ErrInvalidTimeFormat}
	}
	var h, m int
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, &FieldError{Field: "time", Value: s, Err: ErrInvalidTimeFormat}
		}
	}
	h = int(s[0]-'0')*10 + int(s[1]-'0')
	m = int(s[3]-'0')*10 + int(s[4]-'0')
	if h > 23 || m > 59 {
		return 0, &FieldError{Field: "time", Value: s, Err: ErrInvalidTimeFormat}
	}
	return TimeOfDay(h*60 + m), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// DurationHours returns (end - start) in decimal hours. Spans must stay
// within one day: end at or before start fails with ErrInvalidTimeRange.
func DurationHours(start, end string) (decimal.Decimal, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return decimal.Zero, err
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return decimal.Zero, err
	}
	if e <= s {
		return decimal.Zero, &FieldError{
			Field: "endTime",
			Value: end,
			Err:   ErrInvalidTimeRange,
		}
	}
	minutes := decimal.NewFromInt(int64(e - s))
	return minutes.Div(decimal.NewFromInt(60)), nil
}
