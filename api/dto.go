/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the
  internal domain model from the external contract. Field names follow
  the wire shape: camelCase, dates as "YYYY-MM-DD", times as "HH:MM",
  day-of-week as the canonical lowercase label on input and 0-6
  (Sunday=0) on resolved timeline entries.

NUMBERS:
  Rates, hours, and costs travel as JSON numbers. Conversion to the
  internal decimal representation goes through decimal.NewFromFloat,
  which preserves the shortest round-trip representation - so a client
  sending 8.005 is still caught by precision validation.

SEE ALSO:
  - handlers.go: Uses these types
  - schedule/types.go: The domain types these mirror
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/availability-engine/schedule"
)

// =============================================================================
// RESOURCES
// =============================================================================

type ResourceDTO struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	HourlyRate float64 `json:"hourlyRate"`
	Currency   string  `json:"currency"`
	IsActive   bool    `json:"isActive"`
}

type CreateResourceRequest struct {
	ID         string  `json:"id,omitempty"`
	Name       string  `json:"name"`
	Type       string  `json:"type,omitempty"`
	HourlyRate float64 `json:"hourlyRate"`
	Currency   string  `json:"currency,omitempty"`
}

// =============================================================================
// WEEKLY PATTERNS
// =============================================================================

type DayPatternDTO struct {
	DayOfWeek  string   `json:"dayOfWeek"` // "monday".."sunday"
	IsActive   bool     `json:"isActive"`
	StartTime  string   `json:"startTime"`
	EndTime    string   `json:"endTime"`
	HourlyRate *float64 `json:"hourlyRate,omitempty"`
}

type WeekDTO struct {
	ResourceID string          `json:"resourceId,omitempty"`
	Days       []DayPatternDTO `json:"days"`
}

// ValidateWeekRequest carries a candidate week; nothing is persisted.
type ValidateWeekRequest struct {
	Days []DayPatternDTO `json:"days"`
}

type ValidateWeekResponse struct {
	Valid bool            `json:"valid"`
	Days  []DayPatternDTO `json:"days"`
}

// =============================================================================
// EXCEPTIONS
// =============================================================================

type ExceptionDTO struct {
	ID            string   `json:"id"`
	ResourceID    string   `json:"resourceId"`
	ExceptionDate string   `json:"exceptionDate"`
	Hours         float64  `json:"hoursAvailable"`
	HourlyRate    *float64 `json:"hourlyRate,omitempty"`
	Currency      string   `json:"currency,omitempty"`
	Type          string   `json:"exceptionType"`
	IsActive      bool     `json:"isActive"`
	Notes         string   `json:"notes,omitempty"`
}

type CreateExceptionRequest struct {
	ExceptionDate string   `json:"exceptionDate"`
	Hours         float64  `json:"hoursAvailable"`
	HourlyRate    *float64 `json:"hourlyRate,omitempty"`
	Currency      string   `json:"currency,omitempty"`
	Type          string   `json:"exceptionType"`
	Notes         string   `json:"notes,omitempty"`
}

// =============================================================================
// TIMELINES
// =============================================================================

// TimelineDayDTO is the per-day wire shape.
type TimelineDayDTO struct {
	Date         string  `json:"date"`
	Hours        float64 `json:"hoursAvailable"`
	HourlyRate   float64 `json:"hourlyRate"`
	Currency     string  `json:"currency"`
	IsWorkingDay bool    `json:"isWorkingDay"`
	Source       string  `json:"source"` // "weekly_pattern" | "exception"
	DayOfWeek    int     `json:"dayOfWeek"`
	Cost         float64 `json:"cost"`
	Notes        string  `json:"notes,omitempty"`
}

type TimelineResponse struct {
	ResourceID string           `json:"resourceId"`
	StartDate  string           `json:"startDate"`
	EndDate    string           `json:"endDate"`
	TotalDays  int              `json:"totalDays"`
	Days       []TimelineDayDTO `json:"days"`
}

type BatchFilterDTO struct {
	ResourceTypes []string `json:"resourceTypes,omitempty"`
	Status        string   `json:"status,omitempty"` // "working" | "non_working" | "exception"
	MinHours      *float64 `json:"minHours,omitempty"`
	MaxHours      *float64 `json:"maxHours,omitempty"`
}

type BatchTimelineRequest struct {
	ResourceIDs []string        `json:"resourceIds"`
	StartDate   string          `json:"startDate"`
	EndDate     string          `json:"endDate"`
	Filters     *BatchFilterDTO `json:"filters,omitempty"`
}

type ResourceTimelineDTO struct {
	ResourceID   string           `json:"resourceId"`
	ResourceName string           `json:"resourceName"`
	ResourceType string           `json:"resourceType"`
	Currency     string           `json:"currency"`
	TotalHours   float64          `json:"totalHours"`
	TotalCost    float64          `json:"totalCost"`
	Days         []TimelineDayDTO `json:"days"`
}

type CurrencyTotalDTO struct {
	Currency string  `json:"currency"`
	Hours    float64 `json:"hours"`
	Cost     float64 `json:"cost"`
}

type BatchTimelineResponse struct {
	StartDate      string                `json:"startDate"`
	EndDate        string                `json:"endDate"`
	TotalDays      int                   `json:"totalDays"`
	GeneratedAt    string                `json:"generatedAt"`
	OrganizationID string                `json:"organizationId"`
	Timezone       string                `json:"timezone"`
	ResourceCount  int                   `json:"resourceCount"`
	Resources      []ResourceTimelineDTO `json:"resources"`
	Totals         []CurrencyTotalDTO    `json:"totals"`
}

// ScenarioDTO describes a loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ID string `json:"id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toResourceDTO(r schedule.Resource) ResourceDTO {
	rate, _ := r.HourlyRate.Float64()
	return ResourceDTO{
		ID:         string(r.ID),
		Name:       r.Name,
		Type:       r.Type,
		HourlyRate: rate,
		Currency:   r.Currency,
		IsActive:   r.Active,
	}
}

func toDayPatternDTO(dp schedule.DailyPattern) DayPatternDTO {
	dto := DayPatternDTO{
		DayOfWeek: dp.Day.String(),
		IsActive:  dp.Active,
		StartTime: dp.Start,
		EndTime:   dp.End,
	}
	if dp.HourlyRate != nil {
		rate, _ := dp.HourlyRate.Float64()
		dto.HourlyRate = &rate
	}
	return dto
}

func toWeekDTO(w schedule.WeeklyPattern) WeekDTO {
	dto := WeekDTO{ResourceID: string(w.ResourceID)}
	// Present Monday first, the order weeks are usually written down in,
	// even though internal indexing is Sunday=0.
	order := []schedule.DayOfWeek{
		schedule.Monday, schedule.Tuesday, schedule.Wednesday, schedule.Thursday,
		schedule.Friday, schedule.Saturday, schedule.Sunday,
	}
	for _, d := range order {
		dto.Days = append(dto.Days, toDayPatternDTO(w.DayFor(d)))
	}
	return dto
}

// parseWeek converts incoming day DTOs to domain patterns, rejecting
// unknown day labels at the boundary. Week-level checks happen in
// schedule.ValidateWeek.
func parseWeek(days []DayPatternDTO) ([]schedule.DailyPattern, error) {
	out := make([]schedule.DailyPattern, 0, len(days))
	for _, d := range days {
		day, err := schedule.ParseDayOfWeek(d.DayOfWeek)
		if err != nil {
			return nil, err
		}
		dp := schedule.DailyPattern{
			Day:    day,
			Active: d.IsActive,
			Start:  d.StartTime,
			End:    d.EndTime,
		}
		if d.HourlyRate != nil {
			rate := decimal.NewFromFloat(*d.HourlyRate)
			dp.HourlyRate = &rate
		}
		out = append(out, dp)
	}
	return out, nil
}

func toExceptionDTO(e schedule.Exception) ExceptionDTO {
	hours, _ := e.Hours.Float64()
	dto := ExceptionDTO{
		ID:            string(e.ID),
		ResourceID:    string(e.ResourceID),
		ExceptionDate: e.Date.String(),
		Hours:         hours,
		Currency:      e.Currency,
		Type:          string(e.Type),
		IsActive:      e.Active,
		Notes:         e.Note,
	}
	if e.HourlyRate != nil {
		rate, _ := e.HourlyRate.Float64()
		dto.HourlyRate = &rate
	}
	return dto
}

func toTimelineDayDTO(d schedule.TimelineDay) TimelineDayDTO {
	hours, _ := d.Hours.Float64()
	rate, _ := d.HourlyRate.Float64()
	cost, _ := d.Cost.Float64()
	return TimelineDayDTO{
		Date:         d.Date.String(),
		Hours:        hours,
		HourlyRate:   rate,
		Currency:     d.Currency,
		IsWorkingDay: d.Working,
		Source:       string(d.Source),
		DayOfWeek:    int(d.Day),
		Cost:         cost,
		Notes:        d.Note,
	}
}

func toTimelineDayDTOs(days []schedule.TimelineDay) []TimelineDayDTO {
	dtos := make([]TimelineDayDTO, len(days))
	for i, d := range days {
		dtos[i] = toTimelineDayDTO(d)
	}
	return dtos
}

func toBatchResponse(agg *schedule.AggregatedTimeline) BatchTimelineResponse {
	resp := BatchTimelineResponse{
		StartDate:      agg.StartDate.String(),
		EndDate:        agg.EndDate.String(),
		TotalDays:      agg.TotalDays,
		GeneratedAt:    agg.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"),
		OrganizationID: string(agg.Org),
		Timezone:       agg.Timezone,
		ResourceCount:  agg.ResourceCount,
		Resources:      make([]ResourceTimelineDTO, 0, len(agg.Resources)),
		Totals:         make([]CurrencyTotalDTO, 0, len(agg.Totals)),
	}
	for _, rt := range agg.Resources {
		hours, _ := rt.TotalHours.Float64()
		cost, _ := rt.TotalCost.Float64()
		resp.Resources = append(resp.Resources, ResourceTimelineDTO{
			ResourceID:   string(rt.ResourceID),
			ResourceName: rt.ResourceName,
			ResourceType: rt.ResourceType,
			Currency:     rt.Currency,
			TotalHours:   hours,
			TotalCost:    cost,
			Days:         toTimelineDayDTOs(rt.Days),
		})
	}
	for _, t := range agg.Totals {
		hours, _ := t.Hours.Float64()
		cost, _ := t.Cost.Float64()
		resp.Totals = append(resp.Totals, CurrencyTotalDTO{Currency: t.Currency, Hours: hours, Cost: cost})
	}
	return resp
}
