/*
scenarios.go - Loadable demo scenarios

PURPOSE:
  Seeds the store with ready-made resources, weekly patterns and
  exceptions so the API can be explored without hand-building data.
  Each scenario is idempotent within an org: loading it again simply
  overwrites the same resource ids and patterns (duplicate exceptions
  are skipped, not errors).

SEE ALSO:
  - handlers.go: Mounts ListScenarios and LoadScenario
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/availability-engine/schedule"
	"github.com/warp/availability-engine/store/sqlite"
)

// =============================================================================
// SCENARIO CATALOG
// =============================================================================

var scenarioCatalog = []ScenarioDTO{
	{
		ID:          "consulting-team",
		Name:        "Consulting Team",
		Description: "Three consultants on standard weeks, one part-timer, a shared holiday and a sick day",
	},
	{
		ID:          "global-agency",
		Name:        "Global Agency",
		Description: "Mixed-currency team with a premium-rate weekend worker and training days",
	},
}

func (h *Handler) ListScenarios(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, scenarioCatalog)
}

func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.orgScope(w, r)
	if !ok {
		return
	}

	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "validation_error")
		return
	}

	var err error
	switch req.ID {
	case "consulting-team":
		err = loadConsultingTeam(r.Context(), repo)
	case "global-agency":
		err = loadGlobalAgency(r.Context(), repo)
	default:
		writeError(w, http.StatusNotFound, "unknown scenario: "+req.ID, "not_found")
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"loaded": req.ID})
}

// =============================================================================
// SEED DATA
// =============================================================================

func loadConsultingTeam(ctx context.Context, repo *sqlite.OrgStore) error {
	now := time.Now().UTC()
	monday := nextWeekday(schedule.NewDate(now.Year(), now.Month(), now.Day()), schedule.Monday)

	team := []struct {
		id   string
		name string
		rate string
	}{
		{"consultant-alice", "Alice Moreau", "95.00"},
		{"consultant-bob", "Bob Tanaka", "85.00"},
		{"consultant-carol", "Carol Osei", "110.00"},
	}
	for _, m := range team {
		if err := seedResource(ctx, repo, m.id, m.name, "person", m.rate, "USD", nil); err != nil {
			return err
		}
	}

	// Part-timer: Monday through Wednesday only.
	halfWeek := func(d schedule.DayOfWeek) schedule.DailyPattern {
		active := d == schedule.Monday || d == schedule.Tuesday || d == schedule.Wednesday
		dp := schedule.DailyPattern{Day: d, Start: "00:00", End: "00:00"}
		if active {
			dp.Active = true
			dp.Start = "09:00"
			dp.End = "14:00"
		}
		return dp
	}
	var partDays []schedule.DailyPattern
	for d := schedule.Sunday; d <= schedule.Saturday; d++ {
		partDays = append(partDays, halfWeek(d))
	}
	if err := seedResource(ctx, repo, "consultant-dana", "Dana Petrov", "person", "70.00", "USD", partDays); err != nil {
		return err
	}

	// Shared holiday next Friday and a sick day for Bob.
	friday := monday.AddDays(4)
	for _, m := range team {
		seedException(ctx, repo, schedule.ResourceID(m.id), friday, "0", schedule.ExceptionHoliday, "Office closed")
	}
	seedException(ctx, repo, "consultant-bob", monday.AddDays(1), "0", schedule.ExceptionSickLeave, "")
	return nil
}

func loadGlobalAgency(ctx context.Context, repo *sqlite.OrgStore) error {
	now := time.Now().UTC()
	monday := nextWeekday(schedule.NewDate(now.Year(), now.Month(), now.Day()), schedule.Monday)

	if err := seedResource(ctx, repo, "agency-emma", "Emma Lindqvist", "person", "90.00", "EUR", nil); err != nil {
		return err
	}
	if err := seedResource(ctx, repo, "agency-raj", "Raj Mehta", "person", "65.00", "GBP", nil); err != nil {
		return err
	}

	// Weekend specialist: Saturday and Sunday at a premium rate.
	premium := decimal.RequireFromString("150.00")
	var weekendDays []schedule.DailyPattern
	for d := schedule.Sunday; d <= schedule.Saturday; d++ {
		dp := schedule.DailyPattern{Day: d, Start: "00:00", End: "00:00"}
		if d == schedule.Saturday || d == schedule.Sunday {
			dp.Active = true
			dp.Start = "10:00"
			dp.End = "18:00"
			dp.HourlyRate = &premium
		}
		weekendDays = append(weekendDays, dp)
	}
	if err := seedResource(ctx, repo, "agency-kim", "Kim Nakamura", "contractor", "120.00", "USD", weekendDays); err != nil {
		return err
	}

	// Emma trains Wednesday at half capacity, Raj is off Thursday.
	trainingRate := decimal.RequireFromString("45.00")
	e := schedule.Exception{
		ID:         schedule.ExceptionID(uuid.NewString()),
		ResourceID: "agency-emma",
		Date:       monday.AddDays(2),
		Hours:      decimal.RequireFromString("4"),
		HourlyRate: &trainingRate,
		Currency:   "EUR",
		Type:       schedule.ExceptionTraining,
		Active:     true,
		Note:       "Certification workshop",
	}
	repo.CreateException(ctx, e)
	seedException(ctx, repo, "agency-raj", monday.AddDays(3), "0", schedule.ExceptionVacation, "")
	return nil
}

// =============================================================================
// SEEDING HELPERS
// =============================================================================

func seedResource(ctx context.Context, repo *sqlite.OrgStore, id, name, resourceType, rate, currency string, days []schedule.DailyPattern) error {
	res := schedule.Resource{
		ID:         schedule.ResourceID(id),
		Name:       name,
		Type:       resourceType,
		HourlyRate: decimal.RequireFromString(rate),
		Currency:   currency,
		Active:     true,
	}
	if err := repo.SaveResource(ctx, res); err != nil {
		return err
	}

	week := schedule.DefaultWeeklyPattern(res.ID)
	if days != nil {
		var err error
		week, err = schedule.ValidateWeek(res.ID, days)
		if err != nil {
			return err
		}
	}
	return repo.SaveWeeklyPattern(ctx, week)
}

// seedException ignores duplicate-date conflicts so reloading a scenario
// does not fail on its own earlier data.
func seedException(ctx context.Context, repo *sqlite.OrgStore, id schedule.ResourceID, date schedule.Date, hours string, excType schedule.ExceptionType, note string) {
	e := schedule.Exception{
		ID:         schedule.ExceptionID(uuid.NewString()),
		ResourceID: id,
		Date:       date,
		Hours:      decimal.RequireFromString(hours),
		Type:       excType,
		Active:     true,
		Note:       note,
	}
	_ = repo.CreateException(ctx, e)
}

// nextWeekday returns the first date strictly after from that falls on day.
func nextWeekday(from schedule.Date, day schedule.DayOfWeek) schedule.Date {
	d := from.AddDays(1)
	for d.Weekday() != day {
		d = d.AddDays(1)
	}
	return d
}
