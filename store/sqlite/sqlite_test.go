package sqlite_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/availability-engine/schedule"
	"github.com/warp/availability-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedResource(t *testing.T, repo *sqlite.OrgStore, id string) schedule.Resource {
	t.Helper()
	res := schedule.Resource{
		ID:         schedule.ResourceID(id),
		Name:       "Resource " + id,
		Type:       "person",
		HourlyRate: decimal.RequireFromString("25.00"),
		Currency:   "USD",
		Active:     true,
	}
	require.NoError(t, repo.SaveResource(context.Background(), res))
	return res
}

func newException(id, resourceID string, date schedule.Date) schedule.Exception {
	return schedule.Exception{
		ID:         schedule.ExceptionID(id),
		ResourceID: schedule.ResourceID(resourceID),
		Date:       date,
		Hours:      decimal.Zero,
		Type:       schedule.ExceptionVacation,
		Active:     true,
	}
}

func fullRange(t *testing.T) schedule.DateRange {
	t.Helper()
	r, err := schedule.NewDateRange(schedule.NewDate(2025, 1, 1), schedule.NewDate(2025, 12, 31))
	require.NoError(t, err)
	return r
}

// =============================================================================
// RESOURCE TESTS
// =============================================================================

func TestSqlite_ResourceRoundTrip(t *testing.T) {
	store := newTestStore(t)
	repo := store.ForOrg("org-1")
	ctx := context.Background()

	seeded := seedResource(t, repo, "res-1")

	got, err := repo.GetResource(ctx, "res-1")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, got.ID)
	assert.Equal(t, seeded.Name, got.Name)
	assert.True(t, got.HourlyRate.Equal(decimal.RequireFromString("25.00")))
	assert.Equal(t, "USD", got.Currency)
	assert.True(t, got.Active)
}

func TestSqlite_GetResource_Unknown_NotFound(t *testing.T) {
	store := newTestStore(t)
	repo := store.ForOrg("org-1")

	_, err := repo.GetResource(context.Background(), "missing")
	assert.ErrorIs(t, err, schedule.ErrResourceNotFound)
}

func TestSqlite_OrgIsolation(t *testing.T) {
	// GIVEN: A resource saved under org-1
	// WHEN: org-2 looks it up
	// THEN: Not found; repositories never see across org boundaries

	store := newTestStore(t)
	ctx := context.Background()

	seedResource(t, store.ForOrg("org-1"), "res-1")

	_, err := store.ForOrg("org-2").GetResource(ctx, "res-1")
	assert.ErrorIs(t, err, schedule.ErrResourceNotFound)

	list, err := store.ForOrg("org-2").ListResources(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = store.ForOrg("org-1").ListResources(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSqlite_SaveResource_IDHeldByOtherOrg_Conflict(t *testing.T) {
	// GIVEN: org-1 owns resource id "shared"
	// WHEN: org-2 saves a resource under the same id
	// THEN: ErrResourceIDTaken; the write is refused, not silently dropped

	store := newTestStore(t)
	ctx := context.Background()

	seedResource(t, store.ForOrg("org-1"), "shared")

	intruder := schedule.Resource{
		ID:         "shared",
		Name:       "Impostor",
		Type:       "person",
		HourlyRate: decimal.RequireFromString("99.00"),
		Currency:   "USD",
		Active:     true,
	}
	err := store.ForOrg("org-2").SaveResource(ctx, intruder)
	assert.ErrorIs(t, err, schedule.ErrResourceIDTaken)

	// org-1's row is untouched and org-2 still has nothing.
	got, err := store.ForOrg("org-1").GetResource(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, "Resource shared", got.Name)

	_, err = store.ForOrg("org-2").GetResource(ctx, "shared")
	assert.ErrorIs(t, err, schedule.ErrResourceNotFound)
}

func TestSqlite_SaveResource_UpdateWithinOrg_Allowed(t *testing.T) {
	store := newTestStore(t)
	repo := store.ForOrg("org-1")
	ctx := context.Background()

	res := seedResource(t, repo, "res-1")
	res.Name = "Renamed"
	res.HourlyRate = decimal.RequireFromString("40.00")
	require.NoError(t, repo.SaveResource(ctx, res))

	got, err := repo.GetResource(ctx, "res-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.True(t, got.HourlyRate.Equal(decimal.RequireFromString("40.00")))
}

// =============================================================================
// WEEKLY PATTERN TESTS
// =============================================================================

func TestSqlite_PatternRoundTrip(t *testing.T) {
	store := newTestStore(t)
	repo := store.ForOrg("org-1")
	ctx := context.Background()

	seedResource(t, repo, "res-1")
	week := schedule.DefaultWeeklyPattern("res-1")
	require.NoError(t, repo.SaveWeeklyPattern(ctx, week))

	got, err := repo.GetWeeklyPattern(ctx, "res-1")
	require.NoError(t, err)
	for d := schedule.Sunday; d <= schedule.Saturday; d++ {
		assert.Equal(t, week.DayFor(d).Active, got.DayFor(d).Active, d.String())
		assert.Equal(t, week.DayFor(d).Start, got.DayFor(d).Start, d.String())
		assert.Equal(t, week.DayFor(d).End, got.DayFor(d).End, d.String())
	}
}

func TestSqlite_PatternSave_ReplacesWholeWeek(t *testing.T) {
	// GIVEN: A stored default week
	// WHEN: Saving a new week with only Saturday active
	// THEN: The read-back shows only the new week; no stale day rows

	store := newTestStore(t)
	repo := store.ForOrg("org-1")
	ctx := context.Background()

	seedResource(t, repo, "res-1")
	require.NoError(t, repo.SaveWeeklyPattern(ctx, schedule.DefaultWeeklyPattern("res-1")))

	var days []schedule.DailyPattern
	for d := schedule.Sunday; d <= schedule.Saturday; d++ {
		dp := schedule.DailyPattern{Day: d, Start: "00:00", End: "00:00"}
		if d == schedule.Saturday {
			dp.Active = true
			dp.Start = "10:00"
			dp.End = "16:00"
		}
		days = append(days, dp)
	}
	week, err := schedule.ValidateWeek("res-1", days)
	require.NoError(t, err)
	require.NoError(t, repo.SaveWeeklyPattern(ctx, week))

	got, err := repo.GetWeeklyPattern(ctx, "res-1")
	require.NoError(t, err)
	assert.False(t, got.DayFor(schedule.Monday).Active)
	assert.True(t, got.DayFor(schedule.Saturday).Active)
	assert.Equal(t, "10:00", got.DayFor(schedule.Saturday).Start)
}

func TestSqlite_PatternRateOverride_Survives(t *testing.T) {
	store := newTestStore(t)
	repo := store.ForOrg("org-1")
	ctx := context.Background()

	seedResource(t, repo, "res-1")
	week := schedule.DefaultWeeklyPattern("res-1")
	override := decimal.RequireFromString("42.50")
	week.Days[schedule.Friday].HourlyRate = &override
	require.NoError(t, repo.SaveWeeklyPattern(ctx, week))

	got, err := repo.GetWeeklyPattern(ctx, "res-1")
	require.NoError(t, err)
	require.NotNil(t, got.DayFor(schedule.Friday).HourlyRate)
	assert.True(t, got.DayFor(schedule.Friday).HourlyRate.Equal(override))
	assert.Nil(t, got.DayFor(schedule.Monday).HourlyRate)
}

func TestSqlite_GetPattern_Missing_NotFound(t *testing.T) {
	store := newTestStore(t)
	repo := store.ForOrg("org-1")

	seedResource(t, repo, "res-1")
	_, err := repo.GetWeeklyPattern(context.Background(), "res-1")
	assert.ErrorIs(t, err, schedule.ErrPatternNotFound)
}

// =============================================================================
// EXCEPTION TESTS
// =============================================================================

func TestSqlite_DuplicateExceptionDate_Rejected(t *testing.T) {
	// GIVEN: An exception on 2025-03-10 for res-1
	// WHEN: Inserting a second exception on the same date
	// THEN: ErrDuplicateException; the first row is untouched

	store := newTestStore(t)
	repo := store.ForOrg("org-1")
	ctx := context.Background()

	seedResource(t, repo, "res-1")
	date := schedule.NewDate(2025, 3, 10)
	require.NoError(t, repo.CreateException(ctx, newException("exc-1", "res-1", date)))

	err := repo.CreateException(ctx, newException("exc-2", "res-1", date))
	assert.ErrorIs(t, err, schedule.ErrDuplicateException)

	list, err := repo.ListExceptions(ctx, "res-1", fullRange(t))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, schedule.ExceptionID("exc-1"), list[0].ID)
}

func TestSqlite_SameDate_DifferentResources_Allowed(t *testing.T) {
	store := newTestStore(t)
	repo := store.ForOrg("org-1")
	ctx := context.Background()

	seedResource(t, repo, "res-1")
	seedResource(t, repo, "res-2")
	date := schedule.NewDate(2025, 3, 10)

	require.NoError(t, repo.CreateException(ctx, newException("exc-1", "res-1", date)))
	assert.NoError(t, repo.CreateException(ctx, newException("exc-2", "res-2", date)))
}

func TestSqlite_CreateException_UnknownResource_NotFound(t *testing.T) {
	store := newTestStore(t)
	repo := store.ForOrg("org-1")

	err := repo.CreateException(context.Background(), newException("exc-1", "ghost", schedule.NewDate(2025, 3, 10)))
	assert.ErrorIs(t, err, schedule.ErrResourceNotFound)
}

func TestSqlite_ListExceptions_RangeAndOrder(t *testing.T) {
	store := newTestStore(t)
	repo := store.ForOrg("org-1")
	ctx := context.Background()

	seedResource(t, repo, "res-1")
	dates := []schedule.Date{
		schedule.NewDate(2025, 3, 20),
		schedule.NewDate(2025, 3, 5),
		schedule.NewDate(2025, 6, 1),
	}
	for i, d := range dates {
		id := "exc-" + string(rune('a'+i))
		require.NoError(t, repo.CreateException(ctx, newException(id, "res-1", d)))
	}

	march, err := schedule.NewDateRange(schedule.NewDate(2025, 3, 1), schedule.NewDate(2025, 3, 31))
	require.NoError(t, err)

	list, err := repo.ListExceptions(ctx, "res-1", march)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2025-03-05", list[0].Date.String())
	assert.Equal(t, "2025-03-20", list[1].Date.String())
}

func TestSqlite_DeactivateException_SoftDelete(t *testing.T) {
	// GIVEN: An active exception
	// WHEN: Deactivating it
	// THEN: The row survives with active=false instead of disappearing

	store := newTestStore(t)
	repo := store.ForOrg("org-1")
	ctx := context.Background()

	seedResource(t, repo, "res-1")
	require.NoError(t, repo.CreateException(ctx, newException("exc-1", "res-1", schedule.NewDate(2025, 3, 10))))

	require.NoError(t, repo.DeactivateException(ctx, "exc-1"))

	list, err := repo.ListExceptions(ctx, "res-1", fullRange(t))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Active)
}

func TestSqlite_DeactivateException_Unknown_NotFound(t *testing.T) {
	store := newTestStore(t)
	repo := store.ForOrg("org-1")

	err := repo.DeactivateException(context.Background(), "missing")
	assert.ErrorIs(t, err, schedule.ErrExceptionNotFound)
}

func TestSqlite_ExceptionOrgIsolation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	org1 := store.ForOrg("org-1")
	seedResource(t, org1, "res-1")
	require.NoError(t, org1.CreateException(ctx, newException("exc-1", "res-1", schedule.NewDate(2025, 3, 10))))

	list, err := store.ForOrg("org-2").ListExceptions(ctx, "res-1", fullRange(t))
	require.NoError(t, err)
	assert.Empty(t, list)
}
