/*
handlers_test.go - HTTP-level tests for the availability API

Exercises the full router with an in-memory sqlite store: pattern
validation and storage, exception lifecycle, timeline resolution, batch
aggregation, and the error-to-status mapping.
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/warp/availability-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRouter(NewHandler(db, "UTC"))
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Org-ID", "org-test")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response: %v (body: %s)", err, rec.Body.String())
	}
	return out
}

// standardWeekDTO returns a valid Mon-Fri 09:00-17:00 submission.
func standardWeekDTO() []DayPatternDTO {
	names := []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}
	var days []DayPatternDTO
	for i, name := range names {
		dp := DayPatternDTO{DayOfWeek: name, StartTime: "00:00", EndTime: "00:00"}
		if i >= 1 && i <= 5 {
			dp.IsActive = true
			dp.StartTime = "09:00"
			dp.EndTime = "17:00"
		}
		days = append(days, dp)
	}
	return days
}

// createResource seeds a resource and its default week over the API.
func createResource(t *testing.T, router http.Handler, id string, rate float64) {
	t.Helper()
	rec := doRequest(t, router, "POST", "/api/resources", CreateResourceRequest{
		ID:         id,
		Name:       "Resource " + id,
		HourlyRate: rate,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed to create resource: %d %s", rec.Code, rec.Body.String())
	}
	rec = doRequest(t, router, "POST", "/api/resources/"+id+"/pattern/reset", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed to reset pattern: %d %s", rec.Code, rec.Body.String())
	}
}

// =============================================================================
// ORG HEADER TESTS
// =============================================================================

func TestAPI_MissingOrgHeader_BadRequest(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest("GET", "/api/resources", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without org header, got %d", rec.Code)
	}
}

// =============================================================================
// RESOURCE ENDPOINT TESTS
// =============================================================================

func TestAPI_CreateResource_IDTakenByOtherOrg_Conflict(t *testing.T) {
	// GIVEN: org-test owns resource id "shared"
	// WHEN: Another org creates a resource under the same id
	// THEN: 409, not a 201 hiding a dropped write

	router := newTestRouter(t)
	createResource(t, router, "shared", 20)

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(CreateResourceRequest{ID: "shared", Name: "Impostor", HourlyRate: 10}); err != nil {
		t.Fatalf("failed to encode body: %v", err)
	}
	req := httptest.NewRequest("POST", "/api/resources", &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Org-ID", "org-other")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for id held by another org, got %d", rec.Code)
	}
}

// =============================================================================
// PATTERN ENDPOINT TESTS
// =============================================================================

func TestAPI_ValidatePattern_Valid(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, "POST", "/api/patterns/validate", ValidateWeekRequest{Days: standardWeekDTO()})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[ValidateWeekResponse](t, rec)
	if !resp.Valid || len(resp.Days) != 7 {
		t.Errorf("expected valid 7-day response, got %+v", resp)
	}
}

func TestAPI_ValidatePattern_IncompleteWeek_BadRequest(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, "POST", "/api/patterns/validate", ValidateWeekRequest{Days: standardWeekDTO()[:6]})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for 6-day week, got %d", rec.Code)
	}
}

func TestAPI_ValidatePattern_UnknownDay_BadRequest(t *testing.T) {
	router := newTestRouter(t)

	days := standardWeekDTO()
	days[0].DayOfWeek = "funday"
	rec := doRequest(t, router, "POST", "/api/patterns/validate", ValidateWeekRequest{Days: days})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown day, got %d", rec.Code)
	}
}

func TestAPI_PutPattern_PersistsAndReads(t *testing.T) {
	router := newTestRouter(t)
	createResource(t, router, "res-1", 20)

	days := standardWeekDTO()
	days[5].EndTime = "13:00" // half-day Friday
	rec := doRequest(t, router, "PUT", "/api/resources/res-1/pattern", WeekDTO{Days: days})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, "GET", "/api/resources/res-1/pattern", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	week := decode[WeekDTO](t, rec)
	for _, d := range week.Days {
		if d.DayOfWeek == "friday" && d.EndTime != "13:00" {
			t.Errorf("expected friday end 13:00, got %s", d.EndTime)
		}
	}
}

func TestAPI_GetDefaultPattern(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, "GET", "/api/patterns/default", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	week := decode[WeekDTO](t, rec)
	if len(week.Days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(week.Days))
	}
	// Presented Monday-first.
	if week.Days[0].DayOfWeek != "monday" || !week.Days[0].IsActive {
		t.Errorf("expected monday first and active, got %+v", week.Days[0])
	}
	if week.Days[6].DayOfWeek != "sunday" || week.Days[6].IsActive {
		t.Errorf("expected sunday last and inactive, got %+v", week.Days[6])
	}
}

// =============================================================================
// EXCEPTION ENDPOINT TESTS
// =============================================================================

func TestAPI_ExceptionLifecycle(t *testing.T) {
	router := newTestRouter(t)
	createResource(t, router, "res-1", 20)

	// Create.
	rec := doRequest(t, router, "POST", "/api/resources/res-1/exceptions", CreateExceptionRequest{
		ExceptionDate: "2025-06-04",
		Hours:         0,
		Type:          "holiday",
		Notes:         "Midsummer",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decode[ExceptionDTO](t, rec)
	if created.ID == "" || created.ExceptionDate != "2025-06-04" {
		t.Fatalf("unexpected created exception: %+v", created)
	}

	// Duplicate date conflicts.
	rec = doRequest(t, router, "POST", "/api/resources/res-1/exceptions", CreateExceptionRequest{
		ExceptionDate: "2025-06-04",
		Hours:         4,
		Type:          "custom",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate date, got %d", rec.Code)
	}

	// List.
	rec = doRequest(t, router, "GET", "/api/resources/res-1/exceptions?start=2025-06-01&end=2025-06-30", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	list := decode[[]ExceptionDTO](t, rec)
	if len(list) != 1 {
		t.Fatalf("expected 1 exception, got %d", len(list))
	}

	// Soft delete.
	rec = doRequest(t, router, "DELETE", "/api/exceptions/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

func TestAPI_CreateException_UnknownType_BadRequest(t *testing.T) {
	router := newTestRouter(t)
	createResource(t, router, "res-1", 20)

	rec := doRequest(t, router, "POST", "/api/resources/res-1/exceptions", CreateExceptionRequest{
		ExceptionDate: "2025-06-04",
		Hours:         0,
		Type:          "sabbatical",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown type, got %d", rec.Code)
	}
}

func TestAPI_CreateException_ExcessPrecision_BadRequest(t *testing.T) {
	router := newTestRouter(t)
	createResource(t, router, "res-1", 20)

	rec := doRequest(t, router, "POST", "/api/resources/res-1/exceptions", CreateExceptionRequest{
		ExceptionDate: "2025-06-04",
		Hours:         4.005,
		Type:          "custom",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for 3-decimal hours, got %d", rec.Code)
	}
}

func TestAPI_DeleteException_Unknown_NotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, "DELETE", "/api/exceptions/ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

// =============================================================================
// TIMELINE ENDPOINT TESTS
// =============================================================================

func TestAPI_Timeline_PatternWithHolidayOverride(t *testing.T) {
	// GIVEN: Default week at $20/h and a Wednesday holiday
	// WHEN: Requesting Monday through Friday
	// THEN: 4 working days at 160.00 and a zero-cost exception Wednesday

	router := newTestRouter(t)
	createResource(t, router, "res-1", 20)

	rec := doRequest(t, router, "POST", "/api/resources/res-1/exceptions", CreateExceptionRequest{
		ExceptionDate: "2025-06-04",
		Hours:         0,
		Type:          "holiday",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed to create exception: %d", rec.Code)
	}

	rec = doRequest(t, router, "GET", "/api/resources/res-1/timeline?start=2025-06-02&end=2025-06-06", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[TimelineResponse](t, rec)
	if resp.TotalDays != 5 || len(resp.Days) != 5 {
		t.Fatalf("expected 5 days, got %d/%d", resp.TotalDays, len(resp.Days))
	}

	wed := resp.Days[2]
	if wed.Date != "2025-06-04" || wed.IsWorkingDay || wed.Source != "exception" {
		t.Errorf("expected non-working exception wednesday, got %+v", wed)
	}
	if wed.Cost != 0 {
		t.Errorf("expected zero cost wednesday, got %v", wed.Cost)
	}

	mon := resp.Days[0]
	if !mon.IsWorkingDay || mon.Hours != 8 || mon.Cost != 160 {
		t.Errorf("expected monday 8h at 160.00, got %+v", mon)
	}
}

func TestAPI_Timeline_MissingDates_BadRequest(t *testing.T) {
	router := newTestRouter(t)
	createResource(t, router, "res-1", 20)

	rec := doRequest(t, router, "GET", "/api/resources/res-1/timeline", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without dates, got %d", rec.Code)
	}
}

func TestAPI_Timeline_RangeOverCap_BadRequest(t *testing.T) {
	router := newTestRouter(t)
	createResource(t, router, "res-1", 20)

	rec := doRequest(t, router, "GET", "/api/resources/res-1/timeline?start=2025-01-01&end=2025-06-30", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for range over cap, got %d", rec.Code)
	}
}

func TestAPI_Timeline_UnknownResource_NotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, "GET", "/api/resources/ghost/timeline?start=2025-06-02&end=2025-06-06", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

// =============================================================================
// BATCH ENDPOINT TESTS
// =============================================================================

func TestAPI_BatchTimeline_Aggregates(t *testing.T) {
	router := newTestRouter(t)
	createResource(t, router, "res-1", 20)
	createResource(t, router, "res-2", 30)

	rec := doRequest(t, router, "POST", "/api/timeline/batch", BatchTimelineRequest{
		ResourceIDs: []string{"res-1", "res-2"},
		StartDate:   "2025-06-02",
		EndDate:     "2025-06-06",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[BatchTimelineResponse](t, rec)

	if resp.ResourceCount != 2 || len(resp.Resources) != 2 {
		t.Fatalf("expected 2 resources, got %d", resp.ResourceCount)
	}
	if resp.OrganizationID != "org-test" || resp.Timezone != "UTC" {
		t.Errorf("expected org and timezone labels, got %+v", resp)
	}
	if len(resp.Totals) != 1 || resp.Totals[0].Currency != "USD" {
		t.Fatalf("expected single USD total, got %+v", resp.Totals)
	}
	// 5 days x 8h x (20+30)/h.
	if resp.Totals[0].Hours != 80 || resp.Totals[0].Cost != 2000 {
		t.Errorf("expected 80h/2000.00, got %+v", resp.Totals[0])
	}
}

func TestAPI_BatchTimeline_TooManyResources_BadRequest(t *testing.T) {
	router := newTestRouter(t)

	ids := make([]string, 501)
	for i := range ids {
		ids[i] = fmt.Sprintf("res-%d", i)
	}
	rec := doRequest(t, router, "POST", "/api/timeline/batch", BatchTimelineRequest{
		ResourceIDs: ids,
		StartDate:   "2025-06-02",
		EndDate:     "2025-06-06",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for 501 resources, got %d", rec.Code)
	}
}

func TestAPI_BatchTimeline_InvertedHoursWindow_BadRequest(t *testing.T) {
	router := newTestRouter(t)
	createResource(t, router, "res-1", 20)

	min, max := 8.0, 4.0
	rec := doRequest(t, router, "POST", "/api/timeline/batch", BatchTimelineRequest{
		ResourceIDs: []string{"res-1"},
		StartDate:   "2025-06-02",
		EndDate:     "2025-06-06",
		Filters:     &BatchFilterDTO{MinHours: &min, MaxHours: &max},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for minHours above maxHours, got %d", rec.Code)
	}
}

func TestAPI_BatchTimeline_BadFilterStatus_BadRequest(t *testing.T) {
	router := newTestRouter(t)
	createResource(t, router, "res-1", 20)

	rec := doRequest(t, router, "POST", "/api/timeline/batch", BatchTimelineRequest{
		ResourceIDs: []string{"res-1"},
		StartDate:   "2025-06-02",
		EndDate:     "2025-06-06",
		Filters:     &BatchFilterDTO{Status: "busy"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown status, got %d", rec.Code)
	}
}

// =============================================================================
// SCENARIO ENDPOINT TESTS
// =============================================================================

func TestAPI_Scenarios_ListAndLoad(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, "GET", "/api/scenarios", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	catalog := decode[[]ScenarioDTO](t, rec)
	if len(catalog) == 0 {
		t.Fatal("expected a non-empty scenario catalog")
	}

	rec = doRequest(t, router, "POST", "/api/scenarios/load", LoadScenarioRequest{ID: catalog[0].ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, "GET", "/api/resources", nil)
	resources := decode[[]ResourceDTO](t, rec)
	if len(resources) == 0 {
		t.Error("expected scenario to seed resources")
	}
}

func TestAPI_Scenarios_LoadUnknown_NotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, "POST", "/api/scenarios/load", LoadScenarioRequest{ID: "nope"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
