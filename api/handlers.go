/*
handlers.go - HTTP API handlers for the availability engine

PURPOSE:
  Exposes the resource availability engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the schedule
  package. Authentication is an external collaborator: callers arrive
  with an organization id in the X-Org-ID header, and every repository
  touched here is scoped to that org at construction.

ENDPOINTS:
  Resources:
    GET    /api/resources                      List resources
    POST   /api/resources                      Create resource
    GET    /api/resources/{id}                 Get resource

  Weekly patterns:
    GET    /api/resources/{id}/pattern         Get stored week
    PUT    /api/resources/{id}/pattern         Whole-week replace (validated)
    POST   /api/resources/{id}/pattern/reset   Reset to canonical defaults
    GET    /api/patterns/default               Canonical default week
    POST   /api/patterns/validate              Validate without persisting

  Exceptions:
    GET    /api/resources/{id}/exceptions      List (optional ?start=&end=)
    POST   /api/resources/{id}/exceptions      Create (409 on duplicate date)
    DELETE /api/exceptions/{id}                Soft delete

  Timelines:
    GET    /api/resources/{id}/timeline        ?start=&end= (<= 90 days)
    POST   /api/timeline/batch                 Up to 500 resources

ERROR HANDLING:
  Errors map to JSON with a status from the schedule error taxonomy:
  - 400: Validation errors and domain limits (caller narrows the request)
  - 404: Resource/pattern/exception not found
  - 409: Duplicate exception for a resource+date
  - 500: Internal errors
  Nothing is retried server-side; every failure is deterministic.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - schedule: The engine these handlers delegate to
*/
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/availability-engine/schedule"
	"github.com/warp/availability-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	DB       *sqlite.Store
	Timezone string
}

// NewHandler creates a new handler with the given database.
func NewHandler(db *sqlite.Store, timezone string) *Handler {
	if timezone == "" {
		timezone = "UTC"
	}
	return &Handler{DB: db, Timezone: timezone}
}

const orgHeader = "X-Org-ID"

// orgScope extracts the caller's organization and builds the org-bound
// repository and resolver for this request. Missing org -> 400.
func (h *Handler) orgScope(w http.ResponseWriter, r *http.Request) (*sqlite.OrgStore, *schedule.Resolver, bool) {
	org := schedule.OrgID(r.Header.Get(orgHeader))
	if org == "" {
		writeError(w, http.StatusBadRequest, "Missing "+orgHeader+" header", "validation_error")
		return nil, nil, false
	}
	repo := h.DB.ForOrg(org)
	return repo, schedule.NewResolver(repo, repo, repo, org, h.Timezone), true
}

// =============================================================================
// RESOURCE HANDLERS
// =============================================================================

func (h *Handler) ListResources(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.orgScope(w, r)
	if !ok {
		return
	}

	resources, err := repo.ListResources(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]ResourceDTO, 0, len(resources))
	for _, res := range resources {
		dtos = append(dtos, toResourceDTO(res))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateResource(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.orgScope(w, r)
	if !ok {
		return
	}

	var req CreateResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "validation_error")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", "validation_error")
		return
	}

	rate := decimal.NewFromFloat(req.HourlyRate)
	if rate.IsNegative() {
		writeError(w, http.StatusBadRequest, "hourlyRate must be non-negative", "validation_error")
		return
	}
	if err := schedule.ValidateDecimalPrecision(rate, 2); err != nil {
		writeDomainError(w, &schedule.FieldError{Field: "hourlyRate", Err: err})
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = schedule.DefaultCurrency
	}
	if err := schedule.ValidateCurrencyCode(currency); err != nil {
		writeDomainError(w, &schedule.FieldError{Field: "currency", Value: currency, Err: err})
		return
	}

	resourceType := req.Type
	if resourceType == "" {
		resourceType = "person"
	}
	id := schedule.ResourceID(req.ID)
	if id == "" {
		id = schedule.ResourceID(uuid.NewString())
	}

	res := schedule.Resource{
		ID:         id,
		Name:       req.Name,
		Type:       resourceType,
		HourlyRate: rate,
		Currency:   currency,
		Active:     true,
	}
	if err := repo.SaveResource(r.Context(), res); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toResourceDTO(res))
}

func (h *Handler) GetResource(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.orgScope(w, r)
	if !ok {
		return
	}

	res, err := repo.GetResource(r.Context(), schedule.ResourceID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResourceDTO(res))
}

// =============================================================================
// PATTERN HANDLERS
// =============================================================================

func (h *Handler) GetPattern(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.orgScope(w, r)
	if !ok {
		return
	}

	week, err := repo.GetWeeklyPattern(r.Context(), schedule.ResourceID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWeekDTO(week))
}

// PutPattern is the whole-week replace: all 7 days arrive together, are
// validated together, and are stored together.
func (h *Handler) PutPattern(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.orgScope(w, r)
	if !ok {
		return
	}
	resourceID := schedule.ResourceID(chi.URLParam(r, "id"))

	var req WeekDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "validation_error")
		return
	}

	days, err := parseWeek(req.Days)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	week, err := schedule.ValidateWeek(resourceID, days)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := repo.SaveWeeklyPattern(r.Context(), week); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWeekDTO(week))
}

func (h *Handler) ResetPattern(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.orgScope(w, r)
	if !ok {
		return
	}
	resourceID := schedule.ResourceID(chi.URLParam(r, "id"))

	week := schedule.DefaultWeeklyPattern(resourceID)
	if err := repo.SaveWeeklyPattern(r.Context(), week); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWeekDTO(week))
}

func (h *Handler) GetDefaultPattern(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toWeekDTO(schedule.DefaultWeeklyPattern("")))
}

// ValidatePattern checks a candidate week without persisting anything.
func (h *Handler) ValidatePattern(w http.ResponseWriter, r *http.Request) {
	var req ValidateWeekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "validation_error")
		return
	}

	days, err := parseWeek(req.Days)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	week, err := schedule.ValidateWeek("", days)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ValidateWeekResponse{Valid: true, Days: toWeekDTO(week).Days})
}

// =============================================================================
// EXCEPTION HANDLERS
// =============================================================================

func (h *Handler) ListExceptions(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.orgScope(w, r)
	if !ok {
		return
	}
	resourceID := schedule.ResourceID(chi.URLParam(r, "id"))

	rng, err := rangeFromQuery(r, defaultExceptionWindow())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	exceptions, err := repo.ListExceptions(r.Context(), resourceID, rng)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]ExceptionDTO, 0, len(exceptions))
	for _, e := range exceptions {
		dtos = append(dtos, toExceptionDTO(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateException(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.orgScope(w, r)
	if !ok {
		return
	}
	resourceID := schedule.ResourceID(chi.URLParam(r, "id"))

	var req CreateExceptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "validation_error")
		return
	}

	date, err := schedule.ParseDate(req.ExceptionDate)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	e := schedule.Exception{
		ID:         schedule.ExceptionID(uuid.NewString()),
		ResourceID: resourceID,
		Date:       date,
		Hours:      decimal.NewFromFloat(req.Hours),
		Currency:   req.Currency,
		Type:       schedule.ExceptionType(req.Type),
		Active:     true,
		Note:       req.Notes,
	}
	if req.HourlyRate != nil {
		rate := decimal.NewFromFloat(*req.HourlyRate)
		e.HourlyRate = &rate
	}

	if err := e.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := repo.CreateException(r.Context(), e); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExceptionDTO(e))
}

func (h *Handler) DeleteException(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.orgScope(w, r)
	if !ok {
		return
	}

	if err := repo.DeactivateException(r.Context(), schedule.ExceptionID(chi.URLParam(r, "id"))); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// TIMELINE HANDLERS
// =============================================================================

func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	_, resolver, ok := h.orgScope(w, r)
	if !ok {
		return
	}
	resourceID := schedule.ResourceID(chi.URLParam(r, "id"))

	rng, err := rangeFromQuery(r, schedule.DateRange{})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	days, err := resolver.ResolveTimeline(r.Context(), resourceID, rng)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TimelineResponse{
		ResourceID: string(resourceID),
		StartDate:  rng.Start.String(),
		EndDate:    rng.End.String(),
		TotalDays:  rng.TotalDays(),
		Days:       toTimelineDayDTOs(days),
	})
}

func (h *Handler) BatchTimeline(w http.ResponseWriter, r *http.Request) {
	_, resolver, ok := h.orgScope(w, r)
	if !ok {
		return
	}

	var req BatchTimelineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "validation_error")
		return
	}
	if len(req.ResourceIDs) == 0 {
		writeError(w, http.StatusBadRequest, "resourceIds is required", "validation_error")
		return
	}

	rng, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	ids := make([]schedule.ResourceID, len(req.ResourceIDs))
	for i, id := range req.ResourceIDs {
		ids[i] = schedule.ResourceID(id)
	}

	filter, err := parseFilter(req.Filters)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	agg, err := resolver.ResolveBatch(r.Context(), ids, rng, filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBatchResponse(agg))
}

// =============================================================================
// REQUEST PARSING HELPERS
// =============================================================================

func parseRange(start, end string) (schedule.DateRange, error) {
	s, err := schedule.ParseDate(start)
	if err != nil {
		return schedule.DateRange{}, &schedule.FieldError{Field: "startDate", Value: start, Err: schedule.ErrInvalidDate}
	}
	e, err := schedule.ParseDate(end)
	if err != nil {
		return schedule.DateRange{}, &schedule.FieldError{Field: "endDate", Value: end, Err: schedule.ErrInvalidDate}
	}
	return schedule.NewDateRange(s, e)
}

// rangeFromQuery reads ?start=&end=. When both are absent and a non-zero
// fallback is given the fallback applies; otherwise both are required.
func rangeFromQuery(r *http.Request, fallback schedule.DateRange) (schedule.DateRange, error) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if start == "" && end == "" && !fallback.Start.IsZero() {
		return fallback, nil
	}
	return parseRange(start, end)
}

// defaultExceptionWindow is a year back and a year ahead, for listing
// exceptions without explicit bounds. Resolution queries never default.
func defaultExceptionWindow() schedule.DateRange {
	now := time.Now().UTC()
	today := schedule.NewDate(now.Year(), now.Month(), now.Day())
	return schedule.DateRange{Start: today.AddDays(-365), End: today.AddDays(365)}
}

func parseFilter(dto *BatchFilterDTO) (*schedule.TimelineFilter, error) {
	if dto == nil {
		return nil, nil
	}
	f := &schedule.TimelineFilter{ResourceTypes: dto.ResourceTypes}
	switch schedule.DayStatus(dto.Status) {
	case schedule.StatusAny, schedule.StatusWorking, schedule.StatusNonWorking, schedule.StatusException:
		f.Status = schedule.DayStatus(dto.Status)
	default:
		return nil, &schedule.FieldError{Field: "filters.status", Value: dto.Status, Err: schedule.ErrInvalidFilter}
	}
	if dto.MinHours != nil {
		min := decimal.NewFromFloat(*dto.MinHours)
		f.MinHours = &min
	}
	if dto.MaxHours != nil {
		max := decimal.NewFromFloat(*dto.MaxHours)
		f.MaxHours = &max
	}
	return f, nil
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// writeDomainError maps the schedule error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case schedule.IsConflict(err):
		writeError(w, http.StatusConflict, err.Error(), "conflict")
	case schedule.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error(), "not_found")
	case schedule.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error(), "validation_error")
	default:
		writeError(w, http.StatusInternalServerError, err.Error(), "internal")
	}
}
