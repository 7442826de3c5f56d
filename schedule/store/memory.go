// Package store provides in-memory implementations of the schedule
// persistence contracts, for testing and development.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/availability-engine/schedule"
)

// =============================================================================
// MEMORY STORE - Org-scoped, for testing/dev
// =============================================================================

// Memory implements ResourceStore, PatternStore, and ExceptionStore for a
// single organization. Like its production counterpart it is constructed
// for exactly one org id; rows carry that id implicitly.
type Memory struct {
	mu         sync.RWMutex
	org        schedule.OrgID
	resources  map[schedule.ResourceID]schedule.Resource
	patterns   map[schedule.ResourceID]schedule.WeeklyPattern
	exceptions map[schedule.ExceptionID]schedule.Exception

	// dateIndex enforces (resource, date) uniqueness on insert.
	dateIndex map[exceptionKey]schedule.ExceptionID
}

type exceptionKey struct {
	Resource schedule.ResourceID
	Date     string
}

func NewMemory(org schedule.OrgID) *Memory {
	return &Memory{
		org:        org,
		resources:  make(map[schedule.ResourceID]schedule.Resource),
		patterns:   make(map[schedule.ResourceID]schedule.WeeklyPattern),
		exceptions: make(map[schedule.ExceptionID]schedule.Exception),
		dateIndex:  make(map[exceptionKey]schedule.ExceptionID),
	}
}

// =============================================================================
// RESOURCE STORE
// =============================================================================

func (m *Memory) GetResource(_ context.Context, id schedule.ResourceID) (schedule.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.resources[id]
	if !ok {
		return schedule.Resource{}, schedule.ErrResourceNotFound
	}
	return r, nil
}

func (m *Memory) SaveResource(_ context.Context, r schedule.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r.OrgID = m.org
	m.resources[r.ID] = r
	return nil
}

func (m *Memory) ListResources(_ context.Context) ([]schedule.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]schedule.Resource, 0, len(m.resources))
	for _, r := range m.resources {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// PATTERN STORE
// =============================================================================

func (m *Memory) GetWeeklyPattern(_ context.Context, id schedule.ResourceID) (schedule.WeeklyPattern, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, ok := m.patterns[id]
	if !ok {
		return schedule.WeeklyPattern{}, schedule.ErrPatternNotFound
	}
	return w, nil
}

// SaveWeeklyPattern is whole-week replace: the previous week vanishes.
func (m *Memory) SaveWeeklyPattern(_ context.Context, week schedule.WeeklyPattern) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.patterns[week.ResourceID] = week
	return nil
}

// =============================================================================
// EXCEPTION STORE
// =============================================================================

func (m *Memory) ListExceptions(_ context.Context, id schedule.ResourceID, r schedule.DateRange) ([]schedule.Exception, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []schedule.Exception
	for _, e := range m.exceptions {
		if e.ResourceID == id && r.Contains(e.Date) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Memory) CreateException(_ context.Context, e schedule.Exception) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := exceptionKey{Resource: e.ResourceID, Date: e.Date.String()}
	if _, exists := m.dateIndex[k]; exists {
		return schedule.ErrDuplicateException
	}
	e.OrgID = m.org
	m.exceptions[e.ID] = e
	m.dateIndex[k] = e.ID
	return nil
}

func (m *Memory) DeactivateException(_ context.Context, id schedule.ExceptionID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.exceptions[id]
	if !ok {
		return schedule.ErrExceptionNotFound
	}
	e.Active = false
	m.exceptions[id] = e
	return nil
}
