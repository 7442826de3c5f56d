/*
store.go - Persistence collaborator contracts

PURPOSE:
  Defines the interfaces between the availability engine and whatever
  persists resources, weekly patterns, and exceptions. The engine only
  reads through these for resolution; writes exist so the API layer can
  manage the rows the resolver later consumes.

SCOPING:
  Implementations are org-scoped capability objects: a store is
  constructed for exactly one organization id and can never be steered
  to another org's rows by a runtime filter value. See
  store/sqlite.Store.ForOrg and store.Memory.

CONTRACTS:
  ResourceStore:  Base rate/currency/active flag per resource.
  PatternStore:   Whole-week read and whole-week replace. No partial-day
                  update exists anywhere in the system.
  ExceptionStore: Date-keyed overrides. Create fails on a duplicate
                  (resource, date) - it never overwrites. Deactivate is
                  the only delete (soft). List returns rows overlapping
                  the range; the resolver re-filters by Active
                  defensively, so implementations may return inactive
                  rows.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite
  - schedule/store: In-memory for testing/dev

SEE ALSO:
  - resolver.go: The only read path through these contracts
*/
package schedule

import "context"

// ResourceStore resolves resource ids to their base cost attributes.
type ResourceStore interface {
	// GetResource returns ErrResourceNotFound when the id does not resolve
	// within the store's organization.
	GetResource(ctx context.Context, id ResourceID) (Resource, error)

	SaveResource(ctx context.Context, r Resource) error

	ListResources(ctx context.Context) ([]Resource, error)
}

// PatternStore persists weekly patterns, whole-week at a time.
type PatternStore interface {
	// GetWeeklyPattern returns ErrPatternNotFound when the resource has no
	// stored week.
	GetWeeklyPattern(ctx context.Context, id ResourceID) (WeeklyPattern, error)

	// SaveWeeklyPattern replaces the stored week atomically. Callers are
	// expected to pass a ValidateWeek result.
	SaveWeeklyPattern(ctx context.Context, week WeeklyPattern) error
}

// ExceptionStore persists date-keyed availability overrides.
type ExceptionStore interface {
	// ListExceptions returns exceptions whose date falls inside the range,
	// in ascending date order. May include inactive rows.
	ListExceptions(ctx context.Context, id ResourceID, r DateRange) ([]Exception, error)

	// CreateException inserts a new exception. A second insert for the same
	// (resource, date) fails with ErrDuplicateException.
	CreateException(ctx context.Context, e Exception) error

	// DeactivateException soft-deletes by id. Returns ErrExceptionNotFound
	// for an unknown id.
	DeactivateException(ctx context.Context, id ExceptionID) error
}
