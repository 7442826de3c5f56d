/*
Package sqlite provides a SQLite-backed implementation of the schedule
persistence contracts.

PURPOSE:
  Implements ResourceStore, PatternStore, and ExceptionStore using SQLite.
  In production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

ORG SCOPING:
  The raw Store opens the database; repositories handed to the engine are
  created with ForOrg(orgID) and carry that org for every statement. There
  is no way to reach another organization's rows through an OrgStore - the
  scope is fixed at construction, not passed per call.

KEY TABLES:
  resources:               Base rate, currency, and active flag per resource
  weekly_patterns:         7 rows per resource, replaced whole-week at a time
  availability_exceptions: Date-keyed overrides, soft-deleted via active flag

UNIQUENESS:
  idx_exceptions_resource_date enforces one exception per (resource, date).
  A second insert fails with schedule.ErrDuplicateException; it never
  silently overwrites. This is the last line of defense under concurrent
  admin writes.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block, single writer at a time.

USAGE:
  db, err := sqlite.New("./data/availability.db")
  if err != nil {
      log.Fatal(err)
  }
  defer db.Close()
  repo := db.ForOrg("org-1")
  resolver := schedule.NewResolver(repo, repo, repo, "org-1", "UTC")

SEE ALSO:
  - schedule/store.go: Contract definitions
  - schedule/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/availability-engine/schedule"
)

// Store owns the database connection. Use ForOrg to obtain repositories.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at path. Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schemaSQL := `
	CREATE TABLE IF NOT EXISTS resources (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		name TEXT NOT NULL,
		resource_type TEXT NOT NULL DEFAULT 'person',
		hourly_rate TEXT NOT NULL,
		currency TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_resources_org
		ON resources(org_id);

	-- Whole-week storage: always exactly 7 rows per resource, replaced
	-- together inside one transaction. day is schedule.DayOfWeek (Sunday=0).
	CREATE TABLE IF NOT EXISTS weekly_patterns (
		resource_id TEXT NOT NULL,
		day INTEGER NOT NULL CHECK (day BETWEEN 0 AND 6),
		active BOOLEAN NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		hourly_rate TEXT,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (resource_id, day)
	);

	CREATE TABLE IF NOT EXISTS availability_exceptions (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		resource_id TEXT NOT NULL,
		exception_date TEXT NOT NULL,
		hours TEXT NOT NULL,
		hourly_rate TEXT,
		currency TEXT NOT NULL DEFAULT '',
		exception_type TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		note TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- CRITICAL: one exception per resource per date. A duplicate insert
	-- must fail, not overwrite.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_exceptions_resource_date
		ON availability_exceptions(resource_id, exception_date);

	CREATE INDEX IF NOT EXISTS idx_exceptions_resource_range
		ON availability_exceptions(resource_id, exception_date, active);

	CREATE INDEX IF NOT EXISTS idx_exceptions_org
		ON availability_exceptions(org_id);
	`

	_, err := s.db.Exec(schemaSQL)
	return err
}

// ForOrg returns an org-scoped repository implementing the schedule
// persistence contracts. The scope cannot be changed afterwards.
func (s *Store) ForOrg(org schedule.OrgID) *OrgStore {
	return &OrgStore{store: s, org: org}
}

// OrgStore is a capability object: every statement it issues is bound to
// the organization it was constructed for.
type OrgStore struct {
	store *Store
	org   schedule.OrgID
}

// =============================================================================
// RESOURCE STORE (schedule.ResourceStore interface)
// =============================================================================

func (o *OrgStore) GetResource(ctx context.Context, id schedule.ResourceID) (schedule.Resource, error) {
	o.store.mu.RLock()
	defer o.store.mu.RUnlock()

	var (
		r    schedule.Resource
		rate string
	)
	err := o.store.db.QueryRowContext(ctx,
		`SELECT id, org_id, name, resource_type, hourly_rate, currency, active
		 FROM resources WHERE id = ? AND org_id = ?`,
		string(id), string(o.org),
	).Scan(&r.ID, &r.OrgID, &r.Name, &r.Type, &rate, &r.Currency, &r.Active)

	if err == sql.ErrNoRows {
		return schedule.Resource{}, schedule.ErrResourceNotFound
	}
	if err != nil {
		return schedule.Resource{}, fmt.Errorf("failed to get resource: %w", err)
	}

	r.HourlyRate, err = decimal.NewFromString(rate)
	if err != nil {
		return schedule.Resource{}, fmt.Errorf("stored rate for %s: %w", id, err)
	}
	return r, nil
}

func (o *OrgStore) SaveResource(ctx context.Context, r schedule.Resource) error {
	o.store.mu.Lock()
	defer o.store.mu.Unlock()

	// Resource ids are globally unique. An id held by another org must be
	// refused loudly; the upsert's org guard alone would drop the write
	// without an error.
	var owner string
	err := o.store.db.QueryRowContext(ctx,
		"SELECT org_id FROM resources WHERE id = ?", string(r.ID),
	).Scan(&owner)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to check resource owner: %w", err)
	}
	if err == nil && owner != string(o.org) {
		return schedule.ErrResourceIDTaken
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = o.store.db.ExecContext(ctx, `
		INSERT INTO resources (id, org_id, name, resource_type, hourly_rate, currency, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			resource_type = excluded.resource_type,
			hourly_rate = excluded.hourly_rate,
			currency = excluded.currency,
			active = excluded.active,
			updated_at = excluded.updated_at
		WHERE resources.org_id = excluded.org_id`,
		string(r.ID), string(o.org), r.Name, r.Type,
		r.HourlyRate.String(), r.Currency, r.Active, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save resource: %w", err)
	}
	return nil
}

func (o *OrgStore) ListResources(ctx context.Context) ([]schedule.Resource, error) {
	o.store.mu.RLock()
	defer o.store.mu.RUnlock()

	rows, err := o.store.db.QueryContext(ctx,
		`SELECT id, org_id, name, resource_type, hourly_rate, currency, active
		 FROM resources WHERE org_id = ? ORDER BY name, id`,
		string(o.org),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	defer rows.Close()

	var resources []schedule.Resource
	for rows.Next() {
		var (
			r    schedule.Resource
			rate string
		)
		if err := rows.Scan(&r.ID, &r.OrgID, &r.Name, &r.Type, &rate, &r.Currency, &r.Active); err != nil {
			return nil, err
		}
		if r.HourlyRate, err = decimal.NewFromString(rate); err != nil {
			return nil, fmt.Errorf("stored rate for %s: %w", r.ID, err)
		}
		resources = append(resources, r)
	}
	return resources, rows.Err()
}

// =============================================================================
// PATTERN STORE (schedule.PatternStore interface)
// =============================================================================

func (o *OrgStore) GetWeeklyPattern(ctx context.Context, id schedule.ResourceID) (schedule.WeeklyPattern, error) {
	o.store.mu.RLock()
	defer o.store.mu.RUnlock()

	if err := o.resourceInOrg(ctx, id); err != nil {
		return schedule.WeeklyPattern{}, err
	}

	rows, err := o.store.db.QueryContext(ctx,
		`SELECT day, active, start_time, end_time, hourly_rate
		 FROM weekly_patterns WHERE resource_id = ? ORDER BY day`,
		string(id),
	)
	if err != nil {
		return schedule.WeeklyPattern{}, fmt.Errorf("failed to load pattern: %w", err)
	}
	defer rows.Close()

	week := schedule.WeeklyPattern{ResourceID: id}
	count := 0
	for rows.Next() {
		var (
			day  int
			dp   schedule.DailyPattern
			rate sql.NullString
		)
		if err := rows.Scan(&day, &dp.Active, &dp.Start, &dp.End, &rate); err != nil {
			return schedule.WeeklyPattern{}, err
		}
		dp.Day = schedule.DayOfWeek(day)
		if rate.Valid {
			d, err := decimal.NewFromString(rate.String)
			if err != nil {
				return schedule.WeeklyPattern{}, fmt.Errorf("stored rate for %s/%s: %w", id, dp.Day, err)
			}
			dp.HourlyRate = &d
		}
		week.Days[dp.Day] = dp
		count++
	}
	if err := rows.Err(); err != nil {
		return schedule.WeeklyPattern{}, err
	}
	if count != 7 {
		return schedule.WeeklyPattern{}, schedule.ErrPatternNotFound
	}
	return week, nil
}

// SaveWeeklyPattern replaces the stored week atomically: delete plus seven
// inserts inside one transaction, so a reader never observes a partial week.
func (o *OrgStore) SaveWeeklyPattern(ctx context.Context, week schedule.WeeklyPattern) error {
	o.store.mu.Lock()
	defer o.store.mu.Unlock()

	if err := o.resourceInOrg(ctx, week.ResourceID); err != nil {
		return err
	}

	tx, err := o.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM weekly_patterns WHERE resource_id = ?", string(week.ResourceID),
	); err != nil {
		return fmt.Errorf("failed to clear pattern: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, dp := range week.Days {
		var rate *string
		if dp.HourlyRate != nil {
			s := dp.HourlyRate.String()
			rate = &s
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO weekly_patterns (resource_id, day, active, start_time, end_time, hourly_rate, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			string(week.ResourceID), int(dp.Day), dp.Active, dp.Start, dp.End, rate, now,
		); err != nil {
			return fmt.Errorf("failed to save pattern day %s: %w", dp.Day, err)
		}
	}

	return tx.Commit()
}

// =============================================================================
// EXCEPTION STORE (schedule.ExceptionStore interface)
// =============================================================================

func (o *OrgStore) ListExceptions(ctx context.Context, id schedule.ResourceID, r schedule.DateRange) ([]schedule.Exception, error) {
	o.store.mu.RLock()
	defer o.store.mu.RUnlock()

	rows, err := o.store.db.QueryContext(ctx, `
		SELECT id, org_id, resource_id, exception_date, hours, hourly_rate, currency, exception_type, active, note
		FROM availability_exceptions
		WHERE resource_id = ? AND org_id = ?
		  AND exception_date >= ? AND exception_date <= ?
		ORDER BY exception_date ASC`,
		string(id), string(o.org), r.Start.String(), r.End.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list exceptions: %w", err)
	}
	defer rows.Close()

	var exceptions []schedule.Exception
	for rows.Next() {
		e, err := scanException(rows)
		if err != nil {
			return nil, err
		}
		exceptions = append(exceptions, e)
	}
	return exceptions, rows.Err()
}

func (o *OrgStore) CreateException(ctx context.Context, e schedule.Exception) error {
	o.store.mu.Lock()
	defer o.store.mu.Unlock()

	if err := o.resourceInOrg(ctx, e.ResourceID); err != nil {
		return err
	}

	var rate *string
	if e.HourlyRate != nil {
		s := e.HourlyRate.String()
		rate = &s
	}
	now := time.Now().UTC().Format(time.RFC3339)

	_, err := o.store.db.ExecContext(ctx, `
		INSERT INTO availability_exceptions
		(id, org_id, resource_id, exception_date, hours, hourly_rate, currency, exception_type, active, note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(e.ID), string(o.org), string(e.ResourceID), e.Date.String(),
		e.Hours.String(), rate, e.Currency, string(e.Type), e.Active, e.Note, now, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return schedule.ErrDuplicateException
		}
		return fmt.Errorf("failed to create exception: %w", err)
	}
	return nil
}

func (o *OrgStore) DeactivateException(ctx context.Context, id schedule.ExceptionID) error {
	o.store.mu.Lock()
	defer o.store.mu.Unlock()

	res, err := o.store.db.ExecContext(ctx, `
		UPDATE availability_exceptions
		SET active = FALSE, updated_at = ?
		WHERE id = ? AND org_id = ?`,
		time.Now().UTC().Format(time.RFC3339), string(id), string(o.org),
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate exception: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return schedule.ErrExceptionNotFound
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// resourceInOrg confirms the resource row belongs to this repository's org
// before touching dependent tables.
func (o *OrgStore) resourceInOrg(ctx context.Context, id schedule.ResourceID) error {
	var one int
	err := o.store.db.QueryRowContext(ctx,
		"SELECT 1 FROM resources WHERE id = ? AND org_id = ?",
		string(id), string(o.org),
	).Scan(&one)
	if err == sql.ErrNoRows {
		return schedule.ErrResourceNotFound
	}
	return err
}

func scanException(rows *sql.Rows) (schedule.Exception, error) {
	var (
		e       schedule.Exception
		dateStr string
		hours   string
		rate    sql.NullString
		excType string
	)
	if err := rows.Scan(&e.ID, &e.OrgID, &e.ResourceID, &dateStr, &hours, &rate, &e.Currency, &excType, &e.Active, &e.Note); err != nil {
		return e, fmt.Errorf("failed to scan exception: %w", err)
	}

	d, err := schedule.ParseDate(dateStr)
	if err != nil {
		return e, fmt.Errorf("stored date %q: %w", dateStr, err)
	}
	e.Date = d
	if e.Hours, err = decimal.NewFromString(hours); err != nil {
		return e, fmt.Errorf("stored hours %q: %w", hours, err)
	}
	if rate.Valid {
		r, err := decimal.NewFromString(rate.String)
		if err != nil {
			return e, fmt.Errorf("stored rate %q: %w", rate.String, err)
		}
		e.HourlyRate = &r
	}
	e.Type = schedule.ExceptionType(excType)
	return e, nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
