// Package sqlite implements the app.Repository port on a local sqlite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/evanlind/taktplan/internal/app"
	"github.com/evanlind/taktplan/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// Repository stores projects, activities, and dependency edges.
type Repository struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens a throwaway in-memory database.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the underlying database.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate applies the schema. Statements are idempotent so reopening an
// existing database is safe.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			start_date TEXT NOT NULL,
			locked INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS activities (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			duration_days INTEGER NOT NULL DEFAULT 1,
			start_date TEXT,
			end_date TEXT,
			is_date_override INTEGER NOT NULL DEFAULT 0,
			progress_percent INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS dependencies (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			predecessor_activity_id TEXT NOT NULL,
			successor_activity_id TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT 'FS',
			lag_days INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE,
			FOREIGN KEY(predecessor_activity_id) REFERENCES activities(id) ON DELETE CASCADE,
			FOREIGN KEY(successor_activity_id) REFERENCES activities(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_activities_project_created_at ON activities(project_id, created_at ASC);`,
		`CREATE INDEX IF NOT EXISTS idx_dependencies_project ON dependencies(project_id);`,
		`CREATE INDEX IF NOT EXISTS idx_dependencies_successor ON dependencies(successor_activity_id);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	if _, err := r.db.ExecContext(ctx, `ALTER TABLE projects ADD COLUMN locked INTEGER NOT NULL DEFAULT 0`); err != nil && !isDuplicateColumnErr(err) {
		return fmt.Errorf("migrate sqlite add projects.locked: %w", err)
	}
	return nil
}

// CreateProject inserts a project row.
func (r *Repository) CreateProject(ctx context.Context, p domain.Project) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects(id, name, description, start_date, locked, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Description, day(p.StartDate), boolInt(p.Locked), ts(p.CreatedAt), ts(p.UpdatedAt))
	return err
}

// UpdateProject rewrites a project row.
func (r *Repository) UpdateProject(ctx context.Context, p domain.Project) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE projects
		SET name = ?, description = ?, start_date = ?, locked = ?, updated_at = ?
		WHERE id = ?
	`, p.Name, p.Description, day(p.StartDate), boolInt(p.Locked), ts(p.UpdatedAt), p.ID)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// GetProject returns one project.
func (r *Repository) GetProject(ctx context.Context, id string) (domain.Project, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, start_date, locked, created_at, updated_at
		FROM projects
		WHERE id = ?
	`, id)
	return scanProject(row)
}

// ListProjects lists all projects in creation order.
func (r *Repository) ListProjects(ctx context.Context) ([]domain.Project, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, start_date, locked, created_at, updated_at
		FROM projects
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeleteProject removes a project; activities and dependencies cascade.
func (r *Repository) DeleteProject(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// CreateActivity inserts an activity row.
func (r *Repository) CreateActivity(ctx context.Context, a domain.Activity) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activities(id, project_id, name, description, duration_days, start_date, end_date,
			is_date_override, progress_percent, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		a.ID, a.ProjectID, a.Name, a.Description, a.DurationDays,
		nullableDay(a.StartDate), nullableDay(a.EndDate),
		boolInt(a.DateOverride), a.ProgressPercent, string(a.Status),
		ts(a.CreatedAt), ts(a.UpdatedAt))
	return err
}

// UpdateActivity rewrites every mutable activity field.
func (r *Repository) UpdateActivity(ctx context.Context, a domain.Activity) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE activities
		SET name = ?, description = ?, duration_days = ?, start_date = ?, end_date = ?,
			is_date_override = ?, progress_percent = ?, status = ?, updated_at = ?
		WHERE id = ?
	`,
		a.Name, a.Description, a.DurationDays,
		nullableDay(a.StartDate), nullableDay(a.EndDate),
		boolInt(a.DateOverride), a.ProgressPercent, string(a.Status),
		ts(a.UpdatedAt), a.ID)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// GetActivity returns one activity.
func (r *Repository) GetActivity(ctx context.Context, id string) (domain.Activity, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, project_id, name, description, duration_days, start_date, end_date,
			is_date_override, progress_percent, status, created_at, updated_at
		FROM activities
		WHERE id = ?
	`, id)
	return scanActivity(row)
}

// ListActivities lists a project's activities in creation order.
func (r *Repository) ListActivities(ctx context.Context, projectID string) ([]domain.Activity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, name, description, duration_days, start_date, end_date,
			is_date_override, progress_percent, status, created_at, updated_at
		FROM activities
		WHERE project_id = ?
		ORDER BY created_at ASC, id ASC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteActivity removes an activity; dependency edges touching it cascade.
func (r *Repository) DeleteActivity(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM activities WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// UpdateActivitySchedule writes only the date fields. Writes against a
// locked project affect zero rows and surface as app.ErrPermissionDenied,
// distinct from a missing activity (app.ErrNotFound).
func (r *Repository) UpdateActivitySchedule(ctx context.Context, activityID string, start, end domain.Date, durationDays int, override bool, updatedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE activities
		SET start_date = ?, end_date = ?, duration_days = ?, is_date_override = ?, updated_at = ?
		WHERE id = ?
		  AND project_id NOT IN (SELECT id FROM projects WHERE locked = 1)
	`, day(start), day(end), durationDays, boolInt(override), ts(updatedAt), activityID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}
	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM activities WHERE id = ?`, activityID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return app.ErrNotFound
	}
	if err != nil {
		return err
	}
	return app.ErrPermissionDenied
}

// CreateDependency inserts a dependency edge.
func (r *Repository) CreateDependency(ctx context.Context, d domain.Dependency) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dependencies(id, project_id, predecessor_activity_id, successor_activity_id,
			type, lag_days, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.ProjectID, d.PredecessorID, d.SuccessorID, string(d.Type), d.LagDays, ts(d.CreatedAt), ts(d.UpdatedAt))
	return err
}

// UpdateDependency rewrites an edge's type and lag.
func (r *Repository) UpdateDependency(ctx context.Context, d domain.Dependency) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE dependencies
		SET type = ?, lag_days = ?, updated_at = ?
		WHERE id = ?
	`, string(d.Type), d.LagDays, ts(d.UpdatedAt), d.ID)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// ListDependencies lists a project's dependency edges.
func (r *Repository) ListDependencies(ctx context.Context, projectID string) ([]domain.Dependency, error) {
	return r.listDependencies(ctx, `WHERE project_id = ?`, projectID)
}

// ListDependenciesForSuccessor lists the edges constraining one activity.
func (r *Repository) ListDependenciesForSuccessor(ctx context.Context, successorID string) ([]domain.Dependency, error) {
	return r.listDependencies(ctx, `WHERE successor_activity_id = ?`, successorID)
}

// listDependencies runs one filtered dependency query.
func (r *Repository) listDependencies(ctx context.Context, where string, arg any) ([]domain.Dependency, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, predecessor_activity_id, successor_activity_id, type, lag_days, created_at, updated_at
		FROM dependencies
	`+where+` ORDER BY created_at ASC, id ASC`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Dependency{}
	for rows.Next() {
		var (
			d          domain.Dependency
			depType    string
			createdRaw string
			updatedRaw string
		)
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.PredecessorID, &d.SuccessorID, &depType, &d.LagDays, &createdRaw, &updatedRaw); err != nil {
			return nil, err
		}
		d.Type = domain.DependencyType(depType)
		d.CreatedAt = parseTS(createdRaw)
		d.UpdatedAt = parseTS(updatedRaw)
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeleteDependency removes one edge.
func (r *Repository) DeleteDependency(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM dependencies WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanProject decodes one project row.
func scanProject(s scanner) (domain.Project, error) {
	var (
		p          domain.Project
		startRaw   string
		locked     int
		createdRaw string
		updatedRaw string
	)
	err := s.Scan(&p.ID, &p.Name, &p.Description, &startRaw, &locked, &createdRaw, &updatedRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Project{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Project{}, err
	}
	p.StartDate = parseDay(startRaw)
	p.Locked = locked != 0
	p.CreatedAt = parseTS(createdRaw)
	p.UpdatedAt = parseTS(updatedRaw)
	return p, nil
}

// scanActivity decodes one activity row.
func scanActivity(s scanner) (domain.Activity, error) {
	var (
		a          domain.Activity
		startRaw   sql.NullString
		endRaw     sql.NullString
		override   int
		status     string
		createdRaw string
		updatedRaw string
	)
	err := s.Scan(&a.ID, &a.ProjectID, &a.Name, &a.Description, &a.DurationDays,
		&startRaw, &endRaw, &override, &a.ProgressPercent, &status, &createdRaw, &updatedRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Activity{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Activity{}, err
	}
	a.StartDate = parseNullDay(startRaw)
	a.EndDate = parseNullDay(endRaw)
	a.DateOverride = override != 0
	a.Status = domain.Status(status)
	a.CreatedAt = parseTS(createdRaw)
	a.UpdatedAt = parseTS(updatedRaw)
	return a, nil
}

// translateNoRows maps a zero-row update/delete to app.ErrNotFound.
func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return app.ErrNotFound
	}
	return nil
}

// ts encodes a timestamp column.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTS decodes a timestamp column.
func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

// day encodes a date column.
func day(d domain.Date) string {
	return d.String()
}

// nullableDay encodes an optional date column.
func nullableDay(d *domain.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

// parseDay decodes a date column; malformed values yield the zero date.
func parseDay(v string) domain.Date {
	d, err := domain.ParseDate(v)
	if err != nil {
		return domain.Date{}
	}
	return d
}

// parseNullDay decodes an optional date column.
func parseNullDay(v sql.NullString) *domain.Date {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return nil
	}
	d := parseDay(v.String)
	return &d
}

// boolInt encodes a boolean column.
func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isDuplicateColumnErr reports whether an ALTER failed because the column
// already exists.
func isDuplicateColumnErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate column name")
}
