// Package sqlite implements the scheduling store on SQLite through the pure
// Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/store"
	"github.com/canada7700/finish-line-calendar-app-sub000/infra/sqlite/migrations"
)

// Store persists scheduling state in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

const pragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_txlock=immediate"

// Open opens (creating if needed) the database at path and applies the
// embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	db, err := sql.Open("sqlite", filepath.Clean(path)+"?"+pragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(v int64) time.Time { return time.UnixMilli(v).UTC() }

// optional turns a scanned zero date into nil.
func optional(d model.Date) *model.Date {
	if d.IsZero() {
		return nil
	}
	return &d
}

func parsePhase(s string) (model.PhaseKind, error) {
	k, err := model.ParsePhaseKind(s)
	if err != nil {
		return 0, fmt.Errorf("stored phase %q: %w", s, err)
	}
	return k, nil
}

const projectColumns = `id, name, description, status,
    millwork_hours, box_construction_hours, stain_hours, install_hours,
    install_date, material_order_date, millwork_start_date, box_construction_start_date,
    box_toekick_assembly_date, milling_fillers_date, stain_start_date, stain_lacquer_date,
    updated_at`

func projectArgs(p model.Project) []any {
	return []any{
		p.ID, p.Name, p.Description, string(p.Status),
		p.Hours.Millwork, p.Hours.BoxConstruction, p.Hours.Stain, p.Hours.Install,
		p.InstallDate, p.MaterialOrderDate, p.MillworkStartDate, p.BoxConstructionStartDate,
		p.BoxToekickAssemblyDate, p.MillingFillersDate, p.StainStartDate, p.StainLacquerDate,
		toMillis(p.UpdatedAt),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(r rowScanner) (model.Project, error) {
	var (
		p       model.Project
		status  string
		derived [7]model.Date
		updated int64
	)
	err := r.Scan(
		&p.ID, &p.Name, &p.Description, &status,
		&p.Hours.Millwork, &p.Hours.BoxConstruction, &p.Hours.Stain, &p.Hours.Install,
		&p.InstallDate, &derived[0], &derived[1], &derived[2],
		&derived[3], &derived[4], &derived[5], &derived[6],
		&updated,
	)
	if err != nil {
		return model.Project{}, err
	}
	p.Status = model.ProjectStatus(status)
	p.MaterialOrderDate = optional(derived[0])
	p.MillworkStartDate = optional(derived[1])
	p.BoxConstructionStartDate = optional(derived[2])
	p.BoxToekickAssemblyDate = optional(derived[3])
	p.MillingFillersDate = optional(derived[4])
	p.StainStartDate = optional(derived[5])
	p.StainLacquerDate = optional(derived[6])
	p.UpdatedAt = fromMillis(updated)
	return p, nil
}

// CreateProject inserts p, assigning an id when empty.
func (s *Store) CreateProject(ctx context.Context, p model.Project) (model.Project, error) {
	if p.ID == "" {
		p.ID = newID()
	}
	if p.Status == "" {
		p.Status = model.StatusPlanning
	}
	p.UpdatedAt = s.now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		projectArgs(p)...)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Project{}, fmt.Errorf("project %s: %w", p.ID, store.ErrAlreadyExists)
		}
		return model.Project{}, fmt.Errorf("insert project: %w", err)
	}
	return p.Clone(), nil
}

func (s *Store) GetProject(ctx context.Context, id string) (model.Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Project{}, fmt.Errorf("project %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("get project %s: %w", id, err)
	}
	return p, nil
}

// ListProjects returns projects ordered by install date then id.
func (s *Store) ListProjects(ctx context.Context) ([]model.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY install_date, id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var res []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return res, nil
}

// UpdateProject rewrites every column of p in a single statement.
func (s *Store) UpdateProject(ctx context.Context, p model.Project) (model.Project, error) {
	p.UpdatedAt = s.now().UTC()
	args := projectArgs(p)
	res, err := s.db.ExecContext(ctx, `UPDATE projects SET
    name = ?, description = ?, status = ?,
    millwork_hours = ?, box_construction_hours = ?, stain_hours = ?, install_hours = ?,
    install_date = ?, material_order_date = ?, millwork_start_date = ?, box_construction_start_date = ?,
    box_toekick_assembly_date = ?, milling_fillers_date = ?, stain_start_date = ?, stain_lacquer_date = ?,
    updated_at = ?
  WHERE id = ?`, append(args[1:], p.ID)...)
	if err != nil {
		return model.Project{}, fmt.Errorf("update project %s: %w", p.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Project{}, fmt.Errorf("update project %s: %w", p.ID, err)
	}
	if n == 0 {
		return model.Project{}, fmt.Errorf("project %s: %w", p.ID, store.ErrNotFound)
	}
	return p.Clone(), nil
}

// FetchHolidays returns every holiday ordered by date.
func (s *Store) FetchHolidays(ctx context.Context) ([]model.Holiday, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT date, name FROM holidays ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("fetch holidays: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var res []model.Holiday
	for rows.Next() {
		var h model.Holiday
		if err := rows.Scan(&h.Date, &h.Name); err != nil {
			return nil, fmt.Errorf("scan holiday: %w", err)
		}
		res = append(res, h)
	}
	return res, rows.Err()
}

func (s *Store) AddHoliday(ctx context.Context, h model.Holiday) error {
	if h.Date.IsZero() {
		return fmt.Errorf("holiday date is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO holidays (date, name) VALUES (?, ?)
         ON CONFLICT(date) DO UPDATE SET name = excluded.name`, h.Date, h.Name)
	if err != nil {
		return fmt.Errorf("add holiday %s: %w", h.Date, err)
	}
	return nil
}

func (s *Store) DeleteHoliday(ctx context.Context, d model.Date) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM holidays WHERE date = ?`, d)
	if err != nil {
		return fmt.Errorf("delete holiday %s: %w", d, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("holiday %s: %w", d, store.ErrNotFound)
	}
	return nil
}

var _ store.Store = (*Store)(nil)
