package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/store"
)

func newID() string { return uuid.NewString() }

// where accumulates AND-ed conditions with their positional arguments.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, arg any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, arg)
}

func (w *where) dates(from, to model.Date) {
	if !from.IsZero() {
		w.add("date >= ?", from)
	}
	if !to.IsZero() {
		w.add("date <= ?", to)
	}
}

func (w *where) phase(k *model.PhaseKind) {
	if k != nil {
		w.add("phase = ?", k.String())
	}
}

func (w where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func allocationWhere(f store.AllocationFilter) where {
	var w where
	if f.ProjectID != "" {
		w.add("project_id = ?", f.ProjectID)
	}
	w.phase(f.Phase)
	w.dates(f.From, f.To)
	return w
}

func hourWhere(f store.HourFilter) where {
	var w where
	if f.ProjectID != "" {
		w.add("project_id = ?", f.ProjectID)
	}
	if f.TeamMemberID != "" {
		w.add("team_member_id = ?", f.TeamMemberID)
	}
	w.phase(f.Phase)
	w.dates(f.From, f.To)
	return w
}

func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertAllocations(ctx context.Context, tx *sql.Tx, batch []model.DailyPhaseAllocation) error {
	if len(batch) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO phase_allocations (id, project_id, phase, date, allocated_hours) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare allocation insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()
	for _, a := range batch {
		if a.ID == "" {
			a.ID = newID()
		}
		if _, err := stmt.ExecContext(ctx, a.ID, a.ProjectID, a.Phase.String(), a.Date, a.AllocatedHours); err != nil {
			return fmt.Errorf("insert allocation %s %s %s: %w", a.ProjectID, a.Phase, a.Date, err)
		}
	}
	return nil
}

func (s *Store) InsertPhaseAllocations(ctx context.Context, batch []model.DailyPhaseAllocation) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return insertAllocations(ctx, tx, batch)
	})
}

// ReplacePhaseAllocations swaps every allocation of (projectID, phase) for
// batch in a single transaction.
func (s *Store) ReplacePhaseAllocations(ctx context.Context, projectID string, phase model.PhaseKind, batch []model.DailyPhaseAllocation) error {
	for _, a := range batch {
		if a.ProjectID != projectID || a.Phase != phase {
			return fmt.Errorf("allocation for %s/%s in replace batch of %s/%s", a.ProjectID, a.Phase, projectID, phase)
		}
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM phase_allocations WHERE project_id = ? AND phase = ?`, projectID, phase.String()); err != nil {
			return fmt.Errorf("clear %s allocations of %s: %w", phase, projectID, err)
		}
		return insertAllocations(ctx, tx, batch)
	})
}

func (s *Store) DeletePhaseAllocations(ctx context.Context, f store.AllocationFilter) (int, error) {
	w := allocationWhere(f)
	res, err := s.db.ExecContext(ctx, `DELETE FROM phase_allocations`+w.String(), w.args...)
	if err != nil {
		return 0, fmt.Errorf("delete allocations: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// QueryPhaseAllocations returns matches ordered by date, phase and project.
func (s *Store) QueryPhaseAllocations(ctx context.Context, f store.AllocationFilter) ([]model.DailyPhaseAllocation, error) {
	w := allocationWhere(f)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, phase, date, allocated_hours FROM phase_allocations`+w.String()+
			` ORDER BY date, project_id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("query allocations: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var res []model.DailyPhaseAllocation
	for rows.Next() {
		var (
			a     model.DailyPhaseAllocation
			phase string
		)
		if err := rows.Scan(&a.ID, &a.ProjectID, &phase, &a.Date, &a.AllocatedHours); err != nil {
			return nil, fmt.Errorf("scan allocation: %w", err)
		}
		if a.Phase, err = parsePhase(phase); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortAllocations(res)
	return res, nil
}

// sortAllocations orders by production phase within a date; the column holds
// phase names so SQL ordering would be alphabetical.
func sortAllocations(res []model.DailyPhaseAllocation) {
	sort.SliceStable(res, func(i, j int) bool {
		if c := res[i].Date.Compare(res[j].Date); c != 0 {
			return c < 0
		}
		if res[i].Phase != res[j].Phase {
			return res[i].Phase < res[j].Phase
		}
		return res[i].ProjectID < res[j].ProjectID
	})
}

// InsertHourAllocation books one slot. A second booking of the same member,
// date and hour fails with store.ErrSlotTaken.
func (s *Store) InsertHourAllocation(ctx context.Context, a model.DailyHourAllocation) error {
	if a.ID == "" {
		a.ID = newID()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO hour_allocations (id, project_id, team_member_id, phase, date, hour_block)
         VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.ProjectID, a.TeamMemberID, a.Phase.String(), a.Date, a.HourBlock)
	if isUniqueViolation(err) {
		return fmt.Errorf("%s %s %02d:00: %w", a.TeamMemberID, a.Date, a.HourBlock, store.ErrSlotTaken)
	}
	if err != nil {
		return fmt.Errorf("insert hour allocation: %w", err)
	}
	return nil
}

// QueryHourAllocations returns matches ordered by date, hour and member.
func (s *Store) QueryHourAllocations(ctx context.Context, f store.HourFilter) ([]model.DailyHourAllocation, error) {
	w := hourWhere(f)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, team_member_id, phase, date, hour_block FROM hour_allocations`+w.String()+
			` ORDER BY date, hour_block, team_member_id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("query hour allocations: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var res []model.DailyHourAllocation
	for rows.Next() {
		var (
			a     model.DailyHourAllocation
			phase string
		)
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.TeamMemberID, &phase, &a.Date, &a.HourBlock); err != nil {
			return nil, fmt.Errorf("scan hour allocation: %w", err)
		}
		if a.Phase, err = parsePhase(phase); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

func (s *Store) DeleteHourAllocations(ctx context.Context, f store.HourFilter) (int, error) {
	w := hourWhere(f)
	res, err := s.db.ExecContext(ctx, `DELETE FROM hour_allocations`+w.String(), w.args...)
	if err != nil {
		return 0, fmt.Errorf("delete hour allocations: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *Store) UpsertUnscheduled(ctx context.Context, u model.UnscheduledHours) error {
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO unscheduled_hours (project_id, phase, hours, reason, updated_at) VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(project_id, phase) DO UPDATE SET
             hours = excluded.hours,
             reason = excluded.reason,
             updated_at = excluded.updated_at`,
		u.ProjectID, u.Phase.String(), u.Hours, u.Reason, toMillis(u.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert unscheduled %s/%s: %w", u.ProjectID, u.Phase, err)
	}
	return nil
}

func (s *Store) ClearUnscheduled(ctx context.Context, projectID string, phase model.PhaseKind) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM unscheduled_hours WHERE project_id = ? AND phase = ?`, projectID, phase.String()); err != nil {
		return fmt.Errorf("clear unscheduled %s/%s: %w", projectID, phase, err)
	}
	return nil
}

// ListUnscheduled returns rows for projectID, or all rows when it is empty.
func (s *Store) ListUnscheduled(ctx context.Context, projectID string) ([]model.UnscheduledHours, error) {
	var w where
	if projectID != "" {
		w.add("project_id = ?", projectID)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT project_id, phase, hours, reason, updated_at FROM unscheduled_hours`+w.String()+` ORDER BY project_id`,
		w.args...)
	if err != nil {
		return nil, fmt.Errorf("list unscheduled: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var res []model.UnscheduledHours
	for rows.Next() {
		var (
			u       model.UnscheduledHours
			phase   string
			updated int64
		)
		if err := rows.Scan(&u.ProjectID, &phase, &u.Hours, &u.Reason, &updated); err != nil {
			return nil, fmt.Errorf("scan unscheduled: %w", err)
		}
		if u.Phase, err = parsePhase(phase); err != nil {
			return nil, err
		}
		u.UpdatedAt = fromMillis(updated)
		res = append(res, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(res, func(i, j int) bool {
		if res[i].ProjectID != res[j].ProjectID {
			return res[i].ProjectID < res[j].ProjectID
		}
		return res[i].Phase < res[j].Phase
	})
	return res, nil
}
