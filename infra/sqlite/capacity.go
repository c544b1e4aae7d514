package sqlite

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
)

// PhaseCapacities returns the default capacities in production order.
func (s *Store) PhaseCapacities(ctx context.Context) ([]model.DailyPhaseCapacity, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT phase, max_hours FROM phase_capacities`)
	if err != nil {
		return nil, fmt.Errorf("query phase capacities: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var res []model.DailyPhaseCapacity
	for rows.Next() {
		var (
			phase string
			c     model.DailyPhaseCapacity
		)
		if err := rows.Scan(&phase, &c.MaxHours); err != nil {
			return nil, fmt.Errorf("scan phase capacity: %w", err)
		}
		if c.Phase, err = parsePhase(phase); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Phase < res[j].Phase })
	return res, nil
}

func (s *Store) SetPhaseCapacity(ctx context.Context, c model.DailyPhaseCapacity) error {
	if c.MaxHours < 0 {
		return fmt.Errorf("max hours must not be negative")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO phase_capacities (phase, max_hours) VALUES (?, ?)
         ON CONFLICT(phase) DO UPDATE SET max_hours = excluded.max_hours`,
		c.Phase.String(), c.MaxHours)
	if err != nil {
		return fmt.Errorf("set %s capacity: %w", c.Phase, err)
	}
	return nil
}

func (s *Store) Overrides(ctx context.Context, d model.Date) ([]model.CapacityOverride, error) {
	return s.OverridesBetween(ctx, d, d)
}

// OverridesBetween returns overrides with from <= date <= to. A zero bound
// is open.
func (s *Store) OverridesBetween(ctx context.Context, from, to model.Date) ([]model.CapacityOverride, error) {
	var w where
	w.dates(from, to)
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, phase, adjusted_capacity, reason FROM capacity_overrides`+w.String()+` ORDER BY date`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("query overrides: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var res []model.CapacityOverride
	for rows.Next() {
		var (
			o     model.CapacityOverride
			phase string
		)
		if err := rows.Scan(&o.Date, &phase, &o.AdjustedCapacity, &o.Reason); err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		if o.Phase, err = parsePhase(phase); err != nil {
			return nil, err
		}
		res = append(res, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(res, func(i, j int) bool {
		if c := res[i].Date.Compare(res[j].Date); c != 0 {
			return c < 0
		}
		return res[i].Phase < res[j].Phase
	})
	return res, nil
}

func (s *Store) SetOverride(ctx context.Context, o model.CapacityOverride) error {
	if o.Date.IsZero() {
		return fmt.Errorf("override date is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO capacity_overrides (date, phase, adjusted_capacity, reason) VALUES (?, ?, ?, ?)
         ON CONFLICT(date, phase) DO UPDATE SET
             adjusted_capacity = excluded.adjusted_capacity,
             reason = excluded.reason`,
		o.Date, o.Phase.String(), o.AdjustedCapacity, o.Reason)
	if err != nil {
		return fmt.Errorf("set override %s %s: %w", o.Date, o.Phase, err)
	}
	return nil
}

func (s *Store) ResetOverride(ctx context.Context, d model.Date, phase model.PhaseKind) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM capacity_overrides WHERE date = ? AND phase = ?`, d, phase.String()); err != nil {
		return fmt.Errorf("reset override %s %s: %w", d, phase, err)
	}
	return nil
}

// ListMembers returns members ordered by priority then id.
func (s *Store) ListMembers(ctx context.Context) ([]model.TeamMember, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, phases, priority, active FROM team_members ORDER BY priority, id`)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var res []model.TeamMember
	for rows.Next() {
		var (
			m      model.TeamMember
			phases string
		)
		if err := rows.Scan(&m.ID, &m.Name, &phases, &m.Priority, &m.Active); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		for _, name := range strings.Split(phases, ",") {
			if name == "" {
				continue
			}
			k, err := parsePhase(name)
			if err != nil {
				return nil, err
			}
			m.Phases = append(m.Phases, k)
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func (s *Store) UpsertMember(ctx context.Context, m model.TeamMember) error {
	if m.ID == "" {
		return fmt.Errorf("member id is required")
	}
	names := make([]string, len(m.Phases))
	for i, k := range m.Phases {
		names[i] = k.String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO team_members (id, name, phases, priority, active) VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             name = excluded.name,
             phases = excluded.phases,
             priority = excluded.priority,
             active = excluded.active`,
		m.ID, m.Name, strings.Join(names, ","), m.Priority, m.Active)
	if err != nil {
		return fmt.Errorf("upsert member %s: %w", m.ID, err)
	}
	return nil
}
