package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
)

type slotKey struct {
	member string
	date   model.Date
	hour   int
}

type phaseDate struct {
	date  model.Date
	phase model.PhaseKind
}

type projectPhase struct {
	project string
	phase   model.PhaseKind
}

// MemoryStore implements Store in memory with the same uniqueness rules as
// the SQL backend. It is safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	projects    map[string]model.Project
	holidays    map[model.Date]model.Holiday
	capacities  map[model.PhaseKind]int
	overrides   map[phaseDate]model.CapacityOverride
	allocations []model.DailyPhaseAllocation
	hours       map[slotKey]model.DailyHourAllocation
	unscheduled map[projectPhase]model.UnscheduledHours
	members     map[string]model.TeamMember
	now         func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		projects:    map[string]model.Project{},
		holidays:    map[model.Date]model.Holiday{},
		capacities:  map[model.PhaseKind]int{},
		overrides:   map[phaseDate]model.CapacityOverride{},
		hours:       map[slotKey]model.DailyHourAllocation{},
		unscheduled: map[projectPhase]model.UnscheduledHours{},
		members:     map[string]model.TeamMember{},
		now:         time.Now,
	}
}

func (s *MemoryStore) Close() error { return nil }

// CreateProject stores p, assigning an id when empty.
func (s *MemoryStore) CreateProject(ctx context.Context, p model.Project) (model.Project, error) {
	if err := ctx.Err(); err != nil {
		return model.Project{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, ok := s.projects[p.ID]; ok {
		return model.Project{}, fmt.Errorf("project %s: %w", p.ID, ErrAlreadyExists)
	}
	if p.Status == "" {
		p.Status = model.StatusPlanning
	}
	p.UpdatedAt = s.now().UTC()
	s.projects[p.ID] = p.Clone()
	return p.Clone(), nil
}

func (s *MemoryStore) GetProject(ctx context.Context, id string) (model.Project, error) {
	if err := ctx.Err(); err != nil {
		return model.Project{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return model.Project{}, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return p.Clone(), nil
}

// ListProjects returns projects ordered by install date then id.
func (s *MemoryStore) ListProjects(ctx context.Context) ([]model.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	res := make([]model.Project, 0, len(s.projects))
	for _, p := range s.projects {
		res = append(res, p.Clone())
	}
	s.mu.RUnlock()
	sort.Slice(res, func(i, j int) bool {
		if c := res[i].InstallDate.Compare(res[j].InstallDate); c != 0 {
			return c < 0
		}
		return res[i].ID < res[j].ID
	})
	return res, nil
}

func (s *MemoryStore) UpdateProject(ctx context.Context, p model.Project) (model.Project, error) {
	if err := ctx.Err(); err != nil {
		return model.Project{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[p.ID]; !ok {
		return model.Project{}, fmt.Errorf("project %s: %w", p.ID, ErrNotFound)
	}
	p.UpdatedAt = s.now().UTC()
	s.projects[p.ID] = p.Clone()
	return p.Clone(), nil
}

func (s *MemoryStore) FetchHolidays(ctx context.Context) ([]model.Holiday, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	res := make([]model.Holiday, 0, len(s.holidays))
	for _, h := range s.holidays {
		res = append(res, h)
	}
	s.mu.RUnlock()
	sort.Slice(res, func(i, j int) bool { return res[i].Date.Before(res[j].Date) })
	return res, nil
}

func (s *MemoryStore) AddHoliday(ctx context.Context, h model.Holiday) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if h.Date.IsZero() {
		return fmt.Errorf("holiday date is required")
	}
	s.mu.Lock()
	s.holidays[h.Date] = h
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) DeleteHoliday(ctx context.Context, d model.Date) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.holidays[d]; !ok {
		return fmt.Errorf("holiday %s: %w", d, ErrNotFound)
	}
	delete(s.holidays, d)
	return nil
}

func (s *MemoryStore) PhaseCapacities(ctx context.Context) ([]model.DailyPhaseCapacity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []model.DailyPhaseCapacity
	for _, k := range model.AllPhases() {
		if h, ok := s.capacities[k]; ok {
			res = append(res, model.DailyPhaseCapacity{Phase: k, MaxHours: h})
		}
	}
	return res, nil
}

func (s *MemoryStore) SetPhaseCapacity(ctx context.Context, c model.DailyPhaseCapacity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.MaxHours < 0 {
		return fmt.Errorf("max hours must not be negative")
	}
	s.mu.Lock()
	s.capacities[c.Phase] = c.MaxHours
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Overrides(ctx context.Context, d model.Date) ([]model.CapacityOverride, error) {
	return s.OverridesBetween(ctx, d, d)
}

func (s *MemoryStore) OverridesBetween(ctx context.Context, from, to model.Date) ([]model.CapacityOverride, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	var res []model.CapacityOverride
	for _, o := range s.overrides {
		if inRange(o.Date, from, to) {
			res = append(res, o)
		}
	}
	s.mu.RUnlock()
	sort.Slice(res, func(i, j int) bool {
		if c := res[i].Date.Compare(res[j].Date); c != 0 {
			return c < 0
		}
		return res[i].Phase < res[j].Phase
	})
	return res, nil
}

func (s *MemoryStore) SetOverride(ctx context.Context, o model.CapacityOverride) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if o.Date.IsZero() {
		return fmt.Errorf("override date is required")
	}
	if o.AdjustedCapacity < 0 {
		return fmt.Errorf("adjusted capacity must not be negative")
	}
	s.mu.Lock()
	s.overrides[phaseDate{o.Date, o.Phase}] = o
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ResetOverride(ctx context.Context, d model.Date, phase model.PhaseKind) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.overrides, phaseDate{d, phase})
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) InsertPhaseAllocations(ctx context.Context, batch []model.DailyPhaseAllocation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allocations = append(s.allocations, withIDs(batch)...)
	return nil
}

func (s *MemoryStore) ReplacePhaseAllocations(ctx context.Context, projectID string, phase model.PhaseKind, batch []model.DailyPhaseAllocation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, a := range batch {
		if a.ProjectID != projectID || a.Phase != phase {
			return fmt.Errorf("allocation for %s/%s in replace batch of %s/%s", a.ProjectID, a.Phase, projectID, phase)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteAllocationsLocked(AllocationFilter{ProjectID: projectID, Phase: &phase})
	s.allocations = append(s.allocations, withIDs(batch)...)
	return nil
}

func withIDs(batch []model.DailyPhaseAllocation) []model.DailyPhaseAllocation {
	out := make([]model.DailyPhaseAllocation, len(batch))
	for i, a := range batch {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		out[i] = a
	}
	return out
}

func (s *MemoryStore) DeletePhaseAllocations(ctx context.Context, f AllocationFilter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteAllocationsLocked(f), nil
}

func (s *MemoryStore) deleteAllocationsLocked(f AllocationFilter) int {
	kept := s.allocations[:0]
	n := 0
	for _, a := range s.allocations {
		if f.Match(a) {
			n++
			continue
		}
		kept = append(kept, a)
	}
	s.allocations = kept
	return n
}

// QueryPhaseAllocations returns matches ordered by date, phase and project.
func (s *MemoryStore) QueryPhaseAllocations(ctx context.Context, f AllocationFilter) ([]model.DailyPhaseAllocation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	var res []model.DailyPhaseAllocation
	for _, a := range s.allocations {
		if f.Match(a) {
			res = append(res, a)
		}
	}
	s.mu.RUnlock()
	sort.SliceStable(res, func(i, j int) bool {
		if c := res[i].Date.Compare(res[j].Date); c != 0 {
			return c < 0
		}
		if res[i].Phase != res[j].Phase {
			return res[i].Phase < res[j].Phase
		}
		return res[i].ProjectID < res[j].ProjectID
	})
	return res, nil
}

func (s *MemoryStore) InsertHourAllocation(ctx context.Context, a model.DailyHourAllocation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := slotKey{a.TeamMemberID, a.Date, a.HourBlock}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hours[key]; ok {
		return fmt.Errorf("%s %s %02d:00: %w", a.TeamMemberID, a.Date, a.HourBlock, ErrSlotTaken)
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	s.hours[key] = a
	return nil
}

// QueryHourAllocations returns matches ordered by date, hour and member.
func (s *MemoryStore) QueryHourAllocations(ctx context.Context, f HourFilter) ([]model.DailyHourAllocation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	var res []model.DailyHourAllocation
	for _, a := range s.hours {
		if f.Match(a) {
			res = append(res, a)
		}
	}
	s.mu.RUnlock()
	sort.Slice(res, func(i, j int) bool {
		if c := res[i].Date.Compare(res[j].Date); c != 0 {
			return c < 0
		}
		if res[i].HourBlock != res[j].HourBlock {
			return res[i].HourBlock < res[j].HourBlock
		}
		return res[i].TeamMemberID < res[j].TeamMemberID
	})
	return res, nil
}

func (s *MemoryStore) DeleteHourAllocations(ctx context.Context, f HourFilter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, a := range s.hours {
		if f.Match(a) {
			delete(s.hours, k)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) UpsertUnscheduled(ctx context.Context, u model.UnscheduledHours) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = s.now().UTC()
	}
	s.mu.Lock()
	s.unscheduled[projectPhase{u.ProjectID, u.Phase}] = u
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ClearUnscheduled(ctx context.Context, projectID string, phase model.PhaseKind) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.unscheduled, projectPhase{projectID, phase})
	s.mu.Unlock()
	return nil
}

// ListUnscheduled returns rows for projectID, or all rows when it is empty.
func (s *MemoryStore) ListUnscheduled(ctx context.Context, projectID string) ([]model.UnscheduledHours, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	var res []model.UnscheduledHours
	for k, u := range s.unscheduled {
		if projectID == "" || k.project == projectID {
			res = append(res, u)
		}
	}
	s.mu.RUnlock()
	sort.Slice(res, func(i, j int) bool {
		if res[i].ProjectID != res[j].ProjectID {
			return res[i].ProjectID < res[j].ProjectID
		}
		return res[i].Phase < res[j].Phase
	})
	return res, nil
}

// ListMembers returns members ordered by priority then id.
func (s *MemoryStore) ListMembers(ctx context.Context) ([]model.TeamMember, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	res := make([]model.TeamMember, 0, len(s.members))
	for _, m := range s.members {
		res = append(res, m)
	}
	s.mu.RUnlock()
	sort.Slice(res, func(i, j int) bool {
		if res[i].Priority != res[j].Priority {
			return res[i].Priority < res[j].Priority
		}
		return res[i].ID < res[j].ID
	})
	return res, nil
}

func (s *MemoryStore) UpsertMember(ctx context.Context, m model.TeamMember) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.ID == "" {
		return fmt.Errorf("member id is required")
	}
	s.mu.Lock()
	s.members[m.ID] = m
	s.mu.Unlock()
	return nil
}

var _ Store = (*MemoryStore)(nil)
