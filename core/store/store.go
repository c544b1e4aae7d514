// Package store defines the persistence contracts consumed by the
// scheduling core. Implementations live in infra (SQLite) and in this
// package (MemoryStore).
package store

import (
	"context"
	"errors"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrSlotTaken indicates the worker is already booked for that date and
	// hour block.
	ErrSlotTaken = errors.New("hour block already taken")
)

// AllocationFilter selects phase allocations. Zero fields match anything;
// From and To are inclusive.
type AllocationFilter struct {
	ProjectID string
	Phase     *model.PhaseKind
	From      model.Date
	To        model.Date
}

// HourFilter selects hour-block allocations.
type HourFilter struct {
	ProjectID    string
	TeamMemberID string
	Phase        *model.PhaseKind
	From         model.Date
	To           model.Date
}

// Phase returns a pointer for use in filters.
func Phase(k model.PhaseKind) *model.PhaseKind { return &k }

func inRange(d, from, to model.Date) bool {
	if !from.IsZero() && d.Before(from) {
		return false
	}
	if !to.IsZero() && d.After(to) {
		return false
	}
	return true
}

// Match reports whether a satisfies f.
func (f AllocationFilter) Match(a model.DailyPhaseAllocation) bool {
	if f.ProjectID != "" && a.ProjectID != f.ProjectID {
		return false
	}
	if f.Phase != nil && a.Phase != *f.Phase {
		return false
	}
	return inRange(a.Date, f.From, f.To)
}

// Match reports whether a satisfies f.
func (f HourFilter) Match(a model.DailyHourAllocation) bool {
	if f.ProjectID != "" && a.ProjectID != f.ProjectID {
		return false
	}
	if f.TeamMemberID != "" && a.TeamMemberID != f.TeamMemberID {
		return false
	}
	if f.Phase != nil && a.Phase != *f.Phase {
		return false
	}
	return inRange(a.Date, f.From, f.To)
}

// ProjectStore persists projects. UpdateProject is all-or-nothing: on error
// nothing was written.
type ProjectStore interface {
	CreateProject(ctx context.Context, p model.Project) (model.Project, error)
	GetProject(ctx context.Context, id string) (model.Project, error)
	ListProjects(ctx context.Context) ([]model.Project, error)
	UpdateProject(ctx context.Context, p model.Project) (model.Project, error)
}

// HolidayStore is the holiday source plus admin mutations.
type HolidayStore interface {
	FetchHolidays(ctx context.Context) ([]model.Holiday, error)
	AddHoliday(ctx context.Context, h model.Holiday) error
	DeleteHoliday(ctx context.Context, d model.Date) error
}

// CapacityStore serves default phase capacities and per-date overrides.
type CapacityStore interface {
	PhaseCapacities(ctx context.Context) ([]model.DailyPhaseCapacity, error)
	SetPhaseCapacity(ctx context.Context, c model.DailyPhaseCapacity) error
	Overrides(ctx context.Context, d model.Date) ([]model.CapacityOverride, error)
	OverridesBetween(ctx context.Context, from, to model.Date) ([]model.CapacityOverride, error)
	SetOverride(ctx context.Context, o model.CapacityOverride) error
	ResetOverride(ctx context.Context, d model.Date, phase model.PhaseKind) error
}

// AllocationStore persists coarse phase allocations. Batches are atomic.
type AllocationStore interface {
	InsertPhaseAllocations(ctx context.Context, batch []model.DailyPhaseAllocation) error
	// ReplacePhaseAllocations deletes the project's allocations for phase
	// and inserts batch in one atomic step.
	ReplacePhaseAllocations(ctx context.Context, projectID string, phase model.PhaseKind, batch []model.DailyPhaseAllocation) error
	DeletePhaseAllocations(ctx context.Context, f AllocationFilter) (int, error)
	QueryPhaseAllocations(ctx context.Context, f AllocationFilter) ([]model.DailyPhaseAllocation, error)
}

// HourAllocationStore persists hour-block bookings. InsertHourAllocation
// returns ErrSlotTaken when (team member, date, hour block) is already
// booked.
type HourAllocationStore interface {
	InsertHourAllocation(ctx context.Context, a model.DailyHourAllocation) error
	QueryHourAllocations(ctx context.Context, f HourFilter) ([]model.DailyHourAllocation, error)
	DeleteHourAllocations(ctx context.Context, f HourFilter) (int, error)
}

// UnscheduledStore keeps one row per (project, phase).
type UnscheduledStore interface {
	UpsertUnscheduled(ctx context.Context, u model.UnscheduledHours) error
	ClearUnscheduled(ctx context.Context, projectID string, phase model.PhaseKind) error
	ListUnscheduled(ctx context.Context, projectID string) ([]model.UnscheduledHours, error)
}

// TeamStore lists bookable workers.
type TeamStore interface {
	ListMembers(ctx context.Context) ([]model.TeamMember, error)
	UpsertMember(ctx context.Context, m model.TeamMember) error
}

// Store bundles every contract for backends that implement them all.
type Store interface {
	ProjectStore
	HolidayStore
	CapacityStore
	AllocationStore
	HourAllocationStore
	UnscheduledStore
	TeamStore
	Close() error
}
