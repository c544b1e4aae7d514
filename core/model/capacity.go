package model

import "time"

// Holiday is a non-working date.
type Holiday struct {
	Date Date   `json:"date" yaml:"date"`
	Name string `json:"name" yaml:"name"`
}

// DailyPhaseCapacity is the shop-wide ceiling of hours per day for a phase.
type DailyPhaseCapacity struct {
	Phase    PhaseKind `json:"phase"`
	MaxHours int       `json:"max_hours"`
}

// CapacityOverride replaces the default capacity of a phase on one date.
type CapacityOverride struct {
	Date             Date      `json:"date"`
	Phase            PhaseKind `json:"phase"`
	AdjustedCapacity int       `json:"adjusted_capacity"`
	Reason           string    `json:"reason,omitempty"`
}

// DailyPhaseAllocation is a coarse block of hours of one project's phase on
// one day.
type DailyPhaseAllocation struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"project_id"`
	Phase          PhaseKind `json:"phase"`
	Date           Date      `json:"date"`
	AllocatedHours int       `json:"allocated_hours"`
}

// DailyHourAllocation books one worker for one hour block. A worker appears
// at most once per (date, hour block).
type DailyHourAllocation struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"project_id"`
	TeamMemberID string    `json:"team_member_id"`
	Phase        PhaseKind `json:"phase"`
	Date         Date      `json:"date"`
	HourBlock    int       `json:"hour_block"`
}

// UnscheduledHours records hours that did not fit in a phase's date range.
// There is at most one row per (project, phase).
type UnscheduledHours struct {
	ProjectID string    `json:"project_id"`
	Phase     PhaseKind `json:"phase"`
	Hours     int       `json:"hours"`
	Reason    string    `json:"reason"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TeamMember is a shop worker who can be booked into hour blocks.
type TeamMember struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Phases   []PhaseKind `json:"phases"`
	Priority int         `json:"priority"`
	Active   bool        `json:"active"`
}

// EligibleFor reports whether the member works the given phase.
func (m TeamMember) EligibleFor(kind PhaseKind) bool {
	for _, p := range m.Phases {
		if p == kind {
			return true
		}
	}
	return false
}
