package events

import "github.com/canada7700/finish-line-calendar-app-sub000/core/model"

// PhaseScheduled is published after a capacity allocation run is persisted.
type PhaseScheduled struct {
	ProjectID        string          `json:"project_id"`
	Phase            model.PhaseKind `json:"phase"`
	ScheduledHours   int             `json:"scheduled_hours"`
	UnscheduledHours int             `json:"unscheduled_hours"`
	Reason           string          `json:"reason,omitempty"`
}

func (PhaseScheduled) Topic() string { return "phase/scheduled" }

// HourBlocksAssigned is published after hour blocks are booked.
type HourBlocksAssigned struct {
	ProjectID string          `json:"project_id"`
	Phase     model.PhaseKind `json:"phase"`
	Requested int             `json:"requested"`
	Scheduled int             `json:"scheduled"`
	Conflicts int             `json:"conflicts"`
}

func (HourBlocksAssigned) Topic() string { return "hours/assigned" }
