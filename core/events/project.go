package events

import "github.com/canada7700/finish-line-calendar-app-sub000/core/model"

// ProjectRescheduled is emitted when a project's install date moved and all
// dependent dates were recalculated and persisted.
type ProjectRescheduled struct {
	ProjectID  string     `json:"project_id"`
	OldInstall model.Date `json:"old_install"`
	NewInstall model.Date `json:"new_install"`
}

func (ProjectRescheduled) Topic() string { return "project/rescheduled" }

// HolidaysReloaded reports the outcome of a holiday cache refresh. Loaded is
// false when the fetch failed and stale data is still in use.
type HolidaysReloaded struct {
	Loaded bool   `json:"loaded"`
	Count  int    `json:"count"`
	Error  string `json:"error,omitempty"`
}

func (HolidaysReloaded) Topic() string { return "holidays/reloaded" }
