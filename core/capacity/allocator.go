// Package capacity places a phase's hours into per-day capacity and reports
// what did not fit.
package capacity

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/calendar"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/rules"
)

// Request describes one allocation run for a project phase. Existing is the
// snapshot of allocations already persisted for the phase over the range.
type Request struct {
	ProjectID string
	Phase     model.PhaseKind
	Start     model.Date
	End       model.Date
	Hours     int
	Capacity  *Table
	Existing  []model.DailyPhaseAllocation
}

// Result is a partial-success outcome: ScheduledHours were placed and
// UnscheduledHours could not be. Unscheduled is set when the remainder is
// non-zero.
type Result struct {
	ProjectID        string                       `json:"project_id"`
	Phase            model.PhaseKind              `json:"phase"`
	Start            model.Date                   `json:"start"`
	End              model.Date                   `json:"end"`
	Allocations      []model.DailyPhaseAllocation `json:"allocations"`
	ScheduledHours   int                          `json:"scheduled_hours"`
	UnscheduledHours int                          `json:"unscheduled_hours"`
	Unscheduled      *model.UnscheduledHours      `json:"unscheduled,omitempty"`
	DaysSearched     int                          `json:"days_searched"`
}

// Allocator distributes hours across working days.
type Allocator struct {
	Rules    rules.Rules
	Calendar calendar.Calendar
	newID    func() string
}

// NewAllocator returns an allocator issuing uuid allocation ids.
func NewAllocator(r rules.Rules, cal calendar.Calendar) Allocator {
	return Allocator{Rules: r, Calendar: cal, newID: uuid.NewString}
}

// Allocate walks the working days of the range in order and places
//
//	min(remaining, effective - allocated by other projects, per-job cap)
//
// hours on each day. The project's own allocations for the phase are left
// out of the snapshot because a run replaces them.
func (a Allocator) Allocate(req Request) Result {
	res := Result{ProjectID: req.ProjectID, Phase: req.Phase, Start: req.Start, End: req.End}
	if req.Hours <= 0 {
		return res
	}
	newID := a.newID
	if newID == nil {
		newID = uuid.NewString
	}

	used := make(map[model.Date]int)
	for _, e := range req.Existing {
		if e.Phase != req.Phase || e.ProjectID == req.ProjectID {
			continue
		}
		used[e.Date] += e.AllocatedHours
	}

	days := a.Calendar.WorkingDays(req.Start, req.End)
	remaining := req.Hours
	for _, d := range days {
		if remaining == 0 {
			break
		}
		res.DaysSearched++
		eff := req.Capacity.Effective(d, req.Phase)
		h := min(remaining, eff-used[d], a.Rules.PerJobDailyCap(eff))
		if h <= 0 {
			continue
		}
		res.Allocations = append(res.Allocations, model.DailyPhaseAllocation{
			ID:             newID(),
			ProjectID:      req.ProjectID,
			Phase:          req.Phase,
			Date:           d,
			AllocatedHours: h,
		})
		used[d] += h
		remaining -= h
	}

	res.ScheduledHours = req.Hours - remaining
	res.UnscheduledHours = remaining
	if remaining > 0 {
		res.Unscheduled = &model.UnscheduledHours{
			ProjectID: req.ProjectID,
			Phase:     req.Phase,
			Hours:     remaining,
			Reason:    unscheduledReason(req, len(days)),
		}
	}
	return res
}

func unscheduledReason(req Request, workingDays int) string {
	if workingDays == 0 {
		return fmt.Sprintf("no working days for %s between %s and %s", req.Phase, req.Start, req.End)
	}
	return fmt.Sprintf("insufficient %s capacity between %s and %s (%d working days searched)",
		req.Phase, req.Start, req.End, workingDays)
}
