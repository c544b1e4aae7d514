package schedule

import (
	"errors"
	"fmt"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/calendar"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/rules"
)

var (
	// ErrMissingInstallDate is returned when a project has no anchor date.
	ErrMissingInstallDate = errors.New("install date is required")
	// ErrPhaseOrder reports derived dates out of production order.
	ErrPhaseOrder = errors.New("phase dates out of order")
	// ErrNotBusinessDay reports a derived date on a weekend or holiday.
	ErrNotBusinessDay = errors.New("date is not a business day")
	// ErrMissingDate reports a derived date that has not been calculated.
	ErrMissingDate = errors.New("derived date missing")
)

// ProjectScheduler calculates phase dates.
type ProjectScheduler struct {
	Rules    rules.Rules
	Calendar calendar.Calendar
}

// New returns a ProjectScheduler using cal for business-day stepping.
func New(r rules.Rules, cal calendar.Calendar) ProjectScheduler {
	return ProjectScheduler{Rules: r, Calendar: cal}
}

// CalculatePhaseDates returns a copy of p with every derived date set. The
// result depends only on p.InstallDate, p.Hours, the rules and the holiday
// set, so repeated runs yield identical dates.
func (s ProjectScheduler) CalculatePhaseDates(p model.Project) (model.Project, error) {
	if p.InstallDate.IsZero() {
		return p, ErrMissingInstallDate
	}
	if err := p.Hours.Validate(); err != nil {
		return p, fmt.Errorf("project %s: %w", p.ID, err)
	}
	out := p.Clone()
	cal, r := s.Calendar, s.Rules

	stainLacquer := cal.SubtractBusinessDays(p.InstallDate, r.StainLacquerGapDays)
	stainStart := cal.SubtractBusinessDays(stainLacquer, r.DurationDays(p.Hours.Stain))
	millingFillers := cal.SubtractBusinessDays(stainStart, r.MillingFillersGapDays)
	boxToekick := cal.SubtractBusinessDays(millingFillers, r.BoxToekickGapDays)
	boxStart := cal.SubtractBusinessDays(boxToekick, r.DurationDays(p.Hours.BoxConstruction))
	millworkStart := cal.SubtractBusinessDays(boxStart, r.DurationDays(p.Hours.Millwork))
	materialOrder := cal.SubtractBusinessDays(millworkStart, r.MaterialLeadDays)

	out.StainLacquerDate = model.DatePtr(stainLacquer)
	out.StainStartDate = model.DatePtr(stainStart)
	out.MillingFillersDate = model.DatePtr(millingFillers)
	out.BoxToekickAssemblyDate = model.DatePtr(boxToekick)
	out.BoxConstructionStartDate = model.DatePtr(boxStart)
	out.MillworkStartDate = model.DatePtr(millworkStart)
	out.MaterialOrderDate = model.DatePtr(materialOrder)
	return out, nil
}

// Validate checks that every derived date exists, that every date including
// the install date falls on a business day, and that production order holds.
func (s ProjectScheduler) Validate(p model.Project) error {
	if p.InstallDate.IsZero() {
		return ErrMissingInstallDate
	}
	dates := p.OrderedDates()
	var prev *model.NamedDate
	for i := range dates {
		cur := dates[i]
		if cur.Date == nil {
			return fmt.Errorf("%s: %w", cur.Name, ErrMissingDate)
		}
		if !s.Calendar.IsWorkingDay(*cur.Date) {
			return fmt.Errorf("%s %s: %w", cur.Name, cur.Date, ErrNotBusinessDay)
		}
		if prev != nil && cur.Date.Before(*prev.Date) {
			return fmt.Errorf("%s %s before %s %s: %w", cur.Name, cur.Date, prev.Name, prev.Date, ErrPhaseOrder)
		}
		prev = &dates[i]
	}
	return nil
}
