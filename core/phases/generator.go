// Package phases expands projects into calendar phase records and debounces
// their recomputation.
package phases

import (
	"github.com/canada7700/finish-line-calendar-app-sub000/core/calendar"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/rules"
)

// Generator turns projects into ProjectPhase records. It is a pure
// function of its input and is safe to call on every render.
type Generator struct {
	Rules    rules.Rules
	Calendar calendar.Calendar
}

// NewGenerator returns a Generator.
func NewGenerator(r rules.Rules, cal calendar.Calendar) Generator {
	return Generator{Rules: r, Calendar: cal}
}

// Generate emits one phase per project and phase kind that has a start
// date, in input order then production order. EndDate is StartDate plus the
// phase duration in business days.
func (g Generator) Generate(projects []model.Project) []model.ProjectPhase {
	out := make([]model.ProjectPhase, 0, len(projects)*len(model.AllPhases()))
	for _, p := range projects {
		out = append(out, g.ForProject(p)...)
	}
	return out
}

// ForProject generates the phases of one project.
func (g Generator) ForProject(p model.Project) []model.ProjectPhase {
	var out []model.ProjectPhase
	for _, kind := range model.AllPhases() {
		start := p.PhaseStart(kind)
		if start == nil {
			continue
		}
		hours := p.Hours.Of(kind)
		out = append(out, model.ProjectPhase{
			ProjectID: p.ID,
			Project:   p.Name,
			Phase:     kind,
			StartDate: *start,
			EndDate:   g.Calendar.AddBusinessDays(*start, g.Rules.DurationDays(hours)),
			Hours:     hours,
		})
	}
	return out
}

// Overlapping filters phases that intersect [from, to].
func Overlapping(list []model.ProjectPhase, from, to model.Date) []model.ProjectPhase {
	var out []model.ProjectPhase
	for _, ph := range list {
		if ph.EndDate.Before(from) || ph.StartDate.After(to) {
			continue
		}
		out = append(out, ph)
	}
	return out
}
