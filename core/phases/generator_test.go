package phases

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/calendar"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/rules"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/schedule"
)

func scheduled(t *testing.T, id string, install string, hours model.PhaseHours) model.Project {
	t.Helper()
	s := schedule.New(rules.Default(), calendar.New(nil))
	p, err := s.CalculatePhaseDates(model.Project{ID: id, Name: "Job " + id, InstallDate: model.MustParseDate(install), Hours: hours})
	require.NoError(t, err)
	return p
}

func TestGenerateAllPhases(t *testing.T) {
	g := NewGenerator(rules.Default(), calendar.New(nil))
	p := scheduled(t, "p1", "2025-12-23", model.PhaseHours{Millwork: 16, BoxConstruction: 16, Stain: 16, Install: 12})
	list := g.Generate([]model.Project{p})
	require.Len(t, list, 5)

	kinds := []model.PhaseKind{}
	for _, ph := range list {
		kinds = append(kinds, ph.Phase)
		assert.Equal(t, "p1", ph.ProjectID)
		assert.Equal(t, "Job p1", ph.Project)
	}
	assert.Equal(t, model.AllPhases(), kinds)

	stain := list[3]
	assert.Equal(t, "2025-12-18", stain.StartDate.String())
	assert.Equal(t, "2025-12-22", stain.EndDate.String())
	assert.Equal(t, 16, stain.Hours)

	install := list[4]
	assert.Equal(t, "2025-12-23", install.StartDate.String())
	assert.Equal(t, "2025-12-25", install.EndDate.String())
}

func TestZeroHourPhaseOccupiesOneDay(t *testing.T) {
	g := NewGenerator(rules.Default(), calendar.New(nil))
	p := scheduled(t, "p1", "2025-12-23", model.PhaseHours{})
	for _, ph := range g.ForProject(p) {
		assert.Equal(t, 1, len(calendar.New(nil).WorkingDays(ph.StartDate, ph.EndDate))-1, ph.Phase.String())
	}
	mat := g.ForProject(p)[0]
	assert.Equal(t, model.PhaseMaterialOrder, mat.Phase)
	assert.Equal(t, 0, mat.Hours)
}

func TestGenerateSkipsMissingStarts(t *testing.T) {
	g := NewGenerator(rules.Default(), calendar.New(nil))
	p := model.Project{ID: "p2", InstallDate: model.MustParseDate("2026-02-02")}
	list := g.Generate([]model.Project{p, {ID: "p3"}})
	require.Len(t, list, 1)
	assert.Equal(t, model.PhaseInstall, list[0].Phase)
}

func TestGenerateIsIdempotent(t *testing.T) {
	g := NewGenerator(rules.Default(), calendar.New(nil))
	projects := []model.Project{
		scheduled(t, "a", "2026-01-15", model.PhaseHours{Millwork: 40, Stain: 8}),
		scheduled(t, "b", "2026-01-20", model.PhaseHours{BoxConstruction: 24}),
	}
	assert.Equal(t, g.Generate(projects), g.Generate(projects))
}

func TestOverlapping(t *testing.T) {
	g := NewGenerator(rules.Default(), calendar.New(nil))
	p := scheduled(t, "p1", "2025-12-23", model.PhaseHours{Millwork: 16, BoxConstruction: 16, Stain: 16})
	got := Overlapping(g.ForProject(p), model.MustParseDate("2025-12-22"), model.MustParseDate("2025-12-31"))
	require.Len(t, got, 2)
	assert.Equal(t, model.PhaseStain, got[0].Phase)
	assert.Equal(t, model.PhaseInstall, got[1].Phase)
}
