package schedule

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/calendar"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/rules"
)

type holidaySet map[model.Date]bool

func (h holidaySet) IsHoliday(d model.Date) bool { return h[d] }

func newScheduler(h holidaySet) ProjectScheduler {
	return New(rules.Default(), calendar.New(h))
}

func TestCalculatePhaseDatesScenario(t *testing.T) {
	p := model.Project{
		ID:          "p1",
		InstallDate: model.MustParseDate("2025-12-23"),
		Hours:       model.PhaseHours{Millwork: 16, BoxConstruction: 16, Stain: 16, Install: 8},
	}
	out, err := newScheduler(nil).CalculatePhaseDates(p)
	require.NoError(t, err)

	assert.Equal(t, "2025-12-22", out.StainLacquerDate.String())
	assert.Equal(t, "2025-12-18", out.StainStartDate.String())
	assert.Equal(t, "2025-12-17", out.MillingFillersDate.String())
	assert.Equal(t, "2025-12-16", out.BoxToekickAssemblyDate.String())
	assert.Equal(t, "2025-12-12", out.BoxConstructionStartDate.String())
	assert.Equal(t, "2025-12-10", out.MillworkStartDate.String())
	assert.Equal(t, "2025-11-26", out.MaterialOrderDate.String())
	assert.Nil(t, p.StainStartDate, "input must not be mutated")
}

func TestZeroHourPhaseTakesOneDay(t *testing.T) {
	p := model.Project{ID: "p1", InstallDate: model.MustParseDate("2025-12-23")}
	out, err := newScheduler(nil).CalculatePhaseDates(p)
	require.NoError(t, err)
	assert.Equal(t, "2025-12-19", out.StainStartDate.String())
	assert.Equal(t, "2025-12-16", out.BoxConstructionStartDate.String())
	assert.Equal(t, "2025-12-15", out.MillworkStartDate.String())
}

func TestPartialDayRoundsUp(t *testing.T) {
	p := model.Project{ID: "p1", InstallDate: model.MustParseDate("2025-12-23"), Hours: model.PhaseHours{Stain: 9}}
	out, err := newScheduler(nil).CalculatePhaseDates(p)
	require.NoError(t, err)
	assert.Equal(t, "2025-12-18", out.StainStartDate.String())
}

func TestHolidaysAreSkipped(t *testing.T) {
	h := holidaySet{model.MustParseDate("2025-12-22"): true}
	p := model.Project{ID: "p1", InstallDate: model.MustParseDate("2025-12-23"), Hours: model.PhaseHours{Stain: 8}}
	s := newScheduler(h)
	out, err := s.CalculatePhaseDates(p)
	require.NoError(t, err)
	assert.Equal(t, "2025-12-19", out.StainLacquerDate.String())
	assert.Equal(t, "2025-12-18", out.StainStartDate.String())
	assert.NoError(t, s.Validate(out))
}

func TestCalculateIsIdempotent(t *testing.T) {
	s := newScheduler(nil)
	p := model.Project{ID: "p1", InstallDate: model.MustParseDate("2026-03-02"), Hours: model.PhaseHours{Millwork: 30, BoxConstruction: 12, Stain: 5}}
	first, err := s.CalculatePhaseDates(p)
	require.NoError(t, err)
	second, err := s.CalculatePhaseDates(first)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCalculateErrors(t *testing.T) {
	s := newScheduler(nil)
	_, err := s.CalculatePhaseDates(model.Project{ID: "p1"})
	assert.ErrorIs(t, err, ErrMissingInstallDate)
	_, err = s.CalculatePhaseDates(model.Project{ID: "p1", InstallDate: model.MustParseDate("2026-03-02"), Hours: model.PhaseHours{Stain: -4}})
	assert.Error(t, err)
}

func TestValidateDetectsProblems(t *testing.T) {
	s := newScheduler(nil)
	p, err := s.CalculatePhaseDates(model.Project{ID: "p1", InstallDate: model.MustParseDate("2026-03-02")})
	require.NoError(t, err)
	require.NoError(t, s.Validate(p))

	bad := p.Clone()
	bad.StainStartDate = model.DatePtr(model.MustParseDate("2026-02-28"))
	assert.True(t, errors.Is(s.Validate(bad), ErrNotBusinessDay))

	bad = p.Clone()
	bad.MaterialOrderDate = model.DatePtr(model.MustParseDate("2026-02-27"))
	assert.True(t, errors.Is(s.Validate(bad), ErrPhaseOrder))

	bad = p.Clone()
	bad.MillworkStartDate = nil
	assert.True(t, errors.Is(s.Validate(bad), ErrMissingDate))
}

func TestValidateRejectsWeekendInstall(t *testing.T) {
	s := newScheduler(holidaySet{model.MustParseDate("2026-03-04"): true})
	for _, install := range []string{"2026-03-07", "2026-03-04"} {
		p, err := s.CalculatePhaseDates(model.Project{ID: "p1", InstallDate: model.MustParseDate(install)})
		require.NoError(t, err)
		err = s.Validate(p)
		require.ErrorIs(t, err, ErrNotBusinessDay, install)
		assert.Contains(t, err.Error(), "install_date", install)
	}
}

func TestProperty_DerivedDatesOrderedBusinessDays(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 300
	properties := gopter.NewProperties(params)
	h := holidaySet{
		model.MustParseDate("2025-12-25"): true,
		model.MustParseDate("2026-01-01"): true,
		model.MustParseDate("2026-05-25"): true,
		model.MustParseDate("2026-07-03"): true,
	}
	s := newScheduler(h)
	base := model.MustParseDate("2025-10-01")

	properties.Property("dates ordered, on business days and idempotent", prop.ForAll(
		func(offset, mill, box, stain int) bool {
			p := model.Project{
				ID:          "prop",
				InstallDate: s.Calendar.NextWorkingDay(base.AddDays(offset)),
				Hours:       model.PhaseHours{Millwork: mill, BoxConstruction: box, Stain: stain},
			}
			out, err := s.CalculatePhaseDates(p)
			if err != nil {
				return false
			}
			again, err := s.CalculatePhaseDates(p)
			if err != nil {
				return false
			}
			return s.Validate(out) == nil && *out.MaterialOrderDate == *again.MaterialOrderDate
		},
		gen.IntRange(0, 365),
		gen.IntRange(0, 120),
		gen.IntRange(0, 120),
		gen.IntRange(0, 60),
	))
	properties.TestingRun(t)
}
