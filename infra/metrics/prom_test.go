package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/events"
	coremetrics "github.com/canada7700/finish-line-calendar-app-sub000/core/metrics"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
)

func TestPromSink_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewPromSinkWithRegistry("shop", reg)
	require.NoError(t, err)

	require.NoError(t, s.RecordPhaseSchedule(coremetrics.PhaseScheduleEvent{Phase: model.PhaseStain, ScheduledHours: 6, UnscheduledHours: 2}))
	require.NoError(t, s.RecordHourAssignment(coremetrics.HourAssignmentEvent{Phase: model.PhaseStain, Scheduled: 3, Conflicts: 1}))
	require.NoError(t, s.RecordReschedule(coremetrics.RescheduleEvent{ShiftDays: -9}))
	require.NoError(t, s.RecordHolidayStatus(coremetrics.HolidayStatusEvent{Loaded: true, Count: 11}))

	assert.Equal(t, 6.0, testutil.ToFloat64(s.hours.WithLabelValues("stain", "scheduled")))
	assert.Equal(t, 2.0, testutil.ToFloat64(s.hours.WithLabelValues("stain", "unscheduled")))
	assert.Equal(t, 3.0, testutil.ToFloat64(s.assignments.WithLabelValues("stain")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.conflicts.WithLabelValues("stain")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.reschedules))
	assert.Equal(t, 11.0, testutil.ToFloat64(s.holidays))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.holidaysOK))
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromSinkWithRegistry("shop", reg)
	require.NoError(t, err)
	b, err := NewPromSinkWithRegistry("shop", reg)
	require.NoError(t, err)

	require.NoError(t, a.RecordReschedule(coremetrics.RescheduleEvent{ShiftDays: 3}))
	assert.Equal(t, 1.0, testutil.ToFloat64(b.reschedules))
}

func TestRecord_TranslatesEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewPromSinkWithRegistry("", reg)
	require.NoError(t, err)

	evs := []events.Event{
		events.PhaseScheduled{ProjectID: "p1", Phase: model.PhaseInstall, ScheduledHours: 8},
		events.HourBlocksAssigned{ProjectID: "p1", Phase: model.PhaseInstall, Scheduled: 2},
		events.ProjectRescheduled{
			ProjectID:  "p1",
			OldInstall: model.MustParseDate("2025-12-23"),
			NewInstall: model.MustParseDate("2026-01-06"),
		},
		events.HolidaysReloaded{Loaded: false, Count: 4},
	}
	for _, ev := range evs {
		require.NoError(t, Record(s, ev, testNow))
	}

	assert.Equal(t, 8.0, testutil.ToFloat64(s.hours.WithLabelValues("install", "scheduled")))
	assert.Equal(t, 2.0, testutil.ToFloat64(s.assignments.WithLabelValues("install")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.reschedules))
	assert.Equal(t, 0.0, testutil.ToFloat64(s.holidaysOK))
	assert.Equal(t, 4.0, testutil.ToFloat64(s.holidays))
}

func TestRecord_NopIgnoresOptional(t *testing.T) {
	// A sink without optional recorders only sees phase schedules.
	var only phaseOnly
	require.NoError(t, Record(&only, events.HourBlocksAssigned{}, testNow))
	require.NoError(t, Record(&only, events.PhaseScheduled{}, testNow))
	assert.Equal(t, 1, only.n)
}

type phaseOnly struct{ n int }

func (p *phaseOnly) RecordPhaseSchedule(coremetrics.PhaseScheduleEvent) error {
	p.n++
	return nil
}
