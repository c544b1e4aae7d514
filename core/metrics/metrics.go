package metrics

import (
	"time"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
)

// PhaseScheduleEvent is one capacity allocation run for a project phase.
type PhaseScheduleEvent struct {
	ProjectID        string
	Phase            model.PhaseKind
	ScheduledHours   int
	UnscheduledHours int
	Time             time.Time
}

// Sink records scheduling results for observability purposes.
type Sink interface {
	RecordPhaseSchedule(ev PhaseScheduleEvent) error
}

// HourAssignmentEvent is one batch of hour-block bookings.
type HourAssignmentEvent struct {
	ProjectID string
	Phase     model.PhaseKind
	Requested int
	Scheduled int
	Conflicts int
	Time      time.Time
}

// HourAssignmentRecorder records hour-block bookings.
type HourAssignmentRecorder interface {
	RecordHourAssignment(ev HourAssignmentEvent) error
}

// RescheduleEvent captures a committed install date move.
type RescheduleEvent struct {
	ProjectID string
	ShiftDays int
	Time      time.Time
}

// RescheduleRecorder records reschedules.
type RescheduleRecorder interface {
	RecordReschedule(ev RescheduleEvent) error
}

// HolidayStatusEvent is the state of the holiday cache after a load.
type HolidayStatusEvent struct {
	Loaded bool
	Count  int
	Time   time.Time
}

// HolidayStatusRecorder records holiday cache refreshes.
type HolidayStatusRecorder interface {
	RecordHolidayStatus(ev HolidayStatusEvent) error
}

// UtilizationSample is the used share of one phase's capacity on one day.
type UtilizationSample struct {
	Phase    model.PhaseKind
	Date     model.Date
	Ratio    float64
	Overbook bool
}

// UtilizationRecorder records capacity utilization.
type UtilizationRecorder interface {
	RecordUtilization(samples []UtilizationSample) error
}

// NopSink implements Sink and every optional recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordPhaseSchedule(PhaseScheduleEvent) error   { return nil }
func (NopSink) RecordHourAssignment(HourAssignmentEvent) error { return nil }
func (NopSink) RecordReschedule(RescheduleEvent) error         { return nil }
func (NopSink) RecordHolidayStatus(HolidayStatusEvent) error   { return nil }
func (NopSink) RecordUtilization([]UtilizationSample) error    { return nil }
