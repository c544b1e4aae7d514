package metrics

import (
	"context"
	"time"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/events"
	coremetrics "github.com/canada7700/finish-line-calendar-app-sub000/core/metrics"
	"github.com/canada7700/finish-line-calendar-app-sub000/infra/logger"
	"github.com/canada7700/finish-line-calendar-app-sub000/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for events.
// It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.Sink) {
	if bus == nil || sink == nil {
		return
	}
	log := logger.New("metrics-collector")
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		eventbus.Forward(ctx, sub, func(ev events.Event) {
			if err := Record(sink, ev, time.Now()); err != nil {
				log.Warnf("record %s: %v", ev.Topic(), err)
			}
		})
	}()
}

// Record translates a single bus event into sink calls. Events the sink has
// no recorder for are ignored.
func Record(sink coremetrics.Sink, ev events.Event, now time.Time) error {
	switch e := ev.(type) {
	case events.PhaseScheduled:
		return sink.RecordPhaseSchedule(coremetrics.PhaseScheduleEvent{
			ProjectID:        e.ProjectID,
			Phase:            e.Phase,
			ScheduledHours:   e.ScheduledHours,
			UnscheduledHours: e.UnscheduledHours,
			Time:             now,
		})
	case events.HourBlocksAssigned:
		if r, ok := sink.(coremetrics.HourAssignmentRecorder); ok {
			return r.RecordHourAssignment(coremetrics.HourAssignmentEvent{
				ProjectID: e.ProjectID,
				Phase:     e.Phase,
				Requested: e.Requested,
				Scheduled: e.Scheduled,
				Conflicts: e.Conflicts,
				Time:      now,
			})
		}
	case events.ProjectRescheduled:
		if r, ok := sink.(coremetrics.RescheduleRecorder); ok {
			return r.RecordReschedule(coremetrics.RescheduleEvent{
				ProjectID: e.ProjectID,
				ShiftDays: e.OldInstall.DaysUntil(e.NewInstall),
				Time:      now,
			})
		}
	case events.HolidaysReloaded:
		if r, ok := sink.(coremetrics.HolidayStatusRecorder); ok {
			return r.RecordHolidayStatus(coremetrics.HolidayStatusEvent{
				Loaded: e.Loaded,
				Count:  e.Count,
				Time:   now,
			})
		}
	}
	return nil
}
