package metrics

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPhaseSchedule forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordPhaseSchedule(ev PhaseScheduleEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordPhaseSchedule(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordHourAssignment forwards hour bookings when supported by the sink.
func (m *MultiSink) RecordHourAssignment(ev HourAssignmentEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(HourAssignmentRecorder); ok {
			if err := rec.RecordHourAssignment(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordReschedule forwards reschedules.
func (m *MultiSink) RecordReschedule(ev RescheduleEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(RescheduleRecorder); ok {
			if err := rec.RecordReschedule(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordHolidayStatus forwards holiday cache refreshes.
func (m *MultiSink) RecordHolidayStatus(ev HolidayStatusEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(HolidayStatusRecorder); ok {
			if err := rec.RecordHolidayStatus(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordUtilization forwards utilization samples.
func (m *MultiSink) RecordUtilization(samples []UtilizationSample) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(UtilizationRecorder); ok {
			if err := rec.RecordUtilization(samples); err != nil {
				return err
			}
		}
	}
	return nil
}
