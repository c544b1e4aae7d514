package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/canada7700/finish-line-calendar-app-sub000/core/metrics"
)

// PromSink records scheduling activity in Prometheus metrics.
type PromSink struct {
	hours       *prometheus.CounterVec
	assignments *prometheus.CounterVec
	conflicts   *prometheus.CounterVec
	reschedules prometheus.Counter
	shift       prometheus.Histogram
	holidays    prometheus.Gauge
	holidaysOK  prometheus.Gauge
	utilization *prometheus.GaugeVec
}

// NewPromSink registers scheduling metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink(namespace string) (*PromSink, error) {
	return NewPromSinkWithRegistry(namespace, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(namespace string, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		hours: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "phase_hours_total",
			Help:      "Phase hours processed by the capacity allocator",
		}, []string{"phase", "outcome"}),
		assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hour_blocks_assigned_total",
			Help:      "Hour blocks booked for team members",
		}, []string{"phase"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hour_block_conflicts_total",
			Help:      "Hour block inserts rejected because the slot was taken",
		}, []string{"phase"}),
		reschedules: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reschedules_total",
			Help:      "Committed install date moves",
		}),
		shift: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reschedule_shift_days",
			Help:      "Absolute calendar days an install date moved",
			Buckets:   []float64{1, 2, 5, 7, 14, 30, 60},
		}),
		holidays: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "holidays_cached",
			Help:      "Number of holidays in the registry cache",
		}),
		holidaysOK: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "holidays_loaded",
			Help:      "1 when the last holiday fetch succeeded",
		}),
		utilization: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "capacity_utilization_ratio",
			Help:      "Allocated share of effective capacity per phase and day",
		}, []string{"phase", "date"}),
	}

	var err error
	if s.hours, err = register(reg, s.hours); err != nil {
		return nil, err
	}
	if s.assignments, err = register(reg, s.assignments); err != nil {
		return nil, err
	}
	if s.conflicts, err = register(reg, s.conflicts); err != nil {
		return nil, err
	}
	if s.reschedules, err = register(reg, s.reschedules); err != nil {
		return nil, err
	}
	if s.shift, err = register(reg, s.shift); err != nil {
		return nil, err
	}
	if s.holidays, err = register(reg, s.holidays); err != nil {
		return nil, err
	}
	if s.holidaysOK, err = register(reg, s.holidaysOK); err != nil {
		return nil, err
	}
	if s.utilization, err = register(reg, s.utilization); err != nil {
		return nil, err
	}
	return s, nil
}

// register returns the already registered collector when one exists.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordPhaseSchedule counts scheduled and unscheduled hours.
func (s *PromSink) RecordPhaseSchedule(ev coremetrics.PhaseScheduleEvent) error {
	phase := ev.Phase.String()
	s.hours.WithLabelValues(phase, "scheduled").Add(float64(ev.ScheduledHours))
	s.hours.WithLabelValues(phase, "unscheduled").Add(float64(ev.UnscheduledHours))
	return nil
}

// RecordHourAssignment counts booked blocks and conflicts.
func (s *PromSink) RecordHourAssignment(ev coremetrics.HourAssignmentEvent) error {
	phase := ev.Phase.String()
	s.assignments.WithLabelValues(phase).Add(float64(ev.Scheduled))
	s.conflicts.WithLabelValues(phase).Add(float64(ev.Conflicts))
	return nil
}

// RecordReschedule counts the move and observes its size.
func (s *PromSink) RecordReschedule(ev coremetrics.RescheduleEvent) error {
	s.reschedules.Inc()
	shift := ev.ShiftDays
	if shift < 0 {
		shift = -shift
	}
	s.shift.Observe(float64(shift))
	return nil
}

// RecordHolidayStatus sets the holiday gauges.
func (s *PromSink) RecordHolidayStatus(ev coremetrics.HolidayStatusEvent) error {
	s.holidays.Set(float64(ev.Count))
	if ev.Loaded {
		s.holidaysOK.Set(1)
	} else {
		s.holidaysOK.Set(0)
	}
	return nil
}

// RecordUtilization replaces the utilization gauges with the given samples.
func (s *PromSink) RecordUtilization(samples []coremetrics.UtilizationSample) error {
	s.utilization.Reset()
	for _, u := range samples {
		s.utilization.WithLabelValues(u.Phase.String(), u.Date.String()).Set(u.Ratio)
	}
	return nil
}
