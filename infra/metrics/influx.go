package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/canada7700/finish-line-calendar-app-sub000/core/metrics"
	"github.com/canada7700/finish-line-calendar-app-sub000/infra/logger"
)

// InfluxConfig locates the InfluxDB bucket receiving scheduling points.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes scheduling events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.Sink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordPhaseSchedule writes one allocation run.
func (s *InfluxSink) RecordPhaseSchedule(ev coremetrics.PhaseScheduleEvent) error {
	p := write.NewPointWithMeasurement("phase_schedule").
		AddTag("project_id", ev.ProjectID).
		AddTag("phase", ev.Phase.String()).
		AddTag("component", "capacity").
		AddField("scheduled_hours", ev.ScheduledHours).
		AddField("unscheduled_hours", ev.UnscheduledHours).
		SetTime(stamp(ev.Time))
	return s.write(p)
}

// RecordHourAssignment writes one booking batch.
func (s *InfluxSink) RecordHourAssignment(ev coremetrics.HourAssignmentEvent) error {
	p := write.NewPointWithMeasurement("hour_assignment").
		AddTag("project_id", ev.ProjectID).
		AddTag("phase", ev.Phase.String()).
		AddTag("component", "hourblock").
		AddField("requested", ev.Requested).
		AddField("scheduled", ev.Scheduled).
		AddField("conflicts", ev.Conflicts).
		SetTime(stamp(ev.Time))
	return s.write(p)
}

// RecordReschedule writes an install date move.
func (s *InfluxSink) RecordReschedule(ev coremetrics.RescheduleEvent) error {
	p := write.NewPointWithMeasurement("reschedule").
		AddTag("project_id", ev.ProjectID).
		AddTag("component", "reschedule").
		AddField("shift_days", ev.ShiftDays).
		SetTime(stamp(ev.Time))
	return s.write(p)
}

// RecordHolidayStatus writes the holiday cache state.
func (s *InfluxSink) RecordHolidayStatus(ev coremetrics.HolidayStatusEvent) error {
	p := write.NewPointWithMeasurement("holiday_cache").
		AddTag("loaded", strconv.FormatBool(ev.Loaded)).
		AddField("count", ev.Count).
		SetTime(stamp(ev.Time))
	return s.write(p)
}

// RecordUtilization writes one point per phase and day.
func (s *InfluxSink) RecordUtilization(samples []coremetrics.UtilizationSample) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, u := range samples {
		p := write.NewPointWithMeasurement("capacity_utilization").
			AddTag("phase", u.Phase.String()).
			AddTag("overbooked", strconv.FormatBool(u.Overbook)).
			AddField("ratio", round3(u.Ratio)).
			SetTime(u.Date.Time())
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
