// Package app wires configuration, storage and the scheduling services into
// one runnable process.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apiaudit "github.com/canada7700/finish-line-calendar-app-sub000/api/audit"
	"github.com/canada7700/finish-line-calendar-app-sub000/api/schedule"
	"github.com/canada7700/finish-line-calendar-app-sub000/config"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/calendar"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/capacity"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/events"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/holiday"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/hourblock"
	coremetrics "github.com/canada7700/finish-line-calendar-app-sub000/core/metrics"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
	coremon "github.com/canada7700/finish-line-calendar-app-sub000/core/monitoring"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/phases"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/reschedule"
	coresched "github.com/canada7700/finish-line-calendar-app-sub000/core/schedule"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/store"
	"github.com/canada7700/finish-line-calendar-app-sub000/infra/audit"
	"github.com/canada7700/finish-line-calendar-app-sub000/infra/holidays"
	"github.com/canada7700/finish-line-calendar-app-sub000/infra/logger"
	"github.com/canada7700/finish-line-calendar-app-sub000/infra/metrics"
	"github.com/canada7700/finish-line-calendar-app-sub000/infra/monitoring"
	"github.com/canada7700/finish-line-calendar-app-sub000/infra/mqtt"
	"github.com/canada7700/finish-line-calendar-app-sub000/infra/sqlite"
	"github.com/canada7700/finish-line-calendar-app-sub000/internal/eventbus"
	"github.com/canada7700/finish-line-calendar-app-sub000/jobs/holidayreload"
)

// UtilizationWindow is how many calendar days ahead the utilization gauges
// cover.
const UtilizationWindow = 30

// Service holds the wired scheduling stack.
type Service struct {
	Config      *config.Config
	Store       store.Store
	Bus         eventbus.EventBus
	Holidays    *holiday.Registry
	Calendar    calendar.Calendar
	Scheduler   coresched.ProjectScheduler
	Generator   phases.Generator
	Capacity    *capacity.Service
	Hours       *hourblock.Service
	Rescheduler *reschedule.Rescheduler
	Sink        coremetrics.Sink
	Monitor     coremon.Monitor
	// Audit is nil when the event trail is disabled.
	Audit audit.Store

	log        logger.Logger
	recompute  *phases.Recomputer
	mqttClient mqtt.Client
	publisher  *mqtt.EventPublisher
	reload     *holidayreload.Job
	now        func() time.Time

	closeOnce sync.Once
}

// ConfigureLogging applies the logging section to every logger created
// afterwards.
func ConfigureLogging(cfg config.LoggingConfig) error {
	if strings.EqualFold(cfg.Format, "console") {
		return logger.Configure(cfg.Level, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	return logger.Configure(cfg.Level, nil)
}

// New builds the stack from cfg and loads the holiday cache. A failed
// holiday load is logged, not returned; Holidays.Status reports it.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	if err := ConfigureLogging(cfg.Logging); err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	s := &Service{Config: cfg, log: logger.New("service"), now: time.Now}

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	s.Monitor = mon

	st, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	s.Store = st
	if err := seedCapacities(ctx, st, cfg.Capacity); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("seed capacities: %w", err)
	}

	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	s.Sink = sink

	s.Bus = eventbus.New()
	var src holiday.Source = st
	switch cfg.Holidays.Source {
	case "file":
		src = holidays.NewFile(cfg.Holidays.Path)
	case "http":
		src = holidays.NewHTTP(cfg.Holidays.URL, cfg.Holidays.Auth, cfg.Holidays.Timeout())
	}
	s.Holidays = holiday.NewRegistry(src, logger.New("holidays"), s.Bus)
	if status := s.Holidays.Load(ctx); !status.Loaded {
		s.log.Warnf("holidays not loaded, derived dates may be wrong: %s", status.ErrText())
	}

	r := cfg.Rules
	s.Calendar = calendar.New(s.Holidays)
	s.Scheduler = coresched.New(r, s.Calendar)
	s.Generator = phases.NewGenerator(r, s.Calendar)
	s.Capacity = capacity.NewService(st, capacity.NewAllocator(r, s.Calendar), s.Bus, logger.New("capacity"))
	s.Hours = hourblock.NewService(st, hourblock.NewAllocator(r, s.Calendar), s.Bus, logger.New("hourblock"))
	s.recompute = phases.NewRecomputer(r, s.refreshUtilization)

	list, err := st.ListProjects(ctx)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("list projects: %w", err)
	}
	s.Rescheduler = reschedule.New(st, s.Scheduler, reschedule.Options{
		Cache:     reschedule.NewProjectCache(list),
		Publisher: s.Bus,
		Monitor:   mon,
		Logger:    logger.New("reschedule"),
		OnChange:  s.recompute.Notify,
	})

	if cfg.MQTT.Enabled {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		s.mqttClient = client
		s.publisher = mqtt.NewEventPublisher(client, cfg.MQTT.TopicPrefix, logger.New("mqtt"), mon)
	}

	if s.Audit, err = openAudit(cfg.Audit, st); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("audit: %w", err)
	}

	if cfg.Holidays.ReloadCron != "" {
		job, err := holidayreload.New(cfg.Holidays.ReloadCron, s.Holidays, logger.New("holiday-reload"))
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("holiday reload: %w", err)
		}
		s.reload = job
	}
	return s, nil
}

func openStore(ctx context.Context, cfg config.StorageConfig) (store.Store, error) {
	switch cfg.Backend {
	case "memory":
		return store.NewMemoryStore(), nil
	case "sqlite":
		st, err := sqlite.Open(ctx, cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.Path, err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func openAudit(cfg config.AuditConfig, st store.Store) (audit.Store, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "jsonl":
		js, err := audit.NewJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
		if err != nil {
			return nil, err
		}
		return js, nil
	case "sqlite":
		db, ok := st.(*sqlite.Store)
		if !ok {
			return nil, fmt.Errorf("sqlite audit log needs sqlite storage")
		}
		return db.AuditLog(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// seedCapacities stores the configured default for every phase the store
// has no capacity row for. Existing rows are left alone.
func seedCapacities(ctx context.Context, st store.CapacityStore, cfg config.CapacityConfig) error {
	have, err := st.PhaseCapacities(ctx)
	if err != nil {
		return err
	}
	known := make(map[model.PhaseKind]bool, len(have))
	for _, c := range have {
		known[c.Phase] = true
	}
	for _, c := range cfg.Capacities() {
		if known[c.Phase] {
			continue
		}
		if err := st.SetPhaseCapacity(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// Handler returns the HTTP API. /metrics is included unless metrics are
// served on their own port.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	schedule.Register(mux, schedule.Deps{
		Projects:    s.Store,
		Generator:   s.Generator,
		Holidays:    s.Holidays,
		Utilization: s.Capacity,
	})
	if s.Audit != nil {
		mux.Handle("/api/audit", apiaudit.NewHandler(s.Audit, s.Config.Audit.Token))
	}
	if s.Config.Metrics.PrometheusPort == "" {
		mux.Handle("/metrics", metrics.Handler())
	}
	return mux
}

// Run starts background work and the HTTP server and blocks until ctx is
// cancelled.
func (s *Service) Run(ctx context.Context) error {
	metrics.StartEventCollector(ctx, s.Bus, s.Sink)
	if s.Audit != nil {
		audit.Start(ctx, s.Bus, s.Audit, logger.New("audit"))
	}
	s.watchChanges(ctx)
	if s.publisher != nil {
		s.publisher.Start(ctx, s.Bus)
	}
	if s.reload != nil {
		s.reload.Start(ctx)
	}
	if port := s.Config.Metrics.PrometheusPort; port != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, port); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	s.recompute.Notify()

	srv := &http.Server{
		Addr:              s.Config.Server.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.Config.Server.ReadTimeout(),
	}
	return metrics.Serve(ctx, srv, s.Config.Server.ShutdownTimeout())
}

// watchChanges schedules a utilization refresh after allocation changes.
func (s *Service) watchChanges(ctx context.Context) {
	sub := s.Bus.Subscribe()
	go func() {
		defer s.Bus.Unsubscribe(sub)
		eventbus.Forward(ctx, sub, func(ev events.Event) {
			switch ev.(type) {
			case events.PhaseScheduled, events.HourBlocksAssigned, events.ProjectRescheduled, events.HolidaysReloaded:
				s.recompute.Notify()
			}
		})
	}()
}

// refreshUtilization pushes the next UtilizationWindow days of capacity use
// to the metrics sink.
func (s *Service) refreshUtilization() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	from := model.DateOf(s.now())
	rep, err := s.Capacity.Utilization(ctx, from, from.AddDays(UtilizationWindow-1))
	if err != nil {
		s.log.Warnf("utilization: %v", err)
		return
	}
	if err := metrics.RecordReport(s.Sink, rep); err != nil {
		s.log.Warnf("record utilization: %v", err)
	}
}

// Close stops timers, flushes the monitor and releases the store and broker
// connection. It is safe to call more than once.
func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.reload != nil {
			s.reload.Stop()
		}
		if s.recompute != nil {
			s.recompute.Stop()
		}
		if s.mqttClient != nil {
			s.mqttClient.Disconnect()
		}
		if c, ok := s.Sink.(interface{ Close() }); ok {
			c.Close()
		}
		if s.Bus != nil {
			s.Bus.Close()
		}
		if s.Audit != nil {
			if aerr := s.Audit.Close(); aerr != nil {
				s.log.Warnf("close audit log: %v", aerr)
			}
		}
		if s.Monitor != nil {
			s.Monitor.Flush(2 * time.Second)
		}
		if s.Store != nil {
			err = s.Store.Close()
		}
	})
	return err
}
