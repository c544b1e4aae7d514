package test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/canada7700/finish-line-calendar-app-sub000/app"
	"github.com/canada7700/finish-line-calendar-app-sub000/config"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/factory"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
	"github.com/canada7700/finish-line-calendar-app-sub000/test/util"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

// TestScheduleExposesPrometheusMetrics runs the whole service in-process and
// checks that scheduling a project lands on the /metrics endpoint.
func TestScheduleExposesPrometheusMetrics(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "memory"
	cfg.Server.Address = freeAddr(t)
	cfg.Metrics.PrometheusPort = ""
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "prometheus", Conf: map[string]any{"namespace": "itest"}}}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	svc, err := app.New(ctx, cfg)
	require.NoError(t, err)
	defer svc.Close() //nolint:errcheck

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- svc.Run(runCtx) }()
	defer func() {
		stop()
		<-done
	}()

	base := "http://" + cfg.Server.Address
	readyCtx, readyCancel := context.WithTimeout(ctx, util.HTTPReadyTimeout)
	defer readyCancel()
	require.NoError(t, util.WaitForHTTP(readyCtx, base+"/healthz"))

	p := model.Project{
		ID:          "itest-1",
		Name:        "Integration kitchen",
		Hours:       model.PhaseHours{Millwork: 16, BoxConstruction: 8, Stain: 8, Install: 8},
		InstallDate: model.NewDate(2026, time.March, 16),
	}
	derived, err := svc.Scheduler.CalculatePhaseDates(p)
	require.NoError(t, err)
	_, err = svc.Store.CreateProject(ctx, derived)
	require.NoError(t, err)
	_, err = svc.Capacity.ScheduleProject(ctx, p.ID)
	require.NoError(t, err)

	metricCtx, metricCancel := context.WithTimeout(ctx, util.MetricTimeout)
	defer metricCancel()
	require.NoError(t, util.WaitForMetric(metricCtx, base+"/metrics", "itest_phase_hours_total"))
}
