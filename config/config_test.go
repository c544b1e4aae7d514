package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
)

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

//nolint:gocyclo
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `storage:
  backend: "sqlite"
  path: "/var/lib/finishline/shop.db"
rules:
  per_job_share: 0.75
  material_lead_days: 12
holidays:
  source: "file"
  path: "holidays.yaml"
  reload_cron: "0 3 * * *"
capacity:
  defaults:
    stain: 8
metrics:
  sinks:
    - type: "prometheus"
      conf:
        namespace: "shop"
  prometheus_port: ":9100"
mqtt:
  enabled: true
  broker: "tcp://localhost:1883"
  topic_prefix: "shop"
  qos: 1
sentry:
  dsn: "https://key@example.invalid/1"
logging:
  level: "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"storage.path", cfg.Storage.Path, "/var/lib/finishline/shop.db"},
		{"rules.per_job_share", cfg.Rules.PerJobShare, 0.75},
		{"rules.material_lead_days", cfg.Rules.MaterialLeadDays, 12},
		{"rules.hours_per_day default", cfg.Rules.HoursPerDay, 8},
		{"holidays.source", cfg.Holidays.Source, "file"},
		{"holidays.reload_cron", cfg.Holidays.ReloadCron, "0 3 * * *"},
		{"capacity.stain", cfg.Capacity.Defaults["stain"], 8},
		{"capacity.millwork default", cfg.Capacity.Defaults["millwork"], DefaultPhaseHours},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "prometheus", true},
		{"metrics_namespace", cfg.Metrics.Sinks[0].Conf["namespace"], "shop"},
		{"prometheus_port", cfg.Metrics.PrometheusPort, ":9100"},
		{"mqtt.broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"mqtt.client_id default", cfg.MQTT.ClientID, "finishline"},
		{"mqtt.qos", cfg.MQTT.QoS, byte(1)},
		{"sentry.dsn", cfg.Sentry.DSN, "https://key@example.invalid/1"},
		{"logging.level", cfg.Logging.Level, "debug"},
		{"logging.format default", cfg.Logging.Format, "json"},
		{"server.address default", cfg.Server.Address, ":8080"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{"storage":{"backend":"memory"}}`)
	t.Setenv("K_LOGGING__LEVEL", "warn")
	t.Setenv("K_SERVER__ADDRESS", ":9999")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Empty(t, cfg.Storage.Path)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, ":9999", cfg.Server.Address)
}

func TestLoadRulesFileRelativeToConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rules.yaml", "personal_daily_cap: 6\n")
	path := writeFile(t, dir, "config.yaml", "rules_file: rules.yaml\nstorage:\n  backend: memory\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Rules.PersonalDailyCap)
	assert.Equal(t, 0.5, cfg.Rules.PerJobShare)
}

func TestLoadRejectsInvalidSections(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"bad_backend.yaml":  "storage:\n  backend: postgres\n",
		"bad_holidays.yaml": "holidays:\n  source: file\n",
		"bad_http.yaml":     "holidays:\n  source: http\n",
		"bad_cron.yaml":     "holidays:\n  reload_cron: \"every day\"\n",
		"bad_phase.yaml":    "capacity:\n  defaults:\n    sanding: 8\n",
		"bad_level.yaml":    "logging:\n  level: loud\n",
		"bad_mqtt.yaml":     "mqtt:\n  enabled: true\n",
		"bad_rules.yaml":    "rules:\n  per_job_share: 2\n",
		"bad_audit.yaml":    "audit:\n  backend: kafka\n",
		"bad_audit_db.yaml": "storage:\n  backend: memory\naudit:\n  backend: sqlite\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, dir, name, data))
			assert.Error(t, err)
		})
	}
	_, err := Load(writeFile(t, dir, "config.toml", ""))
	assert.Error(t, err)
	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "store", cfg.Holidays.Source)
	assert.Equal(t, 10, cfg.Rules.MaterialLeadDays)
	assert.Equal(t, []model.DailyPhaseCapacity{
		{Phase: model.PhaseMillwork, MaxHours: DefaultPhaseHours},
		{Phase: model.PhaseBoxConstruction, MaxHours: DefaultPhaseHours},
		{Phase: model.PhaseStain, MaxHours: DefaultPhaseHours},
		{Phase: model.PhaseInstall, MaxHours: DefaultPhaseHours},
	}, cfg.Capacity.Capacities())
}

func TestServerTimeouts(t *testing.T) {
	cfg := ServerConfig{}
	assert.Equal(t, 10*time.Second, cfg.ReadTimeout())
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout())
	cfg = ServerConfig{ReadTimeoutSeconds: 2, ShutdownTimeoutSeconds: 1}
	assert.Equal(t, 2*time.Second, cfg.ReadTimeout())
	assert.Equal(t, time.Second, cfg.ShutdownTimeout())
}

func TestAuditDefaults(t *testing.T) {
	off := AuditConfig{}
	off.SetDefaults()
	assert.Equal(t, AuditConfig{}, off)

	on := AuditConfig{Backend: "jsonl", MaxBackups: 2}
	on.SetDefaults()
	assert.Equal(t, "audit/events.jsonl", on.Path)
	assert.Equal(t, 10, on.MaxSizeMB)
	assert.Equal(t, 2, on.MaxBackups)
	assert.Equal(t, 30, on.MaxAgeDays)
	assert.NoError(t, on.Validate())
}
