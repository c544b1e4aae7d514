package config

import (
	"fmt"
	"sort"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/canada7700/finish-line-calendar-app-sub000/auth"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
)

// HolidaysConfig selects where holidays come from and how often they are
// refreshed.
type HolidaysConfig struct {
	// Source is "store" (the configured storage backend), "file" or "http".
	Source string `json:"source"`
	// Path is the YAML or JSON holiday file when Source is "file".
	Path string `json:"path"`
	// URL is the holiday feed when Source is "http".
	URL            string    `json:"url"`
	Auth           auth.Conf `json:"auth"`
	TimeoutSeconds int       `json:"timeout_seconds"`
	// ReloadCron is a standard five-field cron spec; empty disables
	// periodic reloads.
	ReloadCron string `json:"reload_cron"`
}

func (c *HolidaysConfig) SetDefaults() {
	if c.Source == "" {
		c.Source = "store"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
}

// Timeout bounds one feed request.
func (c HolidaysConfig) Timeout() time.Duration { return time.Duration(c.TimeoutSeconds) * time.Second }

func (c HolidaysConfig) Validate() error {
	switch c.Source {
	case "store":
	case "file":
		if c.Path == "" {
			return fmt.Errorf("path is required for the file source")
		}
	case "http":
		if c.URL == "" {
			return fmt.Errorf("url is required for the http source")
		}
		if c.Auth.Enabled() && c.Auth.AuthURL == "" {
			return fmt.Errorf("auth.auth_url is required with a client id")
		}
	default:
		return fmt.Errorf("unknown source %s", c.Source)
	}
	if c.ReloadCron != "" {
		if _, err := cron.ParseStandard(c.ReloadCron); err != nil {
			return fmt.Errorf("reload_cron: %w", err)
		}
	}
	return nil
}

// DefaultPhaseHours is the per-phase daily capacity seeded when neither the
// store nor the configuration provides one.
const DefaultPhaseHours = 16

// CapacityConfig holds default daily capacities keyed by phase name. They are
// written to the store for phases that have no capacity yet.
type CapacityConfig struct {
	Defaults map[string]int `json:"defaults"`
}

func (c *CapacityConfig) SetDefaults() {
	if c.Defaults == nil {
		c.Defaults = map[string]int{}
	}
	for _, k := range model.SchedulablePhases() {
		if _, ok := c.Defaults[k.String()]; !ok {
			c.Defaults[k.String()] = DefaultPhaseHours
		}
	}
}

func (c CapacityConfig) Validate() error {
	for name, h := range c.Defaults {
		if _, err := model.ParsePhaseKind(name); err != nil {
			return err
		}
		if h < 0 {
			return fmt.Errorf("%s: capacity must not be negative", name)
		}
	}
	return nil
}

// Capacities returns the defaults in production order.
func (c CapacityConfig) Capacities() []model.DailyPhaseCapacity {
	res := make([]model.DailyPhaseCapacity, 0, len(c.Defaults))
	for name, h := range c.Defaults {
		k, err := model.ParsePhaseKind(name)
		if err != nil {
			continue
		}
		res = append(res, model.DailyPhaseCapacity{Phase: k, MaxHours: h})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Phase < res[j].Phase })
	return res
}

// ServerConfig configures the HTTP read API.
type ServerConfig struct {
	Address                string `json:"address"`
	ReadTimeoutSeconds     int    `json:"read_timeout_seconds"`
	ShutdownTimeoutSeconds int    `json:"shutdown_timeout_seconds"`
}

func (c *ServerConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
}

func (c ServerConfig) ReadTimeout() time.Duration {
	if c.ReadTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

func (c ServerConfig) ShutdownTimeout() time.Duration {
	if c.ShutdownTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}
