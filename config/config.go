package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/metrics"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/rules"
	"github.com/canada7700/finish-line-calendar-app-sub000/infra/mqtt"
)

type Config struct {
	Storage   StorageConfig  `json:"storage"`
	Rules     rules.Rules    `json:"rules"`
	RulesFile string         `json:"rules_file"`
	Holidays  HolidaysConfig `json:"holidays"`
	Capacity  CapacityConfig `json:"capacity"`
	Server    ServerConfig   `json:"server"`
	Metrics   metrics.Config `json:"metrics"`
	MQTT      mqtt.Config    `json:"mqtt"`
	Sentry    SentryConfig   `json:"sentry"`
	Logging   LoggingConfig  `json:"logging"`
	Audit     AuditConfig    `json:"audit"`
}

// Load reads path (YAML or JSON by extension), applies K_ prefixed
// environment overrides and fills defaults. An empty path loads defaults and
// environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	if err := cfg.finish(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a validated configuration with every default applied.
func Default() *Config {
	var cfg Config
	_ = cfg.finish("")
	return &cfg
}

func (c *Config) finish(baseDir string) error {
	if c.RulesFile != "" {
		p := c.RulesFile
		if !filepath.IsAbs(p) && baseDir != "" {
			p = filepath.Join(baseDir, p)
		}
		r, err := rules.LoadFile(p)
		if err != nil {
			return fmt.Errorf("rules_file: %w", err)
		}
		c.Rules = r
	}
	c.Rules.SetDefaults()
	c.Storage.SetDefaults()
	c.Holidays.SetDefaults()
	c.Capacity.SetDefaults()
	c.Server.SetDefaults()
	c.MQTT.SetDefaults()
	c.Logging.SetDefaults()
	c.Audit.SetDefaults()

	validators := []struct {
		name string
		fn   func() error
	}{
		{"rules", c.Rules.Validate},
		{"storage", c.Storage.Validate},
		{"holidays", c.Holidays.Validate},
		{"capacity", c.Capacity.Validate},
		{"mqtt", c.MQTT.Validate},
		{"logging", c.Logging.Validate},
		{"audit", c.Audit.Validate},
		{"audit", c.auditBackendMatchesStorage},
	}
	for _, v := range validators {
		if err := v.fn(); err != nil {
			return fmt.Errorf("%s: %w", v.name, err)
		}
	}
	return nil
}

func (c *Config) auditBackendMatchesStorage() error {
	if c.Audit.Backend == "sqlite" && c.Storage.Backend != "sqlite" {
		return fmt.Errorf("sqlite backend needs sqlite storage")
	}
	return nil
}
