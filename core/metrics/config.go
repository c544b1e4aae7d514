package metrics

import "github.com/canada7700/finish-line-calendar-app-sub000/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks          []factory.ModuleConfig `json:"sinks" yaml:"sinks" koanf:"sinks"`
	PrometheusPort string                 `json:"prometheus_port" yaml:"prometheus_port" koanf:"prometheus_port"`
}
