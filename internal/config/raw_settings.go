package config

import "time"

// RawSettingsConfig holds general application settings
type RawSettingsConfig struct {
	SelfMetrics     RawSelfMetricsConfig `yaml:"self_metrics"`
	MonitorInterval time.Duration        `yaml:"monitor_interval"`
}

// RawSelfMetricsConfig controls pushbox's own /metrics endpoint
type RawSelfMetricsConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}
