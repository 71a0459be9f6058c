package config

import "time"

const (
	DefaultSelfMetricsPort = 9090
	DefaultSelfMetricsPath = "/metrics"
)

// SettingsConfig holds general application settings.
type SettingsConfig struct {
	SelfMetrics SelfMetricsConfig

	// MonitorInterval is the resource monitor period; zero disables it.
	MonitorInterval time.Duration
}

// SelfMetricsConfig controls pushbox's own /metrics endpoint.
type SelfMetricsConfig struct {
	Enabled bool
	Port    int
	Path    string
}

func resolveSettings(raw *RawSettingsConfig) SettingsConfig {
	s := SettingsConfig{
		SelfMetrics: SelfMetricsConfig{
			Enabled: true,
			Port:    raw.SelfMetrics.Port,
			Path:    raw.SelfMetrics.Path,
		},
		MonitorInterval: raw.MonitorInterval,
	}
	if raw.SelfMetrics.Enabled != nil {
		s.SelfMetrics.Enabled = *raw.SelfMetrics.Enabled
	}
	if s.SelfMetrics.Port == 0 {
		s.SelfMetrics.Port = DefaultSelfMetricsPort
	}
	if s.SelfMetrics.Path == "" {
		s.SelfMetrics.Path = DefaultSelfMetricsPath
	}
	return s
}
