package config

import (
	"log/slog"

	"github.com/shirou/gopsutil/v4/host"
)

// lookupHostname provides the default grouping instance.
var lookupHostname = func() (string, error) {
	info, err := host.Info()
	if err != nil {
		return "", err
	}
	return info.Hostname, nil
}

// Resolve applies defaults and builds the final config.
// Problems are reported by Validate, not here.
func Resolve(raw *RawConfig) *Config {
	gauges := make([]GaugeConfig, 0, len(raw.Gauges))
	for i := range raw.Gauges {
		gauges = append(gauges, resolveGauge(&raw.Gauges[i]))
	}

	cfg := &Config{
		Pushgateway: resolvePushgateway(&raw.Pushgateway),
		Export:      resolveExport(&raw.Export),
		Gauges:      gauges,
		Sources:     resolveSources(&raw.Sources),
		Reporting:   resolveReporting(&raw.Reporting),
		Settings:    resolveSettings(&raw.Settings),
	}

	slog.Debug("resolved config",
		"gauges", len(cfg.Gauges),
		"transport", cfg.Export.Transport,
		"instance", cfg.Pushgateway.Instance)

	return cfg
}

func resolvePushgateway(raw *RawPushgatewayConfig) PushgatewayConfig {
	p := PushgatewayConfig{
		Host:     raw.Host,
		Port:     raw.Port,
		Instance: raw.Instance,
		Job:      raw.Job,
		Timeout:  raw.Timeout,
	}

	if p.Port == 0 {
		p.Port = DefaultPushgatewayPort
	}
	if p.Job == "" {
		p.Job = DefaultJob
	}
	if p.Timeout == 0 {
		p.Timeout = DefaultPushTimeout
	}
	if p.Instance == "" {
		name, err := lookupHostname()
		if err != nil {
			slog.Warn("failed to determine host name for instance", "error", err)
		}
		p.Instance = name
	}

	return p
}

func resolveReporting(raw *RawReportingConfig) ReportingConfig {
	r := ReportingConfig{
		Enabled:  raw.Enabled,
		Interval: raw.Interval,
		Job:      raw.Job,
		Runtime:  true,
		Status:   true,
	}

	if r.Interval == 0 {
		r.Interval = DefaultReportingInterval
	}
	if r.Job == "" {
		r.Job = DefaultReportingJob
	}
	if raw.Runtime != nil {
		r.Runtime = *raw.Runtime
	}
	if raw.Status != nil {
		r.Status = *raw.Status
	}

	return r
}
