// Package config loads, resolves and validates the pushbox YAML configuration.
package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	// Pushgateway defaults
	DefaultPushgatewayPort = 9091
	DefaultJob             = "global"
	DefaultPushTimeout     = 10 * time.Second

	// Reporting defaults
	DefaultReportingInterval = 1 * time.Minute
	DefaultReportingJob      = "pushbox_report"
)

// Config holds the complete application configuration.
type Config struct {
	Pushgateway PushgatewayConfig
	Export      ExportConfig
	Gauges      []GaugeConfig
	Sources     SourcesConfig
	Reporting   ReportingConfig
	Settings    SettingsConfig
}

// PushgatewayConfig defines the push target and the grouping defaults.
type PushgatewayConfig struct {
	Host     string
	Port     int
	Instance string
	Job      string
	Timeout  time.Duration
}

// URL returns the Pushgateway base URL. A host that already carries a
// scheme is used as is.
func (p PushgatewayConfig) URL() string {
	if strings.HasPrefix(p.Host, "http://") || strings.HasPrefix(p.Host, "https://") {
		return fmt.Sprintf("%s:%d", strings.TrimSuffix(p.Host, "/"), p.Port)
	}
	return fmt.Sprintf("http://%s:%d", p.Host, p.Port)
}

// ReportingConfig controls the periodic push of pushbox's own metrics.
type ReportingConfig struct {
	Enabled  bool
	Interval time.Duration
	Job      string
	Runtime  bool
	Status   bool
}
