package config

import (
	"strings"

	"github.com/neox5/pushbox/internal/binding"
)

// Validate checks a resolved config and returns every problem found.
func Validate(cfg *Config) []Diagnostic {
	var diags []Diagnostic

	diags = append(diags, validatePushgateway(cfg.Pushgateway)...)
	diags = append(diags, validateExport(cfg.Export)...)

	if len(cfg.Gauges) == 0 {
		diags = append(diags, invalid(KindMissingField, "gauges", "at least one gauge must be defined"))
	}
	for _, g := range cfg.Gauges {
		diags = append(diags, validateGauge(g)...)
	}

	diags = append(diags, validateSourceSettings(cfg.Sources)...)
	diags = append(diags, validateReporting(cfg.Reporting)...)
	diags = append(diags, validateSettings(cfg.Settings)...)

	return diags
}

// ValidateSources requires at least one enabled record source.
func ValidateSources(cfg *Config) []Diagnostic {
	if cfg.Sources.AnyEnabled() {
		return nil
	}
	return []Diagnostic{
		invalid(KindNoSourceEnabled, "sources", "at least one of file, http, mqtt or kafka must be enabled"),
	}
}

func validatePushgateway(p PushgatewayConfig) []Diagnostic {
	const subject = "pushgateway"
	var diags []Diagnostic

	if isBlank(p.Host) {
		diags = append(diags, invalid(KindMissingField, subject, "host cannot be empty"))
	}
	if !validPort(p.Port) {
		diags = append(diags, invalid(KindInvalidValue, subject, "invalid port: %d", p.Port))
	}
	if isBlank(p.Job) {
		diags = append(diags, invalid(KindMissingField, subject, "job cannot be empty"))
	}
	if isBlank(p.Instance) {
		diags = append(diags, invalid(KindMissingField, subject, "instance cannot be empty"))
	} else if err := binding.CheckExpression(p.Instance); err != nil {
		diags = append(diags, invalid(KindInvalidExpression, subject, "instance: %v", err))
	}
	if p.Timeout <= 0 {
		diags = append(diags, invalid(KindInvalidValue, subject, "timeout must be positive"))
	}

	return diags
}

func validateExport(e ExportConfig) []Diagnostic {
	const subject = "export"

	switch e.Transport {
	case TransportPushgateway:
		return nil
	case TransportOTLP:
	default:
		return []Diagnostic{
			invalid(KindInvalidValue, subject, "invalid transport: %s (must be pushgateway or otlp)", e.Transport),
		}
	}

	var diags []Diagnostic
	if e.OTLP.Protocol != ProtocolGRPC && e.OTLP.Protocol != ProtocolHTTP {
		diags = append(diags, invalid(KindInvalidValue, subject, "invalid otlp protocol: %s (must be grpc or http)", e.OTLP.Protocol))
	}
	if !validPort(e.OTLP.Port) {
		diags = append(diags, invalid(KindInvalidValue, subject, "invalid otlp port: %d", e.OTLP.Port))
	}
	return diags
}

func validateSourceSettings(s SourcesConfig) []Diagnostic {
	var diags []Diagnostic

	if s.HTTP.Enabled {
		if !validPort(s.HTTP.Port) {
			diags = append(diags, invalid(KindInvalidValue, "sources.http", "invalid port: %d", s.HTTP.Port))
		}
		if !strings.HasPrefix(s.HTTP.Path, "/") {
			diags = append(diags, invalid(KindInvalidValue, "sources.http", "path must start with /: %q", s.HTTP.Path))
		}
	}
	if s.MQTT.Enabled && s.MQTT.QoS > 2 {
		diags = append(diags, invalid(KindInvalidValue, "sources.mqtt", "qos must be 0, 1 or 2"))
	}
	if s.Kafka.Enabled && isBlank(s.Kafka.Group) {
		diags = append(diags, invalid(KindMissingField, "sources.kafka", "group cannot be empty"))
	}

	return diags
}

func validateReporting(r ReportingConfig) []Diagnostic {
	const subject = "reporting"
	if !r.Enabled {
		return nil
	}

	var diags []Diagnostic
	if !r.Runtime && !r.Status {
		diags = append(diags, invalid(KindInvalidValue, subject, "at least one of runtime or status must be enabled"))
	}
	if r.Interval <= 0 {
		diags = append(diags, invalid(KindInvalidValue, subject, "interval must be positive"))
	}
	if isBlank(r.Job) {
		diags = append(diags, invalid(KindMissingField, subject, "job cannot be empty"))
	}
	return diags
}

func validateSettings(s SettingsConfig) []Diagnostic {
	var diags []Diagnostic

	if s.SelfMetrics.Enabled && !validPort(s.SelfMetrics.Port) {
		diags = append(diags, invalid(KindInvalidValue, "settings.self_metrics", "invalid port: %d", s.SelfMetrics.Port))
	}
	if s.MonitorInterval < 0 {
		diags = append(diags, invalid(KindInvalidValue, "settings", "monitor_interval cannot be negative"))
	}

	return diags
}

func validPort(port int) bool {
	return port > 0 && port <= 65535
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
