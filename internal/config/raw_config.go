package config

import (
	"fmt"
	"strconv"
	"time"

	"go.yaml.in/yaml/v4"
)

// RawConfig represents unparsed YAML structure
type RawConfig struct {
	Pushgateway RawPushgatewayConfig `yaml:"pushgateway"`
	Export      RawExportConfig      `yaml:"export"`
	Gauges      []RawGaugeConfig     `yaml:"gauges"`
	Sources     RawSourcesConfig     `yaml:"sources"`
	Reporting   RawReportingConfig   `yaml:"reporting"`
	Settings    RawSettingsConfig    `yaml:"settings"`
}

// RawPushgatewayConfig holds the push target and grouping defaults
type RawPushgatewayConfig struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Instance string        `yaml:"instance"`
	Job      string        `yaml:"job"`
	Timeout  time.Duration `yaml:"timeout"`
}

// RawGaugeConfig declares one gauge
type RawGaugeConfig struct {
	Name     string      `yaml:"name"`
	Help     string      `yaml:"help"`
	Value    string      `yaml:"value"`
	Labels   string      `yaml:"labels"`
	Source   string      `yaml:"source"`
	Bindings RawBindings `yaml:"bindings"`
}

// RawBindings holds binding templates by key.
// Accepts a mapping or a sequence; sequence keys are 1-based positions.
type RawBindings map[string]string

// UnmarshalYAML handles both mapping and sequence forms
func (b *RawBindings) UnmarshalYAML(value *yaml.Node) error {
	// Try sequence form first (short form)
	var list []string
	if err := value.Decode(&list); err == nil {
		out := make(RawBindings, len(list))
		for i, line := range list {
			out[strconv.Itoa(i+1)] = line
		}
		*b = out
		return nil
	}

	// Fall back to mapping form
	var mapping map[string]string
	if err := value.Decode(&mapping); err != nil {
		return fmt.Errorf("bindings must be a mapping or a sequence of strings: %w", err)
	}
	*b = mapping
	return nil
}

// RawSourcesConfig holds record source settings
type RawSourcesConfig struct {
	File  RawFileSourceConfig  `yaml:"file"`
	HTTP  RawHTTPSourceConfig  `yaml:"http"`
	MQTT  RawMQTTSourceConfig  `yaml:"mqtt"`
	Kafka RawKafkaSourceConfig `yaml:"kafka"`
}

// RawFileSourceConfig reads JSON lines from a file or stdin
type RawFileSourceConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// RawHTTPSourceConfig accepts records over HTTP
type RawHTTPSourceConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// RawMQTTSourceConfig subscribes to an MQTT topic
type RawMQTTSourceConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
	QoS      *int   `yaml:"qos,omitempty"`
}

// RawKafkaSourceConfig consumes Kafka topics as a consumer group
type RawKafkaSourceConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topics  []string `yaml:"topics"`
	Group   string   `yaml:"group"`
}

// RawReportingConfig controls the periodic report push
type RawReportingConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	Job      string        `yaml:"job"`
	Runtime  *bool         `yaml:"runtime,omitempty"`
	Status   *bool         `yaml:"status,omitempty"`
}
