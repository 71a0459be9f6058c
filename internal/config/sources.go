package config

import "slices"

const (
	DefaultFilePath       = "-"
	DefaultHTTPSourcePort = 8080
	DefaultHTTPSourcePath = "/records"
	DefaultMQTTBroker     = "tcp://localhost:1883"
	DefaultMQTTTopic      = "records/#"
	DefaultMQTTClientID   = "pushbox"
	DefaultMQTTQoS        = 1
	DefaultKafkaBroker    = "localhost:9092"
	DefaultKafkaTopic     = "records"
	DefaultKafkaGroup     = "pushbox"
)

// SourcesConfig holds every record source.
type SourcesConfig struct {
	File  FileSourceConfig
	HTTP  HTTPSourceConfig
	MQTT  MQTTSourceConfig
	Kafka KafkaSourceConfig
}

// AnyEnabled reports whether at least one source is enabled.
func (s SourcesConfig) AnyEnabled() bool {
	return s.File.Enabled || s.HTTP.Enabled || s.MQTT.Enabled || s.Kafka.Enabled
}

// FileSourceConfig reads JSON lines; Path "-" is stdin.
type FileSourceConfig struct {
	Enabled bool
	Path    string
}

// HTTPSourceConfig accepts records over HTTP.
type HTTPSourceConfig struct {
	Enabled bool
	Port    int
	Path    string
}

// MQTTSourceConfig subscribes to a topic filter.
type MQTTSourceConfig struct {
	Enabled  bool
	Broker   string
	Topic    string
	ClientID string
	QoS      byte
}

// KafkaSourceConfig consumes topics as a consumer group.
type KafkaSourceConfig struct {
	Enabled bool
	Brokers []string
	Topics  []string
	Group   string
}

func resolveSources(raw *RawSourcesConfig) SourcesConfig {
	s := SourcesConfig{
		File: FileSourceConfig{
			Enabled: raw.File.Enabled,
			Path:    raw.File.Path,
		},
		HTTP: HTTPSourceConfig{
			Enabled: raw.HTTP.Enabled,
			Port:    raw.HTTP.Port,
			Path:    raw.HTTP.Path,
		},
		MQTT: MQTTSourceConfig{
			Enabled:  raw.MQTT.Enabled,
			Broker:   raw.MQTT.Broker,
			Topic:    raw.MQTT.Topic,
			ClientID: raw.MQTT.ClientID,
			QoS:      DefaultMQTTQoS,
		},
		Kafka: KafkaSourceConfig{
			Enabled: raw.Kafka.Enabled,
			Brokers: slices.Clone(raw.Kafka.Brokers),
			Topics:  slices.Clone(raw.Kafka.Topics),
			Group:   raw.Kafka.Group,
		},
	}

	if s.File.Path == "" {
		s.File.Path = DefaultFilePath
	}
	if s.HTTP.Port == 0 {
		s.HTTP.Port = DefaultHTTPSourcePort
	}
	if s.HTTP.Path == "" {
		s.HTTP.Path = DefaultHTTPSourcePath
	}
	if s.MQTT.Broker == "" {
		s.MQTT.Broker = DefaultMQTTBroker
	}
	if s.MQTT.Topic == "" {
		s.MQTT.Topic = DefaultMQTTTopic
	}
	if s.MQTT.ClientID == "" {
		s.MQTT.ClientID = DefaultMQTTClientID
	}
	if raw.MQTT.QoS != nil {
		s.MQTT.QoS = byte(*raw.MQTT.QoS)
	}
	if len(s.Kafka.Brokers) == 0 {
		s.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if len(s.Kafka.Topics) == 0 {
		s.Kafka.Topics = []string{DefaultKafkaTopic}
	}
	if s.Kafka.Group == "" {
		s.Kafka.Group = DefaultKafkaGroup
	}

	return s
}
