package config

// RawExportConfig selects the push transport
type RawExportConfig struct {
	Transport string         `yaml:"transport"`
	OTLP      *RawOTLPConfig `yaml:"otlp,omitempty"`
}

// RawOTLPConfig defines OTLP push settings
type RawOTLPConfig struct {
	Protocol string            `yaml:"protocol"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	Resource map[string]string `yaml:"resource,omitempty"`
	Headers  map[string]string `yaml:"headers,omitempty"`
}
