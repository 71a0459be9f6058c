package config

import (
	"fmt"
)

// Load reads, resolves and validates a YAML configuration file.
// Validation problems are returned together as a *ValidationError.
func Load(path string) (*Config, error) {
	raw, err := Parse(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return build(raw)
}

// LoadBytes is Load for in-memory content.
func LoadBytes(data []byte) (*Config, error) {
	raw, err := ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return build(raw)
}

func build(raw *RawConfig) (*Config, error) {
	cfg := Resolve(raw)
	if diags := Validate(cfg); len(diags) > 0 {
		return nil, &ValidationError{Diagnostics: diags}
	}
	return cfg, nil
}
