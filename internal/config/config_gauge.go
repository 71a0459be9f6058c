package config

import "maps"

// ValueSource selects where labeled gauge values come from.
type ValueSource string

const (
	// ValueSourceAttribute evaluates the declared bindings against record attributes
	ValueSourceAttribute ValueSource = "attribute"

	// ValueSourceContent reads one value line per record body line
	ValueSourceContent ValueSource = "content"
)

// GaugeConfig declares one gauge produced for every record.
type GaugeConfig struct {
	Name     string
	Help     string
	Value    string
	Labels   string
	Source   ValueSource
	Bindings map[string]string
}

// IsScalar reports whether the gauge has no labels.
func (g GaugeConfig) IsScalar() bool {
	return g.Labels == ""
}

// Subject identifies the gauge in diagnostics and logs.
func (g GaugeConfig) Subject() string {
	if g.Name == "" {
		return "gauge <unnamed>"
	}
	return "gauge " + g.Name
}

func resolveGauge(raw *RawGaugeConfig) GaugeConfig {
	g := GaugeConfig{
		Name:   raw.Name,
		Help:   raw.Help,
		Value:  raw.Value,
		Labels: raw.Labels,
		Source: ValueSource(raw.Source),
	}
	if len(raw.Bindings) > 0 {
		g.Bindings = make(map[string]string, len(raw.Bindings))
		maps.Copy(g.Bindings, raw.Bindings)
	}
	return g
}
