package metric

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Instance is a gauge assembled for a single trigger. It owns a registry
// that is never shared with another trigger.
type Instance struct {
	name     string
	help     string
	schema   LabelSchema
	registry *prometheus.Registry
}

// BuildScalar registers an unlabeled gauge holding value.
func BuildScalar(name, help string, value float64) (*Instance, error) {
	if err := ValidateMetricName(name); err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: help,
	})
	if err := reg.Register(gauge); err != nil {
		return nil, fmt.Errorf("failed to register gauge %q: %w", name, err)
	}
	gauge.Set(value)

	return &Instance{name: name, help: help, registry: reg}, nil
}

// Build registers a labeled gauge and sets one sample per tuple.
// Tuples sharing a label vector overwrite each other; the last one wins.
func Build(name, help string, schema LabelSchema, tuples []ValueTuple) (*Instance, error) {
	if err := ValidateMetricName(name); err != nil {
		return nil, err
	}
	if schema.IsEmpty() {
		return nil, fmt.Errorf("gauge %q: labeled build requires at least one label", name)
	}

	reg := prometheus.NewRegistry()
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: name,
		Help: help,
	}, schema.Names())
	if err := reg.Register(vec); err != nil {
		return nil, fmt.Errorf("failed to register gauge %q: %w", name, err)
	}

	for _, t := range tuples {
		if len(t.LabelValues) != schema.Size() {
			return nil, fmt.Errorf("%w: gauge %q has %d label(s), tuple has %d value(s)",
				ErrArityMismatch, name, schema.Size(), len(t.LabelValues))
		}
		gauge, err := vec.GetMetricWithLabelValues(t.LabelValues...)
		if err != nil {
			return nil, fmt.Errorf("gauge %q: %w", name, err)
		}
		gauge.Set(t.Value)
	}

	return &Instance{name: name, help: help, schema: schema, registry: reg}, nil
}

// Name returns the metric name.
func (i *Instance) Name() string { return i.name }

// Help returns the metric help text.
func (i *Instance) Help() string { return i.help }

// Schema returns the label schema (empty for scalar gauges).
func (i *Instance) Schema() LabelSchema { return i.schema }

// Gatherer exposes the instance registry to a push transport.
func (i *Instance) Gatherer() prometheus.Gatherer { return i.registry }

// SampleValue returns the value of the sample whose label values match
// labelValues in schema order.
func (i *Instance) SampleValue(labelValues ...string) (float64, bool) {
	if len(labelValues) != i.schema.Size() {
		return 0, false
	}

	mfs, err := i.registry.Gather()
	if err != nil {
		return 0, false
	}

	for _, mf := range mfs {
		if mf.GetName() != i.name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if i.matches(m, labelValues) {
				return m.GetGauge().GetValue(), true
			}
		}
	}
	return 0, false
}

// matches compares gathered labels (sorted by name) against schema order.
func (i *Instance) matches(m *dto.Metric, labelValues []string) bool {
	got := make(map[string]string, len(m.GetLabel()))
	for _, lp := range m.GetLabel() {
		got[lp.GetName()] = lp.GetValue()
	}
	for idx, name := range i.schema.names {
		if got[name] != labelValues[idx] {
			return false
		}
	}
	return true
}
