package processor

import (
	"fmt"
	"strconv"

	"github.com/neox5/pushbox/internal/binding"
	"github.com/neox5/pushbox/internal/config"
	"github.com/neox5/pushbox/internal/metric"
	"github.com/neox5/pushbox/internal/record"
)

// Gauge is the compiled, read-only form of a gauge declaration.
type Gauge struct {
	cfg      config.GaugeConfig
	schema   metric.LabelSchema
	resolver *binding.Resolver
	evaluate binding.Evaluator
}

// NewGauge compiles cfg. A nil evaluate uses binding.Evaluate.
func NewGauge(cfg config.GaugeConfig, evaluate binding.Evaluator) (*Gauge, error) {
	schema, err := metric.ParseLabelSchema(cfg.Labels)
	if err != nil {
		return nil, fmt.Errorf("gauge %q: %w", cfg.Name, err)
	}
	if evaluate == nil {
		evaluate = binding.Evaluate
	}

	return &Gauge{
		cfg:      cfg,
		schema:   schema,
		resolver: binding.NewResolver(schema, binding.NewSet(cfg.Bindings), evaluate),
		evaluate: evaluate,
	}, nil
}

// Name returns the declared, unevaluated metric name.
func (g *Gauge) Name() string {
	return g.cfg.Name
}

// Build evaluates the gauge against rec and assembles a fresh instance.
func (g *Gauge) Build(rec record.Record) (*metric.Instance, error) {
	name, err := g.evaluate(g.cfg.Name, rec.Attributes)
	if err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	if err := metric.ValidateMetricName(name); err != nil {
		return nil, err
	}

	if g.schema.IsEmpty() {
		raw, err := g.evaluate(g.cfg.Value, rec.Attributes)
		if err != nil {
			return nil, fmt.Errorf("value: %w", err)
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: value %q", metric.ErrNotANumber, raw)
		}
		return metric.BuildScalar(name, g.cfg.Help, value)
	}

	var tuples []metric.ValueTuple
	if g.cfg.Source == config.ValueSourceContent {
		tuples, err = g.resolver.ResolveLines(rec.Body)
	} else {
		tuples, err = g.resolver.Resolve(rec.Attributes)
	}
	if err != nil {
		return nil, err
	}

	return metric.Build(name, g.cfg.Help, g.schema, tuples)
}
