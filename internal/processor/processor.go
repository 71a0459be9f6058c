// Package processor turns records into gauges and pushes them.
package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/neox5/pushbox/internal/binding"
	"github.com/neox5/pushbox/internal/config"
	"github.com/neox5/pushbox/internal/exporter"
	"github.com/neox5/pushbox/internal/metric"
	"github.com/neox5/pushbox/internal/record"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrEmptyInstance reports an instance expression that evaluated to "".
var ErrEmptyInstance = errors.New("instance evaluated to an empty string")

// Record outcomes, used as the outcome label of pushbox_records_total.
const (
	OutcomeSuccess      = "success"
	OutcomeBuildFailure = "build_failure"
	OutcomePushFailure  = "push_failure"
)

// GaugeProcessor builds one gauge per record and pushes it exactly once.
type GaugeProcessor struct {
	gauge    *Gauge
	pusher   exporter.Pusher
	job      string
	instance string
	evaluate binding.Evaluator
	stats    *Stats
}

// Process builds the gauge from rec and pushes it. Nothing is pushed when
// the build fails.
func (p *GaugeProcessor) Process(ctx context.Context, rec record.Record) error {
	gauge := p.gauge.Name()

	inst, grouping, err := p.build(rec)
	if err != nil {
		p.stats.observe(gauge, OutcomeBuildFailure)
		slog.Error("failed to build gauge", "gauge", gauge, "error", err)
		return fmt.Errorf("gauge %q: %w", gauge, err)
	}

	timer := prometheus.NewTimer(p.stats.pushDuration)
	err = p.pusher.Push(ctx, inst.Gatherer(), p.job, grouping)
	timer.ObserveDuration()
	if err != nil {
		p.stats.observe(gauge, OutcomePushFailure)
		slog.Error("failed to push gauge", "gauge", gauge, "metric", inst.Name(), "error", err)
		return fmt.Errorf("gauge %q: %w", gauge, err)
	}

	p.stats.observe(gauge, OutcomeSuccess)
	slog.Debug("pushed gauge", "gauge", gauge, "metric", inst.Name(), "job", p.job, "grouping", grouping)
	return nil
}

func (p *GaugeProcessor) build(rec record.Record) (*metric.Instance, map[string]string, error) {
	instance, err := p.evaluate(p.instance, rec.Attributes)
	if err != nil {
		return nil, nil, fmt.Errorf("instance: %w", err)
	}
	if instance == "" {
		return nil, nil, ErrEmptyInstance
	}

	inst, err := p.gauge.Build(rec)
	if err != nil {
		return nil, nil, err
	}
	return inst, metric.GroupingKey(instance), nil
}

// Processor fans each record out to every configured gauge.
// It implements record.Handler.
type Processor struct {
	gauges []*GaugeProcessor
	stats  *Stats
}

// New compiles every gauge of cfg. Status metrics are registered with reg.
func New(cfg *config.Config, pusher exporter.Pusher, reg prometheus.Registerer) (*Processor, error) {
	stats, err := NewStats(reg)
	if err != nil {
		return nil, err
	}

	p := &Processor{stats: stats}
	for _, gc := range cfg.Gauges {
		g, err := NewGauge(gc, binding.Evaluate)
		if err != nil {
			return nil, err
		}
		p.gauges = append(p.gauges, &GaugeProcessor{
			gauge:    g,
			pusher:   pusher,
			job:      cfg.Pushgateway.Job,
			instance: cfg.Pushgateway.Instance,
			evaluate: binding.Evaluate,
			stats:    stats,
		})
		slog.Debug("compiled gauge", "gauge", gc.Name, "labels", gc.Labels, "source", gc.Source)
	}

	return p, nil
}

// Handle processes rec for every gauge. Gauges are independent; all
// failures are joined into the returned error.
func (p *Processor) Handle(ctx context.Context, rec record.Record) error {
	var errs []error
	for _, g := range p.gauges {
		if err := g.Process(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Stats returns the processor counters.
func (p *Processor) Stats() *Stats {
	return p.stats
}
