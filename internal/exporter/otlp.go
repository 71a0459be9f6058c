package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neox5/pushbox/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
)

// JobAttribute carries the push job as a resource attribute.
const JobAttribute = "job"

// metricExporter is the subset of the OTLP exporters used here.
type metricExporter interface {
	Export(ctx context.Context, rm *metricdata.ResourceMetrics) error
	Shutdown(ctx context.Context) error
}

// OTLPPusher converts gathered families to OTLP and exports them in one
// request per push.
type OTLPPusher struct {
	exporter metricExporter
	resource map[string]string
	timeout  time.Duration
	start    time.Time
}

// NewOTLPPusher creates an OTLP pusher for the configured protocol.
func NewOTLPPusher(ctx context.Context, cfg *config.OTLPConfig, timeout time.Duration) (*OTLPPusher, error) {
	exp, err := createMetricExporter(ctx, cfg, timeout)
	if err != nil {
		return nil, err
	}
	return newOTLPPusher(exp, cfg.Resource, timeout), nil
}

func newOTLPPusher(exp metricExporter, res map[string]string, timeout time.Duration) *OTLPPusher {
	return &OTLPPusher{
		exporter: exp,
		resource: res,
		timeout:  timeout,
		start:    time.Now(),
	}
}

// createMetricExporter creates an OTLP exporter for grpc or http.
func createMetricExporter(ctx context.Context, cfg *config.OTLPConfig, timeout time.Duration) (metricExporter, error) {
	switch cfg.Protocol {
	case config.ProtocolGRPC:
		opts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(cfg.Endpoint()),
			otlpmetricgrpc.WithInsecure(),
			otlpmetricgrpc.WithTimeout(timeout),
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlpmetricgrpc.WithHeaders(cfg.Headers))
		}
		exp, err := otlpmetricgrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP grpc exporter: %w", err)
		}
		return exp, nil

	case config.ProtocolHTTP:
		opts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(cfg.Endpoint()),
			otlpmetrichttp.WithInsecure(),
			otlpmetrichttp.WithTimeout(timeout),
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlpmetrichttp.WithHeaders(cfg.Headers))
		}
		exp, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP http exporter: %w", err)
		}
		return exp, nil

	default:
		return nil, fmt.Errorf("invalid protocol: %s (must be grpc or http)", cfg.Protocol)
	}
}

// Push gathers g and exports it. job and grouping become resource attributes.
func (p *OTLPPusher) Push(ctx context.Context, g prometheus.Gatherer, job string, grouping map[string]string) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("%w: gather: %w", ErrPushFailed, err)
	}

	rm := &metricdata.ResourceMetrics{
		Resource: p.createResource(job, grouping),
		ScopeMetrics: []metricdata.ScopeMetrics{{
			Scope:   scope,
			Metrics: convertFamilies(families, p.start, time.Now()),
		}},
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if err := p.exporter.Export(ctx, rm); err != nil {
		return fmt.Errorf("%w: otlp job %q: %w", ErrPushFailed, job, err)
	}

	slog.Debug("pushed to otlp collector", "job", job, "metrics", len(rm.ScopeMetrics[0].Metrics))
	return nil
}

// Shutdown flushes and closes the underlying exporter.
func (p *OTLPPusher) Shutdown(ctx context.Context) error {
	slog.Info("shutting down otlp exporter")
	return p.exporter.Shutdown(ctx)
}

// createResource merges configured attributes with job and grouping labels.
func (p *OTLPPusher) createResource(job string, grouping map[string]string) *resource.Resource {
	attrs := make([]attribute.KeyValue, 0, len(p.resource)+len(grouping)+1)
	for k, v := range p.resource {
		attrs = append(attrs, attribute.String(k, v))
	}
	attrs = append(attrs, attribute.String(JobAttribute, job))
	for k, v := range grouping {
		attrs = append(attrs, attribute.String(k, v))
	}
	return resource.NewSchemaless(attrs...)
}
