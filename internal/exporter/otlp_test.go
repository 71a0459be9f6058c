package exporter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neox5/pushbox/internal/config"
	"github.com/neox5/pushbox/internal/metric"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type fakeExporter struct {
	exported []*metricdata.ResourceMetrics
	err      error
	shutdown bool
}

func (f *fakeExporter) Export(_ context.Context, rm *metricdata.ResourceMetrics) error {
	f.exported = append(f.exported, rm)
	return f.err
}

func (f *fakeExporter) Shutdown(context.Context) error {
	f.shutdown = true
	return nil
}

func TestOTLPPusherPush(t *testing.T) {
	exp := &fakeExporter{}
	p := newOTLPPusher(exp, map[string]string{"service.name": "pushbox"}, time.Second)

	err := p.Push(context.Background(), buildExample(t).Gatherer(), "global", metric.GroupingKey("localhost"))
	require.NoError(t, err)
	require.Len(t, exp.exported, 1)

	rm := exp.exported[0]
	res := rm.Resource.Set()
	v, ok := res.Value(attribute.Key(JobAttribute))
	require.True(t, ok)
	assert.Equal(t, "global", v.AsString())
	v, ok = res.Value(attribute.Key(metric.GroupingKeyInstance))
	require.True(t, ok)
	assert.Equal(t, "localhost", v.AsString())
	v, ok = res.Value("service.name")
	require.True(t, ok)
	assert.Equal(t, "pushbox", v.AsString())

	require.Len(t, rm.ScopeMetrics, 1)
	require.Len(t, rm.ScopeMetrics[0].Metrics, 1)
	m := rm.ScopeMetrics[0].Metrics[0]
	assert.Equal(t, "metric", m.Name)
	assert.Equal(t, "help", m.Description)

	gauge, ok := m.Data.(metricdata.Gauge[float64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 2)
	for _, dp := range gauge.DataPoints {
		assert.Equal(t, 42.0, dp.Value)
		appID, ok := dp.Attributes.Value("appId")
		require.True(t, ok)
		assert.Equal(t, "1", appID.AsString())
	}
}

func TestOTLPPusherFailure(t *testing.T) {
	exp := &fakeExporter{err: errors.New("collector down")}
	p := newOTLPPusher(exp, nil, time.Second)

	err := p.Push(context.Background(), buildExample(t).Gatherer(), "global", nil)
	assert.ErrorIs(t, err, ErrPushFailed)
	assert.Len(t, exp.exported, 1)

	require.NoError(t, p.Shutdown(context.Background()))
	assert.True(t, exp.shutdown)
}

func TestConvertFamilies(t *testing.T) {
	reg := prometheus.NewRegistry()

	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "records_total", Help: "records"}, []string{"outcome"})
	counter.WithLabelValues("success").Add(3)
	hist := prometheus.NewHistogram(prometheus.HistogramOpts{Name: "latency_seconds", Help: "latency", Buckets: []float64{0.1, 1}})
	hist.Observe(0.05)
	hist.Observe(0.5)
	hist.Observe(5)
	summary := prometheus.NewSummary(prometheus.SummaryOpts{Name: "skipped", Help: "no mapping"})
	summary.Observe(1)
	reg.MustRegister(counter, hist, summary)

	families, err := reg.Gather()
	require.NoError(t, err)

	start := time.Unix(100, 0)
	now := time.Unix(200, 0)
	metrics := convertFamilies(families, start, now)
	require.Len(t, metrics, 2)

	byName := make(map[string]metricdata.Metrics)
	for _, m := range metrics {
		byName[m.Name] = m
	}

	sum, ok := byName["records_total"].Data.(metricdata.Sum[float64])
	require.True(t, ok)
	assert.True(t, sum.IsMonotonic)
	assert.Equal(t, metricdata.CumulativeTemporality, sum.Temporality)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, 3.0, sum.DataPoints[0].Value)
	assert.Equal(t, start, sum.DataPoints[0].StartTime)

	h, ok := byName["latency_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, h.DataPoints, 1)
	dp := h.DataPoints[0]
	assert.Equal(t, uint64(3), dp.Count)
	assert.Equal(t, []float64{0.1, 1}, dp.Bounds)
	assert.Equal(t, []uint64{1, 1, 1}, dp.BucketCounts)
	assert.InDelta(t, 5.55, dp.Sum, 1e-9)
}

func TestNewSelectsTransport(t *testing.T) {
	cfg := &config.Config{
		Pushgateway: config.PushgatewayConfig{Host: "localhost", Port: 9091, Timeout: time.Second},
		Export:      config.ExportConfig{Transport: config.TransportPushgateway},
	}

	p, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &PushgatewayPusher{}, p)

	cfg.Export = config.ExportConfig{
		Transport: config.TransportOTLP,
		OTLP:      &config.OTLPConfig{Protocol: config.ProtocolHTTP, Host: "localhost", Port: 4318},
	}
	p, err = New(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &OTLPPusher{}, p)

	cfg.Export = config.ExportConfig{Transport: "smoke"}
	_, err = New(context.Background(), cfg)
	assert.Error(t, err)
}
