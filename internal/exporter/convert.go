package exporter

import (
	"log/slog"
	"math"
	"time"

	"github.com/neox5/pushbox/internal/version"
	dto "github.com/prometheus/client_model/go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/instrumentation"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

var scope = instrumentation.Scope{
	Name:    "github.com/neox5/pushbox",
	Version: version.Version,
}

// convertFamilies maps gathered Prometheus families to OTLP metrics.
// Summaries have no OTLP counterpart here and are skipped.
func convertFamilies(families []*dto.MetricFamily, start, now time.Time) []metricdata.Metrics {
	out := make([]metricdata.Metrics, 0, len(families))

	for _, mf := range families {
		m := metricdata.Metrics{
			Name:        mf.GetName(),
			Description: mf.GetHelp(),
		}

		switch mf.GetType() {
		case dto.MetricType_GAUGE, dto.MetricType_UNTYPED:
			m.Data = metricdata.Gauge[float64]{DataPoints: gaugePoints(mf, now)}
		case dto.MetricType_COUNTER:
			m.Data = metricdata.Sum[float64]{
				DataPoints:  counterPoints(mf, start, now),
				Temporality: metricdata.CumulativeTemporality,
				IsMonotonic: true,
			}
		case dto.MetricType_HISTOGRAM:
			m.Data = metricdata.Histogram[float64]{
				DataPoints:  histogramPoints(mf, start, now),
				Temporality: metricdata.CumulativeTemporality,
			}
		default:
			slog.Debug("skipping metric family without otlp mapping", "name", mf.GetName(), "type", mf.GetType())
			continue
		}

		out = append(out, m)
	}

	return out
}

func gaugePoints(mf *dto.MetricFamily, now time.Time) []metricdata.DataPoint[float64] {
	points := make([]metricdata.DataPoint[float64], 0, len(mf.GetMetric()))
	for _, m := range mf.GetMetric() {
		v := m.GetGauge().GetValue()
		if mf.GetType() == dto.MetricType_UNTYPED {
			v = m.GetUntyped().GetValue()
		}
		points = append(points, metricdata.DataPoint[float64]{
			Attributes: labelSet(m.GetLabel()),
			Time:       now,
			Value:      v,
		})
	}
	return points
}

func counterPoints(mf *dto.MetricFamily, start, now time.Time) []metricdata.DataPoint[float64] {
	points := make([]metricdata.DataPoint[float64], 0, len(mf.GetMetric()))
	for _, m := range mf.GetMetric() {
		points = append(points, metricdata.DataPoint[float64]{
			Attributes: labelSet(m.GetLabel()),
			StartTime:  start,
			Time:       now,
			Value:      m.GetCounter().GetValue(),
		})
	}
	return points
}

// histogramPoints turns cumulative Prometheus buckets into OTLP
// per-bucket counts; the overflow bucket absorbs the remaining samples.
func histogramPoints(mf *dto.MetricFamily, start, now time.Time) []metricdata.HistogramDataPoint[float64] {
	points := make([]metricdata.HistogramDataPoint[float64], 0, len(mf.GetMetric()))
	for _, m := range mf.GetMetric() {
		h := m.GetHistogram()

		var bounds []float64
		var counts []uint64
		var prev uint64
		for _, b := range h.GetBucket() {
			if math.IsInf(b.GetUpperBound(), +1) {
				continue
			}
			bounds = append(bounds, b.GetUpperBound())
			counts = append(counts, b.GetCumulativeCount()-prev)
			prev = b.GetCumulativeCount()
		}
		counts = append(counts, h.GetSampleCount()-prev)

		points = append(points, metricdata.HistogramDataPoint[float64]{
			Attributes:   labelSet(m.GetLabel()),
			StartTime:    start,
			Time:         now,
			Count:        h.GetSampleCount(),
			Bounds:       bounds,
			BucketCounts: counts,
			Sum:          h.GetSampleSum(),
		})
	}
	return points
}

func labelSet(pairs []*dto.LabelPair) attribute.Set {
	kvs := make([]attribute.KeyValue, 0, len(pairs))
	for _, lp := range pairs {
		kvs = append(kvs, attribute.String(lp.GetName(), lp.GetValue()))
	}
	return attribute.NewSet(kvs...)
}
