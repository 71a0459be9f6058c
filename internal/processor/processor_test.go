package processor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"

	"github.com/neox5/pushbox/internal/binding"
	"github.com/neox5/pushbox/internal/config"
	"github.com/neox5/pushbox/internal/exporter"
	"github.com/neox5/pushbox/internal/metric"
	"github.com/neox5/pushbox/internal/record"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pushCall struct {
	families []*dto.MetricFamily
	job      string
	grouping map[string]string
}

// fakePusher gathers at push time so every call keeps its own snapshot.
type fakePusher struct {
	mu    sync.Mutex
	calls []pushCall
	err   error
}

func (f *fakePusher) Push(_ context.Context, g prometheus.Gatherer, job string, grouping map[string]string) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, pushCall{families: families, job: job, grouping: grouping})
	return f.err
}

func (f *fakePusher) all() []pushCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]pushCall(nil), f.calls...)
}

// samples flattens a pushed family into "label=value,...": value pairs.
func samples(mf *dto.MetricFamily) map[string]float64 {
	out := make(map[string]float64)
	for _, m := range mf.GetMetric() {
		key := ""
		for i, lp := range m.GetLabel() {
			if i > 0 {
				key += ","
			}
			key += lp.GetName() + "=" + lp.GetValue()
		}
		out[key] = m.GetGauge().GetValue()
	}
	return out
}

func newConfig(gauges ...config.GaugeConfig) *config.Config {
	return &config.Config{
		Pushgateway: config.PushgatewayConfig{Job: "global", Instance: "localhost"},
		Gauges:      gauges,
	}
}

var labeledGauge = config.GaugeConfig{
	Name:   "metric",
	Help:   "help",
	Labels: "method,appId",
	Source: config.ValueSourceAttribute,
	Bindings: map[string]string{
		"1": "get,${appId},${get_total}",
		"2": "post,${appId},${post_total}",
	},
}

func TestProcessAttributeBindings(t *testing.T) {
	pusher := &fakePusher{}
	p, err := New(newConfig(labeledGauge), pusher, prometheus.NewRegistry())
	require.NoError(t, err)

	err = p.Handle(context.Background(), record.Record{Attributes: map[string]string{
		"appId": "1", "get_total": "42.0", "post_total": "42.0",
	}})
	require.NoError(t, err)

	calls := pusher.all()
	require.Len(t, calls, 1)
	assert.Equal(t, "global", calls[0].job)
	assert.Equal(t, map[string]string{"instance": "localhost"}, calls[0].grouping)

	require.Len(t, calls[0].families, 1)
	mf := calls[0].families[0]
	assert.Equal(t, "metric", mf.GetName())
	assert.Equal(t, "help", mf.GetHelp())
	assert.Equal(t, map[string]float64{
		"appId=1,method=get":  42,
		"appId=1,method=post": 42,
	}, samples(mf))

	assert.Equal(t, uint64(1), p.Stats().Success())
	assert.Equal(t, 1.0, testutil.ToFloat64(p.Stats().records.WithLabelValues("metric", OutcomeSuccess)))
}

func TestProcessContentLines(t *testing.T) {
	pusher := &fakePusher{}
	p, err := New(newConfig(config.GaugeConfig{
		Name: "metric", Help: "help", Labels: "method,appId", Source: config.ValueSourceContent,
	}), pusher, nil)
	require.NoError(t, err)

	err = p.Handle(context.Background(), record.Record{Body: []byte("get,1,42.0\npost,1,42.0\n")})
	require.NoError(t, err)

	calls := pusher.all()
	require.Len(t, calls, 1)
	assert.Len(t, samples(calls[0].families[0]), 2)
}

func TestProcessScalarWithExpressions(t *testing.T) {
	pusher := &fakePusher{}
	cfg := newConfig(config.GaugeConfig{Name: "requests_${service}", Help: "requests", Value: "${count:-0}"})
	cfg.Pushgateway.Instance = "${host}"

	p, err := New(cfg, pusher, nil)
	require.NoError(t, err)

	require.NoError(t, p.Handle(context.Background(), record.Record{Attributes: map[string]string{
		"service": "api", "count": "17", "host": "node-3",
	}}))

	calls := pusher.all()
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]string{"instance": "node-3"}, calls[0].grouping)
	assert.Equal(t, "requests_api", calls[0].families[0].GetName())
	assert.Equal(t, map[string]float64{"": 17}, samples(calls[0].families[0]))
}

func TestProcessBuildFailureNeverPushes(t *testing.T) {
	tests := []struct {
		name    string
		gauge   config.GaugeConfig
		rec     record.Record
		wantErr error
	}{
		{
			name:    "empty body",
			gauge:   config.GaugeConfig{Name: "m", Help: "h", Labels: "a", Source: config.ValueSourceContent},
			rec:     record.Record{},
			wantErr: metric.ErrEmptyBody,
		},
		{
			name:    "arity mismatch",
			gauge:   labeledGauge,
			rec:     record.Record{Attributes: map[string]string{"appId": "1", "get_total": "1,2", "post_total": "3"}},
			wantErr: metric.ErrArityMismatch,
		},
		{
			name:    "value not a number",
			gauge:   labeledGauge,
			rec:     record.Record{Attributes: map[string]string{"appId": "1", "get_total": "lots", "post_total": "3"}},
			wantErr: metric.ErrNotANumber,
		},
		{
			name:    "scalar not a number",
			gauge:   config.GaugeConfig{Name: "m", Help: "h", Value: "${v}"},
			rec:     record.Record{Attributes: map[string]string{"v": ""}},
			wantErr: metric.ErrNotANumber,
		},
		{
			name:    "evaluated name invalid",
			gauge:   config.GaugeConfig{Name: "m_${svc}", Help: "h", Value: "1"},
			rec:     record.Record{Attributes: map[string]string{"svc": "a-b"}},
			wantErr: metric.ErrInvalidName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pusher := &fakePusher{}
			p, err := New(newConfig(tt.gauge), pusher, nil)
			require.NoError(t, err)

			err = p.Handle(context.Background(), tt.rec)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, pusher.all())
			assert.Equal(t, uint64(1), p.Stats().Failure())
			assert.Equal(t, 1.0, testutil.ToFloat64(p.Stats().records.WithLabelValues(tt.gauge.Name, OutcomeBuildFailure)))
		})
	}
}

func TestProcessEmptyInstance(t *testing.T) {
	pusher := &fakePusher{}
	cfg := newConfig(config.GaugeConfig{Name: "m", Help: "h", Value: "1"})
	cfg.Pushgateway.Instance = "${host}"

	p, err := New(cfg, pusher, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, p.Handle(context.Background(), record.Record{}), ErrEmptyInstance)
	assert.Empty(t, pusher.all())
}

func TestProcessPushFailure(t *testing.T) {
	pusher := &fakePusher{err: fmt.Errorf("%w: connection refused", exporter.ErrPushFailed)}
	p, err := New(newConfig(config.GaugeConfig{Name: "m", Help: "h", Value: "1"}), pusher, nil)
	require.NoError(t, err)

	err = p.Handle(context.Background(), record.Record{})
	assert.ErrorIs(t, err, exporter.ErrPushFailed)
	assert.Len(t, pusher.all(), 1, "push is attempted once")
	assert.Equal(t, 1.0, testutil.ToFloat64(p.Stats().records.WithLabelValues("m", OutcomePushFailure)))
}

func TestHandleIsolatesGauges(t *testing.T) {
	pusher := &fakePusher{}
	p, err := New(newConfig(
		config.GaugeConfig{Name: "bad", Help: "h", Value: "${missing}"},
		config.GaugeConfig{Name: "good", Help: "h", Value: "2"},
	), pusher, nil)
	require.NoError(t, err)

	err = p.Handle(context.Background(), record.Record{})
	assert.ErrorIs(t, err, metric.ErrNotANumber)

	calls := pusher.all()
	require.Len(t, calls, 1)
	assert.Equal(t, "good", calls[0].families[0].GetName())
}

func TestParallelTriggersDoNotShareState(t *testing.T) {
	pusher := &fakePusher{}
	p, err := New(newConfig(labeledGauge), pusher, prometheus.NewRegistry())
	require.NoError(t, err)

	const n = 64
	var wg sync.WaitGroup
	for i := range n {
		wg.Go(func() {
			v := strconv.Itoa(i)
			err := p.Handle(context.Background(), record.Record{Attributes: map[string]string{
				"appId": v, "get_total": v, "post_total": v,
			}})
			assert.NoError(t, err)
		})
	}
	wg.Wait()

	calls := pusher.all()
	require.Len(t, calls, n)
	for _, call := range calls {
		got := samples(call.families[0])
		require.Len(t, got, 2, "each push carries only its own record")

		var value float64
		for _, value = range got {
			break
		}
		id := strconv.FormatFloat(value, 'f', -1, 64)
		assert.Equal(t, map[string]float64{
			"appId=" + id + ",method=get":  value,
			"appId=" + id + ",method=post": value,
		}, got)
	}
	assert.Equal(t, uint64(n), p.Stats().Success())
}

func TestNewGaugeInjectedEvaluator(t *testing.T) {
	eval := func(template string, _ map[string]string) (string, error) {
		if template == "boom" {
			return "", errors.New("boom")
		}
		return binding.Evaluate(template, map[string]string{"v": "5"})
	}

	g, err := NewGauge(config.GaugeConfig{Name: "m", Help: "h", Value: "${v}"}, eval)
	require.NoError(t, err)
	inst, err := g.Build(record.Record{})
	require.NoError(t, err)
	v, ok := inst.SampleValue()
	require.True(t, ok)
	assert.Equal(t, 5.0, v)

	g, err = NewGauge(config.GaugeConfig{Name: "boom", Help: "h", Value: "1"}, eval)
	require.NoError(t, err)
	_, err = g.Build(record.Record{})
	assert.EqualError(t, err, "name: boom")
}

func TestNewRejectsInvalidLabels(t *testing.T) {
	_, err := New(newConfig(config.GaugeConfig{Name: "m", Labels: "__x"}), &fakePusher{}, nil)
	assert.ErrorIs(t, err, metric.ErrReservedName)
}
