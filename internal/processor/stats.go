package processor

import (
	"fmt"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Stats counts record outcomes for logs and the status metrics.
type Stats struct {
	success      atomic.Uint64
	failure      atomic.Uint64
	records      *prometheus.CounterVec
	pushDuration prometheus.Histogram
}

// NewStats creates the status collectors and registers them with reg.
func NewStats(reg prometheus.Registerer) (*Stats, error) {
	s := &Stats{
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pushbox_records_total",
			Help: "Records processed per gauge and outcome.",
		}, []string{"gauge", "outcome"}),
		pushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pushbox_push_duration_seconds",
			Help:    "Duration of single push attempts.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{s.records, s.pushDuration} {
			if err := reg.Register(c); err != nil {
				return nil, fmt.Errorf("failed to register status metrics: %w", err)
			}
		}
	}

	return s, nil
}

func (s *Stats) observe(gauge, outcome string) {
	if outcome == OutcomeSuccess {
		s.success.Add(1)
	} else {
		s.failure.Add(1)
	}
	s.records.WithLabelValues(gauge, outcome).Inc()
}

// Success returns the number of successful triggers.
func (s *Stats) Success() uint64 { return s.success.Load() }

// Failure returns the number of failed triggers.
func (s *Stats) Failure() uint64 { return s.failure.Load() }
