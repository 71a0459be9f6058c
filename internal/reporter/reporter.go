// Package reporter periodically pushes pushbox's runtime and status metrics.
package reporter

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/neox5/pushbox/internal/config"
	"github.com/neox5/pushbox/internal/exporter"
	"github.com/neox5/pushbox/internal/metric"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// finalReportTimeout bounds the push made on shutdown.
const finalReportTimeout = 5 * time.Second

// Reporter pushes a gathered report on a fixed interval.
type Reporter struct {
	interval time.Duration
	job      string
	grouping map[string]string
	pusher   exporter.Pusher
	gatherer prometheus.Gatherers
	wg       sync.WaitGroup
}

// NewRuntimeRegistry returns a registry with the Go and process collectors.
func NewRuntimeRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// New creates a reporter pushing runtime and status according to cfg.
func New(cfg config.ReportingConfig, instance string, pusher exporter.Pusher, runtime, status prometheus.Gatherer) *Reporter {
	var gatherers prometheus.Gatherers

	if cfg.Runtime && runtime != nil {
		gatherers = append(gatherers, runtime)
	}
	if cfg.Status && status != nil {
		gatherers = append(gatherers, status)
	}

	return &Reporter{
		interval: cfg.Interval,
		job:      cfg.Job,
		grouping: metric.GroupingKey(instance),
		pusher:   pusher,
		gatherer: gatherers,
	}
}

// Run starts the reporting loop in a background goroutine. A final report
// is pushed when ctx is cancelled.
func (r *Reporter) Run(ctx context.Context) {
	r.wg.Go(func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		slog.Info("starting reporter", "interval", r.interval, "job", r.job)

		for {
			select {
			case <-ctx.Done():
				finalCtx, cancel := context.WithTimeout(context.Background(), finalReportTimeout)
				r.Report(finalCtx)
				cancel()
				slog.Info("reporter shutdown complete")
				return
			case <-ticker.C:
				r.Report(ctx)
			}
		}
	})
}

// Wait blocks until the reporting goroutine exits.
func (r *Reporter) Wait() {
	r.wg.Wait()
}

// Report pushes one report. Failures are logged, not retried.
func (r *Reporter) Report(ctx context.Context) error {
	if err := r.pusher.Push(ctx, r.gatherer, r.job, r.grouping); err != nil {
		slog.Warn("failed to push report", "job", r.job, "error", err)
		return err
	}
	slog.Debug("pushed report", "job", r.job)
	return nil
}
