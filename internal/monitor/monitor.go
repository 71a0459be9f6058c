// Package monitor samples pushbox's own resource usage.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v4/process"
)

// Monitor periodically logs process resource usage and exposes it as gauges.
type Monitor struct {
	interval time.Duration
	logger   *slog.Logger
	wg       sync.WaitGroup
	proc     *process.Process

	cpuPercent  prometheus.Gauge
	rssBytes    prometheus.Gauge
	goroutines  prometheus.Gauge
	utilization prometheus.Gauge
}

// New creates a monitor and registers its gauges with reg (may be nil).
func New(interval time.Duration, logger *slog.Logger, reg prometheus.Registerer) (*Monitor, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("failed to get process handle: %w", err)
	}

	m := &Monitor{
		interval: interval,
		logger:   logger,
		proc:     proc,
		cpuPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pushbox_process_cpu_percent",
			Help: "Process CPU usage in percent of one core.",
		}),
		rssBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pushbox_process_resident_memory_bytes",
			Help: "Process resident set size.",
		}),
		goroutines: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pushbox_goroutines",
			Help: "Number of goroutines.",
		}),
		utilization: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pushbox_cpu_utilization_ratio",
			Help: "Process CPU usage relative to GOMAXPROCS.",
		}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.cpuPercent, m.rssBytes, m.goroutines, m.utilization} {
			if err := reg.Register(c); err != nil {
				return nil, fmt.Errorf("failed to register monitor metrics: %w", err)
			}
		}
	}

	return m, nil
}

// Run starts the monitoring loop in a background goroutine.
// It stops when ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	m.wg.Go(func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		// Immediate first collection
		m.collect()

		for {
			select {
			case <-ctx.Done():
				m.logger.Info("monitor shutdown complete")
				return
			case <-ticker.C:
				m.collect()
			}
		}
	})
}

// Wait blocks until the monitor goroutine exits.
func (m *Monitor) Wait() {
	m.wg.Wait()
}

// collect samples the process, updates the gauges and logs one line.
func (m *Monitor) collect() {
	processCPU, err := m.proc.CPUPercent()
	if err != nil {
		m.logger.Warn("failed to get CPU percent", "error", err)
		processCPU = 0
	}

	var rss uint64
	if mem, err := m.proc.MemoryInfo(); err != nil {
		m.logger.Warn("failed to get memory info", "error", err)
	} else {
		rss = mem.RSS
	}

	cores := runtime.GOMAXPROCS(-1)
	utilization := 0.0
	if cores > 0 {
		utilization = processCPU / float64(cores*100)
	}
	goroutines := runtime.NumGoroutine()

	m.cpuPercent.Set(processCPU)
	m.rssBytes.Set(float64(rss))
	m.goroutines.Set(float64(goroutines))
	m.utilization.Set(utilization)

	m.logger.LogAttrs(
		context.Background(),
		slog.LevelInfo,
		"resource",
		slog.String("cpu", fmt.Sprintf("%.2f%%", processCPU)),
		slog.String("util", fmt.Sprintf("%.2f%%", utilization*100)),
		slog.Int("cores", cores),
		slog.Int("gor", goroutines),
		slog.String("rss", fmt.Sprintf("%.2fMB", float64(rss)/(1024*1024))),
	)

	if utilization > 0.95 {
		m.logger.Warn("cpu saturation detected",
			"util_pct", utilization*100,
			"action", "reduce record rate or increase GOMAXPROCS",
		)
	}
}
