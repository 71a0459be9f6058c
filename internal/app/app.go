// Package app wires configuration, sources, processing and push transport.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/neox5/pushbox/internal/binding"
	"github.com/neox5/pushbox/internal/config"
	"github.com/neox5/pushbox/internal/exporter"
	"github.com/neox5/pushbox/internal/monitor"
	"github.com/neox5/pushbox/internal/processor"
	"github.com/neox5/pushbox/internal/record"
	"github.com/neox5/pushbox/internal/reporter"
	"github.com/neox5/pushbox/internal/server"
	"github.com/prometheus/client_golang/prometheus"
)

// defaultReportInstance is used when the configured instance needs
// record attributes to evaluate.
const defaultReportInstance = "pushbox"

// App holds initialized application components.
type App struct {
	Config    *config.Config
	Pusher    exporter.Pusher
	Processor *processor.Processor
	Status    *prometheus.Registry
	Runtime   *prometheus.Registry

	Sources       []record.Source
	MetricsServer *server.Server
	Reporter      *reporter.Reporter
	Monitor       *monitor.Monitor
}

// New initializes the application from a loaded configuration.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	pusher, err := exporter.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pusher: %w", err)
	}

	status := prometheus.NewRegistry()
	proc, err := processor.New(cfg, pusher, status)
	if err != nil {
		return nil, fmt.Errorf("failed to create processor: %w", err)
	}

	a := &App{
		Config:    cfg,
		Pusher:    pusher,
		Processor: proc,
		Status:    status,
		Runtime:   reporter.NewRuntimeRegistry(),
	}

	if err := a.setupSources(); err != nil {
		return nil, err
	}

	if cfg.Reporting.Enabled {
		a.Reporter = reporter.New(cfg.Reporting, reportInstance(cfg.Pushgateway.Instance), pusher, a.Runtime, status)
	}

	if cfg.Settings.MonitorInterval > 0 {
		a.Monitor, err = monitor.New(cfg.Settings.MonitorInterval, logger, status)
		if err != nil {
			return nil, fmt.Errorf("failed to create monitor: %w", err)
		}
	}

	return a, nil
}

// setupSources creates every enabled source. The HTTP ingest endpoint
// shares the self-metrics server when both use the same port.
func (a *App) setupSources() error {
	cfg := a.Config
	self := cfg.Settings.SelfMetrics

	if self.Enabled {
		a.MetricsServer = server.New(self.Port)
		a.MetricsServer.HandleMetrics(self.Path, a.Status, prometheus.Gatherers{a.Runtime, a.Status})
	}

	if cfg.Sources.HTTP.Enabled {
		ingest := a.MetricsServer
		if ingest == nil || cfg.Sources.HTTP.Port != self.Port {
			ingest = server.New(cfg.Sources.HTTP.Port)
		}
		if cfg.Sources.HTTP.Path == self.Path && ingest == a.MetricsServer {
			return fmt.Errorf("http source path %s collides with self metrics path", cfg.Sources.HTTP.Path)
		}
		ingest.Handle(cfg.Sources.HTTP.Path, record.NewHTTPHandler(a.Processor))
		a.Sources = append(a.Sources, &serverSource{server: ingest})
		if ingest == a.MetricsServer {
			a.MetricsServer = nil
		}
	}

	if cfg.Sources.File.Enabled {
		a.Sources = append(a.Sources, record.NewFileSource(cfg.Sources.File.Path, a.Processor))
	}
	if cfg.Sources.MQTT.Enabled {
		a.Sources = append(a.Sources, record.NewMQTTSource(cfg.Sources.MQTT, a.Processor))
	}
	if cfg.Sources.Kafka.Enabled {
		a.Sources = append(a.Sources, record.NewKafkaSource(cfg.Sources.Kafka, a.Processor))
	}

	return nil
}

// Run starts every component and blocks until ctx is cancelled, a
// component fails, or all sources have finished.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	if a.Monitor != nil {
		a.Monitor.Run(ctx)
	}
	if a.Reporter != nil {
		a.Reporter.Run(ctx)
	}

	errChan := make(chan error, len(a.Sources)+1)

	var serverWG sync.WaitGroup
	if a.MetricsServer != nil {
		serverWG.Go(func() {
			if err := a.MetricsServer.Start(ctx); err != nil {
				errChan <- fmt.Errorf("metrics server: %w", err)
			}
		})
	}

	var sourceWG sync.WaitGroup
	for _, src := range a.Sources {
		sourceWG.Go(func() {
			if err := src.Run(ctx); err != nil {
				errChan <- fmt.Errorf("%s source: %w", src.Name(), err)
			}
		})
	}
	sourcesDone := make(chan struct{})
	go func() {
		sourceWG.Wait()
		close(sourcesDone)
	}()

	slog.Debug("--- Application Running ---")

	var runErr error
	select {
	case runErr = <-errChan:
		slog.Error("component error", "error", runErr)
	case <-sourcesDone:
		slog.Info("all sources finished")
	case <-ctx.Done():
	}

	slog.Debug("--- Shutdown Initiated ---")
	stop()
	sourceWG.Wait()
	serverWG.Wait()
	if a.Reporter != nil {
		a.Reporter.Wait()
	}
	if a.Monitor != nil {
		a.Monitor.Wait()
	}

	stats := a.Processor.Stats()
	slog.Info("records processed", "success", stats.Success(), "failure", stats.Failure())
	return runErr
}

// Push processes a single record synchronously.
func (a *App) Push(ctx context.Context, rec record.Record) error {
	return a.Processor.Handle(ctx, rec)
}

// Close releases the push transport.
func (a *App) Close(ctx context.Context) error {
	if s, ok := a.Pusher.(interface{ Shutdown(context.Context) error }); ok {
		return s.Shutdown(ctx)
	}
	return nil
}

// serverSource runs an HTTP ingest server as a record source.
type serverSource struct {
	server *server.Server
}

func (s *serverSource) Name() string { return "http" }

func (s *serverSource) Run(ctx context.Context) error {
	return s.server.Start(ctx)
}

func reportInstance(instance string) string {
	if !binding.HasExpression(instance) {
		return instance
	}
	if v, err := binding.Evaluate(instance, nil); err == nil && v != "" {
		return v
	}
	return defaultReportInstance
}
