// Package server hosts pushbox's HTTP endpoints: self-metrics and record ingest.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthPath answers liveness probes.
const HealthPath = "/healthz"

// Server is an HTTP server with a shared mux.
type Server struct {
	addr   string
	paths  []string
	server *http.Server
	mux    *http.ServeMux
}

// New creates a server listening on port. It always serves HealthPath.
func New(port int) *Server {
	mux := http.NewServeMux()
	addr := fmt.Sprintf(":%d", port)

	s := &Server{
		addr: addr,
		mux:  mux,
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	s.Handle(HealthPath, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}))
	return s
}

// Handle registers h at path.
func (s *Server) Handle(path string, h http.Handler) {
	s.mux.Handle(path, h)
	s.paths = append(s.paths, path)
}

// HandleMetrics serves g at path. Scrape metrics and handler errors are
// registered with reg.
func (s *Server) HandleMetrics(path string, reg prometheus.Registerer, g prometheus.Gatherer) {
	s.Handle(path, promhttp.InstrumentMetricHandler(
		reg,
		promhttp.HandlerFor(g, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			Registry:          reg,
		}),
	))
}

// Handler returns the server mux.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		slog.Info("starting server", "addr", s.addr, "paths", s.paths)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server %s: %w", s.addr, err)
	case <-ctx.Done():
		return s.shutdown()
	}
}

// shutdown gracefully stops the server.
func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	slog.Info("shutting down server", "addr", s.addr)
	return s.server.Shutdown(ctx)
}
