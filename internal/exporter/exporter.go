// Package exporter pushes gathered metrics to an aggregation endpoint.
package exporter

import (
	"context"
	"errors"
	"fmt"

	"github.com/neox5/pushbox/internal/config"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrPushFailed wraps every transport failure.
var ErrPushFailed = errors.New("push failed")

// Pusher delivers one gathered batch to the aggregation endpoint.
// Push is attempted exactly once; callers decide what a failure means.
type Pusher interface {
	Push(ctx context.Context, g prometheus.Gatherer, job string, grouping map[string]string) error
}

// New creates the pusher selected by the export configuration.
func New(ctx context.Context, cfg *config.Config) (Pusher, error) {
	switch cfg.Export.Transport {
	case config.TransportPushgateway:
		return NewPushgatewayPusher(cfg.Pushgateway.URL(), cfg.Pushgateway.Timeout), nil
	case config.TransportOTLP:
		return NewOTLPPusher(ctx, cfg.Export.OTLP, cfg.Pushgateway.Timeout)
	default:
		return nil, fmt.Errorf("unknown transport: %s", cfg.Export.Transport)
	}
}
