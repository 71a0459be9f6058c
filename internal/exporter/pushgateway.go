package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// PushgatewayPusher adds gathered metrics to a Prometheus Pushgateway.
type PushgatewayPusher struct {
	url     string
	timeout time.Duration
	client  *http.Client
}

// NewPushgatewayPusher creates a pusher for the Pushgateway at url.
func NewPushgatewayPusher(url string, timeout time.Duration) *PushgatewayPusher {
	return &PushgatewayPusher{
		url:     url,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

// Push sends g with add semantics (HTTP POST): metrics with the same name
// in the same group are replaced, others are kept.
func (p *PushgatewayPusher) Push(ctx context.Context, g prometheus.Gatherer, job string, grouping map[string]string) error {
	pusher := push.New(p.url, job).
		Gatherer(g).
		Client(p.client)

	for _, name := range slices.Sorted(maps.Keys(grouping)) {
		pusher = pusher.Grouping(name, grouping[name])
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if err := pusher.AddContext(ctx); err != nil {
		return fmt.Errorf("%w: pushgateway %s job %q: %w", ErrPushFailed, p.url, job, err)
	}

	slog.Debug("pushed to pushgateway", "url", p.url, "job", job, "grouping", grouping)
	return nil
}
