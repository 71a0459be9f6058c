package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	body, err := io.ReadAll(rr.Result().Body)
	require.NoError(t, err)
	return rr.Code, string(body)
}

func TestServerRoutes(t *testing.T) {
	reg := prometheus.NewRegistry()
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: "pushbox_test_gauge", Help: "test"})
	g.Set(3)
	reg.MustRegister(g)

	s := New(0)
	s.HandleMetrics("/metrics", reg, reg)
	s.Handle("/records", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	code, body := get(t, s.Handler(), HealthPath)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok\n", body)

	code, body = get(t, s.Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "pushbox_test_gauge 3")

	assert.Contains(t, body, "promhttp_metric_handler_requests_total")

	code, _ = get(t, s.Handler(), "/records")
	assert.Equal(t, http.StatusNoContent, code)

	code, _ = get(t, s.Handler(), "/unknown")
	assert.Equal(t, http.StatusNotFound, code)
}
