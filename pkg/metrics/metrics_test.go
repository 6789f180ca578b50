package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/promptkit/pkg/metrics"
)

func TestNewIsIdempotentPerRegistry(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := metrics.New(reg)
	require.NoError(t, err)
	_, err = metrics.New(reg)
	require.NoError(t, err)
}

func TestNilMetricsAreNoops(t *testing.T) {
	t.Parallel()

	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.ObserveOptimization("clarity", true)
		m.ObserveProviderFailure("timeout")
		m.ObserveWebhook("invoice.paid", "applied")
		m.ObserveCheckout("created")
		m.ObserveCacheLookup("entitlement", false)
	})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	assert.NotNil(t, m.Middleware(next))
}

func TestMiddlewareAndHandler(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/favorites/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/favorites/abc", nil))
	m.ObserveOptimization("comprehensive", false)
	m.ObserveWebhook("checkout.session.completed", "duplicate")

	rec := httptest.NewRecorder()
	metrics.Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	assert.True(t, strings.Contains(body, `promptkit_http_requests_total{method="GET",route="/favorites/{id}",status="404"} 1`), body)
	assert.Contains(t, body, `promptkit_optimizations_total{source="provider",strategy="comprehensive"} 1`)
	assert.Contains(t, body, `promptkit_billing_webhook_events_total{result="duplicate",type="checkout.session.completed"} 1`)
}
