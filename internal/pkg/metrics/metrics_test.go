package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/cultureconnect-be/internal/pkg/metrics"
)

func TestMetrics_Counters(t *testing.T) {
	m := metrics.New()

	m.MemoHit("product")
	m.MemoHit("product")
	m.MemoMiss("product")
	m.IncTask("catalog:import", nil)
	m.IncTask("catalog:import", errors.New("boom"))
	m.ObserveRequest("GET /api/v1/products", http.MethodGet, 200, 3*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CatalogMemo.WithLabelValues("product", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogMemo.WithLabelValues("product", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TasksProcessed.WithLabelValues("catalog:import", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET /api/v1/products", "GET", "200")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.MemoHit("course")
		m.ObservePipeline("course", time.Millisecond)
		m.IncInvalidation("course")
		m.IncTask("x", nil)
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetrics_Handler(t *testing.T) {
	m := metrics.New()
	m.MemoMiss("course")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cultureconnect_catalog_memo_lookups_total")
}
