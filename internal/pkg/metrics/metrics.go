// internal/pkg/metrics/metrics.go

// Package metrics holds the Prometheus collectors shared by the API, the
// catalog service and the worker. A nil *Metrics is valid and records
// nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cultureconnect"

// Metrics bundles Prometheus collectors.
type Metrics struct {
	Registry         *prometheus.Registry
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	CatalogMemo      *prometheus.CounterVec
	CatalogPipeline  *prometheus.HistogramVec
	CatalogSnapshots *prometheus.CounterVec
	TasksProcessed   *prometheus.CounterVec
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status.",
		},
		[]string{"route", "method", "status"},
	)
	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	memo := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_memo_lookups_total",
			Help:      "Listing memo lookups by collection and result.",
		},
		[]string{"kind", "result"},
	)
	pipeline := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_pipeline_duration_seconds",
			Help:      "Time spent filtering, sorting and paginating a collection.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
		[]string{"kind"},
	)
	snapshots := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_invalidations_total",
			Help:      "Collection snapshot invalidations by kind.",
		},
		[]string{"kind"},
	)
	tasks := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_processed_total",
			Help:      "Background tasks processed by type and outcome.",
		},
		[]string{"task_type", "outcome"},
	)

	registry.MustRegister(httpRequests, httpDuration, memo, pipeline, snapshots, tasks)

	return &Metrics{
		Registry:         registry,
		HTTPRequests:     httpRequests,
		HTTPDuration:     httpDuration,
		CatalogMemo:      memo,
		CatalogPipeline:  pipeline,
		CatalogSnapshots: snapshots,
		TasksProcessed:   tasks,
	}
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// MemoHit counts a listing served from the memo.
func (m *Metrics) MemoHit(kind string) {
	if m == nil {
		return
	}
	m.CatalogMemo.WithLabelValues(kind, "hit").Inc()
}

// MemoMiss counts a listing that had to run the pipeline.
func (m *Metrics) MemoMiss(kind string) {
	if m == nil {
		return
	}
	m.CatalogMemo.WithLabelValues(kind, "miss").Inc()
}

// ObservePipeline records one pipeline run.
func (m *Metrics) ObservePipeline(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.CatalogPipeline.WithLabelValues(kind).Observe(d.Seconds())
}

// IncInvalidation counts a snapshot invalidation.
func (m *Metrics) IncInvalidation(kind string) {
	if m == nil {
		return
	}
	m.CatalogSnapshots.WithLabelValues(kind).Inc()
}

// IncTask counts a processed background task.
func (m *Metrics) IncTask(taskType string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.TasksProcessed.WithLabelValues(taskType, outcome).Inc()
}
