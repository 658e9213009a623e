package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the
// matcher.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	matcherDuration prometheus.Observer
	matcherRuns     prometheus.Counter
	conflictTotal   *prometheus.CounterVec
	assignmentTotal *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	matcherDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "matcher_run_duration_seconds",
		Help:    "Duration of coverage resolution runs",
		Buckets: prometheus.DefBuckets,
	})

	matcherRuns := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "matcher_runs_total",
		Help: "Total coverage resolution runs",
	})

	conflictTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matcher_conflicts_total",
		Help: "Conflicts recorded by coverage resolution, by kind",
	}, []string{"kind"})

	assignmentTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assignments_written_total",
		Help: "Assignments written to the ledger, by source",
	}, []string{"source"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, matcherDuration, matcherRuns, conflictTotal, assignmentTotal, cacheHits, cacheMisses, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		matcherDuration: matcherDuration,
		matcherRuns:     matcherRuns,
		conflictTotal:   conflictTotal,
		assignmentTotal: assignmentTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveMatcherRun records one coverage resolution pass and its conflicts.
func (m *MetricsService) ObserveMatcherRun(duration time.Duration, conflictKinds map[string]int) {
	if m == nil {
		return
	}
	m.matcherRuns.Inc()
	m.matcherDuration.Observe(duration.Seconds())
	for kind, count := range conflictKinds {
		m.conflictTotal.WithLabelValues(kind).Add(float64(count))
	}
}

// RecordAssignments counts ledger writes attributed to a source such as
// "publish" or "override".
func (m *MetricsService) RecordAssignments(source string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.assignmentTotal.WithLabelValues(source).Add(float64(count))
}

// RecordCacheOperation records a cache lookup outcome.
func (m *MetricsService) RecordCacheOperation(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}
