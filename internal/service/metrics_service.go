package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the proctoring
// engine and the HTTP surface.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	assignmentsCreated *prometheus.CounterVec
	assignmentDeclines prometheus.Counter
	swapsResolved      *prometheus.CounterVec
	sweepCompleted     prometheus.Counter
	sweepSkipped       prometheus.Counter
	notificationsTotal *prometheus.CounterVec

	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
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

	assignmentsCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "proctor_assignments_created_total",
		Help: "Assignments created, labelled by mode",
	}, []string{"mode"})

	assignmentDeclines := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "proctor_assignment_declines_total",
		Help: "Assignments declined by their TA",
	})

	swapsResolved := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "proctor_swaps_resolved_total",
		Help: "Swap requests resolved, labelled by outcome",
	}, []string{"outcome"})

	sweepCompleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "proctor_sweep_completed_total",
		Help: "Assignments transitioned to COMPLETED by the sweep",
	})

	sweepSkipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "proctor_sweep_skipped_total",
		Help: "Rows the sweep skipped due to errors",
	})

	notificationsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "proctor_notifications_total",
		Help: "Notification events emitted, labelled by type",
	}, []string{"type"})

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

	registry.MustRegister(requestDuration, requestTotal, assignmentsCreated, assignmentDeclines,
		swapsResolved, sweepCompleted, sweepSkipped, notificationsTotal, cacheHits, cacheMisses, goroutines)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		assignmentsCreated: assignmentsCreated,
		assignmentDeclines: assignmentDeclines,
		swapsResolved:      swapsResolved,
		sweepCompleted:     sweepCompleted,
		sweepSkipped:       sweepSkipped,
		notificationsTotal: notificationsTotal,
		cacheHits:          cacheHits,
		cacheMisses:        cacheMisses,
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

// RecordAssignments counts created assignments by mode.
func (m *MetricsService) RecordAssignments(mode string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.assignmentsCreated.WithLabelValues(mode).Add(float64(count))
}

// RecordDecline counts a declined assignment.
func (m *MetricsService) RecordDecline() {
	if m == nil {
		return
	}
	m.assignmentDeclines.Inc()
}

// RecordSwapOutcome counts a resolved swap by outcome.
func (m *MetricsService) RecordSwapOutcome(outcome string) {
	if m == nil {
		return
	}
	m.swapsResolved.WithLabelValues(outcome).Inc()
}

// RecordSweep counts sweep results.
func (m *MetricsService) RecordSweep(completed, skipped int) {
	if m == nil {
		return
	}
	if completed > 0 {
		m.sweepCompleted.Add(float64(completed))
	}
	if skipped > 0 {
		m.sweepSkipped.Add(float64(skipped))
	}
}

// RecordNotification counts an emitted notification event.
func (m *MetricsService) RecordNotification(eventType string) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(eventType).Inc()
}

// RecordCacheOperation records a cache hit or miss.
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
