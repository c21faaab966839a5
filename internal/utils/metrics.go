package utils

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Tracks performance metrics across the system
type MetricsCollector struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          prometheus.Counter
	operationTimes  *prometheus.HistogramVec
	events          *prometheus.CounterVec

	systemStartTime time.Time
}

func NewMetricsCollector() *MetricsCollector {
	mc := &MetricsCollector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memories",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "memories",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "memories",
			Name:      "http_errors_total",
			Help:      "Responses with a 5xx status.",
		}),
		operationTimes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "memories",
			Name:      "operation_duration_seconds",
			Help:      "Store operation latency by operation name.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memories",
			Name:      "activity_events_total",
			Help:      "Post activity events processed by the engine.",
		}, []string{"kind"}),
		systemStartTime: time.Now(),
	}

	mc.registry.MustRegister(
		mc.requests,
		mc.requestDuration,
		mc.errors,
		mc.operationTimes,
		mc.events,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return mc
}

// ObserveRequest records one served HTTP request.
func (mc *MetricsCollector) ObserveRequest(route, method string, status int, duration time.Duration) {
	mc.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	mc.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
	if status >= http.StatusInternalServerError {
		mc.errors.Inc()
	}
}

func (mc *MetricsCollector) AddOperationLatency(operationName string, duration time.Duration) {
	mc.operationTimes.WithLabelValues(operationName).Observe(duration.Seconds())
}

// IncrementEvent counts one processed activity event.
func (mc *MetricsCollector) IncrementEvent(kind string) {
	mc.events.WithLabelValues(kind).Inc()
}

// Uptime is the time since the collector was created.
func (mc *MetricsCollector) Uptime() time.Duration {
	return time.Since(mc.systemStartTime)
}

// Handler serves the registry in the Prometheus exposition format.
func (mc *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(mc.registry, promhttp.HandlerOpts{})
}
