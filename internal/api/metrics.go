package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/autoclouddeploy/archmap/pkg/observability"
)

// Metrics implements the observability hook interfaces on top of a private
// Prometheus registry. Construct one per process and install it with
// [Metrics.Install]; the registry is exposed at /metrics.
type Metrics struct {
	registry *prometheus.Registry

	conversions      *prometheus.CounterVec
	convertDuration  prometheus.Histogram
	generations      *prometheus.CounterVec
	generateAttempts prometheus.Histogram
	validations      *prometheus.CounterVec
	cacheOps         *prometheus.CounterVec
	clientRequests   *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewMetrics creates a Metrics with all collectors registered on a fresh
// registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "archmap",
			Name:      "conversions_total",
			Help:      "Diagram conversions by outcome.",
		}, []string{"status"}),
		convertDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "archmap",
			Name:      "convert_duration_seconds",
			Help:      "Diagram conversion duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "archmap",
			Name:      "generations_total",
			Help:      "Model generations by model and outcome.",
		}, []string{"model", "status"}),
		generateAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "archmap",
			Name:      "generation_attempts",
			Help:      "Attempts needed per diagram generation.",
			Buckets:   []float64{1, 2, 3},
		}),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "archmap",
			Name:      "validations_total",
			Help:      "Terraform validations by result.",
		}, []string{"result"}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "archmap",
			Name:      "cache_operations_total",
			Help:      "Cache operations by key type and operation.",
		}, []string{"key_type", "op"}),
		clientRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "archmap",
			Name:      "client_requests_total",
			Help:      "Outgoing HTTP requests by host and outcome.",
		}, []string{"host", "status"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "archmap",
			Name:      "http_requests_total",
			Help:      "Served HTTP requests by method, route, and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "archmap",
			Name:      "http_request_duration_seconds",
			Help:      "Served HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		m.conversions, m.convertDuration,
		m.generations, m.generateAttempts,
		m.validations, m.cacheOps, m.clientRequests,
		m.httpRequests, m.httpDuration,
	)
	return m
}

// Install registers the metrics as the process-wide observability hooks.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnConvertStart(context.Context, int) {}

func (m *Metrics) OnConvertComplete(_ context.Context, _ int, duration time.Duration, err error) {
	m.conversions.WithLabelValues(statusLabel(err)).Inc()
	if err == nil {
		m.convertDuration.Observe(duration.Seconds())
	}
}

func (m *Metrics) OnGenerateStart(context.Context, string) {}

func (m *Metrics) OnGenerateComplete(_ context.Context, model string, attempts int, _ time.Duration, err error) {
	m.generations.WithLabelValues(model, statusLabel(err)).Inc()
	if err == nil {
		m.generateAttempts.Observe(float64(attempts))
	}
}

func (m *Metrics) OnValidateStart(context.Context) {}

func (m *Metrics) OnValidateComplete(_ context.Context, valid bool, _ time.Duration, err error) {
	switch {
	case err != nil:
		m.validations.WithLabelValues("error").Inc()
	case valid:
		m.validations.WithLabelValues("valid").Inc()
	default:
		m.validations.WithLabelValues("invalid").Inc()
	}
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, _ int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, _, host, _ string, statusCode int, _ time.Duration) {
	m.clientRequests.WithLabelValues(host, strconv.Itoa(statusCode)).Inc()
}

func (m *Metrics) OnError(_ context.Context, _, host, _ string, _ error) {
	m.clientRequests.WithLabelValues(host, "error").Inc()
}

func (m *Metrics) observeRequest(method, route string, status int, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
