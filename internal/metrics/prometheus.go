package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains the Prometheus instruments for mashup runs and the web
// front end. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal    *prometheus.CounterVec
	RunDuration  *prometheus.HistogramVec
	ActiveRuns   prometheus.Gauge
	ClipsDecoded prometheus.Counter
	ClipsSkipped prometheus.Counter
	Deliveries   *prometheus.CounterVec

	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates all instruments on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mashup_runs_total",
			Help: "Mashup runs by origin and outcome",
		}, []string{"origin", "outcome"}),
		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mashup_run_duration_seconds",
			Help:    "Wall time of a mashup run",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}, []string{"origin"}),
		ActiveRuns: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mashup_active_runs",
			Help: "Runs currently in progress",
		}),
		ClipsDecoded: factory.NewCounter(prometheus.CounterOpts{
			Name: "mashup_clips_appended_total",
			Help: "Clips decoded and appended to a mashup",
		}),
		ClipsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "mashup_clips_skipped_total",
			Help: "Staged files skipped because they could not be decoded",
		}),
		Deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mashup_deliveries_total",
			Help: "Email deliveries by result",
		}, []string{"result"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mashup_http_requests_total",
			Help: "HTTP requests by method, endpoint and status",
		}, []string{"method", "endpoint", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mashup_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RunStarted increments the active run gauge.
func (m *Metrics) RunStarted() {
	if m == nil {
		return
	}
	m.ActiveRuns.Inc()
}

// RunFinished records the outcome of a run.
func (m *Metrics) RunFinished(origin, outcome string, elapsed time.Duration, clips, skipped int) {
	if m == nil {
		return
	}
	m.ActiveRuns.Dec()
	m.RunsTotal.WithLabelValues(origin, outcome).Inc()
	m.RunDuration.WithLabelValues(origin).Observe(elapsed.Seconds())
	m.ClipsDecoded.Add(float64(clips))
	m.ClipsSkipped.Add(float64(skipped))
}

// RecordDelivery counts a delivery attempt.
func (m *Metrics) RecordDelivery(ok bool) {
	if m == nil {
		return
	}
	result := "sent"
	if !ok {
		result = "failed"
	}
	m.Deliveries.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(method, endpoint string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
}
