package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type tracker interface {
	TrackRequest(decision, method string, status int, duration time.Duration)
	AddInflightRequest()
	SubtractInflightRequest()
	SetOriginHealthy(healthy bool)
}

var Tracker tracker = &nullTracker{}

// Enable switches the tracker to Prometheus and returns the handler that
// exposes its metrics.
func Enable() http.Handler {
	registry := prometheus.NewRegistry()
	Tracker = NewPrometheusTracker(registry)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

type nullTracker struct{}

func (nullTracker) TrackRequest(decision, method string, status int, dur time.Duration) {}
func (nullTracker) AddInflightRequest()                                                 {}
func (nullTracker) SubtractInflightRequest()                                            {}
func (nullTracker) SetOriginHealthy(healthy bool)                                       {}

type prometheusTracker struct {
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	inflightRequests prometheus.Gauge
	originHealthy    prometheus.Gauge
}

func NewPrometheusTracker(registerer prometheus.Registerer) *prometheusTracker {
	tracker := &prometheusTracker{
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:      "requests_total",
				Namespace: "maintenance",
				Subsystem: "proxy",
				Help:      "HTTP requests processed, labeled by decision, status code and method.",
			},
			[]string{"decision", "method", "status"},
		),

		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:      "request_duration_seconds",
				Namespace: "maintenance",
				Subsystem: "proxy",
				Help:      "Duration of HTTP requests, labeled by decision, status code and method.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"decision", "method", "status"},
		),

		inflightRequests: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name:      "in_flight_requests",
				Namespace: "maintenance",
				Subsystem: "proxy",
				Help:      "Number of in-flight HTTP requests.",
			},
		),

		originHealthy: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name:      "origin_healthy",
				Namespace: "maintenance",
				Subsystem: "proxy",
				Help:      "Whether the last origin health check succeeded (1) or failed (0).",
			},
		),
	}

	registerer.MustRegister(tracker.httpRequests, tracker.httpDuration, tracker.inflightRequests, tracker.originHealthy)

	return tracker
}

func (p *prometheusTracker) TrackRequest(decision, method string, status int, duration time.Duration) {
	method = normalizeMethod(method)
	statusString := strconv.Itoa(status)

	p.httpRequests.WithLabelValues(decision, method, statusString).Inc()
	p.httpDuration.WithLabelValues(decision, method, statusString).Observe(duration.Seconds())
}

func (p *prometheusTracker) AddInflightRequest() {
	p.inflightRequests.Inc()
}

func (p *prometheusTracker) SubtractInflightRequest() {
	p.inflightRequests.Dec()
}

func (p *prometheusTracker) SetOriginHealthy(healthy bool) {
	if healthy {
		p.originHealthy.Set(1)
	} else {
		p.originHealthy.Set(0)
	}
}

// Private

func normalizeMethod(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost,
		http.MethodPut, http.MethodPatch, http.MethodDelete,
		http.MethodConnect, http.MethodOptions, http.MethodTrace:
		return method
	default:
		return "OTHER"
	}
}
