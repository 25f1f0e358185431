// Package metrics содержит метрики Prometheus сервиса банка крови.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics хранит счётчики доменных событий и HTTP-метрики.
type Metrics struct {
	registry *prometheus.Registry

	DonorsRegistered  prometheus.Counter
	DonationsRecorded prometheus.Counter
	RequestsSubmitted prometheus.Counter
	LoginFailures     *prometheus.CounterVec
	SyncFailures      prometheus.Counter

	httpInFlight        prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New создаёт метрики в собственном реестре.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		DonorsRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bloodbank_donors_registered_total",
			Help: "Total number of registered donors.",
		}),
		DonationsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bloodbank_donations_recorded_total",
			Help: "Total number of processed donations.",
		}),
		RequestsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bloodbank_requests_submitted_total",
			Help: "Total number of submitted blood requests.",
		}),
		LoginFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodbank_login_failures_total",
			Help: "Failed login attempts by role.",
		}, []string{"role"}),
		SyncFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bloodbank_sync_failures_total",
			Help: "Events that could not be delivered to the remote endpoint.",
		}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "In-flight HTTP requests.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		m.DonorsRegistered,
		m.DonationsRecorded,
		m.RequestsSubmitted,
		m.LoginFailures,
		m.SyncFailures,
		m.httpInFlight,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	)

	return m
}

// Registry возвращает реестр метрик.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler отдаёт метрики в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Instrument измеряет число, длительность и статусы HTTP-запросов.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := strconv.Itoa(sw.code)

		m.httpRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
