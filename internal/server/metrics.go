package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Computation outcomes recorded by funnelcalc_computations_total.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
)

// Metrics holds the Prometheus collectors of one server. Each instance owns
// its registry so several servers (or tests) never collide.
type Metrics struct {
	registry       *prometheus.Registry
	requestsTotal  *prometheus.CounterVec
	activeRequests prometheus.Gauge
	duration       *prometheus.HistogramVec
	computations   *prometheus.CounterVec
	handler        http.Handler
}

// NewMetrics creates and registers the server collectors, plus the Go
// runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "funnelcalc_requests_total",
			Help: "Total number of API requests by method and status code.",
		}, []string{"method", "code"}),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "funnelcalc_active_requests",
			Help: "Number of API requests currently being served.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "funnelcalc_request_duration_seconds",
			Help:    "API request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		computations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "funnelcalc_computations_total",
			Help: "Funnel computations by result (ok, rejected, failed).",
		}, []string{"result"}),
	}
	m.registry.MustRegister(
		m.requestsTotal,
		m.activeRequests,
		m.duration,
		m.computations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	for _, result := range []string{ResultOK, ResultRejected, ResultFailed} {
		m.computations.WithLabelValues(result)
	}
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return m
}

// IncrementActiveRequests increments the in-flight gauge.
func (m *Metrics) IncrementActiveRequests() { m.activeRequests.Inc() }

// DecrementActiveRequests decrements the in-flight gauge.
func (m *Metrics) DecrementActiveRequests() { m.activeRequests.Dec() }

// ObserveRequest records a finished request.
func (m *Metrics) ObserveRequest(method string, status int, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveComputation counts one computation with the given result label.
func (m *Metrics) ObserveComputation(result string) {
	m.computations.WithLabelValues(result).Inc()
}

// WritePrometheus writes all metrics in the Prometheus text format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}

// metricsMiddleware tracks in-flight requests, counts and latency.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.metrics.IncrementActiveRequests()
		defer s.metrics.DecrementActiveRequests()

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.ObserveRequest(r.Method, status, time.Since(start))
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	s.metrics.WritePrometheus(w, r)
}
