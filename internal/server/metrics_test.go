package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestNewMetrics tests the Metrics constructor.
func TestNewMetrics(t *testing.T) {
	t.Parallel()
	m := NewMetrics()
	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}
	if m.handler == nil {
		t.Error("Metrics.handler should be initialized")
	}
}

// TestNewMetrics_Isolated verifies two instances can coexist.
func TestNewMetrics_Isolated(t *testing.T) {
	t.Parallel()
	a, b := NewMetrics(), NewMetrics()
	a.ObserveComputation(ResultOK)

	if !strings.Contains(scrape(t, a), `funnelcalc_computations_total{result="ok"} 1`) {
		t.Error("first registry should count the computation")
	}
	if !strings.Contains(scrape(t, b), `funnelcalc_computations_total{result="ok"} 0`) {
		t.Error("second registry should be untouched")
	}
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.WritePrometheus(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	return rec.Body.String()
}

// TestMetrics_WritePrometheus tests the Prometheus exposition.
func TestMetrics_WritePrometheus(t *testing.T) {
	t.Parallel()
	m := NewMetrics()
	m.IncrementActiveRequests()
	m.ObserveRequest(http.MethodGet, http.StatusOK, 20*time.Millisecond)
	body := scrape(t, m)

	for _, want := range []string{
		"funnelcalc_active_requests 1",
		`funnelcalc_requests_total{code="200",method="GET"} 1`,
		`funnelcalc_request_duration_seconds_count{method="GET"} 1`,
		`funnelcalc_computations_total{result="rejected"} 0`,
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}

	m.DecrementActiveRequests()
	if !strings.Contains(scrape(t, m), "funnelcalc_active_requests 0") {
		t.Error("gauge should return to 0")
	}
}

// TestServer_metricsMiddleware tests the metrics tracking middleware.
func TestServer_metricsMiddleware(t *testing.T) {
	t.Parallel()
	s := &Server{metrics: NewMetrics()}

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		if !strings.Contains(scrape(t, s.metrics), "funnelcalc_active_requests 1") {
			t.Error("request should be counted as active while served")
		}
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	s.metricsMiddleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/test", http.NoBody))

	if !nextCalled {
		t.Fatal("next handler was not called")
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
	body := scrape(t, s.metrics)
	if !strings.Contains(body, `funnelcalc_requests_total{code="418",method="POST"} 1`) {
		t.Error("request should be counted with its status code")
	}
	if !strings.Contains(body, "funnelcalc_active_requests 0") {
		t.Error("active gauge should be released")
	}
}

// TestServer_ComputationMetrics checks results reach the computation counter.
func TestServer_ComputationMetrics(t *testing.T) {
	t.Parallel()
	m := NewMetrics()
	h := newTestServer(WithMetrics(m)).Handler()

	do(t, h, http.MethodGet, defaultQuery, "")
	do(t, h, http.MethodGet, "/api/v1/funnel?desired_revenue=1000&average_ticket=0&baseline_conversion_rate=4", "")
	do(t, h, http.MethodGet, "/api/v1/funnel?desired_revenue=1000&average_ticket=1&baseline_conversion_rate=400", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`funnelcalc_computations_total{result="ok"} 1`,
		`funnelcalc_computations_total{result="rejected"} 2`,
		`funnelcalc_requests_total{code="400",method="GET"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

// TestServer_handleMetrics tests the /metrics endpoint handler.
func TestServer_handleMetrics(t *testing.T) {
	t.Parallel()
	for _, method := range []string{http.MethodPost, http.MethodPut} {
		t.Run(method, func(t *testing.T) {
			s := &Server{metrics: NewMetrics(), logger: newTestLogger()}
			rec := httptest.NewRecorder()
			s.handleMetrics(rec, httptest.NewRequest(method, "/metrics", http.NoBody))
			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
			}
		})
	}
}
