package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/time/rate"
)

// serveFrom sends a request carrying an Origin header through h.
func serveFrom(h http.Handler, method, target, origin, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDefaultSecurityConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultSecurityConfig()
	if !cfg.EnableCORS {
		t.Error("CORS should be on for the funnel API")
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v, want [*]", cfg.AllowedOrigins)
	}
	if got := strings.Join(cfg.AllowedMethods, ","); got != "GET,POST,OPTIONS" {
		t.Errorf("AllowedMethods = %s", got)
	}
	if cfg.MaxBodyBytes != 64<<10 {
		t.Errorf("MaxBodyBytes = %d, want %d", cfg.MaxBodyBytes, 64<<10)
	}
}

// TestFunnelAPI_SecurityHeaders checks every funnel answer, successful or not,
// carries the hardening headers.
func TestFunnelAPI_SecurityHeaders(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
	}{
		{"report", http.MethodGet, defaultQuery, "", http.StatusOK},
		{"json report", http.MethodPost, "/api/v1/funnel", `{"desired_revenue":150000,"average_ticket":247.9,"baseline_conversion_rate":4}`, http.StatusOK},
		{"missing ticket", http.MethodGet, "/api/v1/funnel?desired_revenue=150000&baseline_conversion_rate=4", "", http.StatusBadRequest},
		{"unknown json field", http.MethodPost, "/api/v1/funnel", `{"ticket":10}`, http.StatusBadRequest},
		{"health", http.MethodGet, "/healthz", "", http.StatusOK},
	}
	wantHeaders := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "strict-origin-when-cross-origin",
		"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := serveFrom(newTestServer().Handler(), tt.method, tt.target, "", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			for k, v := range wantHeaders {
				if got := rec.Header().Get(k); got != v {
					t.Errorf("%s = %q, want %q", k, got, v)
				}
			}
		})
	}
}

func TestFunnelAPI_SecurityHeadersOnThrottle(t *testing.T) {
	t.Parallel()
	h := newTestServer(WithRateLimit(rate.Limit(0), 1)).Handler()
	serveFrom(h, http.MethodGet, defaultQuery, "", "")

	rec := serveFrom(h, http.MethodGet, defaultQuery, "https://dash.example.com", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("throttled answer lost the security headers")
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("throttled answer should stay readable cross-origin")
	}
}

func TestFunnelAPI_Preflight(t *testing.T) {
	t.Parallel()
	m := NewMetrics()
	h := newTestServer(WithMetrics(m)).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/funnel", http.NoBody)
	req.Header.Set("Origin", "https://dash.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("preflight body = %q, want empty", rec.Body.String())
	}
	checks := map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "GET, POST, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type, X-Request-ID",
		"Access-Control-Max-Age":       "86400",
	}
	for k, v := range checks {
		if got := rec.Header().Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("preflight should still carry a request id")
	}

	// The preflight never reaches the API handlers.
	metrics := httptest.NewRecorder()
	m.WritePrometheus(metrics, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	out := metrics.Body.String()
	if !strings.Contains(out, `funnelcalc_computations_total{result="ok"} 0`) {
		t.Errorf("preflight counted as a computation:\n%s", out)
	}
	if strings.Contains(out, `method="OPTIONS"`) {
		t.Errorf("preflight counted as an API request:\n%s", out)
	}
}

// TestFunnelAPI_RestrictedOrigins covers a deployment that only admits its
// own dashboard.
func TestFunnelAPI_RestrictedOrigins(t *testing.T) {
	t.Parallel()
	cfg := DefaultSecurityConfig()
	cfg.AllowedOrigins = []string{"https://dash.example.com"}
	h := newTestServer(WithSecurityConfig(cfg)).Handler()

	tests := []struct {
		name       string
		origin     string
		wantOrigin string
		wantVary   bool
	}{
		{"dashboard", "https://dash.example.com", "https://dash.example.com", true},
		{"stranger", "https://evil.example.net", "", false},
		{"same origin", "", "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := serveFrom(h, http.MethodGet, defaultQuery, tt.origin, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d; CORS must not block the request itself", rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if got := rec.Header().Get("Vary") == "Origin"; got != tt.wantVary {
				t.Errorf("Vary: Origin present = %v, want %v", got, tt.wantVary)
			}
			if tt.wantOrigin == "" && rec.Header().Get("Access-Control-Allow-Methods") != "" {
				t.Error("methods advertised to a disallowed origin")
			}
		})
	}
}

func TestFunnelAPI_CORSDisabled(t *testing.T) {
	t.Parallel()
	cfg := DefaultSecurityConfig()
	cfg.EnableCORS = false
	rec := serveFrom(newTestServer(WithSecurityConfig(cfg)).Handler(),
		http.MethodGet, defaultQuery, "https://dash.example.com", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q with CORS off", got)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers should not depend on CORS")
	}
}

func TestFunnelAPI_BodyCap(t *testing.T) {
	t.Parallel()
	body := `{"desired_revenue":150000,"media_budget":25000,"average_ticket":247.9,"baseline_conversion_rate":4}`
	tests := []struct {
		name       string
		limit      int64
		wantStatus int
	}{
		{"fits", int64(len(body)), http.StatusOK},
		{"one byte short", int64(len(body)) - 1, http.StatusBadRequest},
		{"default cap", DefaultSecurityConfig().MaxBodyBytes, http.StatusOK},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultSecurityConfig()
			cfg.MaxBodyBytes = tt.limit
			rec := serveFrom(newTestServer(WithSecurityConfig(cfg)).Handler(),
				http.MethodPost, "/api/v1/funnel", "", body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus == http.StatusBadRequest {
				if resp := decodeError(t, rec); !strings.Contains(resp.Error, "too large") {
					t.Errorf("error = %q, want a size complaint", resp.Error)
				}
			}
		})
	}
}
