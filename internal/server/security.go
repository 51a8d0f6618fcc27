package server

import (
	"net/http"
	"strconv"
	"strings"
)

// SecurityConfig holds the security and CORS settings applied to every response.
type SecurityConfig struct {
	// EnableCORS turns on CORS headers for allowed origins.
	EnableCORS bool
	// AllowedOrigins lists origins that may call the API. "*" allows any.
	AllowedOrigins []string
	// AllowedMethods lists methods advertised in preflight answers.
	AllowedMethods []string
	// MaxBodyBytes caps the size of JSON request bodies.
	MaxBodyBytes int64
}

// DefaultSecurityConfig returns permissive CORS for a read-mostly API and a
// 64 KiB body cap.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		EnableCORS:     true,
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		MaxBodyBytes:   64 << 10,
	}
}

// corsMaxAge is the preflight cache lifetime in seconds.
const corsMaxAge = 86400

// SecurityMiddleware sets security headers, applies CORS, and answers
// preflight requests without calling next.
func SecurityMiddleware(config SecurityConfig, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		if config.EnableCORS {
			if origin, ok := allowedOrigin(config.AllowedOrigins, r.Header.Get("Origin")); ok {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", strings.Join(config.AllowedMethods, ", "))
				h.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
				h.Set("Access-Control-Max-Age", strconv.Itoa(corsMaxAge))
				if origin != "*" {
					h.Add("Vary", "Origin")
				}
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

func allowedOrigin(allowed []string, origin string) (string, bool) {
	for _, a := range allowed {
		if a == "*" {
			return "*", true
		}
		if origin != "" && a == origin {
			return origin, true
		}
	}
	return "", false
}
