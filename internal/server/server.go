package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"

	"github.com/agbru/funnelcalc/internal/config"
	apperrors "github.com/agbru/funnelcalc/internal/errors"
	"github.com/agbru/funnelcalc/internal/format"
	"github.com/agbru/funnelcalc/internal/funnel"
	"github.com/agbru/funnelcalc/internal/logging"
)

// Server timeouts and limits.
const (
	ReadHeaderTimeout = 5 * time.Second
	WriteTimeout      = 10 * time.Second
	IdleTimeout       = 60 * time.Second
	ShutdownTimeout   = 10 * time.Second

	DefaultRateLimit = rate.Limit(20)
	DefaultBurst     = 40
)

const tracerName = "github.com/agbru/funnelcalc/internal/server"

// Server serves funnel reports over HTTP.
type Server struct {
	addr     string
	calc     funnel.Calculator
	logger   logging.Logger
	metrics  *Metrics
	security SecurityConfig
	limiter  *clientLimiter
	handler  http.Handler
}

// Option customizes a Server.
type Option func(*Server)

// WithSecurityConfig replaces the default security configuration.
func WithSecurityConfig(cfg SecurityConfig) Option {
	return func(s *Server) { s.security = cfg }
}

// WithRateLimit sets the per-client request rate and burst.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(s *Server) { s.limiter = newClientLimiter(limit, burst) }
}

// WithMetrics sets the metrics collector, mainly so tests can inspect it.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// NewServer creates a server listening on addr once ListenAndServe is called.
func NewServer(addr string, calc funnel.Calculator, logger logging.Logger, opts ...Option) *Server {
	s := &Server{
		addr:     addr,
		calc:     calc,
		logger:   logger,
		security: DefaultSecurityConfig(),
		limiter:  newClientLimiter(DefaultRateLimit, DefaultBurst),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	s.handler = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestID)
	r.Use(s.loggingMiddleware)
	r.Use(func(next http.Handler) http.Handler {
		return SecurityMiddleware(s.security, next.ServeHTTP)
	})
	r.Use(s.limiter.middleware)

	r.Get("/healthz", s.handleHealth)
	r.Group(func(r chi.Router) {
		r.Use(s.metricsMiddleware)
		r.Get("/api/v1/funnel", s.handleFunnelQuery)
		r.Post("/api/v1/funnel", s.handleFunnelJSON)
	})
	r.HandleFunc("/metrics", s.handleMetrics)
	return r
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: ReadHeaderTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", logging.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "ok")
}

func (s *Server) handleFunnelQuery(w http.ResponseWriter, r *http.Request) {
	var in funnel.Input
	query := r.URL.Query()
	for _, field := range config.InputFields {
		raw := strings.TrimSpace(query.Get(field.Key))
		if raw == "" {
			if field.Key == funnel.FieldMediaBudget {
				continue
			}
			s.writeError(w, http.StatusBadRequest, field.Key+" is required", field.Key)
			return
		}
		v, err := format.ParseNumber(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, field.Key+" is not a number", field.Key)
			return
		}
		field.Set(&in, v)
	}
	s.compute(w, r, in)
}

func (s *Server) handleFunnelJSON(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, s.security.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	var in funnel.Input
	if err := dec.Decode(&in); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error(), "")
		return
	}
	s.compute(w, r, in)
}

// compute checks the form bounds the calculator leaves to callers, runs the
// calculator inside a trace span, and writes the report.
func (s *Server) compute(w http.ResponseWriter, r *http.Request, in funnel.Input) {
	for _, field := range config.InputFields {
		if err := field.CheckRange(field.Get(in)); err != nil {
			s.metrics.ObserveComputation(ResultRejected)
			s.writeError(w, http.StatusBadRequest, err.Error(), field.Key)
			return
		}
	}

	_, span := otel.Tracer(tracerName).Start(r.Context(), "funnel.Compute")
	span.SetAttributes(
		attribute.Float64(funnel.FieldDesiredRevenue, in.DesiredRevenue),
		attribute.Float64(funnel.FieldMediaBudget, in.MediaBudget),
		attribute.Float64(funnel.FieldAverageTicket, in.AverageTicket),
		attribute.Float64(funnel.FieldBaselineConversionRate, in.BaselineConversionRate),
	)
	report, err := s.calc.Compute(in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()

	if err != nil {
		var ve apperrors.ValidationError
		if errors.As(err, &ve) {
			s.metrics.ObserveComputation(ResultRejected)
			s.writeError(w, http.StatusBadRequest, ve.Error(), ve.Field)
			return
		}
		s.metrics.ObserveComputation(ResultFailed)
		s.logger.Error("funnel computation failed", err, logging.String("request_id", RequestIDFrom(r.Context())))
		s.writeError(w, http.StatusInternalServerError, "internal error", "")
		return
	}

	s.metrics.ObserveComputation(ResultOK)
	writeJSON(w, http.StatusOK, report)
}

// errorResponse is the body of every non-2xx API answer.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg, field string) {
	writeJSON(w, status, errorResponse{Error: msg, Field: field})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
