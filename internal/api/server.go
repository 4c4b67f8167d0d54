// Package api exposes the HTTP surface of the service: orchestrator probes,
// Prometheus metrics and the read-only report endpoint.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"barometer/internal/api/health"
	"barometer/internal/metrics"
	"barometer/pkg/errors"
	"barometer/pkg/logger"
)

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	Port        int
	ServiceName string
	Version     string
}

// Server wraps http.Server with lifecycle management.
type Server struct {
	httpServer *http.Server
	log        *logger.Logger
}

// routes every handler is mounted on; anything else counts as "other" in
// the request metric to keep label cardinality bounded.
var knownRoutes = map[string]bool{
	"/":               true,
	"/health":         true,
	"/ready":          true,
	"/live":           true,
	"/metrics":        true,
	"/reports/latest": true,
}

// NewServer mounts all routes behind the instrumentation middleware.
func NewServer(cfg ServerConfig, healthHandler *health.Handler, reportsHandler *ReportsHandler, log *logger.Logger) *Server {
	s := &Server{log: log}

	mux := http.NewServeMux()

	// Kubernetes probes
	mux.HandleFunc("/health", healthHandler.HandleHealth)
	mux.HandleFunc("/ready", healthHandler.HandleReadiness)
	mux.HandleFunc("/live", healthHandler.HandleLiveness)

	// Prometheus scrape endpoint
	mux.Handle("/metrics", metrics.Handler())

	// Report read API
	mux.HandleFunc("/reports/latest", reportsHandler.HandleLatest)

	// Service info at the root, 404 for anything unrouted
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"service":%q,"version":%q,"status":"running"}`,
			cfg.ServiceName, cfg.Version)
	})

	port := cfg.Port
	if port <= 0 {
		port = 8080
	}

	log.Infof("HTTP server configured on port %d", port)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.instrument(mux),
		// Reports are a few hundred KB of JSON at most; generous write
		// timeout, tight read timeout.
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// statusRecorder captures the response code for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument recovers handler panics to a 500 and records every request in
// the request counter. Probe and scrape endpoints stay out of the debug log.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			if p := recover(); p != nil {
				s.log.Error("HTTP handler panicked", "path", r.URL.Path, "panic", p)
				http.Error(rec, "internal server error", http.StatusInternalServerError)
			}

			route := r.URL.Path
			if !knownRoutes[route] {
				route = "other"
			}
			metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()

			switch route {
			case "/metrics", "/ready", "/live":
			default:
				s.log.Debug("HTTP request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", rec.status,
					"duration", time.Since(start),
				)
			}
		}()

		next.ServeHTTP(rec, r)
	})
}

// Start listens until the server is shut down or fails.
func (s *Server) Start() error {
	s.log.Infof("Starting HTTP server on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "http server failed")
	}

	return nil
}

// Shutdown stops accepting connections and drains active ones within ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Stopping HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "http server shutdown failed")
	}

	s.log.Info("✓ HTTP server stopped")
	return nil
}
