// Package health exposes the Kubernetes-style probe endpoints. Dependencies
// register a named connectivity check; readiness requires all of them,
// liveness none.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"barometer/pkg/logger"
)

// Checker verifies connectivity of one dependency.
type Checker func(ctx context.Context) error

type check struct {
	name    string
	checker Checker
}

// Handler provides health check endpoints
type Handler struct {
	log         *logger.Logger
	checks      []check
	startTime   time.Time
	serviceName string
	version     string
}

// New creates a health check handler with no registered checks.
func New(log *logger.Logger, serviceName, version string) *Handler {
	return &Handler{
		log:         log,
		startTime:   time.Now(),
		serviceName: serviceName,
		version:     version,
	}
}

// Register adds a named dependency check. Checks run in registration order.
func (h *Handler) Register(name string, c Checker) {
	h.checks = append(h.checks, check{name: name, checker: c})
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string                     `json:"status"` // healthy|degraded|unhealthy
	Service   string                     `json:"service"`
	Version   string                     `json:"version"`
	Uptime    string                     `json:"uptime"`
	Timestamp string                     `json:"timestamp"`
	Checks    map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth represents health of a single component
type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

// HandleLiveness returns 200 OK if the process is running.
// Used by Kubernetes liveness probe.
func (h *Handler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "alive",
	})
}

// HandleReadiness checks if the service is ready to accept traffic. Every
// registered dependency must answer. Used by Kubernetes readiness probe.
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks, healthy := h.runChecks(ctx)

	status := h.status("healthy", checks)
	statusCode := http.StatusOK
	if healthy < len(h.checks) {
		status.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
		h.log.Warn("Readiness check failed", "checks", checks)
	}

	writeJSON(w, statusCode, status)
}

// HandleHealth returns detailed health status. Partially reachable
// dependencies report degraded but still answer 200 so dashboards can read
// the detail.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	checks, healthy := h.runChecks(ctx)

	status := h.status("healthy", checks)
	statusCode := http.StatusOK
	switch {
	case len(h.checks) > 0 && healthy == 0:
		status.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	case healthy < len(h.checks):
		status.Status = "degraded"
	}

	writeJSON(w, statusCode, status)
}

// runChecks executes every registered check and counts the healthy ones.
func (h *Handler) runChecks(ctx context.Context) (map[string]ComponentHealth, int) {
	results := make(map[string]ComponentHealth, len(h.checks))
	healthy := 0

	for _, c := range h.checks {
		start := time.Now()
		err := c.checker(ctx)
		elapsed := time.Since(start)

		if err != nil {
			h.log.Error("Dependency health check failed",
				"dependency", c.name,
				"error", err,
				"elapsed", elapsed,
			)
			results[c.name] = ComponentHealth{
				Status:       "unhealthy",
				ResponseTime: elapsed.String(),
				Error:        err.Error(),
			}
			continue
		}

		results[c.name] = ComponentHealth{
			Status:       "healthy",
			ResponseTime: elapsed.String(),
		}
		healthy++
	}

	return results, healthy
}

func (h *Handler) status(overall string, checks map[string]ComponentHealth) HealthStatus {
	return HealthStatus{
		Status:    overall,
		Service:   h.serviceName,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().Format(time.RFC3339),
		Checks:    checks,
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
