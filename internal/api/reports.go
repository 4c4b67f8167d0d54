package api

import (
	"context"
	"encoding/json"
	"net/http"

	"barometer/internal/domain/report"
	"barometer/pkg/errors"
	"barometer/pkg/logger"
)

// ReportSource serves the most recent analytics report.
type ReportSource interface {
	Latest(ctx context.Context) (*report.AnalyticsReport, error)
}

// ReportsHandler exposes the report read API.
type ReportsHandler struct {
	source ReportSource
	log    *logger.Logger
}

// NewReportsHandler creates the reports handler.
func NewReportsHandler(source ReportSource, log *logger.Logger) *ReportsHandler {
	return &ReportsHandler{
		source: source,
		log:    log.With("handler", "reports"),
	}
}

// HandleLatest serves GET /reports/latest as the full report JSON.
func (h *ReportsHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rep, err := h.source.Latest(r.Context())
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no report generated yet")
			return
		}
		h.log.Error("Failed to load latest report", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load report")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(rep); err != nil {
		h.log.Error("Failed to encode report response", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
