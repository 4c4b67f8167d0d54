// Package calibration runs the out-of-band calibration cycle: read a corpus
// window, derive intensity weights, store a new versioned artifact.
package calibration

import (
	"context"
	"time"

	"barometer/internal/analytics"
	"barometer/internal/analytics/calibrate"
	"barometer/internal/domain/calibration"
	"barometer/internal/domain/quote"
	"barometer/internal/metrics"
	"barometer/pkg/errors"
	"barometer/pkg/logger"
)

// Service produces calibration artifacts from the stored corpus.
type Service struct {
	calibrator *calibrate.Calibrator
	quotes     quote.Repository
	artifacts  calibration.Repository
	log        *logger.Logger
	now        func() time.Time
}

// NewService creates the calibration service.
func NewService(cfg analytics.CalibrationConfig, quotes quote.Repository, artifacts calibration.Repository) *Service {
	return &Service{
		calibrator: calibrate.New(cfg),
		quotes:     quotes,
		artifacts:  artifacts,
		log:        logger.Get().With("service", "calibration"),
		now:        time.Now,
	}
}

// Run calibrates over the most recent windowDays of the corpus and stores the
// result. windowDays <= 0 means the full corpus. The stored artifact is
// returned with its assigned version.
func (s *Service) Run(ctx context.Context, windowDays int) (*calibration.Artifact, error) {
	earliest, latest, err := s.quotes.GetDateBounds(ctx)
	if err != nil {
		metrics.CalibrationRuns.WithLabelValues("error").Inc()
		return nil, errors.Wrap(err, "failed to resolve corpus bounds")
	}

	from := earliest
	if windowDays > 0 {
		from = latest.AddDays(-(windowDays - 1))
		if from.Before(earliest) {
			from = earliest
		}
	}

	quotes, err := s.quotes.GetByDateRange(ctx, from, latest)
	if err != nil {
		metrics.CalibrationRuns.WithLabelValues("error").Inc()
		return nil, errors.Wrap(err, "failed to load calibration corpus")
	}

	artifact := s.calibrator.Run(quotes, s.now().UTC())

	if err := s.artifacts.Store(ctx, artifact); err != nil {
		metrics.CalibrationRuns.WithLabelValues("error").Inc()
		return nil, errors.Wrap(err, "failed to store calibration artifact")
	}

	status := "success"
	if artifact.Degraded {
		status = "degraded"
		s.log.Warn("Corpus below minimum size, stored prior weights",
			"total_quotes", artifact.TotalQuotes,
		)
	}
	metrics.CalibrationRuns.WithLabelValues(status).Inc()

	s.log.Info("Calibration stored",
		"version", artifact.Version,
		"total_quotes", artifact.TotalQuotes,
		"range_start", artifact.DataRangeStart,
		"range_end", artifact.DataRangeEnd,
		"mild", artifact.Weights.Mild,
		"moderate", artifact.Weights.Moderate,
		"strong", artifact.Weights.Strong,
		"ordered", artifact.Weights.Ordered(),
	)
	return artifact, nil
}
