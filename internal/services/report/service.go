// Package report orchestrates report generation: load the corpus window,
// resolve calibration weights, run the analytics pipeline, then deliver the
// result to the archive, the cache and the alert channel. Only loading,
// computation and archiving can fail a run; every delivery step past the
// archive degrades to a partial run with a warning.
package report

import (
	"context"
	"time"

	"barometer/internal/adapters/config"
	"barometer/internal/adapters/llm"
	"barometer/internal/adapters/telegram"
	"barometer/internal/analytics"
	"barometer/internal/analytics/calculator"
	"barometer/internal/domain/calibration"
	"barometer/internal/domain/cluster"
	"barometer/internal/domain/quote"
	"barometer/internal/domain/report"
	"barometer/internal/metrics"
	"barometer/pkg/errors"
	"barometer/pkg/logger"
)

// Notifier pushes a rendered digest to the alert channel.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// CalibrationMeta records which weights a run actually used. Stale or
// missing calibration never blocks generation; it is surfaced here and in
// the logs instead.
type CalibrationMeta struct {
	Source       string // artifact|priors
	Version      int64
	CalibratedAt time.Time
	Stale        bool
	Degraded     bool
}

// Service generates, persists and delivers analytics reports.
type Service struct {
	cfg    config.ReportConfig
	priors calibration.Weights

	assembler    *calculator.Assembler
	quotes       quote.Repository
	clusters     cluster.Repository
	calibrations calibration.Repository
	archive      report.Repository

	cache    Cacher
	provider llm.Provider
	notifier Notifier

	log *logger.Logger
	now func() time.Time
}

// NewService creates the report service. Cache, provider and notifier may be
// nil; the corresponding delivery step is skipped.
func NewService(
	cfg config.ReportConfig,
	analyticsCfg analytics.Config,
	quotes quote.Repository,
	clusters cluster.Repository,
	calibrations calibration.Repository,
	archive report.Repository,
	cache Cacher,
	provider llm.Provider,
	notifier Notifier,
) *Service {
	return &Service{
		cfg:          cfg,
		priors:       analyticsCfg.Calibration.Priors(),
		assembler:    calculator.NewAssembler(analyticsCfg),
		quotes:       quotes,
		clusters:     clusters,
		calibrations: calibrations,
		archive:      archive,
		cache:        cache,
		provider:     provider,
		notifier:     notifier,
		log:          logger.Get().With("service", "report"),
		now:          time.Now,
	}
}

// Generate runs one full pipeline cycle and returns the archived report.
// The window is anchored at the newest quote date, not the wall clock, so a
// rerun over unchanged data reproduces the same report.
func (s *Service) Generate(ctx context.Context) (*report.AnalyticsReport, error) {
	start := s.now().UTC()

	loadStart := s.now()
	_, end, err := s.quotes.GetDateBounds(ctx)
	if err != nil {
		metrics.PipelineRuns.WithLabelValues("error").Inc()
		return nil, errors.Wrap(err, "failed to resolve corpus bounds")
	}
	from := end.AddDays(-(s.cfg.WindowDays - 1))

	quotes, err := s.quotes.GetByDateRange(ctx, from, end)
	if err != nil {
		metrics.PipelineRuns.WithLabelValues("error").Inc()
		return nil, errors.Wrap(err, "failed to load quote window")
	}

	clusters, err := s.clusters.GetByDateRange(ctx, from, end)
	if err != nil {
		// Clusters only feed entity trends; a failed read costs that
		// section, not the report.
		s.log.Warn("Failed to load clusters, skipping entity trends", "error", err)
		clusters = nil
	}
	metrics.RecordPipelineStage("load", loadStart)

	weights, meta := s.resolveWeights(ctx)

	computeStart := s.now()
	rep, err := s.assembler.Assemble(calculator.Input{
		Quotes:      quotes,
		Clusters:    clusters,
		Weights:     weights,
		GeneratedAt: start,
	})
	if err != nil {
		metrics.PipelineRuns.WithLabelValues("error").Inc()
		return nil, errors.Wrap(err, "failed to assemble report")
	}
	metrics.RecordPipelineStage("compute", computeStart)
	s.recordComputeMetrics(rep, len(quotes))

	partial := false
	rep.SentimentCommentary = s.generateCommentary(ctx, rep, quotes)

	archiveStart := s.now()
	if err := s.archive.Store(ctx, rep); err != nil {
		metrics.PipelineRuns.WithLabelValues("error").Inc()
		return nil, errors.Wrap(err, "failed to archive report")
	}
	metrics.RecordPipelineStage("archive", archiveStart)

	if s.cache != nil {
		cacheStart := s.now()
		if err := s.cache.Set(ctx, rep); err != nil {
			s.log.Warn("Failed to cache report", "error", err)
			partial = true
		}
		metrics.RecordPipelineStage("cache", cacheStart)
	}

	if !s.notify(ctx, rep) {
		partial = true
	}

	status := "success"
	if partial {
		status = "partial"
	}
	metrics.PipelineRuns.WithLabelValues(status).Inc()

	s.log.Info("Report generated",
		"days_analyzed", rep.DaysAnalyzed,
		"quotes", len(quotes),
		"calibration_source", meta.Source,
		"calibration_version", meta.Version,
		"status", status,
		"duration", s.now().UTC().Sub(start),
	)
	return rep, nil
}

// Latest returns the most recent report, reading through the cache to the
// archive. An archive hit refills the cache best-effort.
func (s *Service) Latest(ctx context.Context) (*report.AnalyticsReport, error) {
	if s.cache != nil {
		if rep, err := s.cache.Get(ctx); err != nil {
			s.log.Warn("Report cache read failed, falling back to archive", "error", err)
		} else if rep != nil {
			return rep, nil
		}
	}

	rep, err := s.archive.Latest(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, rep); err != nil {
			s.log.Warn("Failed to refill report cache", "error", err)
		}
	}
	return rep, nil
}

// resolveWeights loads the newest calibration artifact. Missing artifacts or
// a failed read fall back to the configured priors; a stale artifact is
// still used but flagged.
func (s *Service) resolveWeights(ctx context.Context) (calibration.Weights, CalibrationMeta) {
	art, err := s.calibrations.Latest(ctx)
	if err != nil {
		if errors.Is(err, errors.ErrNoCalibration) {
			s.log.Warn("No calibration artifact stored, using prior weights")
		} else {
			s.log.Warn("Failed to load calibration artifact, using prior weights", "error", err)
		}
		return s.priors, CalibrationMeta{Source: "priors"}
	}

	meta := CalibrationMeta{
		Source:       "artifact",
		Version:      art.Version,
		CalibratedAt: art.CalibratedAt,
		Degraded:     art.Degraded,
	}
	if art.StaleAt(s.cfg.CalibrationMaxAge, s.now().UTC()) {
		meta.Stale = true
		s.log.Warn("Calibration artifact is stale",
			"error", errors.ErrStaleCalibration,
			"version", art.Version,
			"calibrated_at", art.CalibratedAt,
			"max_age", s.cfg.CalibrationMaxAge,
		)
	}
	return art.Weights, meta
}

// generateCommentary asks the configured provider for plain-language
// commentary. Any failure degrades to an empty string.
func (s *Service) generateCommentary(ctx context.Context, rep *report.AnalyticsReport, quotes []quote.Quote) string {
	if s.provider == nil || len(rep.SentimentTimeseries.DataPoints) < 2 {
		return ""
	}

	commentaryStart := s.now()
	defer metrics.RecordPipelineStage("commentary", commentaryStart)

	prompt := buildCommentaryPrompt(&rep.SentimentTimeseries, quotes)
	text, err := s.provider.Complete(ctx, commentarySystem, prompt)
	if err != nil {
		metrics.LLMRequests.WithLabelValues(s.provider.Name(), "error").Inc()
		s.log.Warn("Could not generate sentiment commentary", "provider", s.provider.Name(), "error", err)
		return ""
	}

	metrics.LLMRequests.WithLabelValues(s.provider.Name(), "success").Inc()
	return stripWrappingQuotes(text)
}

// notify pushes the alert digest when the report warrants one. Returns false
// only on a send failure.
func (s *Service) notify(ctx context.Context, rep *report.AnalyticsReport) bool {
	if s.notifier == nil {
		return true
	}

	text, ok := telegram.BuildDigest(rep)
	if !ok {
		metrics.NotifierSends.WithLabelValues("skipped").Inc()
		return true
	}

	notifyStart := s.now()
	defer metrics.RecordPipelineStage("notify", notifyStart)

	if err := s.notifier.Send(ctx, text); err != nil {
		metrics.NotifierSends.WithLabelValues("error").Inc()
		s.log.Warn("Failed to send alert digest", "error", err)
		return false
	}

	metrics.NotifierSends.WithLabelValues("success").Inc()
	return true
}

func (s *Service) recordComputeMetrics(rep *report.AnalyticsReport, quoteCount int) {
	metrics.QuotesScored.Add(float64(quoteCount))
	metrics.ReportDaysAnalyzed.Set(float64(rep.DaysAnalyzed))
	if rep.Velocity != nil {
		for _, a := range rep.Velocity.Alerts {
			metrics.VelocityAlerts.WithLabelValues(string(a.Severity)).Inc()
		}
	}
}
