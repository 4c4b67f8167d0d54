package workers

import (
	"context"
	"time"

	"barometer/internal/domain/report"
	"barometer/pkg/errors"
	"barometer/pkg/logger"
)

// ReportGenerator interface for dependency injection
type ReportGenerator interface {
	Generate(ctx context.Context) (*report.AnalyticsReport, error)
}

// ReportWorker drives the report pipeline on a fixed cadence. Quotes land
// once per day, so the default interval is daily; runOnStart covers deploys
// where waiting a full interval for the first report is not acceptable.
type ReportWorker struct {
	*BaseWorker
	service    ReportGenerator
	runOnStart bool
	log        *logger.Logger
}

// NewReportWorker creates the report generation worker.
func NewReportWorker(service ReportGenerator, interval time.Duration, runOnStart bool) *ReportWorker {
	return &ReportWorker{
		BaseWorker: NewBaseWorker("report_generator", interval, true),
		service:    service,
		runOnStart: runOnStart,
		log:        logger.Get().With("worker", "report_generator"),
	}
}

// RunOnStart reports whether the first run should happen at scheduler start.
func (w *ReportWorker) RunOnStart() bool {
	return w.runOnStart
}

// Run executes one report generation cycle. An empty corpus is expected
// before the first ingest and logged rather than treated as a failure.
func (w *ReportWorker) Run(ctx context.Context) error {
	start := time.Now()

	rep, err := w.service.Generate(ctx)
	if err != nil {
		if errors.Is(err, errors.ErrEmptyCorpus) {
			w.log.Warn("No quotes ingested yet, skipping report generation")
			w.RecordRun(time.Since(start))
			return nil
		}
		w.RecordError(err, time.Since(start))
		return errors.Wrap(err, "report generation failed")
	}

	alerts := 0
	if rep.Velocity != nil {
		alerts = rep.Velocity.TotalAlerts
	}
	w.log.Info("Report cycle complete",
		"days_analyzed", rep.DaysAnalyzed,
		"alerts", alerts,
		"duration", time.Since(start),
	)

	w.RecordRun(time.Since(start))
	return nil
}
