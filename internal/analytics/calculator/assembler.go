// Package calculator assembles the full analytics report from a quote
// corpus. Assembly is a pure function of its inputs: the same corpus, window
// and weights always produce the same report, apart from the injected
// generation timestamp and the random alert IDs.
package calculator

import (
	"fmt"
	"sort"
	"time"

	"barometer/internal/analytics"
	"barometer/internal/analytics/entities"
	"barometer/internal/analytics/forecast"
	"barometer/internal/analytics/momentum"
	"barometer/internal/analytics/narrative"
	"barometer/internal/analytics/scoring"
	"barometer/internal/analytics/timeseries"
	"barometer/internal/analytics/velocity"
	"barometer/internal/domain/calibration"
	"barometer/internal/domain/cluster"
	"barometer/internal/domain/quote"
	"barometer/internal/domain/report"
	"barometer/pkg/errors"
)

// topQuotesPerAlert caps how many supporting quote texts an alert carries.
const topQuotesPerAlert = 3

// Input bundles everything one assembly run consumes.
type Input struct {
	Quotes      []quote.Quote
	Clusters    []cluster.ThematicCluster
	Weights     calibration.Weights
	GeneratedAt time.Time
}

// Assembler composes the analytics pipeline stages into one report.
type Assembler struct {
	cfg        analytics.Config
	timeseries *timeseries.Generator
	momentum   *momentum.Calculator
	velocity   *velocity.Detector
	forecaster *forecast.Forecaster
	entities   *entities.Calculator
}

// NewAssembler builds an assembler from a validated config.
func NewAssembler(cfg analytics.Config) *Assembler {
	return &Assembler{
		cfg:        cfg,
		timeseries: timeseries.NewGenerator(cfg.EMA, cfg.Trend),
		momentum:   momentum.NewCalculator(cfg.Momentum, cfg.Trend),
		velocity:   velocity.NewDetector(cfg.Velocity, cfg.Alerts),
		forecaster: forecast.NewForecaster(cfg.Forecast),
		entities:   entities.NewCalculator(cfg.Entities),
	}
}

// Assemble runs the pipeline over the corpus. Components that need more
// history than the window holds are omitted (nil) or flagged rather than
// failing the whole report; only an empty corpus is an error. Commentary is
// left blank for the caller to fill.
func (a *Assembler) Assemble(in Input) (*report.AnalyticsReport, error) {
	if len(in.Quotes) == 0 {
		return nil, errors.Wrap(errors.ErrInsufficientData, "empty quote window")
	}

	stats := scoring.ComputeEngagementStats(in.Quotes)
	scorer := scoring.NewScorer(stats, in.Weights, a.cfg.Engagement)

	ts, err := a.timeseries.Generate(in.Quotes, scorer)
	if err != nil {
		return nil, err
	}
	days := len(ts.DataPoints)

	rep := &report.AnalyticsReport{
		SchemaVersion:  report.SchemaVersion,
		GeneratedAt:    in.GeneratedAt,
		DataRangeStart: ts.StartDate,
		DataRangeEnd:   ts.EndDate,
		DaysAnalyzed:   days,

		SentimentTimeseries: *ts,
		Methodology:         a.methodology(),
	}

	if days >= 2 {
		if m, err := a.momentum.Calculate(ts); err == nil {
			rep.Momentum = m
		}
		if v, err := a.velocity.Detect(ts); err == nil {
			rep.Velocity = v
			attachTopQuotes(v.Alerts, in.Quotes)
		}
		rep.Forecast = a.forecaster.Project(ts)
	}

	rep.EntityTrends = a.entities.Calculate(in.Clusters)
	rep.Headline = narrative.Headline(ts, rep.Momentum)
	rep.KeyInsights = narrative.KeyInsights(ts, rep.Momentum, rep.Velocity)
	return rep, nil
}

// attachTopQuotes fills each alert with the highest-engagement quote texts
// from the alert's day, restricted to the alert's category when it has one.
func attachTopQuotes(alerts []report.TrendVelocityAlert, quotes []quote.Quote) {
	for i := range alerts {
		alert := &alerts[i]

		matching := make([]quote.Quote, 0, topQuotesPerAlert)
		for _, q := range quotes {
			if q.Date != alert.TriggeredAt {
				continue
			}
			if alert.Category != nil && q.Category != *alert.Category {
				continue
			}
			matching = append(matching, q)
		}
		sort.SliceStable(matching, func(a, b int) bool {
			if matching[a].Engagement != matching[b].Engagement {
				return matching[a].Engagement > matching[b].Engagement
			}
			return matching[a].Text < matching[b].Text
		})

		if len(matching) > topQuotesPerAlert {
			matching = matching[:topQuotesPerAlert]
		}
		for _, q := range matching {
			alert.TopQuotes = append(alert.TopQuotes, q.Text)
		}
	}
}

// methodology renders the fixed description of how the numbers are derived,
// reflecting the active configuration.
func (a *Assembler) methodology() string {
	return fmt.Sprintf(
		"Quote scores combine an engagement z-score, normalized against the "+
			"full analysis window and floored at %.1f, with intensity weights "+
			"calibrated from the label distribution by inverse-normal percentile "+
			"mapping. Daily category z-score sums roll up into negativity "+
			"(fears + frustrations), positivity (optimism) and the composite "+
			"(positivity - negativity), smoothed with a %d-day EMA. Momentum is "+
			"the percentage rate of change of category sums over 1/3/7 day "+
			"lookbacks; velocity alerts flag day-over-day changes whose z-score "+
			"against the trailing %d-day history reaches %.1f or beyond.",
		a.cfg.Engagement.ZFloor,
		a.cfg.EMA.Span,
		a.cfg.Velocity.LookbackDays,
		a.cfg.Alerts.Notable,
	)
}
