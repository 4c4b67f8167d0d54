// Package velocity flags statistically unusual day-over-day changes in the
// sentiment series. Each tracked metric's daily change is z-scored against
// its own trailing history; crossings of the severity thresholds materialize
// as alerts.
package velocity

import (
	"fmt"
	"math"
	"sort"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"barometer/internal/analytics"
	"barometer/internal/domain/quote"
	"barometer/internal/domain/report"
	"barometer/pkg/errors"
)

// Detector analyzes velocity across the tracked metrics.
type Detector struct {
	cfg        analytics.VelocityConfig
	thresholds analytics.AlertThresholds
}

// NewDetector creates a velocity detector.
func NewDetector(cfg analytics.VelocityConfig, thresholds analytics.AlertThresholds) *Detector {
	return &Detector{cfg: cfg, thresholds: thresholds}
}

type metricSpec struct {
	name     string
	category *quote.Category
	value    func(*report.DailySentimentScore) float64
}

func trackedMetrics() []metricSpec {
	fears := quote.CategoryFears
	frustrations := quote.CategoryFrustrations
	optimism := quote.CategoryOptimism
	return []metricSpec{
		{name: "composite_score", value: func(p *report.DailySentimentScore) float64 { return p.CompositeScore }},
		{name: "fears_zscore_sum", category: &fears, value: func(p *report.DailySentimentScore) float64 { return p.FearsZScoreSum }},
		{name: "frustrations_zscore_sum", category: &frustrations, value: func(p *report.DailySentimentScore) float64 { return p.FrustrationsZScoreSum }},
		{name: "optimism_zscore_sum", category: &optimism, value: func(p *report.DailySentimentScore) float64 { return p.OptimismZScoreSum }},
	}
}

// Detect builds the velocity report for the latest day. Velocity is a first
// difference, so fewer than two days returns ErrInsufficientData. With two
// days the metrics are computed but no alert can be judged against history,
// so none are materialized.
func (d *Detector) Detect(ts *report.SentimentTimeSeries) (*report.VelocityReport, error) {
	points := ts.DataPoints
	if len(points) < 2 {
		return nil, errors.Wrap(errors.ErrInsufficientData, "velocity needs at least two days")
	}

	lookback := d.cfg.LookbackDays
	if len(points)-1 < lookback {
		lookback = len(points) - 1
	}

	rep := &report.VelocityReport{
		ReportDate:   points[len(points)-1].Date,
		LookbackDays: lookback,
	}

	for _, spec := range trackedMetrics() {
		metric, alert := d.analyze(spec, points)
		rep.Metrics = append(rep.Metrics, metric)
		if alert != nil {
			rep.Alerts = append(rep.Alerts, *alert)
		}
	}

	sort.SliceStable(rep.Alerts, func(i, j int) bool {
		return rep.Alerts[i].Severity.Rank() < rep.Alerts[j].Severity.Rank()
	})
	for _, a := range rep.Alerts {
		switch a.Severity {
		case report.SeverityAlert:
			rep.AlertCount++
		case report.SeverityWarning:
			rep.WarningCount++
		}
	}
	rep.TotalAlerts = len(rep.Alerts)
	return rep, nil
}

func (d *Detector) analyze(spec metricSpec, points []report.DailySentimentScore) (report.VelocityMetric, *report.TrendVelocityAlert) {
	values := make([]float64, len(points))
	for i := range points {
		values[i] = spec.value(&points[i])
	}

	velocities := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		velocities[i-1] = values[i] - values[i-1]
	}
	current := velocities[len(velocities)-1]

	hist := trailingWindow(velocities, d.cfg.LookbackDays)
	histMean := mean(hist)
	histStd := sampleStdOr1(hist)

	var z float64
	if histStd > 0 {
		z = (current - histMean) / histStd
	}

	var acceleration float64
	if len(velocities) >= 2 {
		acceleration = current - velocities[len(velocities)-2]
	}

	metric := report.VelocityMetric{
		MetricName:     spec.name,
		CurrentValue:   values[len(values)-1],
		Velocity:       current,
		VelocityZScore: z,
		Acceleration:   acceleration,
		HistoricalMean: histMean,
		HistoricalStd:  histStd,
		AlertLevel:     d.thresholds.Severity(z),
	}

	// Two observed days give one velocity and no history to judge it
	// against, so no alert regardless of the z-score.
	if metric.AlertLevel == report.SeverityNone || len(points) < 3 {
		return metric, nil
	}
	return metric, d.materialize(spec, metric, values, points[len(points)-1].Date)
}

func (d *Detector) materialize(spec metricSpec, metric report.VelocityMetric, values []float64, date civil.Date) *report.TrendVelocityAlert {
	rising := metric.Velocity > 0
	direction := report.TrendFalling
	if rising {
		direction = report.TrendRising
	}

	label := "Overall sentiment"
	if spec.category != nil {
		label = spec.category.Title()
	}

	return &report.TrendVelocityAlert{
		AlertID:       uuid.NewString()[:8],
		TriggeredAt:   date,
		Severity:      metric.AlertLevel,
		Metric:        spec.name,
		Category:      spec.category,
		CurrentValue:  values[len(values)-1],
		ExpectedValue: mean(trailingWindow(values, d.cfg.LookbackDays)),
		ZScore:        metric.VelocityZScore,
		Percentile:    percentileOf(metric.VelocityZScore),
		Direction:     direction,
		Description:   describe(label, metric.VelocityZScore, rising, d.thresholds.SignificantZ),
	}
}

// trailingWindow returns up to n entries preceding the latest one. A
// single-entry series has no preceding history and is returned as is.
func trailingWindow(values []float64, n int) []float64 {
	if len(values) <= 1 {
		return values
	}
	window := values[:len(values)-1]
	if len(window) > n {
		window = window[len(window)-n:]
	}
	return window
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdOr1 falls back to 1 below two observations, which turns the
// z-score into the raw deviation from the mean.
func sampleStdOr1(values []float64) float64 {
	if len(values) < 2 {
		return 1
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

// percentileOf maps a z-score to its standard-normal percentile.
func percentileOf(z float64) float64 {
	return 50 * (1 + math.Erf(z/math.Sqrt2))
}

func describe(label string, z float64, rising bool, significantZ float64) string {
	qualifier := "notably"
	if math.Abs(z) >= significantZ {
		qualifier = "significantly"
	}
	verb := "decreased"
	if rising {
		verb = "increased"
	}
	return fmt.Sprintf("%s has %s %s (z=%.2f)", label, qualifier, verb, z)
}
