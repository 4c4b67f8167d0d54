// Package momentum measures how fast each sentiment category is moving,
// using percentage rate-of-change over several lookbacks plus a smoothed
// day-over-day change.
package momentum

import (
	"math"

	"barometer/internal/analytics"
	"barometer/internal/domain/quote"
	"barometer/internal/domain/report"
	"barometer/pkg/errors"
)

// Calculator derives momentum from an existing daily series.
type Calculator struct {
	cfg   analytics.MomentumConfig
	trend analytics.TrendConfig
}

// NewCalculator creates a momentum calculator.
func NewCalculator(cfg analytics.MomentumConfig, trend analytics.TrendConfig) *Calculator {
	return &Calculator{cfg: cfg, trend: trend}
}

// Calculate builds the momentum report for the latest day of the series.
// Momentum is a comparison against the past, so fewer than two days returns
// ErrInsufficientData.
func (c *Calculator) Calculate(ts *report.SentimentTimeSeries) (*report.MomentumReport, error) {
	points := ts.DataPoints
	if len(points) < 2 {
		return nil, errors.Wrap(errors.ErrInsufficientData, "momentum needs at least two days")
	}

	lookback := c.cfg.Roc7DLookback - 1
	if len(points) < lookback {
		lookback = len(points)
	}

	rep := &report.MomentumReport{
		ReportDate:   points[len(points)-1].Date,
		LookbackDays: lookback,
	}

	for _, cat := range quote.Categories() {
		*rep.ByCategory(cat) = c.categoryMomentum(cat, points)
	}
	rep.FastestRising, rep.FastestFalling = extremes(rep)
	return rep, nil
}

func (c *Calculator) categoryMomentum(cat quote.Category, points []report.DailySentimentScore) report.CategoryMomentum {
	values := make([]float64, len(points))
	for i := range points {
		values[i] = points[i].CategoryZScoreSum(cat)
	}
	latest := &points[len(points)-1]

	m := report.CategoryMomentum{
		Category:         cat,
		CurrentCount:     latest.CategoryCount(cat),
		CurrentZScoreSum: values[len(values)-1],
		Roc1D:            rateOfChange(values, c.cfg.Roc1DLookback),
		Roc3D:            rateOfChange(values, c.cfg.Roc3DLookback),
		Roc7D:            rateOfChange(values, c.cfg.Roc7DLookback),
		EMAMomentum:      emaMomentum(values, c.cfg.EMASpan),
	}
	m.Trend, m.TrendStrength = c.trend.RocClassification(m.Roc7D)
	return m
}

// rateOfChange compares the latest value against the one lookback-1 days
// earlier, as a percentage of the past magnitude. A series shorter than the
// lookback degrades to comparing against its oldest value. A zero past value
// makes the ratio meaningless; any move away from zero reports as 100%.
func rateOfChange(values []float64, lookback int) float64 {
	if len(values) == 0 {
		return 0
	}
	if lookback > len(values) {
		lookback = len(values)
	}

	current := values[len(values)-1]
	past := values[len(values)-lookback]

	if past == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return (current - past) / math.Abs(past) * 100
}

// emaMomentum smooths the day-over-day changes of the series and returns the
// latest smoothed change. The span shrinks to the number of changes when the
// series is short.
func emaMomentum(values []float64, span int) float64 {
	if len(values) < 2 {
		return 0
	}

	changes := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		changes[i-1] = values[i] - values[i-1]
	}

	if span > len(changes) {
		span = len(changes)
	}
	alpha := 2.0 / float64(span+1)

	ema := changes[0]
	for _, x := range changes[1:] {
		ema = alpha*x + (1-alpha)*ema
	}
	return ema
}

// extremes picks the categories with the highest and lowest 7-day rate of
// change. Ties keep the earlier category in the canonical order.
func extremes(rep *report.MomentumReport) (rising, falling quote.Category) {
	cats := quote.Categories()
	rising, falling = cats[0], cats[0]
	for _, cat := range cats[1:] {
		m := rep.ByCategory(cat)
		if m.Roc7D > rep.ByCategory(rising).Roc7D {
			rising = cat
		}
		if m.Roc7D < rep.ByCategory(falling).Roc7D {
			falling = cat
		}
	}
	return rising, falling
}
