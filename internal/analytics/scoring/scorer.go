// Package scoring combines engagement evidence and calibrated intensity
// weights into a single per-quote score on a shared z-score scale.
package scoring

import (
	"math"

	"barometer/internal/analytics"
	"barometer/internal/domain/calibration"
	"barometer/internal/domain/quote"
)

// EngagementStats holds the engagement moments of a quote window. They are
// computed once over the whole window so every day is normalized against the
// same baseline.
type EngagementStats struct {
	Mean  float64
	Std   float64
	Count int
}

// ComputeEngagementStats returns mean and sample standard deviation of quote
// engagement. Fewer than two quotes cannot support a spread estimate, so the
// stats fall back to mean 0 and std 1, which makes raw engagement act as the
// z-score downstream.
func ComputeEngagementStats(quotes []quote.Quote) EngagementStats {
	n := len(quotes)
	if n < 2 {
		return EngagementStats{Mean: 0, Std: 1, Count: n}
	}

	var sum float64
	for i := range quotes {
		sum += float64(quotes[i].Engagement)
	}
	mean := sum / float64(n)

	var ss float64
	for i := range quotes {
		d := float64(quotes[i].Engagement) - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(n-1))

	return EngagementStats{Mean: mean, Std: std, Count: n}
}

// Scorer scores quotes against a fixed engagement baseline and calibration.
type Scorer struct {
	stats   EngagementStats
	weights calibration.Weights
	floor   float64
}

// NewScorer builds a scorer for one analysis window.
func NewScorer(stats EngagementStats, weights calibration.Weights, cfg analytics.EngagementConfig) *Scorer {
	return &Scorer{stats: stats, weights: weights, floor: cfg.ZFloor}
}

// EngagementZ normalizes an engagement value against the window baseline.
// A zero spread yields 0 rather than a division blow-up, and the result is
// floored so heavily downvoted outliers cannot dominate a day's sum.
func (s *Scorer) EngagementZ(engagement int) float64 {
	var z float64
	if s.stats.Std > 0 {
		z = (float64(engagement) - s.stats.Mean) / s.stats.Std
	}
	return math.Max(z, s.floor)
}

// IntensityZ returns the calibrated weight for an intensity label.
func (s *Scorer) IntensityZ(intensity quote.Intensity) float64 {
	return s.weights.For(intensity)
}

// Score returns the combined quote score, the sum of the engagement z-score
// and the calibrated intensity z-score.
func (s *Scorer) Score(q quote.Quote) float64 {
	return s.EngagementZ(q.Engagement) + s.IntensityZ(q.Intensity)
}
