package timeseries

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barometer/internal/analytics"
	"barometer/internal/analytics/scoring"
	"barometer/internal/domain/calibration"
	"barometer/internal/domain/quote"
	"barometer/internal/domain/report"
	"barometer/pkg/errors"
)

func mustDate(t *testing.T, s string) civil.Date {
	t.Helper()
	d, err := civil.ParseDate(s)
	require.NoError(t, err)
	return d
}

func mkQuote(t *testing.T, date string, c quote.Category, i quote.Intensity, engagement int) quote.Quote {
	t.Helper()
	return quote.Quote{
		Text:       "sample",
		Category:   c,
		Intensity:  i,
		Engagement: engagement,
		Date:       mustDate(t, date),
	}
}

// neutralScorer maps engagement straight to the z-score and applies the
// given intensity weights on top.
func neutralScorer(w calibration.Weights) *scoring.Scorer {
	stats := scoring.EngagementStats{Mean: 0, Std: 1, Count: 100}
	return scoring.NewScorer(stats, w, analytics.DefaultConfig().Engagement)
}

func TestGenerate_AggregatesByDay(t *testing.T) {
	weights := calibration.Weights{Mild: -1.64, Moderate: -0.49, Strong: 0.71}
	scorer := neutralScorer(weights)
	gen := NewGenerator(analytics.DefaultConfig().EMA, analytics.DefaultConfig().Trend)

	// Deliberately unordered input across two days.
	quotes := []quote.Quote{
		mkQuote(t, "2025-06-02", quote.CategoryOptimism, quote.IntensityStrong, 40),
		mkQuote(t, "2025-06-01", quote.CategoryFears, quote.IntensityMild, 10),
		mkQuote(t, "2025-06-02", quote.CategoryFears, quote.IntensityModerate, 5),
		mkQuote(t, "2025-06-01", quote.CategoryFrustrations, quote.IntensityStrong, 25),
		mkQuote(t, "2025-06-01", quote.CategoryFears, quote.IntensityStrong, 0),
	}

	ts, err := gen.Generate(quotes, scorer)
	require.NoError(t, err)
	require.Len(t, ts.DataPoints, 2)

	first, second := ts.DataPoints[0], ts.DataPoints[1]
	assert.Equal(t, mustDate(t, "2025-06-01"), first.Date)
	assert.Equal(t, mustDate(t, "2025-06-02"), second.Date)
	assert.Equal(t, first.Date, ts.StartDate)
	assert.Equal(t, second.Date, ts.EndDate)

	assert.Equal(t, 2, first.FearsCount)
	assert.Equal(t, 1, first.FrustrationsCount)
	assert.Equal(t, 0, first.OptimismCount)
	assert.Equal(t, 3, first.TotalQuotes)
	assert.Equal(t, 35, first.TotalEngagement)
	assert.InDelta(t, 35.0/3.0, first.AvgEngagement, 1e-9)

	// Category sums are the plain sums of the member quote scores.
	wantFears := scorer.Score(quotes[1]) + scorer.Score(quotes[4])
	assert.InDelta(t, wantFears, first.FearsZScoreSum, 1e-9)
	wantFrustrations := scorer.Score(quotes[3])
	assert.InDelta(t, wantFrustrations, first.FrustrationsZScoreSum, 1e-9)

	assert.Equal(t, 1, second.FearsCount)
	assert.Equal(t, 1, second.OptimismCount)
	assert.Equal(t, 2, second.TotalQuotes)

	// Composite identity holds on every point.
	for _, p := range ts.DataPoints {
		assert.InDelta(t, p.FearsZScoreSum+p.FrustrationsZScoreSum, p.NegativityScore, 1e-9)
		assert.InDelta(t, p.OptimismZScoreSum, p.PositivityScore, 1e-9)
		assert.InDelta(t, p.PositivityScore-p.NegativityScore, p.CompositeScore, 1e-9)
	}
}

func TestGenerate_CompositeScore(t *testing.T) {
	// Zero engagement keeps engagement z-scores at 0, so category sums equal
	// the intensity weights exactly.
	weights := calibration.Weights{Mild: -17.77, Moderate: 75.07, Strong: -34.93}
	scorer := neutralScorer(weights)
	gen := NewGenerator(analytics.DefaultConfig().EMA, analytics.DefaultConfig().Trend)

	quotes := []quote.Quote{
		mkQuote(t, "2025-06-01", quote.CategoryFears, quote.IntensityMild, 0),
		mkQuote(t, "2025-06-01", quote.CategoryFrustrations, quote.IntensityModerate, 0),
		mkQuote(t, "2025-06-01", quote.CategoryOptimism, quote.IntensityStrong, 0),
	}

	ts, err := gen.Generate(quotes, scorer)
	require.NoError(t, err)
	require.Len(t, ts.DataPoints, 1)

	day := ts.DataPoints[0]
	assert.InDelta(t, -17.77, day.FearsZScoreSum, 1e-9)
	assert.InDelta(t, 75.07, day.FrustrationsZScoreSum, 1e-9)
	assert.InDelta(t, -34.93, day.OptimismZScoreSum, 1e-9)
	assert.InDelta(t, 57.30, day.NegativityScore, 1e-9)
	assert.InDelta(t, -34.93, day.PositivityScore, 1e-9)
	assert.InDelta(t, -92.23, day.CompositeScore, 1e-9)
}

func TestGenerate_NoQuotes(t *testing.T) {
	gen := NewGenerator(analytics.DefaultConfig().EMA, analytics.DefaultConfig().Trend)

	ts, err := gen.Generate(nil, neutralScorer(calibration.Weights{}))
	assert.Nil(t, ts)
	assert.ErrorIs(t, err, errors.ErrInsufficientData)
}

func TestGenerate_SeriesStatistics(t *testing.T) {
	// One strong optimism quote per day with engagement 0 makes the
	// composite equal that day's intensity weight.
	scorer := neutralScorer(calibration.Weights{Strong: 1.0})
	gen := NewGenerator(analytics.DefaultConfig().EMA, analytics.DefaultConfig().Trend)

	quotes := []quote.Quote{
		mkQuote(t, "2025-06-01", quote.CategoryOptimism, quote.IntensityStrong, 0),
		mkQuote(t, "2025-06-02", quote.CategoryOptimism, quote.IntensityStrong, 0),
		mkQuote(t, "2025-06-03", quote.CategoryOptimism, quote.IntensityStrong, 0),
	}

	ts, err := gen.Generate(quotes, scorer)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, ts.MeanScore, 1e-9)
	assert.InDelta(t, 0.0, ts.StdDev, 1e-9)
	assert.InDelta(t, 1.0, ts.MinScore, 1e-9)
	assert.InDelta(t, 1.0, ts.MaxScore, 1e-9)
	assert.Equal(t, report.TrendStable, ts.OverallTrend)
	assert.InDelta(t, 0.0, ts.TrendSlope, 1e-9)
	// A flat series is a perfect fit of a flat line.
	assert.InDelta(t, 1.0, ts.TrendRSquared, 1e-9)
}

func TestApplySmoothing_WarmUpAndSeed(t *testing.T) {
	cfg := analytics.EMAConfig{Span: 7, MinPeriods: 3}
	points := []report.DailySentimentScore{
		{CompositeScore: 1},
		{CompositeScore: 2},
		{CompositeScore: 3},
		{CompositeScore: 4},
	}

	ApplySmoothing(points, cfg)

	assert.Nil(t, points[0].EMAScore)
	assert.Nil(t, points[1].EMAScore)
	require.NotNil(t, points[2].EMAScore)
	assert.InDelta(t, 2.0, *points[2].EMAScore, 1e-9)

	// alpha = 2/(7+1) = 0.25, so the next value is 0.25*4 + 0.75*2.
	require.NotNil(t, points[3].EMAScore)
	assert.InDelta(t, 2.5, *points[3].EMAScore, 1e-9)
}

func TestApplySmoothing_SeriesShorterThanWarmUp(t *testing.T) {
	cfg := analytics.EMAConfig{Span: 7, MinPeriods: 3}
	points := []report.DailySentimentScore{
		{CompositeScore: 10},
		{CompositeScore: 20},
	}

	ApplySmoothing(points, cfg)

	for _, p := range points {
		assert.Nil(t, p.EMAScore)
		assert.Nil(t, p.EMANegativity)
		assert.Nil(t, p.EMAPositivity)
	}
}

func TestNextEMA_MatchesBatchRecompute(t *testing.T) {
	cfg := analytics.EMAConfig{Span: 7, MinPeriods: 3}
	values := []float64{4.2, -1.5, 0.8, 12.0, -3.3, 7.7, 2.1}

	full := smooth(values, cfg)
	prefix := smooth(values[:len(values)-1], cfg)

	// Extending the prefix incrementally must equal the batch recompute.
	last := prefix[len(prefix)-1]
	require.NotNil(t, last)
	got := NextEMA(*last, values[len(values)-1], cfg.Span)
	require.NotNil(t, full[len(full)-1])
	assert.InDelta(t, *full[len(full)-1], got, 1e-9)

	// And every post-seed step agrees with the recursive definition.
	for i := cfg.MinPeriods; i < len(values); i++ {
		require.NotNil(t, full[i])
		assert.InDelta(t, NextEMA(*full[i-1], values[i], cfg.Span), *full[i], 1e-9)
	}
}

func TestLinearTrend(t *testing.T) {
	// Perfect rising line y = 2x + 1.
	slope, r2 := linearTrend([]float64{1, 3, 5, 7, 9})
	assert.InDelta(t, 2.0, slope, 1e-9)
	assert.InDelta(t, 1.0, r2, 1e-9)

	// Flat series has zero slope and is treated as a perfect flat fit.
	slope, r2 = linearTrend([]float64{4, 4, 4, 4})
	assert.InDelta(t, 0.0, slope, 1e-9)
	assert.InDelta(t, 1.0, r2, 1e-9)

	// Too short to fit.
	slope, r2 = linearTrend([]float64{42})
	assert.Equal(t, 0.0, slope)
	assert.Equal(t, 0.0, r2)
}

func TestSlopeDirection_StableBand(t *testing.T) {
	trend := analytics.DefaultConfig().Trend

	assert.Equal(t, report.TrendStable, trend.SlopeDirection(0.3))
	assert.Equal(t, report.TrendStable, trend.SlopeDirection(-0.49))
	assert.Equal(t, report.TrendRising, trend.SlopeDirection(0.5))
	assert.Equal(t, report.TrendFalling, trend.SlopeDirection(-1.2))
}
