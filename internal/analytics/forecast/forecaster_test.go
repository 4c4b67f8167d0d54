package forecast

import (
	"math"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barometer/internal/analytics"
	"barometer/internal/domain/report"
)

func seriesOf(composites ...float64) *report.SentimentTimeSeries {
	start := civil.Date{Year: 2025, Month: time.June, Day: 1}
	points := make([]report.DailySentimentScore, len(composites))
	for i := range points {
		points[i].Date = start.AddDays(i)
		points[i].CompositeScore = composites[i]
	}
	return &report.SentimentTimeSeries{DataPoints: points}
}

func defaultForecaster() *Forecaster {
	return NewForecaster(analytics.DefaultConfig().Forecast)
}

func TestProject_PerfectLine(t *testing.T) {
	// y = x + 1 over ten days. Train takes the first seven.
	ts := seriesOf(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)

	res := defaultForecaster().Project(ts)
	require.NotNil(t, res)
	require.False(t, res.InsufficientData)

	assert.InDelta(t, 1.0, res.Slope, 1e-9)
	assert.InDelta(t, 1.0, res.Intercept, 1e-9)
	assert.InDelta(t, 1.0, res.TestRSquared, 1e-9)
	assert.InDelta(t, 0.0, res.ResidualStdError, 1e-9)
	assert.InDelta(t, 0.95, res.ConfidenceLevel, 1e-3)

	require.Len(t, res.Points, 3)
	lastDate := ts.DataPoints[len(ts.DataPoints)-1].Date
	for h, p := range res.Points {
		assert.Equal(t, lastDate.AddDays(h+1), p.Date)
		assert.InDelta(t, float64(11+h), p.Predicted, 1e-9)
		// No residual noise, so the band collapses onto the line.
		assert.InDelta(t, p.Predicted, p.UpperBound, 1e-9)
		assert.InDelta(t, p.Predicted, p.LowerBound, 1e-9)
	}
}

func TestProject_ResidualBand(t *testing.T) {
	// Train is [0, 3, 3], fitting slope 1.5 and intercept 0.5 with residual
	// standard error sqrt(1.5). The test days sit exactly on the line.
	ts := seriesOf(0, 3, 3, 5, 6.5)

	res := defaultForecaster().Project(ts)
	require.NotNil(t, res)

	assert.InDelta(t, 1.5, res.Slope, 1e-9)
	assert.InDelta(t, 0.5, res.Intercept, 1e-9)
	assert.InDelta(t, 1.0, res.TestRSquared, 1e-9)

	se := math.Sqrt(1.5)
	assert.InDelta(t, se, res.ResidualStdError, 1e-9)

	require.Len(t, res.Points, 3)
	band := 1.96 * se
	wantPredicted := []float64{8.0, 9.5, 11.0}
	for i, p := range res.Points {
		assert.InDelta(t, wantPredicted[i], p.Predicted, 1e-9)
		assert.InDelta(t, wantPredicted[i]+band, p.UpperBound, 1e-9)
		assert.InDelta(t, wantPredicted[i]-band, p.LowerBound, 1e-9)
	}
}

func TestProject_InsufficientData(t *testing.T) {
	res := defaultForecaster().Project(seriesOf(1, 2, 3, 4))
	require.NotNil(t, res)

	assert.True(t, res.InsufficientData)
	assert.Empty(t, res.Points)
	assert.Equal(t, 0.0, res.Slope)
	assert.Equal(t, 0.0, res.ResidualStdError)
}

func TestProject_FlatSeries(t *testing.T) {
	res := defaultForecaster().Project(seriesOf(2, 2, 2, 2, 2, 2))
	require.NotNil(t, res)

	assert.InDelta(t, 0.0, res.Slope, 1e-9)
	assert.InDelta(t, 2.0, res.Intercept, 1e-9)
	// Flat test reproduced exactly by a flat line counts as a perfect fit.
	assert.InDelta(t, 1.0, res.TestRSquared, 1e-9)
	for _, p := range res.Points {
		assert.InDelta(t, 2.0, p.Predicted, 1e-9)
	}
}

func TestProject_BadFitClampsRSquaredToZero(t *testing.T) {
	// Train rises steadily, test collapses. The fit explains less than the
	// test mean does, which must clamp at 0 rather than go negative.
	ts := seriesOf(0, 1, 2, 3, 4, 5, 6, -7, -8, -9)

	res := defaultForecaster().Project(ts)
	require.NotNil(t, res)
	assert.Equal(t, 0.0, res.TestRSquared)
}
