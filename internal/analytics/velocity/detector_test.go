package velocity

import (
	"math"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barometer/internal/analytics"
	"barometer/internal/domain/quote"
	"barometer/internal/domain/report"
	"barometer/pkg/errors"
)

func seriesWith(composites []float64, fears []float64) *report.SentimentTimeSeries {
	start := civil.Date{Year: 2025, Month: time.June, Day: 1}
	points := make([]report.DailySentimentScore, len(composites))
	for i := range points {
		points[i].Date = start.AddDays(i)
		points[i].CompositeScore = composites[i]
		if fears != nil {
			points[i].FearsZScoreSum = fears[i]
		}
	}
	return &report.SentimentTimeSeries{DataPoints: points}
}

func defaultDetector() *Detector {
	cfg := analytics.DefaultConfig()
	return NewDetector(cfg.Velocity, cfg.Alerts)
}

func TestDetect_AnomalousSpike(t *testing.T) {
	// Composite values 20.49 then 75.07 give a velocity of +54.58. The three
	// prior velocities are -27.77, -2.15 and +23.47, so the history has mean
	// -2.15 and sample std 25.62, putting the current velocity at z = +2.21.
	composites := []float64{26.94, -0.83, -2.98, 20.49, 75.07}
	ts := seriesWith(composites, nil)

	rep, err := defaultDetector().Detect(ts)
	require.NoError(t, err)

	require.Len(t, rep.Metrics, 4)
	composite := rep.Metrics[0]
	assert.Equal(t, "composite_score", composite.MetricName)
	assert.InDelta(t, 75.07, composite.CurrentValue, 1e-9)
	assert.InDelta(t, 54.58, composite.Velocity, 1e-9)
	assert.InDelta(t, -2.15, composite.HistoricalMean, 1e-9)
	assert.InDelta(t, 25.62, composite.HistoricalStd, 1e-9)
	assert.InDelta(t, 2.21, composite.VelocityZScore, 0.01)
	assert.Equal(t, report.SeverityAlert, composite.AlertLevel)

	// The flat category series must not alert.
	for _, m := range rep.Metrics[1:] {
		assert.Equal(t, report.SeverityNone, m.AlertLevel, m.MetricName)
	}

	require.Len(t, rep.Alerts, 1)
	alert := rep.Alerts[0]
	assert.Len(t, alert.AlertID, 8)
	assert.Equal(t, ts.DataPoints[4].Date, alert.TriggeredAt)
	assert.Equal(t, report.SeverityAlert, alert.Severity)
	assert.Equal(t, "composite_score", alert.Metric)
	assert.Nil(t, alert.Category)
	assert.InDelta(t, 75.07, alert.CurrentValue, 1e-9)
	// Expected value is the mean of the prior composite values themselves.
	assert.InDelta(t, 10.905, alert.ExpectedValue, 1e-9)
	assert.Equal(t, report.TrendRising, alert.Direction)
	assert.Greater(t, alert.Percentile, 98.0)
	assert.Equal(t, "Overall sentiment has significantly increased (z=2.21)", alert.Description)

	assert.Equal(t, 1, rep.TotalAlerts)
	assert.Equal(t, 1, rep.AlertCount)
	assert.Equal(t, 0, rep.WarningCount)
	assert.Equal(t, 4, rep.LookbackDays)
}

func TestDetect_NotableSeverityMaterializes(t *testing.T) {
	// Fears velocities are -10, 0, +10 then +12: history mean 0, std 10,
	// so the current velocity sits at z = 1.2.
	fears := []float64{0, -10, -10, 0, 12}
	flat := []float64{0, 0, 0, 0, 0}
	ts := seriesWith(flat, fears)

	rep, err := defaultDetector().Detect(ts)
	require.NoError(t, err)

	require.Len(t, rep.Alerts, 1)
	alert := rep.Alerts[0]
	assert.Equal(t, report.SeverityNotable, alert.Severity)
	assert.Equal(t, "fears_zscore_sum", alert.Metric)
	require.NotNil(t, alert.Category)
	assert.Equal(t, quote.CategoryFears, *alert.Category)
	assert.Equal(t, "Fears has notably increased (z=1.20)", alert.Description)

	assert.Equal(t, 1, rep.TotalAlerts)
	assert.Equal(t, 0, rep.AlertCount)
	assert.Equal(t, 0, rep.WarningCount)
}

func TestDetect_SortsAlertsBySeverity(t *testing.T) {
	composites := []float64{26.94, -0.83, -2.98, 20.49, 75.07} // z = 2.21, alert
	fears := []float64{0, -10, -10, 0, 12}                     // z = 1.2, notable
	ts := seriesWith(composites, fears)

	rep, err := defaultDetector().Detect(ts)
	require.NoError(t, err)

	require.Len(t, rep.Alerts, 2)
	assert.Equal(t, report.SeverityAlert, rep.Alerts[0].Severity)
	assert.Equal(t, report.SeverityNotable, rep.Alerts[1].Severity)
	assert.Equal(t, 2, rep.TotalAlerts)
}

func TestDetect_TwoDaysComputesMetricsWithoutAlerts(t *testing.T) {
	ts := seriesWith([]float64{10, 90}, nil)

	rep, err := defaultDetector().Detect(ts)
	require.NoError(t, err)

	composite := rep.Metrics[0]
	assert.InDelta(t, 80.0, composite.Velocity, 1e-9)
	// The single velocity is its own history, so the deviation is zero.
	assert.Equal(t, 0.0, composite.VelocityZScore)
	assert.Empty(t, rep.Alerts)
	assert.Equal(t, 1, rep.LookbackDays)
}

func TestDetect_OneDay(t *testing.T) {
	ts := seriesWith([]float64{42}, nil)

	rep, err := defaultDetector().Detect(ts)
	assert.Nil(t, rep)
	assert.ErrorIs(t, err, errors.ErrInsufficientData)
}

func TestDetect_FlatSeriesNeverNaN(t *testing.T) {
	ts := seriesWith([]float64{5, 5, 5, 5, 5, 5}, nil)

	rep, err := defaultDetector().Detect(ts)
	require.NoError(t, err)

	for _, m := range rep.Metrics {
		assert.False(t, math.IsNaN(m.VelocityZScore), m.MetricName)
		assert.Equal(t, 0.0, m.VelocityZScore)
		assert.Equal(t, report.SeverityNone, m.AlertLevel)
	}
	assert.Empty(t, rep.Alerts)
}

func TestDetect_Acceleration(t *testing.T) {
	// Velocities are +10 then +30, so acceleration is +20.
	ts := seriesWith([]float64{0, 10, 40}, nil)

	rep, err := defaultDetector().Detect(ts)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, rep.Metrics[0].Acceleration, 1e-9)
}

func TestTrailingWindow(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6}

	assert.Equal(t, []float64{3, 4, 5}, trailingWindow(values, 3))
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, trailingWindow(values, 10))
	assert.Equal(t, []float64{7}, trailingWindow([]float64{7}, 3))
}
