package narrative

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"

	"barometer/internal/domain/quote"
	"barometer/internal/domain/report"
)

func tsWithComposites(trend report.TrendDirection, composites ...float64) *report.SentimentTimeSeries {
	start := civil.Date{Year: 2025, Month: time.June, Day: 1}
	points := make([]report.DailySentimentScore, len(composites))
	for i := range points {
		points[i].Date = start.AddDays(i)
		points[i].CompositeScore = composites[i]
	}
	return &report.SentimentTimeSeries{DataPoints: points, OverallTrend: trend}
}

func momentumWith(rising, falling quote.Category) *report.MomentumReport {
	m := &report.MomentumReport{FastestRising: rising, FastestFalling: falling}
	for _, c := range quote.Categories() {
		m.ByCategory(c).Category = c
	}
	return m
}

func TestHeadline_RisingWithWeekChange(t *testing.T) {
	ts := tsWithComposites(report.TrendRising, 10, 11, 12, 14, 16, 18, 20)
	m := momentumWith(quote.CategoryOptimism, quote.CategoryFears)

	// Composite went 10 -> 20 over the week, a 100% change.
	assert.Equal(t, "Sentiment up 100% this week, driven by optimism", Headline(ts, m))
}

func TestHeadline_RisingWithoutWeekHistory(t *testing.T) {
	ts := tsWithComposites(report.TrendRising, 3, 8)
	m := momentumWith(quote.CategoryFears, quote.CategoryOptimism)

	assert.Equal(t, "Positive momentum building, led by fears", Headline(ts, m))
}

func TestHeadline_FallingWithWeekChange(t *testing.T) {
	ts := tsWithComposites(report.TrendFalling, 20, 18, 16, 14, 12, 11, 10)
	m := momentumWith(quote.CategoryOptimism, quote.CategoryFrustrations)

	assert.Equal(t, "Sentiment down 50% this week, frustrations declining", Headline(ts, m))
}

func TestHeadline_FallingSmallChange(t *testing.T) {
	ts := tsWithComposites(report.TrendFalling, 10, 10, 10, 10, 10, 10, 9.7)
	m := momentumWith(quote.CategoryOptimism, quote.CategoryFears)

	assert.Equal(t, "Negative trend emerging in fears", Headline(ts, m))
}

func TestHeadline_Stable(t *testing.T) {
	m := momentumWith(quote.CategoryFears, quote.CategoryFears)

	ts := tsWithComposites(report.TrendStable, 5, 8.24)
	assert.Equal(t, "Stable positive sentiment (score: +8.2)", Headline(ts, m))

	ts = tsWithComposites(report.TrendStable, -5, -12.36)
	assert.Equal(t, "Stable negative sentiment (score: -12.4)", Headline(ts, m))

	ts = tsWithComposites(report.TrendStable, 1, 0)
	assert.Equal(t, "Neutral sentiment: positive and negative balanced", Headline(ts, m))
}

func TestHeadline_NilMomentumFallsBackToStableWording(t *testing.T) {
	ts := tsWithComposites(report.TrendRising, 4.2)
	assert.Equal(t, "Stable positive sentiment (score: +4.2)", Headline(ts, nil))
}

func TestHeadline_EmptySeries(t *testing.T) {
	assert.Equal(t, "", Headline(&report.SentimentTimeSeries{}, nil))
}

func TestKeyInsights_DominantCategory(t *testing.T) {
	ts := tsWithComposites(report.TrendStable, 1)
	latest := &ts.DataPoints[0]
	latest.FearsCount = 1204
	latest.FearsZScoreSum = -17.77
	latest.OptimismCount = 300
	latest.OptimismZScoreSum = 12.3

	insights := KeyInsights(ts, nil, nil)
	assert.Contains(t, insights, "Fears dominates with 1,204 quotes (score: -17.8)")
}

func TestKeyInsights_FastestMover(t *testing.T) {
	ts := tsWithComposites(report.TrendStable, 1, 2)
	m := momentumWith(quote.CategoryOptimism, quote.CategoryFrustrations)
	m.Frustrations.Roc7D = -42.4
	m.Frustrations.TrendStrength = report.StrengthStrong
	m.Optimism.Roc7D = 12.0
	m.Optimism.TrendStrength = report.StrengthModerate

	insights := KeyInsights(ts, m, nil)
	assert.Contains(t, insights, "Frustrations trending down 42% over 7 days (strong momentum)")
}

func TestKeyInsights_AlertTakesPrecedenceOverWarnings(t *testing.T) {
	ts := tsWithComposites(report.TrendStable, 1)
	v := &report.VelocityReport{
		Alerts: []report.TrendVelocityAlert{
			{Severity: report.SeverityAlert, Description: "Fears has significantly increased (z=2.21)"},
			{Severity: report.SeverityWarning, Description: "ignored"},
		},
		AlertCount:   1,
		WarningCount: 1,
		TotalAlerts:  2,
	}

	insights := KeyInsights(ts, nil, v)
	assert.Contains(t, insights, "Alert: Fears has significantly increased (z=2.21)")
}

func TestKeyInsights_WarningsOnly(t *testing.T) {
	ts := tsWithComposites(report.TrendStable, 1)
	v := &report.VelocityReport{
		Alerts:       []report.TrendVelocityAlert{{Severity: report.SeverityWarning, Description: "x"}},
		WarningCount: 1,
		TotalAlerts:  1,
	}

	insights := KeyInsights(ts, nil, v)
	assert.Contains(t, insights, "1 warning(s) detected in velocity metrics")
}

func TestKeyInsights_EngagementComparison(t *testing.T) {
	ts := tsWithComposites(report.TrendStable, 1, 2, 3)
	ts.DataPoints[0].AvgEngagement = 80
	ts.DataPoints[1].AvgEngagement = 100
	ts.DataPoints[2].AvgEngagement = 150

	// Series average is 110, the latest day sits 36% above it.
	insights := KeyInsights(ts, nil, nil)
	assert.Contains(t, insights, "Engagement 36% above average (150.0 vs 110.0)")
}

func TestKeyInsights_SkipsSectionsWithoutData(t *testing.T) {
	ts := tsWithComposites(report.TrendStable, 1)
	ts.DataPoints[0].FrustrationsCount = 2
	ts.DataPoints[0].FrustrationsZScoreSum = 0.5

	insights := KeyInsights(ts, nil, nil)
	// Only the dominant-category line fires: no momentum, no velocity and
	// zero engagement throughout.
	assert.Len(t, insights, 1)
	assert.Contains(t, insights[0], "Frustrations dominates")
}
