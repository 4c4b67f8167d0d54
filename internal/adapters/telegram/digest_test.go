package telegram

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barometer/internal/domain/report"
)

func digestReport(alerts []report.TrendVelocityAlert) *report.AnalyticsReport {
	day := civil.Date{Year: 2025, Month: 6, Day: 15}
	alertCount, warningCount := 0, 0
	for _, a := range alerts {
		switch a.Severity {
		case report.SeverityAlert:
			alertCount++
		case report.SeverityWarning:
			warningCount++
		}
	}
	return &report.AnalyticsReport{
		SchemaVersion: report.SchemaVersion,
		DaysAnalyzed:  14,
		Headline:      "Sentiment declining (weekly -12.3%)",
		SentimentTimeseries: report.SentimentTimeSeries{
			DataPoints: []report.DailySentimentScore{
				{Date: day, CompositeScore: -4.2, TotalQuotes: 1532},
			},
		},
		Velocity: &report.VelocityReport{
			ReportDate:   day,
			Alerts:       alerts,
			TotalAlerts:  len(alerts),
			AlertCount:   alertCount,
			WarningCount: warningCount,
		},
	}
}

func TestBuildDigest_IncludesAlertLines(t *testing.T) {
	rep := digestReport([]report.TrendVelocityAlert{
		{
			Severity:      report.SeverityAlert,
			Metric:        "fears_zscore_sum",
			CurrentValue:  18.4,
			ExpectedValue: 6.1,
			ZScore:        3.2,
			Percentile:    99.9,
			Description:   "fears z-score sum spiked to 18.4",
		},
		{
			Severity:      report.SeverityWarning,
			Metric:        "total_quotes",
			CurrentValue:  950,
			ExpectedValue: 610,
			ZScore:        2.1,
			Percentile:    98.2,
			Description:   "quote volume surged to 950",
		},
	})

	text, ok := BuildDigest(rep)
	require.True(t, ok)

	assert.Contains(t, text, "2025-06-15")
	assert.Contains(t, text, "Sentiment declining")
	assert.Contains(t, text, "ALERT")
	assert.Contains(t, text, "fears z-score sum spiked")
	assert.Contains(t, text, "WARNING")
	assert.Contains(t, text, "quote volume surged")
	assert.Contains(t, text, "1,532 quotes")
}

func TestBuildDigest_SkipsNotableOnly(t *testing.T) {
	rep := digestReport([]report.TrendVelocityAlert{
		{Severity: report.SeverityNotable, Metric: "optimism_count", Description: "optimism drifting up"},
	})

	_, ok := BuildDigest(rep)
	assert.False(t, ok)
}

func TestBuildDigest_NilVelocity(t *testing.T) {
	_, ok := BuildDigest(&report.AnalyticsReport{})
	assert.False(t, ok)

	_, ok = BuildDigest(nil)
	assert.False(t, ok)
}
