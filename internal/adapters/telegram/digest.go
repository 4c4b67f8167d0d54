package telegram

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"barometer/internal/domain/report"
)

// BuildDigest renders the velocity alert digest for one report. The second
// return is false when the report has nothing worth pushing: digests go out
// only when at least one alert reached warning severity.
func BuildDigest(rep *report.AnalyticsReport) (string, bool) {
	if rep == nil || rep.Velocity == nil {
		return "", false
	}
	v := rep.Velocity
	if v.AlertCount+v.WarningCount == 0 {
		return "", false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*Sentiment velocity digest* — %s\n", v.ReportDate.String())
	fmt.Fprintf(&b, "%s\n\n", rep.Headline)

	for _, alert := range v.Alerts {
		if alert.Severity != report.SeverityAlert && alert.Severity != report.SeverityWarning {
			continue
		}
		fmt.Fprintf(&b, "%s *%s*: %s\n", severityMark(alert.Severity), strings.ToUpper(string(alert.Severity)), alert.Description)
		fmt.Fprintf(&b, "   now %.1f vs expected %.1f (p%.0f)\n", alert.CurrentValue, alert.ExpectedValue, alert.Percentile)
	}

	if latest := rep.SentimentTimeseries.Latest(); latest != nil {
		fmt.Fprintf(&b, "\nComposite %+.1f across %s quotes (%s days analyzed)",
			latest.CompositeScore,
			humanize.Comma(int64(latest.TotalQuotes)),
			humanize.Comma(int64(rep.DaysAnalyzed)),
		)
	}

	return b.String(), true
}

func severityMark(s report.Severity) string {
	if s == report.SeverityAlert {
		return "🔴"
	}
	return "🟠"
}
