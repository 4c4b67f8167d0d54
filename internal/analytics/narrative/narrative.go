// Package narrative renders the numeric report into a headline and key
// insight lines. It is a formatting stage only; every number it mentions is
// computed upstream and the wording carries no analytical meaning.
package narrative

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"barometer/internal/domain/quote"
	"barometer/internal/domain/report"
)

// weekChangeThreshold is the week-over-week composite change, in percent,
// above which the headline quotes the number.
const weekChangeThreshold = 5.0

// Headline summarizes the latest state of the series in one sentence.
func Headline(ts *report.SentimentTimeSeries, momentum *report.MomentumReport) string {
	latest := ts.Latest()
	if latest == nil {
		return ""
	}

	pct := weekChange(ts.DataPoints)
	switch {
	case ts.OverallTrend == report.TrendRising && momentum != nil:
		if pct > weekChangeThreshold {
			return fmt.Sprintf("Sentiment up %.0f%% this week, driven by %s", pct, momentum.FastestRising)
		}
		return fmt.Sprintf("Positive momentum building, led by %s", momentum.FastestRising)

	case ts.OverallTrend == report.TrendFalling && momentum != nil:
		if pct < -weekChangeThreshold {
			return fmt.Sprintf("Sentiment down %.0f%% this week, %s declining", -pct, momentum.FastestFalling)
		}
		return fmt.Sprintf("Negative trend emerging in %s", momentum.FastestFalling)
	}

	switch {
	case latest.CompositeScore > 0:
		return fmt.Sprintf("Stable positive sentiment (score: %+.1f)", latest.CompositeScore)
	case latest.CompositeScore < 0:
		return fmt.Sprintf("Stable negative sentiment (score: %+.1f)", latest.CompositeScore)
	default:
		return "Neutral sentiment: positive and negative balanced"
	}
}

// KeyInsights lists the standout facts of the latest day: the dominant
// category, the fastest mover, anomaly alerts and engagement versus the
// series average. Sections without enough history are skipped rather than
// padded.
func KeyInsights(ts *report.SentimentTimeSeries, momentum *report.MomentumReport, velocity *report.VelocityReport) []string {
	latest := ts.Latest()
	if latest == nil {
		return nil
	}
	insights := make([]string, 0, 4)

	dominant := dominantCategory(latest)
	insights = append(insights, fmt.Sprintf("%s dominates with %s quotes (score: %+.1f)",
		dominant.Title(),
		humanize.Comma(int64(latest.CategoryCount(dominant))),
		latest.CategoryZScoreSum(dominant)))

	if momentum != nil {
		m := fastestMover(momentum)
		direction := "up"
		if m.Roc7D < 0 {
			direction = "down"
		}
		insights = append(insights, fmt.Sprintf("%s trending %s %.0f%% over 7 days (%s momentum)",
			m.Category.Title(), direction, math.Abs(m.Roc7D), m.TrendStrength))
	}

	if velocity != nil {
		switch {
		case velocity.AlertCount > 0:
			insights = append(insights, "Alert: "+velocity.Alerts[0].Description)
		case velocity.WarningCount > 0:
			insights = append(insights, fmt.Sprintf("%d warning(s) detected in velocity metrics", velocity.WarningCount))
		}
	}

	if avg := averageEngagement(ts.DataPoints); avg > 0 {
		pct := (latest.AvgEngagement - avg) / avg * 100
		relation := "below"
		if pct > 0 {
			relation = "above"
		}
		insights = append(insights, fmt.Sprintf("Engagement %.0f%% %s average (%.1f vs %.1f)",
			math.Abs(pct), relation, latest.AvgEngagement, avg))
	}
	return insights
}

// weekChange is the percentage change of the composite against seven entries
// back, when that much history exists.
func weekChange(points []report.DailySentimentScore) float64 {
	if len(points) < 7 {
		return 0
	}
	current := points[len(points)-1].CompositeScore
	weekAgo := points[len(points)-7].CompositeScore
	if weekAgo == 0 {
		return 0
	}
	return (current - weekAgo) / math.Abs(weekAgo) * 100
}

// dominantCategory picks the category with the largest absolute z-score sum
// on the day. Ties keep the canonical order.
func dominantCategory(day *report.DailySentimentScore) quote.Category {
	cats := quote.Categories()
	dominant := cats[0]
	for _, c := range cats[1:] {
		if math.Abs(day.CategoryZScoreSum(c)) > math.Abs(day.CategoryZScoreSum(dominant)) {
			dominant = c
		}
	}
	return dominant
}

// fastestMover picks the category with the largest absolute 7-day rate of
// change, whichever direction it moves.
func fastestMover(m *report.MomentumReport) *report.CategoryMomentum {
	fastest := m.ByCategory(quote.Categories()[0])
	for _, c := range quote.Categories()[1:] {
		if cm := m.ByCategory(c); math.Abs(cm.Roc7D) > math.Abs(fastest.Roc7D) {
			fastest = cm
		}
	}
	return fastest
}

func averageEngagement(points []report.DailySentimentScore) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for i := range points {
		sum += points[i].AvgEngagement
	}
	return sum / float64(len(points))
}
