package report

import (
	"fmt"
	"strings"

	"barometer/internal/domain/quote"
	"barometer/internal/domain/report"
)

// commentarySystem frames the provider as an analyst writing for readers who
// never see the underlying numbers.
const commentarySystem = "You are a sentiment analyst summarizing socio-economic discussion " +
	"trends from Reddit. Write 2-3 plain sentences for a general audience. " +
	"Mention the dominant theme and the most notable day-over-day change. " +
	"Do not repeat raw numbers verbatim, do not use markdown, and do not " +
	"add a preamble."

// categoryPromptData is the per-category slice of the commentary prompt.
type categoryPromptData struct {
	label     string
	today     float64
	yesterday float64
	count     int
	min, max  float64
	strong    int
	moderate  int
	mild      int
}

// buildCommentaryPrompt renders the user prompt for commentary generation.
// Requires at least two data points; the caller enforces that.
func buildCommentaryPrompt(ts *report.SentimentTimeSeries, quotes []quote.Quote) string {
	today := ts.DataPoints[len(ts.DataPoints)-1]
	yesterday := ts.DataPoints[len(ts.DataPoints)-2]

	cats := []categoryPromptData{
		categoryData("Fears", quote.CategoryFears, &today, &yesterday, ts, quotes),
		categoryData("Frustrations", quote.CategoryFrustrations, &today, &yesterday, ts, quotes),
		categoryData("Optimism", quote.CategoryOptimism, &today, &yesterday, ts, quotes),
	}

	dominant := cats[0]
	for _, c := range cats[1:] {
		if abs(c.today) > abs(dominant.today) {
			dominant = c
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Sentiment scores for %s (%d days analyzed, overall trend %s):\n\n",
		today.Date.String(), len(ts.DataPoints), ts.OverallTrend)

	for _, c := range cats {
		fmt.Fprintf(&b, "%s: score %.2f (yesterday %.2f), %d quotes, window range [%.2f, %.2f], intensity %d strong / %d moderate / %d mild\n",
			c.label, c.today, c.yesterday, c.count, c.min, c.max, c.strong, c.moderate, c.mild)
	}

	fmt.Fprintf(&b, "\nDominant category today: %s.\n", dominant.label)
	b.WriteString("Write the commentary now.")
	return b.String()
}

func categoryData(label string, cat quote.Category, today, yesterday *report.DailySentimentScore, ts *report.SentimentTimeSeries, quotes []quote.Quote) categoryPromptData {
	d := categoryPromptData{
		label:     label,
		today:     today.CategoryZScoreSum(cat),
		yesterday: yesterday.CategoryZScoreSum(cat),
		count:     today.CategoryCount(cat),
	}

	d.min = d.today
	d.max = d.today
	for _, dp := range ts.DataPoints {
		s := dp.CategoryZScoreSum(cat)
		if s < d.min {
			d.min = s
		}
		if s > d.max {
			d.max = s
		}
	}

	for _, q := range quotes {
		if q.Date != today.Date || q.Category != cat {
			continue
		}
		switch q.Intensity {
		case quote.IntensityStrong:
			d.strong++
		case quote.IntensityModerate:
			d.moderate++
		case quote.IntensityMild:
			d.mild++
		}
	}
	return d
}

// stripWrappingQuotes removes a single pair of surrounding double quotes that
// providers sometimes add around the whole answer.
func stripWrappingQuotes(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return s
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
