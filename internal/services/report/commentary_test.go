package report

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"

	"barometer/internal/domain/quote"
	"barometer/internal/domain/report"
)

func TestBuildCommentaryPrompt(t *testing.T) {
	d1 := civil.Date{Year: 2025, Month: 6, Day: 1}
	d2 := civil.Date{Year: 2025, Month: 6, Day: 2}

	ts := &report.SentimentTimeSeries{
		OverallTrend: report.TrendFalling,
		DataPoints: []report.DailySentimentScore{
			{Date: d1, FearsZScoreSum: 3.0, FrustrationsZScoreSum: 1.0, OptimismZScoreSum: 2.0, FearsCount: 4, FrustrationsCount: 2, OptimismCount: 3},
			{Date: d2, FearsZScoreSum: 8.5, FrustrationsZScoreSum: 1.5, OptimismZScoreSum: 1.0, FearsCount: 9, FrustrationsCount: 3, OptimismCount: 1},
		},
	}
	quotes := []quote.Quote{
		{Date: d2, Category: quote.CategoryFears, Intensity: quote.IntensityStrong},
		{Date: d2, Category: quote.CategoryFears, Intensity: quote.IntensityStrong},
		{Date: d2, Category: quote.CategoryFears, Intensity: quote.IntensityMild},
		{Date: d2, Category: quote.CategoryOptimism, Intensity: quote.IntensityModerate},
		{Date: d1, Category: quote.CategoryFears, Intensity: quote.IntensityModerate}, // wrong day, excluded
	}

	prompt := buildCommentaryPrompt(ts, quotes)

	assert.Contains(t, prompt, "2025-06-02")
	assert.Contains(t, prompt, "2 days analyzed")
	assert.Contains(t, prompt, "overall trend falling")
	assert.Contains(t, prompt, "Fears: score 8.50 (yesterday 3.00)")
	assert.Contains(t, prompt, "window range [3.00, 8.50]")
	assert.Contains(t, prompt, "2 strong / 0 moderate / 1 mild")
	assert.Contains(t, prompt, "Dominant category today: Fears.")
}

func TestBuildCommentaryPrompt_DominantByAbsoluteValue(t *testing.T) {
	d1 := civil.Date{Year: 2025, Month: 6, Day: 1}
	d2 := civil.Date{Year: 2025, Month: 6, Day: 2}

	ts := &report.SentimentTimeSeries{
		OverallTrend: report.TrendStable,
		DataPoints: []report.DailySentimentScore{
			{Date: d1},
			{Date: d2, FearsZScoreSum: 1.0, FrustrationsZScoreSum: -6.0, OptimismZScoreSum: 2.0},
		},
	}

	prompt := buildCommentaryPrompt(ts, nil)
	assert.Contains(t, prompt, "Dominant category today: Frustrations.")
}

func TestStripWrappingQuotes(t *testing.T) {
	assert.Equal(t, "plain text", stripWrappingQuotes("plain text"))
	assert.Equal(t, "wrapped", stripWrappingQuotes(`"wrapped"`))
	assert.Equal(t, `inner "quoted" words`, stripWrappingQuotes(`"inner "quoted" words"`))
	assert.Equal(t, `"unbalanced`, stripWrappingQuotes(`"unbalanced`))
	assert.Equal(t, "", stripWrappingQuotes(""))
}
