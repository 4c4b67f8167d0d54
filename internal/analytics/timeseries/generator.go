// Package timeseries aggregates scored quotes into an ordered daily
// sentiment series with EMA smoothing, summary statistics and a linear
// trend fit.
package timeseries

import (
	"math"
	"sort"

	"cloud.google.com/go/civil"

	"barometer/internal/analytics"
	"barometer/internal/analytics/scoring"
	"barometer/internal/domain/quote"
	"barometer/internal/domain/report"
	"barometer/pkg/errors"
)

// Generator builds the daily sentiment series.
type Generator struct {
	ema   analytics.EMAConfig
	trend analytics.TrendConfig
}

// NewGenerator creates a generator with the given smoothing and trend
// settings.
func NewGenerator(ema analytics.EMAConfig, trend analytics.TrendConfig) *Generator {
	return &Generator{ema: ema, trend: trend}
}

// Generate scores every quote, aggregates by calendar day and derives the
// series-level statistics. Days without quotes get no entry. An empty window
// cannot produce a series and returns ErrInsufficientData.
func (g *Generator) Generate(quotes []quote.Quote, scorer *scoring.Scorer) (*report.SentimentTimeSeries, error) {
	if len(quotes) == 0 {
		return nil, errors.Wrap(errors.ErrInsufficientData, "no quotes in analysis window")
	}

	points := aggregateDaily(quotes, scorer)
	ApplySmoothing(points, g.ema)

	ts := &report.SentimentTimeSeries{
		StartDate:  points[0].Date,
		EndDate:    points[len(points)-1].Date,
		DataPoints: points,
	}
	g.fillStatistics(ts)
	g.fillTrend(ts)
	return ts, nil
}

func aggregateDaily(quotes []quote.Quote, scorer *scoring.Scorer) []report.DailySentimentScore {
	byDay := make(map[civil.Date][]quote.Quote)
	for i := range quotes {
		byDay[quotes[i].Date] = append(byDay[quotes[i].Date], quotes[i])
	}

	days := make([]civil.Date, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	points := make([]report.DailySentimentScore, 0, len(days))
	for _, d := range days {
		points = append(points, buildDay(d, byDay[d], scorer))
	}
	return points
}

func buildDay(date civil.Date, quotes []quote.Quote, scorer *scoring.Scorer) report.DailySentimentScore {
	day := report.DailySentimentScore{Date: date}

	for i := range quotes {
		q := quotes[i]
		score := scorer.Score(q)

		switch q.Category {
		case quote.CategoryFears:
			day.FearsCount++
			day.FearsZScoreSum += score
		case quote.CategoryFrustrations:
			day.FrustrationsCount++
			day.FrustrationsZScoreSum += score
		case quote.CategoryOptimism:
			day.OptimismCount++
			day.OptimismZScoreSum += score
		default:
			continue
		}

		day.TotalQuotes++
		day.TotalEngagement += q.Engagement
	}

	day.NegativityScore = day.FearsZScoreSum + day.FrustrationsZScoreSum
	day.PositivityScore = day.OptimismZScoreSum
	day.CompositeScore = day.PositivityScore - day.NegativityScore

	if day.TotalQuotes > 0 {
		day.AvgEngagement = float64(day.TotalEngagement) / float64(day.TotalQuotes)
	}
	return day
}

func (g *Generator) fillStatistics(ts *report.SentimentTimeSeries) {
	composites := compositeValues(ts.DataPoints)
	n := len(composites)

	var sum float64
	minScore, maxScore := composites[0], composites[0]
	for _, v := range composites {
		sum += v
		minScore = math.Min(minScore, v)
		maxScore = math.Max(maxScore, v)
	}
	mean := sum / float64(n)

	var std float64
	if n > 1 {
		var ss float64
		for _, v := range composites {
			d := v - mean
			ss += d * d
		}
		std = math.Sqrt(ss / float64(n-1))
	}

	ts.MeanScore = mean
	ts.StdDev = std
	ts.MinScore = minScore
	ts.MaxScore = maxScore
}

func (g *Generator) fillTrend(ts *report.SentimentTimeSeries) {
	slope, r2 := linearTrend(compositeValues(ts.DataPoints))
	ts.TrendSlope = slope
	ts.TrendRSquared = r2
	ts.OverallTrend = g.trend.SlopeDirection(slope)
}

func compositeValues(points []report.DailySentimentScore) []float64 {
	values := make([]float64, len(points))
	for i := range points {
		values[i] = points[i].CompositeScore
	}
	return values
}
