package timeseries

import (
	"barometer/internal/analytics"
	"barometer/internal/domain/report"
)

// Alpha returns the EMA smoothing factor 2/(span+1).
func Alpha(span int) float64 {
	return 2.0 / float64(span+1)
}

// NextEMA advances a smoothed value by one observation. Appending a point
// and advancing incrementally gives the same result as recomputing the whole
// series, so callers can extend a series without replaying it.
func NextEMA(prev, x float64, span int) float64 {
	alpha := Alpha(span)
	return alpha*x + (1-alpha)*prev
}

// ApplySmoothing fills the EMA fields of the series in place. The first
// MinPeriods-1 points carry nil, the point at MinPeriods-1 is seeded with the
// simple average of the warm-up window, and every later point uses the
// recursive form.
func ApplySmoothing(points []report.DailySentimentScore, cfg analytics.EMAConfig) {
	composite := smooth(seriesOf(points, func(p *report.DailySentimentScore) float64 { return p.CompositeScore }), cfg)
	negativity := smooth(seriesOf(points, func(p *report.DailySentimentScore) float64 { return p.NegativityScore }), cfg)
	positivity := smooth(seriesOf(points, func(p *report.DailySentimentScore) float64 { return p.PositivityScore }), cfg)

	for i := range points {
		points[i].EMAScore = composite[i]
		points[i].EMANegativity = negativity[i]
		points[i].EMAPositivity = positivity[i]
	}
}

func seriesOf(points []report.DailySentimentScore, value func(*report.DailySentimentScore) float64) []float64 {
	values := make([]float64, len(points))
	for i := range points {
		values[i] = value(&points[i])
	}
	return values
}

func smooth(values []float64, cfg analytics.EMAConfig) []*float64 {
	out := make([]*float64, len(values))
	for i, x := range values {
		switch {
		case i < cfg.MinPeriods-1:
			// warm-up, not enough history yet
		case i == cfg.MinPeriods-1:
			var sum float64
			for _, v := range values[:cfg.MinPeriods] {
				sum += v
			}
			seed := sum / float64(cfg.MinPeriods)
			out[i] = &seed
		default:
			if prev := out[i-1]; prev != nil {
				ema := NextEMA(*prev, x, cfg.Span)
				out[i] = &ema
			} else {
				v := x
				out[i] = &v
			}
		}
	}
	return out
}
