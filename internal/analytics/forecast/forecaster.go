// Package forecast projects the composite sentiment score a few days ahead
// with an ordinary least squares line and a fixed-level confidence band.
package forecast

import (
	"math"

	"github.com/markcheno/go-talib"

	"barometer/internal/analytics"
	"barometer/internal/domain/report"
)

// Forecaster fits and projects the composite score.
type Forecaster struct {
	cfg analytics.ForecastConfig
}

// NewForecaster creates a forecaster.
func NewForecaster(cfg analytics.ForecastConfig) *Forecaster {
	return &Forecaster{cfg: cfg}
}

// Project fits a line to the older train segment of the series, scores it
// against the held-out recent segment and extends it over the horizon. The
// split is chronological; shuffling would leak future days into the fit.
// Series below the configured minimum return a result flagged as
// insufficient instead of overfitting a two-point line.
func (f *Forecaster) Project(ts *report.SentimentTimeSeries) *report.ForecastResult {
	points := ts.DataPoints
	n := len(points)
	if n < f.cfg.MinPoints {
		return &report.ForecastResult{InsufficientData: true}
	}

	values := make([]float64, n)
	for i := range points {
		values[i] = points[i].CompositeScore
	}

	trainLen := int(float64(n) * f.cfg.TrainRatio)
	if trainLen < 2 {
		trainLen = 2
	}
	train, test := values[:trainLen], values[trainLen:]

	// The full-width window makes the last talib output the fit over the
	// whole train segment, with x = 0 at its first day.
	slope := last(talib.LinearRegSlope(train, len(train)))
	intercept := last(talib.LinearRegIntercept(train, len(train)))

	res := &report.ForecastResult{
		HorizonDays:      f.cfg.HorizonDays,
		Slope:            slope,
		Intercept:        intercept,
		TestRSquared:     rSquaredAt(test, trainLen, slope, intercept),
		ResidualStdError: residualStdError(train, slope, intercept),
		ConfidenceLevel:  confidenceLevel(f.cfg.CriticalZ),
	}

	band := f.cfg.CriticalZ * res.ResidualStdError
	lastDate := points[n-1].Date
	for h := 1; h <= f.cfg.HorizonDays; h++ {
		predicted := intercept + slope*float64(n-1+h)
		res.Points = append(res.Points, report.ForecastPoint{
			Date:       lastDate.AddDays(h),
			Predicted:  predicted,
			UpperBound: predicted + band,
			LowerBound: predicted - band,
		})
	}
	return res
}

func last(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
}

// rSquaredAt evaluates the fitted line against held-out values whose day
// indices start at offset. A flat test segment is a perfect fit only when
// the line reproduces it exactly.
func rSquaredAt(test []float64, offset int, slope, intercept float64) float64 {
	if len(test) == 0 {
		return 0
	}

	var sum float64
	for _, v := range test {
		sum += v
	}
	mean := sum / float64(len(test))

	var ssRes, ssTot float64
	for i, v := range test {
		predicted := intercept + slope*float64(offset+i)
		ssRes += (v - predicted) * (v - predicted)
		ssTot += (v - mean) * (v - mean)
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return math.Max(0, 1-ssRes/ssTot)
}

// residualStdError is the standard error of the train residuals with two
// degrees of freedom spent on the fit.
func residualStdError(train []float64, slope, intercept float64) float64 {
	dof := len(train) - 2
	if dof <= 0 {
		return 0
	}
	var ssRes float64
	for i, v := range train {
		predicted := intercept + slope*float64(i)
		ssRes += (v - predicted) * (v - predicted)
	}
	return math.Sqrt(ssRes / float64(dof))
}

// confidenceLevel recovers the two-sided coverage of the critical value, so
// the reported level stays honest if the z is reconfigured.
func confidenceLevel(criticalZ float64) float64 {
	return math.Erf(criticalZ / math.Sqrt2)
}
