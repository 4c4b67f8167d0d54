package timeseries

import "math"

// linearTrend fits y against day indices 0..n-1 by ordinary least squares
// and returns the slope with the fit's R-squared. Series too short or too
// degenerate for a fit return (0, 0). A flat series is a perfect fit of a
// flat line, so a zero total sum of squares yields R-squared 1.
func linearTrend(y []float64) (slope, rSquared float64) {
	n := len(y)
	if n < 2 {
		return 0, 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, v := range y {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}

	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return 0, 0
	}

	slope = (fn*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / fn

	mean := sumY / fn
	var ssRes, ssTot float64
	for i, v := range y {
		predicted := intercept + slope*float64(i)
		ssRes += (v - predicted) * (v - predicted)
		ssTot += (v - mean) * (v - mean)
	}
	if ssTot == 0 {
		return slope, 1.0
	}
	return slope, math.Max(0, 1-ssRes/ssTot)
}
