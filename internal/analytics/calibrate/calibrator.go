// Package calibrate derives empirical z-score weights for ordinal intensity
// labels from a historical quote corpus.
//
// Each label's weight is the probit of the midpoint of its cumulative
// percentile band, assuming the ordinal order mild < moderate < strong.
// Recalibration is a manual, out-of-band operation; the pipeline itself never
// triggers it.
package calibrate

import (
	"math"
	"time"

	"cloud.google.com/go/civil"

	"barometer/internal/analytics"
	"barometer/internal/domain/calibration"
	"barometer/internal/domain/quote"
)

// Percentiles are clamped into this band before the probit transform so a
// zero-occurrence label cannot push the evaluation to +-infinity.
const (
	percentileFloor = 0.001
	percentileCeil  = 0.999
)

// Distribution counts intensity labels across a corpus.
type Distribution struct {
	Mild     int
	Moderate int
	Strong   int
}

// Total returns the number of counted quotes.
func (d Distribution) Total() int {
	return d.Mild + d.Moderate + d.Strong
}

// Calibrator turns a quote corpus into a calibration artifact.
type Calibrator struct {
	cfg analytics.CalibrationConfig
}

// New creates a calibrator with the given corpus requirements.
func New(cfg analytics.CalibrationConfig) *Calibrator {
	return &Calibrator{cfg: cfg}
}

// Run computes weights and metadata for the corpus. Below the configured
// minimum corpus size the percentile estimates are unstable, so the artifact
// degrades to the configured prior weights and is marked accordingly instead
// of failing.
func (c *Calibrator) Run(quotes []quote.Quote, now time.Time) *calibration.Artifact {
	dist := CountDistribution(quotes)
	total := dist.Total()

	artifact := &calibration.Artifact{
		CalibratedAt: now,
		TotalQuotes:  total,
		Distribution: distributionPercentages(dist),
	}
	artifact.DataRangeStart, artifact.DataRangeEnd = dateBounds(quotes)

	if total < c.cfg.MinCorpusSize {
		artifact.Weights = c.cfg.Priors()
		artifact.Degraded = true
		return artifact
	}

	artifact.Weights = Weights(dist)
	return artifact
}

// CountDistribution counts intensity labels across the corpus. Quotes with
// labels outside the ordinal set are ignored; ingestion validation makes
// them rare.
func CountDistribution(quotes []quote.Quote) Distribution {
	var d Distribution
	for i := range quotes {
		switch quotes[i].Intensity {
		case quote.IntensityMild:
			d.Mild++
		case quote.IntensityModerate:
			d.Moderate++
		case quote.IntensityStrong:
			d.Strong++
		}
	}
	return d
}

// Weights converts a label distribution to z-score weights.
//
// With label shares p_mild, p_moderate, p_strong, the representative
// percentile of each label is the midpoint of its cumulative band:
//
//	mild:     p_mild / 2
//	moderate: p_mild + p_moderate/2
//	strong:   p_mild + p_moderate + p_strong/2
//
// Each midpoint maps to a z-score through the inverse standard-normal CDF
// and is rounded to two decimals.
func Weights(d Distribution) calibration.Weights {
	total := float64(d.Total())
	if total == 0 {
		return calibration.Weights{}
	}

	pctMild := float64(d.Mild) / total
	pctModerate := float64(d.Moderate) / total
	pctStrong := float64(d.Strong) / total

	midMild := pctMild / 2
	midModerate := pctMild + pctModerate/2
	midStrong := pctMild + pctModerate + pctStrong/2

	return calibration.Weights{
		Mild:     round2(probit(midMild)),
		Moderate: round2(probit(midModerate)),
		Strong:   round2(probit(midStrong)),
	}
}

// probit is the inverse standard-normal CDF with the percentile clamped away
// from 0 and 1.
func probit(p float64) float64 {
	if p < percentileFloor {
		p = percentileFloor
	}
	if p > percentileCeil {
		p = percentileCeil
	}
	return math.Sqrt2 * math.Erfinv(2*p-1)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func distributionPercentages(d Distribution) map[quote.Intensity]float64 {
	total := float64(d.Total())
	pct := func(n int) float64 {
		if total == 0 {
			return 0
		}
		return math.Round(float64(n)/total*1000) / 10
	}
	return map[quote.Intensity]float64{
		quote.IntensityMild:     pct(d.Mild),
		quote.IntensityModerate: pct(d.Moderate),
		quote.IntensityStrong:   pct(d.Strong),
	}
}

func dateBounds(quotes []quote.Quote) (civil.Date, civil.Date) {
	var start, end civil.Date
	for i := range quotes {
		d := quotes[i].Date
		if !d.IsValid() {
			continue
		}
		if !start.IsValid() || d.Before(start) {
			start = d
		}
		if !end.IsValid() || d.After(end) {
			end = d
		}
	}
	return start, end
}
