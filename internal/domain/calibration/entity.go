package calibration

import (
	"time"

	"cloud.google.com/go/civil"

	"barometer/internal/domain/quote"
)

// Weights maps ordinal intensity labels to empirical z-scores so that
// intensity and engagement can be summed in the same units.
//
// The algorithm does not guarantee mild < moderate < strong: a corpus where
// mild quotes are rarer than strong ones calibrates to a counter-intuitive
// ordering. Ordered flags that case instead of silently reordering.
type Weights struct {
	Mild     float64 `json:"mild"`
	Moderate float64 `json:"moderate"`
	Strong   float64 `json:"strong"`
}

// For returns the z-score for an intensity label.
func (w Weights) For(i quote.Intensity) float64 {
	switch i {
	case quote.IntensityMild:
		return w.Mild
	case quote.IntensityModerate:
		return w.Moderate
	case quote.IntensityStrong:
		return w.Strong
	}
	return 0
}

// Ordered reports whether the weights follow the ordinal intensity order.
func (w Weights) Ordered() bool {
	return w.Mild < w.Moderate && w.Moderate < w.Strong
}

// Artifact is a versioned calibration result. It is produced out-of-band by
// the calibrate command, stored read-only, and passed into the scorer as
// explicit configuration. Never mutated after creation.
type Artifact struct {
	Version        int64                         `json:"version"`
	Weights        Weights                       `json:"intensity_z_scores"`
	CalibratedAt   time.Time                     `json:"calibrated_at"`
	DataRangeStart civil.Date                    `json:"data_range_start"`
	DataRangeEnd   civil.Date                    `json:"data_range_end"`
	TotalQuotes    int                           `json:"total_quotes_analyzed"`
	Distribution   map[quote.Intensity]float64   `json:"distribution"` // observed share per label, percent, 1 d.p.
	Degraded       bool                          `json:"degraded"`     // priors used because the corpus was too small
}

// StaleAt reports whether the artifact is older than maxAge at the given time.
func (a *Artifact) StaleAt(maxAge time.Duration, now time.Time) bool {
	if maxAge <= 0 {
		return false
	}
	return now.Sub(a.CalibratedAt) > maxAge
}
