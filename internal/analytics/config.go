package analytics

import (
	"math"

	"barometer/internal/domain/calibration"
	"barometer/internal/domain/report"
	"barometer/pkg/errors"
)

// Config carries every tunable of the scoring pipeline. The documented
// defaults are design choices carried over from the calibration methodology,
// not empirically optimal values; they are configuration, never derived from
// the data being scored.
type Config struct {
	Alerts      AlertThresholds   `envconfig:"ALERTS"`
	Engagement  EngagementConfig  `envconfig:"ENGAGEMENT"`
	EMA         EMAConfig         `envconfig:"EMA"`
	Trend       TrendConfig       `envconfig:"TREND"`
	Momentum    MomentumConfig    `envconfig:"MOMENTUM"`
	Velocity    VelocityConfig    `envconfig:"VELOCITY"`
	Forecast    ForecastConfig    `envconfig:"FORECAST"`
	Pipeline    PipelineConfig    `envconfig:"PIPELINE"`
	Entities    EntitiesConfig    `envconfig:"ENTITIES"`
	Calibration CalibrationConfig `envconfig:"CALIBRATION"`
}

// AlertThresholds holds the |z| cutoffs for velocity severity levels.
// These follow standard-normal tail convention (roughly 68/23/7/<5% of
// observations respectively) and are closed at each boundary.
type AlertThresholds struct {
	Notable      float64 `envconfig:"ANALYTICS_ALERT_NOTABLE" default:"1.0"`
	Warning      float64 `envconfig:"ANALYTICS_ALERT_WARNING" default:"1.5"`
	Alert        float64 `envconfig:"ANALYTICS_ALERT_ALERT" default:"2.0"`
	SignificantZ float64 `envconfig:"ANALYTICS_ALERT_SIGNIFICANT_Z" default:"2.0"`
}

// Severity classifies a velocity z-score. Boundaries are closed: |z| equal to
// a threshold takes the higher level.
func (t AlertThresholds) Severity(z float64) report.Severity {
	abs := z
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= t.Alert:
		return report.SeverityAlert
	case abs >= t.Warning:
		return report.SeverityWarning
	case abs >= t.Notable:
		return report.SeverityNotable
	default:
		return report.SeverityNone
	}
}

// EngagementConfig holds engagement scoring parameters.
type EngagementConfig struct {
	// ZFloor caps how far below the mean a low-engagement quote can score,
	// so the long tail of zero-upvote quotes cannot drag category sums
	// arbitrarily negative.
	ZFloor float64 `envconfig:"ANALYTICS_ENGAGEMENT_Z_FLOOR" default:"-2.0"`
}

// EMAConfig holds exponential moving average parameters.
type EMAConfig struct {
	Span       int `envconfig:"ANALYTICS_EMA_SPAN" default:"7"`
	MinPeriods int `envconfig:"ANALYTICS_EMA_MIN_PERIODS" default:"3"`
}

// TrendConfig holds trend classification thresholds.
type TrendConfig struct {
	SlopeStableThreshold float64 `envconfig:"ANALYTICS_TREND_SLOPE_STABLE" default:"0.5"`
	RocWeakThreshold     float64 `envconfig:"ANALYTICS_TREND_ROC_WEAK" default:"10"`
	RocStrongThreshold   float64 `envconfig:"ANALYTICS_TREND_ROC_STRONG" default:"25"`
}

// SlopeDirection classifies a regression slope. Slopes inside the stable
// band count as stable regardless of sign.
func (t TrendConfig) SlopeDirection(slope float64) report.TrendDirection {
	if math.Abs(slope) < t.SlopeStableThreshold {
		return report.TrendStable
	}
	if slope > 0 {
		return report.TrendRising
	}
	return report.TrendFalling
}

// RocClassification classifies a 7-day rate of change into a direction and
// a momentum strength. Changes below the weak threshold are stable and
// always weak.
func (t TrendConfig) RocClassification(roc float64) (report.TrendDirection, report.TrendStrength) {
	abs := math.Abs(roc)
	if abs < t.RocWeakThreshold {
		return report.TrendStable, report.StrengthWeak
	}

	direction := report.TrendRising
	if roc < 0 {
		direction = report.TrendFalling
	}

	strength := report.StrengthModerate
	if abs > t.RocStrongThreshold {
		strength = report.StrengthStrong
	}
	return direction, strength
}

// MomentumConfig holds index offsets for the rate-of-change lookbacks.
// An offset of k compares the latest value against the value k-1 days back.
type MomentumConfig struct {
	Roc1DLookback int `envconfig:"ANALYTICS_MOMENTUM_ROC_1D_LOOKBACK" default:"2"`
	Roc3DLookback int `envconfig:"ANALYTICS_MOMENTUM_ROC_3D_LOOKBACK" default:"4"`
	Roc7DLookback int `envconfig:"ANALYTICS_MOMENTUM_ROC_7D_LOOKBACK" default:"8"`

	// EMASpan smooths the day-over-day changes of each category sum.
	EMASpan int `envconfig:"ANALYTICS_MOMENTUM_EMA_SPAN" default:"7"`
}

// VelocityConfig holds velocity analysis parameters.
type VelocityConfig struct {
	// LookbackDays bounds the trailing window of historical velocities the
	// current velocity is z-scored against.
	LookbackDays int `envconfig:"ANALYTICS_VELOCITY_LOOKBACK_DAYS" default:"7"`
}

// ForecastConfig holds linear forecast parameters.
type ForecastConfig struct {
	TrainRatio  float64 `envconfig:"ANALYTICS_FORECAST_TRAIN_RATIO" default:"0.7"`
	HorizonDays int     `envconfig:"ANALYTICS_FORECAST_HORIZON_DAYS" default:"3"`
	CriticalZ   float64 `envconfig:"ANALYTICS_FORECAST_CRITICAL_Z" default:"1.96"`
	MinPoints   int     `envconfig:"ANALYTICS_FORECAST_MIN_POINTS" default:"5"`
}

// PipelineConfig holds whole-pipeline requirements.
type PipelineConfig struct {
	MinDaysRequired int `envconfig:"ANALYTICS_PIPELINE_MIN_DAYS" default:"3"`
}

// EntitiesConfig holds entity trend aggregation parameters. An entity's
// engagement trend compares the second half of its daily series against the
// first; the factors bound the stable band.
type EntitiesConfig struct {
	TopN            int     `envconfig:"ANALYTICS_ENTITIES_TOP_N" default:"10"`
	MinDaysForTrend int     `envconfig:"ANALYTICS_ENTITIES_MIN_DAYS_FOR_TREND" default:"4"`
	RisingFactor    float64 `envconfig:"ANALYTICS_ENTITIES_RISING_FACTOR" default:"1.2"`
	FallingFactor   float64 `envconfig:"ANALYTICS_ENTITIES_FALLING_FACTOR" default:"0.8"`
}

// CalibrationConfig holds the minimum corpus size for a trustworthy
// calibration and the prior weights used below it.
type CalibrationConfig struct {
	MinCorpusSize int     `envconfig:"ANALYTICS_CALIBRATION_MIN_CORPUS" default:"300"`
	PriorMild     float64 `envconfig:"ANALYTICS_CALIBRATION_PRIOR_MILD" default:"-0.5"`
	PriorModerate float64 `envconfig:"ANALYTICS_CALIBRATION_PRIOR_MODERATE" default:"0.0"`
	PriorStrong   float64 `envconfig:"ANALYTICS_CALIBRATION_PRIOR_STRONG" default:"1.0"`
}

// Priors returns the fallback weights for an undersized corpus.
func (c CalibrationConfig) Priors() calibration.Weights {
	return calibration.Weights{
		Mild:     c.PriorMild,
		Moderate: c.PriorModerate,
		Strong:   c.PriorStrong,
	}
}

// DefaultConfig returns the documented defaults. Library callers and tests
// use this; the service overlays environment variables on top of it.
func DefaultConfig() Config {
	return Config{
		Alerts:      AlertThresholds{Notable: 1.0, Warning: 1.5, Alert: 2.0, SignificantZ: 2.0},
		Engagement:  EngagementConfig{ZFloor: -2.0},
		EMA:         EMAConfig{Span: 7, MinPeriods: 3},
		Trend:       TrendConfig{SlopeStableThreshold: 0.5, RocWeakThreshold: 10, RocStrongThreshold: 25},
		Momentum:    MomentumConfig{Roc1DLookback: 2, Roc3DLookback: 4, Roc7DLookback: 8, EMASpan: 7},
		Velocity:    VelocityConfig{LookbackDays: 7},
		Forecast:    ForecastConfig{TrainRatio: 0.7, HorizonDays: 3, CriticalZ: 1.96, MinPoints: 5},
		Pipeline:    PipelineConfig{MinDaysRequired: 3},
		Entities:    EntitiesConfig{TopN: 10, MinDaysForTrend: 4, RisingFactor: 1.2, FallingFactor: 0.8},
		Calibration: CalibrationConfig{MinCorpusSize: 300, PriorMild: -0.5, PriorModerate: 0.0, PriorStrong: 1.0},
	}
}

// Validate rejects configurations that would make downstream numbers
// meaningless. Called once at startup; a failure aborts the run before any
// partial computation.
func (c Config) Validate() error {
	if c.Alerts.Notable <= 0 || c.Alerts.Warning < c.Alerts.Notable || c.Alerts.Alert < c.Alerts.Warning {
		return errors.NewValidationError("alerts", "thresholds must satisfy 0 < notable <= warning <= alert", c.Alerts)
	}
	if c.EMA.Span < 1 {
		return errors.NewValidationError("ema.span", "must be at least 1", c.EMA.Span)
	}
	if c.EMA.MinPeriods < 1 {
		return errors.NewValidationError("ema.min_periods", "must be at least 1", c.EMA.MinPeriods)
	}
	if c.Trend.RocStrongThreshold < c.Trend.RocWeakThreshold {
		return errors.NewValidationError("trend", "strong threshold must not be below weak threshold", c.Trend)
	}
	if c.Momentum.Roc1DLookback < 2 || c.Momentum.Roc3DLookback < 2 || c.Momentum.Roc7DLookback < 2 {
		return errors.NewValidationError("momentum", "lookback offsets must be at least 2", c.Momentum)
	}
	if c.Momentum.EMASpan < 1 {
		return errors.NewValidationError("momentum.ema_span", "must be at least 1", c.Momentum.EMASpan)
	}
	if c.Velocity.LookbackDays < 1 {
		return errors.NewValidationError("velocity.lookback_days", "must be at least 1", c.Velocity.LookbackDays)
	}
	if c.Forecast.TrainRatio <= 0 || c.Forecast.TrainRatio >= 1 {
		return errors.NewValidationError("forecast.train_ratio", "must be in (0, 1)", c.Forecast.TrainRatio)
	}
	if c.Forecast.HorizonDays < 1 {
		return errors.NewValidationError("forecast.horizon_days", "must be at least 1", c.Forecast.HorizonDays)
	}
	if c.Forecast.CriticalZ <= 0 {
		return errors.NewValidationError("forecast.critical_z", "must be positive", c.Forecast.CriticalZ)
	}
	if c.Forecast.MinPoints < 4 {
		return errors.NewValidationError("forecast.min_points", "must be at least 4", c.Forecast.MinPoints)
	}
	if c.Pipeline.MinDaysRequired < 1 {
		return errors.NewValidationError("pipeline.min_days", "must be at least 1", c.Pipeline.MinDaysRequired)
	}
	if c.Entities.TopN < 1 {
		return errors.NewValidationError("entities.top_n", "must be at least 1", c.Entities.TopN)
	}
	if c.Entities.RisingFactor < 1 || c.Entities.FallingFactor > 1 || c.Entities.FallingFactor < 0 {
		return errors.NewValidationError("entities", "factors must satisfy 0 <= falling <= 1 <= rising", c.Entities)
	}
	if c.Calibration.MinCorpusSize < 0 {
		return errors.NewValidationError("calibration.min_corpus", "must not be negative", c.Calibration.MinCorpusSize)
	}
	return nil
}
