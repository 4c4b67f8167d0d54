package report

import (
	"time"

	"cloud.google.com/go/civil"

	"barometer/internal/domain/quote"
)

// SchemaVersion identifies the serialized report shape. Downstream consumers
// key on it; changing any JSON field name requires a new version.
const SchemaVersion = "analytics_v1"

// Severity is an alert level derived from |velocity z-score| thresholds.
type Severity string

const (
	SeverityNone    Severity = "none"
	SeverityNotable Severity = "notable"
	SeverityWarning Severity = "warning"
	SeverityAlert   Severity = "alert"
)

// Rank orders severities for sorting, most severe first.
func (s Severity) Rank() int {
	switch s {
	case SeverityAlert:
		return 0
	case SeverityWarning:
		return 1
	case SeverityNotable:
		return 2
	}
	return 3
}

// TrendDirection describes which way a metric is moving.
type TrendDirection string

const (
	TrendRising  TrendDirection = "rising"
	TrendFalling TrendDirection = "falling"
	TrendStable  TrendDirection = "stable"
)

// TrendStrength buckets the magnitude of a rate of change.
type TrendStrength string

const (
	StrengthWeak     TrendStrength = "weak"
	StrengthModerate TrendStrength = "moderate"
	StrengthStrong   TrendStrength = "strong"
)

// DailySentimentScore holds one day's aggregated sentiment. Emitted once by
// the aggregator and never mutated, except for the EMA fields which are
// filled in by the smoothing pass before the series is published.
// A nil EMA means "not enough history yet", which is distinct from zero.
type DailySentimentScore struct {
	Date civil.Date `json:"date"`

	FearsCount        int `json:"fears_count"`
	FrustrationsCount int `json:"frustrations_count"`
	OptimismCount     int `json:"optimism_count"`
	TotalQuotes       int `json:"total_quotes"`

	FearsZScoreSum        float64 `json:"fears_zscore_sum"`
	FrustrationsZScoreSum float64 `json:"frustrations_zscore_sum"`
	OptimismZScoreSum     float64 `json:"optimism_zscore_sum"`

	NegativityScore float64 `json:"negativity_score"` // fears + frustrations z-score sums
	PositivityScore float64 `json:"positivity_score"` // optimism z-score sum
	CompositeScore  float64 `json:"composite_score"`  // positivity - negativity

	EMAScore      *float64 `json:"ema_score"`
	EMANegativity *float64 `json:"ema_negativity"`
	EMAPositivity *float64 `json:"ema_positivity"`

	TotalEngagement int     `json:"total_engagement"`
	AvgEngagement   float64 `json:"avg_engagement"`
}

// CategoryCount returns the quote count for a category.
func (d *DailySentimentScore) CategoryCount(c quote.Category) int {
	switch c {
	case quote.CategoryFears:
		return d.FearsCount
	case quote.CategoryFrustrations:
		return d.FrustrationsCount
	case quote.CategoryOptimism:
		return d.OptimismCount
	}
	return 0
}

// CategoryZScoreSum returns the z-score sum for a category.
func (d *DailySentimentScore) CategoryZScoreSum(c quote.Category) float64 {
	switch c {
	case quote.CategoryFears:
		return d.FearsZScoreSum
	case quote.CategoryFrustrations:
		return d.FrustrationsZScoreSum
	case quote.CategoryOptimism:
		return d.OptimismZScoreSum
	}
	return 0
}

// SentimentTimeSeries is the ordered daily series with summary statistics and
// a linear trend fit. Dates are unique and strictly increasing; days without
// quotes have no entry, and consumers must treat the gap as "no data".
type SentimentTimeSeries struct {
	StartDate  civil.Date            `json:"start_date"`
	EndDate    civil.Date            `json:"end_date"`
	DataPoints []DailySentimentScore `json:"data_points"`

	MeanScore float64 `json:"mean_score"`
	StdDev    float64 `json:"std_dev"`
	MinScore  float64 `json:"min_score"`
	MaxScore  float64 `json:"max_score"`

	OverallTrend  TrendDirection `json:"overall_trend"`
	TrendSlope    float64        `json:"trend_slope"`     // composite points per day
	TrendRSquared float64        `json:"trend_r_squared"` // 0..1
}

// Latest returns the most recent data point, or nil for an empty series.
func (ts *SentimentTimeSeries) Latest() *DailySentimentScore {
	if len(ts.DataPoints) == 0 {
		return nil
	}
	return &ts.DataPoints[len(ts.DataPoints)-1]
}

// CategoryMomentum holds the rate-of-change analysis for one category.
type CategoryMomentum struct {
	Category quote.Category `json:"category"`

	CurrentCount     int     `json:"current_count"`
	CurrentZScoreSum float64 `json:"current_zscore_sum"`

	Roc1D float64 `json:"roc_1d"`
	Roc3D float64 `json:"roc_3d"`
	Roc7D float64 `json:"roc_7d"`

	EMAMomentum float64 `json:"ema_momentum"`

	Trend         TrendDirection `json:"trend"`
	TrendStrength TrendStrength  `json:"trend_strength"`
}

// MomentumReport holds momentum across all categories.
type MomentumReport struct {
	ReportDate   civil.Date `json:"report_date"`
	LookbackDays int        `json:"lookback_days"`

	Fears        CategoryMomentum `json:"fears"`
	Frustrations CategoryMomentum `json:"frustrations"`
	Optimism     CategoryMomentum `json:"optimism"`

	FastestRising  quote.Category `json:"fastest_rising"`
	FastestFalling quote.Category `json:"fastest_falling"`
}

// ByCategory returns the momentum entry for a category.
func (m *MomentumReport) ByCategory(c quote.Category) *CategoryMomentum {
	switch c {
	case quote.CategoryFears:
		return &m.Fears
	case quote.CategoryFrustrations:
		return &m.Frustrations
	case quote.CategoryOptimism:
		return &m.Optimism
	}
	return nil
}

// VelocityMetric is the day-over-day change analysis for one tracked metric.
type VelocityMetric struct {
	MetricName   string  `json:"metric_name"`
	CurrentValue float64 `json:"current_value"`

	Velocity       float64 `json:"velocity"`
	VelocityZScore float64 `json:"velocity_zscore"`

	Acceleration float64 `json:"acceleration"`

	HistoricalMean float64 `json:"historical_mean"`
	HistoricalStd  float64 `json:"historical_std"`

	AlertLevel Severity `json:"alert_level"`
}

// TrendVelocityAlert is a materialized anomaly event. Alerts are re-derived
// from scratch on every report generation; there is no persisted alert
// history or acknowledgement state.
type TrendVelocityAlert struct {
	AlertID     string     `json:"alert_id"`
	TriggeredAt civil.Date `json:"triggered_at"`
	Severity    Severity   `json:"severity"`

	Metric   string          `json:"metric"`
	Category *quote.Category `json:"category"`

	CurrentValue  float64 `json:"current_value"`
	ExpectedValue float64 `json:"expected_value"`
	ZScore        float64 `json:"z_score"`
	Percentile    float64 `json:"percentile"`

	Direction   TrendDirection `json:"direction"`
	Description string         `json:"description"`

	TopQuotes []string `json:"top_quotes"`
}

// VelocityReport holds the full velocity analysis.
type VelocityReport struct {
	ReportDate   civil.Date `json:"report_date"`
	LookbackDays int        `json:"lookback_days"`

	Metrics []VelocityMetric     `json:"metrics"`
	Alerts  []TrendVelocityAlert `json:"alerts"`

	TotalAlerts  int `json:"total_alerts"`
	AlertCount   int `json:"alert_count"`
	WarningCount int `json:"warning_count"`
}

// ForecastPoint is one projected day of the composite score.
type ForecastPoint struct {
	Date       civil.Date `json:"date"`
	Predicted  float64    `json:"predicted"`
	UpperBound float64    `json:"upper_bound"`
	LowerBound float64    `json:"lower_bound"`
}

// ForecastResult is a short-horizon linear projection of the composite score
// with a confidence band. InsufficientData marks a series too short to split
// into train/test segments; all other fields are zero in that case.
type ForecastResult struct {
	HorizonDays int             `json:"horizon_days"`
	Points      []ForecastPoint `json:"points"`

	Slope            float64 `json:"slope"`
	Intercept        float64 `json:"intercept"`
	TestRSquared     float64 `json:"test_r_squared"`
	ResidualStdError float64 `json:"residual_std_error"`
	ConfidenceLevel  float64 `json:"confidence_level"`

	InsufficientData bool `json:"insufficient_data"`
}

// EntityDayData is one entity's activity on a single day.
type EntityDayData struct {
	Date         civil.Date `json:"date"`
	Engagement   int        `json:"engagement"`
	MentionCount int        `json:"mention_count"`
	Categories   []string   `json:"categories"`
}

// EntityTrend aggregates one entity across days.
type EntityTrend struct {
	Entity           string          `json:"entity"`
	TotalEngagement  int             `json:"total_engagement"`
	TotalMentions    int             `json:"total_mentions"`
	DaysPresent      int             `json:"days_present"`
	DailyData        []EntityDayData `json:"daily_data"`
	DominantCategory string          `json:"dominant_category"`
	TrendDirection   TrendDirection  `json:"trend_direction"`
}

// EntityTrendsReport ranks the most-discussed entities in the window.
type EntityTrendsReport struct {
	GeneratedAt  civil.Date    `json:"generated_at"`
	DaysAnalyzed int           `json:"days_analyzed"`
	TopEntities  []EntityTrend `json:"top_entities"`
}

// AnalyticsReport is the sole boundary artifact of the pipeline: one
// immutable snapshot per generation cycle, serialized to JSON for downstream
// consumers. Momentum, Velocity and Forecast are nil when the series was too
// short to compute them; nil means "insufficient history", never zero.
type AnalyticsReport struct {
	SchemaVersion string    `json:"schema_version"`
	GeneratedAt   time.Time `json:"generated_at"`

	DataRangeStart civil.Date `json:"data_range_start"`
	DataRangeEnd   civil.Date `json:"data_range_end"`
	DaysAnalyzed   int        `json:"days_analyzed"`

	SentimentTimeseries SentimentTimeSeries `json:"sentiment_timeseries"`
	Momentum            *MomentumReport     `json:"momentum"`
	Velocity            *VelocityReport     `json:"velocity"`
	Forecast            *ForecastResult     `json:"forecast"`

	Headline            string   `json:"headline"`
	KeyInsights         []string `json:"key_insights"`
	SentimentCommentary string   `json:"sentiment_commentary"`

	EntityTrends *EntityTrendsReport `json:"entity_trends,omitempty"`

	Methodology string `json:"methodology"`
}
