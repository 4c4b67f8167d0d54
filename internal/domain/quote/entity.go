package quote

import (
	"cloud.google.com/go/civil"

	"barometer/pkg/errors"
)

// Category is one of the closed set of emotional categories assigned by the
// upstream classifier. The set is fixed for schema version analytics_v1;
// older 4-way taxonomies are migrated before ingestion, never here.
type Category string

const (
	CategoryFears        Category = "fears"
	CategoryFrustrations Category = "frustrations"
	CategoryOptimism     Category = "optimism"
)

// Categories returns all categories in canonical order.
func Categories() []Category {
	return []Category{CategoryFears, CategoryFrustrations, CategoryOptimism}
}

// Valid reports whether the category belongs to the closed set.
func (c Category) Valid() bool {
	switch c {
	case CategoryFears, CategoryFrustrations, CategoryOptimism:
		return true
	}
	return false
}

// Negative reports whether the category contributes to the negativity score.
func (c Category) Negative() bool {
	return c == CategoryFears || c == CategoryFrustrations
}

// Title returns the category name capitalized for narrative text.
func (c Category) Title() string {
	switch c {
	case CategoryFears:
		return "Fears"
	case CategoryFrustrations:
		return "Frustrations"
	case CategoryOptimism:
		return "Optimism"
	}
	return string(c)
}

// Intensity is the ordinal strength of the expressed emotion,
// mild < moderate < strong.
type Intensity string

const (
	IntensityMild     Intensity = "mild"
	IntensityModerate Intensity = "moderate"
	IntensityStrong   Intensity = "strong"
)

// Intensities returns all intensity labels in ordinal order.
func Intensities() []Intensity {
	return []Intensity{IntensityMild, IntensityModerate, IntensityStrong}
}

// Valid reports whether the intensity belongs to the ordinal set.
func (i Intensity) Valid() bool {
	switch i {
	case IntensityMild, IntensityModerate, IntensityStrong:
		return true
	}
	return false
}

// Quote is a single classified quote from the upstream pipeline.
// The analytics core consumes only Category, Intensity, Engagement and Date;
// the remaining fields are carried for alert context and audit.
type Quote struct {
	Text       string     `json:"text"`
	Category   Category   `json:"category"`
	Intensity  Intensity  `json:"intensity"`
	Engagement int        `json:"engagement"` // net upvotes, may be zero or negative
	Date       civil.Date `json:"date"`
	PostID     string     `json:"post_id"`
	Subreddit  string     `json:"subreddit"`
}

// Validate checks the fields the pipeline depends on.
func (q *Quote) Validate() error {
	if !q.Category.Valid() {
		return errors.Wrapf(errors.ErrInvalidCategory, "%q", q.Category)
	}
	if !q.Intensity.Valid() {
		return errors.Wrapf(errors.ErrInvalidIntensity, "%q", q.Intensity)
	}
	if !q.Date.IsValid() {
		return errors.NewValidationError("date", "missing or invalid quote date", q.Date.String())
	}
	return nil
}
