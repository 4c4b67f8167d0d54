package report

import (
	"context"
	"time"
)

// Repository defines the interface for the report archive (ClickHouse)
type Repository interface {
	// Store archives a generated report
	Store(ctx context.Context, rep *AnalyticsReport) error

	// Latest returns the most recently generated report,
	// or errors.ErrNotFound when the archive is empty
	Latest(ctx context.Context) (*AnalyticsReport, error)

	// ListGenerated returns generation timestamps of archived reports,
	// newest first, up to limit
	ListGenerated(ctx context.Context, limit int) ([]time.Time, error)
}
