package quote

import (
	"context"

	"cloud.google.com/go/civil"
)

// Repository defines the interface for quote corpus access (ClickHouse)
type Repository interface {
	// InsertBatch stores a batch of classified quotes
	InsertBatch(ctx context.Context, quotes []Quote) error

	// GetByDateRange returns all quotes with from <= date <= to,
	// ordered by date ascending
	GetByDateRange(ctx context.Context, from, to civil.Date) ([]Quote, error)

	// GetDateBounds returns the earliest and latest quote dates in the corpus
	GetDateBounds(ctx context.Context) (civil.Date, civil.Date, error)
}
