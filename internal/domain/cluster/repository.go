package cluster

import (
	"context"

	"cloud.google.com/go/civil"
)

// Repository defines the interface for thematic cluster access (ClickHouse)
type Repository interface {
	// InsertBatch stores a batch of thematic clusters
	InsertBatch(ctx context.Context, clusters []ThematicCluster) error

	// GetByDateRange returns all clusters with from <= date <= to,
	// ordered by date ascending
	GetByDateRange(ctx context.Context, from, to civil.Date) ([]ThematicCluster, error)
}
