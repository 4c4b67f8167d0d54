package clickhouse

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"barometer/internal/domain/cluster"
	"barometer/pkg/errors"
)

// Compile-time check
var _ cluster.Repository = (*ClusterRepository)(nil)

// ClusterRepository implements cluster.Repository using ClickHouse
type ClusterRepository struct {
	conn driver.Conn
}

// NewClusterRepository creates a new thematic cluster repository
func NewClusterRepository(conn driver.Conn) *ClusterRepository {
	return &ClusterRepository{conn: conn}
}

type clusterRow struct {
	Date            time.Time `ch:"date"`
	Theme           string    `ch:"theme"`
	Entities        []string  `ch:"entities"`
	EngagementScore int32     `ch:"engagement_score"`
	DominantEmotion string    `ch:"dominant_emotion"`
	QuoteCount      int32     `ch:"quote_count"`
}

func (r clusterRow) toDomain() cluster.ThematicCluster {
	return cluster.ThematicCluster{
		Date:            timeToDate(r.Date),
		Theme:           r.Theme,
		Entities:        r.Entities,
		EngagementScore: int(r.EngagementScore),
		DominantEmotion: r.DominantEmotion,
		QuoteCount:      int(r.QuoteCount),
	}
}

// InsertBatch stores a batch of thematic clusters
func (r *ClusterRepository) InsertBatch(ctx context.Context, clusters []cluster.ThematicCluster) error {
	if len(clusters) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, `
		INSERT INTO thematic_clusters (
			date, theme, entities, engagement_score, dominant_emotion, quote_count
		)
	`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare batch")
	}

	for _, c := range clusters {
		err := batch.Append(
			dateToTime(c.Date), c.Theme, c.Entities,
			int32(c.EngagementScore), c.DominantEmotion, int32(c.QuoteCount),
		)
		if err != nil {
			return errors.Wrap(err, "failed to append cluster")
		}
	}

	return batch.Send()
}

// GetByDateRange returns all clusters with from <= date <= to, oldest first
func (r *ClusterRepository) GetByDateRange(ctx context.Context, from, to civil.Date) ([]cluster.ThematicCluster, error) {
	var rows []clusterRow

	query := `
		SELECT date, theme, entities, engagement_score, dominant_emotion, quote_count
		FROM thematic_clusters
		WHERE date >= $1 AND date <= $2
		ORDER BY date ASC`

	if err := r.conn.Select(ctx, &rows, query, dateToTime(from), dateToTime(to)); err != nil {
		return nil, errors.Wrap(err, "failed to select clusters")
	}

	clusters := make([]cluster.ThematicCluster, 0, len(rows))
	for _, row := range rows {
		clusters = append(clusters, row.toDomain())
	}
	return clusters, nil
}
