package report

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"barometer/internal/adapters/redis"
	"barometer/internal/domain/report"
	"barometer/internal/metrics"
	"barometer/pkg/errors"
	"barometer/pkg/logger"
)

// latestKey is the single cache slot for the most recent report. There is
// exactly one current report at a time, so no key derivation is needed.
const latestKey = "barometer:report:latest"

// Cacher stores and retrieves the latest report snapshot.
type Cacher interface {
	// Get returns the cached report, or nil without error on a miss.
	Get(ctx context.Context) (*report.AnalyticsReport, error)

	// Set stores the report under the latest-report slot.
	Set(ctx context.Context, rep *report.AnalyticsReport) error
}

// RedisCache caches the latest report as JSON with a TTL, so API reads do
// not hit the ClickHouse archive between generation cycles.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

var _ Cacher = (*RedisCache)(nil)

// NewRedisCache creates a latest-report cache.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
		log:    logger.Get().With("component", "report_cache"),
	}
}

// Get retrieves the cached latest report. A miss returns (nil, nil).
func (c *RedisCache) Get(ctx context.Context) (*report.AnalyticsReport, error) {
	var rep report.AnalyticsReport
	err := c.client.Get(ctx, latestKey, &rep)
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			metrics.CacheOperations.WithLabelValues("get", "miss").Inc()
			return nil, nil
		}
		metrics.CacheOperations.WithLabelValues("get", "error").Inc()
		return nil, errors.Wrap(err, "failed to read report cache")
	}

	metrics.CacheOperations.WithLabelValues("get", "hit").Inc()
	return &rep, nil
}

// Set stores the report with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, rep *report.AnalyticsReport) error {
	if err := c.client.Set(ctx, latestKey, rep, c.ttl); err != nil {
		metrics.CacheOperations.WithLabelValues("set", "error").Inc()
		return errors.Wrap(err, "failed to write report cache")
	}

	metrics.CacheOperations.WithLabelValues("set", "success").Inc()
	c.log.Debug("Cached latest report",
		"generated_at", rep.GeneratedAt,
		"ttl", c.ttl,
	)
	return nil
}
