package testsupport

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"barometer/internal/adapters/config"
)

// NewRedisClient connects to the test Redis database and flushes it so the
// test starts from an empty keyspace. The cleanup flush keeps leftovers from
// leaking into whichever test grabs the database next.
func NewRedisClient(t *testing.T, cfg config.RedisConfig) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("redis not reachable at %s: %v", cfg.Addr(), err)
	}
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("failed to flush redis db %d: %v", cfg.DB, err)
	}

	t.Cleanup(func() {
		_ = client.FlushDB(context.Background()).Err()
		_ = client.Close()
	})

	return client
}
