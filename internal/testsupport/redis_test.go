package testsupport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRedisClient_StartsEmpty(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := LoadDatabaseConfigsFromEnv(t)
	client := NewRedisClient(t, cfg.Redis)
	ctx := context.Background()

	size, err := client.DBSize(ctx).Result()
	require.NoError(t, err)
	require.Zero(t, size, "helper must flush the keyspace before handing out the client")

	// Left behind on purpose; the registered cleanup flushes it.
	require.NoError(t, client.Set(ctx, "leftover-key", "value", 0).Err())

	val, err := client.Get(ctx, "leftover-key").Result()
	require.NoError(t, err)
	require.Equal(t, "value", val)
}
