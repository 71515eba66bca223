package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	addr := os.Getenv("REDIS_URL")
	if addr == "" {
		addr = "localhost:6379"
	}
	ctx := context.Background()
	client, err := NewConnection(ctx, addr)
	if err != nil {
		t.Skipf("redis not available at %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = client.Close() })

	repo := NewNotificationRepository(client, time.Minute)
	key := "test:" + time.Now().Format(time.RFC3339Nano)
	t.Cleanup(func() { client.Del(context.Background(), keyPrefix+key) })

	first, err := repo.MarkProcessed(ctx, key)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := repo.MarkProcessed(ctx, key)
	require.NoError(t, err)
	assert.False(t, again)

	ttl, err := client.TTL(ctx, keyPrefix+key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, repo.Forget(ctx, key))
	afterForget, err := repo.MarkProcessed(ctx, key)
	require.NoError(t, err)
	assert.True(t, afterForget)
}
