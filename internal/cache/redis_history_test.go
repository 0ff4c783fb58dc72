package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repbep/internal/ai"
)

// testRedis connects to REDIS_TEST_ADDR. Tests are skipped when the variable is unset.
func testRedis(t *testing.T) *redisv9.Client {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client := redisv9.NewClient(&redisv9.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, client.Ping(ctx).Err())
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisHistoryAppendGetClear(t *testing.T) {
	client := testRedis(t)
	ctx := context.Background()
	h := NewRedisHistory(client, time.Minute)
	session := "test-" + uuid.NewString()
	t.Cleanup(func() { _ = h.Clear(context.Background(), session) })

	empty, err := h.Get(ctx, session)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	require.NoError(t, h.Clear(ctx, session))

	require.NoError(t, h.Append(ctx, session, ai.ChatMessage{Role: "user", Content: "hi"}))
	require.NoError(t, h.Append(ctx, session, ai.ChatMessage{Role: "assistant", Content: "hello"}))
	require.NoError(t, h.Append(ctx, session, ai.ChatMessage{Role: "user", Content: "again"}))

	got, err := h.Get(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, []ai.ChatMessage{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
		{Role: "user", Content: "again"},
	}, got)

	require.NoError(t, h.Clear(ctx, session))
	got, err = h.Get(ctx, session)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisHistoryAppendSlidesTTL(t *testing.T) {
	client := testRedis(t)
	ctx := context.Background()
	h := NewRedisHistory(client, time.Minute)
	session := "test-" + uuid.NewString()
	t.Cleanup(func() { _ = h.Clear(context.Background(), session) })

	require.NoError(t, h.Append(ctx, session, ai.ChatMessage{Role: "user", Content: "hi"}))
	key := h.historyKey(session)

	ttl, err := client.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)
	assert.LessOrEqual(t, ttl, time.Minute)

	require.NoError(t, client.Expire(ctx, key, 5*time.Second).Err())
	require.NoError(t, h.Append(ctx, session, ai.ChatMessage{Role: "assistant", Content: "hello"}))

	ttl, err = client.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)
}
