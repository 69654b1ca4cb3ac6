package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateolafalce/padelpro/internal/entity"
)

// testClient connects to PADELPRO_TEST_REDIS_ADDR and skips without it.
func testClient(t *testing.T) (*redis.Client, string) {
	t.Helper()
	addr := os.Getenv("PADELPRO_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("PADELPRO_TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(context.Background()).Err())
	t.Cleanup(func() { client.Close() })

	return client, "padelpro_test_" + uuid.NewString()
}

func TestRateLimiterWindow(t *testing.T) {
	client, prefix := testClient(t)
	ctx := context.Background()
	limiter := NewRateLimiter(client, prefix, 2, time.Minute)

	for i := 0; i < 2; i++ {
		ok, _, err := limiter.Allow(ctx, "5492214567890")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, retryIn, err := limiter.Allow(ctx, "5492214567890")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Greater(t, retryIn, time.Duration(0))

	ok, _, err = limiter.Allow(ctx, "otro")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, limiter.Reset(ctx, "5492214567890"))
	ok, _, err = limiter.Allow(ctx, "5492214567890")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSessionStoreRoundTrip(t *testing.T) {
	client, prefix := testClient(t)
	ctx := context.Background()
	store := NewSessionStore(client, prefix, time.Minute)

	empty, err := store.Load(ctx, "5492214567890")
	require.NoError(t, err)
	assert.Zero(t, empty.Turn)

	session := &entity.AgentSession{Turn: 3}
	session.MarkVerified(entity.VerifiedSlot{Court: "Cancha 1", Date: "2025-12-20", TimeRange: "18:00-19:00", Turn: 2})
	require.NoError(t, store.Save(ctx, "5492214567890", session))

	loaded, err := store.Load(ctx, "5492214567890")
	require.NoError(t, err)
	assert.Equal(t, session, loaded)

	require.NoError(t, store.Clear(ctx, "5492214567890"))
	loaded, err = store.Load(ctx, "5492214567890")
	require.NoError(t, err)
	assert.Empty(t, loaded.Verified)
}
