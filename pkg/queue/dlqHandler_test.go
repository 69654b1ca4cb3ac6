package queue

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDLQ connects to PADELPRO_TEST_REDIS_ADDR and skips without it.
func testDLQ(t *testing.T) (*DefaultDLQHandler, *redis.Client, string) {
	t.Helper()
	addr := os.Getenv("PADELPRO_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("PADELPRO_TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(context.Background()).Err())

	cfg := DefaultRedisQueueConfig("padelpro_test_" + uuid.NewString())
	t.Cleanup(func() {
		client.Del(context.Background(), cfg.DLQ, cfg.MainQueue)
		client.Close()
	})
	return NewDefaultDLQHandler(client, cfg.DLQ, cfg.MainQueue), client, cfg.MainQueue
}

func TestDLQRequeueDeleteAndPurge(t *testing.T) {
	dlq, client, mainQueue := testDLQ(t)
	ctx := context.Background()

	dlq.HandleFailedTask(&Task{ID: "notify_admin_a", Type: TaskTypeNotifyAdmin, Attempts: 3}, errors.New("telegram: timeout"))
	dlq.HandleFailedTask(&Task{ID: "notify_admin_b", Type: TaskTypeNotifyAdmin, Attempts: 3}, errors.New("email: auth"))

	tasks, err := dlq.GetFailedTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "notify_admin_b", tasks[0].Task.ID)

	stats, err := dlq.GetDLQStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.QueueSize)
	assert.False(t, stats.OldestFailure.After(stats.NewestFailure))

	require.NoError(t, dlq.RequeueFailedTask(ctx, "notify_admin_a"))
	queued, err := client.LLen(ctx, mainQueue).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, queued)

	assert.ErrorIs(t, dlq.RequeueFailedTask(ctx, "notify_admin_a"), ErrTaskNotFound)
	assert.ErrorIs(t, dlq.DeleteFailedTask(ctx, "missing"), ErrTaskNotFound)

	dlq.HandleFailedTask(&Task{ID: "notify_admin_c", Type: TaskTypeNotifyAdmin}, errors.New("boom"))
	require.NoError(t, dlq.DeleteFailedTask(ctx, "notify_admin_b"))

	removed, err := dlq.PurgeDLQ(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	stats, err = dlq.GetDLQStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.QueueSize)
}
