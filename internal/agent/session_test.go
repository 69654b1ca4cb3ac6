package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateolafalce/padelpro/internal/entity"
)

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore(time.Minute)
	clock := saturday
	store.now = func() time.Time { return clock }

	s, err := store.Load(ctx, "1")
	require.NoError(t, err)
	assert.Zero(t, s.Turn)

	s.Turn = 3
	s.MarkVerified(entity.VerifiedSlot{Court: "cancha a", Date: "2025-12-21", TimeRange: "18:00-19:00", Turn: 3})
	require.NoError(t, store.Save(ctx, "1", s))

	s.Verified[0].Court = "mutated"
	loaded, err := store.Load(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Turn)
	assert.Equal(t, "cancha a", loaded.Verified[0].Court)

	clock = clock.Add(2 * time.Minute)
	expired, err := store.Load(ctx, "1")
	require.NoError(t, err)
	assert.Zero(t, expired.Turn)
}
