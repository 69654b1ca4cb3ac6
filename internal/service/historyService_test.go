package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/mateolafalce/padelpro/internal/entity"
	"github.com/mateolafalce/padelpro/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryService(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(schedule.Spaced())
	svc := NewHistoryService(store.repository().Conversations, 3, 5)

	for i := 0; i < 8; i++ {
		role := entity.RoleUser
		if i%2 == 1 {
			role = entity.RoleAssistant
		}
		require.NoError(t, svc.Save(ctx, "5491122334455", role, fmt.Sprintf("mensaje %d", i)))
	}
	require.NoError(t, svc.Save(ctx, entity.LocalWebUser, entity.RoleUser, "hola"))

	recent, err := svc.Recent(ctx, "5491122334455")
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "mensaje 5", recent[0].Message)
	assert.Equal(t, "mensaje 7", recent[2].Message)

	require.NoError(t, svc.Prune(ctx, "5491122334455"))
	history, err := svc.UserHistory(ctx, "5491122334455", 0)
	require.NoError(t, err)
	assert.Len(t, history.Messages, 5)
	assert.Equal(t, int64(5), history.Stats.TotalMessages)

	page, err := svc.ListUsers(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, int64(2), page.Pages)
	assert.Len(t, page.Users, 1)

	removed, err := svc.Clear(ctx, entity.LocalWebUser)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	assert.ErrorIs(t, svc.Save(ctx, " ", entity.RoleUser, "x"), entity.ErrMissingArgument)
}
