package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAllSlotsOrderedByWeekdayThenRange(t *testing.T) {
	f := newFixture()

	slots, err := f.catalog.ListAllSlots(context.Background())
	require.NoError(t, err)
	require.Len(t, slots, 7*8)

	assert.Equal(t, "Lunes", slots[0].Weekday)
	assert.Equal(t, "08:00-09:00", slots[0].TimeRange)
	assert.Equal(t, "22:00-23:00", slots[7].TimeRange)
	assert.Equal(t, "Martes", slots[8].Weekday)
	assert.Equal(t, "Domingo", slots[len(slots)-1].Weekday)
}

func TestCourtsWithSlots(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	courts := NewCourtService(f.store.repository().Courts)

	all, err := f.catalog.ListAllSlots(ctx)
	require.NoError(t, err)

	court, err := courts.Create(ctx, &CreateCourtRequest{
		Name: "Cancha Central", Capacity: 4, Price: 1500, Slots: []int64{all[9].ID, all[0].ID},
	})
	require.NoError(t, err)

	list, err := f.catalog.CourtsWithSlots(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, court.ID, list[0].ID)
	require.Len(t, list[0].Slots, 2)
	assert.Equal(t, "Lunes", list[0].Slots[0].Weekday)
	assert.Equal(t, "Martes", list[0].Slots[1].Weekday)

	empty := []int64{}
	_, err = courts.Update(ctx, court.ID, &UpdateCourtRequest{Slots: &empty})
	require.NoError(t, err)
	slots, err := f.catalog.SlotsForCourt(ctx, court.ID)
	require.NoError(t, err)
	assert.Empty(t, slots)
}
