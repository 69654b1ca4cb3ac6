package service

import (
	"context"
	"testing"

	"github.com/mateolafalce/padelpro/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTasks struct {
	tasks []*Task
}

func (r *recordingTasks) Publish(_ context.Context, task *Task) error {
	r.tasks = append(r.tasks, task)
	return nil
}

func TestFanOutPublisherReachesAllTargets(t *testing.T) {
	ok := &recordingPublisher{}
	broken := &recordingPublisher{err: errBroker}

	fan := NewFanOutPublisher()
	fan.Add("kafka", broken)
	fan.Add("rabbitmq", ok)
	assert.Equal(t, 2, fan.Len())

	err := fan.Publish(context.Background(), &entity.ReservationEvent{ID: "e1", Type: entity.EventReservationCreated})
	require.Error(t, err)
	assert.ErrorIs(t, err, errBroker)
	assert.Contains(t, err.Error(), "kafka")
	assert.Len(t, ok.events, 1)
	assert.Len(t, broken.events, 1)
}

func TestNotifyAdminPublisherBuildsTask(t *testing.T) {
	tasks := &recordingTasks{}
	pub := NewNotifyAdminPublisher(tasks, 3)

	err := pub.Publish(context.Background(), &entity.ReservationEvent{
		ID: "e1", Type: entity.EventReservationCreated, ReservationID: 7,
		Court: "Cancha A", Date: "2025-12-20", TimeRange: "18:00-19:00", Amount: 1000,
	})
	require.NoError(t, err)
	require.Len(t, tasks.tasks, 1)

	task := tasks.tasks[0]
	assert.Equal(t, TaskTypeNotifyAdmin, task.Type)
	assert.Equal(t, "notify_admin_e1", task.ID)
	assert.Equal(t, 3, task.MaxRetries)
	assert.Equal(t, "Cancha A", task.Data["cancha"])
	assert.Equal(t, int64(7), task.Data["reserva_id"])
}
