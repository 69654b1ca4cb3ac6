package service

import (
	"context"
	"time"

	"github.com/mateolafalce/padelpro/internal/entity"
	"github.com/mateolafalce/padelpro/pkg/queue"
)

// QueueAdapter adapts queue.Queue to TaskPublisher.
type QueueAdapter struct {
	queue queue.Queue
}

func NewQueueAdapter(q queue.Queue) *QueueAdapter {
	return &QueueAdapter{queue: q}
}

func (a *QueueAdapter) Publish(ctx context.Context, task *Task) error {
	if a.queue == nil {
		return nil
	}

	queueTask := &queue.Task{
		ID:         task.ID,
		Type:       queue.TaskType(task.Type),
		Data:       task.Data,
		ExecuteAt:  task.ExecuteAt,
		MaxRetries: task.MaxRetries,
		Attempts:   task.Attempts,
	}
	return a.queue.Publish(ctx, queueTask)
}

// NotifyAdminPublisher turns reservation events into notify_admin tasks.
type NotifyAdminPublisher struct {
	tasks      TaskPublisher
	maxRetries int
}

func NewNotifyAdminPublisher(tasks TaskPublisher, maxRetries int) *NotifyAdminPublisher {
	return &NotifyAdminPublisher{tasks: tasks, maxRetries: maxRetries}
}

func (p *NotifyAdminPublisher) Publish(ctx context.Context, event *entity.ReservationEvent) error {
	return p.tasks.Publish(ctx, &Task{
		ID:   "notify_admin_" + event.ID,
		Type: TaskTypeNotifyAdmin,
		Data: map[string]interface{}{
			"event_id":   event.ID,
			"type":       string(event.Type),
			"reserva_id": event.ReservationID,
			"cancha":     event.Court,
			"fecha":      event.Date,
			"hora":       event.TimeRange,
			"telefono":   event.Phone,
			"monto":      event.Amount,
			"at":         event.At.Format(time.RFC3339),
		},
		MaxRetries: p.maxRetries,
	})
}
