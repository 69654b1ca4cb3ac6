package queue

import (
	"context"
)

// Queue is the publishing and consuming side of the task queue.
type Queue interface {
	Publish(ctx context.Context, task *Task) error
	Subscribe(ctx context.Context, handler func(*Task) error) error
	Close() error
}
