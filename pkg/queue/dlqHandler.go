package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var ErrTaskNotFound = errors.New("task not found in DLQ")

// DLQHandler keeps tasks that exhausted their retries.
type DLQHandler interface {
	HandleFailedTask(task *Task, err error)
	GetFailedTasks(ctx context.Context, limit int) ([]*FailedTask, error)
	RequeueFailedTask(ctx context.Context, taskID string) error
	DeleteFailedTask(ctx context.Context, taskID string) error
	GetDLQStats(ctx context.Context) (*DLQStats, error)
	PurgeDLQ(ctx context.Context) (int64, error)
}

// DefaultDLQHandler stores failed tasks in a sorted set scored by failure time.
type DefaultDLQHandler struct {
	client    *redis.Client
	dlq       string
	mainQueue string
}

type FailedTask struct {
	Task     *Task     `json:"task"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
	Attempts int       `json:"attempts"`
}

type DLQStats struct {
	OldestFailure time.Time `json:"oldest_failure"`
	NewestFailure time.Time `json:"newest_failure"`
	QueueSize     int64     `json:"queue_size"`
}

// NewDefaultDLQHandler creates a handler; requeued tasks go back to mainQueue.
func NewDefaultDLQHandler(client *redis.Client, dlq, mainQueue string) *DefaultDLQHandler {
	return &DefaultDLQHandler{
		client:    client,
		dlq:       dlq,
		mainQueue: mainQueue,
	}
}

func (d *DefaultDLQHandler) HandleFailedTask(task *Task, err error) {
	failedTask := &FailedTask{
		Task:     task,
		Error:    err.Error(),
		FailedAt: time.Now(),
		Attempts: task.Attempts,
	}

	taskData, marshalErr := json.Marshal(failedTask)
	if marshalErr != nil {
		logrus.WithError(marshalErr).Error("Failed to marshal failed task")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	score := float64(failedTask.FailedAt.UnixNano()) / 1e9
	if redisErr := d.client.ZAdd(ctx, d.dlq, redis.Z{Score: score, Member: taskData}).Err(); redisErr != nil {
		logrus.WithError(redisErr).WithField("task_id", task.ID).Error("Failed to send task to DLQ")
		return
	}

	logrus.WithFields(logrus.Fields{
		"task_id":   task.ID,
		"task_type": task.Type,
		"attempts":  task.Attempts,
	}).WithError(err).Warn("Task moved to DLQ")
}

// GetFailedTasks returns the newest failures first.
func (d *DefaultDLQHandler) GetFailedTasks(ctx context.Context, limit int) ([]*FailedTask, error) {
	if limit <= 0 {
		limit = 50
	}

	tasks, err := d.client.ZRevRangeByScore(ctx, d.dlq, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   "+inf",
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get failed tasks: %w", err)
	}

	failedTasks := make([]*FailedTask, 0, len(tasks))
	for _, taskData := range tasks {
		var failedTask FailedTask
		if err := json.Unmarshal([]byte(taskData), &failedTask); err != nil {
			logrus.WithError(err).Warn("Failed to unmarshal failed task")
			continue
		}
		failedTasks = append(failedTasks, &failedTask)
	}

	return failedTasks, nil
}

// find returns the raw member and decoded entry for taskID.
func (d *DefaultDLQHandler) find(ctx context.Context, taskID string) (string, *FailedTask, error) {
	tasks, err := d.client.ZRange(ctx, d.dlq, 0, -1).Result()
	if err != nil {
		return "", nil, fmt.Errorf("failed to get DLQ tasks: %w", err)
	}

	for _, taskData := range tasks {
		var failedTask FailedTask
		if err := json.Unmarshal([]byte(taskData), &failedTask); err != nil || failedTask.Task == nil {
			continue
		}
		if failedTask.Task.ID == taskID {
			return taskData, &failedTask, nil
		}
	}

	return "", nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
}

// RequeueFailedTask moves a failed task back to the main queue with a fresh attempt count.
func (d *DefaultDLQHandler) RequeueFailedTask(ctx context.Context, taskID string) error {
	member, failedTask, err := d.find(ctx, taskID)
	if err != nil {
		return err
	}

	failedTask.Task.Attempts = 0
	failedTask.Task.ExecuteAt = time.Now()

	taskData, err := json.Marshal(failedTask.Task)
	if err != nil {
		return fmt.Errorf("failed to marshal task for requeue: %w", err)
	}

	pipe := d.client.TxPipeline()
	pipe.LPush(ctx, d.mainQueue, taskData)
	pipe.ZRem(ctx, d.dlq, member)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to requeue task: %w", err)
	}

	logrus.WithField("task_id", taskID).Info("Task requeued from DLQ")
	return nil
}

func (d *DefaultDLQHandler) DeleteFailedTask(ctx context.Context, taskID string) error {
	member, _, err := d.find(ctx, taskID)
	if err != nil {
		return err
	}

	if err := d.client.ZRem(ctx, d.dlq, member).Err(); err != nil {
		return fmt.Errorf("failed to delete task from DLQ: %w", err)
	}

	logrus.WithField("task_id", taskID).Info("Task deleted from DLQ")
	return nil
}

func (d *DefaultDLQHandler) GetDLQStats(ctx context.Context) (*DLQStats, error) {
	count, err := d.client.ZCard(ctx, d.dlq).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get DLQ count: %w", err)
	}

	stats := &DLQStats{QueueSize: count}
	if count == 0 {
		return stats, nil
	}

	oldest, err := d.client.ZRange(ctx, d.dlq, 0, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get oldest task: %w", err)
	}
	newest, err := d.client.ZRevRange(ctx, d.dlq, 0, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get newest task: %w", err)
	}

	stats.OldestFailure = failedAt(oldest)
	stats.NewestFailure = failedAt(newest)
	return stats, nil
}

func failedAt(members []string) time.Time {
	if len(members) == 0 {
		return time.Time{}
	}
	var task FailedTask
	if err := json.Unmarshal([]byte(members[0]), &task); err != nil {
		return time.Time{}
	}
	return task.FailedAt
}

// PurgeDLQ clears all tasks from the DLQ
func (d *DefaultDLQHandler) PurgeDLQ(ctx context.Context) (int64, error) {
	count, err := d.client.ZCard(ctx, d.dlq).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get DLQ count: %w", err)
	}

	if err := d.client.Del(ctx, d.dlq).Err(); err != nil {
		return 0, fmt.Errorf("failed to purge DLQ: %w", err)
	}

	logrus.WithField("removed", count).Info("DLQ purged")
	return count, nil
}
