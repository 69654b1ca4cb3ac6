package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	defaultPrefix       = "padelpro"
	defaultMaxRetries   = 3
	defaultBaseDelay    = 5 * time.Second
	defaultQueueTimeout = 5 * time.Second
	defaultDLQThreshold = 1000
)

// RedisQueue implements Queue on a shared go-redis client: a list for ready
// tasks, a sorted set for delayed ones, a processing list and a sorted-set DLQ.
type RedisQueue struct {
	client          *redis.Client
	mainQueue       string
	delayedQueue    string
	processingQueue string
	dlq             string
	metricsPrefix   string
	retryManager    *RetryManager
	dlqHandler      DLQHandler
	config          *RedisQueueConfig
	mu              sync.Mutex
	stopChan        chan struct{}
	stopOnce        sync.Once
	wg              sync.WaitGroup
}

type RedisQueueConfig struct {
	// Key names
	MainQueue       string
	DelayedQueue    string
	ProcessingQueue string
	DLQ             string
	MetricsPrefix   string

	// Behavior
	MaxRetries    int
	BaseDelay     time.Duration
	QueueTimeout  time.Duration
	DelayedPoll   time.Duration
	DLQThreshold  int
	EnableDLQ     bool
	EnableMetrics bool
}

// DefaultRedisQueueConfig names every key under prefix ("padelpro" when empty).
func DefaultRedisQueueConfig(prefix string) *RedisQueueConfig {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &RedisQueueConfig{
		MainQueue:       prefix + ":tasks",
		DelayedQueue:    prefix + ":tasks:delayed",
		ProcessingQueue: prefix + ":tasks:processing",
		DLQ:             prefix + ":dlq",
		MetricsPrefix:   prefix + ":metrics",
		MaxRetries:      defaultMaxRetries,
		BaseDelay:       defaultBaseDelay,
		QueueTimeout:    defaultQueueTimeout,
		DelayedPoll:     10 * time.Second,
		DLQThreshold:    defaultDLQThreshold,
		EnableDLQ:       true,
		EnableMetrics:   true,
	}
}

// NewRedisQueue builds a queue on an already connected client. The client
// stays owned by the caller.
func NewRedisQueue(client *redis.Client, cfg *RedisQueueConfig, retryManager *RetryManager, dlqHandler DLQHandler) (*RedisQueue, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if cfg == nil {
		cfg = DefaultRedisQueueConfig("")
	}
	if cfg.QueueTimeout <= 0 {
		cfg.QueueTimeout = defaultQueueTimeout
	}
	if cfg.DelayedPoll <= 0 {
		cfg.DelayedPoll = 10 * time.Second
	}

	if retryManager == nil {
		retryManager = NewRetryManager(cfg.MaxRetries, cfg.BaseDelay)
	}
	if dlqHandler == nil && cfg.EnableDLQ {
		dlqHandler = NewDefaultDLQHandler(client, cfg.DLQ, cfg.MainQueue)
	}

	q := &RedisQueue{
		client:          client,
		mainQueue:       cfg.MainQueue,
		delayedQueue:    cfg.DelayedQueue,
		processingQueue: cfg.ProcessingQueue,
		dlq:             cfg.DLQ,
		metricsPrefix:   cfg.MetricsPrefix,
		retryManager:    retryManager,
		dlqHandler:      dlqHandler,
		config:          cfg,
		stopChan:        make(chan struct{}),
	}

	logrus.WithFields(logrus.Fields{
		"main":    cfg.MainQueue,
		"delayed": cfg.DelayedQueue,
		"dlq":     cfg.DLQ,
	}).Info("RedisQueue initialized")

	return q, nil
}

// Publish sends a task to the delayed set when ExecuteAt is in the future and
// to the main list otherwise.
func (r *RedisQueue) Publish(ctx context.Context, task *Task) error {
	if task == nil {
		return errors.New("task cannot be nil")
	}

	if err := r.validateTask(task); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}

	taskData, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if task.ExecuteAt.After(time.Now()) {
		score := float64(task.ExecuteAt.UnixNano()) / 1e9
		if err := r.client.ZAdd(ctx, r.delayedQueue, redis.Z{Score: score, Member: taskData}).Err(); err != nil {
			return fmt.Errorf("failed to publish delayed task: %w", err)
		}
		r.incrementMetric(ctx, "tasks_delayed")

		logrus.WithFields(logrus.Fields{
			"task_id":    task.ID,
			"execute_at": task.ExecuteAt.Format(time.RFC3339),
		}).Debug("Task scheduled")
		return nil
	}

	if err := r.client.LPush(ctx, r.mainQueue, taskData).Err(); err != nil {
		return fmt.Errorf("failed to publish immediate task: %w", err)
	}
	r.incrementMetric(ctx, "tasks_queued")

	logrus.WithFields(logrus.Fields{"task_id": task.ID, "task_type": task.Type}).Debug("Task published")
	return nil
}

// Subscribe starts the consumer goroutines; they stop on ctx cancellation or Close.
func (r *RedisQueue) Subscribe(ctx context.Context, handler func(*Task) error) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	r.recoverProcessing(ctx)

	r.wg.Add(3)
	go r.processDelayedTasks(ctx)
	go r.processMainQueue(ctx, handler)
	go r.monitorQueueMetrics(ctx)

	logrus.Info("RedisQueue subscriber started")
	return nil
}

// recoverProcessing puts back tasks left in the processing list by a crashed consumer.
func (r *RedisQueue) recoverProcessing(ctx context.Context) {
	moved := 0
	for {
		err := r.client.RPopLPush(ctx, r.processingQueue, r.mainQueue).Err()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			logrus.WithError(err).Warn("Failed to recover processing tasks")
			break
		}
		moved++
	}
	if moved > 0 {
		logrus.WithField("count", moved).Info("Recovered unfinished tasks")
	}
}

func (r *RedisQueue) processMainQueue(ctx context.Context, handler func(*Task) error) {
	defer r.wg.Done()

	for {
		select {
		case <-ctx.Done():
			logrus.Debug("Main queue processor stopped by context")
			return
		case <-r.stopChan:
			logrus.Debug("Main queue processor stopped")
			return
		default:
			if err := r.processOne(ctx, handler); err != nil {
				if ctx.Err() != nil {
					return
				}
				logrus.WithError(err).Error("Error processing task")
				time.Sleep(time.Second)
			}
		}
	}
}

// processOne moves one task to the processing list, runs it with retries and
// removes it afterwards whatever the outcome.
func (r *RedisQueue) processOne(ctx context.Context, handler func(*Task) error) error {
	taskData, err := r.client.BRPopLPush(ctx, r.mainQueue, r.processingQueue, r.config.QueueTimeout).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to move task to processing queue: %w", err)
	}

	var task Task
	if err := json.Unmarshal([]byte(taskData), &task); err != nil {
		logrus.WithError(err).Error("Failed to unmarshal task")
		r.moveToDLQ(ctx, taskData, fmt.Errorf("invalid task format: %w", err))
	} else if err := r.executeTaskWithRetry(ctx, &task, handler); err != nil {
		logrus.WithFields(logrus.Fields{
			"task_id":  task.ID,
			"attempts": task.Attempts,
		}).WithError(err).Error("Task failed")
		if r.dlqHandler != nil && r.config.EnableDLQ {
			r.dlqHandler.HandleFailedTask(&task, err)
			r.incrementMetric(ctx, "tasks_dlq")
		}
	} else {
		logrus.WithField("task_id", task.ID).Debug("Task completed")
	}

	if err := r.client.LRem(ctx, r.processingQueue, 1, taskData).Err(); err != nil {
		logrus.WithError(err).Warn("Failed to remove task from processing queue")
	}
	return nil
}

func (r *RedisQueue) processDelayedTasks(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.DelayedPoll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopChan:
			return
		case <-ticker.C:
			if err := r.moveReadyDelayedTasks(ctx); err != nil {
				logrus.WithError(err).Error("Failed to process delayed tasks")
			}
		}
	}
}

func (r *RedisQueue) moveReadyDelayedTasks(ctx context.Context) error {
	now := fmt.Sprintf("%f", float64(time.Now().UnixNano())/1e9)

	tasks, err := r.client.ZRangeByScore(ctx, r.delayedQueue, &redis.ZRangeBy{
		Min: "0",
		Max: now,
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to get delayed tasks: %w", err)
	}
	if len(tasks) == 0 {
		return nil
	}

	pipe := r.client.TxPipeline()
	for _, taskData := range tasks {
		pipe.LPush(ctx, r.mainQueue, taskData)
		pipe.ZRem(ctx, r.delayedQueue, taskData)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to move delayed tasks: %w", err)
	}

	r.incrementMetricBy(ctx, "tasks_delayed_processed", int64(len(tasks)))
	logrus.WithField("count", len(tasks)).Debug("Moved delayed tasks to main queue")
	return nil
}

func (r *RedisQueue) executeTaskWithRetry(ctx context.Context, task *Task, handler func(*Task) error) error {
	for {
		task.Attempts++
		startTime := time.Now()

		err := handler(task)
		if err == nil {
			r.recordTaskSuccess(ctx, task, time.Since(startTime))
			return nil
		}
		r.recordTaskFailure(ctx, task)

		shouldRetry, delay := r.retryManager.ShouldRetry(task, err)
		if !shouldRetry {
			return err
		}

		logrus.WithFields(logrus.Fields{
			"task_id":     task.ID,
			"attempt":     task.Attempts,
			"max_retries": task.MaxRetries,
			"delay":       delay.String(),
		}).WithError(err).Warn("Task failed, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.stopChan:
			return err
		case <-time.After(delay):
		}
	}
}

func (r *RedisQueue) moveToDLQ(ctx context.Context, taskData string, err error) {
	if !r.config.EnableDLQ || r.dlqHandler == nil {
		return
	}

	r.dlqHandler.HandleFailedTask(&Task{
		ID:        "corrupted_" + uuid.NewString(),
		Type:      "corrupted",
		Data:      map[string]interface{}{"raw_data": taskData},
		CreatedAt: time.Now(),
	}, err)
	r.incrementMetric(ctx, "tasks_dlq")
}

// validateTask fills in defaults and rejects tasks without a type.
func (r *RedisQueue) validateTask(task *Task) error {
	if task.ID == "" {
		task.ID = generateTaskID()
	}
	if task.MaxRetries == 0 {
		task.MaxRetries = r.config.MaxRetries
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	if task.ExecuteAt.IsZero() {
		task.ExecuteAt = task.CreatedAt
	}
	return task.Validate()
}

func (r *RedisQueue) monitorQueueMetrics(ctx context.Context) {
	defer r.wg.Done()

	if !r.config.EnableMetrics {
		return
	}

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopChan:
			return
		case <-ticker.C:
			r.collectQueueMetrics(ctx)
		}
	}
}

func (r *RedisQueue) collectQueueMetrics(ctx context.Context) {
	stats, err := r.GetQueueStats(ctx)
	if err != nil {
		logrus.WithError(err).Warn("Failed to collect queue metrics")
		return
	}

	if metricsData, err := json.Marshal(stats); err == nil {
		r.client.Set(ctx, r.metricsPrefix+":queue", metricsData, 2*time.Minute)
	}

	if stats.MainQueue > int64(r.config.DLQThreshold) {
		logrus.WithFields(logrus.Fields{
			"size":      stats.MainQueue,
			"threshold": r.config.DLQThreshold,
		}).Warn("Main queue size exceeds threshold")
	}
}

func (r *RedisQueue) incrementMetric(ctx context.Context, metric string) {
	r.incrementMetricBy(ctx, metric, 1)
}

func (r *RedisQueue) incrementMetricBy(ctx context.Context, metric string, value int64) {
	if !r.config.EnableMetrics {
		return
	}

	key := r.metricsPrefix + ":" + metric
	pipe := r.client.Pipeline()
	pipe.IncrBy(ctx, key, value)
	pipe.Expire(ctx, key, 24*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		logrus.WithError(err).WithField("metric", metric).Debug("Failed to record queue metric")
	}
}

func (r *RedisQueue) recordTaskSuccess(ctx context.Context, task *Task, duration time.Duration) {
	r.incrementMetric(ctx, "tasks_success")
	r.incrementMetric(ctx, fmt.Sprintf("tasks_success_%s", task.Type))

	if r.config.EnableMetrics {
		r.client.HIncrBy(ctx, r.metricsPrefix+":task_timing", string(task.Type), duration.Milliseconds())
	}
}

func (r *RedisQueue) recordTaskFailure(ctx context.Context, task *Task) {
	r.incrementMetric(ctx, "tasks_failure")
	r.incrementMetric(ctx, fmt.Sprintf("tasks_failure_%s", task.Type))
}

func (r *RedisQueue) GetQueueStats(ctx context.Context) (*QueueStats, error) {
	pipe := r.client.Pipeline()

	mainLen := pipe.LLen(ctx, r.mainQueue)
	delayedLen := pipe.ZCard(ctx, r.delayedQueue)
	processingLen := pipe.LLen(ctx, r.processingQueue)
	dlqLen := pipe.ZCard(ctx, r.dlq)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to get queue stats: %w", err)
	}

	return &QueueStats{
		MainQueue:       mainLen.Val(),
		DelayedQueue:    delayedLen.Val(),
		ProcessingQueue: processingLen.Val(),
		DLQ:             dlqLen.Val(),
		Timestamp:       time.Now(),
	}, nil
}

// Close stops the consumers and waits for them. It does not close the client.
func (r *RedisQueue) Close() error {
	r.stopOnce.Do(func() { close(r.stopChan) })
	r.wg.Wait()

	logrus.Info("RedisQueue closed")
	return nil
}

func (r *RedisQueue) HealthCheck(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

type QueueStats struct {
	MainQueue       int64     `json:"main_queue"`
	DelayedQueue    int64     `json:"delayed_queue"`
	ProcessingQueue int64     `json:"processing_queue"`
	DLQ             int64     `json:"dlq"`
	Timestamp       time.Time `json:"timestamp"`
}

func generateTaskID() string {
	return "task_" + uuid.NewString()
}
