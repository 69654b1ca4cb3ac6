package queue

import (
	"fmt"
	"strings"
	"time"
)

type TaskType string

const (
	// TaskTypeNotifyAdmin carries one reservation event to the admin channels.
	TaskTypeNotifyAdmin TaskType = "notify_admin"
)

// Task represents a unit of work in the queue
type Task struct {
	ID         string                 `json:"id"`
	Type       TaskType               `json:"type"`
	Data       map[string]interface{} `json:"data"`
	ExecuteAt  time.Time              `json:"execute_at"`
	CreatedAt  time.Time              `json:"created_at"`
	Attempts   int                    `json:"attempts"`
	MaxRetries int                    `json:"max_retries"`
}

// Validate checks if the task is valid
func (t *Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("task ID is required")
	}
	if strings.TrimSpace(string(t.Type)) == "" {
		return fmt.Errorf("task type is required")
	}
	if t.Data == nil {
		t.Data = make(map[string]interface{})
	}
	return nil
}

func (t *Task) GetString(key string) string {
	if val, ok := t.Data[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// GetInt64 accepts both the in-process int types and the float64 that JSON
// decoding produces.
func (t *Task) GetInt64(key string) int64 {
	switch v := t.Data[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return 0
}

func (t *Task) GetFloat(key string) float64 {
	switch v := t.Data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// GetTime returns a time value from task data
func (t *Task) GetTime(key string) time.Time {
	if str, ok := t.Data[key].(string); ok {
		if parsed, err := time.Parse(time.RFC3339, str); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
