package queue

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShouldRetry(t *testing.T) {
	rm := NewRetryManager(3, 100*time.Millisecond)

	tests := []struct {
		name      string
		attempts  int
		err       error
		wantRetry bool
	}{
		{name: "transient first attempt", attempts: 1, err: errors.New("connection reset"), wantRetry: true},
		{name: "attempts exhausted", attempts: 3, err: errors.New("connection reset"), wantRetry: false},
		{name: "permanent", attempts: 1, err: Permanent(errors.New("boom")), wantRetry: false},
		{name: "wrapped permanent", attempts: 1, err: fmt.Errorf("telegram: %w", Permanent(errors.New("boom"))), wantRetry: false},
		{name: "validation pattern", attempts: 1, err: errors.New("Invalid chat id"), wantRetry: false},
		{name: "nil error", attempts: 1, err: nil, wantRetry: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &Task{ID: "t", Type: TaskTypeNotifyAdmin, Attempts: tt.attempts, MaxRetries: 3}
			retry, delay := rm.ShouldRetry(task, tt.err)
			assert.Equal(t, tt.wantRetry, retry)
			if !retry {
				assert.Zero(t, delay)
			}
		})
	}
}

func TestShouldRetryFallsBackToManagerLimit(t *testing.T) {
	rm := NewRetryManager(2, time.Millisecond)
	task := &Task{ID: "t", Type: TaskTypeNotifyAdmin, Attempts: 2}

	retry, _ := rm.ShouldRetry(task, errors.New("timeout"))
	assert.False(t, retry)
}

func TestBackoffBounds(t *testing.T) {
	base := 100 * time.Millisecond
	rm := NewRetryManager(10, base)

	for attempt := 1; attempt <= 8; attempt++ {
		for i := 0; i < 50; i++ {
			d := rm.calculateBackoff(attempt)
			assert.Greater(t, d, time.Duration(0))
			assert.LessOrEqual(t, d, 16*base)
		}
	}

	first := rm.calculateBackoff(1)
	assert.GreaterOrEqual(t, first, 75*time.Millisecond)
	assert.LessOrEqual(t, first, 125*time.Millisecond)
}

func TestPermanentKeepsMessage(t *testing.T) {
	inner := errors.New("bad payload")
	err := Permanent(inner)

	assert.EqualError(t, err, "bad payload")
	assert.ErrorIs(t, err, ErrPermanent)
	assert.ErrorIs(t, err, inner)
	assert.Nil(t, Permanent(nil))
}
