package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Pruner trims every conversation to its retention limit.
type Pruner interface {
	PruneAll(ctx context.Context) (int64, error)
}

// HistoryRetentionWorker prunes conversation history on an interval, so a
// failed inline prune never lets a conversation grow without bound.
type HistoryRetentionWorker struct {
	history  Pruner
	interval time.Duration

	runs    atomic.Int64
	removed atomic.Int64
	failed  atomic.Int64
}

func NewHistoryRetentionWorker(history Pruner, interval time.Duration) *HistoryRetentionWorker {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &HistoryRetentionWorker{
		history:  history,
		interval: interval,
	}
}

// Start blocks until ctx is cancelled.
func (w *HistoryRetentionWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.WithField("interval", w.interval.String()).Info("History retention worker started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("History retention worker stopped")
			return
		case <-ticker.C:
			w.prune(ctx)
		}
	}
}

func (w *HistoryRetentionWorker) prune(ctx context.Context) {
	w.runs.Add(1)

	removed, err := w.history.PruneAll(ctx)
	if err != nil {
		w.failed.Add(1)
		logrus.Errorf("Failed to prune conversation history: %v", err)
		return
	}
	w.removed.Add(removed)

	if removed > 0 {
		logrus.Infof("History retention removed %d old messages", removed)
	} else {
		logrus.Debug("History retention found nothing to prune")
	}
}

func (w *HistoryRetentionWorker) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"worker_type": "history_retention",
		"interval":    w.interval.String(),
		"runs":        w.runs.Load(),
		"removed":     w.removed.Load(),
		"failed_runs": w.failed.Load(),
	}
}
