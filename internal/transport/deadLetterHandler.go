package transport

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mateolafalce/padelpro/pkg/queue"
)

const queueUnavailable = "Cola de notificaciones no disponible"

// DLQInspector lets operators look at and recover admin notifications that
// exhausted their retries.
type DLQInspector interface {
	GetFailedTasks(ctx context.Context, limit int) ([]*queue.FailedTask, error)
	GetDLQStats(ctx context.Context) (*queue.DLQStats, error)
	RequeueFailedTask(ctx context.Context, taskID string) error
	DeleteFailedTask(ctx context.Context, taskID string) error
	PurgeDLQ(ctx context.Context) (int64, error)
}

type DeadLetterHandler struct {
	dlq DLQInspector
}

// NewDeadLetterHandler accepts a nil inspector when the queue is disabled;
// every route then answers 503.
func NewDeadLetterHandler(dlq DLQInspector) *DeadLetterHandler {
	return &DeadLetterHandler{dlq: dlq}
}

func (h *DeadLetterHandler) available(c *gin.Context) bool {
	if h.dlq == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Success: false, Error: queueUnavailable})
		return false
	}
	return true
}

func (h *DeadLetterHandler) List(c *gin.Context) {
	if !h.available(c) {
		return
	}
	ctx := c.Request.Context()

	tasks, err := h.dlq.GetFailedTasks(ctx, queryInt(c, "limite", 50))
	if err != nil {
		respondError(c, err)
		return
	}
	stats, err := h.dlq.GetDLQStats(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: tasks, Meta: stats})
}

func (h *DeadLetterHandler) Requeue(c *gin.Context) {
	if !h.available(c) {
		return
	}
	id := c.Param("id")
	if err := h.dlq.RequeueFailedTask(c.Request.Context(), id); err != nil {
		h.respondTaskError(c, id, err)
		return
	}
	logrus.WithField("task_id", id).Info("Failed task requeued by operator")
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Tarea reencolada"})
}

func (h *DeadLetterHandler) Delete(c *gin.Context) {
	if !h.available(c) {
		return
	}
	id := c.Param("id")
	if err := h.dlq.DeleteFailedTask(c.Request.Context(), id); err != nil {
		h.respondTaskError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Tarea eliminada"})
}

func (h *DeadLetterHandler) Purge(c *gin.Context) {
	if !h.available(c) {
		return
	}
	removed, err := h.dlq.PurgeDLQ(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	logrus.WithField("removed", removed).Warn("DLQ purged by operator")
	c.JSON(http.StatusOK, gin.H{"success": true, "eliminados": removed})
}

func (h *DeadLetterHandler) respondTaskError(c *gin.Context, id string, err error) {
	if errors.Is(err, queue.ErrTaskNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Success: false, Error: "Tarea " + id + " no encontrada"})
		return
	}
	respondError(c, err)
}
