package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mateolafalce/padelpro/pkg/queue"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

// QueueInspector reports the state of the notification queue.
type QueueInspector interface {
	HealthCheck(ctx context.Context) error
	GetQueueStats(ctx context.Context) (*queue.QueueStats, error)
}

type HealthHandler struct {
	db      Pinger
	queue   QueueInspector
	version string
}

// NewHealthHandler accepts a nil queue when Redis is disabled.
func NewHealthHandler(db Pinger, q QueueInspector, version string) *HealthHandler {
	return &HealthHandler{db: db, queue: q, version: version}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := gin.H{"status": "ok", "version": h.version, "time": time.Now().UTC()}

	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["database"] = "unreachable"
		} else {
			body["database"] = "ok"
		}
	}

	if h.queue != nil {
		if err := h.queue.HealthCheck(ctx); err != nil {
			body["queue"] = "unreachable"
		} else if stats, err := h.queue.GetQueueStats(ctx); err == nil {
			body["queue"] = stats
		}
	}

	c.JSON(status, body)
}
