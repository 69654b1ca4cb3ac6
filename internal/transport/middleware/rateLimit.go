package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Limiter admits or rejects one more request for an identity.
type Limiter interface {
	Allow(ctx context.Context, identity string) (bool, time.Duration, error)
}

const TooManyMessages = "Estás enviando muchos mensajes. Esperá un momento e intentá de nuevo."

// RateLimit rejects requests over the limit of the identity returned by key.
// Limiter failures let the request through.
func RateLimit(limiter Limiter, key func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		identity := key(c)
		allowed, retryAfter, err := limiter.Allow(c.Request.Context(), identity)
		if err != nil {
			logrus.WithFields(logrus.Fields{"identity": identity, "error": err}).Warn("Rate limiter unavailable")
			c.Next()
			return
		}
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"success": false, "error": TooManyMessages})
			return
		}
		c.Next()
	}
}
