package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dispatchly/utils"
)

// eventIDHeader carries the telephony provider's delivery id. Providers retry
// webhooks aggressively, so each id is processed at most once.
const eventIDHeader = "X-Event-Id"

const dedupTTL = 10 * time.Minute

// ReplayProtectionMiddleware drops duplicate webhook deliveries using a
// SET NX marker in the dedup Redis DB. Requests without an event id pass
// through untouched.
func ReplayProtectionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID := c.GetHeader(eventIDHeader)
		if eventID == "" {
			c.Next()
			return
		}

		client := utils.GetDedupCacheClient()
		ok, err := client.SetNX(c.Request.Context(), "webhook_event:"+eventID, 1, dedupTTL).Result()
		if err != nil {
			// Dedup is best-effort: a Redis hiccup must not drop live calls.
			zap.L().Warn("replay protection unavailable, allowing request",
				zap.String("eventID", eventID), zap.Error(err))
			c.Next()
			return
		}
		if !ok {
			utils.WebhookReplays.Inc()
			zap.L().Info("duplicate webhook delivery dropped", zap.String("eventID", eventID))
			c.AbortWithStatusJSON(http.StatusOK, gin.H{"status": "duplicate"})
			return
		}
		c.Next()
	}
}
