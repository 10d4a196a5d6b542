package middleware

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/transitpulse/transit-assistant-backend/internal/services"
	"github.com/transitpulse/transit-assistant-backend/internal/utils"
)

// RateLimit rejects requests beyond the scope's limit with 429. Clients are
// identified by user id when authenticated, otherwise by client IP, so it
// should run after AuthMiddleware or OptionalAuth.
func RateLimit(limiter *services.RateLimitService, scope string, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identifier := utils.ClientIP(c)
		if userID := UserID(c); userID != nil {
			identifier = userID.String()
		}

		err := limiter.Allow(scope, identifier)
		if err == nil {
			c.Next()
			return
		}

		var rateErr *services.RateLimitError
		if !errors.As(err, &rateErr) {
			c.Next()
			return
		}

		logger.WithFields(logrus.Fields{
			"scope":       scope,
			"client":      identifier,
			"path":        c.Request.URL.Path,
			"retry_after": rateErr.RetryAfter,
		}).Warn("Rate limit exceeded")

		seconds := int(math.Ceil(time.Until(rateErr.RetryAfter).Seconds()))
		if seconds < 1 {
			seconds = 1
		}
		c.Header("Retry-After", strconv.Itoa(seconds))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"success":    false,
			"error":      rateErr.Message,
			"code":       "RATE_LIMIT_EXCEEDED",
			"retryAfter": rateErr.RetryAfter,
		})
	}
}
