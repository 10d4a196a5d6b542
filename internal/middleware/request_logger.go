package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/transitpulse/transit-assistant-backend/internal/utils"
)

// RequestLogger logs one structured line per request once it completes
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		device := utils.ParseUserAgent(c.Request.UserAgent())
		status := c.Writer.Status()

		fields := logrus.Fields{
			"method":      c.Request.Method,
			"path":        path,
			"status":      status,
			"latency_ms":  time.Since(start).Milliseconds(),
			"client_ip":   utils.ClientIP(c),
			"device_type": device.DeviceType,
			"platform":    device.Platform,
			"browser":     device.Browser,
		}
		if userCtx, ok := GetUserContext(c); ok {
			fields["user_id"] = userCtx.UserID
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		entry := logger.WithFields(fields)
		switch {
		case status >= 500:
			entry.Error("Request failed")
		case status >= 400:
			entry.Warn("Request rejected")
		default:
			entry.Info("Request handled")
		}
	}
}
