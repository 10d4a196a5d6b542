package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 3 * time.Second

// HealthHandler reports process and store health
type HealthHandler struct {
	version string
	storage string
	ping    func(ctx context.Context) error
	jobs    func() map[string]interface{}
}

// NewHealthHandler creates a new HealthHandler. ping and jobs may be nil.
func NewHealthHandler(version, storage string, ping func(ctx context.Context) error, jobs func() map[string]interface{}) *HealthHandler {
	return &HealthHandler{
		version: version,
		storage: storage,
		ping:    ping,
		jobs:    jobs,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	body := gin.H{
		"success":   true,
		"status":    "healthy",
		"storage":   h.storage,
		"database":  "healthy",
		"version":   h.version,
		"timestamp": time.Now().Unix(),
	}
	if h.jobs != nil {
		body["cron"] = h.jobs()
	}

	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		if err := h.ping(ctx); err != nil {
			body["success"] = false
			body["status"] = "unhealthy"
			body["database"] = "unhealthy"
			body["error"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
	}

	c.JSON(http.StatusOK, body)
}
