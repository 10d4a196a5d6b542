package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/transitpulse/transit-assistant-backend/internal/services"
)

// AnalyticsHandler serves the dashboard statistics
type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
	logger           *logrus.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsService *services.AnalyticsService, logger *logrus.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		logger:           logger,
	}
}

// GetAnalytics handles GET /api/analytics?days=
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	var days *int
	if c.Query("days") != "" {
		n, err := queryInt(c, "days", 0)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		days = &n
	}

	analytics, err := h.analyticsService.Get(c.Request.Context(), days)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"analytics": analytics,
	})
}
