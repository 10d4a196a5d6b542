package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/transitpulse/transit-assistant-backend/internal/middleware"
	"github.com/transitpulse/transit-assistant-backend/internal/models"
	"github.com/transitpulse/transit-assistant-backend/internal/services"
)

// TripHandler handles the authenticated user's trip history
type TripHandler struct {
	tripService *services.TripService
	logger      *logrus.Logger
}

// NewTripHandler creates a new TripHandler
func NewTripHandler(tripService *services.TripService, logger *logrus.Logger) *TripHandler {
	return &TripHandler{
		tripService: tripService,
		logger:      logger,
	}
}

// RecordTrip handles POST /api/trips
func (h *TripHandler) RecordTrip(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req models.RecordTripRequest
	if !bindJSON(c, &req) {
		return
	}

	trip, err := h.tripService.Record(c.Request.Context(), userCtx.UserID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"trip":    trip,
	})
}

// ListTrips handles GET /api/trips
func (h *TripHandler) ListTrips(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	trips, err := h.tripService.List(c.Request.Context(), userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(trips),
		"trips":   trips,
	})
}

// TripStats handles GET /api/trips/stats
func (h *TripHandler) TripStats(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	stats, err := h.tripService.Stats(c.Request.Context(), userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}
