package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/transitpulse/transit-assistant-backend/internal/middleware"
	"github.com/transitpulse/transit-assistant-backend/internal/models"
	"github.com/transitpulse/transit-assistant-backend/internal/services"
)

// FavoriteHandler handles the authenticated user's favorite routes
type FavoriteHandler struct {
	favoriteService *services.FavoriteService
	logger          *logrus.Logger
}

// NewFavoriteHandler creates a new FavoriteHandler
func NewFavoriteHandler(favoriteService *services.FavoriteService, logger *logrus.Logger) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteService: favoriteService,
		logger:          logger,
	}
}

// AddFavorite handles POST /api/favorites
func (h *FavoriteHandler) AddFavorite(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req models.AddFavoriteRequest
	if !bindJSON(c, &req) {
		return
	}

	favorite, err := h.favoriteService.Add(c.Request.Context(), userCtx.UserID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"message":  "Route added to favorites",
		"favorite": favorite,
	})
}

// ListFavorites handles GET /api/favorites
func (h *FavoriteHandler) ListFavorites(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	favorites, err := h.favoriteService.List(c.Request.Context(), userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"count":     len(favorites),
		"favorites": favorites,
	})
}

// RemoveFavorite handles DELETE /api/favorites/:id
func (h *FavoriteHandler) RemoveFavorite(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	if err := h.favoriteService.Remove(c.Request.Context(), userCtx.UserID, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Route removed from favorites",
	})
}
