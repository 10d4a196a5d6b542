package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/transitpulse/transit-assistant-backend/internal/models"
	"github.com/transitpulse/transit-assistant-backend/internal/services"
)

// RouteHandler handles route browsing and administration
type RouteHandler struct {
	routeService *services.RouteService
	logger       *logrus.Logger
}

// NewRouteHandler creates a new RouteHandler
func NewRouteHandler(routeService *services.RouteService, logger *logrus.Logger) *RouteHandler {
	return &RouteHandler{
		routeService: routeService,
		logger:       logger,
	}
}

// ListRoutes handles GET /api/routes
func (h *RouteHandler) ListRoutes(c *gin.Context) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	limit, err := queryInt(c, "limit", services.DefaultRouteLimit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	transportType := c.Query("transportType")
	if transportType == "" {
		transportType = c.Query("type")
	}

	list, err := h.routeService.List(c.Request.Context(), services.RouteListQuery{
		TransportType: transportType,
		ActiveOnly:    c.DefaultQuery("activeOnly", "true") != "false",
		Page:          page,
		Limit:         limit,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"count":       len(list.Routes),
		"total":       list.Total,
		"totalPages":  list.TotalPages,
		"currentPage": list.CurrentPage,
		"routes":      list.Routes,
	})
}

// SearchRoutes handles GET /api/routes/search?from=&to=&type=
func (h *RouteHandler) SearchRoutes(c *gin.Context) {
	term := strings.TrimSpace(c.Query("from"))
	if term == "" {
		term = strings.TrimSpace(c.Query("to"))
	}

	routes, err := h.routeService.Search(c.Request.Context(), term, c.Query("type"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(routes),
		"routes":  routes,
	})
}

// NearbyRoutes handles GET /api/routes/nearby?lat=&lng=&radius=
func (h *RouteHandler) NearbyRoutes(c *gin.Context) {
	var q services.NearbyQuery
	var err error
	if q.Lat, err = queryFloat(c, "lat"); err != nil {
		respondError(c, h.logger, err)
		return
	}
	if q.Lng, err = queryFloat(c, "lng"); err != nil {
		respondError(c, h.logger, err)
		return
	}
	if q.RadiusKm, err = queryFloat(c, "radius"); err != nil {
		respondError(c, h.logger, err)
		return
	}

	routes, err := h.routeService.Nearby(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	radius := services.DefaultNearbyRadiusKm
	if q.RadiusKm != nil {
		radius = *q.RadiusKm
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"count":        len(routes),
		"userLocation": models.Coordinates{Lat: *q.Lat, Lng: *q.Lng},
		"radius":       radius,
		"routes":       routes,
	})
}

// GetRoute handles GET /api/routes/:id
func (h *RouteHandler) GetRoute(c *gin.Context) {
	route, err := h.routeService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"route":   route,
	})
}

// GetRouteGeometry handles GET /api/routes/:id/geometry
func (h *RouteHandler) GetRouteGeometry(c *gin.Context) {
	feature, err := h.routeService.Geometry(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	body, err := feature.MarshalJSON()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Data(http.StatusOK, "application/geo+json", body)
}

// CreateRoute handles POST /api/routes
func (h *RouteHandler) CreateRoute(c *gin.Context) {
	var req models.CreateRouteRequest
	if !bindJSON(c, &req) {
		return
	}

	route, err := h.routeService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Route created successfully",
		"route":   route,
	})
}

// UpdateRoute handles PUT /api/routes/:id
func (h *RouteHandler) UpdateRoute(c *gin.Context) {
	var req models.UpdateRouteRequest
	if !bindJSON(c, &req) {
		return
	}

	route, err := h.routeService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Route updated successfully",
		"route":   route,
	})
}

// DeleteRoute handles DELETE /api/routes/:id
func (h *RouteHandler) DeleteRoute(c *gin.Context) {
	if err := h.routeService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Route deactivated successfully",
	})
}
