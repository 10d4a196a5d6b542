package handlers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/transitpulse/transit-assistant-backend/internal/config"
	"github.com/transitpulse/transit-assistant-backend/internal/middleware"
	"github.com/transitpulse/transit-assistant-backend/internal/models"
	"github.com/transitpulse/transit-assistant-backend/internal/services"
	"github.com/transitpulse/transit-assistant-backend/pkg/jwt"
)

// RouterDeps holds everything the HTTP layer is built from
type RouterDeps struct {
	Config     *config.Config
	Logger     *logrus.Logger
	JWTService *jwt.Service

	// RateLimiter is optional; nil disables rate limiting
	RateLimiter *services.RateLimitService

	Auth      *AuthHandler
	Routes    *RouteHandler
	Delays    *DelayHandler
	Analytics *AnalyticsHandler
	Favorites *FavoriteHandler
	Trips     *TripHandler
	Health    *HealthHandler
}

// NewRouter registers every endpoint on a new gin engine
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	jwtService := deps.JWTService

	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		router.Use(middleware.RequestLogger(deps.Logger))
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: !allowsAnyOrigin(cfg.CORS.AllowedOrigins),
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", deps.Health.Health)

	requireAuth := middleware.AuthMiddleware(jwtService, deps.Logger)
	optionalAuth := middleware.OptionalAuth(jwtService)
	requireAdmin := middleware.RequireRole(models.RoleAdmin)
	limit := func(scope string) gin.HandlerFunc {
		if deps.RateLimiter == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimit(deps.RateLimiter, scope, deps.Logger)
	}

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", limit(services.RateScopeAuth), deps.Auth.Register)
			auth.POST("/login", limit(services.RateScopeAuth), deps.Auth.Login)
			auth.POST("/refresh", limit(services.RateScopeAuth), deps.Auth.Refresh)
			auth.GET("/me", requireAuth, deps.Auth.Me)
		}

		routes := api.Group("/routes")
		{
			routes.GET("", deps.Routes.ListRoutes)
			routes.GET("/search", deps.Routes.SearchRoutes)
			routes.GET("/nearby", deps.Routes.NearbyRoutes)
			routes.GET("/:id", deps.Routes.GetRoute)
			routes.GET("/:id/geometry", deps.Routes.GetRouteGeometry)

			routes.POST("", requireAuth, requireAdmin, deps.Routes.CreateRoute)
			routes.PUT("/:id", requireAuth, requireAdmin, deps.Routes.UpdateRoute)
			routes.DELETE("/:id", requireAuth, requireAdmin, deps.Routes.DeleteRoute)
		}

		delays := api.Group("/delays")
		{
			delays.POST("/report", optionalAuth, limit(services.RateScopeDelayReport), deps.Delays.ReportDelay)
			delays.GET("", deps.Delays.ListDelays)
			delays.GET("/:id", deps.Delays.GetDelay)
			delays.PUT("/:id/upvote", optionalAuth, deps.Delays.Upvote)
			delays.PUT("/:id/downvote", optionalAuth, deps.Delays.Downvote)
		}

		admin := api.Group("/admin")
		admin.Use(requireAuth, requireAdmin)
		{
			admin.PUT("/delays/:id/verify", deps.Delays.VerifyDelay)
			admin.PUT("/delays/:id/resolve", deps.Delays.ResolveDelay)
			admin.PUT("/delays/:id/reject", deps.Delays.RejectDelay)
			admin.POST("/delays/bulk-action", deps.Delays.BulkAction)
		}

		api.GET("/analytics", deps.Analytics.GetAnalytics)

		favorites := api.Group("/favorites")
		favorites.Use(requireAuth)
		{
			favorites.POST("", deps.Favorites.AddFavorite)
			favorites.GET("", deps.Favorites.ListFavorites)
			favorites.DELETE("/:id", deps.Favorites.RemoveFavorite)
		}

		trips := api.Group("/trips")
		trips.Use(requireAuth)
		{
			trips.POST("", deps.Trips.RecordTrip)
			trips.GET("", deps.Trips.ListTrips)
			trips.GET("/stats", deps.Trips.TripStats)
		}
	}

	return router
}

// allowsAnyOrigin reports whether origins contains the "*" wildcard.
// Browsers refuse credentialed responses with a wildcard origin.
func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
