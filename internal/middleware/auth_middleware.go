package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/transitpulse/transit-assistant-backend/pkg/jwt"
)

// UserContextKey is the key used to store user information in Gin context
const UserContextKey = "user"

// UserContext represents the authenticated user's information
type UserContext struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Roles  []string  `json:"roles"`
}

// HasRole reports whether the user holds any of roles
func (u UserContext) HasRole(roles ...string) bool {
	for _, required := range roles {
		for _, role := range u.Roles {
			if role == required {
				return true
			}
		}
	}
	return false
}

func abortUnauthorized(c *gin.Context, message, code string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   message,
		"code":    code,
	})
}

// bearerToken extracts the token of a "Bearer <token>" header
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// AuthMiddleware creates a middleware that requires a valid access token
func AuthMiddleware(jwtService *jwt.Service, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.WithField("path", c.Request.URL.Path).Debug("Auth failed: missing authorization header")
			abortUnauthorized(c, "Authorization header is required", "MISSING_AUTH_HEADER")
			return
		}

		tokenString, ok := bearerToken(authHeader)
		if !ok {
			logger.WithField("path", c.Request.URL.Path).Debug("Auth failed: invalid authorization format")
			abortUnauthorized(c, "Invalid authorization header format. Expected: Bearer <token>", "INVALID_AUTH_FORMAT")
			return
		}

		claims, err := jwtService.ValidateAccessToken(tokenString)
		if err != nil {
			entry := logger.WithError(err).WithField("path", c.Request.URL.Path)
			if errors.Is(err, jwt.ErrExpiredToken) {
				entry.Debug("Auth failed: token expired")
				abortUnauthorized(c, "Access token has expired. Please refresh your token.", "TOKEN_EXPIRED")
			} else {
				entry.Info("Auth failed: invalid token")
				abortUnauthorized(c, "Invalid access token", "INVALID_TOKEN")
			}
			return
		}

		c.Set(UserContextKey, UserContext{
			UserID: claims.UserID,
			Email:  claims.Email,
			Roles:  claims.Roles,
		})

		c.Next()
	}
}

// OptionalAuth attaches the user context when a valid bearer token is present
// and lets the request through anonymously otherwise
func OptionalAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c.GetHeader("Authorization")); ok {
			if claims, err := jwtService.ValidateAccessToken(tokenString); err == nil {
				c.Set(UserContextKey, UserContext{
					UserID: claims.UserID,
					Email:  claims.Email,
					Roles:  claims.Roles,
				})
			}
		}
		c.Next()
	}
}

// RequireRole creates a middleware that checks if user has required role
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx, exists := GetUserContext(c)
		if !exists {
			abortUnauthorized(c, "User context not found. Auth middleware may not be applied.", "MISSING_USER_CONTEXT")
			return
		}

		if !userCtx.HasRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "You don't have permission to access this resource",
				"code":    "INSUFFICIENT_PERMISSIONS",
			})
			return
		}

		c.Next()
	}
}

// GetUserContext retrieves the user context from Gin context
func GetUserContext(c *gin.Context) (UserContext, bool) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return UserContext{}, false
	}

	userCtx, ok := value.(UserContext)
	if !ok {
		return UserContext{}, false
	}

	return userCtx, true
}

// MustGetUserContext retrieves the user context or panics (use only after AuthMiddleware)
func MustGetUserContext(c *gin.Context) UserContext {
	userCtx, exists := GetUserContext(c)
	if !exists {
		panic("user context not found - ensure AuthMiddleware is applied")
	}
	return userCtx
}

// UserID returns the authenticated user's id, or nil for anonymous requests
func UserID(c *gin.Context) *uuid.UUID {
	userCtx, exists := GetUserContext(c)
	if !exists {
		return nil
	}
	id := userCtx.UserID
	return &id
}
