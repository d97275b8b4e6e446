package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"patient-portal-server/internal/config"
	"patient-portal-server/internal/models"
	"patient-portal-server/internal/utils"
)

const (
	userIDKey  = "userID"
	loginIDKey = "loginID"
)

// AuthMiddleware creates a middleware for JWT authentication from the
// Authorization header.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return authenticate(cfg, false)
}

// StreamAuthMiddleware also accepts the access token as the access_token
// query parameter. Browsers cannot set headers on EventSource or WebSocket
// requests, so only the live stream routes use it.
func StreamAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return authenticate(cfg, true)
}

func authenticate(cfg *config.Config, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c, allowQuery)
		if !ok {
			utils.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString, cfg.JWTSecret)
		if err != nil {
			utils.Unauthorized(c, "Invalid token: "+err.Error())
			c.Abort()
			return
		}

		// Set user information in context for downstream handlers
		c.Set(userIDKey, claims.UserID)
		c.Set(loginIDKey, claims.LoginID)

		c.Next()
	}
}

func bearerToken(c *gin.Context, allowQuery bool) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if !allowQuery {
			return "", false
		}
		token := c.Query("access_token")
		return token, token != ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// GetUserIDFromContext returns the authenticated user id.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get(userIDKey)
	if !exists {
		return "", false
	}
	idStr, ok := userID.(string)
	return idStr, ok && idStr != ""
}

// GetIdentity returns the authenticated identity.
func GetIdentity(c *gin.Context) (models.Identity, bool) {
	userID, ok := GetUserIDFromContext(c)
	if !ok {
		return models.Identity{}, false
	}
	return models.Identity{UserID: userID, LoginID: c.GetString(loginIDKey)}, true
}
