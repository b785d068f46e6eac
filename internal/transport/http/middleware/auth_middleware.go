package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/projectsync/projectsync/internal/domain/models"
	"github.com/projectsync/projectsync/internal/domain/service"
	"github.com/projectsync/projectsync/pkg/logger"
)

// ContextKey is a type for context keys
type ContextKey string

const (
	// UserContextKey is the key for storing user in context
	UserContextKey ContextKey = "user"

	// IsAuthenticatedKey is the key for storing authentication status
	IsAuthenticatedKey ContextKey = "is_authenticated"
)

// AuthMiddleware handles authentication for HTTP requests
type AuthMiddleware struct {
	authService service.AuthService
	log         *logger.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance
func NewAuthMiddleware(authService service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		log:         logger.Get().WithFields(logger.Component("auth-middleware")),
	}
}

// Authenticate attempts to authenticate the request but doesn't require it.
// Useful for endpoints that behave differently for anonymous callers.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := m.extractAndValidateUser(c)
		if user != nil {
			m.setUserContext(c, user)
		}
		c.Next()
	}
}

// RequireAuth requires authentication for the endpoint
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := m.extractAndValidateUser(c)
		if user == nil {
			m.log.Warn("Authentication required but not provided",
				logger.Path(c.Request.URL.Path),
				logger.Method(c.Request.Method),
				logger.ClientIP(c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "authentication required",
			})
			return
		}

		m.setUserContext(c, user)
		c.Next()
	}
}

// RequireAdmin requires the ROLE_ADMIN cargo
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := m.extractAndValidateUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "authentication required",
			})
			return
		}

		if !user.IsAdmin() {
			m.log.Warn("Non-admin user attempted to access admin endpoint",
				logger.UserID(user.ID.String()),
				logger.Username(user.Username),
				logger.Path(c.Request.URL.Path),
				logger.Method(c.Request.Method),
			)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "admin privileges required",
			})
			return
		}

		m.setUserContext(c, user)
		c.Next()
	}
}

// extractAndValidateUser extracts the bearer token and resolves it to a
// live user
func (m *AuthMiddleware) extractAndValidateUser(c *gin.Context) *models.User {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return nil
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	user, err := m.authService.AuthenticateToken(c.Request.Context(), token)
	if err != nil {
		m.log.Debug("Token authentication failed",
			logger.Path(c.Request.URL.Path),
			logger.Error(err),
		)
		return nil
	}
	return user
}

// setUserContext sets the user in the gin context
func (m *AuthMiddleware) setUserContext(c *gin.Context, user *models.User) {
	c.Set(string(UserContextKey), user)
	c.Set(string(IsAuthenticatedKey), true)

	// Also set in request context for downstream handlers
	ctx := context.WithValue(c.Request.Context(), UserContextKey, user)
	ctx = context.WithValue(ctx, IsAuthenticatedKey, true)
	c.Request = c.Request.WithContext(ctx)
}

// GetUserFromContext retrieves the authenticated user from the context
func GetUserFromContext(c *gin.Context) *models.User {
	if user, exists := c.Get(string(UserContextKey)); exists {
		if u, ok := user.(*models.User); ok {
			return u
		}
	}
	return nil
}

// IsAuthenticated checks if the request is authenticated
func IsAuthenticated(c *gin.Context) bool {
	if authenticated, exists := c.Get(string(IsAuthenticatedKey)); exists {
		if auth, ok := authenticated.(bool); ok {
			return auth
		}
	}
	return false
}
