package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/projectsync/projectsync/internal/application/dto"
	"github.com/projectsync/projectsync/internal/application/service"
	domainservice "github.com/projectsync/projectsync/internal/domain/service"
	"github.com/projectsync/projectsync/internal/transport/http/middleware"
	"github.com/projectsync/projectsync/pkg/logger"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService domainservice.AuthService
	userService *service.UserService
	log         *logger.Logger
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(
	authService domainservice.AuthService,
	userService *service.UserService,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		log:         logger.Get().WithFields(logger.Component("auth-handler")),
	}
}

// Login handles POST /api/login. Unknown email and wrong password
// return the same response.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	user, err := h.authService.AuthenticateCredentials(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.log.Debug("Login failed",
			logger.ClientIP(c.ClientIP()),
		)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "Invalid credentials",
		})
		return
	}

	token, err := h.authService.IssueToken(user)
	if err != nil {
		h.log.Error("Failed to issue session token",
			logger.UserID(user.ID.String()),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to issue session token",
		})
		return
	}

	h.log.Info("User logged in",
		logger.UserID(user.ID.String()),
		logger.Username(user.Username),
	)

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token: token,
		User:  dto.UserInfoFromModel(user),
	})
}

// Register handles POST /api/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	user, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.RegisterResponse{
		User:    dto.UserInfoFromModel(user),
		Message: "User registered successfully",
	})
}

// Me handles GET /api/me, returning the authenticated user's profile
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.GetUserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "Authentication required",
		})
		return
	}

	c.JSON(http.StatusOK, dto.UserInfoFromModel(user))
}
