package router

import (
	"github.com/projectsync/projectsync/internal/transport/http/handler"
	"github.com/projectsync/projectsync/internal/transport/http/middleware"
)

func (r *Router) authRouter() {
	api := r.server.Group("/api")

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(r.Deps.AuthService)

	// Initialize handlers
	h := handler.NewAuthHandler(r.Deps.AuthService, r.Deps.UserService)

	// Credential exchange and self-service registration
	api.POST("/login", h.Login)
	api.POST("/register", h.Register)

	// Current authenticated principal
	api.GET("/me", authMiddleware.RequireAuth(), h.Me)
}
