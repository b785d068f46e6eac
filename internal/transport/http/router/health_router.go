package router

import (
	"github.com/projectsync/projectsync/internal/transport/http/handler"
	"github.com/projectsync/projectsync/internal/transport/http/middleware"
)

func (r *Router) healthRouter() {
	r.server.GET("/", handler.HealthHandler())
	r.server.GET("/health", handler.HealthHandler())
	r.server.GET("/health/ready", handler.HealthHandler())
	r.server.GET("/health/live", handler.HealthHandler())

	authMiddleware := middleware.NewAuthMiddleware(r.Deps.AuthService)
	r.server.GET("/main", authMiddleware.RequireAuth(), handler.WelcomeHandler())
}
