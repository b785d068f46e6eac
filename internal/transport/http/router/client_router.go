package router

import (
	"github.com/projectsync/projectsync/internal/transport/http/handler"
	"github.com/projectsync/projectsync/internal/transport/http/middleware"
)

func (r *Router) clientRouter() {
	api := r.server.Group("/api")

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(r.Deps.AuthService)

	// Initialize handlers
	h := handler.NewClientHandler(r.Deps.ClientService)

	clients := api.Group("/clients")
	clients.Use(authMiddleware.RequireAuth())
	{
		clients.GET("", h.ListClients)
		clients.GET("/:id", h.GetClient)

		// Mutations require admin privileges.
		clients.POST("", authMiddleware.RequireAdmin(), h.CreateClient)
		clients.PUT("/:id", authMiddleware.RequireAdmin(), h.UpdateClient)
		clients.DELETE("/:id", authMiddleware.RequireAdmin(), h.DeleteClient)
	}
}
