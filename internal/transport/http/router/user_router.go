package router

import (
	"github.com/projectsync/projectsync/internal/transport/http/handler"
	"github.com/projectsync/projectsync/internal/transport/http/middleware"
)

func (r *Router) userRouter() {
	// Register base route
	api := r.server.Group("/api")
	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(r.Deps.AuthService)
	// Initialize handlers
	userHandler := handler.NewUserHandler(r.Deps.UserService)

	users := api.Group("/users")
	users.Use(authMiddleware.RequireAuth())
	{
		users.GET("", userHandler.ListUsers)
		users.GET("/:id", userHandler.GetUser)
	}

	// Account administration routes, restricted to admins.
	admin := api.Group("")
	admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())
	{
		admin.POST("/createuser", userHandler.CreateUser)
		admin.PUT("/updateuser/:id", userHandler.UpdateUser)
		admin.DELETE("/deleteuser/:id", userHandler.DeleteUser)
	}
}
