package router

import (
	"github.com/projectsync/projectsync/internal/transport/http/handler"
	"github.com/projectsync/projectsync/internal/transport/http/middleware"
)

func (r *Router) repoRouter() {
	api := r.server.Group("/api")

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(r.Deps.AuthService)

	// Initialize handler
	h := handler.NewRepoHandler(r.Deps.RepoService)

	// Route names follow the public API contract rather than REST conventions.
	api.POST("/newrepo", authMiddleware.RequireAuth(), h.CreateRepo)
	api.PUT("/updaterepo/:id", authMiddleware.RequireAuth(), h.UpdateRepo)
	api.PATCH("/updaterepo/:id", authMiddleware.RequireAuth(), h.UpdateRepo)
	api.DELETE("/deleterepo/:id", authMiddleware.RequireAuth(), h.DeleteRepo)

	repo := api.Group("/repo")
	{
		repo.GET("/:id", authMiddleware.RequireAuth(), h.GetRepo)

		// Download is served without a token.
		repo.GET("/:id/download", h.DownloadFile)
	}

	repos := api.Group("/repos")
	{
		repos.GET("", authMiddleware.RequireAuth(), h.ListRepos)

		// Open listing and lookup endpoints, served without a token.
		repos.GET("/all", h.ListAllRepos)
		repos.GET("/find/:id", h.FindRepo)

		repos.GET("/colaboraciones", authMiddleware.RequireAuth(), h.ListCollaborations)

		repos.POST("/:id/colaboradores", authMiddleware.RequireAuth(), h.AddCollaborator)
		repos.GET("/:id/colaboradores", authMiddleware.RequireAuth(), h.ListCollaborators)
		repos.DELETE("/:id/colaboradores/:userId", authMiddleware.RequireAuth(), h.RemoveCollaborator)
	}
}
