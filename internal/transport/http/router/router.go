package router

import (
	"github.com/projectsync/projectsync/internal/injectable"
	"github.com/projectsync/projectsync/internal/server"
	"github.com/projectsync/projectsync/internal/transport/http/middleware"
)

type Router struct {
	server *server.Server
	Deps   *injectable.Dependencies
}

// NewRouter creates a new Router instance.
func NewRouter(s *server.Server) *Router {
	deps := injectable.LoadDependencies(s.Config, s.DB)

	return &Router{
		server: s,
		Deps:   &deps,
	}
}

// NewRouterWithDeps creates a Router around pre-built dependencies.
// Used by tests to inject in-memory backends.
func NewRouterWithDeps(s *server.Server, deps *injectable.Dependencies) *Router {
	return &Router{
		server: s,
		Deps:   deps,
	}
}

// RegisterRoutes sets up the routes and middleware for the server.
func (r *Router) RegisterRoutes() {
	r.server.Use(middleware.RecoveryMiddleware())
	r.server.Use(middleware.LoggerMiddleware())
	r.server.Use(middleware.CORSMiddleware(r.server.Config.CORS.AllowedOrigins))

	r.healthRouter()
	r.authRouter()
	r.repoRouter()
	r.userRouter()
	r.clientRouter()
}
