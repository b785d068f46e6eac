package injectable

import (
	"github.com/projectsync/projectsync/internal/application/service"
	"github.com/projectsync/projectsync/internal/config"
	domainservice "github.com/projectsync/projectsync/internal/domain/service"
	"github.com/projectsync/projectsync/internal/infrastructure/database"
	"github.com/projectsync/projectsync/internal/infrastructure/repository"
	"github.com/projectsync/projectsync/internal/infrastructure/storage"
)

// Dependencies holds all the dependencies required by the router
type Dependencies struct {
	// Services
	AuthService    domainservice.AuthService
	RepoService    *service.RepoService
	UserService    *service.UserService
	ClientService  *service.ClientService
	SweeperService *service.SweeperService
	Storage        domainservice.StorageService
}

func LoadDependencies(cfg *config.Config, db *database.Database) Dependencies {
	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB())
	repoRepo := repository.NewRepoRepository(db.DB())
	clientRepo := repository.NewClientRepository(db.DB())

	// Initialize storage
	storageFactory := storage.NewFactory(&cfg.Storage)
	storageService, err := storageFactory.Create()
	if err != nil {
		panic("Failed to initialize storage service: " + err.Error())
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, &cfg.Auth)
	repoService := service.NewRepoService(
		repoRepo,
		userRepo,
		clientRepo,
		storageService,
	)
	userService := service.NewUserService(userRepo, repoRepo, authService)
	clientService := service.NewClientService(clientRepo, repoRepo)
	sweeperService := service.NewSweeperService(repoRepo, storageService, cfg.Sweeper.Schedule)

	return Dependencies{
		AuthService:    authService,
		RepoService:    repoService,
		UserService:    userService,
		ClientService:  clientService,
		SweeperService: sweeperService,
		Storage:        storageService,
	}
}
