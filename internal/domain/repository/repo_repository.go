package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/projectsync/projectsync/internal/domain/models"
)

// RepoRepository defines the interface for repository-record data access
type RepoRepository interface {
	// Create creates a new repository record
	Create(ctx context.Context, repo *models.Repo) error

	// FindByID finds a repository by its ID with owner, client and
	// collaborators loaded
	FindByID(ctx context.Context, id uuid.UUID) (*models.Repo, error)

	// FindByOwner finds all repositories owned by a user
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Repo, error)

	// FindByCollaborator finds all repositories where the user appears in
	// the collaborator set
	FindByCollaborator(ctx context.Context, userID uuid.UUID) ([]*models.Repo, error)

	// ListAll lists every repository record
	ListAll(ctx context.Context) ([]*models.Repo, error)

	// Update persists the changed fields of a repository
	Update(ctx context.Context, repo *models.Repo) error

	// Delete deletes a repository by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// AddCollaborator appends a user to the repository's collaborator set
	AddCollaborator(ctx context.Context, repo *models.Repo, user *models.User) error

	// RemoveCollaborator removes a user from the repository's collaborator set
	RemoveCollaborator(ctx context.Context, repo *models.Repo, user *models.User) error

	// CountByOwner returns the count of repositories owned by a user
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// CountByClient returns the count of repositories referencing a client
	CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error)

	// ListFileNames returns every stored artifact name referenced by a repository
	ListFileNames(ctx context.Context) ([]string, error)
}
