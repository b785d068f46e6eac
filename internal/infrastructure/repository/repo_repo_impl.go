package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/google/uuid"
	"github.com/projectsync/projectsync/internal/domain/models"
	"github.com/projectsync/projectsync/internal/domain/repository"
	apperror "github.com/projectsync/projectsync/pkg/errors"
)

// RepoRepoImpl implements the RepoRepository interface using GORM
type RepoRepoImpl struct {
	db *gorm.DB
}

// NewRepoRepository creates a new instance of RepoRepoImpl
func NewRepoRepository(db *gorm.DB) repository.RepoRepository {
	return &RepoRepoImpl{db: db}
}

// Create creates a new repository record in the database
func (r *RepoRepoImpl) Create(ctx context.Context, repo *models.Repo) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(repo).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Conflict("repository already exists", apperror.ErrInvalidInput)
		}
		return apperror.DatabaseError("create", err)
	}
	return nil
}

// FindByID retrieves a repository by its ID with owner, client and
// collaborators loaded
func (r *RepoRepoImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Repo, error) {
	var repo models.Repo
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Client").
		Preload("Colaboradores").
		First(&repo, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("repository", apperror.ErrNotFound)
		}
		return nil, apperror.DatabaseError("find", err)
	}
	return &repo, nil
}

// FindByOwner finds all repositories owned by a user
func (r *RepoRepoImpl) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Repo, error) {
	var repos []*models.Repo
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Client").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&repos).Error
	if err != nil {
		return nil, apperror.DatabaseError("find", err)
	}
	return repos, nil
}

// FindByCollaborator finds all repositories where the user appears in
// the collaborator set
func (r *RepoRepoImpl) FindByCollaborator(ctx context.Context, userID uuid.UUID) ([]*models.Repo, error) {
	var repos []*models.Repo
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Client").
		Joins("JOIN repo_colaboradores ON repo_colaboradores.repo_id = repos.id").
		Where("repo_colaboradores.user_id = ?", userID).
		Order("repos.created_at DESC").
		Find(&repos).Error
	if err != nil {
		return nil, apperror.DatabaseError("find", err)
	}
	return repos, nil
}

// ListAll lists every repository record
func (r *RepoRepoImpl) ListAll(ctx context.Context) ([]*models.Repo, error) {
	var repos []*models.Repo
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Client").
		Order("created_at DESC").
		Find(&repos).Error
	if err != nil {
		return nil, apperror.DatabaseError("list", err)
	}
	return repos, nil
}

// Update saves a repository record. Associations are written through
// the dedicated collaborator methods, never here.
func (r *RepoRepoImpl) Update(ctx context.Context, repo *models.Repo) error {
	result := r.db.WithContext(ctx).Omit(clause.Associations).Save(repo)
	if result.Error != nil {
		return apperror.DatabaseError("update", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("repository", apperror.ErrNotFound)
	}
	return nil
}

// Delete removes a repository record; the join rows cascade
func (r *RepoRepoImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Select(clause.Associations).Delete(&models.Repo{ID: id})
	if result.Error != nil {
		return apperror.DatabaseError("delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("repository", apperror.ErrNotFound)
	}
	return nil
}

// AddCollaborator appends a user to the repository's collaborator set
func (r *RepoRepoImpl) AddCollaborator(ctx context.Context, repo *models.Repo, user *models.User) error {
	err := r.db.WithContext(ctx).Model(repo).Association("Colaboradores").Append(user)
	if err != nil {
		return apperror.DatabaseError("add collaborator", err)
	}
	return nil
}

// RemoveCollaborator removes a user from the repository's collaborator set
func (r *RepoRepoImpl) RemoveCollaborator(ctx context.Context, repo *models.Repo, user *models.User) error {
	err := r.db.WithContext(ctx).Model(repo).Association("Colaboradores").Delete(user)
	if err != nil {
		return apperror.DatabaseError("remove collaborator", err)
	}
	return nil
}

// CountByOwner returns the number of repositories a user owns
func (r *RepoRepoImpl) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Repo{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error
	if err != nil {
		return 0, apperror.DatabaseError("count", err)
	}
	return count, nil
}

// CountByClient returns the number of repositories referencing a client
func (r *RepoRepoImpl) CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Repo{}).
		Where("client_id = ?", clientID).
		Count(&count).Error
	if err != nil {
		return 0, apperror.DatabaseError("count", err)
	}
	return count, nil
}

// ListFileNames returns every stored file name referenced by a
// repository record
func (r *RepoRepoImpl) ListFileNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&models.Repo{}).
		Where("file_name IS NOT NULL AND file_name <> ''").
		Pluck("file_name", &names).Error
	if err != nil {
		return nil, apperror.DatabaseError("list file names", err)
	}
	return names, nil
}
