package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/projectsync/projectsync/internal/application/dto"
	"github.com/projectsync/projectsync/internal/domain/access"
	"github.com/projectsync/projectsync/internal/domain/models"
	"github.com/projectsync/projectsync/internal/domain/repository"
	"github.com/projectsync/projectsync/internal/domain/service"
	apperrors "github.com/projectsync/projectsync/pkg/errors"
	"github.com/projectsync/projectsync/pkg/logger"
)

// Upload is an artifact received with a create or update request
type Upload struct {
	// FileName is the original client-side name
	FileName string
	Content  io.Reader
}

// RepoService handles repository-record management operations
type RepoService struct {
	repoRepo   repository.RepoRepository
	userRepo   repository.UserRepository
	clientRepo repository.ClientRepository
	storage    service.StorageService
	log        *logger.Logger
}

// NewRepoService creates a new RepoService instance
func NewRepoService(
	repoRepo repository.RepoRepository,
	userRepo repository.UserRepository,
	clientRepo repository.ClientRepository,
	storage service.StorageService,
) *RepoService {
	return &RepoService{
		repoRepo:   repoRepo,
		userRepo:   userRepo,
		clientRepo: clientRepo,
		storage:    storage,
		log:        logger.Get(),
	}
}

// Create creates a new repository record. When req.Owner resolves to an
// existing user that user becomes the owner (administrative override);
// otherwise ownership falls to actingUser. The artifact, if any, is stored
// before the record is persisted so a storage failure never leaves a
// dangling file reference.
func (s *RepoService) Create(ctx context.Context, actingUser *models.User, req *dto.CreateRepoRequest, upload *Upload) (*models.Repo, error) {
	if req.Projectname == "" {
		return nil, apperrors.ValidationError("projectname", "projectname is required")
	}
	if req.FechaInicio == nil {
		return nil, apperrors.ValidationError("fechaInicio", "fechaInicio is required")
	}

	owner := actingUser
	if req.Owner != nil {
		explicit, err := s.userRepo.FindByID(ctx, *req.Owner)
		switch {
		case err == nil:
			owner = explicit
		case apperrors.IsNotFound(err):
			// unresolved explicit owner falls back to the caller
		default:
			return nil, fmt.Errorf("failed to resolve owner: %w", err)
		}
	}
	if owner == nil {
		return nil, apperrors.Unauthorized("authentication required to create a repository", apperrors.ErrUnauthorized)
	}

	repo := &models.Repo{
		Projectname: req.Projectname,
		Description: req.Description,
		FechaInicio: req.FechaInicio.Time,
		OwnerID:     owner.ID,
	}
	if req.FechaFin != nil {
		fin := req.FechaFin.Time
		repo.FechaFin = &fin
	}

	if req.Client != nil {
		client, err := s.resolveClient(ctx, *req.Client)
		if err != nil {
			return nil, err
		}
		repo.ClientID = &client.ID
		repo.Client = client
	}

	// Store the artifact first; only the stored name is persisted
	var storedName string
	if upload != nil {
		name, err := s.storage.Store(ctx, upload.FileName, upload.Content)
		if err != nil {
			return nil, apperrors.StorageError("write", err)
		}
		storedName = name
		repo.FileName = &storedName
	}

	if err := s.repoRepo.Create(ctx, repo); err != nil {
		if storedName != "" {
			if cleanupErr := s.storage.Delete(ctx, storedName); cleanupErr != nil {
				s.log.Warn("failed to clean up stored artifact after create failure",
					logger.FileName(storedName),
					logger.Error(cleanupErr),
				)
			}
		}
		return nil, fmt.Errorf("failed to create repository: %w", err)
	}

	repo.Owner = *owner

	s.log.Info("repository created",
		logger.RepoID(repo.ID.String()),
		logger.Projectname(repo.Projectname),
		logger.UserID(owner.ID.String()),
	)

	return repo, nil
}

// Get retrieves a repository by id, requiring read access
func (s *RepoService) Get(ctx context.Context, id uuid.UUID, actingUser *models.User) (*models.Repo, error) {
	repo, err := s.repoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.Allowed(actingUser, repo, access.CapabilityRead) {
		return nil, apperrors.Forbidden("you do not have access to this repository", apperrors.ErrForbidden)
	}
	return repo, nil
}

// Find retrieves a repository by id without any access check
func (s *RepoService) Find(ctx context.Context, id uuid.UUID) (*models.Repo, error) {
	return s.repoRepo.FindByID(ctx, id)
}

// ListOwned lists the repositories owned by the acting user
func (s *RepoService) ListOwned(ctx context.Context, actingUser *models.User) ([]*models.Repo, error) {
	return s.repoRepo.FindByOwner(ctx, actingUser.ID)
}

// ListAll lists every repository record, unscoped
func (s *RepoService) ListAll(ctx context.Context) ([]*models.Repo, error) {
	return s.repoRepo.ListAll(ctx)
}

// ListCollaborations lists the repositories where the acting user appears
// in the collaborator set
func (s *RepoService) ListCollaborations(ctx context.Context, actingUser *models.User) ([]*models.Repo, error) {
	return s.repoRepo.FindByCollaborator(ctx, actingUser.ID)
}

// Update applies a partial update to a repository, requiring write access.
// Fields absent from the request stay untouched; explicit nulls clear the
// nullable attributes. A new upload replaces the stored file reference;
// the previous artifact is left in storage for the sweeper.
func (s *RepoService) Update(ctx context.Context, id uuid.UUID, actingUser *models.User, req *dto.UpdateRepoRequest, upload *Upload) (*models.Repo, error) {
	repo, err := s.repoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.Allowed(actingUser, repo, access.CapabilityWrite) {
		return nil, apperrors.Forbidden("only the owner can modify this repository", apperrors.ErrForbidden)
	}

	if req.Projectname.Set {
		if !req.Projectname.Valid || req.Projectname.Value == "" {
			return nil, apperrors.ValidationError("projectname", "projectname cannot be empty")
		}
		repo.Projectname = req.Projectname.Value
	}

	if req.Description.Set {
		if req.Description.Valid {
			desc := req.Description.Value
			repo.Description = &desc
		} else {
			repo.Description = nil
		}
	}

	if req.FechaInicio.Set {
		if !req.FechaInicio.Valid {
			return nil, apperrors.ValidationError("fechaInicio", "fechaInicio cannot be null")
		}
		repo.FechaInicio = req.FechaInicio.Value.Time
	}

	if req.FechaFin.Set {
		if req.FechaFin.Valid {
			fin := req.FechaFin.Value.Time
			repo.FechaFin = &fin
		} else {
			repo.FechaFin = nil
		}
	}

	if req.Client.Set {
		if req.Client.Valid {
			client, err := s.resolveClient(ctx, req.Client.Value)
			if err != nil {
				return nil, err
			}
			repo.ClientID = &client.ID
			repo.Client = client
		} else {
			repo.ClientID = nil
			repo.Client = nil
		}
	}

	if upload != nil {
		storedName, err := s.storage.Store(ctx, upload.FileName, upload.Content)
		if err != nil {
			return nil, apperrors.StorageError("write", err)
		}
		repo.FileName = &storedName
	}

	if err := s.repoRepo.Update(ctx, repo); err != nil {
		return nil, fmt.Errorf("failed to update repository: %w", err)
	}

	return repo, nil
}

// Delete removes a repository record, requiring write access. The stored
// artifact is left behind; the sweeper reaps unreferenced files.
func (s *RepoService) Delete(ctx context.Context, id uuid.UUID, actingUser *models.User) error {
	repo, err := s.repoRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !access.Allowed(actingUser, repo, access.CapabilityWrite) {
		return apperrors.Forbidden("only the owner can delete this repository", apperrors.ErrForbidden)
	}

	if err := s.repoRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete repository: %w", err)
	}

	s.log.Info("repository deleted",
		logger.RepoID(id.String()),
		logger.UserID(actingUser.ID.String()),
	)

	return nil
}

// AddCollaborator adds a user to the repository's collaborator set.
// Requires the manage-collaborators capability; the target must exist,
// must not be the owner and must not already be a collaborator. All
// checks run before any mutation.
func (s *RepoService) AddCollaborator(ctx context.Context, repoID, userID uuid.UUID, actingUser *models.User) (*models.User, error) {
	repo, err := s.repoRepo.FindByID(ctx, repoID)
	if err != nil {
		return nil, err
	}
	if !access.Allowed(actingUser, repo, access.CapabilityManageCollaborators) {
		return nil, apperrors.Forbidden("only the owner can manage collaborators", apperrors.ErrForbidden)
	}

	target, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.ValidationError("userId", "user does not exist")
		}
		return nil, fmt.Errorf("failed to resolve collaborator: %w", err)
	}
	if target.ID == repo.OwnerID {
		return nil, apperrors.ValidationError("userId", "the owner cannot be added as a collaborator")
	}
	if repo.HasCollaborator(target.ID) {
		return nil, apperrors.ValidationError("userId", "user is already a collaborator")
	}

	if err := s.repoRepo.AddCollaborator(ctx, repo, target); err != nil {
		return nil, fmt.Errorf("failed to add collaborator: %w", err)
	}

	s.log.Info("collaborator added",
		logger.RepoID(repo.ID.String()),
		logger.Collaborator(target.ID.String()),
	)

	return target, nil
}

// RemoveCollaborator removes a user from the repository's collaborator set.
// The target must exist and currently be a collaborator.
func (s *RepoService) RemoveCollaborator(ctx context.Context, repoID, userID uuid.UUID, actingUser *models.User) error {
	repo, err := s.repoRepo.FindByID(ctx, repoID)
	if err != nil {
		return err
	}
	if !access.Allowed(actingUser, repo, access.CapabilityManageCollaborators) {
		return apperrors.Forbidden("only the owner can manage collaborators", apperrors.ErrForbidden)
	}

	target, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.ValidationError("userId", "user does not exist")
		}
		return fmt.Errorf("failed to resolve collaborator: %w", err)
	}
	if !repo.HasCollaborator(target.ID) {
		return apperrors.ValidationError("userId", "user is not a collaborator")
	}

	if err := s.repoRepo.RemoveCollaborator(ctx, repo, target); err != nil {
		return fmt.Errorf("failed to remove collaborator: %w", err)
	}

	return nil
}

// ListCollaborators returns the collaborator set, requiring read access
func (s *RepoService) ListCollaborators(ctx context.Context, repoID uuid.UUID, actingUser *models.User) ([]models.User, error) {
	repo, err := s.repoRepo.FindByID(ctx, repoID)
	if err != nil {
		return nil, err
	}
	if !access.Allowed(actingUser, repo, access.CapabilityRead) {
		return nil, apperrors.Forbidden("you do not have access to this repository", apperrors.ErrForbidden)
	}
	return repo.Colaboradores, nil
}

// Download resolves the stored artifact of a repository and opens it for
// streaming. No access check is performed on this path.
func (s *RepoService) Download(ctx context.Context, repoID uuid.UUID) (string, io.ReadCloser, error) {
	repo, err := s.repoRepo.FindByID(ctx, repoID)
	if err != nil {
		return "", nil, err
	}
	if repo.FileName == nil || *repo.FileName == "" {
		return "", nil, apperrors.NotFound("file", apperrors.ErrNotFound)
	}

	content, err := s.storage.Open(ctx, *repo.FileName)
	if err != nil {
		return "", nil, err
	}
	return *repo.FileName, content, nil
}

// resolveClient loads a referenced client, mapping absence to a
// validation error as required for create and update payloads
func (s *RepoService) resolveClient(ctx context.Context, clientID uuid.UUID) (*models.Client, error) {
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.ValidationError("client", "referenced client does not exist")
		}
		return nil, fmt.Errorf("failed to resolve client: %w", err)
	}
	return client, nil
}
