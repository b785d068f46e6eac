package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/projectsync/projectsync/internal/application/dto"
	"github.com/projectsync/projectsync/internal/domain/models"
	"github.com/projectsync/projectsync/internal/domain/repository"
	apperrors "github.com/projectsync/projectsync/pkg/errors"
	"github.com/projectsync/projectsync/pkg/logger"
)

// ClientService handles the client registry
type ClientService struct {
	clientRepo repository.ClientRepository
	repoRepo   repository.RepoRepository
	log        *logger.Logger
}

// NewClientService creates a new ClientService instance
func NewClientService(
	clientRepo repository.ClientRepository,
	repoRepo repository.RepoRepository,
) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		repoRepo:   repoRepo,
		log:        logger.Get().WithFields(logger.Component("client-service")),
	}
}

// CreateClient creates a new client record
func (s *ClientService) CreateClient(ctx context.Context, req *dto.CreateClientRequest) (*models.Client, error) {
	if req.Name == "" {
		return nil, apperrors.ValidationError("name", "name is required")
	}

	client := &models.Client{
		Name:  req.Name,
		CIF:   req.CIF,
		Email: req.Email,
		Phone: req.Phone,
		Web:   req.Web,
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s.log.Info("Client created",
		logger.ClientID(client.ID.String()),
		logger.String("name", client.Name),
	)

	return client, nil
}

// GetClient retrieves a client by ID
func (s *ClientService) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	return s.clientRepo.FindByID(ctx, id)
}

// ListClients lists all client records
func (s *ClientService) ListClients(ctx context.Context) ([]*models.Client, error) {
	return s.clientRepo.List(ctx)
}

// UpdateClient applies a partial update to a client record
func (s *ClientService) UpdateClient(ctx context.Context, id uuid.UUID, req *dto.UpdateClientRequest) (*models.Client, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, apperrors.ValidationError("name", "name cannot be empty")
		}
		client.Name = *req.Name
	}
	if req.CIF != nil {
		client.CIF = *req.CIF
	}
	if req.Email != nil {
		client.Email = *req.Email
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.Web.Set {
		if req.Web.Valid {
			web := req.Web.Value
			client.Web = &web
		} else {
			client.Web = nil
		}
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	return client, nil
}

// DeleteClient removes a client record. A client still referenced by
// repositories cannot be deleted.
func (s *ClientService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	if _, err := s.clientRepo.FindByID(ctx, id); err != nil {
		return err
	}

	referenced, err := s.repoRepo.CountByClient(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count client references: %w", err)
	}
	if referenced > 0 {
		s.log.Warn("Client still referenced by repositories",
			logger.ClientID(id.String()),
			logger.Int64("references", referenced),
		)
		return apperrors.Conflict("client still referenced by repositories", apperrors.ErrClientInUse)
	}

	if err := s.clientRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	s.log.Info("Client deleted",
		logger.ClientID(id.String()),
	)

	return nil
}
