package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/google/uuid"
	"github.com/projectsync/projectsync/internal/domain/models"
	"github.com/projectsync/projectsync/internal/domain/repository"
	apperror "github.com/projectsync/projectsync/pkg/errors"
)

// ClientRepoImpl implements the ClientRepository interface using GORM
type ClientRepoImpl struct {
	db *gorm.DB
}

// NewClientRepository creates a new ClientRepoImpl instance
func NewClientRepository(db *gorm.DB) repository.ClientRepository {
	return &ClientRepoImpl{db: db}
}

// Create creates a new client record
func (r *ClientRepoImpl) Create(ctx context.Context, client *models.Client) error {
	if err := r.db.WithContext(ctx).Create(client).Error; err != nil {
		return apperror.DatabaseError("create client", err)
	}
	return nil
}

// FindByID retrieves a client by its ID
func (r *ClientRepoImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	if err := r.db.WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("client", apperror.ErrNotFound)
		}
		return nil, apperror.DatabaseError("find client", err)
	}
	return &client, nil
}

// List retrieves all client records
func (r *ClientRepoImpl) List(ctx context.Context) ([]*models.Client, error) {
	var clients []*models.Client
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&clients).Error; err != nil {
		return nil, apperror.DatabaseError("list clients", err)
	}
	return clients, nil
}

// Update saves a client record
func (r *ClientRepoImpl) Update(ctx context.Context, client *models.Client) error {
	result := r.db.WithContext(ctx).Save(client)
	if result.Error != nil {
		return apperror.DatabaseError("update client", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("client", apperror.ErrNotFound)
	}
	return nil
}

// Delete removes a client record
func (r *ClientRepoImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Client{}, "id = ?", id)
	if result.Error != nil {
		return apperror.DatabaseError("delete client", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("client", apperror.ErrNotFound)
	}
	return nil
}
