package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/projectsync/projectsync/internal/domain/models"
)

// ClientRepository defines the interface for client registry data access
type ClientRepository interface {
	// Create creates a new client record
	Create(ctx context.Context, client *models.Client) error

	// FindByID retrieves a client by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error)

	// List retrieves all clients
	List(ctx context.Context) ([]*models.Client, error)

	// Update updates an existing client
	Update(ctx context.Context, client *models.Client) error

	// Delete removes a client by its ID
	Delete(ctx context.Context, id uuid.UUID) error
}
