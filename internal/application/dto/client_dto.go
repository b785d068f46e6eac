package dto

import (
	"github.com/google/uuid"

	"github.com/projectsync/projectsync/internal/domain/models"
)

// CreateClientRequest represents a request to register a client
type CreateClientRequest struct {
	Name  string  `json:"name" binding:"required"`
	CIF   string  `json:"cif"`
	Email string  `json:"email"`
	Phone string  `json:"phone"`
	Web   *string `json:"web"`
}

// UpdateClientRequest represents a partial client update
type UpdateClientRequest struct {
	Name  *string          `json:"name"`
	CIF   *string          `json:"cif"`
	Email *string          `json:"email"`
	Phone *string          `json:"phone"`
	Web   Optional[string] `json:"web"`
}

// ClientResponse represents the response for client data
type ClientResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	CIF   string    `json:"cif"`
	Email string    `json:"email"`
	Phone string    `json:"phone"`
	Web   *string   `json:"web"`
}

// ClientListResponse is a list of clients
type ClientListResponse struct {
	Clients []ClientResponse `json:"clients"`
	Total   int              `json:"total"`
}

// ClientFromModel converts a Client model to its projection
func ClientFromModel(client *models.Client) ClientResponse {
	return ClientResponse{
		ID:    client.ID,
		Name:  client.Name,
		CIF:   client.CIF,
		Email: client.Email,
		Phone: client.Phone,
		Web:   client.Web,
	}
}

// ClientsFromModels converts a slice of clients to projections
func ClientsFromModels(clients []*models.Client) []ClientResponse {
	responses := make([]ClientResponse, len(clients))
	for i, c := range clients {
		responses[i] = ClientFromModel(c)
	}
	return responses
}
