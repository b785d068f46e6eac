package dto

import (
	"github.com/google/uuid"

	"github.com/projectsync/projectsync/internal/domain/models"
)

// CreateRepoRequest represents a request to create a new repository record.
// Owner is an administrative override; when it resolves to an existing user
// that user becomes the owner instead of the caller.
type CreateRepoRequest struct {
	Projectname string     `json:"projectname"`
	Description *string    `json:"description"`
	FechaInicio *DateOnly  `json:"fechaInicio"`
	FechaFin    *DateOnly  `json:"fechaFin"`
	Client      *uuid.UUID `json:"client"`
	Owner       *uuid.UUID `json:"owner"`
}

// UpdateRepoRequest represents a partial update. Fields absent from the
// payload stay untouched; explicit nulls clear the nullable attributes.
type UpdateRepoRequest struct {
	Projectname Optional[string]    `json:"projectname"`
	Description Optional[string]    `json:"description"`
	FechaInicio Optional[DateOnly]  `json:"fechaInicio"`
	FechaFin    Optional[DateOnly]  `json:"fechaFin"`
	Client      Optional[uuid.UUID] `json:"client"`
}

// OwnerSummary is the owner projection nested in repo responses
type OwnerSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// ClientSummary is the client projection nested in repo responses
type ClientSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// CollaboratorInfo is a collaborator projection
type CollaboratorInfo struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email,omitempty"`
}

// RepoResponse represents the response for repository data
type RepoResponse struct {
	ID            uuid.UUID          `json:"id"`
	Projectname   string             `json:"projectname"`
	Description   *string            `json:"description"`
	FechaInicio   DateOnly           `json:"fechaInicio"`
	FechaFin      *DateOnly          `json:"fechaFin"`
	FileName      *string            `json:"fileName"`
	Owner         *OwnerSummary      `json:"owner,omitempty"`
	Client        *ClientSummary     `json:"client"`
	Colaboradores []CollaboratorInfo `json:"colaboradores,omitempty"`
}

// CreateRepoResponse carries the identifier of the new record
type CreateRepoResponse struct {
	ID      uuid.UUID `json:"id"`
	Message string    `json:"message"`
}

// AddCollaboratorRequest adds a user to a repository's collaborator set
type AddCollaboratorRequest struct {
	UserID uuid.UUID `json:"userId" binding:"required"`
}

// CollaboratorListResponse lists a repository's collaborators
type CollaboratorListResponse struct {
	Colaboradores []CollaboratorInfo `json:"colaboradores"`
	Total         int                `json:"total"`
}

// RepoSummaryFromModel converts a Repo to its summary projection
// (owner and client, no collaborator list)
func RepoSummaryFromModel(repo *models.Repo) RepoResponse {
	response := RepoResponse{
		ID:          repo.ID,
		Projectname: repo.Projectname,
		Description: repo.Description,
		FechaInicio: NewDateOnly(repo.FechaInicio),
		FileName:    repo.FileName,
	}

	if repo.FechaFin != nil {
		fin := NewDateOnly(*repo.FechaFin)
		response.FechaFin = &fin
	}
	if repo.Owner.Username != "" {
		response.Owner = &OwnerSummary{ID: repo.OwnerID, Username: repo.Owner.Username}
	}
	if repo.Client != nil {
		response.Client = &ClientSummary{ID: repo.Client.ID, Name: repo.Client.Name}
	}

	return response
}

// RepoDetailFromModel converts a Repo to its full projection including
// the collaborator list
func RepoDetailFromModel(repo *models.Repo) RepoResponse {
	response := RepoSummaryFromModel(repo)
	response.Colaboradores = make([]CollaboratorInfo, 0, len(repo.Colaboradores))
	for _, c := range repo.Colaboradores {
		response.Colaboradores = append(response.Colaboradores, CollaboratorInfo{
			ID:       c.ID,
			Username: c.Username,
		})
	}
	return response
}

// RepoSummariesFromModels converts a slice of repos to summary projections
func RepoSummariesFromModels(repos []*models.Repo) []RepoResponse {
	responses := make([]RepoResponse, len(repos))
	for i, repo := range repos {
		responses[i] = RepoSummaryFromModel(repo)
	}
	return responses
}

// CollaboratorsFromModels converts users to collaborator projections,
// including the email address
func CollaboratorsFromModels(users []models.User) []CollaboratorInfo {
	infos := make([]CollaboratorInfo, len(users))
	for i, u := range users {
		infos[i] = CollaboratorInfo{ID: u.ID, Username: u.Username, Email: u.Email}
	}
	return infos
}
