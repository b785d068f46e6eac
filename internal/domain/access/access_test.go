package access

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/projectsync/projectsync/internal/domain/models"
)

func TestAllowed(t *testing.T) {
	owner := &models.User{ID: uuid.New(), Username: "owner"}
	collaborator := &models.User{ID: uuid.New(), Username: "collab"}
	stranger := &models.User{ID: uuid.New(), Username: "stranger"}

	repo := &models.Repo{
		ID:            uuid.New(),
		Projectname:   "delivery-platform",
		OwnerID:       owner.ID,
		Colaboradores: []models.User{{ID: collaborator.ID}},
	}

	tests := []struct {
		name string
		user *models.User
		cap  Capability
		want bool
	}{
		{"owner can read", owner, CapabilityRead, true},
		{"owner can write", owner, CapabilityWrite, true},
		{"owner can manage collaborators", owner, CapabilityManageCollaborators, true},
		{"collaborator can read", collaborator, CapabilityRead, true},
		{"collaborator cannot write", collaborator, CapabilityWrite, false},
		{"collaborator cannot manage collaborators", collaborator, CapabilityManageCollaborators, false},
		{"stranger cannot read", stranger, CapabilityRead, false},
		{"stranger cannot write", stranger, CapabilityWrite, false},
		{"nil user is denied", nil, CapabilityRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.user, repo, tt.cap))
		})
	}
}

func TestAllowedNilRepo(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	assert.False(t, Allowed(user, nil, CapabilityRead))
}

func TestIsOwnerComparesByID(t *testing.T) {
	id := uuid.New()
	repo := &models.Repo{ID: uuid.New(), OwnerID: id}

	// A freshly loaded user with the same id still counts as owner.
	assert.True(t, IsOwner(&models.User{ID: id}, repo))
	assert.False(t, IsOwner(&models.User{ID: uuid.New()}, repo))
	assert.False(t, IsOwner(nil, repo))
}
