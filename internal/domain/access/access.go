// Package access decides what a user may do with a repository.
// Decisions are pure functions over identifiers and the loaded
// collaborator set; callers translate a deny into a forbidden error.
package access

import (
	"github.com/projectsync/projectsync/internal/domain/models"
)

// Capability is a requested kind of repository access
type Capability int

const (
	// CapabilityRead covers viewing a repository and its collaborator list
	CapabilityRead Capability = iota
	// CapabilityWrite covers updating and deleting a repository
	CapabilityWrite
	// CapabilityManageCollaborators covers adding and removing collaborators
	CapabilityManageCollaborators
)

// Allowed reports whether user may exercise capability on repo.
// A nil user never matches an owner id and is always denied.
func Allowed(user *models.User, repo *models.Repo, capability Capability) bool {
	if user == nil || repo == nil {
		return false
	}

	switch capability {
	case CapabilityWrite, CapabilityManageCollaborators:
		return IsOwner(user, repo)
	case CapabilityRead:
		return IsOwner(user, repo) || repo.HasCollaborator(user.ID)
	default:
		return false
	}
}

// IsOwner compares by id equality, never by pointer identity, so the
// check stays correct across request boundaries.
func IsOwner(user *models.User, repo *models.Repo) bool {
	if user == nil || repo == nil {
		return false
	}
	return user.ID == repo.OwnerID
}
