package service

import (
	"context"

	"github.com/projectsync/projectsync/internal/domain/models"
)

// AuthService defines the interface for authentication operations
type AuthService interface {
	// AuthenticateCredentials authenticates a user using email and password.
	// Unknown email and wrong password are indistinguishable to the caller.
	AuthenticateCredentials(ctx context.Context, email, password string) (*models.User, error)

	// AuthenticateToken authenticates a user from a session token
	AuthenticateToken(ctx context.Context, token string) (*models.User, error)

	// IssueToken creates a signed session token for the user
	IssueToken(user *models.User) (string, error)

	// HashPassword generates a secure hash from a plain text password
	HashPassword(password string) (string, error)

	// VerifyPassword compares a hashed password with a plain text password.
	// Returns nil if they match, or an error if they don't.
	VerifyPassword(hash, password string) error
}
