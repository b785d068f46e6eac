package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/projectsync/projectsync/internal/application/dto"
	"github.com/projectsync/projectsync/internal/domain/models"
	"github.com/projectsync/projectsync/internal/domain/repository"
	domainservice "github.com/projectsync/projectsync/internal/domain/service"
	apperrors "github.com/projectsync/projectsync/pkg/errors"
	"github.com/projectsync/projectsync/pkg/logger"
)

// UserService handles user-related business logic
type UserService struct {
	userRepo repository.UserRepository
	repoRepo repository.RepoRepository
	auth     domainservice.AuthService
	log      *logger.Logger
}

// NewUserService creates a new UserService instance
func NewUserService(
	userRepo repository.UserRepository,
	repoRepo repository.RepoRepository,
	auth domainservice.AuthService,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		repoRepo: repoRepo,
		auth:     auth,
		log:      logger.Get().WithFields(logger.Component("user-service")),
	}
}

// Register creates a regular account from the public signup flow.
// The email uniqueness check runs before the username check, so when
// both collide the response names the email conflict.
func (s *UserService) Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error) {
	s.log.Info("Registering new user",
		logger.Username(req.Username),
		logger.String("email", req.Email),
	)
	return s.createUser(ctx, req.Username, req.Email, req.Password, models.RoleUser)
}

// CreateUser creates an account on the administrative path, where the
// role can be assigned explicitly
func (s *UserService) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error) {
	cargo := req.Cargo
	if cargo == "" {
		cargo = models.RoleUser
	}
	if err := s.validateCargo(cargo); err != nil {
		return nil, err
	}

	s.log.Info("Creating new user",
		logger.Username(req.Username),
		logger.String("email", req.Email),
		logger.String("cargo", cargo),
	)
	return s.createUser(ctx, req.Username, req.Email, req.Password, cargo)
}

func (s *UserService) createUser(ctx context.Context, username, email, password, cargo string) (*models.User, error) {
	if err := s.validateUsername(username); err != nil {
		s.log.Warn("Username validation failed",
			logger.Username(username),
			logger.Error(err),
		)
		return nil, err
	}
	if err := s.validateEmail(email); err != nil {
		s.log.Warn("Email validation failed",
			logger.String("email", email),
			logger.Error(err),
		)
		return nil, err
	}
	if err := s.validatePassword(password); err != nil {
		return nil, err
	}

	normalizedEmail := strings.ToLower(email)

	// Email is checked first; a request colliding on both fields
	// reports the email conflict
	exists, err := s.userRepo.ExistsByEmail(ctx, normalizedEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		s.log.Warn("Email already registered",
			logger.String("email", normalizedEmail),
		)
		return nil, apperrors.Conflict("email already registered", apperrors.ErrUserExists)
	}

	exists, err = s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		s.log.Warn("Username already taken",
			logger.Username(username),
		)
		return nil, apperrors.Conflict("username already taken", apperrors.ErrUserExists)
	}

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: username,
		Email:    normalizedEmail,
		Password: hash,
		Cargo:    cargo,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.log.Error("Failed to create user in database",
			logger.Error(err),
			logger.Username(username),
		)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("User created successfully",
		logger.UserID(user.ID.String()),
		logger.Username(user.Username),
	)

	return user, nil
}

// GetUser retrieves a user by ID together with their owned repositories
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.log.Debug("Getting user by ID",
		logger.UserID(id.String()),
	)
	return s.userRepo.FindByIDWithRepos(ctx, id)
}

// GetUserByUsername retrieves a user by username
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userRepo.FindByUsername(ctx, username)
}

// UpdateUser applies a partial update to a user. Only non-nil fields
// change; username and email changes re-run the uniqueness checks and
// a new password is hashed before storage.
func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, req *dto.UpdateUserRequest) (*models.User, error) {
	s.log.Info("Updating user",
		logger.UserID(id.String()),
	)

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Username != nil && *req.Username != user.Username {
		if err := s.validateUsername(*req.Username); err != nil {
			return nil, err
		}
		exists, err := s.userRepo.ExistsByUsername(ctx, *req.Username)
		if err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if exists {
			return nil, apperrors.Conflict("username already taken", apperrors.ErrUserExists)
		}
		user.Username = *req.Username
	}

	if req.Email != nil {
		if err := s.validateEmail(*req.Email); err != nil {
			return nil, err
		}
		normalizedEmail := strings.ToLower(*req.Email)
		if normalizedEmail != user.Email {
			exists, err := s.userRepo.ExistsByEmail(ctx, normalizedEmail)
			if err != nil {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			if exists {
				return nil, apperrors.Conflict("email already registered", apperrors.ErrUserExists)
			}
			user.Email = normalizedEmail
		}
	}

	if req.Password != nil {
		if err := s.validatePassword(*req.Password); err != nil {
			return nil, err
		}
		hash, err := s.auth.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = hash
	}

	if req.Cargo != nil {
		if err := s.validateCargo(*req.Cargo); err != nil {
			return nil, err
		}
		user.Cargo = *req.Cargo
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.log.Error("Failed to update user in database",
			logger.Error(err),
			logger.UserID(id.String()),
		)
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.log.Info("User updated successfully",
		logger.UserID(user.ID.String()),
		logger.Username(user.Username),
	)

	return user, nil
}

// DeleteUser deletes a user. A user that still owns repositories cannot
// be removed; the caller must reassign or delete the repositories first.
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	s.log.Info("Deleting user",
		logger.UserID(id.String()),
	)

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	owned, err := s.repoRepo.CountByOwner(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count owned repositories: %w", err)
	}
	if owned > 0 {
		s.log.Warn("User still owns repositories",
			logger.UserID(id.String()),
			logger.Int64("owned", owned),
		)
		return apperrors.Conflict("user still owns repositories", apperrors.ErrUserOwnsRepos)
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		s.log.Error("Failed to delete user from database",
			logger.Error(err),
			logger.UserID(id.String()),
		)
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.log.Info("User deleted successfully",
		logger.UserID(id.String()),
		logger.Username(user.Username),
	)

	return nil
}

// ListUsers lists users with pagination
func (s *UserService) ListUsers(ctx context.Context, page, perPage int) ([]*models.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage

	users, err := s.userRepo.List(ctx, perPage, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	return users, total, nil
}

// CountUsers returns the total number of users
func (s *UserService) CountUsers(ctx context.Context) (int64, error) {
	return s.userRepo.Count(ctx)
}

// validateUsername validates a username
func (s *UserService) validateUsername(username string) error {
	if username == "" {
		return apperrors.ValidationError("username", "username is required")
	}

	if len(username) < 3 {
		return apperrors.ValidationError("username", "username must be at least 3 characters")
	}

	if len(username) > 50 {
		return apperrors.ValidationError("username", "username must be 50 characters or less")
	}

	// Must start with a letter; alphanumeric, underscore and hyphen after
	usernameRegex := regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)
	if !usernameRegex.MatchString(username) {
		return apperrors.ValidationError("username", "username must start with a letter and contain only letters, numbers, underscores, or hyphens")
	}

	return nil
}

// validateEmail validates an email address
func (s *UserService) validateEmail(email string) error {
	if email == "" {
		return apperrors.ValidationError("email", "email is required")
	}

	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return apperrors.ValidationError("email", "invalid email format")
	}

	return nil
}

// validatePassword validates a plain text password before hashing
func (s *UserService) validatePassword(password string) error {
	if password == "" {
		return apperrors.ValidationError("password", "password is required")
	}
	if len(password) < 6 {
		return apperrors.ValidationError("password", "password must be at least 6 characters")
	}
	return nil
}

// validateCargo restricts the role to the known set
func (s *UserService) validateCargo(cargo string) error {
	if cargo != models.RoleUser && cargo != models.RoleAdmin {
		return apperrors.ValidationError("cargo", "cargo must be ROLE_USER or ROLE_ADMIN")
	}
	return nil
}
