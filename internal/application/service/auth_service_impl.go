package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/projectsync/projectsync/internal/config"
	"github.com/projectsync/projectsync/internal/domain/models"
	"github.com/projectsync/projectsync/internal/domain/repository"
	apperrors "github.com/projectsync/projectsync/pkg/errors"
	"github.com/projectsync/projectsync/pkg/logger"
)

// AuthServiceImpl implements the domain AuthService interface with
// bcrypt password hashing and HS256-signed session tokens
type AuthServiceImpl struct {
	userRepo repository.UserRepository
	secret   []byte
	tokenTTL time.Duration
	log      *logger.Logger
}

// NewAuthService creates a new AuthServiceImpl instance
func NewAuthService(userRepo repository.UserRepository, cfg *config.AuthConfig) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo: userRepo,
		secret:   []byte(cfg.JWTSecret),
		tokenTTL: cfg.TokenTTL(),
		log:      logger.Get(),
	}
}

// AuthenticateCredentials authenticates a user by email and password.
// Unknown email and wrong password both return the same error so the
// caller cannot probe which accounts exist.
func (s *AuthServiceImpl) AuthenticateCredentials(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Unauthorized("invalid credentials", apperrors.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.VerifyPassword(user.Password, password); err != nil {
		s.log.Debug("password verification failed", logger.Username(user.Username))
		return nil, apperrors.Unauthorized("invalid credentials", apperrors.ErrInvalidCredentials)
	}

	return user, nil
}

// AuthenticateToken validates a session token and resolves its subject
// to a live user record
func (s *AuthServiceImpl) AuthenticateToken(ctx context.Context, tokenString string) (*models.User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.Unauthorized("token expired", apperrors.ErrTokenExpired)
		}
		return nil, apperrors.Unauthorized("invalid token", apperrors.ErrUnauthorized)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperrors.Unauthorized("invalid token", apperrors.ErrUnauthorized)
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, apperrors.Unauthorized("invalid token subject", apperrors.ErrUnauthorized)
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid token subject", apperrors.ErrUnauthorized)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Unauthorized("user no longer exists", apperrors.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to resolve token subject: %w", err)
	}

	return user, nil
}

// IssueToken creates a signed session token carrying the user's identity
// and role
func (s *AuthServiceImpl) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      user.ID.String(),
		"username": user.Username,
		"email":    user.Email,
		"cargo":    user.Cargo,
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// HashPassword generates a bcrypt hash from a plain text password
func (s *AuthServiceImpl) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword compares a bcrypt hash with a plain text password
func (s *AuthServiceImpl) VerifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
