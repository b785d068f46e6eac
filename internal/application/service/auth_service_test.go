package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/projectsync/projectsync/internal/config"
	"github.com/projectsync/projectsync/internal/domain/models"
	apperrors "github.com/projectsync/projectsync/pkg/errors"
)

func newAuthServiceForTest(userRepo *mockUserRepository) *AuthServiceImpl {
	return NewAuthService(userRepo, &config.AuthConfig{
		JWTSecret:     "test-secret",
		TokenTTLHours: 1,
	})
}

func TestAuthenticateCredentials(t *testing.T) {
	userRepo := &mockUserRepository{}
	svc := newAuthServiceForTest(userRepo)

	hash, err := svc.HashPassword("s3cret")
	require.NoError(t, err)

	user := &models.User{ID: uuid.New(), Email: "ana@example.com", Password: hash}
	userRepo.On("FindByEmail", mock.Anything, "ana@example.com").Return(user, nil)
	userRepo.On("FindByEmail", mock.Anything, "ghost@example.com").
		Return(nil, apperrors.NotFound("user", apperrors.ErrNotFound))

	got, err := svc.AuthenticateCredentials(context.Background(), "ana@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	// Unknown email and wrong password are indistinguishable.
	_, badPass := svc.AuthenticateCredentials(context.Background(), "ana@example.com", "wrong")
	_, badEmail := svc.AuthenticateCredentials(context.Background(), "ghost@example.com", "s3cret")
	require.Error(t, badPass)
	require.Error(t, badEmail)
	assert.True(t, apperrors.IsUnauthorized(badPass))
	assert.Equal(t, badPass.Error(), badEmail.Error())
}

func TestTokenRoundTrip(t *testing.T) {
	userRepo := &mockUserRepository{}
	svc := newAuthServiceForTest(userRepo)

	user := &models.User{
		ID:       uuid.New(),
		Username: "ana",
		Email:    "ana@example.com",
		Cargo:    models.RoleAdmin,
	}
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	token, err := svc.IssueToken(user)
	require.NoError(t, err)

	got, err := svc.AuthenticateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, models.RoleAdmin, got.Cargo)
}

func TestAuthenticateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthServiceForTest(&mockUserRepository{})

	_, err := svc.AuthenticateToken(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestAuthenticateTokenRejectsWrongSecret(t *testing.T) {
	svc := newAuthServiceForTest(&mockUserRepository{})

	claims := jwt.MapClaims{
		"sub": uuid.New().String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, err = svc.AuthenticateToken(context.Background(), forged)
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestAuthenticateTokenExpired(t *testing.T) {
	svc := newAuthServiceForTest(&mockUserRepository{})

	claims := jwt.MapClaims{
		"sub": uuid.New().String(),
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.AuthenticateToken(context.Background(), expired)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestAuthenticateTokenDeletedUser(t *testing.T) {
	userRepo := &mockUserRepository{}
	svc := newAuthServiceForTest(userRepo)

	user := &models.User{ID: uuid.New(), Username: "gone"}
	userRepo.On("FindByID", mock.Anything, user.ID).
		Return(nil, apperrors.NotFound("user", apperrors.ErrNotFound))

	token, err := svc.IssueToken(user)
	require.NoError(t, err)

	_, err = svc.AuthenticateToken(context.Background(), token)
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestHashPasswordNeverPlaintext(t *testing.T) {
	svc := newAuthServiceForTest(&mockUserRepository{})

	hash, err := svc.HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)
	assert.NoError(t, svc.VerifyPassword(hash, "hunter2"))
	assert.Error(t, svc.VerifyPassword(hash, "hunter3"))
}
