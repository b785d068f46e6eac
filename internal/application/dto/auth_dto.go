package dto

import (
	"github.com/google/uuid"

	"github.com/projectsync/projectsync/internal/domain/models"
)

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents a login response with the bearer token
type LoginResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

// UserInfo represents basic user information in responses
type UserInfo struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Cargo    string    `json:"cargo"`
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse represents a registration response
type RegisterResponse struct {
	User    UserInfo `json:"user"`
	Message string   `json:"message"`
}

// UserInfoFromModel converts a User model to its summary projection
func UserInfoFromModel(user *models.User) UserInfo {
	return UserInfo{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Cargo:    user.Cargo,
	}
}
