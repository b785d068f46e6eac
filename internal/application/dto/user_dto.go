package dto

import (
	"github.com/projectsync/projectsync/internal/domain/models"
)

// CreateUserRequest represents an administrative user creation request.
// Cargo falls back to ROLE_USER when empty.
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Cargo    string `json:"cargo"`
}

// UpdateUserRequest represents a partial user update
type UpdateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Cargo    *string `json:"cargo"`
}

// UserDetailResponse is a user together with summaries of owned repos
type UserDetailResponse struct {
	UserInfo
	Repos []RepoResponse `json:"repos"`
}

// UserListResponse is a list of user summaries
type UserListResponse struct {
	Users []UserInfo `json:"users"`
	Total int64      `json:"total"`
}

// UserDetailFromModel converts a User with loaded repos to a detail projection
func UserDetailFromModel(user *models.User) UserDetailResponse {
	detail := UserDetailResponse{
		UserInfo: UserInfoFromModel(user),
		Repos:    make([]RepoResponse, 0, len(user.Repos)),
	}
	for i := range user.Repos {
		detail.Repos = append(detail.Repos, RepoSummaryFromModel(&user.Repos[i]))
	}
	return detail
}

// UserInfosFromModels converts a slice of users to summary projections
func UserInfosFromModels(users []*models.User) []UserInfo {
	infos := make([]UserInfo, len(users))
	for i, u := range users {
		infos[i] = UserInfoFromModel(u)
	}
	return infos
}
