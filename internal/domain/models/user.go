package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role designators stored in the cargo column
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// User represents an account in the user directory
type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Username  string    `json:"username" gorm:"uniqueIndex;not null;size:255"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Password  string    `json:"-" gorm:"not null;size:255"` // bcrypt hash, never serialized
	Cargo     string    `json:"cargo" gorm:"not null;default:'ROLE_USER';size:64"`
	Repos     []Repo    `json:"-" gorm:"foreignKey:OwnerID"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns an id when none is set yet. gorm hook, works on
// every supported driver unlike a database-side uuid default.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsAdmin returns true when the user carries the admin role
func (u *User) IsAdmin() bool {
	return u.Cargo == RoleAdmin
}
