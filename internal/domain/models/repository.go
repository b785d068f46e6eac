package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repo represents a software-project record
type Repo struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Projectname string    `json:"projectname" gorm:"not null;size:255"`
	Description *string   `json:"description"`
	FechaInicio time.Time `json:"fechaInicio" gorm:"type:date;not null"`
	FechaFin    *time.Time `json:"fechaFin" gorm:"type:date"`
	// FileName holds the stored artifact name, not the original upload name
	FileName *string    `json:"fileName" gorm:"size:255"`
	OwnerID  uuid.UUID  `json:"owner_id" gorm:"not null;index"`
	Owner    User       `json:"owner,omitzero" gorm:"foreignKey:OwnerID"`
	ClientID *uuid.UUID `json:"client_id"`
	Client   *Client    `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	// Membership is unique; both join-table FKs cascade on delete
	Colaboradores []User    `json:"-" gorm:"many2many:repo_colaboradores;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Repo
func (Repo) TableName() string {
	return "repos"
}

func (r *Repo) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// HasCollaborator reports whether the given user id is in the collaborator set
func (r *Repo) HasCollaborator(userID uuid.UUID) bool {
	for _, c := range r.Colaboradores {
		if c.ID == userID {
			return true
		}
	}
	return false
}
