package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the owning identity for recipes. Only the public projection
// (name and profile image) is serialized on catalog responses.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt    time.Time      `json:"-"`
	UpdatedAt    time.Time      `json:"-"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Name         string         `gorm:"not null" json:"name"`
	Email        string         `gorm:"uniqueIndex;not null" json:"-"`
	ProfileImage string         `gorm:"size:255" json:"profile_image"`
}
