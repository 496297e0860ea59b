package models

import (
	"time"

	"github.com/google/uuid"
)

// RecipeLike is one row of the like relation. The composite unique index
// makes a like an atomic set-membership insert, so concurrent toggles from
// different users never clobber each other.
type RecipeLike struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	RecipeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_likes_recipe_user" json:"recipe_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_likes_recipe_user" json:"user_id"`
}

func (RecipeLike) TableName() string {
	return "recipe_likes"
}
