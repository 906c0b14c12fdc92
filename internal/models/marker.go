package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MarkerKind distinguishes the user-recipe relations that share one table.
type MarkerKind string

const (
	MarkerFavorited MarkerKind = "favorited"
	MarkerInCart    MarkerKind = "in_cart"
)

// UserRecipeMarker records that a user favorited a recipe or put it in their
// shopping cart. The composite unique index is the final arbiter under
// concurrent requests.
type UserRecipeMarker struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_recipe_kind" json:"user_id"`
	RecipeID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_recipe_kind" json:"recipe_id"`
	Kind      MarkerKind `gorm:"size:20;not null;uniqueIndex:idx_user_recipe_kind" json:"kind"`
}

func (UserRecipeMarker) TableName() string {
	return "user_recipe_markers"
}

func (m *UserRecipeMarker) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
