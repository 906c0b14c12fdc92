package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/types"
)

// MarkerService generalizes the favorite and shopping-cart relations into
// one engine keyed by marker kind.
type MarkerService struct {
	db    *gorm.DB
	media MediaStore
}

// NewMarkerService creates a new MarkerService instance
func NewMarkerService(db *gorm.DB, media MediaStore) *MarkerService {
	return &MarkerService{db: db, media: media}
}

// Add marks a recipe for the user. Marking the same recipe twice with the
// same kind is a conflict, not an upsert; the unique index backs this up
// under concurrent requests.
func (s *MarkerService) Add(ctx context.Context, userID, recipeID uuid.UUID, kind models.MarkerKind) (*types.RecipeSummary, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&models.UserRecipeMarker{}).
		Where("user_id = ? AND recipe_id = ? AND kind = ?", userID, recipe.ID, kind).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, &ConflictError{Reason: "already marked"}
	}

	marker := models.UserRecipeMarker{
		UserID:   userID,
		RecipeID: recipe.ID,
		Kind:     kind,
	}
	if err := s.db.WithContext(ctx).Create(&marker).Error; err != nil {
		// Lost a race against a concurrent Add for the same triple.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflictError{Reason: "already marked"}
		}
		return nil, err
	}

	summary, err := summarizeRecipe(ctx, s.media, recipe)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// Remove deletes the user's marker for a recipe. Removing a marker that was
// never set is a conflict.
func (s *MarkerService) Remove(ctx context.Context, userID, recipeID uuid.UUID, kind models.MarkerKind) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ? AND kind = ?", userID, recipe.ID, kind).
		Delete(&models.UserRecipeMarker{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &ConflictError{Reason: "not marked"}
	}
	return nil
}

// summarizeRecipe reduces a recipe to the lightweight shape returned by
// marker and subscription endpoints.
func summarizeRecipe(ctx context.Context, media MediaStore, recipe models.Recipe) (types.RecipeSummary, error) {
	summary := types.RecipeSummary{
		ID:          recipe.ID,
		Name:        recipe.Name,
		CookingTime: recipe.CookingTime,
	}
	if recipe.ImageKey != "" && media != nil {
		url, err := media.ResolveURL(ctx, recipe.ImageKey)
		if err != nil {
			return types.RecipeSummary{}, err
		}
		summary.Image = url
	}
	return summary, nil
}
