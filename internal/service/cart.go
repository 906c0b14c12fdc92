package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/types"
)

// CartService folds the ingredient lines of every recipe in a user's
// shopping cart into one merged report.
type CartService struct {
	db *gorm.DB
}

// NewCartService creates a new CartService instance
func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// BuildReport aggregates amounts by ingredient name in first-encounter
// order. Keying by name means two catalog entries that share a name but
// differ in unit merge under the first-seen unit; that matches the intended
// cross-recipe merging and is a known limitation.
func (s *CartService) BuildReport(ctx context.Context, userID uuid.UUID) ([]types.ReportLine, error) {
	var markers []models.UserRecipeMarker
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND kind = ?", userID, models.MarkerInCart).
		Order("created_at").
		Find(&markers).Error
	if err != nil {
		return nil, err
	}

	lines := make([]types.ReportLine, 0)
	index := make(map[string]int)
	for _, marker := range markers {
		var items []models.RecipeIngredient
		err := s.db.WithContext(ctx).
			Preload("Ingredient").
			Where("recipe_id = ?", marker.RecipeID).
			Find(&items).Error
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			name := item.Ingredient.Name
			if i, ok := index[name]; ok {
				lines[i].Amount += item.Amount
				continue
			}
			index[name] = len(lines)
			lines = append(lines, types.ReportLine{
				Name:            name,
				MeasurementUnit: item.Ingredient.MeasurementUnit,
				Amount:          item.Amount,
			})
		}
	}
	return lines, nil
}

// WriteReport renders the report as plain text, one ingredient per line.
func WriteReport(w io.Writer, lines []types.ReportLine) error {
	for _, line := range lines {
		if _, err := fmt.Fprintf(w, "%s (%s) — %d\n", line.Name, line.MeasurementUnit, line.Amount); err != nil {
			return err
		}
	}
	return nil
}
