package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/testhelpers"
	"github.com/platefeed/backend/internal/types"
)

func cartRecipe(t *testing.T, db *gorm.DB, author models.User, name string, lines map[models.Ingredient]int) models.Recipe {
	t.Helper()
	recipe := models.Recipe{AuthorID: author.ID, Name: name, Text: "Cook.", CookingTime: 10}
	require.NoError(t, db.Create(&recipe).Error)
	for ing, amount := range lines {
		item := models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: ing.ID, Amount: amount}
		require.NoError(t, db.Create(&item).Error)
	}
	return recipe
}

func TestBuildReportMergesByName(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	author := testhelpers.CreateUser(t, db, "author")
	shopper := testhelpers.CreateUser(t, db, "shopper")
	salt := testhelpers.CreateIngredient(t, db, "Salt", "g")
	flour := testhelpers.CreateIngredient(t, db, "Flour", "g")

	bread := cartRecipe(t, db, author, "Bread", map[models.Ingredient]int{salt: 5, flour: 500})
	soup := cartRecipe(t, db, author, "Soup", map[models.Ingredient]int{salt: 10})

	for _, r := range []models.Recipe{bread, soup} {
		marker := models.UserRecipeMarker{UserID: shopper.ID, RecipeID: r.ID, Kind: models.MarkerInCart}
		require.NoError(t, db.Create(&marker).Error)
	}

	svc := NewCartService(db)
	lines, err := svc.BuildReport(context.Background(), shopper.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	byName := map[string]types.ReportLine{}
	for _, line := range lines {
		byName[line.Name] = line
	}
	assert.Equal(t, 15, byName["Salt"].Amount)
	assert.Equal(t, "g", byName["Salt"].MeasurementUnit)
	assert.Equal(t, 500, byName["Flour"].Amount)
}

func TestBuildReportIgnoresFavoritesAndOtherUsers(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	author := testhelpers.CreateUser(t, db, "author")
	shopper := testhelpers.CreateUser(t, db, "shopper")
	other := testhelpers.CreateUser(t, db, "other")
	salt := testhelpers.CreateIngredient(t, db, "Salt", "g")

	recipe := cartRecipe(t, db, author, "Bread", map[models.Ingredient]int{salt: 5})

	favorite := models.UserRecipeMarker{UserID: shopper.ID, RecipeID: recipe.ID, Kind: models.MarkerFavorited}
	require.NoError(t, db.Create(&favorite).Error)
	otherCart := models.UserRecipeMarker{UserID: other.ID, RecipeID: recipe.ID, Kind: models.MarkerInCart}
	require.NoError(t, db.Create(&otherCart).Error)

	svc := NewCartService(db)
	lines, err := svc.BuildReport(context.Background(), shopper.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestWriteReportFormat(t *testing.T) {
	lines := []types.ReportLine{
		{Name: "Salt", MeasurementUnit: "g", Amount: 15},
		{Name: "Flour", MeasurementUnit: "g", Amount: 500},
	}

	var buf strings.Builder
	require.NoError(t, WriteReport(&buf, lines))
	assert.Equal(t, "Salt (g) — 15\nFlour (g) — 500\n", buf.String())
}
