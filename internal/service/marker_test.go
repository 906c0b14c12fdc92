package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/testhelpers"
)

func TestMarkerAddAndRemove(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	author := testhelpers.CreateUser(t, db, "author")
	viewer := testhelpers.CreateUser(t, db, "viewer")
	recipe := models.Recipe{AuthorID: author.ID, Name: "Bread", Text: "Bake.", CookingTime: 60}
	require.NoError(t, db.Create(&recipe).Error)

	svc := NewMarkerService(db, testhelpers.NewFakeMediaStore())
	ctx := context.Background()

	summary, err := svc.Add(ctx, viewer.ID, recipe.ID, models.MarkerFavorited)
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, summary.ID)
	assert.Equal(t, "Bread", summary.Name)
	assert.Equal(t, 60, summary.CookingTime)

	// A second add of the same kind is a conflict.
	_, err = svc.Add(ctx, viewer.ID, recipe.ID, models.MarkerFavorited)
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "already marked", ce.Reason)

	// A different kind on the same recipe is independent.
	_, err = svc.Add(ctx, viewer.ID, recipe.ID, models.MarkerInCart)
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, viewer.ID, recipe.ID, models.MarkerFavorited))

	var count int64
	require.NoError(t, db.Model(&models.UserRecipeMarker{}).
		Where("user_id = ? AND recipe_id = ? AND kind = ?", viewer.ID, recipe.ID, models.MarkerFavorited).
		Count(&count).Error)
	assert.Zero(t, count)
}

func TestMarkerAddUnknownRecipe(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	viewer := testhelpers.CreateUser(t, db, "viewer")
	svc := NewMarkerService(db, nil)

	_, err := svc.Add(context.Background(), viewer.ID, uuid.New(), models.MarkerFavorited)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkerRemoveWithoutAdd(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	author := testhelpers.CreateUser(t, db, "author")
	viewer := testhelpers.CreateUser(t, db, "viewer")
	recipe := models.Recipe{AuthorID: author.ID, Name: "Bread", Text: "Bake.", CookingTime: 60}
	require.NoError(t, db.Create(&recipe).Error)

	svc := NewMarkerService(db, nil)
	err := svc.Remove(context.Background(), viewer.ID, recipe.ID, models.MarkerInCart)
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "not marked", ce.Reason)
}
