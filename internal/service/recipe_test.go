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

func setupRecipeService(t *testing.T) (*RecipeService, *testSeed) {
	db := testhelpers.NewTestDB(t)
	seed := &testSeed{
		author: testhelpers.CreateUser(t, db, "author"),
		viewer: testhelpers.CreateUser(t, db, "viewer"),
		salt:   testhelpers.CreateIngredient(t, db, "Salt", "g"),
		flour:  testhelpers.CreateIngredient(t, db, "Flour", "g"),
		sugar:  testhelpers.CreateIngredient(t, db, "Sugar", "g"),
		dinner: testhelpers.CreateTag(t, db, "Dinner", "#FF0000", "dinner"),
		quick:  testhelpers.CreateTag(t, db, "Quick", "#00FF00", "quick"),
	}
	return NewRecipeService(db, testhelpers.NewFakeMediaStore(), false), seed
}

type testSeed struct {
	author models.User
	viewer models.User
	salt   models.Ingredient
	flour  models.Ingredient
	sugar  models.Ingredient
	dinner models.Tag
	quick  models.Tag
}

func validInput(seed *testSeed) *RecipeInput {
	return &RecipeInput{
		Name:        "Bread",
		Text:        "Mix and bake.",
		CookingTime: 60,
		TagIDs:      []uuid.UUID{seed.dinner.ID, seed.quick.ID},
		Ingredients: []IngredientLine{
			{ID: seed.salt.ID, Amount: 5},
			{ID: seed.flour.ID, Amount: 500},
		},
	}
}

func TestCreateRecipePersistsAggregate(t *testing.T) {
	svc, seed := setupRecipeService(t)
	ctx := context.Background()

	recipe, err := svc.Create(ctx, seed.author.ID, validInput(seed))
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, recipe.ID)

	var lines []models.RecipeIngredient
	require.NoError(t, svc.db.Where("recipe_id = ?", recipe.ID).Order("amount").Find(&lines).Error)
	require.Len(t, lines, 2)
	assert.Equal(t, seed.salt.ID, lines[0].IngredientID)
	assert.Equal(t, 5, lines[0].Amount)
	assert.Equal(t, seed.flour.ID, lines[1].IngredientID)
	assert.Equal(t, 500, lines[1].Amount)

	var stored models.Recipe
	require.NoError(t, svc.db.Preload("Tags").First(&stored, "id = ?", recipe.ID).Error)
	require.Len(t, stored.Tags, 2)
	slugs := []string{stored.Tags[0].Slug, stored.Tags[1].Slug}
	assert.ElementsMatch(t, []string{"dinner", "quick"}, slugs)
}

func TestCreateRecipeValidationOrder(t *testing.T) {
	svc, seed := setupRecipeService(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*RecipeInput)
		reason string
	}{
		{
			name:   "empty tags",
			mutate: func(in *RecipeInput) { in.TagIDs = nil },
			reason: "tags empty or duplicate",
		},
		{
			name:   "duplicate tags",
			mutate: func(in *RecipeInput) { in.TagIDs = []uuid.UUID{seed.dinner.ID, seed.dinner.ID} },
			reason: "tags empty or duplicate",
		},
		{
			name:   "unknown tag",
			mutate: func(in *RecipeInput) { in.TagIDs = []uuid.UUID{seed.dinner.ID, uuid.New()} },
			reason: "unknown tag",
		},
		{
			name:   "empty ingredients",
			mutate: func(in *RecipeInput) { in.Ingredients = nil },
			reason: "ingredients empty",
		},
		{
			name: "unknown ingredient",
			mutate: func(in *RecipeInput) {
				in.Ingredients = []IngredientLine{{ID: uuid.New(), Amount: 5}}
			},
			reason: "unknown ingredient",
		},
		{
			name: "amount below minimum",
			mutate: func(in *RecipeInput) {
				in.Ingredients = []IngredientLine{{ID: seed.salt.ID, Amount: 0}}
			},
			reason: "amount below minimum",
		},
		{
			name: "amount above maximum",
			mutate: func(in *RecipeInput) {
				in.Ingredients = []IngredientLine{{ID: seed.salt.ID, Amount: 32768}}
			},
			reason: "amount above maximum",
		},
		{
			name: "duplicate ingredient despite differing amounts",
			mutate: func(in *RecipeInput) {
				in.Ingredients = []IngredientLine{
					{ID: seed.salt.ID, Amount: 5},
					{ID: seed.salt.ID, Amount: 10},
				}
			},
			reason: "duplicate ingredient",
		},
		{
			name:   "cooking time zero",
			mutate: func(in *RecipeInput) { in.CookingTime = 0 },
			reason: "cooking time below minimum",
		},
		{
			name:   "cooking time above maximum",
			mutate: func(in *RecipeInput) { in.CookingTime = 32768 },
			reason: "cooking time above maximum",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput(seed)
			tc.mutate(in)
			_, err := svc.Create(ctx, seed.author.ID, in)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.reason, ve.Reason)
		})
	}

	// Nothing should have been written by the rejected inputs.
	var count int64
	require.NoError(t, svc.db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateRecipeBoundaryValuesAccepted(t *testing.T) {
	svc, seed := setupRecipeService(t)
	ctx := context.Background()

	in := validInput(seed)
	in.CookingTime = 32767
	in.Ingredients = []IngredientLine{{ID: seed.salt.ID, Amount: 32767}}

	recipe, err := svc.Create(ctx, seed.author.ID, in)
	require.NoError(t, err)
	assert.Equal(t, 32767, recipe.CookingTime)
}

func TestCreateRecipeDuplicateGuard(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	author := testhelpers.CreateUser(t, db, "author")
	other := testhelpers.CreateUser(t, db, "other")
	salt := testhelpers.CreateIngredient(t, db, "Salt", "g")
	tag := testhelpers.CreateTag(t, db, "Dinner", "#FF0000", "dinner")
	svc := NewRecipeService(db, nil, true)
	ctx := context.Background()

	in := &RecipeInput{
		Name:        "Bread",
		Text:        "Mix and bake.",
		CookingTime: 60,
		TagIDs:      []uuid.UUID{tag.ID},
		Ingredients: []IngredientLine{{ID: salt.ID, Amount: 5}},
	}

	_, err := svc.Create(ctx, author.ID, in)
	require.NoError(t, err)

	_, err = svc.Create(ctx, author.ID, in)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "duplicate recipe", ve.Reason)

	// Same fields by a different author are fine.
	_, err = svc.Create(ctx, other.ID, in)
	require.NoError(t, err)
}

func TestUpdateReplacesIngredientLines(t *testing.T) {
	svc, seed := setupRecipeService(t)
	ctx := context.Background()

	recipe, err := svc.Create(ctx, seed.author.ID, validInput(seed))
	require.NoError(t, err)

	in := validInput(seed)
	in.Name = "Sweet bread"
	in.Ingredients = []IngredientLine{
		{ID: seed.flour.ID, Amount: 400},
		{ID: seed.sugar.ID, Amount: 50},
	}
	in.TagIDs = []uuid.UUID{seed.quick.ID}

	updated, err := svc.Update(ctx, recipe.ID, seed.author.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Sweet bread", updated.Name)

	var lines []models.RecipeIngredient
	require.NoError(t, svc.db.Where("recipe_id = ?", recipe.ID).Find(&lines).Error)
	require.Len(t, lines, 2)
	got := map[uuid.UUID]int{}
	for _, line := range lines {
		got[line.IngredientID] = line.Amount
	}
	assert.Equal(t, map[uuid.UUID]int{seed.flour.ID: 400, seed.sugar.ID: 50}, got)
	assert.NotContains(t, got, seed.salt.ID)

	var stored models.Recipe
	require.NoError(t, svc.db.Preload("Tags").First(&stored, "id = ?", recipe.ID).Error)
	require.Len(t, stored.Tags, 1)
	assert.Equal(t, "quick", stored.Tags[0].Slug)
}

func TestUpdateRequiresAuthor(t *testing.T) {
	svc, seed := setupRecipeService(t)
	ctx := context.Background()

	recipe, err := svc.Create(ctx, seed.author.ID, validInput(seed))
	require.NoError(t, err)

	_, err = svc.Update(ctx, recipe.ID, seed.viewer.ID, validInput(seed))
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.Update(ctx, uuid.New(), seed.author.ID, validInput(seed))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCascadesLinesAndMarkers(t *testing.T) {
	svc, seed := setupRecipeService(t)
	ctx := context.Background()

	recipe, err := svc.Create(ctx, seed.author.ID, validInput(seed))
	require.NoError(t, err)
	other, err := svc.Create(ctx, seed.author.ID, func() *RecipeInput {
		in := validInput(seed)
		in.Name = "Other"
		return in
	}())
	require.NoError(t, err)

	for _, kind := range []models.MarkerKind{models.MarkerFavorited, models.MarkerInCart} {
		marker := models.UserRecipeMarker{UserID: seed.viewer.ID, RecipeID: recipe.ID, Kind: kind}
		require.NoError(t, svc.db.Create(&marker).Error)
	}

	require.ErrorIs(t, svc.Delete(ctx, recipe.ID, seed.viewer.ID), ErrPermissionDenied)
	require.NoError(t, svc.Delete(ctx, recipe.ID, seed.author.ID))

	var count int64
	require.NoError(t, svc.db.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", recipe.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, svc.db.Model(&models.UserRecipeMarker{}).Where("recipe_id = ?", recipe.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, svc.db.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Count(&count).Error)
	assert.Zero(t, count)

	// The sibling recipe keeps its lines.
	require.NoError(t, svc.db.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", other.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestGetProjectsViewerRelativeBooleans(t *testing.T) {
	svc, seed := setupRecipeService(t)
	ctx := context.Background()

	recipe, err := svc.Create(ctx, seed.author.ID, validInput(seed))
	require.NoError(t, err)

	marker := models.UserRecipeMarker{UserID: seed.viewer.ID, RecipeID: recipe.ID, Kind: models.MarkerFavorited}
	require.NoError(t, svc.db.Create(&marker).Error)

	view, err := svc.Get(ctx, recipe.ID, &seed.viewer.ID)
	require.NoError(t, err)
	assert.True(t, view.IsFavorited)
	assert.False(t, view.IsInCart)
	assert.Equal(t, seed.author.Username, view.Author.Username)
	require.Len(t, view.Ingredients, 2)
	names := []string{view.Ingredients[0].Name, view.Ingredients[1].Name}
	assert.ElementsMatch(t, []string{"Salt", "Flour"}, names)
	require.Len(t, view.Tags, 2)

	// Anonymous viewers get false, never an error.
	anon, err := svc.Get(ctx, recipe.ID, nil)
	require.NoError(t, err)
	assert.False(t, anon.IsFavorited)
	assert.False(t, anon.IsInCart)
}

func TestListFiltersByTagAndMarkers(t *testing.T) {
	svc, seed := setupRecipeService(t)
	ctx := context.Background()

	bread, err := svc.Create(ctx, seed.author.ID, validInput(seed))
	require.NoError(t, err)

	soupIn := validInput(seed)
	soupIn.Name = "Soup"
	soupIn.TagIDs = []uuid.UUID{seed.dinner.ID}
	soup, err := svc.Create(ctx, seed.author.ID, soupIn)
	require.NoError(t, err)

	marker := models.UserRecipeMarker{UserID: seed.viewer.ID, RecipeID: soup.ID, Kind: models.MarkerFavorited}
	require.NoError(t, svc.db.Create(&marker).Error)

	views, err := svc.List(ctx, &seed.viewer.ID, RecipeFilter{TagSlugs: []string{"quick"}})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, bread.ID, views[0].ID)

	views, err = svc.List(ctx, &seed.viewer.ID, RecipeFilter{Favorited: true})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, soup.ID, views[0].ID)
	assert.True(t, views[0].IsFavorited)

	// An anonymous listing ignores marker filters and sees everything.
	views, err = svc.List(ctx, nil, RecipeFilter{Favorited: true})
	require.NoError(t, err)
	assert.Len(t, views, 2)
}
