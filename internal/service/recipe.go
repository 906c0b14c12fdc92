package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/types"
)

// Cooking time and ingredient amounts are persisted as smallint-range
// values.
const (
	maxCookingTime = 32767
	maxAmount      = 32767
)

// IngredientLine is one submitted (ingredient, amount) pair.
type IngredientLine struct {
	ID     uuid.UUID
	Amount int
}

// RecipeInput carries the client-submitted fields of a recipe aggregate.
type RecipeInput struct {
	Name        string
	Text        string
	CookingTime int
	Image       string
	TagIDs      []uuid.UUID
	Ingredients []IngredientLine
}

// RecipeFilter narrows recipe listings.
type RecipeFilter struct {
	AuthorID  *uuid.UUID
	TagSlugs  []string
	Favorited bool
	InCart    bool
	Page      int
	Limit     int
}

// RecipeService validates and persists recipe aggregates and derives their
// read-model projections.
type RecipeService struct {
	db               *gorm.DB
	media            MediaStore
	rejectDuplicates bool
}

// NewRecipeService creates a new RecipeService instance. When
// rejectDuplicates is set, creating a recipe identical to one of the same
// author (name, text and cooking time) is rejected.
func NewRecipeService(db *gorm.DB, media MediaStore, rejectDuplicates bool) *RecipeService {
	return &RecipeService{
		db:               db,
		media:            media,
		rejectDuplicates: rejectDuplicates,
	}
}

// validate runs the aggregate checks in order; the first violation wins.
// It returns the resolved tag rows so persistence does not re-fetch them.
func (s *RecipeService) validate(ctx context.Context, authorID uuid.UUID, excludeID *uuid.UUID, in *RecipeInput) ([]models.Tag, error) {
	if len(in.TagIDs) == 0 {
		return nil, &ValidationError{Reason: "tags empty or duplicate"}
	}
	tagSet := make(map[uuid.UUID]struct{}, len(in.TagIDs))
	for _, id := range in.TagIDs {
		tagSet[id] = struct{}{}
	}
	if len(tagSet) != len(in.TagIDs) {
		return nil, &ValidationError{Reason: "tags empty or duplicate"}
	}

	var tags []models.Tag
	if err := s.db.WithContext(ctx).Where("id IN ?", in.TagIDs).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(in.TagIDs) {
		return nil, &ValidationError{Reason: "unknown tag"}
	}

	if len(in.Ingredients) == 0 {
		return nil, &ValidationError{Reason: "ingredients empty"}
	}
	ids := make([]uuid.UUID, 0, len(in.Ingredients))
	for _, line := range in.Ingredients {
		ids = append(ids, line.ID)
	}
	var catalog []models.Ingredient
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&catalog).Error; err != nil {
		return nil, err
	}
	known := make(map[uuid.UUID]struct{}, len(catalog))
	for _, ing := range catalog {
		known[ing.ID] = struct{}{}
	}
	seen := make(map[uuid.UUID]struct{}, len(in.Ingredients))
	for _, line := range in.Ingredients {
		if _, ok := known[line.ID]; !ok {
			return nil, &ValidationError{Reason: "unknown ingredient"}
		}
		if line.Amount < 1 {
			return nil, &ValidationError{Reason: "amount below minimum"}
		}
		if line.Amount > maxAmount {
			return nil, &ValidationError{Reason: "amount above maximum"}
		}
		if _, dup := seen[line.ID]; dup {
			return nil, &ValidationError{Reason: "duplicate ingredient"}
		}
		seen[line.ID] = struct{}{}
	}

	if in.CookingTime < 1 {
		return nil, &ValidationError{Reason: "cooking time below minimum"}
	}
	if in.CookingTime > maxCookingTime {
		return nil, &ValidationError{Reason: "cooking time above maximum"}
	}

	if s.rejectDuplicates {
		query := s.db.WithContext(ctx).Model(&models.Recipe{}).
			Where("author_id = ? AND name = ? AND text = ? AND cooking_time = ?",
				authorID, in.Name, in.Text, in.CookingTime)
		if excludeID != nil {
			query = query.Where("id <> ?", *excludeID)
		}
		var count int64
		if err := query.Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, &ValidationError{Reason: "duplicate recipe"}
		}
	}

	return tags, nil
}

// storeImage uploads a base64 data URL through the media store; a non-data
// value is treated as an already-stored object key.
func (s *RecipeService) storeImage(ctx context.Context, image string) (string, error) {
	if image == "" {
		return "", nil
	}
	data, contentType, isDataURL, err := DecodeImageDataURL(image)
	if err != nil {
		return "", err
	}
	if !isDataURL {
		return image, nil
	}
	if s.media == nil {
		return "", &ValidationError{Reason: "image uploads not supported"}
	}
	return s.media.Store(ctx, data, contentType)
}

// Create validates and persists a new recipe aggregate. The recipe row, its
// tag references and its ingredient lines are written in one transaction.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, in *RecipeInput) (*models.Recipe, error) {
	tags, err := s.validate(ctx, authorID, nil, in)
	if err != nil {
		return nil, err
	}

	imageKey, err := s.storeImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        in.Name,
		Text:        in.Text,
		CookingTime: in.CookingTime,
		ImageKey:    imageKey,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Append(&tags); err != nil {
			return err
		}
		for _, line := range in.Ingredients {
			item := models.RecipeIngredient{
				RecipeID:     recipe.ID,
				IngredientID: line.ID,
				Amount:       line.Amount,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// Update re-validates the aggregate and replaces its tag set and ingredient
// lines wholesale. Only the author may update.
func (s *RecipeService) Update(ctx context.Context, recipeID, actorID uuid.UUID, in *RecipeInput) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if recipe.AuthorID != actorID {
		return nil, ErrPermissionDenied
	}

	tags, err := s.validate(ctx, actorID, &recipe.ID, in)
	if err != nil {
		return nil, err
	}

	if in.Image != "" {
		imageKey, err := s.storeImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		recipe.ImageKey = imageKey
	}
	recipe.Name = in.Name
	recipe.Text = in.Text
	recipe.CookingTime = in.CookingTime

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&recipe).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Replace(&tags); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		for _, line := range in.Ingredients {
			item := models.RecipeIngredient{
				RecipeID:     recipe.ID,
				IngredientID: line.ID,
				Amount:       line.Amount,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// Delete removes a recipe together with its ingredient lines, markers and
// tag references. Only the author may delete.
func (s *RecipeService) Delete(ctx context.Context, recipeID, actorID uuid.UUID) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if recipe.AuthorID != actorID {
		return ErrPermissionDenied
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.UserRecipeMarker{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&models.Recipe{}, "id = ?", recipe.ID).Error
	})
}

// Get loads one recipe and projects it for the given viewer. A nil viewer is
// an anonymous request and gets false marker booleans.
func (s *RecipeService) Get(ctx context.Context, recipeID uuid.UUID, viewerID *uuid.UUID) (*types.RecipeView, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		First(&recipe, "id = ?", recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	views, err := s.project(ctx, []models.Recipe{recipe}, viewerID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns recipe projections newest first, optionally filtered by
// author, tag slugs, or the viewer's own markers.
func (s *RecipeService) List(ctx context.Context, viewerID *uuid.UUID, f RecipeFilter) ([]types.RecipeView, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{}).Order("recipes.created_at DESC")

	if f.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *f.AuthorID)
	}
	if len(f.TagSlugs) > 0 {
		query = query.
			Joins("JOIN recipe_tags ON recipe_tags.recipe_id = recipes.id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.TagSlugs).
			Distinct("recipes.*")
	}
	if f.Favorited && viewerID != nil {
		query = query.Where("recipes.id IN (?)", s.markerSubquery(*viewerID, models.MarkerFavorited))
	}
	if f.InCart && viewerID != nil {
		query = query.Where("recipes.id IN (?)", s.markerSubquery(*viewerID, models.MarkerInCart))
	}
	if f.Limit > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * f.Limit).Limit(f.Limit)
	}

	var recipes []models.Recipe
	if err := query.Preload("Tags").Preload("Ingredients.Ingredient").Find(&recipes).Error; err != nil {
		return nil, err
	}
	return s.project(ctx, recipes, viewerID)
}

func (s *RecipeService) markerSubquery(userID uuid.UUID, kind models.MarkerKind) *gorm.DB {
	return s.db.Model(&models.UserRecipeMarker{}).
		Select("recipe_id").
		Where("user_id = ? AND kind = ?", userID, kind)
}

// project builds the read-model views: resolved tags and ingredient lines,
// author profile, image URL and the viewer-relative marker booleans.
func (s *RecipeService) project(ctx context.Context, recipes []models.Recipe, viewerID *uuid.UUID) ([]types.RecipeView, error) {
	if len(recipes) == 0 {
		return []types.RecipeView{}, nil
	}

	recipeIDs := make([]uuid.UUID, 0, len(recipes))
	authorIDs := make([]uuid.UUID, 0, len(recipes))
	for _, r := range recipes {
		recipeIDs = append(recipeIDs, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
	}

	var authors []models.User
	if err := s.db.WithContext(ctx).Where("id IN ?", authorIDs).Find(&authors).Error; err != nil {
		return nil, err
	}
	authorByID := make(map[uuid.UUID]models.User, len(authors))
	for _, u := range authors {
		authorByID[u.ID] = u
	}

	marked := make(map[uuid.UUID]map[models.MarkerKind]bool)
	followed := make(map[uuid.UUID]bool)
	if viewerID != nil {
		var markers []models.UserRecipeMarker
		err := s.db.WithContext(ctx).
			Where("user_id = ? AND recipe_id IN ?", *viewerID, recipeIDs).
			Find(&markers).Error
		if err != nil {
			return nil, err
		}
		for _, m := range markers {
			if marked[m.RecipeID] == nil {
				marked[m.RecipeID] = make(map[models.MarkerKind]bool)
			}
			marked[m.RecipeID][m.Kind] = true
		}

		var edges []models.FollowEdge
		err = s.db.WithContext(ctx).
			Where("follower_id = ? AND followee_id IN ?", *viewerID, authorIDs).
			Find(&edges).Error
		if err != nil {
			return nil, err
		}
		for _, e := range edges {
			followed[e.FolloweeID] = true
		}
	}

	views := make([]types.RecipeView, 0, len(recipes))
	for _, r := range recipes {
		author := authorByID[r.AuthorID]
		view := types.RecipeView{
			ID: r.ID,
			Author: types.UserView{
				ID:           author.ID,
				Email:        author.Email,
				Username:     author.Username,
				FirstName:    author.FirstName,
				LastName:     author.LastName,
				IsSubscribed: followed[r.AuthorID],
			},
			Tags:        make([]types.TagView, 0, len(r.Tags)),
			Ingredients: make([]types.IngredientLineView, 0, len(r.Ingredients)),
			Name:        r.Name,
			Text:        r.Text,
			CookingTime: r.CookingTime,
			IsFavorited: marked[r.ID][models.MarkerFavorited],
			IsInCart:    marked[r.ID][models.MarkerInCart],
		}
		for _, t := range r.Tags {
			view.Tags = append(view.Tags, types.TagView{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug})
		}
		for _, line := range r.Ingredients {
			view.Ingredients = append(view.Ingredients, types.IngredientLineView{
				ID:              line.IngredientID,
				Name:            line.Ingredient.Name,
				MeasurementUnit: line.Ingredient.MeasurementUnit,
				Amount:          line.Amount,
			})
		}
		imageURL, err := s.resolveImage(ctx, r.ImageKey)
		if err != nil {
			return nil, err
		}
		view.Image = imageURL
		views = append(views, view)
	}
	return views, nil
}

func (s *RecipeService) resolveImage(ctx context.Context, key string) (string, error) {
	if key == "" || s.media == nil {
		return "", nil
	}
	return s.media.ResolveURL(ctx, key)
}
