package types

import (
	"github.com/google/uuid"
)

// UserView is the public projection of a user, with the viewer-relative
// subscription flag.
type UserView struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsSubscribed bool      `json:"is_subscribed"`
}

// IngredientLineView resolves a recipe ingredient line to catalog fields.
type IngredientLineView struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int       `json:"amount"`
}

// TagView mirrors the tag catalog entry attached to a recipe.
type TagView struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
	Slug  string    `json:"slug"`
}

// RecipeView is the full read-model projection of a recipe aggregate.
// IsFavorited and IsInCart are computed for the requesting viewer and are
// always false for anonymous viewers.
type RecipeView struct {
	ID          uuid.UUID            `json:"id"`
	Author      UserView             `json:"author"`
	Tags        []TagView            `json:"tags"`
	Ingredients []IngredientLineView `json:"ingredients"`
	Image       string               `json:"image"`
	Name        string               `json:"name"`
	Text        string               `json:"text"`
	CookingTime int                  `json:"cooking_time"`
	IsFavorited bool                 `json:"is_favorited"`
	IsInCart    bool                 `json:"is_in_cart"`
}

// RecipeSummary is the lightweight recipe shape returned by marker and
// subscription endpoints.
type RecipeSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

// SubscriptionView projects a followee with their most recent recipes.
// RecipesCount is the total, independent of the recipes truncation.
type SubscriptionView struct {
	ID           uuid.UUID       `json:"id"`
	Email        string          `json:"email"`
	Username     string          `json:"username"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	IsSubscribed bool            `json:"is_subscribed"`
	Recipes      []RecipeSummary `json:"recipes"`
	RecipesCount int64           `json:"recipes_count"`
}

// ReportLine is one aggregated row of a shopping cart report.
type ReportLine struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}
