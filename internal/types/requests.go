package types

import (
	"github.com/google/uuid"
)

// IngredientLineRequest is one submitted ingredient line.
type IngredientLineRequest struct {
	ID     uuid.UUID `json:"id" binding:"required"`
	Amount int       `json:"amount"`
}

// CreateRecipeRequest represents the request body for creating a recipe.
// Image is either a base64 data URL or an already-stored object key.
type CreateRecipeRequest struct {
	Name        string                  `json:"name" binding:"required"`
	Text        string                  `json:"text" binding:"required"`
	CookingTime int                     `json:"cooking_time"`
	Image       string                  `json:"image"`
	Tags        []uuid.UUID             `json:"tags"`
	Ingredients []IngredientLineRequest `json:"ingredients"`
}

// UpdateRecipeRequest represents the request body for updating a recipe.
type UpdateRecipeRequest struct {
	Name        string                  `json:"name" binding:"required"`
	Text        string                  `json:"text" binding:"required"`
	CookingTime int                     `json:"cooking_time"`
	Image       string                  `json:"image"`
	Tags        []uuid.UUID             `json:"tags"`
	Ingredients []IngredientLineRequest `json:"ingredients"`
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Password  string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

type CreateTagRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color" binding:"required"`
	Slug  string `json:"slug" binding:"required"`
}
