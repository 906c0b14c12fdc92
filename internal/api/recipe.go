package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/platefeed/backend/internal/middleware"
	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/service"
	"github.com/platefeed/backend/internal/types"
)

type RecipeHandler struct {
	recipes     *service.RecipeService
	markers     *service.MarkerService
	cart        *service.CartService
	authService middleware.TokenValidator
}

func NewRecipeHandler(recipes *service.RecipeService, markers *service.MarkerService, cart *service.CartService, authService middleware.TokenValidator) *RecipeHandler {
	return &RecipeHandler{
		recipes:     recipes,
		markers:     markers,
		cart:        cart,
		authService: authService,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", middleware.OptionalAuthMiddleware(h.authService), h.ListRecipes)
		recipes.GET("/download_shopping_cart", middleware.AuthMiddleware(h.authService), h.DownloadShoppingCart)
		recipes.GET("/:id", middleware.OptionalAuthMiddleware(h.authService), h.GetRecipe)
		recipes.POST("", middleware.AuthMiddleware(h.authService), h.CreateRecipe)
		recipes.PUT("/:id", middleware.AuthMiddleware(h.authService), h.UpdateRecipe)
		recipes.DELETE("/:id", middleware.AuthMiddleware(h.authService), h.DeleteRecipe)
		recipes.POST("/:id/favorite", middleware.AuthMiddleware(h.authService), h.markerAdd(models.MarkerFavorited))
		recipes.DELETE("/:id/favorite", middleware.AuthMiddleware(h.authService), h.markerRemove(models.MarkerFavorited))
		recipes.POST("/:id/shopping_cart", middleware.AuthMiddleware(h.authService), h.markerAdd(models.MarkerInCart))
		recipes.DELETE("/:id/shopping_cart", middleware.AuthMiddleware(h.authService), h.markerRemove(models.MarkerInCart))
	}
}

// viewer returns the authenticated caller's id, or nil for anonymous reads.
func viewer(c *gin.Context) *uuid.UUID {
	if id, ok := middleware.UserID(c); ok {
		return &id
	}
	return nil
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	filter := service.RecipeFilter{
		Favorited: c.Query("is_favorited") == "1",
		InCart:    c.Query("is_in_shopping_cart") == "1",
	}
	if author := c.Query("author"); author != "" {
		authorID, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid author id"})
			return
		}
		filter.AuthorID = &authorID
	}
	if tags := c.Query("tags"); tags != "" {
		filter.TagSlugs = strings.Split(tags, ",")
	}
	filter.Page, _ = strconv.Atoi(c.Query("page"))
	filter.Limit, _ = strconv.Atoi(c.Query("limit"))

	views, err := h.recipes.List(c.Request.Context(), viewer(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": views})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	view, err := h.recipes.Get(c.Request.Context(), recipeID, viewer(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	recipe, err := h.recipes.Create(c.Request.Context(), userID, recipeInput(req.Name, req.Text, req.CookingTime, req.Image, req.Tags, req.Ingredients))
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := h.recipes.Get(c.Request.Context(), recipe.ID, &userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	var req types.UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	recipe, err := h.recipes.Update(c.Request.Context(), recipeID, userID, recipeInput(req.Name, req.Text, req.CookingTime, req.Image, req.Tags, req.Ingredients))
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := h.recipes.Get(c.Request.Context(), recipe.ID, &userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	if err := h.recipes.Delete(c.Request.Context(), recipeID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) markerAdd(kind models.MarkerKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		recipeID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
			return
		}

		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		summary, err := h.markers.Add(c.Request.Context(), userID, recipeID, kind)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, summary)
	}
}

func (h *RecipeHandler) markerRemove(kind models.MarkerKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		recipeID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
			return
		}

		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		if err := h.markers.Remove(c.Request.Context(), userID, recipeID, kind); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	lines, err := h.cart.BuildReport(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shopping_cart.txt"`)
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Status(http.StatusOK)
	if err := service.WriteReport(c.Writer, lines); err != nil {
		_ = c.Error(err)
	}
}

func recipeInput(name, text string, cookingTime int, image string, tags []uuid.UUID, ingredients []types.IngredientLineRequest) *service.RecipeInput {
	in := &service.RecipeInput{
		Name:        name,
		Text:        text,
		CookingTime: cookingTime,
		Image:       image,
		TagIDs:      tags,
	}
	for _, line := range ingredients {
		in.Ingredients = append(in.Ingredients, service.IngredientLine{ID: line.ID, Amount: line.Amount})
	}
	return in
}
