package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/platefeed/backend/internal/api"
	"github.com/platefeed/backend/internal/middleware"
)

// SetupRouter configures the application routes
func SetupRouter(
	authHandler *api.AuthHandler,
	userHandler *api.UserHandler,
	catalogHandler *api.CatalogHandler,
	recipeHandler *api.RecipeHandler,
	rateLimiter *middleware.RateLimiter,
) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "Accept", "Origin"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}))

	v1 := router.Group("/api/v1")
	if rateLimiter != nil {
		v1.Use(rateLimiter.Middleware())
	}

	authHandler.RegisterRoutes(v1)
	userHandler.RegisterRoutes(v1)
	catalogHandler.RegisterRoutes(v1)
	recipeHandler.RegisterRoutes(v1)

	return router
}
