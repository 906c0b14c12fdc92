package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/platefeed/backend/config"
	"github.com/platefeed/backend/internal/api"
	"github.com/platefeed/backend/internal/middleware"
	"github.com/platefeed/backend/internal/router"
	"github.com/platefeed/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
}

// New wires services, handlers and middleware into a runnable server.
// redisClient and media may be nil; the corresponding features degrade
// gracefully.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, media service.MediaStore) *Server {
	authService := service.NewAuthService(db, cfg.JWTSecret)
	recipeService := service.NewRecipeService(db, media, cfg.RecipeDuplicateGuard)
	markerService := service.NewMarkerService(db, media)
	cartService := service.NewCartService(db)
	followService := service.NewFollowService(db, media)
	catalogService := service.NewCatalogService(db)

	var rateLimiter *middleware.RateLimiter
	if redisClient != nil {
		rateLimiter = middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
			Window: time.Minute,
			Limit:  120,
		})
	}

	engine := router.SetupRouter(
		api.NewAuthHandler(authService),
		api.NewUserHandler(authService, followService),
		api.NewCatalogHandler(catalogService),
		api.NewRecipeHandler(recipeService, markerService, cartService, authService),
		rateLimiter,
	)

	return &Server{
		router: engine,
		http: &http.Server{
			Addr:    cfg.ServerHost + ":" + cfg.ServerPort,
			Handler: engine,
		},
	}
}

// Start starts the server
func (s *Server) Start() error {
	log.Printf("Listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
