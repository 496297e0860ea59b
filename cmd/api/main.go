package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/platebook/backend/config"
	"github.com/platebook/backend/internal/api"
	"github.com/platebook/backend/internal/database"
	"github.com/platebook/backend/internal/middleware"
	"github.com/platebook/backend/internal/router"
	"github.com/platebook/backend/internal/server"
	"github.com/platebook/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// The rate limiter is skipped when Redis is unavailable rather than
	// keeping the API down.
	var rateLimiter *middleware.RateLimiter
	if redisClient, err := database.NewRedisClient(cfg); err != nil {
		log.Printf("Redis unavailable, recipe rate limiting disabled: %v", err)
	} else {
		rateLimiter = middleware.NewRecipeWriteRateLimiter(redisClient)
	}

	var storageService service.IStorageService
	if s3Config, err := config.NewS3Config(context.Background(), cfg); err != nil {
		log.Printf("S3 unavailable, image uploads disabled: %v", err)
	} else {
		storageService = service.NewStorageService(s3Config)
	}

	recipeService := service.NewRecipeService(db)
	tokenService := service.NewTokenService(cfg.JWTSecret)
	recipeHandler := api.NewRecipeHandler(recipeService, storageService, tokenService, rateLimiter)

	allowedOrigins := []string{"http://localhost:5173"}
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		allowedOrigins = strings.Split(origins, ",")
	}

	srv := server.New(router.SetupRouter(recipeHandler, db, allowedOrigins), cfg.ServerHost, cfg.ServerPort)

	errChan := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s:%s", cfg.ServerHost, cfg.ServerPort)
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
