package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pantrychef/backend/config"
	"github.com/pantrychef/backend/internal/api"
	"github.com/pantrychef/backend/internal/database"
	"github.com/pantrychef/backend/internal/logger"
	"github.com/pantrychef/backend/internal/metrics"
	"github.com/pantrychef/backend/internal/middleware"
	"github.com/pantrychef/backend/internal/server"
	"github.com/pantrychef/backend/internal/service"
)

func main() {
	logger.Init()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := database.New(cfg)
	if err != nil {
		logger.L().Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.L().Fatal("failed to run migrations", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		logger.L().Fatal("failed to connect to Redis", zap.Error(err))
	}

	m := metrics.New()

	ctx := context.Background()

	var generator service.RecipeGenerator
	switch cfg.LLMProvider {
	case "gemini":
		generator, err = service.NewGeminiService(ctx, cfg.LLMAPIKey, m)
	default:
		generator, err = service.NewLLMService(cfg, m)
	}
	if err != nil {
		logger.L().Fatal("failed to initialize LLM provider", zap.Error(err))
	}

	var imageService *service.ImageService
	if !cfg.ImagesDisabled && cfg.OpenAIAPIKey != "" {
		s3Config, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			logger.L().Warn("S3 unavailable, image generation disabled", zap.Error(err))
		} else {
			imageService, err = service.NewImageService(cfg, s3Config, m)
			if err != nil {
				logger.L().Warn("image generation disabled", zap.Error(err))
			}
		}
	}

	cache := service.NewRecipeCache(redisClient)
	recipeService := service.NewRecipeService(db, generator, imageService, cache, m)
	authService := service.NewAuthService(db, cfg.JWTSecret)
	rateLimiter := middleware.NewGenerationRateLimiter(redisClient)

	srv := server.New(cfg, api.Deps{
		Recipes:     recipeService,
		Auth:        authService,
		RateLimiter: rateLimiter,
	}, m)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logger.L().Fatal("server error", zap.Error(err))
		}
	case sig := <-quit:
		logger.L().Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal("shutdown error", zap.Error(err))
	}
	logger.L().Info("server stopped")
}
