package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pantrychef/backend/internal/logger"
	"github.com/pantrychef/backend/internal/metrics"
	"github.com/pantrychef/backend/internal/model"
)

const defaultListLimit = 50

// ErrRecipeNotFound is returned when a recipe lookup misses.
var ErrRecipeNotFound = errors.New("recipe not found")

// ErrAlreadySaved is returned when a user saves the same recipe twice.
var ErrAlreadySaved = errors.New("recipe already saved")

// RecipeService generates recipes through the configured provider and keeps
// the resulting documents in the database, with a Redis read-through cache
// in front of point lookups.
type RecipeService struct {
	db        *gorm.DB
	generator RecipeGenerator
	images    *ImageService
	cache     *RecipeCache
	metrics   *metrics.Metrics
}

// NewRecipeService wires the recipe pipeline. images, cache and metrics may
// each be nil.
func NewRecipeService(db *gorm.DB, generator RecipeGenerator, images *ImageService, cache *RecipeCache, m *metrics.Metrics) *RecipeService {
	return &RecipeService{
		db:        db,
		generator: generator,
		images:    images,
		cache:     cache,
		metrics:   m,
	}
}

// Generate asks the provider for a recipe, stores the document and returns
// both the persisted recipe and the provider extras (missing ingredients,
// substitutions, tips). Nothing is persisted when generation fails.
func (s *RecipeService) Generate(ctx context.Context, params GenerateParams) (*model.Recipe, *GenerationResult, error) {
	result, err := s.generator.GenerateRecipe(ctx, params)
	if err != nil {
		return nil, nil, err
	}

	recipe := s.toModel(&result.Recipe, params)

	if s.images != nil {
		imageURL, err := s.images.GenerateRecipeImage(ctx, recipe.Name)
		if err != nil {
			logger.L().Warn("image generation failed, storing recipe without image",
				zap.String("recipe", recipe.Name), zap.Error(err))
		} else {
			recipe.ImageURL = imageURL
		}
	}

	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to store recipe: %w", err)
	}
	if s.metrics != nil {
		s.metrics.RecipesStored.Inc()
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, recipe); err != nil {
			logger.L().Warn("failed to cache recipe", zap.Error(err))
		}
	}

	logger.L().Info("recipe generated",
		zap.String("recipe_id", recipe.ID.String()),
		zap.String("name", recipe.Name),
	)
	return recipe, result, nil
}

// toModel converts the provider payload into a persisted document.
func (s *RecipeService) toModel(gen *GeneratedRecipe, params GenerateParams) *model.Recipe {
	ingredients := make(model.JSONBIngredients, 0, len(gen.Ingredients))
	for _, ing := range gen.Ingredients {
		ingredients = append(ingredients, model.RecipeIngredient{
			Item:      ing.Item,
			Amount:    ing.Amount,
			Essential: ing.Essential,
		})
	}

	return &model.Recipe{
		ID:              uuid.New(),
		Name:            gen.Name,
		Description:     gen.Description,
		PrepTime:        gen.PrepTime,
		CookTime:        gen.CookTime,
		Servings:        int(gen.Servings),
		Difficulty:      gen.Difficulty,
		Cuisine:         params.Cuisine,
		MealType:        params.MealType,
		Ingredients:     ingredients,
		Instructions:    model.JSONBStringArray(gen.Instructions),
		NutritionalInfo: model.JSONBStringMap(gen.NutritionalInfoStrings()),
		Embedding:       GenerateEmbedding(gen.Name + " " + gen.Description),
	}
}

// List returns stored recipes, newest first. When query is non-empty the
// results are ordered by embedding distance to the query on Postgres; other
// dialects fall back to a name match.
func (s *RecipeService) List(ctx context.Context, query string, limit int) ([]model.Recipe, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}

	db := s.db.WithContext(ctx).Limit(limit)

	var recipes []model.Recipe
	if query != "" {
		if s.db.Dialector.Name() == "postgres" {
			db = db.Clauses(clause.OrderBy{
				Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{GenerateEmbedding(query)}},
			})
		} else {
			like := "%" + strings.ToLower(query) + "%"
			db = db.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like).Order("created_at DESC")
		}
	} else {
		db = db.Order("created_at DESC")
	}

	if err := db.Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, nil
}

// GetByID returns a single recipe, consulting the cache first.
func (s *RecipeService) GetByID(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id.String())
		if err != nil {
			logger.L().Warn("recipe cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	var recipe model.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to fetch recipe: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, &recipe); err != nil {
			logger.L().Warn("failed to cache recipe", zap.Error(err))
		}
	}
	return &recipe, nil
}

// Substitute asks the provider for replacements for one ingredient.
func (s *RecipeService) Substitute(ctx context.Context, ingredient, dietaryRestriction string) (*SubstitutionResult, error) {
	return s.generator.SubstituteIngredient(ctx, ingredient, dietaryRestriction)
}

// SaveForUser bookmarks a recipe for a user.
func (s *RecipeService) SaveForUser(ctx context.Context, userID, recipeID uuid.UUID) error {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).Select("id").First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecipeNotFound
		}
		return fmt.Errorf("failed to fetch recipe: %w", err)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.SavedRecipe{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check saved recipes: %w", err)
	}
	if count > 0 {
		return ErrAlreadySaved
	}

	saved := &model.SavedRecipe{
		ID:       uuid.New(),
		UserID:   userID,
		RecipeID: recipeID,
	}
	if err := s.db.WithContext(ctx).Create(saved).Error; err != nil {
		return fmt.Errorf("failed to save recipe: %w", err)
	}
	return nil
}

// ListSavedForUser returns the recipes a user bookmarked, most recent first.
func (s *RecipeService) ListSavedForUser(ctx context.Context, userID uuid.UUID) ([]model.Recipe, error) {
	var recipes []model.Recipe
	err := s.db.WithContext(ctx).
		Joins("JOIN saved_recipes ON saved_recipes.recipe_id = recipes.id").
		Where("saved_recipes.user_id = ?", userID).
		Order("saved_recipes.saved_at DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list saved recipes: %w", err)
	}
	return recipes, nil
}

// CreateStatusCheck records a client liveness ping.
func (s *RecipeService) CreateStatusCheck(ctx context.Context, clientName string) (*model.StatusCheck, error) {
	check := &model.StatusCheck{
		ID:         uuid.New(),
		ClientName: clientName,
		Timestamp:  time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(check).Error; err != nil {
		return nil, fmt.Errorf("failed to store status check: %w", err)
	}
	return check, nil
}

// ListStatusChecks returns recent status checks, newest first.
func (s *RecipeService) ListStatusChecks(ctx context.Context, limit int) ([]model.StatusCheck, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	var checks []model.StatusCheck
	if err := s.db.WithContext(ctx).Order("timestamp DESC").Limit(limit).Find(&checks).Error; err != nil {
		return nil, fmt.Errorf("failed to list status checks: %w", err)
	}
	return checks, nil
}
