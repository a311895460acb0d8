package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pantrychef/backend/internal/model"
)

const recipeCacheTTL = 24 * time.Hour

// RecipeCache is a read-through Redis cache for recipe documents.
type RecipeCache struct {
	redis *redis.Client
}

// NewRecipeCache wraps the given Redis client.
func NewRecipeCache(client *redis.Client) *RecipeCache {
	return &RecipeCache{redis: client}
}

func recipeKey(id string) string {
	return fmt.Sprintf("recipe:%s", id)
}

// Put stores a recipe document.
func (c *RecipeCache) Put(ctx context.Context, recipe *model.Recipe) error {
	data, err := json.Marshal(recipe)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe: %w", err)
	}
	if err := c.redis.Set(ctx, recipeKey(recipe.ID.String()), data, recipeCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache recipe: %w", err)
	}
	return nil
}

// Get returns the cached recipe, or (nil, nil) on a miss.
func (c *RecipeCache) Get(ctx context.Context, id string) (*model.Recipe, error) {
	data, err := c.redis.Get(ctx, recipeKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe cache: %w", err)
	}

	var recipe model.Recipe
	if err := json.Unmarshal(data, &recipe); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached recipe: %w", err)
	}
	return &recipe, nil
}

// Delete drops a recipe from the cache.
func (c *RecipeCache) Delete(ctx context.Context, id string) error {
	return c.redis.Del(ctx, recipeKey(id)).Err()
}
