package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pantrychef/backend/internal/logger"
	"github.com/pantrychef/backend/internal/middleware"
	"github.com/pantrychef/backend/internal/service"
)

// RecipeHandler serves recipe generation, browsing and bookmarking.
type RecipeHandler struct {
	recipes     *service.RecipeService
	authService *service.AuthService
	rateLimiter *middleware.RateLimiter
}

// NewRecipeHandler creates a RecipeHandler. rateLimiter may be nil to
// disable limiting on the generation endpoint.
func NewRecipeHandler(recipes *service.RecipeService, authService *service.AuthService, rateLimiter *middleware.RateLimiter) *RecipeHandler {
	return &RecipeHandler{
		recipes:     recipes,
		authService: authService,
		rateLimiter: rateLimiter,
	}
}

// RegisterRoutes mounts the recipe routes on the given group.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/saved", middleware.AuthMiddleware(h.authService), h.ListSaved)
		recipes.GET("/:id", h.GetRecipe)
		if h.rateLimiter != nil {
			recipes.POST("/generate", h.rateLimiter.Middleware(), h.GenerateRecipe)
		} else {
			recipes.POST("/generate", h.GenerateRecipe)
		}
		recipes.POST("/:id/save", middleware.AuthMiddleware(h.authService), h.SaveRecipe)
	}
	router.POST("/ingredients/substitute", h.SubstituteIngredient)
}

// GenerateRecipe creates a recipe from the caller's pantry and preferences.
func (h *RecipeHandler) GenerateRecipe(c *gin.Context) {
	var req GenerateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	recipe, result, err := h.recipes.Generate(c.Request.Context(), service.GenerateParams{
		Ingredients:        req.Ingredients,
		DietaryPreferences: req.DietaryPreferences,
		MealType:           req.MealType,
		Cuisine:            req.Cuisine,
		Difficulty:         req.Difficulty,
	})
	if err != nil {
		logger.L().Error("recipe generation failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "recipe generation failed"})
		return
	}

	c.JSON(http.StatusOK, GenerateRecipeResponse{
		Recipe:             recipe,
		MissingIngredients: result.MissingIngredients,
		Substitutions:      result.Substitutions,
		Tips:               result.Tips,
	})
}

// ListRecipes returns stored recipes, optionally ranked against ?q=.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	recipes, err := h.recipes.List(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		logger.L().Error("failed to list recipes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch recipes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// GetRecipe returns one recipe by ID.
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe ID"})
		return
	}

	recipe, err := h.recipes.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrRecipeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
			return
		}
		logger.L().Error("failed to fetch recipe", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch recipe"})
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// SubstituteIngredient suggests replacements for one ingredient.
func (h *RecipeHandler) SubstituteIngredient(c *gin.Context) {
	var req SubstituteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.recipes.Substitute(c.Request.Context(), req.Ingredient, req.DietaryRestriction)
	if err != nil {
		logger.L().Error("substitution failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "substitution failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// SaveRecipe bookmarks a recipe for the authenticated user.
func (h *RecipeHandler) SaveRecipe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe ID"})
		return
	}

	if err := h.recipes.SaveForUser(c.Request.Context(), userID, recipeID); err != nil {
		switch {
		case errors.Is(err, service.ErrRecipeNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		case errors.Is(err, service.ErrAlreadySaved):
			c.JSON(http.StatusConflict, gin.H{"error": "recipe already saved"})
		default:
			logger.L().Error("failed to save recipe", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save recipe"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "saved"})
}

// ListSaved returns the authenticated user's bookmarked recipes.
func (h *RecipeHandler) ListSaved(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	recipes, err := h.recipes.ListSavedForUser(c.Request.Context(), userID)
	if err != nil {
		logger.L().Error("failed to list saved recipes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch saved recipes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}
