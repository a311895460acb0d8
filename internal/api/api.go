// Package api wires the HTTP handlers for the recipe service.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pantrychef/backend/internal/middleware"
	"github.com/pantrychef/backend/internal/service"
)

// Deps are the constructed services the handlers depend on.
type Deps struct {
	Recipes     *service.RecipeService
	Auth        *service.AuthService
	RateLimiter *middleware.RateLimiter
}

// SetupAPI mounts all v1 routes on the router.
func SetupAPI(router *gin.Engine, deps Deps) {
	v1 := router.Group("/api/v1")
	{
		recipeHandler := NewRecipeHandler(deps.Recipes, deps.Auth, deps.RateLimiter)
		authHandler := NewAuthHandler(deps.Auth)
		statusHandler := NewStatusHandler(deps.Recipes)

		recipeHandler.RegisterRoutes(v1)
		authHandler.RegisterRoutes(v1)
		statusHandler.RegisterRoutes(v1)
	}
}
