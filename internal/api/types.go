package api

import "github.com/pantrychef/backend/internal/service"

// GenerateRecipeRequest is the body for POST /recipes/generate.
type GenerateRecipeRequest struct {
	Ingredients        []string `json:"ingredients" binding:"required,min=1"`
	DietaryPreferences []string `json:"dietary_preferences"`
	MealType           string   `json:"meal_type" binding:"required"`
	Cuisine            string   `json:"cuisine" binding:"required"`
	Difficulty         string   `json:"difficulty" binding:"required"`
}

// SubstituteRequest is the body for POST /ingredients/substitute.
type SubstituteRequest struct {
	Ingredient         string `json:"ingredient" binding:"required"`
	DietaryRestriction string `json:"dietary_restriction"`
}

// StatusCheckRequest is the body for POST /status.
type StatusCheckRequest struct {
	ClientName string `json:"client_name" binding:"required"`
}

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse carries a signed bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// GenerateRecipeResponse is the persisted recipe plus the provider extras.
type GenerateRecipeResponse struct {
	Recipe             any                           `json:"recipe"`
	MissingIngredients []service.GeneratedIngredient `json:"missing_ingredients"`
	Substitutions      []map[string]string           `json:"substitutions"`
	Tips               []string                      `json:"tips"`
}
