package service

import "context"

// RecipeGenerator is implemented by each LLM provider.
type RecipeGenerator interface {
	// GenerateRecipe produces a complete recipe for the given pantry and
	// preferences, including missing ingredients, substitutions and tips.
	GenerateRecipe(ctx context.Context, params GenerateParams) (*GenerationResult, error)

	// SubstituteIngredient suggests replacements for one ingredient,
	// optionally constrained by a dietary restriction.
	SubstituteIngredient(ctx context.Context, ingredient, dietaryRestriction string) (*SubstitutionResult, error)
}
