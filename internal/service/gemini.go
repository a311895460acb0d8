package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/pantrychef/backend/internal/metrics"
)

// GeminiService is the Gemini-backed recipe generator, selectable with
// LLM_PROVIDER=gemini.
type GeminiService struct {
	model   *genai.GenerativeModel
	metrics *metrics.Metrics
}

// NewGeminiService creates the Gemini provider. metrics may be nil.
func NewGeminiService(ctx context.Context, apiKey string, m *metrics.Metrics) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GeminiService{
		model:   client.GenerativeModel("gemini-1.5-flash"),
		metrics: m,
	}, nil
}

// GenerateRecipe implements RecipeGenerator.
func (s *GeminiService) GenerateRecipe(ctx context.Context, params GenerateParams) (*GenerationResult, error) {
	dietary := "none"
	if len(params.DietaryPreferences) > 0 {
		dietary = strings.Join(params.DietaryPreferences, ", ")
	}

	prompt := recipeSystemPrompt + fmt.Sprintf(`

Generate a recipe using these available ingredients: %s
Dietary preferences: %s
Meal type: %s
Cuisine preference: %s
Difficulty level: %s

The JSON response should be clean and not contain any markdown formatting (e.g., `+"```json"+`).`,
		strings.Join(params.Ingredients, ", "),
		dietary, params.MealType, params.Cuisine, params.Difficulty)

	start := time.Now()
	raw, err := s.generate(ctx, prompt)
	if s.metrics != nil {
		s.metrics.ObserveLLMCall("generate_recipe", start, err)
	}
	if err != nil {
		return nil, err
	}

	clean, err := extractJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("could not find JSON object in response: %w", err)
	}

	var result GenerationResult
	if err := json.Unmarshal([]byte(clean), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe JSON: %w", err)
	}
	if result.Recipe.Name == "" {
		return nil, fmt.Errorf("model response missing recipe name")
	}
	return &result, nil
}

// SubstituteIngredient implements RecipeGenerator.
func (s *GeminiService) SubstituteIngredient(ctx context.Context, ingredient, dietaryRestriction string) (*SubstitutionResult, error) {
	dietaryContext := ""
	if dietaryRestriction != "" {
		dietaryContext = fmt.Sprintf(" for a %s diet", dietaryRestriction)
	}

	prompt := fmt.Sprintf(`Suggest 3-5 good substitutions for %s%s. Return a single clean JSON object with keys 'original_ingredient' (string) and 'substitutions' (array of objects with 'substitute', 'ratio' and 'note' strings). No markdown formatting.`,
		ingredient, dietaryContext)

	start := time.Now()
	raw, err := s.generate(ctx, prompt)
	if s.metrics != nil {
		s.metrics.ObserveLLMCall("substitute_ingredient", start, err)
	}
	if err != nil {
		return nil, err
	}

	clean, err := extractJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("could not find JSON object in response: %w", err)
	}

	var result SubstitutionResult
	if err := json.Unmarshal([]byte(clean), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal substitution JSON: %w", err)
	}
	return &result, nil
}

func (s *GeminiService) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response format from Gemini")
	}
	return string(text), nil
}
