package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pantrychef/backend/config"
	"github.com/pantrychef/backend/internal/logger"
	"github.com/pantrychef/backend/internal/metrics"
)

const recipeSystemPrompt = `You are a professional chef and nutritionist AI assistant. You help users create delicious recipes based on their available ingredients and dietary preferences.

Your tasks:
1. Generate complete recipes with ingredients and step-by-step instructions
2. Identify missing ingredients and suggest shopping lists
3. Recommend ingredient substitutions when needed
4. Adapt recipes for dietary restrictions
5. Provide cooking tips and nutritional information

Always respond in valid JSON format with this structure:
{
  "recipe": {
    "name": "Recipe Name",
    "description": "Brief description",
    "prepTime": "15 minutes",
    "cookTime": "30 minutes",
    "servings": 4,
    "difficulty": "Easy/Medium/Hard",
    "ingredients": [
      {"item": "ingredient name", "amount": "1 cup", "essential": true}
    ],
    "instructions": [
      "Step 1: ...",
      "Step 2: ..."
    ],
    "nutritionalInfo": {
      "calories": 350,
      "protein": "25g",
      "carbs": "30g",
      "fat": "15g"
    }
  },
  "missingIngredients": [
    {"item": "missing ingredient", "amount": "1 tsp", "reason": "adds flavor"}
  ],
  "substitutions": [
    {"original": "butter", "substitute": "olive oil", "ratio": "1:1", "note": "for dairy-free option"}
  ],
  "tips": [
    "Cooking tip 1",
    "Cooking tip 2"
  ]
}`

// chatMessage is one turn in a chat-completions request.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the chat-completions request body.
type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
	Temperature    float64           `json:"temperature"`
}

// chatResponse is the subset of the chat-completions response we read.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// LLMService generates recipes through a DeepSeek-compatible
// chat-completions endpoint.
type LLMService struct {
	apiKey  string
	apiURL  string
	model   string
	client  *http.Client
	metrics *metrics.Metrics
}

// NewLLMService creates the DeepSeek-backed provider. metrics may be nil.
func NewLLMService(cfg *config.Config, m *metrics.Metrics) (*LLMService, error) {
	if cfg.LLMAPIKey == "" {
		return nil, fmt.Errorf("LLM API key must be set")
	}
	return &LLMService{
		apiKey:  cfg.LLMAPIKey,
		apiURL:  cfg.LLMAPIURL,
		model:   "deepseek-chat",
		client:  &http.Client{Timeout: 60 * time.Second},
		metrics: m,
	}, nil
}

// GenerateRecipe implements RecipeGenerator.
func (s *LLMService) GenerateRecipe(ctx context.Context, params GenerateParams) (*GenerationResult, error) {
	dietary := "none"
	if len(params.DietaryPreferences) > 0 {
		dietary = strings.Join(params.DietaryPreferences, ", ")
	}

	prompt := fmt.Sprintf(`Generate a recipe using these available ingredients: %s

Dietary preferences: %s
Meal type: %s
Cuisine preference: %s
Difficulty level: %s

Please create a complete recipe, identify any missing essential ingredients, suggest substitutions for dietary restrictions, and provide helpful cooking tips.

Respond only in valid JSON format as specified in your system message.`,
		strings.Join(params.Ingredients, ", "),
		dietary, params.MealType, params.Cuisine, params.Difficulty)

	start := time.Now()
	content, err := s.chat(ctx, recipeSystemPrompt, prompt)
	if s.metrics != nil {
		s.metrics.ObserveLLMCall("generate_recipe", start, err)
	}
	if err != nil {
		return nil, err
	}

	var result GenerationResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		// Some responses wrap the JSON in prose; extract and retry the parse.
		extracted, exErr := extractJSON(content)
		if exErr != nil {
			return nil, fmt.Errorf("invalid model response: %w", err)
		}
		if err := json.Unmarshal([]byte(extracted), &result); err != nil {
			return nil, fmt.Errorf("invalid model response: %w", err)
		}
	}

	if result.Recipe.Name == "" {
		return nil, fmt.Errorf("model response missing recipe name")
	}
	return &result, nil
}

// SubstituteIngredient implements RecipeGenerator.
func (s *LLMService) SubstituteIngredient(ctx context.Context, ingredient, dietaryRestriction string) (*SubstitutionResult, error) {
	dietaryContext := ""
	if dietaryRestriction != "" {
		dietaryContext = fmt.Sprintf(" for %s diet", dietaryRestriction)
	}

	prompt := fmt.Sprintf(`Suggest 3-5 good substitutions for %s%s.

Respond in JSON format:
{
  "original_ingredient": "%s",
  "substitutions": [
    {"substitute": "substitute name", "ratio": "1:1", "note": "why this works"}
  ]
}`, ingredient, dietaryContext, ingredient)

	start := time.Now()
	content, err := s.chat(ctx, "You are a professional chef. Respond only with valid JSON.", prompt)
	if s.metrics != nil {
		s.metrics.ObserveLLMCall("substitute_ingredient", start, err)
	}
	if err != nil {
		return nil, err
	}

	var result SubstitutionResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		extracted, exErr := extractJSON(content)
		if exErr != nil {
			return nil, fmt.Errorf("invalid model response: %w", err)
		}
		if err := json.Unmarshal([]byte(extracted), &result); err != nil {
			return nil, fmt.Errorf("invalid model response: %w", err)
		}
	}
	return &result, nil
}

// chat performs one chat-completions round trip and returns the message
// content.
func (s *LLMService) chat(ctx context.Context, system, user string) (string, error) {
	reqBody := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
		Temperature:    0.9,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		logger.L().Warn("llm request failed",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return "", fmt.Errorf("LLM request failed with status %d", resp.StatusCode)
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in LLM response")
	}
	return result.Choices[0].Message.Content, nil
}
