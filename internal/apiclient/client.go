// Package apiclient is the HTTP client for the recipe API. Every call gets a
// per-operation deadline and failures come back classified so callers can
// retry or report them appropriately.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Recipe is the recipe document as served by the API.
type Recipe struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	PrepTime        string            `json:"prep_time"`
	CookTime        string            `json:"cook_time"`
	Servings        int               `json:"servings"`
	Difficulty      string            `json:"difficulty"`
	Ingredients     []Ingredient      `json:"ingredients"`
	Instructions    []string          `json:"instructions"`
	NutritionalInfo map[string]string `json:"nutritional_info,omitempty"`
	ImageURL        string            `json:"image_url,omitempty"`
}

// Ingredient is one item+amount pair in a recipe.
type Ingredient struct {
	Item      string `json:"item"`
	Amount    string `json:"amount"`
	Essential bool   `json:"essential"`
}

// GenerateRequest is the payload for recipe generation.
type GenerateRequest struct {
	Ingredients        []string `json:"ingredients"`
	DietaryPreferences []string `json:"dietary_preferences,omitempty"`
	MealType           string   `json:"meal_type"`
	Cuisine            string   `json:"cuisine"`
	Difficulty         string   `json:"difficulty"`
}

// GenerateResponse carries the generated recipe plus the advisory lists.
type GenerateResponse struct {
	Recipe             Recipe              `json:"recipe"`
	MissingIngredients []Ingredient        `json:"missing_ingredients"`
	Substitutions      []map[string]string `json:"substitutions"`
	Tips               []string            `json:"tips"`
}

// SubstituteRequest asks for replacements for one ingredient.
type SubstituteRequest struct {
	Ingredient         string `json:"ingredient"`
	DietaryRestriction string `json:"dietary_restriction,omitempty"`
}

// SubstituteResponse lists suggested replacements.
type SubstituteResponse struct {
	OriginalIngredient string `json:"original_ingredient"`
	Substitutions      []struct {
		Substitute string `json:"substitute"`
		Ratio      string `json:"ratio"`
		Note       string `json:"note"`
	} `json:"substitutions"`
}

// Client talks to the recipe API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the API at baseURL. httpClient may be nil.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// ListRecipes fetches the stored recipes.
func (c *Client) ListRecipes(ctx context.Context) ([]Recipe, error) {
	var out struct {
		Recipes []Recipe `json:"recipes"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/recipes", nil, &out); err != nil {
		return nil, err
	}
	return out.Recipes, nil
}

// GetRecipe fetches one recipe by id.
func (c *Client) GetRecipe(ctx context.Context, id string) (*Recipe, error) {
	var out Recipe
	if err := c.do(ctx, http.MethodGet, "/api/v1/recipes/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Generate requests a new recipe from the pantry contents and preferences.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	var out GenerateResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/recipes/generate", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Substitute requests replacements for a single ingredient.
func (c *Client) Substitute(ctx context.Context, req SubstituteRequest) (*SubstituteResponse, error) {
	var out SubstituteResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/ingredients/substitute", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindOther, Op: op, Err: fmt.Errorf("marshal request: %w", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Kind: KindOther, Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return classify(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &Error{Kind: KindServer, Status: resp.StatusCode, Op: op}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindOther, Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
