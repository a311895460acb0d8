package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// GenerateParams is what the caller knows about the pantry and preferences.
type GenerateParams struct {
	Ingredients        []string
	DietaryPreferences []string
	MealType           string
	Cuisine            string
	Difficulty         string
}

// FlexInt accepts both string and numeric JSON values. LLMs are not
// consistent about the servings field.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = FlexInt(int(num))
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		str = strings.TrimSpace(str)
		// Tolerate values like "4 servings".
		if i := strings.IndexFunc(str, func(r rune) bool { return r < '0' || r > '9' }); i > 0 {
			str = str[:i]
		}
		n, err := strconv.Atoi(str)
		if err != nil {
			return fmt.Errorf("invalid servings value %q", str)
		}
		*f = FlexInt(n)
		return nil
	}

	return fmt.Errorf("invalid servings format")
}

// GeneratedIngredient is one item in the LLM's recipe payload.
type GeneratedIngredient struct {
	Item      string `json:"item"`
	Amount    string `json:"amount"`
	Essential bool   `json:"essential"`
	Reason    string `json:"reason,omitempty"`
}

// GeneratedRecipe mirrors the JSON contract the system prompt demands.
type GeneratedRecipe struct {
	Name            string                `json:"name"`
	Description     string                `json:"description"`
	PrepTime        string                `json:"prepTime"`
	CookTime        string                `json:"cookTime"`
	Servings        FlexInt               `json:"servings"`
	Difficulty      string                `json:"difficulty"`
	Ingredients     []GeneratedIngredient `json:"ingredients"`
	Instructions    []string              `json:"instructions"`
	NutritionalInfo map[string]any        `json:"nutritionalInfo"`
}

// GenerationResult is the complete answer for one generation request.
type GenerationResult struct {
	Recipe             GeneratedRecipe       `json:"recipe"`
	MissingIngredients []GeneratedIngredient `json:"missingIngredients"`
	Substitutions      []map[string]string   `json:"substitutions"`
	Tips               []string              `json:"tips"`
}

// Substitution is one suggested ingredient replacement.
type Substitution struct {
	Substitute string `json:"substitute"`
	Ratio      string `json:"ratio"`
	Note       string `json:"note"`
}

// SubstitutionResult is the answer for a substitution request.
type SubstitutionResult struct {
	OriginalIngredient string         `json:"original_ingredient"`
	Substitutions      []Substitution `json:"substitutions"`
}

// NutritionalInfoStrings flattens the LLM's mixed-type nutrition map to the
// string map the document store keeps.
func (r *GeneratedRecipe) NutritionalInfoStrings() map[string]string {
	if len(r.NutritionalInfo) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(r.NutritionalInfo))
	for k, v := range r.NutritionalInfo {
		switch t := v.(type) {
		case string:
			out[k] = t
		case float64:
			if t == float64(int64(t)) {
				out[k] = strconv.FormatInt(int64(t), 10)
			} else {
				out[k] = strconv.FormatFloat(t, 'f', -1, 64)
			}
		default:
			out[k] = fmt.Sprintf("%v", v)
		}
	}
	return out
}

// extractJSON pulls the first top-level JSON object out of a model response
// that may be wrapped in prose or markdown fences.
func extractJSON(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || start > end {
		return "", fmt.Errorf("no JSON object found in model response")
	}
	return raw[start : end+1], nil
}
