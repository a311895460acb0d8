// Package session holds the client-side state for one recipe-building
// session: the pantry ingredient list, preference choices, and the result of
// the last generation. Network operations go through the retry wrapper and
// report outcomes to an injected notifier.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pantrychef/backend/internal/apiclient"
	"github.com/pantrychef/backend/internal/retry"
)

const (
	readTimeout     = 10 * time.Second
	generateTimeout = 30 * time.Second
)

// Validation failures reported before any network call is made.
var (
	ErrEmptyIngredient     = errors.New("ingredient cannot be empty")
	ErrDuplicateIngredient = errors.New("ingredient already added")
	ErrNoIngredients       = errors.New("add at least one ingredient before generating")
	ErrMissingPreferences  = errors.New("choose a meal type, cuisine and difficulty first")
	ErrGenerationInFlight  = errors.New("a recipe is already being generated")
)

// Notifier is the user-visible message sink (a toast surface in the UI).
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// API is the subset of the recipe API the session drives.
type API interface {
	ListRecipes(ctx context.Context) ([]apiclient.Recipe, error)
	Generate(ctx context.Context, req apiclient.GenerateRequest) (*apiclient.GenerateResponse, error)
	Substitute(ctx context.Context, req apiclient.SubstituteRequest) (*apiclient.SubstituteResponse, error)
}

// Preferences are the three single-choice selections plus dietary tags.
// The zero value of a choice means "not chosen yet"; "any" is a valid
// explicit choice.
type Preferences struct {
	MealType   string
	Cuisine    string
	Difficulty string
	Dietary    []string
}

// Session is the orchestration state. It is designed for a single-threaded
// event loop; the only cross-callback coordination is the atomic
// single-flight guard around Generate.
type Session struct {
	api      API
	notify   Notifier
	retryOpt []retry.Option

	ingredients []string
	prefs       Preferences

	generating atomic.Bool
	loading    bool

	result *apiclient.GenerateResponse
}

// New creates a session bound to the given API and notifier. Retry options
// apply to every network operation; tests inject a no-op sleep here.
func New(api API, notify Notifier, retryOpts ...retry.Option) *Session {
	return &Session{api: api, notify: notify, retryOpt: retryOpts}
}

// Ingredients returns the pantry list in insertion order.
func (s *Session) Ingredients() []string {
	out := make([]string, len(s.ingredients))
	copy(out, s.ingredients)
	return out
}

// AddIngredient appends a trimmed, non-empty, not-yet-present ingredient.
func (s *Session) AddIngredient(raw string) error {
	item := strings.TrimSpace(raw)
	if item == "" {
		return ErrEmptyIngredient
	}
	for _, existing := range s.ingredients {
		if strings.EqualFold(existing, item) {
			return ErrDuplicateIngredient
		}
	}
	s.ingredients = append(s.ingredients, item)
	return nil
}

// RemoveIngredient deletes an ingredient; unknown items are ignored.
func (s *Session) RemoveIngredient(item string) {
	for i, existing := range s.ingredients {
		if strings.EqualFold(existing, item) {
			s.ingredients = append(s.ingredients[:i], s.ingredients[i+1:]...)
			return
		}
	}
}

// AddDietaryTag adds a tag with set semantics; re-adding is a no-op.
func (s *Session) AddDietaryTag(raw string) {
	tag := strings.TrimSpace(raw)
	if tag == "" {
		return
	}
	for _, existing := range s.prefs.Dietary {
		if strings.EqualFold(existing, tag) {
			return
		}
	}
	s.prefs.Dietary = append(s.prefs.Dietary, tag)
}

// RemoveDietaryTag removes a tag; absent tags are ignored.
func (s *Session) RemoveDietaryTag(tag string) {
	for i, existing := range s.prefs.Dietary {
		if strings.EqualFold(existing, tag) {
			s.prefs.Dietary = append(s.prefs.Dietary[:i], s.prefs.Dietary[i+1:]...)
			return
		}
	}
}

// SetMealType records the meal-type choice.
func (s *Session) SetMealType(v string) { s.prefs.MealType = v }

// SetCuisine records the cuisine choice.
func (s *Session) SetCuisine(v string) { s.prefs.Cuisine = v }

// SetDifficulty records the difficulty choice.
func (s *Session) SetDifficulty(v string) { s.prefs.Difficulty = v }

// Preferences returns a copy of the current preference set.
func (s *Session) Preferences() Preferences {
	p := s.prefs
	p.Dietary = append([]string(nil), s.prefs.Dietary...)
	return p
}

// Loading reports whether a generation is in progress; the animation engine
// keys off this flag.
func (s *Session) Loading() bool { return s.loading }

// Result returns the last successful generation, or nil.
func (s *Session) Result() *apiclient.GenerateResponse { return s.result }

// Generate validates the session, then asks the API for a recipe. Duplicate
// calls while one is in flight return ErrGenerationInFlight without touching
// the network. On success the previous result is replaced wholesale; on
// failure nothing is kept and the error is reported through the notifier.
func (s *Session) Generate(ctx context.Context) error {
	if len(s.ingredients) == 0 {
		s.notify.Error(ErrNoIngredients.Error())
		return ErrNoIngredients
	}
	if s.prefs.MealType == "" || s.prefs.Cuisine == "" || s.prefs.Difficulty == "" {
		s.notify.Error(ErrMissingPreferences.Error())
		return ErrMissingPreferences
	}

	if !s.generating.CompareAndSwap(false, true) {
		return ErrGenerationInFlight
	}
	s.loading = true
	defer func() {
		s.loading = false
		s.generating.Store(false)
	}()

	req := apiclient.GenerateRequest{
		Ingredients:        s.Ingredients(),
		DietaryPreferences: append([]string(nil), s.prefs.Dietary...),
		MealType:           s.prefs.MealType,
		Cuisine:            s.prefs.Cuisine,
		Difficulty:         s.prefs.Difficulty,
	}

	resp, err := retry.Do(ctx, func(ctx context.Context) (*apiclient.GenerateResponse, error) {
		opCtx, cancel := context.WithTimeout(ctx, generateTimeout)
		defer cancel()
		return s.api.Generate(opCtx, req)
	}, s.retryOpt...)
	if err != nil {
		s.notify.Error(describeFailure("generate recipe", err))
		return err
	}

	s.result = resp
	s.notify.Success(fmt.Sprintf("Recipe ready: %s", resp.Recipe.Name))
	return nil
}

// FetchSaved lists previously stored recipes.
func (s *Session) FetchSaved(ctx context.Context) ([]apiclient.Recipe, error) {
	recipes, err := retry.Do(ctx, func(ctx context.Context) ([]apiclient.Recipe, error) {
		opCtx, cancel := context.WithTimeout(ctx, readTimeout)
		defer cancel()
		return s.api.ListRecipes(opCtx)
	}, s.retryOpt...)
	if err != nil {
		s.notify.Error(describeFailure("fetch recipes", err))
		return nil, err
	}
	return recipes, nil
}

// Substitute asks for replacements for one ingredient, using the first
// dietary tag as the restriction context.
func (s *Session) Substitute(ctx context.Context, ingredient string) (*apiclient.SubstituteResponse, error) {
	ingredient = strings.TrimSpace(ingredient)
	if ingredient == "" {
		s.notify.Error(ErrEmptyIngredient.Error())
		return nil, ErrEmptyIngredient
	}

	req := apiclient.SubstituteRequest{Ingredient: ingredient}
	if len(s.prefs.Dietary) > 0 {
		req.DietaryRestriction = s.prefs.Dietary[0]
	}

	resp, err := retry.Do(ctx, func(ctx context.Context) (*apiclient.SubstituteResponse, error) {
		opCtx, cancel := context.WithTimeout(ctx, readTimeout)
		defer cancel()
		return s.api.Substitute(opCtx, req)
	}, s.retryOpt...)
	if err != nil {
		s.notify.Error(describeFailure("substitute ingredient", err))
		return nil, err
	}
	return resp, nil
}

// describeFailure maps a classified error to a distinct user-visible message.
func describeFailure(op string, err error) string {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case apiclient.KindTimeout:
			return fmt.Sprintf("Could not %s: the request timed out. Please try again.", op)
		case apiclient.KindUnreachable:
			return fmt.Sprintf("Could not %s: the service is unreachable. Check your connection.", op)
		case apiclient.KindServer:
			return fmt.Sprintf("Could not %s: the service returned an error (status %d).", op, apiErr.Status)
		}
	}
	return fmt.Sprintf("Could not %s: %v", op, err)
}
