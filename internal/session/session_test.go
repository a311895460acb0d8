package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantrychef/backend/internal/apiclient"
	"github.com/pantrychef/backend/internal/retry"
)

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *recordingNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

func (n *recordingNotifier) errorCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.errors)
}

type fakeAPI struct {
	generateCalls atomic.Int64
	generateFn    func(context.Context, apiclient.GenerateRequest) (*apiclient.GenerateResponse, error)
	listFn        func(context.Context) ([]apiclient.Recipe, error)
	substituteFn  func(context.Context, apiclient.SubstituteRequest) (*apiclient.SubstituteResponse, error)
}

func (f *fakeAPI) Generate(ctx context.Context, req apiclient.GenerateRequest) (*apiclient.GenerateResponse, error) {
	f.generateCalls.Add(1)
	return f.generateFn(ctx, req)
}

func (f *fakeAPI) ListRecipes(ctx context.Context) ([]apiclient.Recipe, error) {
	return f.listFn(ctx)
}

func (f *fakeAPI) Substitute(ctx context.Context, req apiclient.SubstituteRequest) (*apiclient.SubstituteResponse, error) {
	return f.substituteFn(ctx, req)
}

func noSleep() retry.Option {
	return retry.WithSleep(func(context.Context, time.Duration) error { return nil })
}

func readySession(api *fakeAPI, n Notifier) *Session {
	s := New(api, n, noSleep())
	_ = s.AddIngredient("tomato")
	s.SetMealType("dinner")
	s.SetCuisine("italian")
	s.SetDifficulty("easy")
	return s
}

func TestAddIngredient(t *testing.T) {
	s := New(&fakeAPI{}, &recordingNotifier{})

	require.NoError(t, s.AddIngredient("  tomato "))
	assert.ErrorIs(t, s.AddIngredient(""), ErrEmptyIngredient)
	assert.ErrorIs(t, s.AddIngredient("   "), ErrEmptyIngredient)
	assert.ErrorIs(t, s.AddIngredient("Tomato"), ErrDuplicateIngredient)

	require.NoError(t, s.AddIngredient("basil"))
	assert.Equal(t, []string{"tomato", "basil"}, s.Ingredients())

	s.RemoveIngredient("TOMATO")
	assert.Equal(t, []string{"basil"}, s.Ingredients())
}

func TestDietaryTagsAreIdempotent(t *testing.T) {
	s := New(&fakeAPI{}, &recordingNotifier{})

	s.AddDietaryTag("vegan")
	s.AddDietaryTag("Vegan")
	s.AddDietaryTag("keto")
	s.AddDietaryTag("")
	assert.Equal(t, []string{"vegan", "keto"}, s.Preferences().Dietary)

	s.RemoveDietaryTag("vegan")
	s.RemoveDietaryTag("vegan")
	assert.Equal(t, []string{"keto"}, s.Preferences().Dietary)
}

func TestGenerate_ValidationFailsFast(t *testing.T) {
	api := &fakeAPI{}
	n := &recordingNotifier{}
	s := New(api, n, noSleep())

	err := s.Generate(context.Background())
	assert.ErrorIs(t, err, ErrNoIngredients)

	require.NoError(t, s.AddIngredient("tomato"))
	err = s.Generate(context.Background())
	assert.ErrorIs(t, err, ErrMissingPreferences)

	s.SetMealType("dinner")
	s.SetCuisine("italian")
	err = s.Generate(context.Background())
	assert.ErrorIs(t, err, ErrMissingPreferences)

	// No network call was made for any of the rejections.
	assert.EqualValues(t, 0, api.generateCalls.Load())
	assert.Equal(t, 3, n.errorCount())
}

func TestGenerate_ReplacesResultWholesale(t *testing.T) {
	api := &fakeAPI{
		generateFn: func(_ context.Context, req apiclient.GenerateRequest) (*apiclient.GenerateResponse, error) {
			assert.Equal(t, []string{"tomato"}, req.Ingredients)
			return &apiclient.GenerateResponse{
				Recipe: apiclient.Recipe{Name: "Tomato Soup"},
				Tips:   []string{"serve hot"},
			}, nil
		},
	}
	n := &recordingNotifier{}
	s := readySession(api, n)

	require.NoError(t, s.Generate(context.Background()))
	require.NotNil(t, s.Result())
	assert.Equal(t, "Tomato Soup", s.Result().Recipe.Name)
	assert.False(t, s.Loading())
	assert.Len(t, n.successes, 1)
}

func TestGenerate_FailureKeepsNoPartialState(t *testing.T) {
	api := &fakeAPI{
		generateFn: func(context.Context, apiclient.GenerateRequest) (*apiclient.GenerateResponse, error) {
			return nil, &apiclient.Error{Kind: apiclient.KindServer, Status: 500, Op: "generate"}
		},
	}
	n := &recordingNotifier{}
	s := readySession(api, n)

	err := s.Generate(context.Background())
	assert.Error(t, err)
	assert.Nil(t, s.Result())
	assert.False(t, s.Loading())
	require.Equal(t, 1, n.errorCount())
	assert.Contains(t, n.errors[0], "status 500")

	// The session stays usable: a subsequent attempt runs.
	api.generateFn = func(context.Context, apiclient.GenerateRequest) (*apiclient.GenerateResponse, error) {
		return &apiclient.GenerateResponse{Recipe: apiclient.Recipe{Name: "Retry Soup"}}, nil
	}
	require.NoError(t, s.Generate(context.Background()))
	assert.Equal(t, "Retry Soup", s.Result().Recipe.Name)
}

func TestGenerate_RetriesTransientFailures(t *testing.T) {
	calls := 0
	api := &fakeAPI{
		generateFn: func(context.Context, apiclient.GenerateRequest) (*apiclient.GenerateResponse, error) {
			calls++
			if calls < 3 {
				return nil, &apiclient.Error{Kind: apiclient.KindTimeout, Op: "generate"}
			}
			return &apiclient.GenerateResponse{Recipe: apiclient.Recipe{Name: "Third Time Soup"}}, nil
		},
	}
	s := readySession(api, &recordingNotifier{})

	require.NoError(t, s.Generate(context.Background()))
	assert.Equal(t, 3, calls)
}

func TestGenerate_SingleFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	api := &fakeAPI{
		generateFn: func(context.Context, apiclient.GenerateRequest) (*apiclient.GenerateResponse, error) {
			close(started)
			<-release
			return &apiclient.GenerateResponse{Recipe: apiclient.Recipe{Name: "Slow Soup"}}, nil
		},
	}
	n := &recordingNotifier{}
	s := readySession(api, n)

	done := make(chan error, 1)
	go func() { done <- s.Generate(context.Background()) }()
	<-started

	// A duplicate invocation while the first is in flight never reaches the
	// network.
	err := s.Generate(context.Background())
	assert.ErrorIs(t, err, ErrGenerationInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.EqualValues(t, 1, api.generateCalls.Load())
}

func TestFetchSaved(t *testing.T) {
	api := &fakeAPI{
		listFn: func(context.Context) ([]apiclient.Recipe, error) {
			return []apiclient.Recipe{{Name: "Stored Stew"}}, nil
		},
	}
	s := New(api, &recordingNotifier{}, noSleep())

	recipes, err := s.FetchSaved(context.Background())
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "Stored Stew", recipes[0].Name)
}

func TestSubstitute_UsesFirstDietaryTag(t *testing.T) {
	var got apiclient.SubstituteRequest
	api := &fakeAPI{
		substituteFn: func(_ context.Context, req apiclient.SubstituteRequest) (*apiclient.SubstituteResponse, error) {
			got = req
			return &apiclient.SubstituteResponse{OriginalIngredient: req.Ingredient}, nil
		},
	}
	s := New(api, &recordingNotifier{}, noSleep())
	s.AddDietaryTag("vegan")
	s.AddDietaryTag("keto")

	resp, err := s.Substitute(context.Background(), " butter ")
	require.NoError(t, err)
	assert.Equal(t, "butter", got.Ingredient)
	assert.Equal(t, "vegan", got.DietaryRestriction)
	assert.Equal(t, "butter", resp.OriginalIngredient)

	_, err = s.Substitute(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyIngredient)
}

func TestFailureMessagesAreDistinct(t *testing.T) {
	n := &recordingNotifier{}
	kinds := []*apiclient.Error{
		{Kind: apiclient.KindTimeout, Op: "x"},
		{Kind: apiclient.KindUnreachable, Op: "x"},
		{Kind: apiclient.KindServer, Status: 503, Op: "x"},
	}
	api := &fakeAPI{}
	i := 0
	api.listFn = func(context.Context) ([]apiclient.Recipe, error) {
		return nil, kinds[i]
	}
	s := New(api, n, noSleep())

	for ; i < len(kinds); i++ {
		_, _ = s.FetchSaved(context.Background())
	}

	require.Len(t, n.errors, 3)
	assert.Contains(t, n.errors[0], "timed out")
	assert.Contains(t, n.errors[1], "unreachable")
	assert.Contains(t, n.errors[2], "status 503")
	assert.NotEqual(t, n.errors[0], n.errors[1])
}
