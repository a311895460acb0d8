package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexIntUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "number", input: `4`, want: 4},
		{name: "float", input: `4.0`, want: 4},
		{name: "string number", input: `"6"`, want: 6},
		{name: "string with suffix", input: `"4 servings"`, want: 4},
		{name: "padded string", input: `" 2 "`, want: 2},
		{name: "not a number", input: `"plenty"`, wantErr: true},
		{name: "object", input: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexInt
			err := json.Unmarshal([]byte(tt.input), &f)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, int(f))
		})
	}
}

func TestNutritionalInfoStrings(t *testing.T) {
	r := GeneratedRecipe{
		NutritionalInfo: map[string]any{
			"calories": float64(350),
			"protein":  "25g",
			"score":    3.5,
		},
	}

	got := r.NutritionalInfoStrings()
	assert.Equal(t, "350", got["calories"])
	assert.Equal(t, "25g", got["protein"])
	assert.Equal(t, "3.5", got["score"])
}

func TestNutritionalInfoStringsEmpty(t *testing.T) {
	r := GeneratedRecipe{}
	assert.NotNil(t, r.NutritionalInfoStrings())
	assert.Empty(t, r.NutritionalInfoStrings())
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "bare object",
			input: `{"a":1}`,
			want:  `{"a":1}`,
		},
		{
			name:  "markdown fences",
			input: "```json\n{\"a\":1}\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "surrounding prose",
			input: `Here is your recipe: {"a":1} Enjoy!`,
			want:  `{"a":1}`,
		},
		{
			name:    "no object",
			input:   "sorry, I cannot help with that",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSON(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
