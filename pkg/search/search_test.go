package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"marketplace-feed/model"
)

func keys(t Tokens) map[string]bool {
	out := make(map[string]bool, len(t))
	for k := range t {
		out[k] = true
	}
	return out
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want map[string]bool
	}{
		{"empty", "", map[string]bool{}},
		{"whitespace only", "   ", map[string]bool{}},
		{"lowercases and dedups", "Bike bike BIKE", map[string]bool{"bike": true}},
		{"double spaces dropped", "  red   bike ", map[string]bool{"red": true, "bike": true}},
		{"punctuation kept", "bike, red.", map[string]bool{"bike,": true, "red.": true}},
		{"tabs are not separators", "a\tb c", map[string]bool{"a\tb": true, "c": true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.in)
			assert.Equal(t, tt.want, keys(got))
			assert.Equal(t, len(tt.want) == 0, got.Empty())
		})
	}
}

func TestMatches(t *testing.T) {
	item := model.Item{
		ID:         "1",
		Name:       "Vintage Lamp",
		Categories: []string{"Home & Garden", "Lighting"},
		Details:    "brass base, works fine",
	}

	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"name", "lamp", true},
		{"category", "lighting", true},
		{"category joined with space", "garden", true},
		{"details", "brass", true},
		{"punctuation blocks match", "base", false},
		{"no overlap", "bike", false},
		{"any token suffices", "bike LAMP", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(item, Tokenize(tt.query)))
		})
	}
}

func TestFilter(t *testing.T) {
	pool := []model.Item{
		{ID: "a", Name: "red bike"},
		{ID: "b", Name: "lamp"},
		{ID: "c", Name: "chair", Details: "red paint"},
	}

	t.Run("empty query keeps everything", func(t *testing.T) {
		assert.Equal(t, pool, Filter(pool, Tokenize("  ")))
	})

	t.Run("keeps order", func(t *testing.T) {
		got := Filter(pool, Tokenize("red"))
		assert.Len(t, got, 2)
		assert.Equal(t, "a", got[0].ID)
		assert.Equal(t, "c", got[1].ID)
	})
}
