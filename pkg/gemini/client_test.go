package gemini

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-feed/pkg/oracle"
)

func TestFirstText(t *testing.T) {
	t.Run("text part", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text(`["a","b"]`)}}},
		}}
		out, err := firstText(resp)
		require.NoError(t, err)
		assert.Equal(t, `["a","b"]`, out)
	})

	t.Run("empty", func(t *testing.T) {
		for _, resp := range []*genai.GenerateContentResponse{
			nil,
			{},
			{Candidates: []*genai.Candidate{{}}},
			{Candidates: []*genai.Candidate{{Content: &genai.Content{}}}},
		} {
			_, err := firstText(resp)
			assert.ErrorIs(t, err, oracle.ErrEmptyResponse)
		}
	})

	t.Run("non text part", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Blob{MIMEType: "image/png"}}}},
		}}
		_, err := firstText(resp)
		assert.Error(t, err)
	})
}
