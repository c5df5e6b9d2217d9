package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"marketplace-feed/pkg/oracle"
)

const DefaultModel = "gemini-2.0-flash-001"

// Client is an oracle.Completer backed by Gemini.
type Client struct {
	client    *genai.Client
	modelName string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{client: client, modelName: model}, nil
}

func (c *Client) Model() string { return c.modelName }

func (c *Client) Complete(ctx context.Context, p oracle.Prompt) (string, error) {
	// GenerativeModel carries per-call settings, so build one per request.
	model := c.client.GenerativeModel(c.modelName)
	if p.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(p.System)}}
	}
	if p.JSON {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(p.User))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return firstText(resp)
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", oracle.ErrEmptyResponse
	}
	t, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response part %T", resp.Candidates[0].Content.Parts[0])
	}
	return string(t), nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
