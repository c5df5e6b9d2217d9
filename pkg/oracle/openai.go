package oracle

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// ChatClient is the slice of *openai.Client the OpenAI backend needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAI is a Completer backed by an OpenAI-compatible chat endpoint.
type OpenAI struct {
	Client      ChatClient
	ModelName   string
	Temperature float32
}

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// NewOpenAI builds a backend for apiKey. An empty baseURL uses the public API.
func NewOpenAI(apiKey, baseURL, model string) *OpenAI {
	if model == "" {
		model = DefaultOpenAIModel
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{Client: openai.NewClientWithConfig(cfg), ModelName: model}
}

func (o *OpenAI) Model() string { return o.ModelName }

func (o *OpenAI) Complete(ctx context.Context, p Prompt) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if p.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: p.System})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: p.User})

	// json_object mode only admits objects, and rankings are arrays, so
	// p.JSON is carried by the prompt wording alone here.
	resp, err := o.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.ModelName,
		Messages:    msgs,
		Temperature: o.Temperature,
		N:           1,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
