package ai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type OpenAIClient struct {
	client *openai.Client
	model  string
	log    *zap.Logger
}

// NewOpenAIClient talks to the OpenAI API, or to any compatible endpoint when baseURL is set.
func NewOpenAIClient(apiKey, model, baseURL string, log *zap.Logger) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY not set")
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		log:    log,
	}, nil
}

// Generate sends the prompt as a single user message. TopK has no
// counterpart in the chat completions API and is not sent.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: params.Temperature,
		TopP:        params.TopP,
		MaxTokens:   int(params.MaxOutputTokens),
	})
	if err != nil {
		c.log.Warn("openai request failed", zap.Error(err))
		return "", fmt.Errorf("openai: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.New("openai: empty response")
	}

	raw := resp.Choices[0].Message.Content
	c.log.Debug("openai response", zap.Int("chars", len(raw)), zap.Int("total_tokens", resp.Usage.TotalTokens))

	return raw, nil
}
