package ai

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiClient generates text with Gemini, either through Vertex AI or the
// Gemini API with a key.
type GeminiClient struct {
	client *genai.Client
	model  string
	log    *zap.Logger
}

type GeminiConfig struct {
	Model string
	// APIKey selects the Gemini API. Empty means Vertex AI with ADC.
	APIKey   string
	Project  string
	Location string
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig, log *zap.Logger) (*GeminiClient, error) {
	cc := &genai.ClientConfig{}
	if cfg.APIKey != "" {
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = cfg.APIKey
	} else {
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.Project
		cc.Location = cfg.Location
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  cfg.Model,
		log:    log,
	}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	gc := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(params.Temperature),
		TopP:            genai.Ptr(params.TopP),
		TopK:            genai.Ptr(params.TopK),
		MaxOutputTokens: params.MaxOutputTokens,
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), gc)
	if err != nil {
		c.log.Warn("gemini request failed", zap.String("model", c.model), zap.Error(err))
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("gemini: empty response")
	}
	return text, nil
}
