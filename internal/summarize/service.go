package summarize

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Vovarama1992/tableau-ai-bridge/internal/ai"
)

// Generator is the part of ai.Gateway the service needs.
type Generator interface {
	State() ai.State
	Generate(ctx context.Context, prompt string, params ai.GenerationParams) (string, error)
}

type service struct {
	llm     Generator
	builder *PromptBuilder
	params  ai.GenerationParams
	log     *zap.Logger
}

func NewService(llm Generator, builder *PromptBuilder, params ai.GenerationParams, log *zap.Logger) Service {
	return &service{
		llm:     llm,
		builder: builder,
		params:  params,
		log:     log,
	}
}

func (s *service) BuildPrompt(req Request) string {
	return s.builder.Build(req)
}

func (s *service) Summarize(ctx context.Context, req Request) (string, error) {
	if !s.llm.State().Configured() {
		return "", ai.ErrNotConfigured
	}

	prompt := s.builder.Build(req)

	s.log.Info("summarize",
		zap.String("dashboard", req.Metadata.DashboardName),
		zap.Int("sheets", len(req.Sheets)),
		zap.Int("datasources", len(req.Datasources)),
		zap.Int("prompt_chars", len(prompt)),
	)
	s.log.Debug("prompt", zap.String("prompt", prompt))

	summary, err := s.llm.Generate(ctx, prompt, s.params)
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}
	return summary, nil
}
