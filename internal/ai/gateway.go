package ai

import (
	"context"

	"go.uber.org/zap"

	"github.com/Vovarama1992/tableau-ai-bridge/internal/config"
)

// Gateway is the LLM handle shared by all requests. Its State is fixed at
// construction; a failed backend is reported per request, not retried.
type Gateway struct {
	llm      LLM
	state    State
	provider string
	project  string
	location string
}

// Init picks and constructs the backend once at startup.
func Init(ctx context.Context, cfg config.AIConfig, log *zap.Logger) *Gateway {
	g := &Gateway{provider: cfg.Provider, project: cfg.Project, location: cfg.Location}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		client, err := NewOpenAIClient(cfg.OpenAIAPIKey, cfg.ModelName, cfg.OpenAIBaseURL, log)
		if err != nil {
			log.Warn("could not initialize AI client", zap.String("provider", cfg.Provider), zap.Error(err))
			g.state = StateFailed
			return g
		}
		g.llm, g.state = client, StateDirect

	default:
		client, err := NewGeminiClient(ctx, GeminiConfig{
			Model:    cfg.ModelName,
			APIKey:   cfg.APIKey,
			Project:  cfg.Project,
			Location: cfg.Location,
		}, log)
		if err != nil {
			log.Warn("could not initialize AI client", zap.String("provider", cfg.Provider), zap.Error(err))
			g.state = StateFailed
			return g
		}
		g.llm = client
		if cfg.APIKey != "" {
			g.state = StateDirect
		} else {
			g.state = StateRemote
		}
	}

	log.Info("AI client initialized",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.ModelName),
		zap.Stringer("state", g.state),
	)
	return g
}

// NewGateway wraps an already constructed backend.
func NewGateway(llm LLM, state State) *Gateway {
	if llm == nil && state.Configured() {
		state = StateFailed
	}
	return &Gateway{llm: llm, state: state}
}

func (g *Gateway) State() State { return g.state }

func (g *Gateway) Provider() string { return g.provider }

func (g *Gateway) Project() string { return g.project }

func (g *Gateway) Location() string { return g.location }

func (g *Gateway) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	if !g.state.Configured() {
		return "", ErrNotConfigured
	}
	return g.llm.Generate(ctx, prompt, params)
}
