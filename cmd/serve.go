package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Vovarama1992/tableau-ai-bridge/internal/ai"
	"github.com/Vovarama1992/tableau-ai-bridge/internal/server"
	"github.com/Vovarama1992/tableau-ai-bridge/internal/summarize"
	"github.com/Vovarama1992/tableau-ai-bridge/internal/tableau"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), a)
		},
	}
}

func runServe(ctx context.Context, a *app) error {
	cfg, log := a.cfg, a.log

	// --- LLM ---
	gateway := ai.Init(ctx, cfg.AI, log)

	// --- summarize module wiring ---
	gen := cfg.AI.GenerationConfig
	svc := summarize.NewService(gateway, summarize.NewPromptBuilderFromConfig(cfg.Prompt), ai.GenerationParams{
		Temperature:     gen.Temperature,
		TopP:            gen.TopP,
		TopK:            gen.TopK,
		MaxOutputTokens: gen.MaxOutputTokens,
	}, log)

	// --- tableau module wiring ---
	resolver := tableau.NewResolver(
		tableau.NewClient(cfg.Tableau, log),
		tableau.NewCache(cfg.Caching.DatasourceLUIDTTL()),
		log,
	)

	router := server.NewRouter(server.Deps{
		Config:    cfg.Server,
		Gateway:   gateway,
		Summarize: summarize.NewHandler(svc, log),
		Tableau:   tableau.NewHandler(resolver),
		Log:       log,
	})

	log.Info("starting server",
		zap.Int("port", cfg.Server.Port),
		zap.Stringer("llm_state", gateway.State()),
	)
	return server.Run(ctx, cfg.Server, router, log)
}
