package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/Vovarama1992/tableau-ai-bridge/internal/ai"
	"github.com/Vovarama1992/tableau-ai-bridge/internal/config"
	"github.com/Vovarama1992/tableau-ai-bridge/internal/logging"
	"github.com/Vovarama1992/tableau-ai-bridge/internal/summarize"
	"github.com/Vovarama1992/tableau-ai-bridge/internal/tableau"
)

// Deps are the handlers and shared state the router serves.
type Deps struct {
	Config    config.ServerConfig
	Gateway   *ai.Gateway
	Summarize *summarize.Handler
	Tableau   *tableau.Handler
	Log       *zap.Logger
}

type healthResponse struct {
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
	LLMConfigured bool   `json:"llm_configured"`
	LLMBackend    string `json:"llm_backend"`
	ProjectID     string `json:"project_id"`
	Location      string `json:"location"`
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(logging.Middleware(d.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.Config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	health := healthHandler(d.Gateway, time.Now)
	r.Get("/health", health)
	r.Get("/healthz", health)

	summarize.RegisterRoutes(r, d.Summarize)
	tableau.RegisterRoutes(r, d.Tableau)

	return r
}

func healthHandler(g *ai.Gateway, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(healthResponse{
			Status:        "ok",
			Timestamp:     now().UTC().Format(time.RFC3339),
			LLMConfigured: g.State().Configured(),
			LLMBackend:    g.State().String(),
			ProjectID:     g.Project(),
			Location:      g.Location(),
		})
	}
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then drains
// in-flight requests for at most the configured shutdown timeout.
func Run(ctx context.Context, cfg config.ServerConfig, h http.Handler, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
