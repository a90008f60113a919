package summarize

import "github.com/go-chi/chi/v5"

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/api/summarize", h.HandleSummarize)
	r.Post("/api/test-prompt", h.HandleTestPrompt)
}
