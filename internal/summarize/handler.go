package summarize

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type Handler struct {
	svc Service
	log *zap.Logger
	now func() time.Time
}

func NewHandler(svc Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log, now: time.Now}
}

// HandleSummarize builds the prompt and relays the model's answer.
func (h *Handler) HandleSummarize(w http.ResponseWriter, r *http.Request) {
	req, err := decode(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{
			Success:   false,
			Error:     err.Error(),
			Timestamp: h.now().Format(time.RFC3339),
		})
		return
	}

	summary, err := h.svc.Summarize(r.Context(), req)
	if err != nil {
		h.log.Error("error generating summary", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Response{
			Success:   false,
			Error:     err.Error(),
			Timestamp: h.now().Format(time.RFC3339),
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success:   true,
		Summary:   summary,
		Timestamp: h.now().Format(time.RFC3339),
	})
}

// HandleTestPrompt returns the prompt without calling the model.
func (h *Handler) HandleTestPrompt(w http.ResponseWriter, r *http.Request) {
	req, err := decode(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, TestPromptResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, TestPromptResponse{
		Success: true,
		Prompt:  h.svc.BuildPrompt(req),
	})
}

func decode(r *http.Request) (Request, error) {
	var req Request

	dec := json.NewDecoder(r.Body)
	// keep numbers in their literal form for the sample tables
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("invalid json: %w", err)
	}

	if err := req.Validate(); err != nil {
		return req, err
	}

	return req, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
