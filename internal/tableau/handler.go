package tableau

import (
	"encoding/json"
	"net/http"
)

type Handler struct {
	resolver Resolver
}

func NewHandler(resolver Resolver) *Handler {
	return &Handler{resolver: resolver}
}

// HandleDatasourceLUID answers 200 for every decodable request; lookup
// failures are reported in the body with success=false.
func (h *Handler) HandleDatasourceLUID(w http.ResponseWriter, r *http.Request) {
	var req LookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, LookupResponse{Error: "invalid json: " + err.Error()})
		return
	}

	res, err := h.resolver.Resolve(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusOK, LookupResponse{
			Success:        false,
			DatasourceName: req.DatasourceName,
			Error:          err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, LookupResponse{
		Success:        true,
		LUID:           res.LUID,
		DatasourceName: req.DatasourceName,
		Cached:         res.Cached,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
