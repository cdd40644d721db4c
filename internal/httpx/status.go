package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/korvatunturi/filecached/internal/cache"
)

// statusResponse is the JSON body returned by GET /api/status.
type statusResponse struct {
	Entries []cache.EntryView `json:"entries"`
	Count   int               `json:"count"`
}

// handleStatus implements GET /api/status: a snapshot of every live entry.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	entries := h.Cache.FetchEntries(r.Context())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(statusResponse{Entries: entries, Count: len(entries)})
}
