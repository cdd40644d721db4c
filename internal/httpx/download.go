package httpx

import (
	"io"
	"net/http"
	"strconv"

	"github.com/korvatunturi/filecached/internal/domain"
)

// handleDownload implements GET /api/download/{id}. Resident content is
// written directly; disk-only content is streamed and the reader closed
// when the copy finishes.
func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID(r.PathValue("id"))
	if err != nil {
		mapCacheError(r.Context(), w, domain.ErrInvalidID)
		return
	}

	content, err := h.Cache.FetchFile(r.Context(), id)
	if err != nil {
		mapCacheError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")

	if content.Resident {
		w.Header().Set("Content-Length", strconv.Itoa(len(content.Bytes)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(content.Bytes)
		return
	}

	defer content.Reader.Close()
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, content.Reader)
}
