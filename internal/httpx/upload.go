package httpx

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/korvatunturi/filecached/internal/cache"
)

// uploadResponse is the JSON body returned on a successful upload.
type uploadResponse struct {
	ID string `json:"id"`
}

// handleUpload implements POST /api/upload. The payload is a multipart form
// with a single "file" field; X-Expires-In (a Go duration string, e.g.
// "10m") and X-Burn-After-Read ("true"/"false") headers configure the
// entry, both optional.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if h.MaxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxBody)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "failed to read file")
		return
	}

	opts := cache.UploadOptions{Filename: header.Filename}
	if v := r.Header.Get("X-Expires-In"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			writeError(r.Context(), w, http.StatusBadRequest, "invalid X-Expires-In")
			return
		}
		opts.ExpiresIn = d
	}
	if v := r.Header.Get("X-Burn-After-Read"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(r.Context(), w, http.StatusBadRequest, "invalid X-Burn-After-Read")
			return
		}
		opts.BurnAfterRead = b
	}

	id, err := h.Cache.UploadFile(r.Context(), data, opts)
	if err != nil {
		mapCacheError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(uploadResponse{ID: id.String()})
}
