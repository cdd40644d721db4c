package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/korvatunturi/filecached/internal/cache"
	"github.com/korvatunturi/filecached/internal/domain"
)

// writeError writes a JSON error body with the given status code.
func writeError(ctx context.Context, w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: msg})
	if cid, ok := GetCorrelationID(ctx); ok {
		slog.Debug("wrote error response", "cid", cid, "status", code, "msg", msg)
	}
}

// mapCacheError maps cache/domain errors to HTTP responses.
func mapCacheError(ctx context.Context, w http.ResponseWriter, err error) {
	cid, _ := GetCorrelationID(ctx)
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		slog.Warn("request error", "cid", cid, "code", "invalid_id")
		writeError(ctx, w, http.StatusBadRequest, "invalid id")
	case errors.Is(err, cache.ErrNotFound):
		slog.Info("request error", "cid", cid, "code", "not_found")
		writeError(ctx, w, http.StatusNotFound, "not found")
	case errors.Is(err, cache.ErrBackingFileMissing):
		slog.Error("request error", "cid", cid, "code", "backing_file_missing")
		writeError(ctx, w, http.StatusNotFound, "not found")
	case errors.Is(err, cache.ErrNoSpaceLeftOnDevice):
		slog.Error("request error", "cid", cid, "code", "no_space")
		writeError(ctx, w, http.StatusInsufficientStorage, "no space left on device")
	default:
		slog.Error("unhandled request error", "cid", cid, "code", "unhandled")
		writeError(ctx, w, http.StatusInternalServerError, "internal")
	}
}
