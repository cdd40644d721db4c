// Package httpx contains the HTTP delivery layer (net/http handlers) for
// the file cache service. It maps HTTP requests onto the cache core while
// enforcing size limits, security headers, and error translation. Handlers
// are split across files (upload.go, download.go, status.go, health.go),
// mirroring the teacher's internal/httpx layout.
package httpx

import (
	"context"
	"net/http"

	"github.com/korvatunturi/filecached/internal/cache"
	"github.com/korvatunturi/filecached/internal/domain"
)

// CachePort abstracts the subset of *cache.FileCache used by the HTTP
// layer, satisfied by *cache.FileCache in production and a fake in tests.
type CachePort interface {
	UploadFile(ctx context.Context, data []byte, opts cache.UploadOptions) (domain.ID, error)
	FetchFile(ctx context.Context, id domain.ID) (cache.Content, error)
	FetchEntries(ctx context.Context) []cache.EntryView
}

// Handler wires HTTP endpoints to the file cache. Safe for concurrent use;
// construct via New.
type Handler struct {
	Cache       CachePort
	MaxBody     int64
	Readiness   func(context.Context) error
	IPAllowlist []string
}

// New returns a configured Handler. maxBody bounds request body size (0
// disables the check); readiness is an optional probe for /readyz.
func New(c CachePort, maxBody int64, readiness func(context.Context) error) *Handler {
	return &Handler{Cache: c, MaxBody: maxBody, Readiness: readiness}
}

// Router constructs the full route table with middleware applied.
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/upload", h.handleUpload)
	mux.HandleFunc("GET /api/download/{id}", h.handleDownload)
	mux.HandleFunc("GET /api/status", h.handleStatus)
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.HandleFunc("GET /readyz", h.handleReady)

	var handler http.Handler = mux
	handler = ipAllowlist(h.IPAllowlist, handler)
	handler = secureHeaders(handler)
	handler = correlationIDMiddleware(handler)
	return handler
}
