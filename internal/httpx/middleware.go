package httpx

import (
	"context"
	"net"
	"net/http"

	"github.com/google/uuid"
)

// correlationIDCtxKey is an unexported context key type to avoid collisions
// with keys set by other packages.
type correlationIDCtxKey struct{}

var cidKey = correlationIDCtxKey{}

// CorrelationIDHeader is the HTTP header used for inbound/outbound
// correlation IDs.
const CorrelationIDHeader = "X-Correlation-ID"

// correlationIDMiddleware injects a per-request correlation ID into the
// request context and response headers. An inbound X-Correlation-ID is
// trusted if present; otherwise a new UUID v4 is generated.
func correlationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cid := r.Header.Get(CorrelationIDHeader)
		if cid == "" {
			cid = uuid.New().String()
		}
		ctx := context.WithValue(r.Context(), cidKey, cid)
		w.Header().Set(CorrelationIDHeader, cid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetCorrelationID extracts the correlation ID from the context. The second
// return reports whether a value was present.
func GetCorrelationID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(cidKey).(string)
	return id, ok
}

// secureHeaders adds standard security and cache-control headers. This is a
// JSON API with no templated pages, so the policy is tighter than a page
// that serves HTML: no script/style sources at all.
func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'; base-uri 'none'")
		next.ServeHTTP(w, r)
	})
}

// ipAllowlist restricts access to the listed client IPs when allowlist is
// non-empty; an empty allowlist disables the check entirely (the default).
func ipAllowlist(allowlist []string, next http.Handler) http.Handler {
	if len(allowlist) == 0 {
		return next
	}
	allowed := make(map[string]struct{}, len(allowlist))
	for _, ip := range allowlist {
		allowed[ip] = struct{}{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if _, ok := allowed[host]; !ok {
			writeError(r.Context(), w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}
