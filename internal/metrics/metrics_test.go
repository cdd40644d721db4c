package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestIncUploadsDownloadsNotFound(t *testing.T) {
	m := New()
	m.IncUploads()
	m.IncUploads()
	m.IncDownloads()
	m.IncNotFound()

	if got := testutil.ToFloat64(m.UploadsTotal); got != 2 {
		t.Fatalf("expected 2 uploads, got %v", got)
	}
	if got := testutil.ToFloat64(m.DownloadsTotal); got != 1 {
		t.Fatalf("expected 1 download, got %v", got)
	}
	if got := testutil.ToFloat64(m.NotFoundTotal); got != 1 {
		t.Fatalf("expected 1 not-found, got %v", got)
	}
}

func TestIncEvictionLabelsByReason(t *testing.T) {
	m := New()
	m.IncEviction("expired")
	m.IncEviction("expired")
	m.IncEviction("burn_after_read")

	if got := testutil.ToFloat64(m.EvictionsTotal.WithLabelValues("expired")); got != 2 {
		t.Fatalf("expected 2 expired evictions, got %v", got)
	}
	if got := testutil.ToFloat64(m.EvictionsTotal.WithLabelValues("burn_after_read")); got != 1 {
		t.Fatalf("expected 1 burn_after_read eviction, got %v", got)
	}
}

func TestSetResidentAndCapacity(t *testing.T) {
	m := New()
	m.SetResident(3, 4096)
	m.SetCapacity(200_000_000)

	if got := testutil.ToFloat64(m.ResidentEntries); got != 3 {
		t.Fatalf("expected 3 resident entries, got %v", got)
	}
	if got := testutil.ToFloat64(m.ResidentBytes); got != 4096 {
		t.Fatalf("expected 4096 resident bytes, got %v", got)
	}
	if got := testutil.ToFloat64(m.CapacityBytes); got != 200_000_000 {
		t.Fatalf("expected capacity 200000000, got %v", got)
	}
}

func TestHandlerExposesExpositionFormat(t *testing.T) {
	m := New()
	m.IncUploads()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "filecached_uploads_total") {
		t.Fatal("expected exposition output to contain the uploads_total metric")
	}
}
