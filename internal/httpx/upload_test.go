package httpx

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/korvatunturi/filecached/internal/cache"
	"github.com/korvatunturi/filecached/internal/domain"
)

func TestHandleUploadSuccess(t *testing.T) {
	fake := &fakeCache{uploadID: domain.ID("a0000000000000000000000000000020")}
	h := newHandler(fake)

	body, contentType := newMultipartUpload("hello.txt", []byte("hello world"))
	rec := doRequest(http.HandlerFunc(h.handleUpload), http.MethodPost, "/api/upload", body, map[string]string{
		"Content-Type": contentType,
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp uploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != fake.uploadID.String() {
		t.Fatalf("expected id %s, got %s", fake.uploadID, resp.ID)
	}
	if string(fake.gotData) != "hello world" {
		t.Fatalf("expected cache to receive uploaded bytes, got %q", fake.gotData)
	}
	if fake.gotOpts.Filename != "hello.txt" {
		t.Fatalf("expected filename hello.txt, got %q", fake.gotOpts.Filename)
	}
}

func TestHandleUploadWithExpiresInAndBurnAfterRead(t *testing.T) {
	fake := &fakeCache{uploadID: domain.ID("a0000000000000000000000000000021")}
	h := newHandler(fake)

	body, contentType := newMultipartUpload("secret.txt", []byte("shh"))
	rec := doRequest(http.HandlerFunc(h.handleUpload), http.MethodPost, "/api/upload", body, map[string]string{
		"Content-Type":      contentType,
		"X-Expires-In":      "10m",
		"X-Burn-After-Read": "true",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if fake.gotOpts.ExpiresIn != 10*time.Minute {
		t.Fatalf("expected ExpiresIn 10m, got %v", fake.gotOpts.ExpiresIn)
	}
	if !fake.gotOpts.BurnAfterRead {
		t.Fatal("expected BurnAfterRead to be true")
	}
}

func TestHandleUploadMalformedBody(t *testing.T) {
	fake := &fakeCache{}
	h := newHandler(fake)

	rec := doRequest(http.HandlerFunc(h.handleUpload), http.MethodPost, "/api/upload", nil, map[string]string{
		"Content-Type": "multipart/form-data; boundary=x",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed multipart body, got %d", rec.Code)
	}
}

func TestHandleUploadInvalidExpiresIn(t *testing.T) {
	fake := &fakeCache{}
	h := newHandler(fake)

	body, contentType := newMultipartUpload("f.txt", []byte("x"))
	rec := doRequest(http.HandlerFunc(h.handleUpload), http.MethodPost, "/api/upload", body, map[string]string{
		"Content-Type": contentType,
		"X-Expires-In": "not-a-duration",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid X-Expires-In, got %d", rec.Code)
	}
}

func TestHandleUploadCacheErrorMapped(t *testing.T) {
	fake := &fakeCache{uploadErr: cache.ErrNoSpaceLeftOnDevice}
	h := newHandler(fake)

	body, contentType := newMultipartUpload("f.txt", []byte("x"))
	rec := doRequest(http.HandlerFunc(h.handleUpload), http.MethodPost, "/api/upload", body, map[string]string{
		"Content-Type": contentType,
	})
	if rec.Code != http.StatusInsufficientStorage {
		t.Fatalf("expected 507, got %d", rec.Code)
	}
}
