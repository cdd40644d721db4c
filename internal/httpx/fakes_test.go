package httpx

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/korvatunturi/filecached/internal/cache"
	"github.com/korvatunturi/filecached/internal/domain"
)

// newTestReader returns a strings.Reader over s, used to build a
// cache.Content.Reader in download handler tests.
func newTestReader(s string) io.Reader { return strings.NewReader(s) }

// fakeCache implements CachePort for handler tests.
type fakeCache struct {
	uploadID  domain.ID
	uploadErr error
	gotData   []byte
	gotOpts   cache.UploadOptions

	fetchContent cache.Content
	fetchErr     error
	gotFetchID   domain.ID

	entries []cache.EntryView
}

func (f *fakeCache) UploadFile(ctx context.Context, data []byte, opts cache.UploadOptions) (domain.ID, error) {
	f.gotData = data
	f.gotOpts = opts
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return f.uploadID, nil
}

func (f *fakeCache) FetchFile(ctx context.Context, id domain.ID) (cache.Content, error) {
	f.gotFetchID = id
	if f.fetchErr != nil {
		return cache.Content{}, f.fetchErr
	}
	return f.fetchContent, nil
}

func (f *fakeCache) FetchEntries(ctx context.Context) []cache.EntryView {
	return f.entries
}

// newMultipartUpload builds a multipart/form-data request body with a single
// "file" field, for exercising handleUpload.
func newMultipartUpload(filename string, content []byte) (io.Reader, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		panic(err)
	}
	_, _ = part.Write(content)
	_ = mw.Close()
	return &buf, mw.FormDataContentType()
}

func newHandler(c CachePort) *Handler {
	return New(c, 0, nil)
}

func doRequest(h http.Handler, method, target string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
