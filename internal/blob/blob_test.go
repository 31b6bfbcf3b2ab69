package blob

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestReadAsDataURL(t *testing.T) {
	got, err := ReadAsDataURL(context.Background(), strings.NewReader("hi"), "image/jpeg")
	if err != nil {
		t.Fatalf("ReadAsDataURL: %v", err)
	}
	if got != "data:image/jpeg;base64,aGk=" {
		t.Errorf("got %q", got)
	}
}

func TestReadAsDataURL_MediaTypeFallback(t *testing.T) {
	cases := map[string]string{
		"":                         "data:application/octet-stream;base64,",
		"image/png; charset=utf-8": "data:image/png;base64,",
		";;":                       "data:application/octet-stream;base64,",
	}
	for in, want := range cases {
		got, err := ReadAsDataURL(context.Background(), strings.NewReader(""), in)
		if err != nil {
			t.Fatalf("ReadAsDataURL(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ReadAsDataURL(%q) = %q, want %q", in, got, want)
		}
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestReadAsDataURL_ReadError(t *testing.T) {
	_, err := ReadAsDataURL(context.Background(), failingReader{}, "image/jpeg")
	if !errors.Is(err, ErrRead) {
		t.Errorf("err = %v, want ErrRead", err)
	}
}

func TestReadAsDataURL_ContextCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := ReadAsDataURL(ctx, pr, "image/jpeg")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want DeadlineExceeded", err)
	}
}

func TestRegistryServeAndRevoke(t *testing.T) {
	reg := NewRegistry("http://example.test/")
	url := reg.Create([]byte("jpeg bytes"), "image/jpeg")
	if !strings.HasPrefix(url, "http://example.test/blob/") {
		t.Fatalf("url = %q", url)
	}
	if reg.Len() != 1 {
		t.Fatalf("Len = %d, want 1", reg.Len())
	}

	id := strings.TrimPrefix(url, "http://example.test/blob")
	req := httptest.NewRequest(http.MethodGet, id, nil)
	w := httptest.NewRecorder()
	reg.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Body.String() != "jpeg bytes" {
		t.Errorf("body = %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("content-type = %q", ct)
	}

	reg.Revoke(url)
	if reg.Len() != 0 {
		t.Errorf("Len after revoke = %d", reg.Len())
	}
	w = httptest.NewRecorder()
	reg.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, id, nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status after revoke = %d, want 404", w.Code)
	}
}

func TestRegistryConditionalGet(t *testing.T) {
	reg := NewRegistry("http://example.test")
	url := reg.Create([]byte("jpeg bytes"), "image/jpeg")
	path := strings.TrimPrefix(url, "http://example.test/blob")

	w := httptest.NewRecorder()
	reg.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	reg.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Errorf("status = %d, want 304", w.Code)
	}
}
