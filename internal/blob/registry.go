// Package blob holds in-memory object URLs and converts blobs to data URIs.
package blob

import (
	"bytes"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/starford/darkroom/internal/checksum"
)

// PathPrefix is where the registry is mounted.
const PathPrefix = "/blob"

type entry struct {
	data      []byte
	mediaType string
	etag      string
	created   time.Time
}

// Registry maps object URLs to bytes held in memory until revoked.
type Registry struct {
	base string

	mu      sync.RWMutex
	entries map[string]entry
}

// NewRegistry returns a registry minting URLs below publicURL.
func NewRegistry(publicURL string) *Registry {
	return &Registry{
		base:    strings.TrimRight(publicURL, "/") + PathPrefix + "/",
		entries: make(map[string]entry),
	}
}

// Create stores data and returns its object URL.
func (r *Registry) Create(data []byte, mediaType string) string {
	id := uuid.NewString()
	etag := checksum.ETag(data)
	r.mu.Lock()
	r.entries[id] = entry{data: data, mediaType: mediaType, etag: etag, created: time.Now()}
	r.mu.Unlock()
	return r.base + id
}

// Revoke releases the bytes behind url. Unknown URLs are ignored.
func (r *Registry) Revoke(url string) {
	id, ok := strings.CutPrefix(url, r.base)
	if !ok {
		return
	}
	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()
}

// Len returns the number of live object URLs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Handler serves GET /{id}; mount it at PathPrefix.
func (r *Registry) Handler() http.Handler {
	router := chi.NewRouter()
	router.Get("/{id}", r.serve)
	return router
}

func (r *Registry) serve(w http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		http.NotFound(w, req)
		return
	}
	if e.mediaType != "" {
		w.Header().Set("Content-Type", e.mediaType)
	}
	w.Header().Set("ETag", e.etag)
	http.ServeContent(w, req, id, e.created, bytes.NewReader(e.data))
}
