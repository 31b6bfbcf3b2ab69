package api

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

// FileHandler serves stored photo files addressed by converted file URIs.
type FileHandler struct {
	root string
}

// NewFileHandler creates a handler that only serves files under root.
func NewFileHandler(root string) *FileHandler {
	return &FileHandler{root: filepath.Clean(root)}
}

// ServeFile handles GET <platform.FilePrefix>/*, where * is the absolute file path.
func (h *FileHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "*")
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	abs := filepath.Clean("/" + raw)
	if !strings.HasPrefix(abs, h.root+string(os.PathSeparator)) {
		http.NotFound(w, r)
		return
	}
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}
