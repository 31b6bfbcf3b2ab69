package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/darkroom/internal/gallery"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *gallery.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/photos", h.ListPhotos)
	r.Post("/photos", h.CapturePhoto)
	r.Post("/photos/reload", h.ReloadPhotos)
	r.Delete("/photos/{position}", h.DeletePhoto)
	r.Get("/snapshot", h.Snapshot)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
