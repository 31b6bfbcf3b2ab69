package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/starford/darkroom/internal/apperr"
	"github.com/starford/darkroom/internal/camera"
	"github.com/starford/darkroom/internal/gallery"
	"github.com/starford/darkroom/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc *gallery.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *gallery.Service) *Handler {
	return &Handler{svc: svc}
}

// ListPhotos handles GET /api/photos.
//
//	@Summary		List photos, newest first
//	@Tags			photos
//	@Produce		json
//	@Success		200	{object}	PhotoListResponse
//	@Security		BearerAuth
//	@Router			/photos [get]
func (h *Handler) ListPhotos(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, PhotoListResponse{Photos: h.svc.Photos()})
}

// CapturePhoto handles POST /api/photos.
//
//	@Summary		Take a photo and add it to the gallery
//	@Tags			photos
//	@Produce		json
//	@Success		201	{object}	Photo
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/photos [post]
func (h *Handler) CapturePhoto(w http.ResponseWriter, r *http.Request) {
	photo, err := h.svc.AddNewToGallery(r.Context())
	if err != nil {
		if errors.Is(err, camera.ErrCancelled) {
			writeError(w, http.StatusConflict, "capture cancelled")
			return
		}
		slog.Error("capture failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, photo)
}

// ReloadPhotos handles POST /api/photos/reload.
//
//	@Summary		Replace the in-memory list with the persisted snapshot
//	@Tags			photos
//	@Produce		json
//	@Success		200	{object}	PhotoListResponse
//	@Security		BearerAuth
//	@Router			/photos/reload [post]
func (h *Handler) ReloadPhotos(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.LoadSaved(r.Context()); err != nil {
		slog.Error("reload failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, PhotoListResponse{Photos: h.svc.Photos()})
}

// DeletePhoto handles DELETE /api/photos/{position}.
//
//	@Summary		Delete the photo at a list position
//	@Tags			photos
//	@Accept			json
//	@Param			position	path	int					true	"Position in the current list"
//	@Param			body		body	DeletePhotoRequest	false	"Record being deleted"
//	@Success		204			"Photo deleted"
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/photos/{position} [delete]
func (h *Handler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	position, err := strconv.Atoi(chi.URLParam(r, "position"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "position must be an integer")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	var photo models.Photo
	if len(body) > 0 {
		var req DeletePhotoRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Filepath == "" {
			writeError(w, http.StatusBadRequest, "filepath is required")
			return
		}
		photo = models.Photo{Filepath: req.Filepath, DisplayPath: req.DisplayPath}
	} else {
		photos := h.svc.Photos()
		if position < 0 || position >= len(photos) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		photo = photos[position]
	}

	if err := h.svc.DeletePicture(r.Context(), photo, position); err != nil {
		if errors.Is(err, apperr.ErrInvalidPosition) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		slog.Error("delete photo failed", slog.Int("position", position), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Snapshot handles GET /api/snapshot and returns the persisted list verbatim.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Snapshot(r.Context())
	if err != nil {
		slog.Error("snapshot failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(snap))
}
