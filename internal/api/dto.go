package api

import "github.com/starford/darkroom/internal/models"

// Photo is a photo record in API responses (aliased from the domain layer).
type Photo = models.Photo

// PhotoListResponse wraps the in-memory photo list, newest first.
type PhotoListResponse struct {
	Photos []Photo `json:"photos" validate:"required"`
}

// DeletePhotoRequest optionally names the record being deleted. When omitted
// the record currently at the requested position is used.
type DeletePhotoRequest struct {
	Filepath    string `json:"filepath" example:"1700000000000jpeg"`
	DisplayPath string `json:"webviewPath,omitempty" example:"blob:http://localhost:8080/blob/6f1c"`
}
