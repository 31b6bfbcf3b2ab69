// Package storage defines the photo file-system abstraction.
package storage

import "context"

// Directory is a logical storage location.
type Directory string

const (
	// DirectoryNone addresses files by absolute path or file:// URI.
	DirectoryNone Directory = ""
	// DirectoryData is the application data directory holding every stored photo.
	DirectoryData Directory = "DATA"
)

// Provider is the interface for photo file operations.
type Provider interface {
	// WriteFile decodes base64 data (a data URI prefix is allowed) and stores it at
	// path inside dir. It returns the canonical file:// URI of the stored file.
	WriteFile(ctx context.Context, path, data string, dir Directory) (string, error)
	// ReadFile returns the base64-encoded contents of path inside dir.
	ReadFile(ctx context.Context, path string, dir Directory) (string, error)
	// DeleteFile removes path inside dir.
	DeleteFile(ctx context.Context, path string, dir Directory) error
	// Root returns the absolute storage root.
	Root() string
}
