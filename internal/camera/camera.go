// Package camera defines the capture device abstraction.
package camera

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrCancelled is returned when a capture is abandoned before a photo is taken.
var ErrCancelled = errors.New("camera: capture cancelled")

// ResultType selects how a capture is handed back.
type ResultType string

// Source selects the capture source.
type Source string

const (
	// ResultURI returns a reference to the captured bytes rather than the bytes inline.
	ResultURI ResultType = "uri"
	// SourceCamera captures from the device camera.
	SourceCamera Source = "camera"
)

// Options configures a capture.
type Options struct {
	Quality    int
	ResultType ResultType
	Source     Source
}

// DefaultOptions is the fixed configuration used by the gallery.
func DefaultOptions() Options {
	return Options{Quality: 100, ResultType: ResultURI, Source: SourceCamera}
}

// Validate validates the capture options.
func (o Options) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Quality, validation.Min(0), validation.Max(100)),
		validation.Field(&o.ResultType, validation.Required, validation.In(ResultURI)),
		validation.Field(&o.Source, validation.Required, validation.In(SourceCamera)),
	)
}

// Photo is the result of a capture.
type Photo struct {
	// Path is the file:// URI of the captured file on the device.
	Path string `json:"path,omitempty"`
	// WebPath is an object URL that can be fetched or rendered directly.
	WebPath string `json:"webPath,omitempty"`
	Format  string `json:"format"`
}

// Capturer takes photos.
type Capturer interface {
	GetPhoto(ctx context.Context, opts Options) (*Photo, error)
}
