package gallery

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/starford/darkroom/internal/blob"
	"github.com/starford/darkroom/internal/camera"
	"github.com/starford/darkroom/internal/models"
	"github.com/starford/darkroom/internal/storage"
)

// inlinePrefix is prepended to stored base64 data when rehydrating in a browser.
const inlinePrefix = "data:image/jpeg;base64,"

// Strategy stores captures and restores display paths for one runtime environment.
type Strategy interface {
	// Save encodes and stores a capture and returns its record.
	Save(ctx context.Context, photo *camera.Photo) (models.Photo, error)
	// Rehydrate returns the display path to use for a record restored from the snapshot.
	Rehydrate(ctx context.Context, p models.Photo) (string, error)
}

// FileName returns the stored file name for a capture taken at t: the
// millisecond epoch directly followed by "jpeg". There is no dot before the
// extension; snapshots already on disk depend on this form.
func FileName(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10) + "jpeg"
}

// FileConverter turns a native file URI into a renderable URL.
type FileConverter interface {
	ConvertFileSrc(uri string) string
}

// NativeStrategy serves native-wrapped runtimes, where stored file URIs
// stay valid across restarts.
type NativeStrategy struct {
	store storage.Provider
	conv  FileConverter
	now   func() time.Time
}

// NewNativeStrategy creates a NativeStrategy.
func NewNativeStrategy(store storage.Provider, conv FileConverter, now func() time.Time) *NativeStrategy {
	return &NativeStrategy{store: store, conv: conv, now: now}
}

// Save reads the capture straight from the device path and stores a copy.
func (n *NativeStrategy) Save(ctx context.Context, photo *camera.Photo) (models.Photo, error) {
	data, err := n.store.ReadFile(ctx, photo.Path, storage.DirectoryNone)
	if err != nil {
		return models.Photo{}, fmt.Errorf("gallery: read capture: %w", err)
	}
	uri, err := n.store.WriteFile(ctx, FileName(n.now()), data, storage.DirectoryData)
	if err != nil {
		return models.Photo{}, fmt.Errorf("gallery: write photo: %w", err)
	}
	return models.Photo{
		Filepath:    uri,
		DisplayPath: n.conv.ConvertFileSrc(uri),
	}, nil
}

// Rehydrate keeps the persisted display path.
func (n *NativeStrategy) Rehydrate(_ context.Context, p models.Photo) (string, error) {
	return p.DisplayPath, nil
}

// BrowserStrategy serves plain browser runtimes, where object URLs do not
// survive a reload.
type BrowserStrategy struct {
	store  storage.Provider
	client *http.Client
	now    func() time.Time
}

// NewBrowserStrategy creates a BrowserStrategy.
func NewBrowserStrategy(store storage.Provider, client *http.Client, now func() time.Time) *BrowserStrategy {
	return &BrowserStrategy{store: store, client: client, now: now}
}

// Save fetches the capture's object URL, converts the blob to a data URI and stores it.
func (b *BrowserStrategy) Save(ctx context.Context, photo *camera.Photo) (models.Photo, error) {
	data, err := b.fetchDataURL(ctx, photo.WebPath)
	if err != nil {
		return models.Photo{}, err
	}
	name := FileName(b.now())
	if _, err := b.store.WriteFile(ctx, name, data, storage.DirectoryData); err != nil {
		return models.Photo{}, fmt.Errorf("gallery: write photo: %w", err)
	}
	// The object URL is already loaded, so it is displayed as-is.
	return models.Photo{
		Filepath:    name,
		DisplayPath: photo.WebPath,
	}, nil
}

// Rehydrate reads the stored file and inlines it as a data URI.
func (b *BrowserStrategy) Rehydrate(ctx context.Context, p models.Photo) (string, error) {
	data, err := b.store.ReadFile(ctx, p.Filepath, storage.DirectoryData)
	if err != nil {
		return "", fmt.Errorf("gallery: read %s: %w", p.Filepath, err)
	}
	return inlinePrefix + data, nil
}

func (b *BrowserStrategy) fetchDataURL(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("gallery: fetch %s: %w", url, err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gallery: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("gallery: fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	data, err := blob.ReadAsDataURL(ctx, resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("gallery: convert blob: %w", err)
	}
	return data, nil
}
