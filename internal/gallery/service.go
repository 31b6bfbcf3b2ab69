// Package gallery captures photos, stores them and keeps the newest-first
// photo list mirrored into the preference store.
package gallery

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/starford/darkroom/internal/apperr"
	"github.com/starford/darkroom/internal/camera"
	"github.com/starford/darkroom/internal/models"
	"github.com/starford/darkroom/internal/platform"
	"github.com/starford/darkroom/internal/prefs"
	"github.com/starford/darkroom/internal/storage"
)

// StorageKey is the preference key holding the JSON photo list snapshot.
const StorageKey = "photos"

// Event kinds passed to an EventCallback.
const (
	EventAdded   = "added"
	EventDeleted = "deleted"
	EventLoaded  = "loaded"
)

// EventCallback is called after a successful gallery mutation.
// filepath is empty for EventLoaded.
type EventCallback func(kind, filepath string)

// Option configures a Service.
type Option func(*options)

type options struct {
	logger *slog.Logger
	now    func() time.Time
	client *http.Client
	onEv   EventCallback
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock overrides the clock used for file names.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithHTTPClient sets the client used to fetch object URLs in browser mode.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// WithEventCallback registers cb for gallery changes.
func WithEventCallback(cb EventCallback) Option {
	return func(o *options) { o.onEv = cb }
}

// Service owns the in-memory photo list. All mutation goes through
// AddNewToGallery, LoadSaved and DeletePicture, each of which persists the
// list right after changing it.
type Service struct {
	camera   camera.Capturer
	store    storage.Provider
	kv       prefs.Store
	strategy Strategy
	logger   *slog.Logger
	onEv     EventCallback

	mu     sync.Mutex
	photos []models.Photo
}

// New creates a Service. The storage strategy is picked once from plat:
// native when it reports platform.Hybrid, browser otherwise.
func New(cam camera.Capturer, store storage.Provider, kv prefs.Store, plat platform.Platform, conv FileConverter, opts ...Option) *Service {
	o := options{
		logger: slog.Default(),
		now:    time.Now,
		client: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(&o)
	}

	var strategy Strategy
	if plat.Is(platform.Hybrid) {
		strategy = NewNativeStrategy(store, conv, o.now)
	} else {
		strategy = NewBrowserStrategy(store, o.client, o.now)
	}

	return &Service{
		camera:   cam,
		store:    store,
		kv:       kv,
		strategy: strategy,
		logger:   o.logger,
		onEv:     o.onEv,
		photos:   []models.Photo{},
	}
}

// Strategy returns the storage strategy selected at construction.
func (s *Service) Strategy() Strategy {
	return s.strategy
}

// Photos returns a copy of the in-memory list, newest first.
func (s *Service) Photos() []models.Photo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.photos)
}

// AddNewToGallery takes a photo, stores it and prepends its record to the list.
func (s *Service) AddNewToGallery(ctx context.Context) (models.Photo, error) {
	captured, err := s.camera.GetPhoto(ctx, camera.DefaultOptions())
	if err != nil {
		return models.Photo{}, fmt.Errorf("gallery: capture: %w", err)
	}

	rec, err := s.strategy.Save(ctx, captured)
	if err != nil {
		return models.Photo{}, err
	}

	s.mu.Lock()
	s.photos = slices.Insert(s.photos, 0, rec)
	err = s.persistLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return models.Photo{}, err
	}

	s.logger.Info("gallery: photo added", slog.String("filepath", rec.Filepath))
	s.emit(EventAdded, rec.Filepath)
	return rec, nil
}

// LoadSaved replaces the in-memory list with the persisted snapshot and
// restores display paths through the strategy. On failure the in-memory
// list is left as it was.
func (s *Service) LoadSaved(ctx context.Context) error {
	value, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return fmt.Errorf("gallery: load snapshot: %w", err)
	}

	photos := []models.Photo{}
	if ok && value != "" {
		if err := json.Unmarshal([]byte(value), &photos); err != nil {
			return fmt.Errorf("gallery: decode snapshot: %w", err)
		}
		if photos == nil {
			photos = []models.Photo{}
		}
	}

	for i := range photos {
		dp, err := s.strategy.Rehydrate(ctx, photos[i])
		if err != nil {
			return err
		}
		photos[i].DisplayPath = dp
	}

	s.mu.Lock()
	s.photos = photos
	s.mu.Unlock()

	s.logger.Info("gallery: loaded", slog.Int("count", len(photos)))
	s.emit(EventLoaded, "")
	return nil
}

// DeletePicture removes the entry at position, persists the list and then
// deletes photo's stored file. position must match the current list; photo
// is only used to locate the file.
func (s *Service) DeletePicture(ctx context.Context, photo models.Photo, position int) error {
	s.mu.Lock()
	if position < 0 || position >= len(s.photos) {
		n := len(s.photos)
		s.mu.Unlock()
		return fmt.Errorf("gallery: delete position %d of %d: %w", position, n, apperr.ErrInvalidPosition)
	}
	s.photos = slices.Delete(s.photos, position, position+1)
	err := s.persistLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	name := photo.Filepath[strings.LastIndex(photo.Filepath, "/")+1:]
	if err := s.store.DeleteFile(ctx, name, storage.DirectoryData); err != nil {
		return fmt.Errorf("gallery: delete file: %w", err)
	}

	s.logger.Info("gallery: photo deleted", slog.String("filepath", photo.Filepath), slog.Int("position", position))
	s.emit(EventDeleted, photo.Filepath)
	return nil
}

// Snapshot returns the persisted list exactly as stored, or "[]" when absent.
func (s *Service) Snapshot(ctx context.Context) (string, error) {
	value, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return "", fmt.Errorf("gallery: load snapshot: %w", err)
	}
	if !ok {
		return "[]", nil
	}
	return value, nil
}

// persistLocked writes the in-memory list under StorageKey. s.mu must be held.
func (s *Service) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.photos)
	if err != nil {
		return fmt.Errorf("gallery: encode snapshot: %w", err)
	}
	if err := s.kv.Set(ctx, StorageKey, string(data)); err != nil {
		return fmt.Errorf("gallery: persist snapshot: %w", err)
	}
	return nil
}

func (s *Service) emit(kind, filepath string) {
	if s.onEv != nil {
		s.onEv(kind, filepath)
	}
}
