package camera

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultSettle = 200 * time.Millisecond

// ObjectURLs mints object URLs for captured bytes.
type ObjectURLs interface {
	Create(data []byte, mediaType string) string
}

// Folder is a device camera backed by a spool directory: the device drops
// each shot there and GetPhoto returns the first image that appears after
// the call starts.
type Folder struct {
	dir     string
	settle  time.Duration
	objects ObjectURLs
	logger  *slog.Logger
}

// NewFolder creates a camera watching dir. settle is how long a new file must
// stay quiet before it counts as complete. objects may be nil, in which case
// captures carry no WebPath.
func NewFolder(dir string, settle time.Duration, objects ObjectURLs, logger *slog.Logger) (*Folder, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("camera: resolve spool dir: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("camera: stat spool dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("camera: spool path is not a directory: %s", abs)
	}
	if settle <= 0 {
		settle = defaultSettle
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Folder{dir: abs, settle: settle, objects: objects, logger: logger}, nil
}

// GetPhoto suspends until a new image lands in the spool directory and its
// writes settle, or ctx is done.
func (f *Folder) GetPhoto(ctx context.Context, opts Options) (*Photo, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("camera: invalid options: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("camera: new watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(f.dir); err != nil {
		return nil, fmt.Errorf("camera: watch %s: %w", f.dir, err)
	}
	f.logger.Debug("camera: waiting for capture", slog.String("dir", f.dir))

	var (
		pending  string
		settleT  *time.Timer
		settleCh <-chan time.Time
	)
	defer func() {
		if settleT != nil {
			settleT.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())

		case ev, ok := <-w.Events:
			if !ok {
				return nil, ErrCancelled
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || !isImage(ev.Name) {
				continue
			}
			pending = ev.Name
			if settleT == nil {
				settleT = time.NewTimer(f.settle)
				settleCh = settleT.C
			} else {
				settleT.Reset(f.settle)
			}

		case <-settleCh:
			photo, err := f.photo(pending)
			if err != nil {
				return nil, err
			}
			f.logger.Info("camera: captured", slog.String("path", pending))
			return photo, nil

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil, ErrCancelled
			}
			return nil, fmt.Errorf("camera: watcher: %w", watchErr)
		}
	}
}

func (f *Folder) photo(abs string) (*Photo, error) {
	ext := strings.ToLower(filepath.Ext(abs))
	p := &Photo{
		Path:   (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(),
		Format: formatOf(ext),
	}
	if f.objects != nil {
		data, err := os.ReadFile(abs)
		if err != nil {
			return nil, fmt.Errorf("camera: read capture: %w", err)
		}
		p.WebPath = f.objects.Create(data, mediaTypeOf(ext))
	}
	return p, nil
}

func isImage(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

func formatOf(ext string) string {
	if ext == ".jpg" {
		return "jpeg"
	}
	return strings.TrimPrefix(ext, ".")
}

func mediaTypeOf(ext string) string {
	if mt := mime.TypeByExtension(ext); mt != "" {
		return mt
	}
	return "image/jpeg"
}
