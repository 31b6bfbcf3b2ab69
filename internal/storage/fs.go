package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrEscapesRoot is returned for paths that resolve outside their directory.
	ErrEscapesRoot = errors.New("storage: path escapes directory")
	// ErrDirectoryRequired is returned when a mutating call targets DirectoryNone.
	ErrDirectoryRequired = errors.New("storage: directory is required")
)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to the storage root
}

// NewFS creates a new FS provider rooted at the given directory.
// The root must already exist; named directories below it are created on demand.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute storage root.
func (f *FS) Root() string {
	return f.root
}

// URI returns the file:// URI for an absolute path.
func URI(abs string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}

func (f *FS) dirPath(dir Directory) string {
	return filepath.Join(f.root, strings.ToLower(string(dir)))
}

// resolve maps path inside dir to an absolute path. Named directories reject
// any result that escapes them; DirectoryNone accepts file:// URIs and
// absolute paths as given.
func (f *FS) resolve(path string, dir Directory) (string, error) {
	if dir == DirectoryNone {
		if strings.HasPrefix(path, "file://") {
			u, err := url.Parse(path)
			if err != nil {
				return "", fmt.Errorf("storage: parse uri %s: %w", path, err)
			}
			path = filepath.FromSlash(u.Path)
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(f.root, path)
		}
		return filepath.Clean(path), nil
	}

	base := f.dirPath(dir)
	if path == "" {
		return "", fmt.Errorf("storage: empty path")
	}
	cleaned := filepath.Clean(path)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("%w: absolute path %s", ErrEscapesRoot, path)
	}
	abs, err := filepath.Abs(filepath.Join(base, cleaned))
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, base+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrEscapesRoot, path)
	}
	return abs, nil
}

// WriteFile atomically writes the decoded data: tmp file, fsync, rename.
func (f *FS) WriteFile(ctx context.Context, path, data string, dir Directory) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if dir == DirectoryNone {
		return "", ErrDirectoryRequired
	}
	abs, err := f.resolve(path, dir)
	if err != nil {
		return "", err
	}
	content, err := decode(data)
	if err != nil {
		return "", fmt.Errorf("storage: decode %s: %w", path, err)
	}

	parent := filepath.Dir(abs)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(parent, ".darkroom-tmp-*")
	if err != nil {
		return "", fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return "", fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return "", fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return URI(abs), nil
}

// ReadFile returns the file contents as standard base64.
func (f *FS) ReadFile(ctx context.Context, path string, dir Directory) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	abs, err := f.resolve(path, dir)
	if err != nil {
		return "", err
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("storage: read %s: %w", path, err)
	}
	return base64.StdEncoding.EncodeToString(content), nil
}

// DeleteFile removes a file from dir.
func (f *FS) DeleteFile(ctx context.Context, path string, dir Directory) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dir == DirectoryNone {
		return ErrDirectoryRequired
	}
	abs, err := f.resolve(path, dir)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: delete %s: %w", path, err)
	}
	return nil
}

// decode strips an optional data URI header and decodes the base64 payload.
func decode(data string) ([]byte, error) {
	if strings.HasPrefix(data, "data:") {
		_, payload, ok := strings.Cut(data, ",")
		if !ok {
			return nil, fmt.Errorf("invalid data URI: missing comma separator")
		}
		data = payload
	}
	return base64.StdEncoding.DecodeString(data)
}
