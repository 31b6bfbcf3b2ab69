package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func tempStore(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestWriteAndRead(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	uri, err := s.WriteFile(ctx, "1700000000000jpeg", b64("jpeg bytes"), DirectoryData)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	want := URI(filepath.Join(s.Root(), "data", "1700000000000jpeg"))
	if uri != want {
		t.Errorf("uri = %q, want %q", uri, want)
	}

	got, err := s.ReadFile(ctx, "1700000000000jpeg", DirectoryData)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got != b64("jpeg bytes") {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteStripsDataURI(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	if _, err := s.WriteFile(ctx, "a", "data:image/jpeg;base64,"+b64("pixels"), DirectoryData); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(s.Root(), "data", "a"))
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}
	if string(raw) != "pixels" {
		t.Errorf("raw = %q, want pixels", raw)
	}
}

func TestWriteRejectsInvalidBase64(t *testing.T) {
	s := tempStore(t)
	if _, err := s.WriteFile(context.Background(), "bad", "not base64!", DirectoryData); err == nil {
		t.Error("expected decode error")
	}
}

func TestReadByURI(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	uri, err := s.WriteFile(ctx, "p", b64("x"), DirectoryData)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := s.ReadFile(ctx, uri, DirectoryNone)
	if err != nil {
		t.Fatalf("ReadFile by uri: %v", err)
	}
	if got != b64("x") {
		t.Errorf("content = %q", got)
	}

	abs := filepath.Join(s.Root(), "data", "p")
	if _, err := s.ReadFile(ctx, abs, DirectoryNone); err != nil {
		t.Errorf("ReadFile by absolute path: %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()
	_, _ = s.WriteFile(ctx, "del", b64("bye"), DirectoryData)
	if err := s.DeleteFile(ctx, "del", DirectoryData); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	_, err := s.ReadFile(ctx, "del", DirectoryData)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist reading deleted file, got %v", err)
	}
}

func TestMutationsRequireDirectory(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()
	if _, err := s.WriteFile(ctx, "x", b64("x"), DirectoryNone); !errors.Is(err, ErrDirectoryRequired) {
		t.Errorf("write err = %v, want ErrDirectoryRequired", err)
	}
	if err := s.DeleteFile(ctx, "x", DirectoryNone); !errors.Is(err, ErrDirectoryRequired) {
		t.Errorf("delete err = %v, want ErrDirectoryRequired", err)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	cases := []string{
		"../../etc/passwd",
		"../outside",
		"/etc/shadow",
		".",
	}
	for _, p := range cases {
		if _, err := s.ReadFile(ctx, p, DirectoryData); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if _, err := s.WriteFile(ctx, p, b64("x"), DirectoryData); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()
	_, _ = s.WriteFile(ctx, "atomic", b64("original"), DirectoryData)
	if _, err := s.WriteFile(ctx, "atomic", b64("updated"), DirectoryData); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, _ := s.ReadFile(ctx, "atomic", DirectoryData)
	if got != b64("updated") {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(s.Root(), "data", ".darkroom-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestCancelledContext(t *testing.T) {
	s := tempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.WriteFile(ctx, "x", b64("x"), DirectoryData); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestURI(t *testing.T) {
	got := URI("/var/lib/darkroom/data/1jpeg")
	if !strings.HasPrefix(got, "file:///") {
		t.Errorf("URI = %q, want file:/// prefix", got)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp(t.TempDir(), "darkroom-test-*")
	_ = f.Close()
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
