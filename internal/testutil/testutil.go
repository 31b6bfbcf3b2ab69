// Package testutil provides shared test helpers for setting up storage and preferences.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/starford/darkroom/internal/prefs"
	"github.com/starford/darkroom/internal/storage"
)

// TestPrefs creates a temporary SQLite preference store that is automatically closed.
func TestPrefs(t *testing.T) *prefs.DB {
	t.Helper()
	db, err := prefs.Open(filepath.Join(t.TempDir(), "darkroom-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestStorage creates a temporary storage root with a storage.FS on top.
func TestStorage(t *testing.T) (string, *storage.FS) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}
