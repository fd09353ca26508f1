// Package testutil provides shared test helpers for setting up docs trees
// and cache databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/ansuz/internal/cache"
	"github.com/starford/ansuz/internal/storage"
)

// TestDocs creates a temporary docs directory with a storage.Provider.
func TestDocs(t *testing.T) (string, storage.Provider) {
	t.Helper()
	docsRoot := t.TempDir()
	store, err := storage.NewFS(docsRoot)
	if err != nil {
		t.Fatal(err)
	}
	return docsRoot, store
}

// WriteDoc writes a Markdown document under root, creating parent
// directories as needed.
func WriteDoc(t *testing.T, root, path, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// TestCache creates a temporary SQLite cache that is automatically closed.
func TestCache(t *testing.T) cache.Store {
	t.Helper()
	db, err := cache.Open(filepath.Join(t.TempDir(), "ansuz-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
