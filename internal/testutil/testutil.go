// Package testutil provides shared test helpers for setting up stores
// and sample snippets.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/JulianC775/CodeClip/internal/models"
	"github.com/JulianC775/CodeClip/internal/persist"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestFS creates an FS provider in a temp directory that is cleaned up
// automatically.
func TestFS(t *testing.T) *persist.FS {
	t.Helper()
	fs, err := persist.NewFS(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

// TestSQLite creates a temporary SQLite provider that is cleaned up
// automatically.
func TestSQLite(t *testing.T) *persist.SQLite {
	t.Helper()
	dbFile, err := os.CreateTemp("", "codeclip-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := persist.OpenSQLite(dbFile.Name(), 0)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Snippet builds a sample snippet with millisecond-precision timestamps
// (the interchange format's resolution).
func Snippet(id, title, language string, tags ...string) models.Snippet {
	now := time.UnixMilli(time.Now().UnixMilli())
	return models.Snippet{
		ID:        id,
		Title:     title,
		Language:  language,
		Code:      "// " + title,
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
