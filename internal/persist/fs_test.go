package persist

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JulianC775/CodeClip/internal/apperr"
	"github.com/JulianC775/CodeClip/internal/models"
)

func tempFS(t *testing.T, maxBytes int64) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir(), maxBytes)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func sampleSnippets() []models.Snippet {
	ts := time.UnixMilli(1700000000000)
	return []models.Snippet{
		{ID: "a", Title: "Quick sort", Language: "python", Code: "def qs(): ...", Tags: []string{"sort"}, CreatedAt: ts, UpdatedAt: ts},
		{ID: "b", Title: "Hello", Language: "go", Code: "fmt.Println", Tags: []string{}, CreatedAt: ts, UpdatedAt: ts},
	}
}

func TestFSSaveAndLoad(t *testing.T) {
	fs := tempFS(t, 0)
	if err := fs.Save(sampleSnippets()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := fs.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestFSLoadNotFound(t *testing.T) {
	fs := tempFS(t, 0)
	if _, err := fs.Load(); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFSLoadCorrupt(t *testing.T) {
	fs := tempFS(t, 0)
	if err := os.WriteFile(fs.Path(), []byte("not json at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := fs.Load(); !errors.Is(err, apperr.ErrCorrupt) {
		t.Errorf("err = %v, want ErrCorrupt", err)
	}
}

func TestFSQuotaExceeded(t *testing.T) {
	fs := tempFS(t, 64)
	err := fs.Save(sampleSnippets())
	if !errors.Is(err, apperr.ErrQuotaExceeded) {
		t.Errorf("err = %v, want ErrQuotaExceeded", err)
	}
}

func TestFSFailedSaveKeepsPreviousValue(t *testing.T) {
	// A save rejected by the quota must leave the previously persisted
	// payload intact (atomic replace, no partial writes).
	fs := tempFS(t, 0)
	if err := fs.Save(sampleSnippets()[:1]); err != nil {
		t.Fatalf("Save: %v", err)
	}

	fs.maxBytes = 64
	if err := fs.Save(sampleSnippets()); !errors.Is(err, apperr.ErrQuotaExceeded) {
		t.Fatalf("err = %v, want ErrQuotaExceeded", err)
	}

	fs.maxBytes = 0
	got, err := fs.Load()
	if err != nil {
		t.Fatalf("Load after failed save: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("previous value lost: %v", got)
	}
}

func TestFSNoTempLeftovers(t *testing.T) {
	fs := tempFS(t, 0)
	if err := fs.Save(sampleSnippets()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := fs.Save(sampleSnippets()[:1]); err != nil {
		t.Fatalf("Save: %v", err)
	}
	matches, _ := filepath.Glob(filepath.Join(fs.dir, ".codeclip-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestFSLastChecksumTracksWrites(t *testing.T) {
	fs := tempFS(t, 0)
	if fs.LastChecksum() != "" {
		t.Error("checksum should start empty")
	}
	if err := fs.Save(sampleSnippets()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	first := fs.LastChecksum()
	if first == "" {
		t.Fatal("checksum not recorded after save")
	}
	if err := fs.Save(sampleSnippets()[:1]); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if fs.LastChecksum() == first {
		t.Error("checksum should change when content changes")
	}
}
