package persist

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/JulianC775/CodeClip/internal/apperr"
	"github.com/JulianC775/CodeClip/internal/checksum"
	"github.com/JulianC775/CodeClip/internal/codec"
	"github.com/JulianC775/CodeClip/internal/models"
)

// StoreFile is the fixed name of the persisted collection inside the
// data directory.
const StoreFile = "collection.json"

// FS implements Provider backed by a single JSON document on the local
// file system.
type FS struct {
	dir      string // absolute path to the data directory
	maxBytes int64  // 0 means unlimited

	mu      sync.Mutex
	lastSum string // checksum of the most recently written payload
}

// NewFS creates an FS provider rooted at dir, creating it if needed.
// maxBytes caps the serialized payload size; saves above it fail with
// apperr.ErrQuotaExceeded.
func NewFS(dir string, maxBytes int64) (*FS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("persist: resolve dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("persist: create dir: %w", err)
	}
	return &FS{dir: abs, maxBytes: maxBytes}, nil
}

// Path returns the absolute path of the store file.
func (f *FS) Path() string {
	return filepath.Join(f.dir, StoreFile)
}

// Load reads and decodes the persisted collection.
func (f *FS) Load() ([]models.Snippet, error) {
	data, err := os.ReadFile(f.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("persist: read: %w", err)
	}

	snippets, err := codec.Deserialize(data)
	if err != nil {
		return nil, fmt.Errorf("persist: %w: %v", apperr.ErrCorrupt, err)
	}

	f.mu.Lock()
	f.lastSum = checksum.Sum(data)
	f.mu.Unlock()
	return snippets, nil
}

// Save serializes the collection and atomically replaces the store file:
// tmp file → fsync → rename. A failed save leaves the previous file intact.
func (f *FS) Save(snippets []models.Snippet) error {
	data, err := codec.Serialize(snippets)
	if err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return fmt.Errorf("persist: payload is %d bytes, limit %d: %w", len(data), f.maxBytes, apperr.ErrQuotaExceeded)
	}

	tmp, err := os.CreateTemp(f.dir, ".codeclip-tmp-*")
	if err != nil {
		return fmt.Errorf("persist: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("persist: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("persist: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("persist: close temp: %w", err)
	}
	if err := os.Rename(tmpName, f.Path()); err != nil {
		return fmt.Errorf("persist: rename: %w", err)
	}
	success = true

	f.mu.Lock()
	f.lastSum = checksum.Sum(data)
	f.mu.Unlock()
	return nil
}

// LastChecksum returns the checksum of the last payload written or
// loaded by this provider. The watcher uses it to skip events caused by
// our own saves.
func (f *FS) LastChecksum() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSum
}

// Close is a no-op for the file-system backend.
func (f *FS) Close() error { return nil }

var _ Provider = (*FS)(nil)
