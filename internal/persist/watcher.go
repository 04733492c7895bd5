package persist

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/JulianC775/CodeClip/internal/apperr"
	"github.com/JulianC775/CodeClip/internal/checksum"
	"github.com/JulianC775/CodeClip/internal/models"
)

// ReloadCallback is called with the freshly decoded snippets after an
// external modification of the store file.
type ReloadCallback func(snippets []models.Snippet)

// Watch observes the FS provider's data directory until ctx is cancelled
// and calls cb when the store file changes underneath us (hand-edited
// backup, another process, a sync client). Events caused by our own
// atomic saves are recognized by checksum and skipped.
//
// The atomic rename used by Save means the watch must sit on the
// directory, not the file: the inode changes on every write. Rapid
// successive events are coalesced with a short debounce timer.
func Watch(ctx context.Context, fs *FS, logger *slog.Logger, cb ReloadCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(fs.dir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("file", fs.Path()))

	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(200 * time.Millisecond)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reloadCh:
			reload(fs, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != StoreFile {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			scheduleReload()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reload re-reads the store file and invokes cb unless the content
// matches what this process last wrote.
func reload(fs *FS, logger *slog.Logger, cb ReloadCallback) {
	data, err := os.ReadFile(fs.Path())
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("watcher: read failed", slog.String("error", err.Error()))
		}
		return
	}
	if checksum.Sum(data) == fs.LastChecksum() {
		return
	}

	snippets, err := fs.Load()
	if err != nil {
		if errors.Is(err, apperr.ErrCorrupt) {
			logger.Warn("watcher: external edit is corrupt, keeping in-memory state",
				slog.String("error", err.Error()))
		} else {
			logger.Warn("watcher: reload failed", slog.String("error", err.Error()))
		}
		return
	}

	logger.Info("watcher: store file changed externally, reloading",
		slog.Int("snippets", len(snippets)))
	if cb != nil {
		cb(snippets)
	}
}
