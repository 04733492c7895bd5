// Package clipsvc is the narrow interface UI collaborators drive the
// core through: dispatch, derived views, and bulk import/export.
package clipsvc

import (
	"fmt"

	"github.com/JulianC775/CodeClip/internal/apperr"
	"github.com/JulianC775/CodeClip/internal/codec"
	"github.com/JulianC775/CodeClip/internal/models"
	"github.com/JulianC775/CodeClip/internal/store"
	"github.com/JulianC775/CodeClip/internal/view"
)

// ImportMode selects how a validated payload is merged into the collection.
type ImportMode string

const (
	// ImportReplace swaps the entire collection for the payload.
	ImportReplace ImportMode = "replace"
	// ImportMerge unions the payload with the collection; incoming
	// snippets win id collisions.
	ImportMerge ImportMode = "merge"
)

// Service coordinates the snippet store, the view deriver, and the codec.
type Service struct {
	store *store.Store
}

// NewService creates a new Service around the given store.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// Dispatch applies an action and returns the resulting snapshot.
func (s *Service) Dispatch(a store.Action) (models.Collection, error) {
	return s.store.Dispatch(a)
}

// Snapshot returns a read-only copy of the current collection state.
func (s *Service) Snapshot() models.Collection {
	return s.store.Snapshot()
}

// Get returns the snippet with the given id.
func (s *Service) Get(id string) (models.Snippet, error) {
	snap := s.store.Snapshot()
	sn, ok := snap.Snippets[id]
	if !ok {
		return models.Snippet{}, fmt.Errorf("clipsvc: snippet %q: %w", id, apperr.ErrNotFound)
	}
	return sn, nil
}

// View derives the filtered, ordered snippet sequence for display.
func (s *Service) View(query, language string) []models.Snippet {
	return view.Derive(s.store.Snapshot().List(), query, language)
}

// Languages returns the sorted set of languages present in the collection.
func (s *Service) Languages() []string {
	return view.DistinctLanguages(s.store.Snapshot().List())
}

// Export serializes the current collection to its portable form.
func (s *Service) Export() ([]byte, error) {
	return codec.Serialize(s.store.Snapshot().List())
}

// Import validates an external payload and merges it into the collection
// per mode, returning the number of snippets carried. Validation is
// all-or-nothing: on any error the existing collection is left unmodified.
func (s *Service) Import(data []byte, mode ImportMode) (int, error) {
	snippets, err := codec.Deserialize(data)
	if err != nil {
		return 0, err
	}

	var action store.Action
	switch mode {
	case ImportReplace:
		action = store.ReplaceAll{Snippets: snippets}
	case ImportMerge:
		action = store.ImportMerge{Snippets: snippets}
	default:
		return 0, fmt.Errorf("clipsvc: unknown import mode %q", mode)
	}

	if _, err := s.store.Dispatch(action); err != nil {
		return 0, err
	}
	return len(snippets), nil
}

// Reload swaps the collection for externally loaded, already durable
// content (store-file watcher path).
func (s *Service) Reload(snippets []models.Snippet) {
	s.store.Replace(snippets)
}

// Flush commits any pending debounced save.
func (s *Service) Flush() error {
	return s.store.Flush()
}

// Close flushes and releases the store.
func (s *Service) Close() error {
	return s.store.Close()
}
