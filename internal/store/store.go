// Package store holds the authoritative snippet collection and drives it
// through a closed set of actions. The transition function is pure; the
// Store wraps it with dispatch serialization, write-through persistence
// and change notification.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/JulianC775/CodeClip/internal/apperr"
	"github.com/JulianC775/CodeClip/internal/models"
	"github.com/JulianC775/CodeClip/internal/persist"
)

// EventCallback is called after a successful mutating dispatch.
// kind is one of "created", "updated", "deleted", "replaced".
type EventCallback func(kind, id string)

// Option configures a Store.
type Option func(*Store)

// WithDebounce batches rapid successive saves into one write after the
// given quiet period. Flush (or Close) commits any pending write; the
// shutdown path must call one of them or the final mutation is not
// durable.
func WithDebounce(d time.Duration) Option {
	return func(s *Store) { s.debounce = d }
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithObserver registers the change-notification callback.
func WithObserver(cb EventCallback) Option {
	return func(s *Store) { s.observer = cb }
}

// Store owns the collection state. Dispatches are serialized with a
// mutex so transitions run to completion one at a time.
type Store struct {
	provider persist.Provider
	logger   *slog.Logger
	now      func() time.Time
	observer EventCallback
	debounce time.Duration

	mu    sync.Mutex
	state models.Collection
	timer *time.Timer
	dirty bool
}

// New seeds a Store from the provider. A missing persisted collection
// seeds empty; a corrupt one seeds empty with a warning instead of
// crashing. Any other load failure is returned.
func New(provider persist.Provider, logger *slog.Logger, opts ...Option) (*Store, error) {
	s := &Store{
		provider: provider,
		logger:   logger,
		now:      time.Now,
		state:    models.NewCollection(),
	}
	for _, opt := range opts {
		opt(s)
	}

	snippets, err := provider.Load()
	switch {
	case err == nil:
		for _, sn := range snippets {
			s.state.Snippets[sn.ID] = sn
		}
		logger.Info("store: loaded collection", slog.Int("snippets", len(snippets)))
	case errors.Is(err, apperr.ErrNotFound):
		logger.Info("store: no persisted collection, starting empty")
	case errors.Is(err, apperr.ErrCorrupt):
		logger.Warn("store: persisted collection is corrupt, starting empty",
			slog.String("error", err.Error()))
	default:
		return nil, fmt.Errorf("store: load: %w", err)
	}
	return s, nil
}

// Dispatch applies the action and persists the new collection
// (write-through, or deferred when debouncing). The returned snapshot is
// a deep copy.
//
// A transition error (duplicate id, missing id on update, unrecognized
// action) leaves the state untouched. A persistence error does NOT roll
// the in-memory state back: the core stays usable when the durable layer
// is unavailable, and the error is surfaced to the caller.
func (s *Store) Dispatch(a Action) (models.Collection, error) {
	s.mu.Lock()

	next, event, err := apply(s.state, a, s.now())
	if err != nil {
		s.mu.Unlock()
		return s.Snapshot(), err
	}
	s.state = next

	var saveErr error
	if mutatesSnippets(a) {
		if s.debounce > 0 {
			s.dirty = true
			if s.timer == nil {
				s.timer = time.AfterFunc(s.debounce, func() {
					if err := s.Flush(); err != nil {
						s.logger.Warn("store: debounced save failed", slog.String("error", err.Error()))
					}
				})
			} else {
				s.timer.Reset(s.debounce)
			}
		} else {
			saveErr = s.saveLocked()
		}
	}

	snapshot := s.state.Clone()
	s.mu.Unlock()

	if event.kind != "" && s.observer != nil {
		s.observer(event.kind, event.id)
	}
	return snapshot, saveErr
}

// Snapshot returns a deep copy of the current collection.
func (s *Store) Snapshot() models.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Replace swaps the collection without going through Dispatch
// persistence, for reloads whose content is already durable (the
// store-file watcher).
func (s *Store) Replace(snippets []models.Snippet) models.Collection {
	s.mu.Lock()
	next := s.state.Clone()
	next.Snippets = make(map[string]models.Snippet, len(snippets))
	for _, sn := range snippets {
		next.Snippets[sn.ID] = sn.Clone()
	}
	s.state = next
	snapshot := s.state.Clone()
	s.mu.Unlock()

	if s.observer != nil {
		s.observer("replaced", "")
	}
	return snapshot
}

// Flush commits a pending debounced save, if any.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	return s.saveLocked()
}

// Close flushes any pending save and stops the debounce timer.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
	return s.Flush()
}

func (s *Store) saveLocked() error {
	if err := s.provider.Save(s.state.List()); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// mutatesSnippets reports whether the action changes the snippet set
// (filter-only actions skip the persistence write-through).
func mutatesSnippets(a Action) bool {
	switch a.(type) {
	case SetSearchQuery, SetLanguageFilter, SetEditingTarget:
		return false
	}
	return true
}

type changeEvent struct {
	kind string
	id   string
}

// apply is the pure transition function. It never mutates state; it
// returns the next collection, the change event to broadcast, and the
// transition error if the action's precondition fails.
func apply(state models.Collection, a Action, now time.Time) (models.Collection, changeEvent, error) {
	next := state.Clone()

	switch act := a.(type) {
	case AddSnippet:
		sn := act.Snippet.Clone()
		if _, ok := next.Snippets[sn.ID]; ok {
			return state, changeEvent{}, fmt.Errorf("store: add %q: %w", sn.ID, apperr.ErrDuplicateID)
		}
		if sn.CreatedAt.IsZero() {
			sn.CreatedAt = now
		}
		if sn.UpdatedAt.Before(sn.CreatedAt) {
			sn.UpdatedAt = sn.CreatedAt
		}
		next.Snippets[sn.ID] = sn
		return next, changeEvent{"created", sn.ID}, nil

	case UpdateSnippet:
		sn := act.Snippet.Clone()
		existing, ok := next.Snippets[sn.ID]
		if !ok {
			return state, changeEvent{}, fmt.Errorf("store: update %q: %w", sn.ID, apperr.ErrNotFound)
		}
		sn.CreatedAt = existing.CreatedAt
		sn.UpdatedAt = now
		next.Snippets[sn.ID] = sn
		return next, changeEvent{"updated", sn.ID}, nil

	case DeleteSnippet:
		if _, ok := next.Snippets[act.ID]; !ok {
			return state, changeEvent{}, nil
		}
		delete(next.Snippets, act.ID)
		return next, changeEvent{"deleted", act.ID}, nil

	case ToggleFavorite:
		sn, ok := next.Snippets[act.ID]
		if !ok {
			return state, changeEvent{}, nil
		}
		sn.Favorite = !sn.Favorite
		sn.UpdatedAt = now
		next.Snippets[act.ID] = sn
		return next, changeEvent{"updated", act.ID}, nil

	case ReplaceAll:
		next.Snippets = make(map[string]models.Snippet, len(act.Snippets))
		for _, sn := range act.Snippets {
			next.Snippets[sn.ID] = sn.Clone()
		}
		return next, changeEvent{"replaced", ""}, nil

	case ImportMerge:
		for _, sn := range act.Snippets {
			incoming := sn.Clone()
			if _, ok := next.Snippets[incoming.ID]; ok {
				incoming.UpdatedAt = now
			}
			next.Snippets[incoming.ID] = incoming
		}
		return next, changeEvent{"replaced", ""}, nil

	case SetSearchQuery:
		next.Filters.Query = act.Query
		return next, changeEvent{}, nil

	case SetLanguageFilter:
		next.Filters.Language = act.Language
		return next, changeEvent{}, nil

	case SetEditingTarget:
		next.Filters.EditingID = act.ID
		return next, changeEvent{}, nil

	default:
		return state, changeEvent{}, fmt.Errorf("store: unrecognized action %T", a)
	}
}
