package store

import "github.com/JulianC775/CodeClip/internal/models"

// Action is the closed set of state transitions. Representing actions as
// a sealed tagged union keeps the transition function an exhaustive
// switch, so no action can be silently ignored.
type Action interface {
	isAction()
}

// AddSnippet inserts a new snippet. Fails with apperr.ErrDuplicateID when
// the id is already present.
type AddSnippet struct {
	Snippet models.Snippet
}

// UpdateSnippet replaces an existing snippet entirely, preserving its
// CreatedAt and refreshing UpdatedAt. Fails with apperr.ErrNotFound when
// the id is absent.
type UpdateSnippet struct {
	Snippet models.Snippet
}

// DeleteSnippet removes the snippet with the given id; a no-op when absent.
type DeleteSnippet struct {
	ID string
}

// ToggleFavorite flips the favorite flag and refreshes UpdatedAt; a
// no-op when the id is absent.
type ToggleFavorite struct {
	ID string
}

// ReplaceAll swaps the entire collection for the given snippets.
type ReplaceAll struct {
	Snippets []models.Snippet
}

// ImportMerge unions the given snippets with the collection. On id
// collision the incoming snippet wins and its UpdatedAt is refreshed.
type ImportMerge struct {
	Snippets []models.Snippet
}

// SetSearchQuery updates the transient search-query filter.
type SetSearchQuery struct {
	Query string
}

// SetLanguageFilter updates the transient language filter.
type SetLanguageFilter struct {
	Language string
}

// SetEditingTarget records which snippet is currently being edited;
// empty clears it.
type SetEditingTarget struct {
	ID string
}

func (AddSnippet) isAction()        {}
func (UpdateSnippet) isAction()     {}
func (DeleteSnippet) isAction()     {}
func (ToggleFavorite) isAction()    {}
func (ReplaceAll) isAction()        {}
func (ImportMerge) isAction()       {}
func (SetSearchQuery) isAction()    {}
func (SetLanguageFilter) isAction() {}
func (SetEditingTarget) isAction()  {}
