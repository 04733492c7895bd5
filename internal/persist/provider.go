// Package persist keeps the snippet collection durably synchronized with
// a local storage medium.
package persist

import "github.com/JulianC775/CodeClip/internal/models"

// Provider is the persistent store adapter contract.
//
// Load returns apperr.ErrNotFound when nothing has been saved yet and
// apperr.ErrCorrupt when the stored payload no longer decodes; callers
// seed an empty collection in both cases. Save is atomic: a failed save
// (including apperr.ErrQuotaExceeded and apperr.ErrSerializationFailure)
// leaves the previously persisted value intact.
type Provider interface {
	Load() ([]models.Snippet, error)
	Save(snippets []models.Snippet) error
	Close() error
}
