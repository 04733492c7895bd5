// Package apperr defines the sentinel errors shared across CodeClip.
//
// Persistence and codec failures are returned as values and matched with
// errors.Is; the core stays usable in memory even when the durable layer
// reports one of these.
package apperr

import "errors"

var (
	// ErrNotFound signals a missing snippet or an absent persisted collection.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateID signals an AddSnippet whose id is already present.
	// Duplicate insertion is rejected, never coalesced.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrMalformedEncoding signals an import payload that does not parse.
	ErrMalformedEncoding = errors.New("malformed encoding")

	// ErrStructuralMismatch signals an import payload that parses but
	// contains at least one entry with a wrong field type or shape.
	ErrStructuralMismatch = errors.New("structural mismatch")

	// ErrCorrupt signals a persisted collection that can no longer be decoded.
	ErrCorrupt = errors.New("corrupt stored collection")

	// ErrQuotaExceeded signals a save rejected by the storage size limit.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrSerializationFailure signals a collection that could not be encoded.
	ErrSerializationFailure = errors.New("serialization failure")

	// Clipboard errors are defined here so UI collaborators surface a
	// uniform taxonomy; the core itself never touches the clipboard.
	ErrClipboardPermission  = errors.New("clipboard permission denied")
	ErrClipboardUnsupported = errors.New("clipboard unsupported")
)
