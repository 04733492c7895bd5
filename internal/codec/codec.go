// Package codec implements the portable textual encoding of a snippet
// collection, used both for backup import/export and as the persisted
// store layout.
//
// The encoding is a versioned JSON envelope with snippets ordered by id
// and timestamps as Unix milliseconds, so exports of equal collections
// are byte-identical and diff cleanly. Import is all-or-nothing: a single
// structurally invalid entry rejects the whole payload rather than
// silently admitting corrupt data.
package codec

import (
	"errors"
	"fmt"
	"sort"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	jsoniter "github.com/json-iterator/go"

	"github.com/JulianC775/CodeClip/internal/apperr"
	"github.com/JulianC775/CodeClip/internal/models"
)

// Version is the schema version written into every envelope.
const Version = 1

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type envelope struct {
	Version  int           `json:"version"`
	Snippets []snippetJSON `json:"snippets"`
}

// snippetJSON is the interchange form of a snippet. Timestamps are Unix
// milliseconds; in-memory precision below one millisecond is not preserved.
type snippetJSON struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Language  string   `json:"language"`
	Code      string   `json:"code"`
	Tags      []string `json:"tags"`
	Favorite  bool     `json:"favorite"`
	CreatedAt int64    `json:"created_at"`
	UpdatedAt int64    `json:"updated_at"`
}

// Serialize encodes the snippets into the portable envelope.
func Serialize(snippets []models.Snippet) ([]byte, error) {
	env := envelope{Version: Version, Snippets: make([]snippetJSON, 0, len(snippets))}
	for _, s := range snippets {
		tags := s.Tags
		if tags == nil {
			tags = []string{}
		}
		env.Snippets = append(env.Snippets, snippetJSON{
			ID:        s.ID,
			Title:     s.Title,
			Language:  s.Language,
			Code:      s.Code,
			Tags:      tags,
			Favorite:  s.Favorite,
			CreatedAt: s.CreatedAt.UnixMilli(),
			UpdatedAt: s.UpdatedAt.UnixMilli(),
		})
	}
	sort.Slice(env.Snippets, func(i, j int) bool { return env.Snippets[i].ID < env.Snippets[j].ID })

	out, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("codec: encode: %w: %v", apperr.ErrSerializationFailure, err)
	}
	return append(out, '\n'), nil
}

// Deserialize parses and validates an envelope. Payloads that do not
// parse fail with apperr.ErrMalformedEncoding; payloads with any entry
// of the wrong shape fail with apperr.ErrStructuralMismatch and nothing
// is returned.
func Deserialize(data []byte) ([]models.Snippet, error) {
	var raw struct {
		Version  int              `json:"version"`
		Snippets []map[string]any `json:"snippets"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("codec: parse: %w: %v", apperr.ErrMalformedEncoding, err)
	}
	if raw.Version < 1 || raw.Version > Version {
		return nil, fmt.Errorf("codec: unsupported version %d: %w", raw.Version, apperr.ErrMalformedEncoding)
	}

	for i, entry := range raw.Snippets {
		if err := validateEntry(entry); err != nil {
			return nil, fmt.Errorf("codec: snippet %d: %w: %v", i, apperr.ErrStructuralMismatch, err)
		}
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("codec: decode: %w: %v", apperr.ErrMalformedEncoding, err)
	}

	seen := make(map[string]struct{}, len(env.Snippets))
	out := make([]models.Snippet, 0, len(env.Snippets))
	for i, sj := range env.Snippets {
		if _, ok := seen[sj.ID]; ok {
			return nil, fmt.Errorf("codec: snippet %d: id %q repeated: %w", i, sj.ID, apperr.ErrStructuralMismatch)
		}
		seen[sj.ID] = struct{}{}
		tags := sj.Tags
		if tags == nil {
			tags = []string{}
		}
		out = append(out, models.Snippet{
			ID:        sj.ID,
			Title:     sj.Title,
			Language:  sj.Language,
			Code:      sj.Code,
			Tags:      tags,
			Favorite:  sj.Favorite,
			CreatedAt: time.UnixMilli(sj.CreatedAt),
			UpdatedAt: time.UnixMilli(sj.UpdatedAt),
		})
	}
	return out, nil
}

// validateEntry checks the field types of one decoded snippet object.
// Unknown keys are tolerated so envelopes from newer minor revisions
// still import.
func validateEntry(entry map[string]any) error {
	return validation.Validate(entry, validation.Map(
		validation.Key("id", validation.Required, validation.By(isText)),
		validation.Key("title", validation.Required, validation.By(isText)),
		validation.Key("language", validation.By(isText)),
		validation.Key("code", validation.By(isText)),
		validation.Key("tags", validation.By(isTextSlice)).Optional(),
		validation.Key("favorite", validation.By(isBool)).Optional(),
		validation.Key("created_at", validation.By(isNumber)),
		validation.Key("updated_at", validation.By(isNumber)),
	).AllowExtraKeys())
}

func isText(v any) error {
	if _, ok := v.(string); !ok {
		return errors.New("must be a string")
	}
	return nil
}

func isBool(v any) error {
	if _, ok := v.(bool); !ok {
		return errors.New("must be a boolean")
	}
	return nil
}

func isNumber(v any) error {
	if _, ok := v.(float64); !ok {
		return errors.New("must be a number")
	}
	return nil
}

func isTextSlice(v any) error {
	items, ok := v.([]any)
	if !ok {
		return errors.New("must be an array of strings")
	}
	for _, it := range items {
		if _, ok := it.(string); !ok {
			return errors.New("must be an array of strings")
		}
	}
	return nil
}
