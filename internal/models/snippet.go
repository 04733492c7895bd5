// Package models defines the domain types for CodeClip.
package models

import "time"

// Snippet represents a single saved code fragment.
type Snippet struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Language  string    `json:"language"`
	Code      string    `json:"code"`
	Tags      []string  `json:"tags"`
	Favorite  bool      `json:"favorite"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy of the snippet.
func (s Snippet) Clone() Snippet {
	out := s
	if s.Tags != nil {
		out.Tags = make([]string, len(s.Tags))
		copy(out.Tags, s.Tags)
	}
	return out
}

// Filters holds the transient UI filter parameters. They carry no
// invariants: the language filter may go stale when the last snippet
// with that language is deleted, which is accepted rather than repaired.
type Filters struct {
	Query     string `json:"query"`
	Language  string `json:"language"`
	EditingID string `json:"editing_id"`
}

// Collection is the authoritative in-memory set of snippets keyed by ID,
// plus the transient filter parameters.
type Collection struct {
	Snippets map[string]Snippet `json:"snippets"`
	Filters  Filters            `json:"filters"`
}

// NewCollection returns an empty collection.
func NewCollection() Collection {
	return Collection{Snippets: make(map[string]Snippet)}
}

// Clone returns a deep copy of the collection.
func (c Collection) Clone() Collection {
	out := c
	out.Snippets = make(map[string]Snippet, len(c.Snippets))
	for id, s := range c.Snippets {
		out.Snippets[id] = s.Clone()
	}
	return out
}

// List returns the snippets as a slice in unspecified order.
// Display ordering is a view concern.
func (c Collection) List() []Snippet {
	out := make([]Snippet, 0, len(c.Snippets))
	for _, s := range c.Snippets {
		out = append(out, s.Clone())
	}
	return out
}
