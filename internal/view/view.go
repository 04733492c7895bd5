// Package view derives filtered display sequences from a snippet
// collection. Both functions are pure and stateless; callers memoize on
// input identity if they need to.
package view

import (
	"sort"
	"strings"

	"github.com/JulianC775/CodeClip/internal/models"
)

// Derive returns the snippets matching the search query and language
// filter, most recently updated first (id as the tiebreak so equal
// inputs always produce the same sequence).
//
// A snippet matches when the query is empty or occurs case-insensitively
// in its title or any tag, and the language filter is empty or equals
// its language exactly (case-sensitive).
func Derive(snippets []models.Snippet, query, language string) []models.Snippet {
	needle := strings.ToLower(strings.TrimSpace(query))

	out := make([]models.Snippet, 0, len(snippets))
	for _, s := range snippets {
		if language != "" && s.Language != language {
			continue
		}
		if needle != "" && !matchesQuery(s, needle) {
			continue
		}
		out = append(out, s.Clone())
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func matchesQuery(s models.Snippet, needle string) bool {
	if strings.Contains(strings.ToLower(s.Title), needle) {
		return true
	}
	for _, tag := range s.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// DistinctLanguages returns the sorted set of language values present,
// used to populate filter options.
func DistinctLanguages(snippets []models.Snippet) []string {
	seen := make(map[string]struct{}, len(snippets))
	out := make([]string, 0, len(snippets))
	for _, s := range snippets {
		if s.Language == "" {
			continue
		}
		if _, ok := seen[s.Language]; ok {
			continue
		}
		seen[s.Language] = struct{}{}
		out = append(out, s.Language)
	}
	sort.Strings(out)
	return out
}
