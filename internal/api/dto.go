package api

import "github.com/JulianC775/CodeClip/internal/models"

// SnippetRequest is the request body for creating or updating a snippet.
// On create, an empty ID means the server mints one.
type SnippetRequest struct {
	ID       string   `json:"id,omitempty"`
	Title    string   `json:"title"`
	Language string   `json:"language"`
	Code     string   `json:"code"`
	Tags     []string `json:"tags"`
	Favorite bool     `json:"favorite"`
}

// FiltersRequest is the request body for updating the transient UI
// filter parameters.
type FiltersRequest struct {
	Query     *string `json:"query,omitempty"`
	Language  *string `json:"language,omitempty"`
	EditingID *string `json:"editing_id,omitempty"`
}

// SnippetListResponse wraps a derived view of the collection.
type SnippetListResponse struct {
	Snippets []models.Snippet `json:"snippets"`
	Total    int              `json:"total"`
}

// LanguagesResponse lists the distinct languages present in the collection.
type LanguagesResponse struct {
	Languages []string `json:"languages"`
}

// StateResponse is the full collection snapshot exposed to UIs.
type StateResponse struct {
	Snippets []models.Snippet `json:"snippets"`
	Filters  models.Filters   `json:"filters"`
}

// ImportResponse reports how many snippets a successful import carried.
type ImportResponse struct {
	Imported int    `json:"imported"`
	Mode     string `json:"mode"`
}
