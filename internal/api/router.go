package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JulianC775/CodeClip/internal/clipsvc"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *clipsvc.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Snippets CRUD.
	r.Get("/snippets", h.ListSnippets)
	r.Post("/snippets", h.CreateSnippet)
	r.Get("/snippets/{id}", h.GetSnippet)
	r.Put("/snippets/{id}", h.UpdateSnippet)
	r.Delete("/snippets/{id}", h.DeleteSnippet)
	r.Post("/snippets/{id}/favorite", h.ToggleFavorite)

	// Derived values and state snapshot.
	r.Get("/languages", h.Languages)
	r.Get("/state", h.State)
	r.Put("/filters", h.SetFilters)

	// Backup import/export.
	r.Get("/export", h.Export)
	r.Post("/import", h.Import)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
