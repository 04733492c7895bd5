package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/xid"

	"github.com/JulianC775/CodeClip/internal/apperr"
	"github.com/JulianC775/CodeClip/internal/clipsvc"
	"github.com/JulianC775/CodeClip/internal/models"
	"github.com/JulianC775/CodeClip/internal/store"
)

const maxBodyBytes = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *clipsvc.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *clipsvc.Service) *Handler {
	return &Handler{svc: svc}
}

// ListSnippets handles GET /snippets with optional q and language filters.
func (h *Handler) ListSnippets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	snippets := h.svc.View(q.Get("q"), q.Get("language"))
	writeJSON(w, http.StatusOK, SnippetListResponse{Snippets: snippets, Total: len(snippets)})
}

// GetSnippet handles GET /snippets/{id}.
func (h *Handler) GetSnippet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sn, err := h.svc.Get(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, sn)
}

// CreateSnippet handles POST /snippets.
func (h *Handler) CreateSnippet(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req SnippetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}

	id := req.ID
	if id == "" {
		id = xid.New().String()
	}

	state, err := h.svc.Dispatch(store.AddSnippet{Snippet: models.Snippet{
		ID:       id,
		Title:    strings.TrimSpace(req.Title),
		Language: req.Language,
		Code:     req.Code,
		Tags:     req.Tags,
		Favorite: req.Favorite,
	}})
	if err != nil {
		if errors.Is(err, apperr.ErrDuplicateID) {
			writeJSON(w, http.StatusConflict, errorBody("snippet already exists"))
			return
		}
		h.persistenceError(w, "create snippet", id, err)
		return
	}
	writeJSON(w, http.StatusCreated, state.Snippets[id])
}

// UpdateSnippet handles PUT /snippets/{id}.
func (h *Handler) UpdateSnippet(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	id := chi.URLParam(r, "id")
	var req SnippetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}

	state, err := h.svc.Dispatch(store.UpdateSnippet{Snippet: models.Snippet{
		ID:       id,
		Title:    strings.TrimSpace(req.Title),
		Language: req.Language,
		Code:     req.Code,
		Tags:     req.Tags,
		Favorite: req.Favorite,
	}})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		h.persistenceError(w, "update snippet", id, err)
		return
	}
	writeJSON(w, http.StatusOK, state.Snippets[id])
}

// DeleteSnippet handles DELETE /snippets/{id}. Deletion is idempotent:
// deleting an absent id still returns 204.
func (h *Handler) DeleteSnippet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.svc.Dispatch(store.DeleteSnippet{ID: id}); err != nil {
		h.persistenceError(w, "delete snippet", id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleFavorite handles POST /snippets/{id}/favorite.
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.svc.Get(id); err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	state, err := h.svc.Dispatch(store.ToggleFavorite{ID: id})
	if err != nil {
		h.persistenceError(w, "toggle favorite", id, err)
		return
	}
	writeJSON(w, http.StatusOK, state.Snippets[id])
}

// Languages handles GET /languages.
func (h *Handler) Languages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, LanguagesResponse{Languages: h.svc.Languages()})
}

// State handles GET /state, returning the full read-only snapshot.
func (h *Handler) State(w http.ResponseWriter, _ *http.Request) {
	snap := h.svc.Snapshot()
	writeJSON(w, http.StatusOK, StateResponse{
		Snippets: h.svc.View("", ""),
		Filters:  snap.Filters,
	})
}

// SetFilters handles PUT /filters. Only the fields present in the body
// are changed.
func (h *Handler) SetFilters(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req FiltersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	var state models.Collection
	var err error
	if req.Query != nil {
		state, err = h.svc.Dispatch(store.SetSearchQuery{Query: *req.Query})
	}
	if err == nil && req.Language != nil {
		state, err = h.svc.Dispatch(store.SetLanguageFilter{Language: *req.Language})
	}
	if err == nil && req.EditingID != nil {
		state, err = h.svc.Dispatch(store.SetEditingTarget{ID: *req.EditingID})
	}
	if err != nil {
		slog.Error("set filters failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if req.Query == nil && req.Language == nil && req.EditingID == nil {
		state = h.svc.Snapshot()
	}
	writeJSON(w, http.StatusOK, state.Filters)
}

// Export handles GET /export, streaming the portable collection encoding.
func (h *Handler) Export(w http.ResponseWriter, _ *http.Request) {
	data, err := h.svc.Export()
	if err != nil {
		slog.Error("export failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="codeclip-export.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Import handles POST /import?mode=replace|merge. The body is a payload
// previously produced by Export (or compatible). Validation is
// all-or-nothing; a rejected payload leaves the collection unmodified.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	mode := clipsvc.ImportMode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = clipsvc.ImportReplace
	}
	if mode != clipsvc.ImportReplace && mode != clipsvc.ImportMerge {
		writeJSON(w, http.StatusBadRequest, errorBody("mode must be replace or merge"))
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}

	n, err := h.svc.Import(data, mode)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrMalformedEncoding):
			writeJSON(w, http.StatusBadRequest, errorBody("malformed encoding"))
		case errors.Is(err, apperr.ErrStructuralMismatch):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		default:
			h.persistenceError(w, "import", string(mode), err)
		}
		return
	}
	writeJSON(w, http.StatusOK, ImportResponse{Imported: n, Mode: string(mode)})
}

// persistenceError maps durable-layer failures. The in-memory mutation
// already took effect, so the medium trouble is reported without
// pretending the operation vanished.
func (h *Handler) persistenceError(w http.ResponseWriter, op, subject string, err error) {
	slog.Error(op+" failed", slog.String("subject", subject), slog.String("error", err.Error()))
	switch {
	case errors.Is(err, apperr.ErrQuotaExceeded):
		writeJSON(w, http.StatusInsufficientStorage, errorBody("storage quota exceeded"))
	case errors.Is(err, apperr.ErrSerializationFailure):
		writeJSON(w, http.StatusInternalServerError, errorBody("serialization failure"))
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
