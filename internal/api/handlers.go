package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/starford/lagu/internal/apperr"
	"github.com/starford/lagu/internal/docservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *docservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *docservice.Service) *Handler {
	return &Handler{svc: svc}
}

// GetDocument handles GET /api/documents/{id}. The identifier may be a
// document's custom id or its UUID.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}
	doc, err := h.svc.GetDocument(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get document failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// ListDocuments handles GET /api/documents?directory=<uuid>.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("directory")
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'directory' is required"))
		return
	}
	dir, err := uuid.Parse(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("'directory' must be a UUID"))
		return
	}
	docs, err := h.svc.ListDocuments(r.Context(), dir)
	if err != nil {
		slog.Error("list documents failed", slog.String("directory", raw), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"documents": docs,
	})
}

// GetTree handles GET /api/directories.
func (h *Handler) GetTree(w http.ResponseWriter, r *http.Request) {
	dirs, err := h.svc.Tree(r.Context())
	if err != nil {
		slog.Error("directory tree failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"directories": dirs,
	})
}
