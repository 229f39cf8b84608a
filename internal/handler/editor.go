package handler

import (
	"log/slog"
	"net/http"

	"minuta/internal/domain/models"
	"minuta/internal/httputil"
	"minuta/internal/service"
)

// EditorHandler handles editing-session HTTP requests
type EditorHandler struct {
	editors *service.Editors
	logger  *slog.Logger
}

// NewEditorHandler creates a new editor handler
func NewEditorHandler(editors *service.Editors, logger *slog.Logger) *EditorHandler {
	return &EditorHandler{editors: editors, logger: logger}
}

// Open starts (or resumes) an editing session and returns the draft state
// POST /api/editor/{type}/{id}
func (h *EditorHandler) Open(w http.ResponseWriter, r *http.Request) {
	t, ok := docTypeParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	doc, err := h.editors.Open(t, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// EditSection records a manual edit in the session draft
// PUT /api/editor/{type}/{id}/sections/{section}
func (h *EditorHandler) EditSection(w http.ResponseWriter, r *http.Request) {
	t, ok := docTypeParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	section := models.SectionID(r.PathValue("section"))
	if err := h.editors.EditSection(t, id, section, req.Content); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CancelSection discards an in-flight generation result for a section
// DELETE /api/editor/{type}/{id}/sections/{section}/generation
func (h *EditorHandler) CancelSection(w http.ResponseWriter, r *http.Request) {
	t, ok := docTypeParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	section := models.SectionID(r.PathValue("section"))
	if err := h.editors.CancelSection(t, id, section); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Close flushes and discards an editing session
// DELETE /api/editor/{type}/{id}
func (h *EditorHandler) Close(w http.ResponseWriter, r *http.Request) {
	t, ok := docTypeParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	h.editors.Close(t, id)
	w.WriteHeader(http.StatusNoContent)
}
