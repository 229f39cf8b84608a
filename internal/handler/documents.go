package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"minuta/internal/domain/models"
	"minuta/internal/export"
	"minuta/internal/httputil"
	"minuta/internal/service"
	"minuta/internal/store"
)

// DocumentHandler handles document HTTP requests
type DocumentHandler struct {
	documents *service.DocumentService
	logger    *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documents *service.DocumentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{documents: documents, logger: logger}
}

// ListDocuments lists a collection
// GET /api/documents/{type}?priority=&name=&sort=
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	t, ok := docTypeParam(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	docs := h.documents.List(t, &service.ListDocumentsRequest{
		Priority:     models.Priority(q.Get("priority")),
		NameContains: q.Get("name"),
		Sort:         store.SortMode(q.Get("sort")),
	})
	if docs == nil {
		docs = []*models.Document{}
	}

	httputil.RespondJSON(w, http.StatusOK, docs)
}

// CreateDocument creates a new document
// POST /api/documents/{type}
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	t, ok := docTypeParam(w, r)
	if !ok {
		return
	}

	var req service.SaveDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	doc, err := h.documents.Create(t, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// GetDocument retrieves a document by ID
// GET /api/documents/{type}/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	t, ok := docTypeParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	doc, err := h.documents.Get(t, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// UpdateDocument saves new content for a document
// PUT /api/documents/{type}/{id}
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	t, ok := docTypeParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req service.SaveDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	doc, err := h.documents.Update(t, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// RenameDocument applies a metadata-only edit (name, priority)
// PATCH /api/documents/{type}/{id}
func (h *DocumentHandler) RenameDocument(w http.ResponseWriter, r *http.Request) {
	t, ok := docTypeParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req service.RenameDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	doc, err := h.documents.Rename(t, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// DeleteDocument deletes a document; absent ids are not an error
// DELETE /api/documents/{type}/{id}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	t, ok := docTypeParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.documents.Delete(t, id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetHistory returns a document's change log, newest first
// GET /api/documents/{type}/{id}/history
func (h *DocumentHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	t, ok := docTypeParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	history, err := h.documents.History(t, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, history)
}

// ExportDocument renders a document as PDF
// GET /api/documents/{type}/{id}/export
func (h *DocumentHandler) ExportDocument(w http.ResponseWriter, r *http.Request) {
	t, ok := docTypeParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	doc, err := h.documents.Get(t, id)
	if err != nil {
		handleError(w, err)
		return
	}

	pdf, err := export.PDF(doc)
	if err != nil {
		h.logger.Error("pdf export failed", "type", t, "id", id, "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "could not render the document")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("%s-%d.pdf", t, id)))
	w.Write(pdf)
}

// GetParentContext projects a stored ETP for TR drafting
// GET /api/documents/etp/{id}/context
func (h *DocumentHandler) GetParentContext(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	link, err := h.documents.ParentContext(id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, link)
}

// GetSchema returns the static section-definition table for a type
// GET /api/schemas/{type}
func (h *DocumentHandler) GetSchema(w http.ResponseWriter, r *http.Request) {
	t, ok := docTypeParam(w, r)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, models.SchemaFor(t))
}

// HealthCheck is a simple health check endpoint
// GET /health
func (h *DocumentHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now(),
	})
}
