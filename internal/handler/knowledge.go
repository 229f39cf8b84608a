package handler

import (
	"io"
	"log/slog"
	"net/http"

	"minuta/internal/httputil"
	"minuta/internal/knowledge"
	"minuta/internal/service"
)

// maxUploadSize caps one multipart upload batch.
const maxUploadSize = 50 << 20

// KnowledgeHandler handles knowledge-base HTTP requests
type KnowledgeHandler struct {
	knowledge *service.KnowledgeService
	logger    *slog.Logger
}

// NewKnowledgeHandler creates a new knowledge handler
func NewKnowledgeHandler(svc *service.KnowledgeService, logger *slog.Logger) *KnowledgeHandler {
	return &KnowledgeHandler{knowledge: svc, logger: logger}
}

// Upload ingests a multipart batch of files and reports per-file outcomes
// POST /api/knowledge
func (h *KnowledgeHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}

	var uploads []knowledge.Upload
	for _, headers := range r.MultipartForm.File {
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				httputil.RespondError(w, http.StatusBadRequest, "could not read uploaded file")
				return
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				httputil.RespondError(w, http.StatusBadRequest, "could not read uploaded file")
				return
			}
			uploads = append(uploads, knowledge.Upload{
				Name: fh.Filename,
				MIME: fh.Header.Get("Content-Type"),
				Data: data,
			})
		}
	}
	if len(uploads) == 0 {
		httputil.RespondError(w, http.StatusBadRequest, "no files in upload")
		return
	}

	outcomes := h.knowledge.Upload(r.Context(), uploads)
	httputil.RespondJSON(w, http.StatusOK, outcomes)
}

// List returns the knowledge base in insertion order
// GET /api/knowledge
func (h *KnowledgeHandler) List(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.knowledge.List())
}

// SetSelected toggles a file's "selected for context" flag
// PATCH /api/knowledge/{name}
func (h *KnowledgeHandler) SetSelected(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req struct {
		Selected bool `json:"selected"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.knowledge.SetSelected(name, req.Selected); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a file; absent names are not an error
// DELETE /api/knowledge/{name}
func (h *KnowledgeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.knowledge.Delete(r.PathValue("name")); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
