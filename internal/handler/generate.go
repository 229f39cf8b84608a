package handler

import (
	"context"
	"log/slog"
	"net/http"

	"minuta/internal/domain/models"
	"minuta/internal/httputil"
	"minuta/internal/service"
)

// GenerateHandler handles AI-backed generation requests
type GenerateHandler struct {
	generation *service.GenerationService
	logger     *slog.Logger
}

// NewGenerateHandler creates a new generation handler
func NewGenerateHandler(generation *service.GenerationService, logger *slog.Logger) *GenerateHandler {
	return &GenerateHandler{generation: generation, logger: logger}
}

// Draft generates content for one section
// POST /api/documents/{type}/{id}/generate/draft
func (h *GenerateHandler) Draft(w http.ResponseWriter, r *http.Request) {
	t, ok := docTypeParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req service.DraftRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.generation.Draft(r.Context(), t, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// Refine rewrites a section's current content under an instruction
// POST /api/documents/{type}/{id}/generate/refine
func (h *GenerateHandler) Refine(w http.ResponseWriter, r *http.Request) {
	t, ok := docTypeParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req service.RefineRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.generation.Refine(r.Context(), t, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// Risks produces a risk analysis of the document
// POST /api/documents/{type}/{id}/generate/risks
func (h *GenerateHandler) Risks(w http.ResponseWriter, r *http.Request) {
	h.analysis(w, r, h.generation.Risks)
}

// Compliance checks the document against the procurement statute
// POST /api/documents/{type}/{id}/generate/compliance
func (h *GenerateHandler) Compliance(w http.ResponseWriter, r *http.Request) {
	h.analysis(w, r, h.generation.Compliance)
}

// Summary produces an executive summary of the document
// POST /api/documents/{type}/{id}/generate/summary
func (h *GenerateHandler) Summary(w http.ResponseWriter, r *http.Request) {
	h.analysis(w, r, h.generation.Summarize)
}

func (h *GenerateHandler) analysis(
	w http.ResponseWriter,
	r *http.Request,
	run func(ctx context.Context, t models.DocType, id int64) (string, error),
) {
	t, ok := docTypeParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	text, err := run(r.Context(), t, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"text": text})
}
