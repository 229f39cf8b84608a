package service

import (
	"context"
	"fmt"
	"log/slog"

	"minuta/internal/ai"
	"minuta/internal/contextbuilder"
	"minuta/internal/domain"
	"minuta/internal/domain/models"
	"minuta/internal/editor"
)

// GenerationService runs the AI-backed operations: section drafting, risk
// analysis, compliance checking, refinement and summarization. Results are
// committed into a section only after the call resolves successfully; an
// error never leaves partial content anywhere.
type GenerationService struct {
	gen       ai.Generator
	documents *DocumentService
	knowledge *KnowledgeService
	editors   *Editors
	gate      *editor.Gate
	logger    *slog.Logger
}

// NewGenerationService wires the generation service.
func NewGenerationService(
	gen ai.Generator,
	documents *DocumentService,
	knowledge *KnowledgeService,
	editors *Editors,
	logger *slog.Logger,
) *GenerationService {
	return &GenerationService{
		gen:       gen,
		documents: documents,
		knowledge: knowledge,
		editors:   editors,
		gate:      editor.NewGate(),
		logger:    logger,
	}
}

// DraftRequest asks for the content of one section.
type DraftRequest struct {
	Section  models.SectionID `json:"section"`
	Input    string           `json:"input"`     // user-provided hints for the section
	ParentID *int64           `json:"parent_id"` // ETP to seed a TR draft, optional
}

// RefineRequest asks for a rewrite of a section's current content.
type RefineRequest struct {
	Section     models.SectionID `json:"section"`
	Instruction string           `json:"instruction"`
}

// GenerationResult carries the generated text and whether it was written
// back into an open editing session.
type GenerationResult struct {
	Text    string `json:"text"`
	Applied bool   `json:"applied"`
}

// sectionsFor returns the freshest known sections of a document: the open
// editing session's draft when one exists, the stored state otherwise.
func (s *GenerationService) sectionsFor(t models.DocType, id int64) (map[models.SectionID]string, error) {
	if sess := s.editors.Live(t, id); sess != nil {
		sections, _ := sess.Snapshot()
		return sections, nil
	}
	doc, err := s.documents.Get(t, id)
	if err != nil {
		return nil, err
	}
	return doc.Sections, nil
}

// buildContext assembles the supporting-context block for a prompt.
func (s *GenerationService) buildContext(t models.DocType, id int64, target models.SectionID, parentID *int64) (string, error) {
	var parent *models.ParentContext
	if t == models.DocTypeTR && parentID != nil {
		p, err := s.documents.ParentContext(*parentID)
		if err != nil {
			return "", err
		}
		parent = p
	}

	siblings, err := s.sectionsFor(t, id)
	if err != nil {
		return "", err
	}

	return contextbuilder.Build(parent, siblings, models.SchemaFor(t), target, s.knowledge.Selected()), nil
}

// generate runs the external call and maps failures to the domain error.
func (s *GenerationService) generate(ctx context.Context, prompt string) (string, error) {
	text, err := s.gen.Generate(ctx, ai.SystemPrompt, prompt)
	if err != nil {
		s.logger.Warn("generation failed", "error", err)
		return "", &domain.ExternalServiceError{Service: "text generation", Err: err}
	}
	return text, nil
}

// commit writes a generation result into the open session, if the section
// is still expecting it. A session closed or cancelled mid-call discards
// the late result.
func (s *GenerationService) commit(t models.DocType, id int64, section models.SectionID, token uint64, text string) bool {
	sess := s.editors.Live(t, id)
	if sess == nil {
		return false
	}
	applied := sess.CommitGeneration(section, token, text)
	if !applied {
		s.logger.Debug("late generation result discarded", "type", t, "id", id, "section", section)
	}
	return applied
}

// Draft generates content for one section. At most one generation per
// section is in flight at a time; concurrent triggers fail with
// editor.ErrBusy.
func (s *GenerationService) Draft(ctx context.Context, t models.DocType, id int64, req *DraftRequest) (*GenerationResult, error) {
	schema := models.SchemaFor(t)
	if !schema.Contains(req.Section) {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("section %q is not defined for document type %q", req.Section, t),
		}
	}

	key := editor.SectionKey(t, id, req.Section)
	if err := s.gate.TryAcquire(key); err != nil {
		return nil, err
	}
	defer s.gate.Release(key)

	var token uint64
	if sess := s.editors.Live(t, id); sess != nil {
		token = sess.BeginGeneration(req.Section)
	}

	contextBlock, err := s.buildContext(t, id, req.Section, req.ParentID)
	if err != nil {
		return nil, err
	}

	prompt := ai.DraftPrompt(ai.DocLabel(string(t)), schema.Title(req.Section), req.Input, contextBlock)
	text, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &GenerationResult{
		Text:    text,
		Applied: s.commit(t, id, req.Section, token, text),
	}, nil
}

// Refine rewrites a section's current content under an instruction. Same
// single-flight rule as Draft.
func (s *GenerationService) Refine(ctx context.Context, t models.DocType, id int64, req *RefineRequest) (*GenerationResult, error) {
	schema := models.SchemaFor(t)
	if !schema.Contains(req.Section) {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("section %q is not defined for document type %q", req.Section, t),
		}
	}

	key := editor.SectionKey(t, id, req.Section)
	if err := s.gate.TryAcquire(key); err != nil {
		return nil, err
	}
	defer s.gate.Release(key)

	sections, err := s.sectionsFor(t, id)
	if err != nil {
		return nil, err
	}

	var token uint64
	if sess := s.editors.Live(t, id); sess != nil {
		token = sess.BeginGeneration(req.Section)
	}

	contextBlock, err := s.buildContext(t, id, req.Section, nil)
	if err != nil {
		return nil, err
	}

	prompt := ai.RefinePrompt(schema.Title(req.Section), sections[req.Section], req.Instruction, contextBlock)
	text, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &GenerationResult{
		Text:    text,
		Applied: s.commit(t, id, req.Section, token, text),
	}, nil
}

// Risks produces a risk analysis of the document's current content. The
// result is advisory text, never written into a section.
func (s *GenerationService) Risks(ctx context.Context, t models.DocType, id int64) (string, error) {
	return s.analyze(ctx, t, id, ai.RiskPrompt)
}

// Compliance checks the document against the procurement statute.
func (s *GenerationService) Compliance(ctx context.Context, t models.DocType, id int64) (string, error) {
	return s.analyze(ctx, t, id, ai.CompliancePrompt)
}

func (s *GenerationService) analyze(ctx context.Context, t models.DocType, id int64, buildPrompt func(docLabel, docText, contextBlock string) string) (string, error) {
	sections, err := s.sectionsFor(t, id)
	if err != nil {
		return "", err
	}
	docText := contextbuilder.Flatten(models.SchemaFor(t), sections)
	contextBlock := contextbuilder.Build(nil, nil, nil, "", s.knowledge.Selected())
	return s.generate(ctx, buildPrompt(ai.DocLabel(string(t)), docText, contextBlock))
}

// Summarize produces an executive summary of the document.
func (s *GenerationService) Summarize(ctx context.Context, t models.DocType, id int64) (string, error) {
	sections, err := s.sectionsFor(t, id)
	if err != nil {
		return "", err
	}
	docText := contextbuilder.Flatten(models.SchemaFor(t), sections)
	return s.generate(ctx, ai.SummaryPrompt(ai.DocLabel(string(t)), docText))
}
