package service

import (
	"context"
	"log/slog"

	"minuta/internal/domain/models"
	"minuta/internal/knowledge"
)

// KnowledgeService coordinates the ingestion pipeline and the knowledge
// base it feeds.
type KnowledgeService struct {
	pipeline *knowledge.Pipeline
	base     *knowledge.Base
	logger   *slog.Logger
}

// NewKnowledgeService creates a knowledge service.
func NewKnowledgeService(pipeline *knowledge.Pipeline, base *knowledge.Base, logger *slog.Logger) *KnowledgeService {
	return &KnowledgeService{pipeline: pipeline, base: base, logger: logger}
}

// Upload ingests a batch of files. Successful files are added to the
// knowledge base; failed ones are reported in their outcome. A storage
// failure while persisting the successes marks them failed as well, so
// every file's outcome stays observable.
func (s *KnowledgeService) Upload(ctx context.Context, uploads []knowledge.Upload) []knowledge.FileOutcome {
	outcomes := s.pipeline.IngestBatch(ctx, uploads, s.base.Names())

	var files []models.KnowledgeFile
	for _, o := range outcomes {
		if o.Status == knowledge.StatusSuccess && o.File != nil {
			files = append(files, *o.File)
		}
	}
	if err := s.base.Add(files...); err != nil {
		s.logger.Error("persist knowledge base failed", "error", err)
		for i := range outcomes {
			if outcomes[i].Status == knowledge.StatusSuccess {
				outcomes[i].Status = knowledge.StatusError
				outcomes[i].Error = "could not persist the knowledge base"
			}
		}
	}
	return outcomes
}

// List returns all knowledge files in knowledge-base order.
func (s *KnowledgeService) List() []models.KnowledgeFile {
	return s.base.List()
}

// SetSelected toggles a file's "selected for context" flag.
func (s *KnowledgeService) SetSelected(name string, selected bool) error {
	return s.base.SetSelected(name, selected)
}

// Delete removes a file by name; absent names are not an error.
func (s *KnowledgeService) Delete(name string) error {
	return s.base.Delete(name)
}

// Selected returns the files currently flagged for context use.
func (s *KnowledgeService) Selected() []models.KnowledgeFile {
	return s.base.Selected()
}
