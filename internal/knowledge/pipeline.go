// Package knowledge ingests user-supplied files into named, selectable
// knowledge units and maintains the knowledge base they live in.
package knowledge

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"minuta/internal/chunker"
	"minuta/internal/domain"
	"minuta/internal/domain/models"
)

// Upload is one raw user-supplied file.
type Upload struct {
	Name string
	MIME string
	Data []byte
}

// Outcome statuses for batch ingestion.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// FileOutcome reports one file's result inside a batch. One file's failure
// never aborts the batch; callers report mixed results from these.
type FileOutcome struct {
	Name   string                `json:"name"`
	Status string                `json:"status"`
	Error  string                `json:"error,omitempty"`
	File   *models.KnowledgeFile `json:"-"`
}

// Pipeline validates, decodes and chunks uploads. It has no side effects;
// persisting the produced records is the caller's responsibility.
type Pipeline struct {
	extractors []Extractor
	budget     int
	logger     *slog.Logger
}

// NewPipeline creates a pipeline with the given chunk budget (characters).
func NewPipeline(budget int, logger *slog.Logger) *Pipeline {
	if budget <= 0 {
		budget = chunker.DefaultBudget
	}
	return &Pipeline{
		extractors: DefaultExtractors(),
		budget:     budget,
		logger:     logger,
	}
}

// Ingest turns one upload into a knowledge file. taken holds the names
// already present in the knowledge base, including other files currently
// mid-batch.
func (p *Pipeline) Ingest(ctx context.Context, up Upload, taken map[string]bool) (*models.KnowledgeFile, error) {
	name := strings.TrimSpace(up.Name)
	if name == "" {
		return nil, &domain.ValidationError{Message: "file name must not be empty"}
	}
	if taken[name] {
		return nil, &domain.DuplicateNameError{Name: name}
	}

	mime := resolveMIME(name, up.MIME)
	ex := p.extractorFor(name, mime)
	if ex == nil {
		return nil, &domain.UnsupportedFormatError{Name: name, MIME: mime}
	}

	text, err := ex.Extract(ctx, up.Data, mime)
	if err != nil {
		return nil, &domain.ExtractionError{Name: name, Err: err}
	}

	chunks := chunker.Split(text, p.budget)
	p.logger.Debug("file ingested",
		"name", name,
		"extractor", ex.Name(),
		"bytes", len(up.Data),
		"chunks", len(chunks),
	)

	return &models.KnowledgeFile{
		Name:     name,
		MIME:     mime,
		Size:     int64(len(up.Data)),
		Content:  base64.StdEncoding.EncodeToString(up.Data),
		Chunks:   chunks,
		Selected: false,
	}, nil
}

// IngestBatch processes a multi-file upload. Names are reserved up front in
// submission order so that intra-batch duplicates fail deterministically
// (the first occurrence wins); extraction then runs concurrently. The
// returned outcomes preserve submission order.
func (p *Pipeline) IngestBatch(ctx context.Context, uploads []Upload, existing map[string]bool) []FileOutcome {
	taken := make(map[string]bool, len(existing)+len(uploads))
	for name := range existing {
		taken[name] = true
	}

	outcomes := make([]FileOutcome, len(uploads))
	reserved := make([]bool, len(uploads))
	for i, up := range uploads {
		name := strings.TrimSpace(up.Name)
		outcomes[i].Name = name
		if taken[name] {
			outcomes[i].Status = StatusError
			outcomes[i].Error = (&domain.DuplicateNameError{Name: name}).Error()
			continue
		}
		if name != "" {
			taken[name] = true
		}
		reserved[i] = true
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	for i := range uploads {
		if !reserved[i] {
			continue
		}
		g.Go(func() error {
			// The outcome carries the failure; the group never aborts.
			file, err := p.Ingest(ctx, uploads[i], nil)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				outcomes[i].Status = StatusError
				outcomes[i].Error = err.Error()
				return nil
			}
			outcomes[i].Status = StatusSuccess
			outcomes[i].File = file
			return nil
		})
	}
	g.Wait()

	return outcomes
}

func (p *Pipeline) extractorFor(name, mime string) Extractor {
	for _, ex := range p.extractors {
		if ex.CanExtract(name, mime) {
			return ex
		}
	}
	return nil
}
