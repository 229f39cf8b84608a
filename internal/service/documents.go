// Package service implements the application services behind the HTTP
// handlers: document lifecycle, knowledge-base management, editing sessions
// and AI-backed generation.
package service

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"minuta/internal/contextbuilder"
	"minuta/internal/domain"
	"minuta/internal/domain/models"
	"minuta/internal/store"
)

// MaxDocumentNameLength bounds display names.
const MaxDocumentNameLength = 200

// SaveDocumentRequest carries the mutable content of a create or update.
type SaveDocumentRequest struct {
	Name        string                      `json:"name"`
	Sections    map[models.SectionID]string `json:"sections"`
	Attachments []models.Attachment         `json:"attachments"`
}

// RenameDocumentRequest carries a metadata-only edit.
type RenameDocumentRequest struct {
	Name     string          `json:"name"`
	Priority models.Priority `json:"priority"`
}

// ListDocumentsRequest carries List filters.
type ListDocumentsRequest struct {
	Priority     models.Priority
	NameContains string
	Sort         store.SortMode
}

// DocumentService owns document lifecycle operations on top of the store.
type DocumentService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewDocumentService creates a document service.
func NewDocumentService(s *store.Store, logger *slog.Logger) *DocumentService {
	return &DocumentService{store: s, logger: logger}
}

func (s *DocumentService) validateSave(req *SaveDocumentRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Length(0, MaxDocumentNameLength)),
		validation.Field(&req.Attachments, validation.By(uniqueAttachmentNames)),
	)
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}
	return nil
}

// uniqueAttachmentNames enforces that attachment names are unique within a
// single document's attachment list.
func uniqueAttachmentNames(value interface{}) error {
	attachments, ok := value.([]models.Attachment)
	if !ok {
		return nil
	}
	seen := make(map[string]bool, len(attachments))
	for _, a := range attachments {
		if seen[a.Name] {
			return fmt.Errorf("duplicate attachment name %q", a.Name)
		}
		seen[a.Name] = true
	}
	return nil
}

// Create validates and creates a document in the given collection.
func (s *DocumentService) Create(t models.DocType, req *SaveDocumentRequest) (*models.Document, error) {
	if err := s.validateSave(req); err != nil {
		return nil, err
	}
	return s.store.Create(t, req.Name, req.Sections, req.Attachments)
}

// Update validates and saves new content for an existing document.
func (s *DocumentService) Update(t models.DocType, id int64, req *SaveDocumentRequest) (*models.Document, error) {
	if err := s.validateSave(req); err != nil {
		return nil, err
	}
	return s.store.Update(t, id, req.Sections, req.Attachments)
}

// Rename applies a metadata-only edit.
func (s *DocumentService) Rename(t models.DocType, id int64, req *RenameDocumentRequest) (*models.Document, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Length(0, MaxDocumentNameLength)),
	); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}
	return s.store.Rename(t, id, req.Name, req.Priority)
}

// Delete removes a document; absent ids are not an error.
func (s *DocumentService) Delete(t models.DocType, id int64) error {
	return s.store.Delete(t, id)
}

// Get returns one document.
func (s *DocumentService) Get(t models.DocType, id int64) (*models.Document, error) {
	return s.store.Get(t, id)
}

// List returns the filtered, ordered collection.
func (s *DocumentService) List(t models.DocType, req *ListDocumentsRequest) []*models.Document {
	return s.store.List(t, store.Filter{
		Priority:     req.Priority,
		NameContains: req.NameContains,
	}, req.Sort)
}

// History returns a document's change log, newest first.
func (s *DocumentService) History(t models.DocType, id int64) ([]models.HistoryEntry, error) {
	return s.store.History(t, id)
}

// ParentContext projects a stored ETP into the lightweight reference used
// when drafting a TR. Derived on demand, never stored.
func (s *DocumentService) ParentContext(id int64) (*models.ParentContext, error) {
	doc, err := s.store.Get(models.DocTypeETP, id)
	if err != nil {
		return nil, err
	}
	return &models.ParentContext{
		ID:   doc.ID,
		Name: doc.Name,
		Text: contextbuilder.Flatten(models.SchemaFor(models.DocTypeETP), doc.Sections),
	}, nil
}
