// Package store owns the two document collections and implements
// create/update/delete with identity and history semantics. Every mutation
// persists the entire updated collection through the storage adapter before
// returning.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"minuta/internal/domain"
	"minuta/internal/domain/models"
	"minuta/internal/storage"
)

// collectionKey returns the storage key holding a collection.
func collectionKey(t models.DocType) string {
	return "documents:" + string(t)
}

// SortMode orders List results.
type SortMode string

const (
	SortUpdatedDesc SortMode = "updatedAt-desc" // default
	SortNameAsc     SortMode = "name-asc"
)

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Priority     models.Priority
	NameContains string
}

// Store keeps both document collections in memory and mirrors every change
// to the storage adapter. A single mutex serializes mutations; the
// interactive user is the only writer.
type Store struct {
	kv     storage.KV
	logger *slog.Logger
	now    func() time.Time

	mu   sync.Mutex
	docs map[models.DocType]map[int64]*models.Document
}

// New creates a store bound to the given storage adapter and loads both
// collections from it.
func New(kv storage.KV, logger *slog.Logger) (*Store, error) {
	s := &Store{
		kv:     kv,
		logger: logger,
		now:    time.Now,
		docs:   make(map[models.DocType]map[int64]*models.Document),
	}
	for _, t := range models.DocTypes {
		coll, err := s.load(t)
		if err != nil {
			return nil, fmt.Errorf("load %s collection: %w", t, err)
		}
		s.docs[t] = coll
	}
	return s, nil
}

func (s *Store) load(t models.DocType) (map[int64]*models.Document, error) {
	coll := make(map[int64]*models.Document)
	raw, ok, err := s.kv.Get(collectionKey(t))
	if err != nil {
		return nil, err
	}
	if !ok {
		return coll, nil
	}
	var list []*models.Document
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	for _, d := range list {
		if d.Priority == "" {
			d.Priority = models.PriorityMedium
		}
		coll[d.ID] = d
	}
	return coll, nil
}

// persist writes the whole collection, ordered by id for a stable,
// diffable encoding.
func (s *Store) persist(t models.DocType) error {
	coll := s.docs[t]
	list := make([]*models.Document, 0, len(coll))
	for _, d := range coll {
		list = append(list, d)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })

	raw, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}
	return s.kv.Set(collectionKey(t), raw)
}

// validateSections checks section ids against the type's schema and collects
// blank required sections.
func validateSections(t models.DocType, sections map[models.SectionID]string) error {
	schema := models.SchemaFor(t)
	for id := range sections {
		if !schema.Contains(id) {
			return &domain.ValidationError{
				Message: fmt.Sprintf("section %q is not defined for document type %q", id, t),
			}
		}
	}
	var missing []string
	for _, id := range schema.Required() {
		if strings.TrimSpace(sections[id]) == "" {
			missing = append(missing, string(id))
		}
	}
	if len(missing) > 0 {
		return &domain.ValidationError{MissingFieldIDs: missing}
	}
	return nil
}

// canonical returns the canonical encoding of a snapshot used for change
// detection. encoding/json sorts map keys, so object-key ordering never
// produces a false positive.
func canonical(snap models.Snapshot) string {
	raw, err := json.Marshal(snap)
	if err != nil {
		// Snapshot contains only maps, strings and ints; marshal cannot
		// fail on it.
		panic(fmt.Sprintf("store: marshal snapshot: %v", err))
	}
	return string(raw)
}

// Create validates the type's required sections, assigns a fresh id and
// timestamps, writes the "created" history entry and persists.
func (s *Store) Create(t models.DocType, name string, sections map[models.SectionID]string, attachments []models.Attachment) (*models.Document, error) {
	if !t.Valid() {
		return nil, &domain.NotFoundError{Resource: "collection", ID: string(t)}
	}
	if err := validateSections(t, sections); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	id := now.UnixMilli()
	// Same-millisecond double-submit guard: ids are unique per collection.
	for s.docs[t][id] != nil {
		id++
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("%s %s", strings.ToUpper(string(t)), now.Format("02/01/2006 15:04"))
	}

	doc := &models.Document{
		ID:          id,
		Type:        t,
		Name:        name,
		Priority:    models.PriorityMedium,
		CreatedAt:   now,
		UpdatedAt:   now,
		Sections:    models.CloneSections(sections),
		Attachments: models.CloneAttachments(attachments),
	}
	doc.History = []models.HistoryEntry{{
		Timestamp: now,
		Summary:   models.SummaryCreated,
		Snapshot:  doc.State(),
	}}

	s.docs[t][id] = doc
	if err := s.persist(t); err != nil {
		delete(s.docs[t], id)
		return nil, err
	}

	s.logger.Info("document created", "type", t, "id", id, "name", name)
	return doc.Clone(), nil
}

// Update replaces a document's sections and attachments. If the new state is
// structurally identical to the stored state the call is an idempotent
// no-op: no timestamp bump, no history growth. Otherwise updatedAt moves
// strictly forward and one "general modification" entry is prepended.
func (s *Store) Update(t models.DocType, id int64, sections map[models.SectionID]string, attachments []models.Attachment) (*models.Document, error) {
	if err := validateSections(t, sections); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.docs[t][id]
	if doc == nil {
		return nil, &domain.NotFoundError{Resource: "document", ID: fmt.Sprintf("%d", id)}
	}

	next := models.Snapshot{
		Sections:    models.CloneSections(sections),
		Attachments: models.CloneAttachments(attachments),
	}
	if canonical(next) == canonical(doc.State()) {
		return doc.Clone(), nil
	}

	now := s.now()
	if !now.After(doc.UpdatedAt) {
		// Millisecond clocks can tie under rapid successive saves; the
		// updatedAt invariant is strictly increasing.
		now = doc.UpdatedAt.Add(time.Millisecond)
	}

	prev := *doc
	doc.Sections = next.Sections
	doc.Attachments = next.Attachments
	doc.UpdatedAt = now
	doc.History = append([]models.HistoryEntry{{
		Timestamp: now,
		Summary:   models.SummaryModified,
		Snapshot:  doc.State(),
	}}, doc.History...)

	if err := s.persist(t); err != nil {
		*doc = prev
		return nil, err
	}

	s.logger.Info("document updated", "type", t, "id", id)
	return doc.Clone(), nil
}

// Rename updates a document's name and priority. This is a metadata-only
// edit: no updatedAt bump and no history entry. A name that trims to empty
// is silently ignored, leaving the stored name unchanged.
func (s *Store) Rename(t models.DocType, id int64, name string, priority models.Priority) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.docs[t][id]
	if doc == nil {
		return nil, &domain.NotFoundError{Resource: "document", ID: fmt.Sprintf("%d", id)}
	}

	prevName, prevPriority := doc.Name, doc.Priority
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		doc.Name = trimmed
	}
	if priority.Valid() {
		doc.Priority = priority
	}
	if doc.Name == prevName && doc.Priority == prevPriority {
		return doc.Clone(), nil
	}

	if err := s.persist(t); err != nil {
		doc.Name, doc.Priority = prevName, prevPriority
		return nil, err
	}
	return doc.Clone(), nil
}

// Delete removes a document. Deleting an absent id is not an error.
func (s *Store) Delete(t models.DocType, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.docs[t][id] == nil {
		return nil
	}
	doc := s.docs[t][id]
	delete(s.docs[t], id)
	if err := s.persist(t); err != nil {
		s.docs[t][id] = doc
		return err
	}
	s.logger.Info("document deleted", "type", t, "id", id)
	return nil
}

// Get returns a deep copy of a document.
func (s *Store) Get(t models.DocType, id int64) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.docs[t][id]
	if doc == nil {
		return nil, &domain.NotFoundError{Resource: "document", ID: fmt.Sprintf("%d", id)}
	}
	return doc.Clone(), nil
}

// List returns the collection filtered and ordered. Default order is most
// recently updated first.
func (s *Store) List(t models.DocType, filter Filter, sortMode SortMode) []*models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(strings.TrimSpace(filter.NameContains))
	var out []*models.Document
	for _, doc := range s.docs[t] {
		if filter.Priority != "" && doc.Priority != filter.Priority {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(doc.Name), needle) {
			continue
		}
		out = append(out, doc.Clone())
	}

	switch sortMode {
	case SortNameAsc:
		sort.Slice(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
	default:
		sort.Slice(out, func(i, j int) bool {
			if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
				return out[i].ID > out[j].ID
			}
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		})
	}
	return out
}

// History returns a document's change log, newest first.
func (s *Store) History(t models.DocType, id int64) ([]models.HistoryEntry, error) {
	doc, err := s.Get(t, id)
	if err != nil {
		return nil, err
	}
	return doc.History, nil
}
