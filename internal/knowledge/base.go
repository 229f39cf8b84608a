package knowledge

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"minuta/internal/domain"
	"minuta/internal/domain/models"
	"minuta/internal/storage"
)

const baseKey = "knowledge"

// Base is the knowledge base: the ordered set of ingested files available
// for selection as AI context. Every mutation persists the whole set
// through the storage adapter before returning.
type Base struct {
	kv     storage.KV
	logger *slog.Logger

	mu    sync.Mutex
	files []models.KnowledgeFile
}

// NewBase loads the knowledge base from the storage adapter.
func NewBase(kv storage.KV, logger *slog.Logger) (*Base, error) {
	b := &Base{kv: kv, logger: logger}
	raw, ok, err := kv.Get(baseKey)
	if err != nil {
		return nil, fmt.Errorf("load knowledge base: %w", err)
	}
	if ok {
		if err := json.Unmarshal(raw, &b.files); err != nil {
			return nil, fmt.Errorf("decode knowledge base: %w", err)
		}
		for i := range b.files {
			// Legacy records persisted without their original bytes cannot
			// be previewed.
			if b.files[i].Content == "" {
				b.files[i].Locked = true
			}
		}
	}
	return b, nil
}

func (b *Base) persist() error {
	raw, err := json.MarshalIndent(b.files, "", "  ")
	if err != nil {
		return fmt.Errorf("encode knowledge base: %w", err)
	}
	return b.kv.Set(baseKey, raw)
}

// Names returns the set of names currently in the base.
func (b *Base) Names() map[string]bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make(map[string]bool, len(b.files))
	for _, f := range b.files {
		names[f.Name] = true
	}
	return names
}

// Add appends ingested files and persists. Files are kept in insertion
// order, which is the knowledge-base order used for context assembly.
func (b *Base) Add(files ...models.KnowledgeFile) error {
	if len(files) == 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	prev := len(b.files)
	b.files = append(b.files, files...)
	if err := b.persist(); err != nil {
		b.files = b.files[:prev]
		return err
	}
	b.logger.Info("knowledge files added", "count", len(files), "total", len(b.files))
	return nil
}

// List returns a copy of the knowledge base in insertion order.
func (b *Base) List() []models.KnowledgeFile {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.KnowledgeFile, len(b.files))
	for i := range b.files {
		out[i] = b.files[i].Clone()
	}
	return out
}

// Selected returns the files currently flagged for context use.
func (b *Base) Selected() []models.KnowledgeFile {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []models.KnowledgeFile
	for i := range b.files {
		if b.files[i].Selected {
			out = append(out, b.files[i].Clone())
		}
	}
	return out
}

// SetSelected toggles the "selected for context" flag of one file.
func (b *Base) SetSelected(name string, selected bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.files {
		if b.files[i].Name != name {
			continue
		}
		if b.files[i].Selected == selected {
			return nil
		}
		b.files[i].Selected = selected
		if err := b.persist(); err != nil {
			b.files[i].Selected = !selected
			return err
		}
		return nil
	}
	return &domain.NotFoundError{Resource: "knowledge file", ID: name}
}

// Delete removes a file by name. Deleting an absent name is not an error.
func (b *Base) Delete(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.files {
		if b.files[i].Name != name {
			continue
		}
		prev := b.files
		b.files = append(append([]models.KnowledgeFile{}, b.files[:i]...), b.files[i+1:]...)
		if err := b.persist(); err != nil {
			b.files = prev
			return err
		}
		b.logger.Info("knowledge file deleted", "name", name)
		return nil
	}
	return nil
}
