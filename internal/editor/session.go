// Package editor holds the in-memory editing state of an open document:
// section drafts, the per-section generation gate and the dual-trigger
// autosave machinery.
package editor

import (
	"sync"

	"minuta/internal/domain/models"
)

// Session is the in-memory draft of one open document. Edits accumulate
// here and reach the document store through the autosave flush or an
// explicit save. A generation result is committed only while the session is
// open and its section epoch is unchanged; late results after cancellation
// are discarded, not applied.
type Session struct {
	Type models.DocType
	ID   int64

	mu          sync.Mutex
	sections    map[models.SectionID]string
	attachments []models.Attachment
	epochs      map[models.SectionID]uint64
	closed      bool
}

// NewSession opens an editing session seeded from the stored document.
func NewSession(doc *models.Document) *Session {
	return &Session{
		Type:        doc.Type,
		ID:          doc.ID,
		sections:    models.CloneSections(doc.Sections),
		attachments: models.CloneAttachments(doc.Attachments),
		epochs:      make(map[models.SectionID]uint64),
	}
}

// SetSection replaces one section's draft content.
func (s *Session) SetSection(id models.SectionID, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.sections[id] = content
}

// Section returns one section's current draft content.
func (s *Session) Section(id models.SectionID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sections[id]
}

// SetAttachments replaces the draft attachment list.
func (s *Session) SetAttachments(a []models.Attachment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.attachments = models.CloneAttachments(a)
}

// Snapshot returns the current draft state. The autosave flush reads this
// handle each time it fires, never a captured copy, so edits made between
// debounce cycles are never lost.
func (s *Session) Snapshot() (map[models.SectionID]string, []models.Attachment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneSections(s.sections), models.CloneAttachments(s.attachments)
}

// BeginGeneration records the section's current epoch. The returned token
// must be presented back to CommitGeneration.
func (s *Session) BeginGeneration(id models.SectionID) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epochs[id]
}

// CommitGeneration writes a generation result into the section, but only if
// the session is still open and the section was not cancelled since the
// generation started. Reports whether the result was applied.
func (s *Session) CommitGeneration(id models.SectionID, token uint64, content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.epochs[id] != token {
		return false
	}
	s.sections[id] = content
	return true
}

// CancelSection invalidates any generation in flight for the section. The
// underlying network call is not interrupted; its late result is discarded
// at commit time.
func (s *Session) CancelSection(id models.SectionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epochs[id]++
}

// Close marks the session closed. Subsequent edits are ignored and pending
// generation results are discarded.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Closed reports whether the session was closed.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
