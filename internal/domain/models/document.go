package models

import (
	"time"
)

// DocType identifies one of the two independent document collections.
type DocType string

const (
	DocTypeETP DocType = "etp" // Estudo Técnico Preliminar
	DocTypeTR  DocType = "tr"  // Termo de Referência
)

// DocTypes lists the known collections in a fixed order.
var DocTypes = []DocType{DocTypeETP, DocTypeTR}

// Valid reports whether t names a known collection.
func (t DocType) Valid() bool {
	return t == DocTypeETP || t == DocTypeTR
}

// SectionID names one free-text slot in a document, defined by the static
// per-type schema.
type SectionID string

// Priority is a metadata tag on a document. Defaults to PriorityMedium.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the three known priorities.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Attachment is a binary payload owned exclusively by the document (or
// knowledge file) that holds it. Copying an attachment across documents
// duplicates the record.
type Attachment struct {
	Name        string `json:"name"`
	MIME        string `json:"mime"`
	Size        int64  `json:"size"`
	Content     string `json:"content"` // base64-encoded payload
	Description string `json:"description,omitempty"`
}

// Snapshot is the full mutable state of a document at one point in time:
// sections plus attachments. It is what the history records and what change
// detection compares.
type Snapshot struct {
	Sections    map[SectionID]string `json:"sections"`
	Attachments []Attachment         `json:"attachments"`
}

// HistoryEntry is one immutable entry of a document's change log.
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Summary   string    `json:"summary"`
	Snapshot  Snapshot  `json:"snapshot"`
}

// History entry summaries. The log records whole-state snapshots, not
// per-field diffs, so the summary vocabulary is deliberately small.
const (
	SummaryCreated  = "created"
	SummaryModified = "general modification"
)

// Document is a structured legal/procurement document filled section by
// section. ID is millisecond-timestamp derived, unique within its collection
// and immutable after creation. History is ordered newest first.
type Document struct {
	ID          int64                `json:"id"`
	Type        DocType              `json:"type"`
	Name        string               `json:"name"`
	Priority    Priority             `json:"priority"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	Sections    map[SectionID]string `json:"sections"`
	Attachments []Attachment         `json:"attachments"`
	History     []HistoryEntry       `json:"history"`
}

// State returns the document's current snapshot (sections + attachments).
// The returned snapshot shares no mutable state with the document.
func (d *Document) State() Snapshot {
	return Snapshot{
		Sections:    CloneSections(d.Sections),
		Attachments: CloneAttachments(d.Attachments),
	}
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	c := *d
	c.Sections = CloneSections(d.Sections)
	c.Attachments = CloneAttachments(d.Attachments)
	c.History = make([]HistoryEntry, len(d.History))
	for i, h := range d.History {
		c.History[i] = HistoryEntry{
			Timestamp: h.Timestamp,
			Summary:   h.Summary,
			Snapshot: Snapshot{
				Sections:    CloneSections(h.Snapshot.Sections),
				Attachments: CloneAttachments(h.Snapshot.Attachments),
			},
		}
	}
	return &c
}

// CloneSections copies a section map. A nil input yields an empty map so
// callers never alias or mutate shared state.
func CloneSections(m map[SectionID]string) map[SectionID]string {
	out := make(map[SectionID]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// CloneAttachments copies an attachment list.
func CloneAttachments(a []Attachment) []Attachment {
	if len(a) == 0 {
		return nil
	}
	out := make([]Attachment, len(a))
	copy(out, a)
	return out
}

// ParentContext is a derived, read-only projection of a stored ETP used to
// seed the drafting context of a TR. Recomputed each time a parent document
// is selected, never stored.
type ParentContext struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Text string `json:"text"`
}
