package models

// KnowledgeFile is one ingested supporting file available for selection as
// AI context. Created on successful ingestion, mutated only to toggle
// Selected, destroyed on explicit deletion.
type KnowledgeFile struct {
	Name     string   `json:"name"` // unique within the knowledge base
	MIME     string   `json:"mime"`
	Size     int64    `json:"size"`
	Content  string   `json:"content"` // base64-encoded original bytes
	Chunks   []string `json:"chunks"`  // ordered, bounded-size text chunks
	Selected bool     `json:"selected"`
	// Locked marks a legacy record persisted without its original content;
	// such files cannot be previewed but their chunks remain usable.
	Locked bool `json:"locked,omitempty"`
}

// Clone returns a deep copy of the knowledge file.
func (f *KnowledgeFile) Clone() KnowledgeFile {
	c := *f
	if len(f.Chunks) > 0 {
		c.Chunks = make([]string, len(f.Chunks))
		copy(c.Chunks, f.Chunks)
	}
	return c
}
