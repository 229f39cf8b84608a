// Package contextbuilder assembles the supporting-context block injected
// into AI prompts: parent-document content, already-filled sibling sections
// and selected knowledge-file chunks, in that order.
package contextbuilder

import (
	"strings"

	"minuta/internal/domain/models"
)

// Build produces the context block for a prompt targeting one section of a
// document. parent and siblings may be nil; files should already be
// filtered to the selected set and come in knowledge-base order. Returns
// the empty string when there is nothing to wrap: no headers are emitted
// for absent context.
func Build(
	parent *models.ParentContext,
	siblings map[models.SectionID]string,
	schema models.Schema,
	target models.SectionID,
	files []models.KnowledgeFile,
) string {
	var b strings.Builder

	if parent != nil && strings.TrimSpace(parent.Text) != "" {
		b.WriteString("### Documento de referência: ")
		b.WriteString(parent.Name)
		b.WriteString("\n\n")
		b.WriteString(strings.TrimSpace(parent.Text))
		b.WriteString("\n\n")
	}

	// Sibling sections in the document's canonical order, excluding the
	// section being drafted.
	var wroteSiblingHeader bool
	for _, def := range schema {
		if def.ID == target {
			continue
		}
		content := strings.TrimSpace(siblings[def.ID])
		if content == "" {
			continue
		}
		if !wroteSiblingHeader {
			b.WriteString("### Seções já preenchidas\n\n")
			wroteSiblingHeader = true
		}
		b.WriteString("[")
		b.WriteString(def.Title)
		b.WriteString("]\n")
		b.WriteString(content)
		b.WriteString("\n\n")
	}

	var wroteFileHeader bool
	for _, f := range files {
		if !f.Selected || len(f.Chunks) == 0 {
			continue
		}
		if !wroteFileHeader {
			b.WriteString("### Base de conhecimento\n\n")
			wroteFileHeader = true
		}
		b.WriteString("--- ")
		b.WriteString(f.Name)
		b.WriteString(" ---\n")
		b.WriteString(strings.Join(f.Chunks, "\n"))
		b.WriteString("\n\n")
	}

	return strings.TrimSpace(b.String())
}

// Flatten renders a document's sections as a single text block in canonical
// schema order, skipping blank sections. Used to project a parent ETP into
// the drafting context of a TR.
func Flatten(schema models.Schema, sections map[models.SectionID]string) string {
	var b strings.Builder
	for _, def := range schema {
		content := strings.TrimSpace(sections[def.ID])
		if content == "" {
			continue
		}
		b.WriteString(def.Title)
		b.WriteString(":\n")
		b.WriteString(content)
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}
