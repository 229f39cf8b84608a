// Package export renders a document to a paginated PDF: title, metadata,
// sections in canonical order and the attachment listing.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"minuta/internal/ai"
	"minuta/internal/domain/models"
)

// PDF renders a document. fpdf's core fonts are latin-1, so all text goes
// through the unicode translator.
func PDF(doc *models.Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(doc.Name), false)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("%d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, tr(ai.DocLabel(string(doc.Type))), "", "C", false)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.MultiCell(0, 7, tr(doc.Name), "", "C", false)

	pdf.SetFont("Helvetica", "", 9)
	meta := fmt.Sprintf("Criado em %s - Atualizado em %s",
		doc.CreatedAt.Format("02/01/2006 15:04"),
		doc.UpdatedAt.Format("02/01/2006 15:04"),
	)
	pdf.MultiCell(0, 5, tr(meta), "", "C", false)
	pdf.Ln(6)

	schema := models.SchemaFor(doc.Type)
	for _, def := range schema {
		content := strings.TrimSpace(doc.Sections[def.ID])
		if content == "" {
			continue
		}
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 6, tr(def.Title), "", "L", false)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(content), "", "J", false)
		pdf.Ln(4)
	}

	if len(doc.Attachments) > 0 {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 6, tr("Anexos"), "", "L", false)
		pdf.SetFont("Helvetica", "", 10)
		for _, a := range doc.Attachments {
			line := fmt.Sprintf("- %s (%s, %d bytes)", a.Name, a.MIME, a.Size)
			if a.Description != "" {
				line += " - " + a.Description
			}
			pdf.MultiCell(0, 5, tr(line), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
