package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"minuta/internal/domain/models"
)

func testDoc() *models.Document {
	now := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	return &models.Document{
		ID:        now.UnixMilli(),
		Type:      models.DocTypeETP,
		Name:      "Aquisição de notebooks",
		Priority:  models.PriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
		Sections: map[models.SectionID]string{
			"demanda":    "Substituição do parque de máquinas da secretaria.",
			"requisitos": "Processador recente, 16 GB de memória e garantia de 36 meses.",
		},
		Attachments: []models.Attachment{
			{Name: "cotacao.pdf", MIME: "application/pdf", Size: 2048, Description: "Cotação de referência"},
		},
	}
}

func TestPDF_ProducesValidOutput(t *testing.T) {
	out, err := PDF(testDoc())
	if err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output does not start with a PDF header: %q", out[:8])
	}
	if len(out) < 1000 {
		t.Errorf("suspiciously small output: %d bytes", len(out))
	}
}

func TestPDF_SkipsBlankSections(t *testing.T) {
	doc := testDoc()
	doc.Sections["solucao"] = "   "

	withBlank, err := PDF(doc)
	if err != nil {
		t.Fatalf("PDF: %v", err)
	}
	delete(doc.Sections, "solucao")
	without, err := PDF(doc)
	if err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if len(withBlank) != len(without) {
		t.Error("a whitespace-only section must not change the rendering")
	}
}

func TestPDF_EmptyDocument(t *testing.T) {
	doc := testDoc()
	doc.Sections = nil
	doc.Attachments = nil

	out, err := PDF(doc)
	if err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Error("even an empty document must render a title page")
	}
}

func TestPDF_Deterministic(t *testing.T) {
	// Section order comes from the schema, not map iteration.
	first, err := PDF(testDoc())
	if err != nil {
		t.Fatalf("PDF: %v", err)
	}
	for i := 0; i < 5; i++ {
		next, err := PDF(testDoc())
		if err != nil {
			t.Fatalf("PDF: %v", err)
		}
		if !bytes.Equal(stripDates(first), stripDates(next)) {
			t.Fatal("identical documents must render identically")
		}
	}
}

// stripDates removes the metadata date lines fpdf embeds, which carry the
// render time.
func stripDates(pdf []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(pdf, []byte("\n")) {
		if strings.Contains(string(line), "Date") {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}
