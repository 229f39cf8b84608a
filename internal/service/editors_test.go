package service

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"minuta/internal/domain"
	"minuta/internal/domain/models"
	"minuta/internal/storage"
	"minuta/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(storage.NewMemory(), testLogger())
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	return s
}

func createETP(t *testing.T, s *store.Store) *models.Document {
	t.Helper()
	doc, err := s.Create(models.DocTypeETP, "ETP de teste", map[models.SectionID]string{
		"demanda": "Aquisição de notebooks.",
	}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return doc
}

func TestEditors_OpenEditClose(t *testing.T) {
	st := newTestStore(t)
	doc := createETP(t, st)
	// Long timings keep the timers out of the way; Close flushes explicitly.
	e := NewEditors(st, time.Hour, time.Hour, testLogger())

	opened, err := e.Open(models.DocTypeETP, doc.ID)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if opened.Sections["demanda"] != "Aquisição de notebooks." {
		t.Errorf("opened draft = %q", opened.Sections["demanda"])
	}

	if err := e.EditSection(models.DocTypeETP, doc.ID, "demanda", "Aquisição de notebooks e monitores."); err != nil {
		t.Fatalf("EditSection: %v", err)
	}

	e.Close(models.DocTypeETP, doc.ID)

	saved, err := st.Get(models.DocTypeETP, doc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if saved.Sections["demanda"] != "Aquisição de notebooks e monitores." {
		t.Errorf("edit not flushed on close: %q", saved.Sections["demanda"])
	}
	if len(saved.History) != 2 {
		t.Errorf("history length = %d, want 2", len(saved.History))
	}
}

func TestEditors_CloseWithoutChangesWritesNoHistory(t *testing.T) {
	st := newTestStore(t)
	doc := createETP(t, st)
	e := NewEditors(st, time.Hour, time.Hour, testLogger())

	if _, err := e.Open(models.DocTypeETP, doc.ID); err != nil {
		t.Fatalf("Open: %v", err)
	}
	e.Close(models.DocTypeETP, doc.ID)

	saved, err := st.Get(models.DocTypeETP, doc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(saved.History) != 1 {
		t.Errorf("an unchanged session must not grow history, got %d entries", len(saved.History))
	}
	if !saved.UpdatedAt.Equal(doc.UpdatedAt) {
		t.Error("an unchanged session must not bump updatedAt")
	}
}

func TestEditors_DebounceFlush(t *testing.T) {
	st := newTestStore(t)
	doc := createETP(t, st)
	e := NewEditors(st, 20*time.Millisecond, time.Hour, testLogger())
	defer e.Close(models.DocTypeETP, doc.ID)

	if _, err := e.Open(models.DocTypeETP, doc.ID); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := e.EditSection(models.DocTypeETP, doc.ID, "demanda", "Texto revisado."); err != nil {
		t.Fatalf("EditSection: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		saved, err := st.Get(models.DocTypeETP, doc.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if saved.Sections["demanda"] == "Texto revisado." {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("debounce flush never persisted the edit")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestEditors_FlushReadsLatestDraft(t *testing.T) {
	st := newTestStore(t)
	doc := createETP(t, st)
	e := NewEditors(st, time.Hour, time.Hour, testLogger())

	if _, err := e.Open(models.DocTypeETP, doc.ID); err != nil {
		t.Fatalf("Open: %v", err)
	}
	// Several edits before any flush; only the last one may survive.
	for _, content := range []string{"primeira", "segunda", "terceira"} {
		if err := e.EditSection(models.DocTypeETP, doc.ID, "demanda", content); err != nil {
			t.Fatalf("EditSection: %v", err)
		}
	}
	e.Close(models.DocTypeETP, doc.ID)

	saved, err := st.Get(models.DocTypeETP, doc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if saved.Sections["demanda"] != "terceira" {
		t.Errorf("flush must persist the latest draft, got %q", saved.Sections["demanda"])
	}
	if len(saved.History) != 2 {
		t.Errorf("coalesced edits should land as one entry, got %d", len(saved.History))
	}
}

func TestEditors_OpenResumesDraft(t *testing.T) {
	st := newTestStore(t)
	doc := createETP(t, st)
	e := NewEditors(st, time.Hour, time.Hour, testLogger())
	defer e.Close(models.DocTypeETP, doc.ID)

	if _, err := e.Open(models.DocTypeETP, doc.ID); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := e.EditSection(models.DocTypeETP, doc.ID, "demanda", "rascunho não salvo"); err != nil {
		t.Fatalf("EditSection: %v", err)
	}

	resumed, err := e.Open(models.DocTypeETP, doc.ID)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	if resumed.Sections["demanda"] != "rascunho não salvo" {
		t.Errorf("resume must surface the draft, got %q", resumed.Sections["demanda"])
	}
}

func TestEditors_EditValidation(t *testing.T) {
	st := newTestStore(t)
	doc := createETP(t, st)
	e := NewEditors(st, time.Hour, time.Hour, testLogger())
	defer e.Close(models.DocTypeETP, doc.ID)

	if _, err := e.Open(models.DocTypeETP, doc.ID); err != nil {
		t.Fatalf("Open: %v", err)
	}

	err := e.EditSection(models.DocTypeETP, doc.ID, "secao-inexistente", "x")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("unknown section: expected validation error, got %v", err)
	}

	err = e.EditSection(models.DocTypeETP, 42, "demanda", "x")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("no session: expected not-found, got %v", err)
	}
}

func TestEditors_CloseUnopenedIsNoop(t *testing.T) {
	st := newTestStore(t)
	doc := createETP(t, st)
	e := NewEditors(st, time.Hour, time.Hour, testLogger())

	e.Close(models.DocTypeETP, doc.ID) // never opened
	if e.Live(models.DocTypeETP, doc.ID) != nil {
		t.Error("Live must be nil for a document that was never opened")
	}
}
