package store

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"minuta/internal/domain"
	"minuta/internal/domain/models"
	"minuta/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) (*Store, *storage.Memory) {
	t.Helper()
	kv := storage.NewMemory()
	s, err := New(kv, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, kv
}

func etpSections() map[models.SectionID]string {
	return map[models.SectionID]string{
		"demanda": "Aquisição de notebooks para a secretaria.",
	}
}

func TestCreate_Defaults(t *testing.T) {
	s, _ := newTestStore(t)

	doc, err := s.Create(models.DocTypeETP, "", etpSections(), nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if doc.ID == 0 {
		t.Error("expected a non-zero id")
	}
	if doc.Name == "" {
		t.Error("expected a generated default name")
	}
	if doc.Priority != models.PriorityMedium {
		t.Errorf("priority = %q, want %q", doc.Priority, models.PriorityMedium)
	}
	if !doc.CreatedAt.Equal(doc.UpdatedAt) {
		t.Error("createdAt and updatedAt should match on creation")
	}
	if len(doc.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(doc.History))
	}
	if doc.History[0].Summary != models.SummaryCreated {
		t.Errorf("history summary = %q, want %q", doc.History[0].Summary, models.SummaryCreated)
	}
}

func TestCreate_MissingRequiredSection(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Create(models.DocTypeTR, "TR sem objeto", map[models.SectionID]string{
		"tr-objeto": "   ",
	}, nil)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.MissingFieldIDs) != 1 || verr.MissingFieldIDs[0] != "tr-objeto" {
		t.Errorf("missing fields = %v, want [tr-objeto]", verr.MissingFieldIDs)
	}
}

func TestCreate_UnknownSection(t *testing.T) {
	s, _ := newTestStore(t)

	sections := etpSections()
	sections["inexistente"] = "conteúdo"
	_, err := s.Create(models.DocTypeETP, "ETP", sections, nil)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected a validation error, got %v", err)
	}
}

func TestCreate_SameMillisecondIDs(t *testing.T) {
	s, _ := newTestStore(t)
	fixed := time.Now()
	s.now = func() time.Time { return fixed }

	a, err := s.Create(models.DocTypeETP, "primeiro", etpSections(), nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	b, err := s.Create(models.DocTypeETP, "segundo", etpSections(), nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.ID == b.ID {
		t.Errorf("ids collide: %d", a.ID)
	}
}

func TestUpdate_NoOpOnIdenticalState(t *testing.T) {
	s, _ := newTestStore(t)

	doc, err := s.Create(models.DocTypeETP, "ETP", etpSections(), nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	same, err := s.Update(models.DocTypeETP, doc.ID, etpSections(), nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !same.UpdatedAt.Equal(doc.UpdatedAt) {
		t.Error("no-op save must not bump updatedAt")
	}
	if len(same.History) != 1 {
		t.Errorf("no-op save must not grow history, got %d entries", len(same.History))
	}
}

func TestUpdate_ChangeAppendsHistory(t *testing.T) {
	s, _ := newTestStore(t)

	doc, err := s.Create(models.DocTypeETP, "ETP", etpSections(), nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	next := etpSections()
	next["requisitos"] = "Equipamentos com processador recente e 16 GB de memória."
	updated, err := s.Update(models.DocTypeETP, doc.ID, next, nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.UpdatedAt.After(doc.UpdatedAt) {
		t.Error("updatedAt must move strictly forward on change")
	}
	if len(updated.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(updated.History))
	}
	if updated.History[0].Summary != models.SummaryModified {
		t.Errorf("newest entry summary = %q, want %q", updated.History[0].Summary, models.SummaryModified)
	}
	if updated.History[0].Snapshot.Sections["requisitos"] == "" {
		t.Error("newest snapshot is missing the edited section")
	}
	if updated.History[1].Summary != models.SummaryCreated {
		t.Error("creation entry must stay at the tail")
	}
}

func TestUpdate_ClockTieStillAdvances(t *testing.T) {
	s, _ := newTestStore(t)
	fixed := time.Now()
	s.now = func() time.Time { return fixed }

	doc, err := s.Create(models.DocTypeETP, "ETP", etpSections(), nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	next := etpSections()
	next["demanda"] = next["demanda"] + " Ampliação do escopo."
	updated, err := s.Update(models.DocTypeETP, doc.ID, next, nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.UpdatedAt.After(doc.UpdatedAt) {
		t.Error("updatedAt must advance even when the clock ties")
	}
}

func TestUpdate_NotFound(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Update(models.DocTypeETP, 42, etpSections(), nil)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestRename_MetadataOnly(t *testing.T) {
	s, _ := newTestStore(t)

	doc, err := s.Create(models.DocTypeETP, "Nome original", etpSections(), nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	renamed, err := s.Rename(models.DocTypeETP, doc.ID, "Nome novo", models.PriorityHigh)
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if renamed.Name != "Nome novo" {
		t.Errorf("name = %q, want %q", renamed.Name, "Nome novo")
	}
	if renamed.Priority != models.PriorityHigh {
		t.Errorf("priority = %q, want %q", renamed.Priority, models.PriorityHigh)
	}
	if !renamed.UpdatedAt.Equal(doc.UpdatedAt) {
		t.Error("rename must not bump updatedAt")
	}
	if len(renamed.History) != 1 {
		t.Errorf("rename must not grow history, got %d entries", len(renamed.History))
	}
}

func TestRename_BlankNameIgnored(t *testing.T) {
	s, _ := newTestStore(t)

	doc, err := s.Create(models.DocTypeETP, "Mantido", etpSections(), nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	renamed, err := s.Rename(models.DocTypeETP, doc.ID, "   ", "")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if renamed.Name != "Mantido" {
		t.Errorf("name = %q, want the original name preserved", renamed.Name)
	}
}

func TestDelete_Idempotent(t *testing.T) {
	s, _ := newTestStore(t)

	doc, err := s.Create(models.DocTypeETP, "ETP", etpSections(), nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Delete(models.DocTypeETP, doc.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(models.DocTypeETP, doc.ID); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if _, err := s.Get(models.DocTypeETP, doc.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found after delete, got %v", err)
	}
}

func TestCollections_Independent(t *testing.T) {
	s, _ := newTestStore(t)

	etp, err := s.Create(models.DocTypeETP, "ETP", etpSections(), nil)
	if err != nil {
		t.Fatalf("Create etp: %v", err)
	}
	if _, err := s.Get(models.DocTypeTR, etp.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("etp id must not resolve in the tr collection, got %v", err)
	}
}

func TestList_FilterAndSort(t *testing.T) {
	s, _ := newTestStore(t)
	base := time.Now()
	clock := base
	s.now = func() time.Time { return clock }

	mk := func(name string, priority models.Priority) *models.Document {
		t.Helper()
		clock = clock.Add(time.Second)
		doc, err := s.Create(models.DocTypeETP, name, etpSections(), nil)
		if err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
		if priority != "" {
			if _, err := s.Rename(models.DocTypeETP, doc.ID, "", priority); err != nil {
				t.Fatalf("Rename %s: %v", name, err)
			}
		}
		return doc
	}

	mk("Compra de notebooks", models.PriorityHigh)
	mk("Serviço de limpeza", "")
	mk("Compra de cadeiras", models.PriorityHigh)

	t.Run("default order is most recently updated first", func(t *testing.T) {
		got := s.List(models.DocTypeETP, Filter{}, SortUpdatedDesc)
		if len(got) != 3 {
			t.Fatalf("len = %d, want 3", len(got))
		}
		if got[0].Name != "Compra de cadeiras" || got[2].Name != "Compra de notebooks" {
			t.Errorf("unexpected order: %q, %q, %q", got[0].Name, got[1].Name, got[2].Name)
		}
	})

	t.Run("priority filter", func(t *testing.T) {
		got := s.List(models.DocTypeETP, Filter{Priority: models.PriorityHigh}, SortUpdatedDesc)
		if len(got) != 2 {
			t.Fatalf("len = %d, want 2", len(got))
		}
	})

	t.Run("name filter is case-insensitive", func(t *testing.T) {
		got := s.List(models.DocTypeETP, Filter{NameContains: "COMPRA"}, SortNameAsc)
		if len(got) != 2 {
			t.Fatalf("len = %d, want 2", len(got))
		}
		if got[0].Name != "Compra de cadeiras" {
			t.Errorf("first = %q, want name-ascending order", got[0].Name)
		}
	})
}

func TestReload_RoundTrip(t *testing.T) {
	kv := storage.NewMemory()
	s, err := New(kv, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	doc, err := s.Create(models.DocTypeETP, "Persistido", etpSections(), []models.Attachment{
		{Name: "edital.pdf", MIME: "application/pdf", Size: 3, Content: "AAAA"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	next := etpSections()
	next["demanda"] = "Texto revisado."
	if _, err := s.Update(models.DocTypeETP, doc.ID, next, doc.Attachments); err != nil {
		t.Fatalf("Update: %v", err)
	}

	reloaded, err := New(kv, testLogger())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, err := reloaded.Get(models.DocTypeETP, doc.ID)
	if err != nil {
		t.Fatalf("Get after reload: %v", err)
	}
	if got.Name != "Persistido" {
		t.Errorf("name = %q", got.Name)
	}
	if got.Sections["demanda"] != "Texto revisado." {
		t.Errorf("sections not restored: %v", got.Sections)
	}
	if len(got.History) != 2 {
		t.Errorf("history length = %d, want 2", len(got.History))
	}
	if len(got.Attachments) != 1 || got.Attachments[0].Name != "edital.pdf" {
		t.Errorf("attachments not restored: %v", got.Attachments)
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	s, _ := newTestStore(t)

	doc, err := s.Create(models.DocTypeETP, "ETP", etpSections(), nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	first, err := s.Get(models.DocTypeETP, doc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	first.Sections["demanda"] = "mutação externa"

	second, err := s.Get(models.DocTypeETP, doc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if second.Sections["demanda"] == "mutação externa" {
		t.Error("callers must not be able to mutate stored state")
	}
}
