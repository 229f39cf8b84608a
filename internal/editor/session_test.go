package editor

import (
	"testing"
	"time"

	"minuta/internal/domain/models"
)

func testDoc() *models.Document {
	return &models.Document{
		ID:   1700000000000,
		Type: models.DocTypeETP,
		Sections: map[models.SectionID]string{
			"demanda": "Conteúdo inicial.",
		},
	}
}

func TestSession_EditAndSnapshot(t *testing.T) {
	s := NewSession(testDoc())

	s.SetSection("demanda", "Conteúdo revisado.")
	if got := s.Section("demanda"); got != "Conteúdo revisado." {
		t.Errorf("Section = %q", got)
	}

	sections, _ := s.Snapshot()
	sections["demanda"] = "mutação externa"
	if got := s.Section("demanda"); got == "mutação externa" {
		t.Error("Snapshot must return a copy")
	}
}

func TestSession_SeededFromDocument(t *testing.T) {
	doc := testDoc()
	s := NewSession(doc)
	if got := s.Section("demanda"); got != "Conteúdo inicial." {
		t.Errorf("Section = %q, want the stored content", got)
	}
	// The session must not alias the document's map.
	s.SetSection("demanda", "draft")
	if doc.Sections["demanda"] != "Conteúdo inicial." {
		t.Error("editing the session must not mutate the source document")
	}
}

func TestSession_CommitGeneration(t *testing.T) {
	s := NewSession(testDoc())

	token := s.BeginGeneration("demanda")
	if !s.CommitGeneration("demanda", token, "Texto gerado.") {
		t.Fatal("commit with a fresh token must apply")
	}
	if got := s.Section("demanda"); got != "Texto gerado." {
		t.Errorf("Section = %q", got)
	}
}

func TestSession_CancelDiscardsLateResult(t *testing.T) {
	s := NewSession(testDoc())

	token := s.BeginGeneration("demanda")
	s.CancelSection("demanda")
	if s.CommitGeneration("demanda", token, "Resultado atrasado.") {
		t.Fatal("a result arriving after cancellation must be discarded")
	}
	if got := s.Section("demanda"); got != "Conteúdo inicial." {
		t.Errorf("cancelled generation leaked into the draft: %q", got)
	}
}

func TestSession_CancelIsPerSection(t *testing.T) {
	s := NewSession(testDoc())

	tokenA := s.BeginGeneration("demanda")
	tokenB := s.BeginGeneration("requisitos")
	s.CancelSection("demanda")

	if s.CommitGeneration("demanda", tokenA, "x") {
		t.Error("cancelled section must reject its pending result")
	}
	if !s.CommitGeneration("requisitos", tokenB, "y") {
		t.Error("other sections must be unaffected by the cancellation")
	}
}

func TestSession_ClosedIgnoresWrites(t *testing.T) {
	s := NewSession(testDoc())
	token := s.BeginGeneration("demanda")
	s.Close()

	s.SetSection("demanda", "depois do fechamento")
	if got := s.Section("demanda"); got != "Conteúdo inicial." {
		t.Errorf("closed session accepted an edit: %q", got)
	}
	if s.CommitGeneration("demanda", token, "x") {
		t.Error("closed session must discard generation results")
	}
	if !s.Closed() {
		t.Error("Closed() should report true")
	}
}

func TestGate_SingleFlight(t *testing.T) {
	g := NewGate()
	key := SectionKey(models.DocTypeETP, 1, "demanda")

	if err := g.TryAcquire(key); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if err := g.TryAcquire(key); err != ErrBusy {
		t.Fatalf("second acquire = %v, want ErrBusy", err)
	}
	if !g.Busy(key) {
		t.Error("Busy should report true while held")
	}

	other := SectionKey(models.DocTypeETP, 1, "requisitos")
	if err := g.TryAcquire(other); err != nil {
		t.Errorf("a different section must not be blocked: %v", err)
	}

	g.Release(key)
	if err := g.TryAcquire(key); err != nil {
		t.Errorf("acquire after release: %v", err)
	}
}

func TestAutosaver_DebounceCoalesces(t *testing.T) {
	flushes := make(chan struct{}, 16)
	a := NewAutosaver(30*time.Millisecond, time.Hour, func() {
		flushes <- struct{}{}
	})
	defer a.Stop()

	// A burst of edits inside the debounce window yields one flush.
	for i := 0; i < 5; i++ {
		a.Notify()
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-flushes:
	case <-time.After(time.Second):
		t.Fatal("debounce flush never fired")
	}
	select {
	case <-flushes:
		t.Fatal("burst produced more than one flush")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestAutosaver_PeriodicTrigger(t *testing.T) {
	flushes := make(chan struct{}, 16)
	a := NewAutosaver(time.Hour, 20*time.Millisecond, func() {
		flushes <- struct{}{}
	})
	defer a.Stop()

	// No Notify at all; the ticker alone must flush.
	select {
	case <-flushes:
	case <-time.After(time.Second):
		t.Fatal("periodic flush never fired")
	}
}

func TestAutosaver_StopFlushesOnce(t *testing.T) {
	flushes := make(chan struct{}, 16)
	a := NewAutosaver(time.Hour, time.Hour, func() {
		flushes <- struct{}{}
	})

	a.Stop()
	select {
	case <-flushes:
	case <-time.After(time.Second):
		t.Fatal("Stop must run a final flush")
	}

	a.Stop() // idempotent
	select {
	case <-flushes:
		t.Fatal("repeated Stop must not flush again")
	case <-time.After(50 * time.Millisecond):
	}
}
