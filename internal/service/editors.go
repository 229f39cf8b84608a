package service

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"minuta/internal/domain"
	"minuta/internal/domain/models"
	"minuta/internal/editor"
	"minuta/internal/store"
)

// Editors manages editing sessions: one per open document, each with its
// own autosaver. The flush path goes through store.Update, so a flush with
// unchanged content is a no-op and writes no history.
type Editors struct {
	store    *store.Store
	debounce time.Duration
	interval time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[string]*openSession
}

type openSession struct {
	session *editor.Session
	saver   *editor.Autosaver
}

func sessionKey(t models.DocType, id int64) string {
	return fmt.Sprintf("%s:%d", t, id)
}

// NewEditors creates the session manager with the autosave timings.
func NewEditors(s *store.Store, debounce, interval time.Duration, logger *slog.Logger) *Editors {
	return &Editors{
		store:    s,
		debounce: debounce,
		interval: interval,
		logger:   logger,
		sessions: make(map[string]*openSession),
	}
}

// Open starts (or resumes) an editing session for a stored document and
// returns its current draft state.
func (e *Editors) Open(t models.DocType, id int64) (*models.Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := sessionKey(t, id)
	if open, ok := e.sessions[key]; ok {
		doc, err := e.store.Get(t, id)
		if err != nil {
			return nil, err
		}
		doc.Sections, doc.Attachments = open.session.Snapshot()
		return doc, nil
	}

	doc, err := e.store.Get(t, id)
	if err != nil {
		return nil, err
	}

	sess := editor.NewSession(doc)
	flush := func() {
		// Reads the live session state at fire time, never a captured copy.
		sections, attachments := sess.Snapshot()
		if _, err := e.store.Update(t, id, sections, attachments); err != nil {
			e.logger.Error("autosave flush failed", "type", t, "id", id, "error", err)
		}
	}
	e.sessions[key] = &openSession{
		session: sess,
		saver:   editor.NewAutosaver(e.debounce, e.interval, flush),
	}
	e.logger.Debug("editing session opened", "type", t, "id", id)
	return doc, nil
}

// session returns the open session for a document.
func (e *Editors) session(t models.DocType, id int64) (*openSession, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	open, ok := e.sessions[sessionKey(t, id)]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "editing session", ID: fmt.Sprintf("%s:%d", t, id)}
	}
	return open, nil
}

// EditSection records a manual edit in the session draft and re-arms the
// autosave debounce.
func (e *Editors) EditSection(t models.DocType, id int64, section models.SectionID, content string) error {
	if !models.SchemaFor(t).Contains(section) {
		return &domain.ValidationError{
			Message: fmt.Sprintf("section %q is not defined for document type %q", section, t),
		}
	}
	open, err := e.session(t, id)
	if err != nil {
		return err
	}
	open.session.SetSection(section, content)
	open.saver.Notify()
	return nil
}

// CancelSection discards any in-flight generation result for the section.
// The underlying network call keeps running; its result is dropped when it
// arrives.
func (e *Editors) CancelSection(t models.DocType, id int64, section models.SectionID) error {
	open, err := e.session(t, id)
	if err != nil {
		return err
	}
	open.session.CancelSection(section)
	return nil
}

// Close flushes pending edits, stops the autosaver and discards the
// session. Closing a document with no open session is not an error.
func (e *Editors) Close(t models.DocType, id int64) {
	e.mu.Lock()
	open, ok := e.sessions[sessionKey(t, id)]
	if ok {
		delete(e.sessions, sessionKey(t, id))
	}
	e.mu.Unlock()
	if !ok {
		return
	}

	// Close blocks further edits and generation commits; Stop then runs a
	// final flush of the settled draft so pending edits are not lost.
	open.session.Close()
	open.saver.Stop()
	e.logger.Debug("editing session closed", "type", t, "id", id)
}

// Live returns the open session for generation commits, or nil when the
// document is not being edited.
func (e *Editors) Live(t models.DocType, id int64) *editor.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	if open, ok := e.sessions[sessionKey(t, id)]; ok {
		return open.session
	}
	return nil
}
