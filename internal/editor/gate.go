package editor

import (
	"errors"
	"fmt"
	"sync"

	"minuta/internal/domain/models"
)

// ErrBusy signals that a generation for the same section is still in
// flight. At most one outstanding generation per section at a time.
var ErrBusy = errors.New("a generation for this section is already in progress")

// Gate enforces the one-outstanding-generation-per-section rule. It is a
// request-level debounce, not a data-race guard: the store serializes
// updates on its own.
type Gate struct {
	mu   sync.Mutex
	busy map[string]bool
}

// NewGate creates an empty gate.
func NewGate() *Gate {
	return &Gate{busy: make(map[string]bool)}
}

// SectionKey identifies one section of one document.
func SectionKey(t models.DocType, id int64, section models.SectionID) string {
	return fmt.Sprintf("%s:%d:%s", t, id, section)
}

// TryAcquire marks the key busy. Returns ErrBusy when a generation for the
// key is already running.
func (g *Gate) TryAcquire(key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy[key] {
		return ErrBusy
	}
	g.busy[key] = true
	return nil
}

// Release clears the busy mark.
func (g *Gate) Release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.busy, key)
}

// Busy reports whether a generation for the key is in flight. Used to show
// the section's busy state.
func (g *Gate) Busy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.busy[key]
}
