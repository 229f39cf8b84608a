package editor

import (
	"sync"
	"time"
)

// Autosaver persists an editing session through two independent triggers: a
// debounce timer reset on every edit, and a fixed-period ticker as a safety
// net. Both invoke the same flush function, which must be idempotent and
// must read the current session state when it runs.
type Autosaver struct {
	debounce time.Duration
	flush    func()

	mu    sync.Mutex
	timer *time.Timer

	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
}

// NewAutosaver starts the periodic trigger immediately. The debounce timer
// is armed by the first Notify.
func NewAutosaver(debounce, interval time.Duration, flush func()) *Autosaver {
	a := &Autosaver{
		debounce: debounce,
		flush:    flush,
		ticker:   time.NewTicker(interval),
		done:     make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Autosaver) run() {
	for {
		select {
		case <-a.ticker.C:
			a.flush()
		case <-a.done:
			return
		}
	}
}

// Notify resets the debounce timer; the flush fires once the edit stream
// goes quiet for the debounce duration.
func (a *Autosaver) Notify() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer == nil {
		a.timer = time.AfterFunc(a.debounce, a.flush)
		return
	}
	a.timer.Reset(a.debounce)
}

// Stop halts both triggers and runs one final flush so pending edits are
// not lost.
func (a *Autosaver) Stop() {
	a.stopOnce.Do(func() {
		a.mu.Lock()
		if a.timer != nil {
			a.timer.Stop()
		}
		a.mu.Unlock()
		a.ticker.Stop()
		close(a.done)
		a.flush()
	})
}
