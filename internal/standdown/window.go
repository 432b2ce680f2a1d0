package standdown

import (
	"sync"
	"time"
)

// Window is the suppression window for scheduled stand-down posts. It is
// in-memory only and clears itself once the deadline passes.
type Window struct {
	mu            sync.Mutex
	disabledUntil time.Time
	now           func() time.Time
}

func NewWindow() *Window {
	return &Window{now: time.Now}
}

// DisableFor suppresses scheduled posts for the given duration and returns
// the moment posting resumes.
func (w *Window) DisableFor(d time.Duration) time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.disabledUntil = w.now().Add(d)
	return w.disabledUntil
}

// Enable clears the window immediately.
func (w *Window) Enable() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.disabledUntil = time.Time{}
}

func (w *Window) Suppressed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.now().Before(w.disabledUntil)
}

func (w *Window) DisabledUntil() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.disabledUntil
}
