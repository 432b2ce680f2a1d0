package standdown

import "sync"

// Tracker records which members have posted in the current day's stand-down
// thread. Discord handlers run on separate goroutines, so access is
// mutex-guarded.
type Tracker struct {
	mu       sync.RWMutex
	threadID string
	seen     map[string]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{
		seen: make(map[string]struct{}),
	}
}

// SetCurrentThread replaces the tracked thread. Attendance from the previous
// thread is kept until Reset is called.
func (t *Tracker) SetCurrentThread(threadID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.threadID = threadID
}

func (t *Tracker) CurrentThreadID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.threadID
}

// Record marks the member as attended iff the message was posted in the
// current thread. Repeated calls for the same member are no-ops.
func (t *Tracker) Record(userID, channelID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.threadID == "" || channelID != t.threadID {
		return
	}
	t.seen[userID] = struct{}{}
}

func (t *Tracker) Attended(userID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.seen[userID]
	return ok
}

func (t *Tracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.seen)
}

// Reset empties the attendance set. The current thread ID is kept, matching
// the day-rollover behavior: only a new thread replaces it.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seen = make(map[string]struct{})
}
