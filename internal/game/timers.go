package game

import (
	"sync"
	"time"
)

// Timer names used by the controllers
const (
	TimerHostCancelRecovery = "host-cancel-recovery"
	TimerClueTurn           = "clue-turn"
	TimerEmptyRoom          = "empty-room"
)

// TimerSet is the single schedulable-cancellable timer abstraction per
// room. Scheduling under a name replaces any pending timer with that
// name; Stop cancels everything and refuses new work, so no callback can
// fire against a destroyed room.
type TimerSet struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

// NewTimerSet creates an empty timer set
func NewTimerSet() *TimerSet {
	return &TimerSet{timers: make(map[string]*time.Timer)}
}

// Schedule runs fn after d, replacing any pending timer with the same name
func (ts *TimerSet) Schedule(name string, d time.Duration, fn func()) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.stopped {
		return
	}
	if t, ok := ts.timers[name]; ok {
		t.Stop()
	}
	ts.timers[name] = time.AfterFunc(d, func() {
		ts.mu.Lock()
		if ts.stopped {
			ts.mu.Unlock()
			return
		}
		delete(ts.timers, name)
		ts.mu.Unlock()
		fn()
	})
}

// Cancel stops a pending timer by name
func (ts *TimerSet) Cancel(name string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if t, ok := ts.timers[name]; ok {
		t.Stop()
		delete(ts.timers, name)
	}
}

// Stop cancels all pending timers and rejects future scheduling
func (ts *TimerSet) Stop() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.stopped = true
	for name, t := range ts.timers {
		t.Stop()
		delete(ts.timers, name)
	}
}
