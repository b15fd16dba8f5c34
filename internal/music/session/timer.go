package session

import (
	"sync"
	"time"
)

// timerSlot holds at most one pending delayed action. Arming replaces any
// previously armed timer, so a session can never accumulate timers.
type timerSlot struct {
	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// Arm schedules fn after d, replacing any pending timer. The generation
// check keeps a replaced timer that already fired from clearing the new
// timer's handle or running its action.
func (ts *timerSlot) Arm(d time.Duration, fn func()) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.timer != nil {
		ts.timer.Stop()
	}
	ts.gen++
	gen := ts.gen
	ts.timer = time.AfterFunc(d, func() {
		ts.mu.Lock()
		if ts.gen != gen {
			ts.mu.Unlock()
			return
		}
		ts.timer = nil
		ts.mu.Unlock()
		fn()
	})
}

// Cancel stops the pending timer, if any. A fired callback that has not run
// yet is invalidated too.
func (ts *timerSlot) Cancel() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.gen++
	if ts.timer != nil {
		ts.timer.Stop()
		ts.timer = nil
	}
}

// Armed reports whether a timer is currently pending.
func (ts *timerSlot) Armed() bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.timer != nil
}
