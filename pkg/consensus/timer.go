package consensus

import (
	"sync"
	"time"
)

// CancelableTimer models §4.2.3/§5's SCHEDULE/cancel contract: "because the
// reactor may have dispatched the callback before cancel is observed, each
// callback re-reads a cancel_flag under the timer mutex and returns early if
// set." Grounded on miner/worker.go's time.NewTimer/Reset loop, generalized
// from one fixed recommit timer to a per-state-transition cancelable one.
type CancelableTimer struct {
	mu       sync.Mutex
	canceled bool
	timer    *time.Timer
}

// NewCancelableTimer returns an unarmed timer.
func NewCancelableTimer() *CancelableTimer {
	return &CancelableTimer{canceled: true}
}

// Schedule arms the timer to invoke fn after delay, unless canceled first.
// Calling Schedule again before the previous delay elapses stops the old
// timer and rearms it — SCHEDULE is idempotent per §4.2.3.
func (t *CancelableTimer) Schedule(delay time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	t.canceled = false
	t.timer = time.AfterFunc(delay, func() {
		t.mu.Lock()
		canceled := t.canceled
		t.mu.Unlock()
		if canceled {
			return
		}
		fn()
	})
}

// Cancel stops the timer and sets the cancel flag. If the reactor already
// dispatched the callback's goroutine before Cancel observes it, the
// callback has already committed to running (it read cancel_flag=false
// before Cancel set it to true) and runs to completion regardless — Cancel
// only prevents callbacks that have not yet read the flag. The returned
// bool is informational: it reports whether the underlying timer.Stop()
// itself caught the fire in time, not whether fn ultimately ran.
func (t *CancelableTimer) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.canceled = true
	if t.timer == nil {
		return false
	}
	return t.timer.Stop()
}
