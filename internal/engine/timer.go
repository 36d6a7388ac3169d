package engine

import (
	"fmt"
	"sync"
	"time"
)

// Timer schedules one-shot cancellable callbacks. The engine owns one timer
// per live alarm session; tests substitute a fake to control firing.
type Timer interface {
	// ScheduleAfter runs fn once after delay and returns a handle usable
	// with Cancel.
	ScheduleAfter(delay time.Duration, fn func()) string
	// Cancel stops a pending callback. Cancelling an unknown or already
	// fired handle is a no-op.
	Cancel(id string)
	// Stop cancels every pending callback.
	Stop()
}

// StandardTimer implements Timer on time.AfterFunc.
type StandardTimer struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	nextID int64
}

// NewStandardTimer creates an empty timer.
func NewStandardTimer() *StandardTimer {
	return &StandardTimer{timers: make(map[string]*time.Timer)}
}

// ScheduleAfter runs fn once after delay.
func (t *StandardTimer) ScheduleAfter(delay time.Duration, fn func()) string {
	t.mu.Lock()
	t.nextID++
	id := fmt.Sprintf("escalation-%d", t.nextID)
	t.timers[id] = time.AfterFunc(delay, func() {
		t.mu.Lock()
		delete(t.timers, id)
		t.mu.Unlock()
		fn()
	})
	t.mu.Unlock()
	return id
}

// Cancel stops the pending callback with the given handle.
func (t *StandardTimer) Cancel(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if timer, ok := t.timers[id]; ok {
		timer.Stop()
		delete(t.timers, id)
	}
}

// Stop cancels all pending callbacks.
func (t *StandardTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, timer := range t.timers {
		timer.Stop()
		delete(t.timers, id)
	}
}
