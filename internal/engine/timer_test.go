package engine

import (
	"testing"
	"time"
)

func TestStandardTimerFires(t *testing.T) {
	t.Parallel()
	timer := NewStandardTimer()
	defer timer.Stop()

	fired := make(chan struct{})
	timer.ScheduleAfter(5*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatalf("timer did not fire")
	}
}

func TestStandardTimerCancel(t *testing.T) {
	t.Parallel()
	timer := NewStandardTimer()
	defer timer.Stop()

	fired := make(chan struct{}, 1)
	id := timer.ScheduleAfter(20*time.Millisecond, func() { fired <- struct{}{} })
	timer.Cancel(id)

	select {
	case <-fired:
		t.Fatalf("cancelled timer fired")
	case <-time.After(60 * time.Millisecond):
	}

	// Cancelling again, or cancelling an unknown handle, is a no-op.
	timer.Cancel(id)
	timer.Cancel("no-such-timer")
}

func TestStandardTimerStopCancelsAll(t *testing.T) {
	t.Parallel()
	timer := NewStandardTimer()

	fired := make(chan struct{}, 2)
	timer.ScheduleAfter(20*time.Millisecond, func() { fired <- struct{}{} })
	timer.ScheduleAfter(25*time.Millisecond, func() { fired <- struct{}{} })
	timer.Stop()

	select {
	case <-fired:
		t.Fatalf("timer fired after Stop")
	case <-time.After(60 * time.Millisecond):
	}
}
