package engine

import "time"

// SessionState is the lifecycle state of an alarm session.
type SessionState string

const (
	// StateActive means the alarm fired and awaits confirmation.
	StateActive SessionState = "ACTIVE"
	// StateEscalated means the grace window elapsed and the family was
	// notified; confirmation is still possible.
	StateEscalated SessionState = "ESCALATED"
	// StateConfirmed is terminal.
	StateConfirmed SessionState = "CONFIRMED"
)

// AlarmSession tracks one triggered reminder until the patient confirms it.
// At most one live session exists per reminder; the engine owns the set and
// guards it with its mutex.
type AlarmSession struct {
	ReminderID   string
	MedicineName string
	TriggeredAt  time.Time
	State        SessionState

	// DelayMinutes is captured when the session opens so a later edit of
	// the reminder does not change the elapsed minutes reported to family.
	DelayMinutes int

	timerID string
}
