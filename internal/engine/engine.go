// Package engine drives medication alarms: a once-a-minute tick matches
// active reminders against the wall clock, opens an alarm session per due
// reminder, and escalates to the family when a session stays unconfirmed
// past its grace window.
package engine

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/famcare/medminder/internal/model"
	"github.com/famcare/medminder/internal/store"
	"github.com/robfig/cron/v3"
)

// NotificationGateway delivers the alarm to the patient. Failures are a
// collaborator concern: the engine logs them and carries on.
type NotificationGateway interface {
	Alarm(reminder model.Reminder, escalated bool) error
}

// EscalationChannel delivers an unconfirmed-medication event to the family.
// Best effort, fire and forget.
type EscalationChannel interface {
	Notify(reminder model.Reminder, elapsedMinutes int) error
}

// Engine owns the live alarm sessions and the minute tick.
type Engine struct {
	store   *store.ReminderStore
	gateway NotificationGateway
	channel EscalationChannel
	timer   Timer
	loc     *time.Location
	logger  *log.Logger

	cron *cron.Cron

	mu       sync.Mutex
	sessions map[string]*AlarmSession
}

// New creates an engine. Start must be called to begin ticking; Tick may
// also be driven directly, which is how tests exercise the scheduler.
func New(reminders *store.ReminderStore, gateway NotificationGateway, channel EscalationChannel, timer Timer, loc *time.Location, logger *log.Logger) *Engine {
	return &Engine{
		store:    reminders,
		gateway:  gateway,
		channel:  channel,
		timer:    timer,
		loc:      loc,
		logger:   logger,
		cron:     cron.New(cron.WithLocation(loc)),
		sessions: make(map[string]*AlarmSession),
	}
}

// Start registers the minute tick and starts the scheduler loop.
func (e *Engine) Start() error {
	_, err := e.cron.AddFunc("* * * * *", func() {
		e.Tick(time.Now().In(e.loc))
	})
	if err != nil {
		return err
	}
	e.cron.Start()
	return nil
}

// Stop halts the tick loop, waits for a running tick to finish, and cancels
// every pending escalation timer.
func (e *Engine) Stop() {
	ctx := e.cron.Stop()
	<-ctx.Done()
	e.timer.Stop()
}

// Tick evaluates every reminder against now and opens an alarm session for
// each newly due one. Reminders are evaluated in store list order.
func (e *Engine) Tick(now time.Time) {
	reminders, err := e.store.List()
	if err != nil {
		e.logger.Printf("engine: tick: list reminders: %v", err)
		return
	}

	today := model.DateStamp(now)
	for _, reminder := range reminders {
		if !reminder.DueAt(now) {
			continue
		}
		if reminder.ConfirmedOn(today) {
			continue
		}

		e.mu.Lock()
		if _, live := e.sessions[reminder.ID]; live {
			// A still-pending session suppresses re-triggering; a skewed
			// or delayed tick must not double-alarm the same reminder.
			e.mu.Unlock()
			continue
		}
		session := &AlarmSession{
			ReminderID:   reminder.ID,
			MedicineName: reminder.MedicineName,
			TriggeredAt:  now,
			State:        StateActive,
			DelayMinutes: reminder.FamilyDelayMinutes,
		}
		e.sessions[reminder.ID] = session
		if reminder.NotifyFamily {
			id := reminder.ID
			session.timerID = e.timer.ScheduleAfter(time.Duration(reminder.FamilyDelayMinutes)*time.Minute, func() {
				e.escalate(id)
			})
		}
		e.mu.Unlock()

		// The session governs escalation even when the initial notice
		// cannot be delivered.
		if err := e.gateway.Alarm(reminder, false); err != nil {
			e.logger.Printf("engine: alarm for %q: %v", reminder.MedicineName, err)
		}
	}
}

// Confirm marks the reminder's live session as taken. It cancels the pending
// escalation timer before anything else, records the confirmation date, then
// discards the session. Confirming a reminder with no live session is a
// harmless no-op and reports confirmed=false.
func (e *Engine) Confirm(reminderID string, now time.Time) (bool, error) {
	e.mu.Lock()
	session, ok := e.sessions[reminderID]
	if !ok {
		e.mu.Unlock()
		return false, nil
	}
	if session.timerID != "" {
		e.timer.Cancel(session.timerID)
		session.timerID = ""
	}
	e.mu.Unlock()

	if err := e.store.RecordConfirmation(reminderID, model.DateStamp(now)); err != nil {
		// The timer is already cancelled, so no escalation can slip out;
		// the session stays live and the caller may retry.
		return false, err
	}

	e.mu.Lock()
	session.State = StateConfirmed
	delete(e.sessions, reminderID)
	e.mu.Unlock()
	return true, nil
}

// Deactivate turns the reminder off and discards any live session so a
// stale escalation cannot fire for a reminder no longer in play.
func (e *Engine) Deactivate(reminderID string) error {
	if err := e.store.SetActive(reminderID, false); err != nil {
		return err
	}
	e.discard(reminderID)
	return nil
}

// Delete removes the reminder and discards any live session.
func (e *Engine) Delete(reminderID string) error {
	if err := e.store.Remove(reminderID); err != nil {
		return err
	}
	e.discard(reminderID)
	return nil
}

// Session returns a snapshot of the live session for a reminder.
func (e *Engine) Session(reminderID string) (AlarmSession, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	session, ok := e.sessions[reminderID]
	if !ok {
		return AlarmSession{}, false
	}
	return *session, true
}

// ActiveSessions returns snapshots of every live session, oldest first.
func (e *Engine) ActiveSessions() []AlarmSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	sessions := make([]AlarmSession, 0, len(e.sessions))
	for _, session := range e.sessions {
		sessions = append(sessions, *session)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].TriggeredAt.Before(sessions[j].TriggeredAt)
	})
	return sessions
}

func (e *Engine) discard(reminderID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	session, ok := e.sessions[reminderID]
	if !ok {
		return
	}
	if session.timerID != "" {
		e.timer.Cancel(session.timerID)
	}
	delete(e.sessions, reminderID)
}

// escalate runs when a session's grace window elapses without confirmation.
func (e *Engine) escalate(reminderID string) {
	e.mu.Lock()
	session, ok := e.sessions[reminderID]
	if !ok || session.State != StateActive {
		e.mu.Unlock()
		return
	}
	session.State = StateEscalated
	session.timerID = ""
	elapsed := session.DelayMinutes
	e.mu.Unlock()

	reminder, err := e.store.Get(reminderID)
	if err != nil {
		// The reminder vanished between trigger and escalation; drop the
		// session rather than alarming the family about nothing.
		e.logger.Printf("engine: escalate: reminder %s gone: %v", reminderID, err)
		e.discard(reminderID)
		return
	}

	if err := e.gateway.Alarm(*reminder, true); err != nil {
		e.logger.Printf("engine: escalated alarm for %q: %v", reminder.MedicineName, err)
	}
	if err := e.channel.Notify(*reminder, elapsed); err != nil {
		e.logger.Printf("engine: family escalation for %q: %v", reminder.MedicineName, err)
	}
}
