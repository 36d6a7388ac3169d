package api

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/famcare/medminder/internal/engine"
	"github.com/famcare/medminder/internal/model"
	"github.com/famcare/medminder/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// 2026-08-24 is a Monday.
var monday9 = time.Date(2026, time.August, 24, 9, 0, 0, 0, time.UTC)

type nopGateway struct{}

func (nopGateway) Alarm(model.Reminder, bool) error { return nil }

type nopChannel struct{}

func (nopChannel) Notify(model.Reminder, int) error { return nil }

func newTestHandler(t *testing.T) (*Handler, *engine.Engine, *store.ReminderStore) {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_fk=1", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite memory: %v", err)
	}
	if err := db.AutoMigrate(&model.Reminder{}, &model.FamilyMember{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	reminders := store.NewReminderStore(db)
	logger := log.New(io.Discard, "", 0)
	eng := engine.New(reminders, nopGateway{}, nopChannel{}, engine.NewStandardTimer(), time.UTC, logger)
	return NewHandler(eng, reminders, time.UTC, logger), eng, reminders
}

func seedReminder(t *testing.T, reminders *store.ReminderStore, name string) *model.Reminder {
	t.Helper()
	reminder, err := reminders.Create(store.ReminderInput{
		MedicineName:       name,
		TimeOfDay:          "09:00",
		Days:               []string{"MON"},
		NotifyFamily:       true,
		FamilyDelayMinutes: 30,
	})
	if err != nil {
		t.Fatalf("seed reminder: %v", err)
	}
	return reminder
}

func postMessage(t *testing.T, h *Handler, body string) string {
	t.Helper()

	form := url.Values{}
	form.Set("From", "whatsapp:+351999999999")
	form.Set("Body", body)

	req := httptest.NewRequest(http.MethodPost, "/twilio/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	h.Webhook().ServeHTTP(rec, req)

	if ct := rec.Header().Get("Content-Type"); ct != "application/xml" {
		t.Fatalf("content type = %q", ct)
	}
	return rec.Body.String()
}

func TestConfirmViaMessage(t *testing.T) {
	t.Parallel()
	h, eng, reminders := newTestHandler(t)
	reminder := seedReminder(t, reminders, "Aspirin")

	eng.Tick(monday9)

	resp := postMessage(t, h, "Taken")
	if !strings.Contains(resp, "Confirmed Aspirin") {
		t.Fatalf("unexpected reply: %q", resp)
	}

	got, err := reminders.Get(reminder.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.LastConfirmedDate == "" {
		t.Fatalf("confirmation date not recorded")
	}
	if _, live := eng.Session(reminder.ID); live {
		t.Fatalf("session should be gone after confirmation")
	}
}

func TestConfirmWithNothingWaiting(t *testing.T) {
	t.Parallel()
	h, _, reminders := newTestHandler(t)
	seedReminder(t, reminders, "Aspirin")

	resp := postMessage(t, h, "taken")
	if !strings.Contains(resp, "Nothing is waiting") {
		t.Fatalf("unexpected reply: %q", resp)
	}
}

func TestConfirmAmbiguousAsksForName(t *testing.T) {
	t.Parallel()
	h, eng, reminders := newTestHandler(t)
	seedReminder(t, reminders, "Aspirin")
	metformin := seedReminder(t, reminders, "Metformin")

	eng.Tick(monday9)

	resp := postMessage(t, h, "done")
	if !strings.Contains(resp, "Which one") {
		t.Fatalf("expected disambiguation prompt, got %q", resp)
	}

	resp = postMessage(t, h, "took metformin")
	if !strings.Contains(resp, "Confirmed Metformin") {
		t.Fatalf("unexpected reply: %q", resp)
	}
	if _, live := eng.Session(metformin.ID); live {
		t.Fatalf("metformin session should be confirmed")
	}

	// The other alarm is still pending.
	sessions := eng.ActiveSessions()
	if len(sessions) != 1 || sessions[0].MedicineName != "Aspirin" {
		t.Fatalf("unexpected remaining sessions: %+v", sessions)
	}
}

func TestConfirmUnknownKeyword(t *testing.T) {
	t.Parallel()
	h, eng, reminders := newTestHandler(t)
	seedReminder(t, reminders, "Aspirin")

	eng.Tick(monday9)

	resp := postMessage(t, h, "taken vitamins")
	if !strings.Contains(resp, "couldn't find") {
		t.Fatalf("unexpected reply: %q", resp)
	}
}

func TestListSchedule(t *testing.T) {
	t.Parallel()
	h, _, reminders := newTestHandler(t)
	seedReminder(t, reminders, "Aspirin")

	resp := postMessage(t, h, "list")
	if !strings.Contains(resp, "Aspirin") || !strings.Contains(resp, "09:00") {
		t.Fatalf("schedule missing details: %q", resp)
	}
	if !strings.Contains(resp, "family notified after 30 min") {
		t.Fatalf("escalation summary missing: %q", resp)
	}
}

func TestUnknownMessageGetsHelp(t *testing.T) {
	t.Parallel()
	h, _, _ := newTestHandler(t)

	resp := postMessage(t, h, "hello there")
	if !strings.Contains(resp, "You can say things like") {
		t.Fatalf("expected help text, got %q", resp)
	}
}

func TestListRequestNeedsWholeWord(t *testing.T) {
	t.Parallel()
	h, _, reminders := newTestHandler(t)
	seedReminder(t, reminders, "Aspirin")

	// "specialist" contains "list" as a substring; it must not dump the
	// schedule.
	resp := postMessage(t, h, "I saw a specialist today")
	if !strings.Contains(resp, "You can say things like") {
		t.Fatalf("expected help text, got %q", resp)
	}

	for _, body := range []string{"list", "List please", "show my reminders", "what's the schedule?"} {
		resp := postMessage(t, h, body)
		if !strings.Contains(resp, "Aspirin") {
			t.Fatalf("%q should list the schedule, got %q", body, resp)
		}
	}
}

func TestEmptyBodyRejected(t *testing.T) {
	t.Parallel()
	h, _, _ := newTestHandler(t)

	resp := postMessage(t, h, "   ")
	if !strings.Contains(resp, "I need a message") {
		t.Fatalf("unexpected reply: %q", resp)
	}
}

func TestExtractConfirmKeyword(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"taken":              "",
		"Taken Aspirin":      "Aspirin",
		"took my heart meds": "heart meds",
		"done: metformin":    "metformin",
		"confirmed":          "",
	}
	for input, want := range cases {
		if got := extractConfirmKeyword(input); got != want {
			t.Errorf("extractConfirmKeyword(%q) = %q, want %q", input, got, want)
		}
	}
}
