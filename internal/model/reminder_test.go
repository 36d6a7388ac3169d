package model

import (
	"testing"
	"time"
)

func TestDueAt(t *testing.T) {
	t.Parallel()

	// 2026-08-24 is a Monday.
	monday9 := time.Date(2026, time.August, 24, 9, 0, 0, 0, time.UTC)
	tuesday9 := time.Date(2026, time.August, 25, 9, 0, 0, 0, time.UTC)
	monday901 := monday9.Add(time.Minute)

	cases := []struct {
		name     string
		reminder Reminder
		now      time.Time
		want     bool
	}{
		{"matches day and minute", Reminder{IsActive: true, TimeOfDay: "09:00", Days: []string{"MON"}}, monday9, true},
		{"wrong weekday", Reminder{IsActive: true, TimeOfDay: "09:00", Days: []string{"MON"}}, tuesday9, false},
		{"wrong minute", Reminder{IsActive: true, TimeOfDay: "09:00", Days: []string{"MON"}}, monday901, false},
		{"inactive", Reminder{IsActive: false, TimeOfDay: "09:00", Days: []string{"MON"}}, monday9, false},
		{"empty day set is inert", Reminder{IsActive: true, TimeOfDay: "09:00", Days: nil}, monday9, false},
		{"several days", Reminder{IsActive: true, TimeOfDay: "09:00", Days: []string{"TUE", "MON"}}, monday9, true},
	}

	for _, tc := range cases {
		if got := tc.reminder.DueAt(tc.now); got != tc.want {
			t.Errorf("%s: DueAt = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestConfirmedOn(t *testing.T) {
	t.Parallel()

	r := Reminder{LastConfirmedDate: "2026-08-24"}
	if !r.ConfirmedOn("2026-08-24") {
		t.Errorf("expected confirmed on stamped date")
	}
	if r.ConfirmedOn("2026-08-25") {
		t.Errorf("stamp must not match a later date")
	}

	var fresh Reminder
	if fresh.ConfirmedOn("") {
		t.Errorf("empty stamp must never match")
	}
}

func TestValidTimeOfDay(t *testing.T) {
	t.Parallel()

	valid := []string{"00:00", "09:05", "23:59"}
	invalid := []string{"", "9:00", "24:00", "12:60", "12-30", "noonish", "123:4"}

	for _, v := range valid {
		if !ValidTimeOfDay(v) {
			t.Errorf("ValidTimeOfDay(%q) = false, want true", v)
		}
	}
	for _, v := range invalid {
		if ValidTimeOfDay(v) {
			t.Errorf("ValidTimeOfDay(%q) = true, want false", v)
		}
	}
}

func TestWeekdayCode(t *testing.T) {
	t.Parallel()

	if got := WeekdayCode(time.Monday); got != "MON" {
		t.Errorf("WeekdayCode(Monday) = %q", got)
	}
	if got := WeekdayCode(time.Sunday); got != "SUN" {
		t.Errorf("WeekdayCode(Sunday) = %q", got)
	}
	if !ValidDayCode("WED") || ValidDayCode("XYZ") {
		t.Errorf("ValidDayCode mismatch")
	}
}

func TestDateStamp(t *testing.T) {
	t.Parallel()

	stamp := DateStamp(time.Date(2026, time.August, 24, 23, 59, 0, 0, time.UTC))
	if stamp != "2026-08-24" {
		t.Errorf("DateStamp = %q", stamp)
	}
}
