package model

import (
	"time"
)

// Reminder is a daily medication reminder owned by the patient.
type Reminder struct {
	ID                 string    `gorm:"primaryKey;size:36" json:"id"`
	MedicineName       string    `gorm:"type:text;not null" json:"medicineName"`
	TimeOfDay          string    `gorm:"size:5;not null" json:"time"`
	Days               []string  `gorm:"serializer:json" json:"days"`
	NotifyFamily       bool      `json:"notifyFamily"`
	FamilyDelayMinutes int       `json:"familyDelayMinutes"`
	IsActive           bool      `json:"isActive"`
	LastConfirmedDate  string    `gorm:"size:10" json:"lastConfirmedDate,omitempty"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// DueAt reports whether the reminder matches the given instant: active,
// scheduled on that weekday, and at that exact minute. A reminder with an
// empty day set never matches.
func (r *Reminder) DueAt(now time.Time) bool {
	if !r.IsActive {
		return false
	}
	code := WeekdayCode(now.Weekday())
	for _, day := range r.Days {
		if day == code {
			return r.TimeOfDay == now.Format("15:04")
		}
	}
	return false
}

// ConfirmedOn reports whether the reminder was already confirmed on the given
// calendar date.
func (r *Reminder) ConfirmedOn(date string) bool {
	return r.LastConfirmedDate != "" && r.LastConfirmedDate == date
}

var weekdayCodes = [...]string{
	time.Sunday:    "SUN",
	time.Monday:    "MON",
	time.Tuesday:   "TUE",
	time.Wednesday: "WED",
	time.Thursday:  "THU",
	time.Friday:    "FRI",
	time.Saturday:  "SAT",
}

// WeekdayCode returns the three-letter code used in Reminder.Days.
func WeekdayCode(d time.Weekday) string {
	return weekdayCodes[d]
}

// ValidDayCode reports whether code is one of MON..SUN.
func ValidDayCode(code string) bool {
	for _, known := range weekdayCodes {
		if known == code {
			return true
		}
	}
	return false
}

// ValidTimeOfDay reports whether value is a 24-hour HH:MM string.
func ValidTimeOfDay(value string) bool {
	if len(value) != 5 {
		return false
	}
	_, err := time.Parse("15:04", value)
	return err == nil
}

// DateStamp formats an instant as the YYYY-MM-DD stamp stored in
// LastConfirmedDate.
func DateStamp(t time.Time) string {
	return t.Format("2006-01-02")
}
