// Package store persists reminder definitions and family membership.
//
// Every mutating call is a synchronous database write: the call does not
// return success until the row is durable, and a failed write leaves no
// in-memory residue to diverge from the saved state.
package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/famcare/medminder/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when an operation references an unknown id.
var ErrNotFound = errors.New("not found")

// ValidationError describes a malformed reminder or member definition.
// Invalid input is rejected before anything is persisted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ReminderInput carries the user-supplied fields for a new reminder.
type ReminderInput struct {
	MedicineName       string
	TimeOfDay          string
	Days               []string
	NotifyFamily       bool
	FamilyDelayMinutes int
}

// ReminderPatch carries optional updates; nil fields are left unchanged.
type ReminderPatch struct {
	MedicineName       *string
	TimeOfDay          *string
	Days               *[]string
	NotifyFamily       *bool
	FamilyDelayMinutes *int
}

// ReminderStore owns the durable reminder collection.
type ReminderStore struct {
	db *gorm.DB
}

// NewReminderStore creates a store backed by the given database.
func NewReminderStore(db *gorm.DB) *ReminderStore {
	return &ReminderStore{db: db}
}

// List returns all reminders in insertion order.
func (s *ReminderStore) List() ([]model.Reminder, error) {
	var reminders []model.Reminder
	if err := s.db.Order("created_at ASC, id ASC").Find(&reminders).Error; err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	return reminders, nil
}

// Get returns the reminder with the given id.
func (s *ReminderStore) Get(id string) (*model.Reminder, error) {
	var reminder model.Reminder
	err := s.db.First(&reminder, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reminder: %w", err)
	}
	return &reminder, nil
}

// Create validates the input, assigns a fresh id and persists the reminder.
// New reminders start active.
func (s *ReminderStore) Create(input ReminderInput) (*model.Reminder, error) {
	days, err := validateReminder(input.MedicineName, input.TimeOfDay, input.Days, input.NotifyFamily, input.FamilyDelayMinutes)
	if err != nil {
		return nil, err
	}

	reminder := &model.Reminder{
		ID:                 uuid.NewString(),
		MedicineName:       strings.TrimSpace(input.MedicineName),
		TimeOfDay:          input.TimeOfDay,
		Days:               days,
		NotifyFamily:       input.NotifyFamily,
		FamilyDelayMinutes: input.FamilyDelayMinutes,
		IsActive:           true,
	}
	if err := s.db.Create(reminder).Error; err != nil {
		return nil, fmt.Errorf("create reminder: %w", err)
	}
	return reminder, nil
}

// Update applies the patch to an existing reminder and re-validates the
// merged result before saving.
func (s *ReminderStore) Update(id string, patch ReminderPatch) (*model.Reminder, error) {
	reminder, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if patch.MedicineName != nil {
		reminder.MedicineName = strings.TrimSpace(*patch.MedicineName)
	}
	if patch.TimeOfDay != nil {
		reminder.TimeOfDay = *patch.TimeOfDay
	}
	if patch.Days != nil {
		reminder.Days = *patch.Days
	}
	if patch.NotifyFamily != nil {
		reminder.NotifyFamily = *patch.NotifyFamily
	}
	if patch.FamilyDelayMinutes != nil {
		reminder.FamilyDelayMinutes = *patch.FamilyDelayMinutes
	}

	days, err := validateReminder(reminder.MedicineName, reminder.TimeOfDay, reminder.Days, reminder.NotifyFamily, reminder.FamilyDelayMinutes)
	if err != nil {
		return nil, err
	}
	reminder.Days = days

	if err := s.db.Save(reminder).Error; err != nil {
		return nil, fmt.Errorf("update reminder: %w", err)
	}
	return reminder, nil
}

// Remove deletes the reminder with the given id.
func (s *ReminderStore) Remove(id string) error {
	result := s.db.Delete(&model.Reminder{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("remove reminder: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetActive toggles whether the scheduler considers the reminder. The call
// is idempotent.
func (s *ReminderStore) SetActive(id string, active bool) error {
	result := s.db.Model(&model.Reminder{}).Where("id = ?", id).Update("is_active", active)
	if result.Error != nil {
		return fmt.Errorf("set active: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// The update may have matched a row that already holds the value;
		// distinguish a missing row from a no-op write.
		if _, err := s.Get(id); err != nil {
			return err
		}
	}
	return nil
}

// RecordConfirmation stamps the calendar date of the latest confirmation.
func (s *ReminderStore) RecordConfirmation(id string, date string) error {
	result := s.db.Model(&model.Reminder{}).Where("id = ?", id).Update("last_confirmed_date", date)
	if result.Error != nil {
		return fmt.Errorf("record confirmation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := s.Get(id); err != nil {
			return err
		}
	}
	return nil
}

func validateReminder(name, timeOfDay string, days []string, notifyFamily bool, delayMinutes int) ([]string, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "medicineName", Reason: "must not be empty"}
	}
	if !model.ValidTimeOfDay(timeOfDay) {
		return nil, &ValidationError{Field: "time", Reason: "must be HH:MM in 24-hour form"}
	}

	// An empty day set is accepted: it represents a reminder that never
	// fires, distinct from isActive=false.
	normalized := make([]string, 0, len(days))
	for _, day := range days {
		code := strings.ToUpper(strings.TrimSpace(day))
		if !model.ValidDayCode(code) {
			return nil, &ValidationError{Field: "days", Reason: fmt.Sprintf("unknown weekday code %q", day)}
		}
		normalized = append(normalized, code)
	}

	if notifyFamily && delayMinutes <= 0 {
		return nil, &ValidationError{Field: "familyDelayMinutes", Reason: "must be positive when notifyFamily is set"}
	}
	return normalized, nil
}
