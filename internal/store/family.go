package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/famcare/medminder/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FamilyStore owns the caregiving family membership.
type FamilyStore struct {
	db *gorm.DB
}

// NewFamilyStore creates a store backed by the given database.
func NewFamilyStore(db *gorm.DB) *FamilyStore {
	return &FamilyStore{db: db}
}

// Members returns every family member in insertion order.
func (s *FamilyStore) Members() ([]model.FamilyMember, error) {
	var members []model.FamilyMember
	if err := s.db.Order("created_at ASC, id ASC").Find(&members).Error; err != nil {
		return nil, fmt.Errorf("list family members: %w", err)
	}
	return members, nil
}

// Add registers a family member who will receive escalation notices.
func (s *FamilyStore) Add(name, phoneNumber string) (*model.FamilyMember, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(phoneNumber) == "" {
		return nil, &ValidationError{Field: "phoneNumber", Reason: "must not be empty"}
	}

	member := &model.FamilyMember{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(name),
		PhoneNumber: strings.TrimSpace(phoneNumber),
	}
	if err := s.db.Create(member).Error; err != nil {
		return nil, fmt.Errorf("add family member: %w", err)
	}
	return member, nil
}

// Remove deletes a family member.
func (s *FamilyStore) Remove(id string) error {
	result := s.db.Delete(&model.FamilyMember{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("remove family member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Get returns a single member by id.
func (s *FamilyStore) Get(id string) (*model.FamilyMember, error) {
	var member model.FamilyMember
	err := s.db.First(&member, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get family member: %w", err)
	}
	return &member, nil
}
