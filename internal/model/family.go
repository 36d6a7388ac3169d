package model

import "time"

// FamilyMember is a caregiver who receives escalation notices when the
// patient leaves a medication alarm unconfirmed.
type FamilyMember struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"type:text;not null" json:"name"`
	PhoneNumber string    `gorm:"type:text;not null" json:"phoneNumber"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
}
