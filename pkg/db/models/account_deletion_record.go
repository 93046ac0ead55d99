package models

import (
	"time"

	"github.com/google/uuid"
)

// AccountDeletionRecord is written before a profile and its identity are
// removed, preserving the stated reason and any free-form feedback.
type AccountDeletionRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProfileID uuid.UUID `gorm:"column:profile_id;type:uuid;not null;index"`
	Reason    string    `gorm:"type:text;not null"`
	Feedback  *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
