package models

import (
	"time"

	"github.com/google/uuid"
)

// Feedback is a voice-of-customer submission reviewed by admins.
type Feedback struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProfileID uuid.UUID `gorm:"column:profile_id;type:uuid;not null;index"`
	Category  string    `gorm:"type:text;not null"`
	Content   string    `gorm:"type:text;not null"`
	PagePath  *string   `gorm:"column:page_path;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
