package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// Profile is the canonical identity row, created on first sign-in through
// the external identity provider. Role stays null until onboarding
// completes and is reset to null when a wholesaler application is rejected.
type Profile struct {
	ID             uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ExternalUserID string             `gorm:"column:external_user_id;type:text;not null;uniqueIndex"`
	Email          string             `gorm:"type:text;not null"`
	DisplayName    string             `gorm:"column:display_name;type:text;not null"`
	Role           *enums.ProfileRole `gorm:"column:role;type:text"`
	PasswordHash   *string            `gorm:"column:password_hash;type:text"`
	LastSignedInAt *time.Time         `gorm:"column:last_signed_in_at"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
