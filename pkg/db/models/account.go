package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// Account is a trading account (wholesaler or retailer) owned by a profile.
// Status transitions are admin-only after the initial pending row.
type Account struct {
	ID              uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProfileID       uuid.UUID           `gorm:"column:profile_id;type:uuid;not null;index"`
	Type            enums.AccountType   `gorm:"column:type;type:text;not null"`
	BusinessName    string              `gorm:"column:business_name;type:text;not null"`
	BusinessNumber  string              `gorm:"column:business_number;type:text;not null"`
	ContactPhone    *string             `gorm:"column:contact_phone;type:text"`
	Status          enums.AccountStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	RejectionReason *string             `gorm:"column:rejection_reason;type:text"`
	ApprovedAt      *time.Time          `gorm:"column:approved_at"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
