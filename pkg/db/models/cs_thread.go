package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// CSThread is a general customer-service conversation, distinct from
// order/product inquiries. Replies are blocked once the status leaves the
// open/bot_handled/escalated set.
type CSThread struct {
	ID        uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProfileID uuid.UUID            `gorm:"column:profile_id;type:uuid;not null;index"`
	Title     string               `gorm:"type:text;not null"`
	Status    enums.CSThreadStatus `gorm:"column:status;type:text;not null;default:'open'"`
	ClosedAt  *time.Time           `gorm:"column:closed_at"`
	Messages  []CSMessage          `gorm:"foreignKey:ThreadID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// CSMessage is one entry in a customer-service thread.
type CSMessage struct {
	ID         uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ThreadID   uuid.UUID           `gorm:"column:thread_id;type:uuid;not null;index"`
	SenderType enums.MessageSender `gorm:"column:sender_type;type:text;not null"`
	SenderID   uuid.UUID           `gorm:"column:sender_id;type:uuid;not null"`
	Content    string              `gorm:"type:text;not null"`
	CreatedAt  time.Time           `gorm:"column:created_at;autoCreateTime"`
}
