package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// InquiryMessage is one entry in an inquiry thread. The table is
// append-only; edits overwrite content in place but never delete rows.
type InquiryMessage struct {
	ID         uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	InquiryID  uuid.UUID           `gorm:"column:inquiry_id;type:uuid;not null;index"`
	SenderType enums.MessageSender `gorm:"column:sender_type;type:text;not null"`
	SenderID   uuid.UUID           `gorm:"column:sender_id;type:uuid;not null"`
	Content    string              `gorm:"type:text;not null"`
	EditedAt   *time.Time          `gorm:"column:edited_at"`
	CreatedAt  time.Time           `gorm:"column:created_at;autoCreateTime"`
}
