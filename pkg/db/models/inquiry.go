package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// Inquiry is a support thread between two marketplace parties. Type
// invariants: wholesaler_to_admin rows carry no wholesaler/order reference;
// retailer_to_wholesaler rows require a wholesaler id.
type Inquiry struct {
	ID              uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AuthorProfileID uuid.UUID           `gorm:"column:author_profile_id;type:uuid;not null;index"`
	InquiryType     enums.InquiryType   `gorm:"column:inquiry_type;type:text;not null"`
	WholesalerID    *uuid.UUID          `gorm:"column:wholesaler_id;type:uuid;index"`
	OrderID         *uuid.UUID          `gorm:"column:order_id;type:uuid"`
	ProductID       *uuid.UUID          `gorm:"column:product_id;type:uuid"`
	Title           string              `gorm:"type:text;not null"`
	Status          enums.InquiryStatus `gorm:"column:status;type:text;not null;default:'open'"`
	AdminReply      *string             `gorm:"column:admin_reply;type:text"`
	RepliedAt       *time.Time          `gorm:"column:replied_at"`
	ClosedAt        *time.Time          `gorm:"column:closed_at"`
	Attachments     pq.StringArray      `gorm:"column:attachments;type:text[]"`
	Messages        []InquiryMessage    `gorm:"foreignKey:InquiryID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
