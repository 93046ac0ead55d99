package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// Settlement is the per-order payout record. Invariants:
// PlatformFee = floor(OrderAmount * PlatformFeeRate) and
// WholesalerAmount = OrderAmount - PlatformFee. ScheduledPayoutAt stays
// null until the order is delivered.
type Settlement struct {
	ID                uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID           uuid.UUID              `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	WholesalerID      uuid.UUID              `gorm:"column:wholesaler_id;type:uuid;not null;index"`
	OrderAmount       int64                  `gorm:"column:order_amount;not null"`
	PlatformFeeRate   decimal.Decimal        `gorm:"column:platform_fee_rate;type:numeric(6,4);not null"`
	PlatformFee       int64                  `gorm:"column:platform_fee;not null"`
	WholesalerAmount  int64                  `gorm:"column:wholesaler_amount;not null"`
	Status            enums.SettlementStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	ScheduledPayoutAt *time.Time             `gorm:"column:scheduled_payout_at"`
	CompletedAt       *time.Time             `gorm:"column:completed_at"`
	CreatedAt         time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
