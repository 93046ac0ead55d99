package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// Order is a retailer purchase fulfilled by a single wholesaler.
// WholesalerReadAt null means the wholesaler has not yet seen the order.
type Order struct {
	ID               uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber      int64             `gorm:"column:order_number;not null;uniqueIndex;default:nextval('order_number_seq')"`
	WholesalerID     uuid.UUID         `gorm:"column:wholesaler_id;type:uuid;not null;index"`
	RetailerID       uuid.UUID         `gorm:"column:retailer_id;type:uuid;not null;index"`
	Status           enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	TotalAmount      int64             `gorm:"column:total_amount;not null"`
	WholesalerReadAt *time.Time        `gorm:"column:wholesaler_read_at"`
	DeliveredAt      *time.Time        `gorm:"column:delivered_at"`
	CanceledAt       *time.Time        `gorm:"column:canceled_at"`
	Items            []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem is a product line on an order, priced at placement time.
type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Name      string    `gorm:"type:text;not null"`
	UnitPrice int64     `gorm:"column:unit_price;not null"`
	Qty       int       `gorm:"column:qty;not null"`
	Subtotal  int64     `gorm:"column:subtotal;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
