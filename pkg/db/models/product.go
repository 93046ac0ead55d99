package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// Product is a catalog item managed by a wholesaler account.
type Product struct {
	ID           uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	WholesalerID uuid.UUID           `gorm:"column:wholesaler_id;type:uuid;not null;index"`
	Name         string              `gorm:"type:text;not null"`
	Description  *string             `gorm:"type:text"`
	Price        int64               `gorm:"column:price;not null"`
	MinOrderQty  int                 `gorm:"column:min_order_qty;not null;default:1"`
	StockQty     int                 `gorm:"column:stock_qty;not null;default:0"`
	Status       enums.ProductStatus `gorm:"column:status;type:text;not null;default:'draft'"`
	ImageURLs    pq.StringArray      `gorm:"column:image_urls;type:text[]"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
