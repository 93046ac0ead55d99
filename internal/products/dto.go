package products

import (
	"github.com/google/uuid"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// CreateInput carries a wholesaler's new catalog entry.
type CreateInput struct {
	Name        string   `json:"name" validate:"required,min=1,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price       int64    `json:"price" validate:"required,gt=0"`
	MinOrderQty int      `json:"min_order_qty" validate:"omitempty,gte=1"`
	StockQty    int      `json:"stock_qty" validate:"omitempty,gte=0"`
	ImageURLs   []string `json:"image_urls,omitempty" validate:"omitempty,max=10,dive,url"`
}

// UpdateInput carries a partial product edit. Nil fields are untouched.
type UpdateInput struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price       *int64   `json:"price,omitempty" validate:"omitempty,gt=0"`
	MinOrderQty *int     `json:"min_order_qty,omitempty" validate:"omitempty,gte=1"`
	StockQty    *int     `json:"stock_qty,omitempty" validate:"omitempty,gte=0"`
	ImageURLs   []string `json:"image_urls,omitempty" validate:"omitempty,max=10,dive,url"`
}

// ListParams describe catalog list filters.
type ListParams struct {
	WholesalerID *uuid.UUID
	Status       *enums.ProductStatus
	Search       string
	Page         int
	Size         int
}

// ListResult wraps the filtered products plus the unpaginated total.
type ListResult struct {
	Items []models.Product `json:"items"`
	Total int64            `json:"total"`
}

type listQuery struct {
	wholesalerID *uuid.UUID
	status       *enums.ProductStatus
	search       string
	offset       int
	limit        int
}
