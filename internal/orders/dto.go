package orders

import (
	"github.com/google/uuid"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// CreateItemInput is one requested product line on a new order.
type CreateItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Qty       int       `json:"qty" validate:"required,gt=0"`
}

// CreateInput carries a retailer's order placement request.
type CreateInput struct {
	Items []CreateItemInput `json:"items" validate:"required,min=1,dive"`
}

// ListParams describe the order list filters for the caller's scope.
type ListParams struct {
	Status *enums.OrderStatus
	Page   int
	Size   int
}

// ListResult wraps the filtered orders plus the unpaginated total.
type ListResult struct {
	Items []models.Order `json:"items"`
	Total int64          `json:"total"`
}

type listQuery struct {
	wholesalerID *uuid.UUID
	retailerID   *uuid.UUID
	status       *enums.OrderStatus
	offset       int
	limit        int
}
