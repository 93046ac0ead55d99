package inquiries

import (
	"github.com/google/uuid"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// CreateInput carries a new inquiry and its opening message.
type CreateInput struct {
	Type         enums.InquiryType `json:"type" validate:"required"`
	WholesalerID *uuid.UUID        `json:"wholesaler_id,omitempty"`
	OrderID      *uuid.UUID        `json:"order_id,omitempty"`
	ProductID    *uuid.UUID        `json:"product_id,omitempty"`
	Title        string            `json:"title" validate:"required,min=2,max=200"`
	Content      string            `json:"content" validate:"required,min=10,max=5000"`
	Attachments  []string          `json:"attachments,omitempty" validate:"omitempty,max=5,dive,url"`
}

// ListParams describe inquiry list filters for the caller's scope.
type ListParams struct {
	Type   *enums.InquiryType
	Status *enums.InquiryStatus
	Page   int
	Size   int
}

// ListResult wraps the filtered inquiries plus the unpaginated total.
type ListResult struct {
	Items []models.Inquiry `json:"items"`
	Total int64            `json:"total"`
}

type listQuery struct {
	authorProfileID *uuid.UUID
	wholesalerID    *uuid.UUID
	inquiryType     *enums.InquiryType
	status          *enums.InquiryStatus
	offset          int
	limit           int
}
