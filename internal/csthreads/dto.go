package csthreads

import (
	"github.com/google/uuid"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// CreateInput carries a user-initiated CS request and its first message.
type CreateInput struct {
	Title   string `json:"title" validate:"required,min=2,max=200"`
	Content string `json:"content" validate:"required,min=10,max=5000"`
}

// ListParams describe CS thread list filters.
type ListParams struct {
	Status *enums.CSThreadStatus
	Page   int
	Size   int
}

// ListResult wraps the filtered threads plus the unpaginated total.
type ListResult struct {
	Items []models.CSThread `json:"items"`
	Total int64             `json:"total"`
}

type listQuery struct {
	profileID *uuid.UUID
	status    *enums.CSThreadStatus
	offset    int
	limit     int
}
