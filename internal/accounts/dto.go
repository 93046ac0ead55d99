package accounts

import (
	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// ApplyInput carries the business details submitted with a new account application.
type ApplyInput struct {
	Type           enums.AccountType
	BusinessName   string
	BusinessNumber string
	ContactPhone   *string
}

// ListParams describe the admin account list filters.
type ListParams struct {
	Status *enums.AccountStatus
	Type   *enums.AccountType
	Page   int
	Size   int
}

// ListResult wraps the filtered accounts plus the unpaginated total.
type ListResult struct {
	Items []models.Account `json:"items"`
	Total int64            `json:"total"`
}

// DeleteOwnInput carries the self-service deletion request details.
type DeleteOwnInput struct {
	Reason   string
	Feedback *string
}

type listQuery struct {
	status      *enums.AccountStatus
	accountType *enums.AccountType
	offset      int
	limit       int
}
