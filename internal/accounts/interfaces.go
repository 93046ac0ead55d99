package accounts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
)

// Repository defines persistence operations for profiles and trading accounts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error)
	FindAccountByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	FindAccountsByProfile(ctx context.Context, profileID uuid.UUID) ([]models.Account, error)
	ListAccounts(ctx context.Context, query listQuery) ([]models.Account, int64, error)
	UpdateAccount(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FindProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DeleteProfile(ctx context.Context, id uuid.UUID) error
	CreateDeletionRecord(ctx context.Context, record *models.AccountDeletionRecord) error
}
