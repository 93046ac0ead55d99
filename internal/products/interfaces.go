package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
)

// Repository is the persistence boundary for the product catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	List(ctx context.Context, query listQuery) ([]models.Product, int64, error)
	// Update applies a partial column update and returns
	// gorm.ErrRecordNotFound when no row matched.
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	// DecrementStock atomically subtracts qty and fails when the remaining
	// stock would go negative.
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) error
	Delete(ctx context.Context, id uuid.UUID) error
}
