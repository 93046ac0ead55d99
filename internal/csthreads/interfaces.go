package csthreads

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
)

// Repository is the persistence boundary for CS threads and messages.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, thread *models.CSThread) (*models.CSThread, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.CSThread, error)
	List(ctx context.Context, query listQuery) ([]models.CSThread, int64, error)
	// Update applies a partial column update and returns
	// gorm.ErrRecordNotFound when no row matched.
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error

	CreateMessage(ctx context.Context, message *models.CSMessage) (*models.CSMessage, error)
}
