package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
)

// Repository is the persistence boundary for orders and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, query listQuery) ([]models.Order, int64, error)
	// Update applies a partial column update and returns
	// gorm.ErrRecordNotFound when no row matched.
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error

	CountUnread(ctx context.Context, wholesalerID uuid.UUID) (int64, error)
	ListRecent(ctx context.Context, wholesalerID uuid.UUID, limit int) ([]models.Order, error)
	// MarkAllRead stamps wholesaler_read_at on every unread order for the
	// wholesaler and returns the number of rows mutated.
	MarkAllRead(ctx context.Context, wholesalerID uuid.UUID, at time.Time) (int64, error)
}
