package settlements

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// Repository defines persistence operations for settlements.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, settlement *models.Settlement) (*models.Settlement, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Settlement, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*models.Settlement, error)
	ListByWholesaler(ctx context.Context, wholesalerID uuid.UUID, query listQuery) ([]models.Settlement, int64, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	CountPendingByWholesaler(ctx context.Context, wholesalerID uuid.UUID) (int64, error)
}

type listQuery struct {
	status *enums.SettlementStatus
	offset int
	limit  int
}
