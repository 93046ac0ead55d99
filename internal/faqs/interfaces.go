package faqs

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
)

// Repository is the persistence boundary for FAQ entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, faq *models.FAQ) (*models.FAQ, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.FAQ, error)
	List(ctx context.Context, query listQuery) ([]models.FAQ, int64, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}
