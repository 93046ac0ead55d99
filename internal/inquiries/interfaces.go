package inquiries

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
)

// Repository is the persistence boundary for inquiries and their messages.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, inquiry *models.Inquiry) (*models.Inquiry, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Inquiry, error)
	List(ctx context.Context, query listQuery) ([]models.Inquiry, int64, error)
	// Update applies a partial column update and returns
	// gorm.ErrRecordNotFound when no row matched.
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error

	CreateMessage(ctx context.Context, message *models.InquiryMessage) (*models.InquiryMessage, error)
	FindMessageByID(ctx context.Context, id uuid.UUID) (*models.InquiryMessage, error)
	UpdateMessage(ctx context.Context, id uuid.UUID, updates map[string]any) error

	// CountUnansweredForWholesaler counts retailer inquiries aimed at the
	// wholesaler whose status is anything but answered. The predicate is
	// status != 'answered' verbatim, so closed rows count too.
	CountUnansweredForWholesaler(ctx context.Context, wholesalerID uuid.UUID) (int64, error)
	ListRecentForWholesaler(ctx context.Context, wholesalerID uuid.UUID, limit int) ([]models.Inquiry, error)
}
