package inquiries

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inquiries repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, inquiry *models.Inquiry) (*models.Inquiry, error) {
	if err := r.db.WithContext(ctx).Create(inquiry).Error; err != nil {
		return nil, err
	}
	return inquiry, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&inquiry).Error
	if err != nil {
		return nil, err
	}
	return &inquiry, nil
}

func (r *repository) List(ctx context.Context, query listQuery) ([]models.Inquiry, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Inquiry{})
	if query.authorProfileID != nil {
		base = base.Where("author_profile_id = ?", *query.authorProfileID)
	}
	if query.wholesalerID != nil {
		base = base.Where("wholesaler_id = ?", *query.wholesalerID)
	}
	if query.inquiryType != nil {
		base = base.Where("inquiry_type = ?", *query.inquiryType)
	}
	if query.status != nil {
		base = base.Where("status = ?", *query.status)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Inquiry
	err := base.
		Order("created_at DESC").
		Offset(query.offset).
		Limit(query.limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&models.Inquiry{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CreateMessage(ctx context.Context, message *models.InquiryMessage) (*models.InquiryMessage, error) {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

func (r *repository) FindMessageByID(ctx context.Context, id uuid.UUID) (*models.InquiryMessage, error) {
	var message models.InquiryMessage
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&message).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *repository) UpdateMessage(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&models.InquiryMessage{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CountUnansweredForWholesaler(ctx context.Context, wholesalerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Inquiry{}).
		Where("inquiry_type = ? AND wholesaler_id = ? AND status != ?",
			enums.InquiryTypeRetailerToWholesaler, wholesalerID, enums.InquiryStatusAnswered).
		Count(&count).Error
	return count, err
}

func (r *repository) ListRecentForWholesaler(ctx context.Context, wholesalerID uuid.UUID, limit int) ([]models.Inquiry, error) {
	var rows []models.Inquiry
	err := r.db.WithContext(ctx).
		Where("inquiry_type = ? AND wholesaler_id = ?",
			enums.InquiryTypeRetailerToWholesaler, wholesalerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
