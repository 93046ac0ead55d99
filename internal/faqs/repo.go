package faqs

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a FAQ repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, faq *models.FAQ) (*models.FAQ, error) {
	if err := r.db.WithContext(ctx).Create(faq).Error; err != nil {
		return nil, err
	}
	return faq, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.FAQ, error) {
	var faq models.FAQ
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&faq).Error; err != nil {
		return nil, err
	}
	return &faq, nil
}

func (r *repository) List(ctx context.Context, query listQuery) ([]models.FAQ, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.FAQ{})
	if query.category != "" {
		base = base.Where("category = ?", query.category)
	}
	if query.publishedOnly {
		base = base.Where("published = ?", true)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.FAQ
	err := base.
		Order("position ASC, created_at ASC").
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
		Model(&models.FAQ{}).
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

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.FAQ{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
