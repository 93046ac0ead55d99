package csthreads

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a CS thread repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, thread *models.CSThread) (*models.CSThread, error) {
	if err := r.db.WithContext(ctx).Create(thread).Error; err != nil {
		return nil, err
	}
	return thread, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CSThread, error) {
	var thread models.CSThread
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&thread).Error
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

func (r *repository) List(ctx context.Context, query listQuery) ([]models.CSThread, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.CSThread{})
	if query.profileID != nil {
		base = base.Where("profile_id = ?", *query.profileID)
	}
	if query.status != nil {
		base = base.Where("status = ?", *query.status)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.CSThread
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
		Model(&models.CSThread{}).
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

func (r *repository) CreateMessage(ctx context.Context, message *models.CSMessage) (*models.CSMessage, error) {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}
