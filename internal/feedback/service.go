// Package feedback collects voice-of-customer submissions for admin review.
package feedback

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/internal/authz"
	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
	"github.com/tradelinkhq/tradelink-backend/pkg/pagination"
)

const (
	minContentLen = 10
	maxContentLen = 5000
)

// SubmitInput carries a user feedback submission.
type SubmitInput struct {
	Category string  `json:"category" validate:"required,min=1,max=100"`
	Content  string  `json:"content" validate:"required,min=10,max=5000"`
	PagePath *string `json:"page_path,omitempty" validate:"omitempty,max=500"`
}

// ListParams describe admin feedback list filters.
type ListParams struct {
	Category string
	Page     int
	Size     int
}

// ListResult wraps the filtered submissions plus the unpaginated total.
type ListResult struct {
	Items []models.Feedback `json:"items"`
	Total int64             `json:"total"`
}

type listQuery struct {
	category string
	offset   int
	limit    int
}

// Repository is the persistence boundary for feedback rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, feedback *models.Feedback) (*models.Feedback, error)
	List(ctx context.Context, query listQuery) ([]models.Feedback, int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a feedback repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, feedback *models.Feedback) (*models.Feedback, error) {
	if err := r.db.WithContext(ctx).Create(feedback).Error; err != nil {
		return nil, err
	}
	return feedback, nil
}

func (r *repository) List(ctx context.Context, query listQuery) ([]models.Feedback, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Feedback{})
	if query.category != "" {
		base = base.Where("category = ?", query.category)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Feedback
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

// Service exposes feedback submission and admin review listing.
type Service interface {
	Submit(ctx context.Context, actor authz.Actor, input SubmitInput) (*models.Feedback, error)
	List(ctx context.Context, actor authz.Actor, params ListParams) (*ListResult, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the feedback service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("feedback repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Submit(ctx context.Context, actor authz.Actor, input SubmitInput) (*models.Feedback, error) {
	if actor.ProfileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "profile identity missing")
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	content := strings.TrimSpace(input.Content)
	if n := len([]rune(content)); n < minContentLen || n > maxContentLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("content must be %d-%d characters", minContentLen, maxContentLen))
	}

	feedback, err := s.repo.Create(ctx, &models.Feedback{
		ProfileID: actor.ProfileID,
		Category:  category,
		Content:   content,
		PagePath:  input.PagePath,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "submit feedback")
	}
	return feedback, nil
}

func (s *service) List(ctx context.Context, actor authz.Actor, params ListParams) (*ListResult, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}

	offset, limit := pagination.OffsetParams{Page: params.Page, Size: params.Size}.Normalize()
	rows, total, err := s.repo.List(ctx, listQuery{
		category: strings.TrimSpace(params.Category),
		offset:   offset,
		limit:    limit,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list feedback")
	}
	return &ListResult{Items: rows, Total: total}, nil
}
