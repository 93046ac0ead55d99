package faqs

import (
	"context"
	"errors"
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

// publicListPath is the cached public FAQ view invalidated on admin edits.
const publicListPath = "/faqs"

type cacheInvalidator interface {
	Invalidate(ctx context.Context, paths ...string)
}

// CreateInput carries an admin-authored FAQ entry.
type CreateInput struct {
	Category  string `json:"category" validate:"required,min=1,max=100"`
	Question  string `json:"question" validate:"required,min=2,max=500"`
	Answer    string `json:"answer" validate:"required,min=2,max=5000"`
	Position  int    `json:"position" validate:"omitempty,gte=0"`
	Published bool   `json:"published"`
}

// UpdateInput carries a partial FAQ edit. Nil fields are untouched.
type UpdateInput struct {
	Category  *string `json:"category,omitempty" validate:"omitempty,min=1,max=100"`
	Question  *string `json:"question,omitempty" validate:"omitempty,min=2,max=500"`
	Answer    *string `json:"answer,omitempty" validate:"omitempty,min=2,max=5000"`
	Position  *int    `json:"position,omitempty" validate:"omitempty,gte=0"`
	Published *bool   `json:"published,omitempty"`
}

// ListParams describe FAQ list filters.
type ListParams struct {
	Category string
	Page     int
	Size     int
}

// ListResult wraps the filtered FAQ entries plus the unpaginated total.
type ListResult struct {
	Items []models.FAQ `json:"items"`
	Total int64        `json:"total"`
}

type listQuery struct {
	category      string
	publishedOnly bool
	offset        int
	limit         int
}

// Service exposes FAQ curation and the public published listing.
type Service interface {
	Create(ctx context.Context, actor authz.Actor, input CreateInput) (*models.FAQ, error)
	Update(ctx context.Context, actor authz.Actor, faqID uuid.UUID, input UpdateInput) (*models.FAQ, error)
	Delete(ctx context.Context, actor authz.Actor, faqID uuid.UUID) error
	// ListPublished is the public, unauthenticated view.
	ListPublished(ctx context.Context, params ListParams) (*ListResult, error)
	ListAll(ctx context.Context, actor authz.Actor, params ListParams) (*ListResult, error)
}

type service struct {
	repo  Repository
	cache cacheInvalidator
	logg  *logger.Logger
}

// NewService builds the FAQ service.
func NewService(repo Repository, cache cacheInvalidator, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("faq repository required")
	}
	if cache == nil {
		return nil, fmt.Errorf("cache invalidator required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, cache: cache, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, actor authz.Actor, input CreateInput) (*models.FAQ, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}

	category := strings.TrimSpace(input.Category)
	question := strings.TrimSpace(input.Question)
	answer := strings.TrimSpace(input.Answer)
	if category == "" || question == "" || answer == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category, question, and answer are required")
	}

	faq, err := s.repo.Create(ctx, &models.FAQ{
		Category:  category,
		Question:  question,
		Answer:    answer,
		Position:  input.Position,
		Published: input.Published,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create faq")
	}
	if faq.Published {
		s.cache.Invalidate(ctx, publicListPath)
	}
	return faq, nil
}

func (s *service) Update(ctx context.Context, actor authz.Actor, faqID uuid.UUID, input UpdateInput) (*models.FAQ, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}

	faq, err := s.loadFAQ(ctx, faqID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Category != nil {
		category := strings.TrimSpace(*input.Category)
		if category == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category cannot be blank")
		}
		updates["category"] = category
		faq.Category = category
	}
	if input.Question != nil {
		question := strings.TrimSpace(*input.Question)
		if question == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "question cannot be blank")
		}
		updates["question"] = question
		faq.Question = question
	}
	if input.Answer != nil {
		answer := strings.TrimSpace(*input.Answer)
		if answer == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "answer cannot be blank")
		}
		updates["answer"] = answer
		faq.Answer = answer
	}
	if input.Position != nil {
		updates["position"] = *input.Position
		faq.Position = *input.Position
	}
	if input.Published != nil {
		updates["published"] = *input.Published
		faq.Published = *input.Published
	}
	if len(updates) == 0 {
		return faq, nil
	}

	if err := s.repo.Update(ctx, faqID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update faq")
	}
	s.cache.Invalidate(ctx, publicListPath)
	return faq, nil
}

func (s *service) Delete(ctx context.Context, actor authz.Actor, faqID uuid.UUID) error {
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if _, err := s.loadFAQ(ctx, faqID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, faqID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete faq")
	}
	s.cache.Invalidate(ctx, publicListPath)
	return nil
}

func (s *service) ListPublished(ctx context.Context, params ListParams) (*ListResult, error) {
	return s.list(ctx, params, true)
}

func (s *service) ListAll(ctx context.Context, actor authz.Actor, params ListParams) (*ListResult, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	return s.list(ctx, params, false)
}

func (s *service) list(ctx context.Context, params ListParams, publishedOnly bool) (*ListResult, error) {
	offset, limit := pagination.OffsetParams{Page: params.Page, Size: params.Size}.Normalize()
	rows, total, err := s.repo.List(ctx, listQuery{
		category:      strings.TrimSpace(params.Category),
		publishedOnly: publishedOnly,
		offset:        offset,
		limit:         limit,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list faqs")
	}
	return &ListResult{Items: rows, Total: total}, nil
}

func (s *service) loadFAQ(ctx context.Context, faqID uuid.UUID) (*models.FAQ, error) {
	if faqID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "faq id is required")
	}
	faq, err := s.repo.FindByID(ctx, faqID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "faq not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup faq")
	}
	return faq, nil
}
