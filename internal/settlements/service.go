package settlements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/internal/authz"
	"github.com/tradelinkhq/tradelink-backend/pkg/config"
	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
	"github.com/tradelinkhq/tradelink-backend/pkg/pagination"
)

type cacheInvalidator interface {
	Invalidate(ctx context.Context, paths ...string)
}

// ListParams describe the wholesaler settlement list filters.
type ListParams struct {
	Status *enums.SettlementStatus
	Page   int
	Size   int
}

// ListResult wraps the filtered settlements plus the unpaginated total.
type ListResult struct {
	Items []models.Settlement `json:"items"`
	Total int64               `json:"total"`
}

// Service exposes settlement creation, listing, and status mutation.
type Service interface {
	// CreateForOrder derives and persists the settlement row for a new
	// order. It runs inside the caller's transaction when tx is non-nil.
	CreateForOrder(ctx context.Context, tx *gorm.DB, order *models.Order) (*models.Settlement, error)
	// SchedulePayout stamps scheduled_payout_at relative to the delivery
	// time. It runs inside the caller's transaction when tx is non-nil.
	SchedulePayout(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, deliveredAt time.Time) error
	GetByOrder(ctx context.Context, actor authz.Actor, orderID uuid.UUID) (*models.Settlement, error)
	List(ctx context.Context, actor authz.Actor, params ListParams) (*ListResult, error)
	UpdateStatus(ctx context.Context, actor authz.Actor, settlementID uuid.UUID, status enums.SettlementStatus) (*models.Settlement, error)
}

type service struct {
	repo  Repository
	cfg   config.SettlementConfig
	cache cacheInvalidator
	logg  *logger.Logger
}

// NewService builds the settlement service with the platform fee parameters.
func NewService(repo Repository, cfg config.SettlementConfig, cache cacheInvalidator, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settlements repository required")
	}
	if cache == nil {
		return nil, fmt.Errorf("cache invalidator required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, cfg: cfg, cache: cache, logg: logg}, nil
}

func (s *service) CreateForOrder(ctx context.Context, tx *gorm.DB, order *models.Order) (*models.Settlement, error) {
	if order == nil || order.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order is required")
	}

	breakdown, err := Compute(order.TotalAmount, s.cfg.FeeRate())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "derive settlement")
	}

	settlement := &models.Settlement{
		OrderID:          order.ID,
		WholesalerID:     order.WholesalerID,
		OrderAmount:      breakdown.OrderAmount,
		PlatformFeeRate:  breakdown.PlatformFeeRate,
		PlatformFee:      breakdown.PlatformFee,
		WholesalerAmount: breakdown.WholesalerAmount,
		Status:           enums.SettlementStatusPending,
	}
	created, err := s.repo.WithTx(tx).Create(ctx, settlement)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create settlement")
	}
	return created, nil
}

func (s *service) SchedulePayout(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, deliveredAt time.Time) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	repo := s.repo.WithTx(tx)
	settlement, err := repo.FindByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "settlement not found for order")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup settlement")
	}

	payoutAt := deliveredAt.UTC().AddDate(0, 0, s.cfg.PayoutOffsetDays)
	if err := repo.Update(ctx, settlement.ID, map[string]any{
		"scheduled_payout_at": payoutAt,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "schedule payout")
	}
	return nil
}

func (s *service) GetByOrder(ctx context.Context, actor authz.Actor, orderID uuid.UUID) (*models.Settlement, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	settlement, err := s.repo.FindByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "settlement not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup settlement")
	}
	if !actor.IsAdmin() && !actor.OwnsScope(settlement.WholesalerID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "settlement belongs to another wholesaler")
	}
	return settlement, nil
}

func (s *service) List(ctx context.Context, actor authz.Actor, params ListParams) (*ListResult, error) {
	if !actor.IsWholesaler() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "wholesaler role required")
	}
	if params.Status != nil && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}

	offset, limit := pagination.OffsetParams{Page: params.Page, Size: params.Size}.Normalize()
	rows, total, err := s.repo.ListByWholesaler(ctx, actor.Scope(), listQuery{
		status: params.Status,
		offset: offset,
		limit:  limit,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list settlements")
	}
	return &ListResult{Items: rows, Total: total}, nil
}

func (s *service) UpdateStatus(ctx context.Context, actor authz.Actor, settlementID uuid.UUID, status enums.SettlementStatus) (*models.Settlement, error) {
	if settlementID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "settlement id is required")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid settlement status")
	}

	settlement, err := s.repo.FindByID(ctx, settlementID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "settlement not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup settlement")
	}
	if !actor.IsAdmin() && !actor.OwnsScope(settlement.WholesalerID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "settlement belongs to another wholesaler")
	}

	updates := map[string]any{"status": status}
	var completedAt *time.Time
	if status == enums.SettlementStatusCompleted {
		now := time.Now().UTC()
		completedAt = &now
		updates["completed_at"] = now
	} else {
		updates["completed_at"] = nil
	}

	if err := s.repo.Update(ctx, settlementID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update settlement status")
	}

	settlement.Status = status
	settlement.CompletedAt = completedAt

	s.cache.Invalidate(ctx, "/wholesaler/settlements")
	return settlement, nil
}
