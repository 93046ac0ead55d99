package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/internal/authz"
	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
	"github.com/tradelinkhq/tradelink-backend/pkg/pagination"
)

const maxProductImages = 10

type cacheInvalidator interface {
	Invalidate(ctx context.Context, paths ...string)
}

// Service exposes catalog management for wholesalers and the purchase
// lookups the order flow depends on.
type Service interface {
	Create(ctx context.Context, actor authz.Actor, input CreateInput) (*models.Product, error)
	Get(ctx context.Context, actor authz.Actor, productID uuid.UUID) (*models.Product, error)
	List(ctx context.Context, actor authz.Actor, params ListParams) (*ListResult, error)
	Update(ctx context.Context, actor authz.Actor, productID uuid.UUID, input UpdateInput) (*models.Product, error)
	UpdateStatus(ctx context.Context, actor authz.Actor, productID uuid.UUID, status enums.ProductStatus) (*models.Product, error)
	Delete(ctx context.Context, actor authz.Actor, productID uuid.UUID) error

	// FindForPurchase returns only active rows for the requested ids.
	FindForPurchase(ctx context.Context, productIDs []uuid.UUID) ([]models.Product, error)
	// DecrementStock runs inside the caller's transaction when tx is
	// non-nil and fails when stock would go negative.
	DecrementStock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
}

type service struct {
	repo  Repository
	cache cacheInvalidator
	logg  *logger.Logger
}

// NewService builds the product service.
func NewService(repo Repository, cache cacheInvalidator, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if cache == nil {
		return nil, fmt.Errorf("cache invalidator required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, cache: cache, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, actor authz.Actor, input CreateInput) (*models.Product, error) {
	if !actor.IsWholesaler() || actor.Scope() == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "wholesaler role required")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Price <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if len(input.ImageURLs) > maxProductImages {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("at most %d image urls allowed", maxProductImages))
	}

	minQty := input.MinOrderQty
	if minQty < 1 {
		minQty = 1
	}
	stock := input.StockQty
	if stock < 0 {
		stock = 0
	}

	product := &models.Product{
		WholesalerID: actor.Scope(),
		Name:         name,
		Description:  input.Description,
		Price:        input.Price,
		MinOrderQty:  minQty,
		StockQty:     stock,
		Status:       enums.ProductStatusDraft,
		ImageURLs:    pq.StringArray(input.ImageURLs),
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, actor authz.Actor, productID uuid.UUID) (*models.Product, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Status == enums.ProductStatusActive {
		return product, nil
	}
	if !actor.IsAdmin() && !actor.OwnsScope(product.WholesalerID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *service) List(ctx context.Context, actor authz.Actor, params ListParams) (*ListResult, error) {
	if params.Status != nil && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}

	offset, limit := pagination.OffsetParams{Page: params.Page, Size: params.Size}.Normalize()
	query := listQuery{
		wholesalerID: params.WholesalerID,
		status:       params.Status,
		search:       strings.TrimSpace(params.Search),
		offset:       offset,
		limit:        limit,
	}

	// outsiders only ever see the active catalog
	ownScope := actor.IsWholesaler() && actor.Scope() != uuid.Nil &&
		params.WholesalerID != nil && *params.WholesalerID == actor.Scope()
	if !actor.IsAdmin() && !ownScope {
		active := enums.ProductStatusActive
		query.status = &active
	}

	rows, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return &ListResult{Items: rows, Total: total}, nil
}

func (s *service) Update(ctx context.Context, actor authz.Actor, productID uuid.UUID, input UpdateInput) (*models.Product, error) {
	product, err := s.ownedProduct(ctx, actor, productID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be blank")
		}
		updates["name"] = name
		product.Name = name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
		product.Description = input.Description
	}
	if input.Price != nil {
		if *input.Price <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
		updates["price"] = *input.Price
		product.Price = *input.Price
	}
	if input.MinOrderQty != nil {
		if *input.MinOrderQty < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_order_qty must be at least 1")
		}
		updates["min_order_qty"] = *input.MinOrderQty
		product.MinOrderQty = *input.MinOrderQty
	}
	if input.StockQty != nil {
		if *input.StockQty < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock_qty cannot be negative")
		}
		updates["stock_qty"] = *input.StockQty
		product.StockQty = *input.StockQty
	}
	if input.ImageURLs != nil {
		if len(input.ImageURLs) > maxProductImages {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("at most %d image urls allowed", maxProductImages))
		}
		updates["image_urls"] = pq.StringArray(input.ImageURLs)
		product.ImageURLs = pq.StringArray(input.ImageURLs)
	}
	if len(updates) == 0 {
		return product, nil
	}

	if err := s.repo.Update(ctx, productID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	s.invalidate(ctx, productID)
	return product, nil
}

func (s *service) UpdateStatus(ctx context.Context, actor authz.Actor, productID uuid.UUID, status enums.ProductStatus) (*models.Product, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product status")
	}

	product, err := s.ownedProduct(ctx, actor, productID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, productID, map[string]any{"status": status}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product status")
	}
	product.Status = status
	s.invalidate(ctx, productID)
	return product, nil
}

func (s *service) Delete(ctx context.Context, actor authz.Actor, productID uuid.UUID) error {
	if _, err := s.ownedProduct(ctx, actor, productID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	s.invalidate(ctx, productID)
	return nil
}

func (s *service) FindForPurchase(ctx context.Context, productIDs []uuid.UUID) ([]models.Product, error) {
	rows, err := s.repo.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	active := rows[:0]
	for _, product := range rows {
		if product.Status == enums.ProductStatusActive {
			active = append(active, product)
		}
	}
	return active, nil
}

func (s *service) DecrementStock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "qty must be positive")
	}
	if err := s.repo.WithTx(tx).DecrementStock(ctx, productID, qty); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
	}
	return nil
}

func (s *service) ownedProduct(ctx context.Context, actor authz.Actor, productID uuid.UUID) (*models.Product, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.OwnsScope(product.WholesalerID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another wholesaler")
	}
	return product, nil
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup product")
	}
	return product, nil
}

func (s *service) invalidate(ctx context.Context, productID uuid.UUID) {
	s.cache.Invalidate(ctx, "/products", "/products/"+productID.String())
}
