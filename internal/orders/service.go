package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/internal/authz"
	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
	"github.com/tradelinkhq/tradelink-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, paths ...string)
}

// catalog is the slice of the product service orders depend on.
type catalog interface {
	FindForPurchase(ctx context.Context, productIDs []uuid.UUID) ([]models.Product, error)
	DecrementStock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
}

// settlementBook is the slice of the settlement service orders depend on.
type settlementBook interface {
	CreateForOrder(ctx context.Context, tx *gorm.DB, order *models.Order) (*models.Settlement, error)
	SchedulePayout(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, deliveredAt time.Time) error
}

// Service exposes order placement, lookup, and status mutation.
type Service interface {
	Create(ctx context.Context, actor authz.Actor, input CreateInput) (*models.Order, error)
	Get(ctx context.Context, actor authz.Actor, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, actor authz.Actor, params ListParams) (*ListResult, error)
	UpdateStatus(ctx context.Context, actor authz.Actor, orderID uuid.UUID, status enums.OrderStatus) (*models.Order, error)
}

type service struct {
	repo        Repository
	tx          txRunner
	catalog     catalog
	settlements settlementBook
	cache       cacheInvalidator
	logg        *logger.Logger
}

// NewService builds the order service with the required dependencies.
func NewService(repo Repository, tx txRunner, cat catalog, settlements settlementBook, cache cacheInvalidator, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if cat == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if settlements == nil {
		return nil, fmt.Errorf("settlement service required")
	}
	if cache == nil {
		return nil, fmt.Errorf("cache invalidator required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, catalog: cat, settlements: settlements, cache: cache, logg: logg}, nil
}

// Create places an order for the retailer's scope. Every line is priced
// from the current catalog row, and the settlement split is written in the
// same transaction as the order.
func (s *service) Create(ctx context.Context, actor authz.Actor, input CreateInput) (*models.Order, error) {
	if !actor.IsRetailer() || actor.Scope() == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "retailer role required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}

	productIDs := make([]uuid.UUID, 0, len(input.Items))
	qtyByProduct := make(map[uuid.UUID]int, len(input.Items))
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil || item.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "each item needs a product id and a positive qty")
		}
		if _, dup := qtyByProduct[item.ProductID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate product in order items")
		}
		productIDs = append(productIDs, item.ProductID)
		qtyByProduct[item.ProductID] = item.Qty
	}

	products, err := s.catalog.FindForPurchase(ctx, productIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	if len(products) != len(productIDs) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "one or more products are unavailable")
	}

	var wholesalerID uuid.UUID
	lines := make([]models.OrderItem, 0, len(products))
	var total int64
	for _, product := range products {
		if wholesalerID == uuid.Nil {
			wholesalerID = product.WholesalerID
		}
		if product.WholesalerID != wholesalerID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "an order may only contain products from one wholesaler")
		}

		qty := qtyByProduct[product.ID]
		if qty < product.MinOrderQty {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("minimum order quantity for %s is %d", product.Name, product.MinOrderQty))
		}
		if qty > product.StockQty {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("insufficient stock for %s", product.Name))
		}

		subtotal := product.Price * int64(qty)
		total += subtotal
		lines = append(lines, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Qty:       qty,
			Subtotal:  subtotal,
		})
	}

	order := &models.Order{
		WholesalerID: wholesalerID,
		RetailerID:   actor.Scope(),
		Status:       enums.OrderStatusPending,
		TotalAmount:  total,
		Items:        lines,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.repo.WithTx(tx).Create(ctx, order)
		if err != nil {
			return err
		}
		order = created
		for productID, qty := range qtyByProduct {
			if err := s.catalog.DecrementStock(ctx, tx, productID, qty); err != nil {
				return err
			}
		}
		_, err = s.settlements.CreateForOrder(ctx, tx, order)
		return err
	})
	if err != nil {
		var appErr *pkgerrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "place order")
	}
	return order, nil
}

func (s *service) Get(ctx context.Context, actor authz.Actor, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !s.canView(actor, order) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another scope")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, actor authz.Actor, params ListParams) (*ListResult, error) {
	if params.Status != nil && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}

	offset, limit := pagination.OffsetParams{Page: params.Page, Size: params.Size}.Normalize()
	query := listQuery{status: params.Status, offset: offset, limit: limit}
	switch {
	case actor.IsAdmin():
		// unscoped
	case actor.IsWholesaler() && actor.Scope() != uuid.Nil:
		scope := actor.Scope()
		query.wholesalerID = &scope
	case actor.IsRetailer() && actor.Scope() != uuid.Nil:
		scope := actor.Scope()
		query.retailerID = &scope
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order access requires a scoped role")
	}

	rows, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return &ListResult{Items: rows, Total: total}, nil
}

// UpdateStatus persists any valid status value. There is no predecessor
// table and concurrent writers race last-write-wins; see DESIGN.md for why
// the permissiveness is kept.
func (s *service) UpdateStatus(ctx context.Context, actor authz.Actor, orderID uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.OwnsScope(order.WholesalerID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another wholesaler")
	}

	// lifecycle timestamps stamp once: re-entering a state keeps the
	// original time and does not re-schedule the payout
	now := time.Now().UTC()
	updates := map[string]any{"status": status}
	firstDelivery := status == enums.OrderStatusDelivered && order.DeliveredAt == nil
	firstCancel := status == enums.OrderStatusCanceled && order.CanceledAt == nil
	if firstDelivery {
		updates["delivered_at"] = now
	}
	if firstCancel {
		updates["canceled_at"] = now
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Update(ctx, orderID, updates); err != nil {
			return err
		}
		if firstDelivery {
			return s.settlements.SchedulePayout(ctx, tx, orderID, now)
		}
		return nil
	})
	if err != nil {
		var appErr *pkgerrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}

	order.Status = status
	if firstDelivery {
		order.DeliveredAt = &now
	}
	if firstCancel {
		order.CanceledAt = &now
	}

	s.cache.Invalidate(ctx, "/wholesaler/orders", "/wholesaler/orders/"+orderID.String())
	return order, nil
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup order")
	}
	return order, nil
}

func (s *service) canView(actor authz.Actor, order *models.Order) bool {
	if actor.IsAdmin() {
		return true
	}
	if actor.IsWholesaler() {
		return actor.OwnsScope(order.WholesalerID)
	}
	if actor.IsRetailer() {
		return actor.OwnsScope(order.RetailerID)
	}
	return false
}
