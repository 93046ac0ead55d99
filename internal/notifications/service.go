// Package notifications derives unread counters and recent-activity feeds
// for the wholesaler dashboard from the order and inquiry stores.
package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tradelinkhq/tradelink-backend/internal/authz"
	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
)

const defaultRecentLimit = 10

// orderFeed is the slice of the orders repository this package reads.
type orderFeed interface {
	CountUnread(ctx context.Context, wholesalerID uuid.UUID) (int64, error)
	ListRecent(ctx context.Context, wholesalerID uuid.UUID, limit int) ([]models.Order, error)
	MarkAllRead(ctx context.Context, wholesalerID uuid.UUID, at time.Time) (int64, error)
}

// inquiryFeed is the slice of the inquiries repository this package reads.
type inquiryFeed interface {
	CountUnansweredForWholesaler(ctx context.Context, wholesalerID uuid.UUID) (int64, error)
	ListRecentForWholesaler(ctx context.Context, wholesalerID uuid.UUID, limit int) ([]models.Inquiry, error)
}

// OrderNotification is a recent order annotated with its read state.
type OrderNotification struct {
	Order  models.Order `json:"order"`
	IsRead bool         `json:"is_read"`
}

// Counts aggregates the dashboard badge numbers.
type Counts struct {
	UnreadOrders        int64 `json:"unread_orders"`
	UnansweredInquiries int64 `json:"unanswered_inquiries"`
}

// Service exposes the wholesaler notification surface.
type Service interface {
	Counts(ctx context.Context, actor authz.Actor) (*Counts, error)
	RecentOrders(ctx context.Context, actor authz.Actor, limit int) ([]OrderNotification, error)
	// MarkAllOrdersRead returns the number of orders newly marked read.
	// Calling it again immediately returns zero.
	MarkAllOrdersRead(ctx context.Context, actor authz.Actor) (int64, error)
	RecentInquiries(ctx context.Context, actor authz.Actor, limit int) ([]models.Inquiry, error)
}

type service struct {
	orders    orderFeed
	inquiries inquiryFeed
	logg      *logger.Logger
}

// NewService builds the notification service over the two feeds.
func NewService(orders orderFeed, inquiries inquiryFeed, logg *logger.Logger) (Service, error) {
	if orders == nil {
		return nil, fmt.Errorf("order feed required")
	}
	if inquiries == nil {
		return nil, fmt.Errorf("inquiry feed required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{orders: orders, inquiries: inquiries, logg: logg}, nil
}

func (s *service) Counts(ctx context.Context, actor authz.Actor) (*Counts, error) {
	scope, err := wholesalerScope(actor)
	if err != nil {
		return nil, err
	}

	unreadOrders, err := s.orders.CountUnread(ctx, scope)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread orders")
	}
	unanswered, err := s.inquiries.CountUnansweredForWholesaler(ctx, scope)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unanswered inquiries")
	}
	return &Counts{UnreadOrders: unreadOrders, UnansweredInquiries: unanswered}, nil
}

func (s *service) RecentOrders(ctx context.Context, actor authz.Actor, limit int) ([]OrderNotification, error) {
	scope, err := wholesalerScope(actor)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	rows, err := s.orders.ListRecent(ctx, scope, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list recent orders")
	}

	notifications := make([]OrderNotification, 0, len(rows))
	for _, order := range rows {
		notifications = append(notifications, OrderNotification{
			Order:  order,
			IsRead: order.WholesalerReadAt != nil,
		})
	}
	return notifications, nil
}

func (s *service) MarkAllOrdersRead(ctx context.Context, actor authz.Actor) (int64, error) {
	scope, err := wholesalerScope(actor)
	if err != nil {
		return 0, err
	}

	mutated, err := s.orders.MarkAllRead(ctx, scope, time.Now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark orders read")
	}
	return mutated, nil
}

func (s *service) RecentInquiries(ctx context.Context, actor authz.Actor, limit int) ([]models.Inquiry, error) {
	scope, err := wholesalerScope(actor)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	rows, err := s.inquiries.ListRecentForWholesaler(ctx, scope, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list recent inquiries")
	}
	return rows, nil
}

func wholesalerScope(actor authz.Actor) (uuid.UUID, error) {
	if !actor.IsWholesaler() || actor.Scope() == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "wholesaler role required")
	}
	return actor.Scope(), nil
}
