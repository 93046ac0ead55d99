package orders

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/internal/authz"
	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
)

type stubOrdersRepo struct {
	order   *models.Order
	created *models.Order
	updates map[string]any
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.OrderNumber = 100001
	s.created = order
	return order, nil
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.order == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.order, nil
}

func (s *stubOrdersRepo) List(ctx context.Context, query listQuery) ([]models.Order, int64, error) {
	if s.order == nil {
		return nil, 0, nil
	}
	return []models.Order{*s.order}, 1, nil
}

func (s *stubOrdersRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	return nil
}

func (s *stubOrdersRepo) CountUnread(ctx context.Context, wholesalerID uuid.UUID) (int64, error) {
	return 0, nil
}

func (s *stubOrdersRepo) ListRecent(ctx context.Context, wholesalerID uuid.UUID, limit int) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrdersRepo) MarkAllRead(ctx context.Context, wholesalerID uuid.UUID, at time.Time) (int64, error) {
	return 0, nil
}

type stubCatalog struct {
	products    []models.Product
	decremented map[uuid.UUID]int
}

func (s *stubCatalog) FindForPurchase(ctx context.Context, productIDs []uuid.UUID) ([]models.Product, error) {
	return s.products, nil
}

func (s *stubCatalog) DecrementStock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if s.decremented == nil {
		s.decremented = map[uuid.UUID]int{}
	}
	s.decremented[productID] += qty
	return nil
}

type stubSettlementBook struct {
	createdFor    uuid.UUID
	scheduledFor  uuid.UUID
	deliveredAt   time.Time
	scheduleCalls int
}

func (s *stubSettlementBook) CreateForOrder(ctx context.Context, tx *gorm.DB, order *models.Order) (*models.Settlement, error) {
	s.createdFor = order.ID
	return &models.Settlement{OrderID: order.ID}, nil
}

func (s *stubSettlementBook) SchedulePayout(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, deliveredAt time.Time) error {
	s.scheduledFor = orderID
	s.deliveredAt = deliveredAt
	s.scheduleCalls++
	return nil
}

type stubOrderTx struct{}

func (stubOrderTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOrderCache struct {
	paths []string
}

func (s *stubOrderCache) Invalidate(ctx context.Context, paths ...string) {
	s.paths = append(s.paths, paths...)
}

type orderFixture struct {
	svc         Service
	repo        *stubOrdersRepo
	catalog     *stubCatalog
	settlements *stubSettlementBook
	cache       *stubOrderCache
}

func newOrderFixture(t *testing.T, repo *stubOrdersRepo, cat *stubCatalog) orderFixture {
	t.Helper()
	settlements := &stubSettlementBook{}
	cache := &stubOrderCache{}
	logg := logger.New(logger.Options{ServiceName: "orders-test", Level: logger.ParseLevel("error"), Output: io.Discard})
	svc, err := NewService(repo, stubOrderTx{}, cat, settlements, cache, logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return orderFixture{svc: svc, repo: repo, catalog: cat, settlements: settlements, cache: cache}
}

func retailerActor(scope uuid.UUID) authz.Actor {
	return authz.Actor{ProfileID: uuid.New(), Role: enums.ProfileRoleRetailer, ScopeID: &scope}
}

func wholesalerActor(scope uuid.UUID) authz.Actor {
	return authz.Actor{ProfileID: uuid.New(), Role: enums.ProfileRoleWholesaler, ScopeID: &scope}
}

func activeProduct(wholesalerID uuid.UUID, price int64, stock int) models.Product {
	return models.Product{
		ID:           uuid.New(),
		WholesalerID: wholesalerID,
		Name:         "Crate of oranges",
		Price:        price,
		MinOrderQty:  1,
		StockQty:     stock,
		Status:       enums.ProductStatusActive,
	}
}

func TestCreatePricesLinesAndWritesSettlement(t *testing.T) {
	wholesalerID := uuid.New()
	first := activeProduct(wholesalerID, 1500, 50)
	second := activeProduct(wholesalerID, 800, 20)
	f := newOrderFixture(t, &stubOrdersRepo{}, &stubCatalog{products: []models.Product{first, second}})

	order, err := f.svc.Create(context.Background(), retailerActor(uuid.New()), CreateInput{
		Items: []CreateItemInput{
			{ProductID: first.ID, Qty: 4},
			{ProductID: second.ID, Qty: 10},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if order.Status != enums.OrderStatusPending {
		t.Fatalf("new order should be pending, got %s", order.Status)
	}
	want := int64(4*1500 + 10*800)
	if order.TotalAmount != want {
		t.Fatalf("total = %d, want %d", order.TotalAmount, want)
	}
	if order.WholesalerID != wholesalerID {
		t.Fatalf("order bound to wrong wholesaler %s", order.WholesalerID)
	}
	if len(order.Items) != 2 || order.Items[0].Subtotal != 6000 {
		t.Fatalf("unexpected line items %+v", order.Items)
	}
	if f.settlements.createdFor != order.ID {
		t.Fatal("settlement should be created alongside the order")
	}
	if f.catalog.decremented[first.ID] != 4 || f.catalog.decremented[second.ID] != 10 {
		t.Fatalf("stock should be decremented per line, got %+v", f.catalog.decremented)
	}
}

func TestCreateRejectsMixedWholesalers(t *testing.T) {
	first := activeProduct(uuid.New(), 1000, 10)
	second := activeProduct(uuid.New(), 1000, 10)
	f := newOrderFixture(t, &stubOrdersRepo{}, &stubCatalog{products: []models.Product{first, second}})

	_, err := f.svc.Create(context.Background(), retailerActor(uuid.New()), CreateInput{
		Items: []CreateItemInput{
			{ProductID: first.ID, Qty: 1},
			{ProductID: second.ID, Qty: 1},
		},
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateEnforcesMinQtyAndStock(t *testing.T) {
	wholesalerID := uuid.New()
	product := activeProduct(wholesalerID, 1000, 5)
	product.MinOrderQty = 3

	f := newOrderFixture(t, &stubOrdersRepo{}, &stubCatalog{products: []models.Product{product}})
	actor := retailerActor(uuid.New())

	_, err := f.svc.Create(context.Background(), actor, CreateInput{
		Items: []CreateItemInput{{ProductID: product.ID, Qty: 2}},
	})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("below minimum qty: expected validation error, got %v", err)
	}

	_, err = f.svc.Create(context.Background(), actor, CreateInput{
		Items: []CreateItemInput{{ProductID: product.ID, Qty: 6}},
	})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("over stock: expected state conflict, got %v", err)
	}
}

func TestCreateRequiresRetailerScope(t *testing.T) {
	f := newOrderFixture(t, &stubOrdersRepo{}, &stubCatalog{})

	_, err := f.svc.Create(context.Background(), wholesalerActor(uuid.New()), CreateInput{
		Items: []CreateItemInput{{ProductID: uuid.New(), Qty: 1}},
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestUpdateStatusForeignWholesalerForbidden(t *testing.T) {
	owner := uuid.New()
	order := &models.Order{ID: uuid.New(), WholesalerID: owner, Status: enums.OrderStatusPending}
	repo := &stubOrdersRepo{order: order}
	f := newOrderFixture(t, repo, &stubCatalog{})

	_, err := f.svc.UpdateStatus(context.Background(), wholesalerActor(uuid.New()), order.ID, enums.OrderStatusConfirmed)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if repo.updates != nil {
		t.Fatalf("foreign caller must not mutate the order, got %+v", repo.updates)
	}
	if order.Status != enums.OrderStatusPending {
		t.Fatalf("status changed to %s", order.Status)
	}
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	order := &models.Order{ID: uuid.New(), WholesalerID: uuid.New()}
	repo := &stubOrdersRepo{order: order}
	f := newOrderFixture(t, repo, &stubCatalog{})

	_, err := f.svc.UpdateStatus(context.Background(), wholesalerActor(order.WholesalerID), order.ID, enums.OrderStatus("refunded"))
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.updates != nil {
		t.Fatal("invalid status must not reach the store")
	}
}

func TestUpdateStatusDeliveredSchedulesPayout(t *testing.T) {
	order := &models.Order{ID: uuid.New(), WholesalerID: uuid.New(), Status: enums.OrderStatusShipping}
	repo := &stubOrdersRepo{order: order}
	f := newOrderFixture(t, repo, &stubCatalog{})

	updated, err := f.svc.UpdateStatus(context.Background(), wholesalerActor(order.WholesalerID), order.ID, enums.OrderStatusDelivered)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.DeliveredAt == nil {
		t.Fatal("delivered_at should be stamped")
	}
	if _, ok := repo.updates["delivered_at"]; !ok {
		t.Fatalf("delivered_at missing from update, got %+v", repo.updates)
	}
	if f.settlements.scheduledFor != order.ID {
		t.Fatal("payout should be scheduled on delivery")
	}
	if !f.settlements.deliveredAt.Equal(*updated.DeliveredAt) {
		t.Fatalf("payout anchored to %v, want %v", f.settlements.deliveredAt, *updated.DeliveredAt)
	}
	if len(f.cache.paths) != 2 {
		t.Fatalf("expected list and detail invalidation, got %+v", f.cache.paths)
	}
}

func TestUpdateStatusRedeliveryKeepsFirstStamp(t *testing.T) {
	firstDelivery := time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)
	order := &models.Order{
		ID:           uuid.New(),
		WholesalerID: uuid.New(),
		Status:       enums.OrderStatusDelivered,
		DeliveredAt:  &firstDelivery,
	}
	repo := &stubOrdersRepo{order: order}
	f := newOrderFixture(t, repo, &stubCatalog{})

	updated, err := f.svc.UpdateStatus(context.Background(), wholesalerActor(order.WholesalerID), order.ID, enums.OrderStatusDelivered)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if _, ok := repo.updates["delivered_at"]; ok {
		t.Fatalf("re-delivery must not restamp delivered_at, got %+v", repo.updates)
	}
	if !updated.DeliveredAt.Equal(firstDelivery) {
		t.Fatalf("first delivery time must win, got %v", updated.DeliveredAt)
	}
	if f.settlements.scheduleCalls != 0 {
		t.Fatalf("re-delivery must not re-schedule the payout, got %d calls", f.settlements.scheduleCalls)
	}
}

func TestUpdateStatusCanceledStampsTimestamp(t *testing.T) {
	order := &models.Order{ID: uuid.New(), WholesalerID: uuid.New(), Status: enums.OrderStatusPending}
	repo := &stubOrdersRepo{order: order}
	f := newOrderFixture(t, repo, &stubCatalog{})

	updated, err := f.svc.UpdateStatus(context.Background(), wholesalerActor(order.WholesalerID), order.ID, enums.OrderStatusCanceled)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.CanceledAt == nil {
		t.Fatal("canceled_at should be stamped")
	}
	if f.settlements.scheduledFor != uuid.Nil {
		t.Fatal("cancellation must not schedule a payout")
	}
}

func TestUpdateStatusAcceptsAnyValidTransition(t *testing.T) {
	// no predecessor table: a delivered order can be pushed back to pending
	order := &models.Order{ID: uuid.New(), WholesalerID: uuid.New(), Status: enums.OrderStatusDelivered}
	repo := &stubOrdersRepo{order: order}
	f := newOrderFixture(t, repo, &stubCatalog{})

	updated, err := f.svc.UpdateStatus(context.Background(), wholesalerActor(order.WholesalerID), order.ID, enums.OrderStatusPending)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != enums.OrderStatusPending {
		t.Fatalf("unexpected status %s", updated.Status)
	}
}

func TestGetScopeChecks(t *testing.T) {
	order := &models.Order{ID: uuid.New(), WholesalerID: uuid.New(), RetailerID: uuid.New()}
	repo := &stubOrdersRepo{order: order}
	f := newOrderFixture(t, repo, &stubCatalog{})
	ctx := context.Background()

	if _, err := f.svc.Get(ctx, wholesalerActor(order.WholesalerID), order.ID); err != nil {
		t.Fatalf("owning wholesaler should see the order: %v", err)
	}
	if _, err := f.svc.Get(ctx, retailerActor(order.RetailerID), order.ID); err != nil {
		t.Fatalf("purchasing retailer should see the order: %v", err)
	}
	if _, err := f.svc.Get(ctx, authz.Actor{ProfileID: uuid.New(), Role: enums.ProfileRoleAdmin}, order.ID); err != nil {
		t.Fatalf("admin should see the order: %v", err)
	}

	_, err := f.svc.Get(ctx, retailerActor(uuid.New()), order.ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("foreign retailer: expected forbidden, got %v", err)
	}
}
