package faqs

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/internal/authz"
	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
)

type stubFAQRepo struct {
	faq       *models.FAQ
	created   *models.FAQ
	updates   map[string]any
	deletedID uuid.UUID
	lastQuery listQuery
}

func (s *stubFAQRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubFAQRepo) Create(ctx context.Context, faq *models.FAQ) (*models.FAQ, error) {
	if faq.ID == uuid.Nil {
		faq.ID = uuid.New()
	}
	s.created = faq
	return faq, nil
}

func (s *stubFAQRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.FAQ, error) {
	if s.faq == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.faq, nil
}

func (s *stubFAQRepo) List(ctx context.Context, query listQuery) ([]models.FAQ, int64, error) {
	s.lastQuery = query
	return nil, 0, nil
}

func (s *stubFAQRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	return nil
}

func (s *stubFAQRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deletedID = id
	return nil
}

type stubFAQCache struct {
	paths []string
}

func (s *stubFAQCache) Invalidate(ctx context.Context, paths ...string) {
	s.paths = append(s.paths, paths...)
}

func newFAQService(t *testing.T, repo *stubFAQRepo) (Service, *stubFAQCache) {
	t.Helper()
	cache := &stubFAQCache{}
	logg := logger.New(logger.Options{ServiceName: "faqs-test", Level: logger.ParseLevel("error"), Output: io.Discard})
	svc, err := NewService(repo, cache, logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, cache
}

func faqAdmin() authz.Actor {
	return authz.Actor{ProfileID: uuid.New(), Role: enums.ProfileRoleAdmin}
}

func TestCreateRequiresAdmin(t *testing.T) {
	svc, _ := newFAQService(t, &stubFAQRepo{})

	_, err := svc.Create(context.Background(), authz.Actor{ProfileID: uuid.New(), Role: enums.ProfileRoleRetailer}, CreateInput{
		Category: "orders",
		Question: "How do I cancel?",
		Answer:   "From the order detail page, while the order is still pending.",
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestPublishingInvalidatesPublicList(t *testing.T) {
	repo := &stubFAQRepo{}
	svc, cache := newFAQService(t, repo)

	_, err := svc.Create(context.Background(), faqAdmin(), CreateInput{
		Category:  "settlements",
		Question:  "When do payouts arrive?",
		Answer:    "Seven days after the order is marked delivered.",
		Published: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(cache.paths) != 1 || cache.paths[0] != "/faqs" {
		t.Fatalf("published create should invalidate the public list, got %+v", cache.paths)
	}

	// a draft entry does not disturb the public cache
	cache.paths = nil
	_, err = svc.Create(context.Background(), faqAdmin(), CreateInput{
		Category: "settlements",
		Question: "Draft question?",
		Answer:   "Draft answer not yet published.",
	})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if len(cache.paths) != 0 {
		t.Fatalf("draft create should not invalidate, got %+v", cache.paths)
	}
}

func TestUpdateTogglesPublishedFlag(t *testing.T) {
	faq := &models.FAQ{ID: uuid.New(), Category: "orders", Question: "Q", Answer: "A"}
	repo := &stubFAQRepo{faq: faq}
	svc, cache := newFAQService(t, repo)

	published := true
	updated, err := svc.Update(context.Background(), faqAdmin(), faq.ID, UpdateInput{Published: &published})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.Published {
		t.Fatal("published flag should be set")
	}
	if repo.updates["published"] != true {
		t.Fatalf("unexpected updates %+v", repo.updates)
	}
	if len(cache.paths) == 0 {
		t.Fatal("update should invalidate the public list")
	}
}

func TestListPublishedPinsFilter(t *testing.T) {
	repo := &stubFAQRepo{}
	svc, _ := newFAQService(t, repo)

	if _, err := svc.ListPublished(context.Background(), ListParams{Category: "orders"}); err != nil {
		t.Fatalf("list published: %v", err)
	}
	if !repo.lastQuery.publishedOnly || repo.lastQuery.category != "orders" {
		t.Fatalf("unexpected query %+v", repo.lastQuery)
	}

	if _, err := svc.ListAll(context.Background(), faqAdmin(), ListParams{}); err != nil {
		t.Fatalf("list all: %v", err)
	}
	if repo.lastQuery.publishedOnly {
		t.Fatal("admin listing should include drafts")
	}
}
