package cache

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/tradelinkhq/tradelink-backend/pkg/config"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
)

type fakeStore struct {
	deleted    [][]string
	published  []string
	delErr     error
	publishErr error
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) error {
	f.deleted = append(f.deleted, keys)
	return f.delErr
}

func (f *fakeStore) Publish(ctx context.Context, channel string, payload any) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, payload.(string))
	return nil
}

func (f *fakeStore) CacheKey(path string) string {
	return "tl:cache:" + path
}

func testInvalidator(t *testing.T, store *fakeStore) *Invalidator {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "cache-test", Level: logger.ParseLevel("error"), Output: io.Discard})
	inv, err := NewInvalidator(store, config.CacheConfig{InvalidationChannel: "tl:invalidations"}, logg)
	if err != nil {
		t.Fatalf("new invalidator: %v", err)
	}
	return inv
}

func TestInvalidateDeletesAndPublishes(t *testing.T) {
	store := &fakeStore{}
	inv := testInvalidator(t, store)

	inv.Invalidate(context.Background(), "/faqs", "/admin/accounts/pending")

	if len(store.deleted) != 1 || len(store.deleted[0]) != 2 {
		t.Fatalf("expected one delete of two keys, got %+v", store.deleted)
	}
	if store.deleted[0][0] != "tl:cache:/faqs" {
		t.Fatalf("unexpected cache key %q", store.deleted[0][0])
	}
	if len(store.published) != 2 || store.published[0] != "/faqs" {
		t.Fatalf("unexpected publishes %+v", store.published)
	}
}

func TestInvalidateSwallowsFailures(t *testing.T) {
	store := &fakeStore{delErr: errors.New("redis down"), publishErr: errors.New("redis down")}
	inv := testInvalidator(t, store)

	// must not panic or propagate
	inv.Invalidate(context.Background(), "/faqs")
}

func TestInvalidateSkipsBlankPaths(t *testing.T) {
	store := &fakeStore{}
	inv := testInvalidator(t, store)

	inv.Invalidate(context.Background(), "  ", "")

	if len(store.deleted) != 0 || len(store.published) != 0 {
		t.Fatalf("blank paths should be ignored, got %+v %+v", store.deleted, store.published)
	}
}

func TestNewInvalidatorValidation(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cache-test", Level: logger.ParseLevel("error"), Output: io.Discard})
	if _, err := NewInvalidator(nil, config.CacheConfig{InvalidationChannel: "c"}, logg); err == nil {
		t.Fatal("expected store required error")
	}
	if _, err := NewInvalidator(&fakeStore{}, config.CacheConfig{}, logg); err == nil {
		t.Fatal("expected channel required error")
	}
	if _, err := NewInvalidator(&fakeStore{}, config.CacheConfig{InvalidationChannel: "c"}, nil); err == nil {
		t.Fatal("expected logger required error")
	}
}
