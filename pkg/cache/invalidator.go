// Package cache signals list-cache invalidation after admin content changes.
// Invalidation is fire-and-forget: a Redis outage never fails the write that
// triggered it.
package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tradelinkhq/tradelink-backend/pkg/config"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
)

const invalidateTimeout = 2 * time.Second

type invalidationStore interface {
	Del(ctx context.Context, keys ...string) error
	Publish(ctx context.Context, channel string, payload any) error
	CacheKey(path string) string
}

// Invalidator drops cached list payloads and broadcasts the paths that changed.
type Invalidator struct {
	store   invalidationStore
	channel string
	logger  *logger.Logger
}

// NewInvalidator wires the invalidator to the shared Redis client.
func NewInvalidator(store invalidationStore, cfg config.CacheConfig, logg *logger.Logger) (*Invalidator, error) {
	if store == nil {
		return nil, errors.New("redis store is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	channel := strings.TrimSpace(cfg.InvalidationChannel)
	if channel == "" {
		return nil, errors.New("invalidation channel is required")
	}
	return &Invalidator{store: store, channel: channel, logger: logg}, nil
}

// Invalidate drops the cached payloads for the given paths and publishes them
// so other replicas drop theirs. Failures are logged and swallowed.
func (i *Invalidator) Invalidate(ctx context.Context, paths ...string) {
	if i == nil || len(paths) == 0 {
		return
	}

	// detach from the request deadline so a canceled request still invalidates
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidateTimeout)
	defer cancel()

	keys := make([]string, 0, len(paths))
	for _, path := range paths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		keys = append(keys, i.store.CacheKey(trimmed))
	}
	if len(keys) == 0 {
		return
	}

	if err := i.store.Del(ctx, keys...); err != nil {
		i.logger.Warn(ctx, "cache delete failed: "+err.Error())
	}
	for _, path := range paths {
		if err := i.store.Publish(ctx, i.channel, path); err != nil {
			i.logger.Warn(ctx, "cache invalidation publish failed: "+err.Error())
			return
		}
	}
}
