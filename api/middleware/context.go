package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/tradelinkhq/tradelink-backend/internal/authz"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

type contextKey string

const (
	ctxProfileID contextKey = "profile_id"
	ctxRole      contextKey = "actor_role"
	ctxScopeID   contextKey = "scope_id"
)

func ProfileIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxProfileID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

func ScopeIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxScopeID).(string); ok {
		return v
	}
	return ""
}

// WithProfileID injects the profile identifier into the context.
func WithProfileID(ctx context.Context, profileID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxProfileID, profileID)
}

// WithRole injects the actor role into the context.
func WithRole(ctx context.Context, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, role)
}

// WithScopeID injects the account scope identifier into the context.
func WithScopeID(ctx context.Context, scopeID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxScopeID, scopeID)
}

// ActorFromContext rebuilds the typed actor from the seeded context values.
// Unparseable values yield the zero actor, which fails every role check.
func ActorFromContext(ctx context.Context) authz.Actor {
	actor := authz.Actor{}
	if id, err := uuid.Parse(ProfileIDFromContext(ctx)); err == nil {
		actor.ProfileID = id
	}
	if role, err := enums.ParseProfileRole(RoleFromContext(ctx)); err == nil {
		actor.Role = role
	}
	if scope, err := uuid.Parse(ScopeIDFromContext(ctx)); err == nil {
		actor.ScopeID = &scope
	}
	return actor
}
