// Package authz resolves the acting identity for a request and answers
// ownership questions for scoped resources.
package authz

import (
	"github.com/google/uuid"

	"github.com/tradelinkhq/tradelink-backend/pkg/auth"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// Actor is the resolved caller identity attached to every request.
// ScopeID is the trading account the profile acts for; admins carry none.
type Actor struct {
	ProfileID uuid.UUID
	Role      enums.ProfileRole
	ScopeID   *uuid.UUID
}

// FromClaims builds an actor from verified token claims.
func FromClaims(claims *auth.AccessTokenClaims) Actor {
	if claims == nil {
		return Actor{}
	}
	return Actor{
		ProfileID: claims.ProfileID,
		Role:      claims.Role,
		ScopeID:   claims.ScopeID,
	}
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.ProfileRoleAdmin
}

// IsWholesaler reports whether the actor acts for a wholesaler account.
func (a Actor) IsWholesaler() bool {
	return a.Role == enums.ProfileRoleWholesaler
}

// IsRetailer reports whether the actor acts for a retailer account.
func (a Actor) IsRetailer() bool {
	return a.Role == enums.ProfileRoleRetailer
}

// Scope returns the actor's account scope, or uuid.Nil when absent.
func (a Actor) Scope() uuid.UUID {
	if a.ScopeID == nil {
		return uuid.Nil
	}
	return *a.ScopeID
}

// OwnsScope reports whether the actor's account scope matches the given id.
// Admins never own a scope; cross-scope access for them is decided by role
// checks, not ownership.
func (a Actor) OwnsScope(accountID uuid.UUID) bool {
	if a.ScopeID == nil || accountID == uuid.Nil {
		return false
	}
	return *a.ScopeID == accountID
}

// HasRole reports whether the actor's role is in the given set.
func (a Actor) HasRole(roles ...enums.ProfileRole) bool {
	for _, role := range roles {
		if a.Role == role {
			return true
		}
	}
	return false
}
