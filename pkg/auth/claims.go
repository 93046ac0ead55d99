package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	ProfileID uuid.UUID
	Role      enums.ProfileRole
	ScopeID   *uuid.UUID
	JTI       string
}

// AccessTokenClaims represents the typed JWT issued to clients. ScopeID is
// the wholesaler or retailer account the profile acts for; admins carry none.
type AccessTokenClaims struct {
	ProfileID uuid.UUID         `json:"profile_id"`
	Role      enums.ProfileRole `json:"role"`
	ScopeID   *uuid.UUID        `json:"scope_id,omitempty"`
	jwt.RegisteredClaims
}
