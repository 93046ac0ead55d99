package auth

import (
	"github.com/google/uuid"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// SignInRequest carries the provider-issued token exchanged at sign-in.
type SignInRequest struct {
	ProviderToken string `json:"provider_token" validate:"required"`
}

// AdminLoginRequest captures the credentials sent to the admin login endpoint.
type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the expired access token and the refresh token to rotate.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ProfileDTO is the profile shape returned after authentication.
type ProfileDTO struct {
	ID          uuid.UUID          `json:"id"`
	Email       string             `json:"email"`
	DisplayName string             `json:"display_name"`
	Role        *enums.ProfileRole `json:"role"`
}

// SignInResponse contains the token pair and profile produced by a successful sign-in.
type SignInResponse struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	Profile      ProfileDTO `json:"profile"`
}

// TokenPair is the rotated token set returned by refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func profileDTO(profile *models.Profile) ProfileDTO {
	return ProfileDTO{
		ID:          profile.ID,
		Email:       profile.Email,
		DisplayName: profile.DisplayName,
		Role:        profile.Role,
	}
}
