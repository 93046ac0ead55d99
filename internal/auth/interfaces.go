package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// Repository defines the profile and account lookups sign-in needs.
type Repository interface {
	FindProfileByExternalID(ctx context.Context, externalUserID string) (*models.Profile, error)
	FindProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	CreateProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FindApprovedAccount(ctx context.Context, profileID uuid.UUID, accountType enums.AccountType) (*models.Account, error)
}
