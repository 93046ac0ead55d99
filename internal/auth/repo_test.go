package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

func setupAuthTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	profiles := `
CREATE TABLE IF NOT EXISTS profiles (
  id TEXT PRIMARY KEY,
  external_user_id TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL,
  display_name TEXT NOT NULL,
  role TEXT,
  password_hash TEXT,
  last_signed_in_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	accounts := `
CREATE TABLE IF NOT EXISTS accounts (
  id TEXT PRIMARY KEY,
  profile_id TEXT NOT NULL,
  type TEXT NOT NULL,
  business_name TEXT NOT NULL,
  business_number TEXT NOT NULL,
  contact_phone TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  rejection_reason TEXT,
  approved_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	for _, stmt := range []string{profiles, accounts} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func TestRepositoryProfileLookups(t *testing.T) {
	db := setupAuthTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.CreateProfile(ctx, &models.Profile{
		ID:             uuid.New(),
		ExternalUserID: "ext-lookup",
		Email:          "Mixed.Case@Example.Test",
		DisplayName:    "Lookup",
	})
	require.NoError(t, err)

	byExternal, err := repo.FindProfileByExternalID(ctx, "ext-lookup")
	require.NoError(t, err)
	require.Equal(t, created.ID, byExternal.ID)

	byEmail, err := repo.FindProfileByEmail(ctx, "mixed.case@example.test")
	require.NoError(t, err)
	require.Equal(t, created.ID, byEmail.ID)

	_, err = repo.FindProfileByExternalID(ctx, "ext-missing")
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	require.NoError(t, repo.UpdateProfile(ctx, created.ID, map[string]any{"display_name": "Renamed"}))
	renamed, err := repo.FindProfileByExternalID(ctx, "ext-lookup")
	require.NoError(t, err)
	require.Equal(t, "Renamed", renamed.DisplayName)
}

func TestRepositoryFindApprovedAccountFiltersStatusAndType(t *testing.T) {
	db := setupAuthTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	profileID := uuid.New()

	pending := &models.Account{
		ID:             uuid.New(),
		ProfileID:      profileID,
		Type:           enums.AccountTypeWholesaler,
		BusinessName:   "Pending Co",
		BusinessNumber: "111-11-11111",
		Status:         enums.AccountStatusPending,
	}
	approved := &models.Account{
		ID:             uuid.New(),
		ProfileID:      profileID,
		Type:           enums.AccountTypeRetailer,
		BusinessName:   "Approved Co",
		BusinessNumber: "222-22-22222",
		Status:         enums.AccountStatusApproved,
	}
	require.NoError(t, db.Create(pending).Error)
	require.NoError(t, db.Create(approved).Error)

	_, err := repo.FindApprovedAccount(ctx, profileID, enums.AccountTypeWholesaler)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	found, err := repo.FindApprovedAccount(ctx, profileID, enums.AccountTypeRetailer)
	require.NoError(t, err)
	require.Equal(t, approved.ID, found.ID)
}
